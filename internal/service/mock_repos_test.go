package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Nisheeka1604/yultimate/internal/model"
	"github.com/Nisheeka1604/yultimate/internal/repository"
	pkgerrors "github.com/Nisheeka1604/yultimate/pkg/errors"
)

// ── 测试用仓储聚合 ──

type mockRepos struct {
	users         *mockUserRepo
	profiles      *mockStudentProfileRepo
	tournaments   *mockTournamentRepo
	teams         *mockTeamRepo
	matches       *mockMatchRepo
	spiritScores  *mockSpiritScoreRepo
	sessions      *mockSessionRepo
	attendance    *mockAttendanceRepo
	homeVisits    *mockHomeVisitRepo
	assessments   *mockAssessmentRepo
	reports       *mockProgressReportRepo
	notifications *mockNotificationRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		users:         &mockUserRepo{data: map[string]*model.User{}},
		profiles:      &mockStudentProfileRepo{data: map[string]*model.StudentProfile{}},
		tournaments:   &mockTournamentRepo{data: map[string]*model.Tournament{}},
		teams:         &mockTeamRepo{data: map[string]*model.Team{}},
		matches:       &mockMatchRepo{data: map[string]*model.Match{}},
		spiritScores:  &mockSpiritScoreRepo{},
		sessions:      &mockSessionRepo{data: map[string]*model.CoachingSession{}},
		attendance:    &mockAttendanceRepo{},
		homeVisits:    &mockHomeVisitRepo{},
		assessments:   &mockAssessmentRepo{},
		reports:       &mockProgressReportRepo{},
		notifications: &mockNotificationRepo{},
	}
	m.profiles.users = m.users
	m.teams.players = map[string][]model.Player{}
	m.matches.teams = m.teams

	repo := &repository.Repository{
		User:           m.users,
		StudentProfile: m.profiles,
		Tournament:     m.tournaments,
		Team:           m.teams,
		Match:          m.matches,
		SpiritScore:    m.spiritScores,
		Session:        m.sessions,
		Attendance:     m.attendance,
		HomeVisit:      m.homeVisits,
		Assessment:     m.assessments,
		ProgressReport: m.reports,
		Notification:   m.notifications,
	}
	return repo, m
}

func newID() string { return uuid.NewString() }

// ── User ──

type mockUserRepo struct {
	mu   sync.Mutex
	data map[string]*model.User
}

func (m *mockUserRepo) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.data {
		if existing.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.UserID == "" {
		u.UserID = newID()
	}
	u.CreatedAt = time.Now()
	c := *u
	m.data[u.UserID] = &c
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.data[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.data {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.User
	for _, id := range ids {
		if u, ok := m.data[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) List(_ context.Context, role string, offset, limit int) ([]model.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.User
	for _, u := range m.data {
		if role == "" || u.Role == role {
			all = append(all, *u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })
	return page(all, offset, limit), int64(len(all)), nil
}

// ── StudentProfile ──

type mockStudentProfileRepo struct {
	mu    sync.Mutex
	data  map[string]*model.StudentProfile
	users *mockUserRepo
}

func (m *mockStudentProfileRepo) Create(_ context.Context, p *model.StudentProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.StudentID == "" {
		p.StudentID = newID()
	}
	p.Version = 1
	c := *p
	m.data[p.StudentID] = &c
	return nil
}

func (m *mockStudentProfileRepo) withUser(p *model.StudentProfile) *model.StudentProfile {
	c := *p
	if u, err := m.users.GetByID(context.Background(), p.UserID); err == nil {
		c.User = u
	}
	return &c
}

func (m *mockStudentProfileRepo) GetByID(_ context.Context, id string) (*model.StudentProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.data[id]; ok {
		return m.withUser(p), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentProfileRepo) GetByUserID(_ context.Context, userID string) (*model.StudentProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.data {
		if p.UserID == userID {
			return m.withUser(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentProfileRepo) ListByIDs(_ context.Context, ids []string) ([]model.StudentProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.StudentProfile
	for _, id := range ids {
		if p, ok := m.data[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockStudentProfileRepo) List(_ context.Context, coachID string, offset, limit int) ([]model.StudentProfile, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.StudentProfile
	for _, p := range m.data {
		if coachID == "" || (p.CoachID != nil && *p.CoachID == coachID) {
			all = append(all, *m.withUser(p))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StudentID < all[j].StudentID })
	return page(all, offset, limit), int64(len(all)), nil
}

func (m *mockStudentProfileRepo) Update(_ context.Context, p *model.StudentProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.data[p.StudentID]
	if !ok || stored.Version != p.Version {
		return pkgerrors.ErrOptimisticLock
	}
	p.Version++
	c := *p
	c.User = nil
	m.data[p.StudentID] = &c
	return nil
}

// ── Tournament ──

type mockTournamentRepo struct {
	mu   sync.Mutex
	data map[string]*model.Tournament
}

func (m *mockTournamentRepo) Create(_ context.Context, t *model.Tournament) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.TournamentID == "" {
		t.TournamentID = newID()
	}
	c := *t
	m.data[t.TournamentID] = &c
	return nil
}

func (m *mockTournamentRepo) GetByID(_ context.Context, id string) (*model.Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.data[id]; ok {
		c := *t
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTournamentRepo) List(_ context.Context, filter repository.TournamentFilter, offset, limit int) ([]model.Tournament, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.Tournament
	for _, t := range m.data {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.CreatedBy != "" && (t.CreatedBy == nil || *t.CreatedBy != filter.CreatedBy) {
			continue
		}
		all = append(all, *t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StartDate.After(all[j].StartDate) })
	return page(all, offset, limit), int64(len(all)), nil
}

func (m *mockTournamentRepo) Update(_ context.Context, t *model.Tournament) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.data[t.TournamentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c := *t
	c.Status = stored.Status
	m.data[t.TournamentID] = &c
	return nil
}

func (m *mockTournamentRepo) UpdateStatus(_ context.Context, id, expected, next, updatedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.data[id]
	if !ok || t.Status != expected {
		return pkgerrors.ErrOptimisticLock
	}
	t.Status = next
	t.UpdatedBy = &updatedBy
	return nil
}

func (m *mockTournamentRepo) Delete(_ context.Context, id string, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

// ── Team ──

type mockTeamRepo struct {
	mu      sync.Mutex
	data    map[string]*model.Team
	players map[string][]model.Player
}

func (m *mockTeamRepo) Create(_ context.Context, t *model.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.TeamID == "" {
		t.TeamID = newID()
	}
	c := *t
	c.Players = nil
	m.data[t.TeamID] = &c
	return nil
}

func (m *mockTeamRepo) GetByID(_ context.Context, id string) (*model.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.data[id]; ok {
		c := *t
		c.Players = append([]model.Player(nil), m.players[id]...)
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamRepo) ListByTournament(_ context.Context, tournamentID string) ([]model.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Team
	for _, t := range m.data {
		if t.TournamentID == tournamentID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockTeamRepo) ListByIDs(_ context.Context, ids []string) ([]model.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Team
	for _, id := range ids {
		if t, ok := m.data[id]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockTeamRepo) UpdateRegistration(_ context.Context, id, expected, next, updatedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.data[id]
	if !ok || t.RegistrationStatus != expected {
		return pkgerrors.ErrOptimisticLock
	}
	t.RegistrationStatus = next
	t.UpdatedBy = &updatedBy
	if next == "approved" {
		t.ApprovedBy = &updatedBy
	}
	return nil
}

func (m *mockTeamRepo) AddPlayers(_ context.Context, players []model.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range players {
		if players[i].PlayerID == "" {
			players[i].PlayerID = newID()
		}
		m.players[players[i].TeamID] = append(m.players[players[i].TeamID], players[i])
	}
	return nil
}

// ── Match ──

type mockMatchRepo struct {
	mu    sync.Mutex
	data  map[string]*model.Match
	teams *mockTeamRepo
}

func (m *mockMatchRepo) Create(_ context.Context, match *model.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if match.MatchID == "" {
		match.MatchID = newID()
	}
	c := *match
	c.Team1, c.Team2 = nil, nil
	m.data[match.MatchID] = &c
	return nil
}

func (m *mockMatchRepo) GetByID(_ context.Context, id string) (*model.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if match, ok := m.data[id]; ok {
		c := *match
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMatchRepo) ListByTournament(ctx context.Context, tournamentID, status string) ([]model.Match, error) {
	m.mu.Lock()
	var out []model.Match
	for _, match := range m.data {
		if match.TournamentID != tournamentID {
			continue
		}
		if status != "" && match.Status != status {
			continue
		}
		out = append(out, *match)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].MatchDatetime.Before(out[j].MatchDatetime) })
	for i := range out {
		out[i].Team1, _ = m.teams.GetByID(ctx, out[i].Team1ID)
		out[i].Team2, _ = m.teams.GetByID(ctx, out[i].Team2ID)
	}
	return out, nil
}

func (m *mockMatchRepo) UpdateStatus(_ context.Context, id, expected, next, updatedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	match, ok := m.data[id]
	if !ok || match.Status != expected {
		return pkgerrors.ErrOptimisticLock
	}
	match.Status = next
	match.UpdatedBy = &updatedBy
	return nil
}

func (m *mockMatchRepo) RecordScore(_ context.Context, id, expected string, team1Score, team2Score int, updatedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	match, ok := m.data[id]
	if !ok || match.Status != expected {
		return pkgerrors.ErrOptimisticLock
	}
	match.Team1Score = &team1Score
	match.Team2Score = &team2Score
	match.Status = "completed"
	match.UpdatedBy = &updatedBy
	return nil
}

// ── SpiritScore ──

type mockSpiritScoreRepo struct {
	mu   sync.Mutex
	data []model.SpiritScore
}

func (m *mockSpiritScoreRepo) Create(_ context.Context, s *model.SpiritScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.data {
		if existing.MatchID == s.MatchID && existing.SubmittedByTeamID == s.SubmittedByTeamID {
			return gorm.ErrDuplicatedKey
		}
	}
	if s.SpiritScoreID == "" {
		s.SpiritScoreID = newID()
	}
	s.CreatedAt = time.Now()
	m.data = append(m.data, *s)
	return nil
}

func (m *mockSpiritScoreRepo) ExistsForTeam(_ context.Context, matchID, teamID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.data {
		if s.MatchID == matchID && s.SubmittedByTeamID == teamID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSpiritScoreRepo) ListByMatch(_ context.Context, matchID string) ([]model.SpiritScore, error) {
	return m.ListByMatchIDs(context.Background(), []string{matchID})
}

func (m *mockSpiritScoreRepo) ListByMatchIDs(_ context.Context, matchIDs []string) ([]model.SpiritScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := make(map[string]bool, len(matchIDs))
	for _, id := range matchIDs {
		set[id] = true
	}
	var out []model.SpiritScore
	for _, s := range m.data {
		if set[s.MatchID] {
			out = append(out, s)
		}
	}
	return out, nil
}

// ── CoachingSession ──

type mockSessionRepo struct {
	mu   sync.Mutex
	data map[string]*model.CoachingSession
}

func (m *mockSessionRepo) Create(_ context.Context, s *model.CoachingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.SessionID == "" {
		s.SessionID = newID()
	}
	c := *s
	m.data[s.SessionID] = &c
	return nil
}

func (m *mockSessionRepo) GetByID(_ context.Context, id string) (*model.CoachingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.data[id]; ok {
		c := *s
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.CoachingSession, error) {
	return m.GetByID(ctx, id)
}

func (m *mockSessionRepo) List(_ context.Context, filter repository.SessionFilter) ([]model.CoachingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.CoachingSession
	for _, s := range m.data {
		if filter.CoachID != "" && s.CoachID != filter.CoachID {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.From != nil && s.ScheduledDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !s.ScheduledDate.Before(*filter.To) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledDate.Before(out[j].ScheduledDate) })
	return out, nil
}

func (m *mockSessionRepo) UpdateStatus(_ context.Context, id, expected, next, updatedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[id]
	if !ok || s.Status != expected {
		return pkgerrors.ErrOptimisticLock
	}
	s.Status = next
	s.UpdatedBy = &updatedBy
	return nil
}

// ── Attendance ──

type mockAttendanceRepo struct {
	mu   sync.Mutex
	data []model.SessionAttendance
}

func (m *mockAttendanceRepo) Create(_ context.Context, r *model.SessionAttendance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.data {
		if existing.SessionID == r.SessionID && existing.StudentID == r.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	if r.AttendanceID == "" {
		r.AttendanceID = newID()
	}
	r.CreatedAt = time.Now()
	m.data = append(m.data, *r)
	return nil
}

func (m *mockAttendanceRepo) Exists(_ context.Context, sessionID, studentID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.data {
		if r.SessionID == sessionID && r.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAttendanceRepo) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	list, _ := m.ListBySession(ctx, sessionID)
	return int64(len(list)), nil
}

func (m *mockAttendanceRepo) ListBySession(_ context.Context, sessionID string) ([]model.SessionAttendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.SessionAttendance
	for _, r := range m.data {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockAttendanceRepo) ListByStudent(_ context.Context, studentID string) ([]model.SessionAttendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.SessionAttendance
	for _, r := range m.data {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ── HomeVisit / Assessment / ProgressReport ──

type mockHomeVisitRepo struct {
	mu   sync.Mutex
	data []model.HomeVisit
}

func (m *mockHomeVisitRepo) Create(_ context.Context, v *model.HomeVisit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.HomeVisitID == "" {
		v.HomeVisitID = newID()
	}
	m.data = append(m.data, *v)
	return nil
}

func (m *mockHomeVisitRepo) List(_ context.Context, filter repository.RecordFilter) ([]model.HomeVisit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.HomeVisit
	for _, v := range m.data {
		if matchesRecord(filter, v.StudentID, v.CoachID) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *mockHomeVisitRepo) CountByStudent(ctx context.Context, studentID string) (int64, error) {
	list, _ := m.List(ctx, repository.RecordFilter{StudentID: studentID})
	return int64(len(list)), nil
}

type mockAssessmentRepo struct {
	mu   sync.Mutex
	data []model.LSASAssessment
}

func (m *mockAssessmentRepo) Create(_ context.Context, a *model.LSASAssessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.AssessmentID == "" {
		a.AssessmentID = newID()
	}
	m.data = append(m.data, *a)
	return nil
}

func (m *mockAssessmentRepo) ListByStudent(_ context.Context, studentID string) ([]model.LSASAssessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.LSASAssessment
	for _, a := range m.data {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssessmentDate.After(out[j].AssessmentDate) })
	return out, nil
}

type mockProgressReportRepo struct {
	mu   sync.Mutex
	data []model.ProgressReport
}

func (m *mockProgressReportRepo) Create(_ context.Context, r *model.ProgressReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ReportID == "" {
		r.ReportID = newID()
	}
	m.data = append(m.data, *r)
	return nil
}

func (m *mockProgressReportRepo) List(_ context.Context, filter repository.RecordFilter) ([]model.ProgressReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ProgressReport
	for _, r := range m.data {
		if matchesRecord(filter, r.StudentID, r.CoachID) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReportDate.After(out[j].ReportDate) })
	return out, nil
}

func (m *mockProgressReportRepo) CountByStudent(ctx context.Context, studentID string) (int64, error) {
	list, _ := m.List(ctx, repository.RecordFilter{StudentID: studentID})
	return int64(len(list)), nil
}

// ── Notification ──

type mockNotificationRepo struct {
	mu   sync.Mutex
	data []model.Notification
}

func (m *mockNotificationRepo) CreateBatch(_ context.Context, list []model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range list {
		if n.NotificationID == "" {
			n.NotificationID = newID()
		}
		m.data = append(m.data, n)
	}
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.Notification
	for _, n := range m.data {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			all = append(all, n)
		}
	}
	return page(all, offset, limit), int64(len(all)), nil
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	_, total, _ := m.ListByUser(ctx, userID, true, 0, 0)
	return total, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.data {
		if m.data[i].NotificationID == id && m.data[i].UserID == userID {
			m.data[i].IsRead = true
			return 1, nil
		}
	}
	return 0, nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.data {
		if m.data[i].UserID == userID {
			m.data[i].IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationRepo) Delete(_ context.Context, id, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.data {
		if m.data[i].NotificationID == id && m.data[i].UserID == userID {
			m.data = append(m.data[:i], m.data[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// ── 辅助函数 ──

func matchesRecord(filter repository.RecordFilter, studentID, coachID string) bool {
	if filter.StudentID != "" && filter.StudentID != studentID {
		return false
	}
	if filter.CoachID != "" && filter.CoachID != coachID {
		return false
	}
	return true
}

// page limit <= 0 表示不分页
func page[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}

// ── 内存排行榜缓存 ──

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gens map[string]int64
	hits int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}, gens: map[string]int64{}}
}

func (c *memoryCache) GetLeaderboard(_ context.Context, tournamentID string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[tournamentID]
	if ok {
		c.hits++
	}
	return v, ok, nil
}

func (c *memoryCache) LeaderboardGeneration(_ context.Context, tournamentID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[tournamentID], nil
}

func (c *memoryCache) SetLeaderboard(_ context.Context, tournamentID string, payload []byte, _ time.Duration, generation int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[tournamentID] != generation {
		return false, nil
	}
	c.data[tournamentID] = payload
	return true, nil
}

func (c *memoryCache) InvalidateLeaderboard(_ context.Context, tournamentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[tournamentID]++
	delete(c.data, tournamentID)
	return nil
}

// ── 故障注入：嵌入原仓储，只覆盖单个方法 ──

var errInjected = errors.New("注入的仓储故障")

type failingAttendanceRepo struct{ repository.AttendanceRepository }

func (failingAttendanceRepo) ListByStudent(context.Context, string) ([]model.SessionAttendance, error) {
	return nil, errInjected
}

type failingHomeVisitRepo struct{ repository.HomeVisitRepository }

func (failingHomeVisitRepo) CountByStudent(context.Context, string) (int64, error) {
	return 0, errInjected
}

type failingAssessmentRepo struct{ repository.AssessmentRepository }

func (failingAssessmentRepo) ListByStudent(context.Context, string) ([]model.LSASAssessment, error) {
	return nil, errInjected
}

type failingProgressReportRepo struct{ repository.ProgressReportRepository }

func (failingProgressReportRepo) CountByStudent(context.Context, string) (int64, error) {
	return 0, errInjected
}

type failingTeamRepo struct{ repository.TeamRepository }

func (failingTeamRepo) ListByIDs(context.Context, []string) ([]model.Team, error) {
	return nil, errInjected
}

// hookedSpiritScoreRepo ListByMatchIDs 返回前执行 before
type hookedSpiritScoreRepo struct {
	repository.SpiritScoreRepository
	before func(ctx context.Context) error
}

func (r hookedSpiritScoreRepo) ListByMatchIDs(ctx context.Context, matchIDs []string) ([]model.SpiritScore, error) {
	if err := r.before(ctx); err != nil {
		return nil, err
	}
	return r.SpiritScoreRepository.ListByMatchIDs(ctx, matchIDs)
}

// batchOnlyProfileRepo 禁止逐个读取，统计批量读取次数
type batchOnlyProfileRepo struct {
	repository.StudentProfileRepository
	batches int
}

func (r *batchOnlyProfileRepo) GetByID(context.Context, string) (*model.StudentProfile, error) {
	return nil, errInjected
}

func (r *batchOnlyProfileRepo) ListByIDs(ctx context.Context, ids []string) ([]model.StudentProfile, error) {
	r.batches++
	return r.StudentProfileRepository.ListByIDs(ctx, ids)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/Nisheeka1604/yultimate/internal/model"
	"github.com/Nisheeka1604/yultimate/internal/policy"
)

// ── 测试数据构造 ──

func newActor(role policy.Role) policy.Actor {
	return policy.Actor{ID: newID(), Role: role}
}

func seedUser(t *testing.T, m *mockRepos, actor policy.Actor, name string) {
	t.Helper()
	err := m.users.Create(context.Background(), &model.User{
		UserID:   actor.ID,
		Email:    actor.ID + "@example.org",
		FullName: name,
		Role:     string(actor.Role),
	})
	if err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
}

func seedTournament(t *testing.T, m *mockRepos, status policy.TournamentStatus) *model.Tournament {
	t.Helper()
	tr := &model.Tournament{
		Title:     "Summer Open",
		Location:  "Bengaluru",
		StartDate: time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC),
		Status:    string(status),
	}
	if err := m.tournaments.Create(context.Background(), tr); err != nil {
		t.Fatalf("创建赛事失败: %v", err)
	}
	return tr
}

func seedTeam(t *testing.T, m *mockRepos, tournamentID, name, captainID string, status policy.RegistrationStatus) *model.Team {
	t.Helper()
	team := &model.Team{
		TournamentID:       tournamentID,
		Name:               name,
		CaptainID:          captainID,
		RegistrationStatus: string(status),
	}
	if err := m.teams.Create(context.Background(), team); err != nil {
		t.Fatalf("创建球队失败: %v", err)
	}
	return team
}

func seedMatch(t *testing.T, m *mockRepos, tournamentID, team1ID, team2ID string, status policy.MatchStatus) *model.Match {
	t.Helper()
	match := &model.Match{
		TournamentID:  tournamentID,
		Team1ID:       team1ID,
		Team2ID:       team2ID,
		MatchDatetime: time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC),
		Status:        string(status),
	}
	if err := m.matches.Create(context.Background(), match); err != nil {
		t.Fatalf("创建比赛失败: %v", err)
	}
	return match
}

// seedStudent 创建学员用户与档案，coachID 为空表示未分配教练
func seedStudent(t *testing.T, m *mockRepos, coachID string) (policy.Actor, *model.StudentProfile) {
	t.Helper()
	student := newActor(policy.RoleStudent)
	seedUser(t, m, student, "学员")
	profile := &model.StudentProfile{UserID: student.ID}
	if coachID != "" {
		profile.CoachID = &coachID
	}
	if err := m.profiles.Create(context.Background(), profile); err != nil {
		t.Fatalf("创建学员档案失败: %v", err)
	}
	return student, profile
}

func seedSession(t *testing.T, m *mockRepos, coachID string, status policy.SessionStatus, maxAttendees *int) *model.CoachingSession {
	t.Helper()
	session := &model.CoachingSession{
		CoachID:         coachID,
		Title:           "基础传盘",
		ScheduledDate:   time.Now().Add(48 * time.Hour),
		DurationMinutes: 60,
		MaxAttendees:    maxAttendees,
		Status:          string(status),
	}
	if err := m.sessions.Create(context.Background(), session); err != nil {
		t.Fatalf("创建课程失败: %v", err)
	}
	return session
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

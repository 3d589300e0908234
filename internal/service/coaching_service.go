package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Nisheeka1604/yultimate/config"
	"github.com/Nisheeka1604/yultimate/internal/dto"
	"github.com/Nisheeka1604/yultimate/internal/model"
	"github.com/Nisheeka1604/yultimate/internal/policy"
	"github.com/Nisheeka1604/yultimate/internal/repository"
	pkgerrors "github.com/Nisheeka1604/yultimate/pkg/errors"
)

// CoachingService 训练课程、出勤、家访、评估与进度报告
type CoachingService interface {
	CreateSession(ctx context.Context, actor policy.Actor, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error)
	ListSessions(ctx context.Context, req *dto.SessionListRequest) ([]dto.SessionResponse, error)
	StartSession(ctx context.Context, actor policy.Actor, sessionID string) (*dto.SessionResponse, error)
	CompleteSession(ctx context.Context, actor policy.Actor, sessionID string) (*dto.SessionResponse, error)
	// CancelSession 取消后通知已有出勤记录的学员
	CancelSession(ctx context.Context, actor policy.Actor, sessionID string) (*dto.SessionResponse, error)

	RecordAttendance(ctx context.Context, actor policy.Actor, sessionID string, req *dto.RecordAttendanceRequest) (*dto.AttendanceResponse, error)
	ListSessionAttendance(ctx context.Context, actor policy.Actor, sessionID string) ([]dto.AttendanceResponse, error)

	RecordHomeVisit(ctx context.Context, actor policy.Actor, req *dto.CreateHomeVisitRequest) (*dto.HomeVisitResponse, error)
	ListHomeVisits(ctx context.Context, actor policy.Actor, req *dto.RecordListRequest) ([]dto.HomeVisitResponse, error)
	CreateAssessment(ctx context.Context, actor policy.Actor, req *dto.CreateAssessmentRequest) (*dto.AssessmentResponse, error)
	ListAssessments(ctx context.Context, actor policy.Actor, studentID string) ([]dto.AssessmentResponse, error)
	// GenerateProgressReport 报告中的指标为生成时刻的快照
	GenerateProgressReport(ctx context.Context, actor policy.Actor, req *dto.GenerateReportRequest) (*dto.ProgressReportResponse, error)
	ListProgressReports(ctx context.Context, actor policy.Actor, req *dto.RecordListRequest) ([]dto.ProgressReportResponse, error)
}

type coachingService struct {
	engine   config.EngineConfig
	repo     *repository.Repository
	metrics  MetricsService
	notifier NotificationService
	logger   *zap.Logger
	now      func() time.Time
}

// NewCoachingService 创建 CoachingService 实例
func NewCoachingService(
	engine config.EngineConfig,
	repo *repository.Repository,
	metrics MetricsService,
	notifier NotificationService,
	logger *zap.Logger,
) CoachingService {
	return &coachingService{
		engine:   engine,
		repo:     repo,
		metrics:  metrics,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// ═══════════════════════════════════════════════════════════
// 训练课程
// ═══════════════════════════════════════════════════════════

func (s *coachingService) CreateSession(ctx context.Context, actor policy.Actor, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	const op = "coaching.CreateSession"
	if err := policy.Authorize(actor, policy.ActionCreateCoachingSession, policy.Subject{}); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, pkgerrors.Validation(op, "课程标题不能为空")
	}
	if !req.ScheduledDate.After(s.now()) {
		return nil, pkgerrors.Validation(op, "课程时间必须晚于当前时间")
	}
	if req.DurationMinutes < s.engine.MinSessionMinutes {
		return nil, pkgerrors.Validation(op, fmt.Sprintf("课程时长不能少于 %d 分钟", s.engine.MinSessionMinutes))
	}
	if req.MaxAttendees != nil && *req.MaxAttendees < 1 {
		return nil, pkgerrors.Validation(op, "人数上限至少为 1")
	}

	session := &model.CoachingSession{
		CoachID:         actor.ID,
		Title:           title,
		Description:     strings.TrimSpace(req.Description),
		Location:        strings.TrimSpace(req.Location),
		ScheduledDate:   req.ScheduledDate,
		DurationMinutes: req.DurationMinutes,
		MaxAttendees:    req.MaxAttendees,
		Status:          string(policy.SessionScheduled),
	}
	session.CreatedBy = &actor.ID
	session.UpdatedBy = &actor.ID

	if err := s.repo.Session.Create(ctx, session); err != nil {
		s.logger.Error("创建训练课程失败", zap.String("coach_id", actor.ID), zap.Error(err))
		return nil, err
	}
	return toSessionResponse(session), nil
}

func (s *coachingService) GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	session, err := s.loadSession(ctx, "coaching.GetSession", sessionID)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(session), nil
}

func (s *coachingService) ListSessions(ctx context.Context, req *dto.SessionListRequest) ([]dto.SessionResponse, error) {
	sessions, err := s.repo.Session.List(ctx, repository.SessionFilter{CoachID: req.CoachID, Status: req.Status})
	if err != nil {
		s.logger.Error("列出训练课程失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		result = append(result, *toSessionResponse(&sessions[i]))
	}
	return result, nil
}

func (s *coachingService) StartSession(ctx context.Context, actor policy.Actor, sessionID string) (*dto.SessionResponse, error) {
	session, err := s.transition(ctx, "coaching.StartSession", actor, sessionID, policy.SessionInProgress)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(session), nil
}

func (s *coachingService) CompleteSession(ctx context.Context, actor policy.Actor, sessionID string) (*dto.SessionResponse, error) {
	session, err := s.transition(ctx, "coaching.CompleteSession", actor, sessionID, policy.SessionCompleted)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(session), nil
}

func (s *coachingService) CancelSession(ctx context.Context, actor policy.Actor, sessionID string) (*dto.SessionResponse, error) {
	session, err := s.transition(ctx, "coaching.CancelSession", actor, sessionID, policy.SessionCancelled)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.Attendance.ListBySession(ctx, sessionID)
	if err != nil {
		s.logger.Warn("查询出勤记录失败，跳过取消通知", zap.String("session_id", sessionID), zap.Error(err))
		return toSessionResponse(session), nil
	}
	studentIDs := make([]string, 0, len(records))
	for _, r := range records {
		studentIDs = append(studentIDs, r.StudentID)
	}
	profiles, err := s.repo.StudentProfile.ListByIDs(ctx, studentIDs)
	if err != nil {
		s.logger.Warn("查询学员档案失败，跳过取消通知", zap.String("session_id", sessionID), zap.Error(err))
		return toSessionResponse(session), nil
	}
	userIDs := make([]string, 0, len(profiles))
	for _, p := range profiles {
		userIDs = append(userIDs, p.UserID)
	}
	s.notifier.Notify(ctx, userIDs, NotificationSessionCancelled,
		"训练课程已取消",
		fmt.Sprintf("训练课程「%s」（%s）已取消", session.Title, formatTime(session.ScheduledDate)),
		&session.SessionID)

	return toSessionResponse(session), nil
}

// transition 归属教练按状态机推进课程，写入时以读取到的状态为预期状态
func (s *coachingService) transition(ctx context.Context, op string, actor policy.Actor, sessionID string, next policy.SessionStatus) (*model.CoachingSession, error) {
	if err := policy.AuthorizeRole(actor, policy.ActionManageCoachingSession); err != nil {
		return nil, err
	}
	session, err := s.loadSession(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionManageCoachingSession, policy.Subject{OwnerID: session.CoachID}); err != nil {
		return nil, err
	}
	if !policy.CanTransitionSession(policy.SessionStatus(session.Status), next) {
		return nil, pkgerrors.InvalidTransition(op, fmt.Sprintf("课程状态不能从 %s 变更为 %s", session.Status, next))
	}

	if err := s.repo.Session.UpdateStatus(ctx, sessionID, session.Status, string(next), actor.ID); err != nil {
		if conflict := lockConflict(op, "课程状态已被其他操作修改", err); conflict != nil {
			return nil, conflict
		}
		s.logger.Error("更新课程状态失败", zap.String("id", sessionID), zap.Error(err))
		return nil, err
	}
	session.Status = string(next)
	return session, nil
}

// ═══════════════════════════════════════════════════════════
// 出勤
// ═══════════════════════════════════════════════════════════

func (s *coachingService) RecordAttendance(ctx context.Context, actor policy.Actor, sessionID string, req *dto.RecordAttendanceRequest) (*dto.AttendanceResponse, error) {
	const op = "coaching.RecordAttendance"
	if err := policy.AuthorizeRole(actor, policy.ActionRecordAttendance); err != nil {
		return nil, err
	}
	if req.Attended == nil {
		return nil, pkgerrors.Validation(op, "必须填写是否出勤")
	}

	var record *model.SessionAttendance
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		session, err := txRepo.Session.GetByIDForUpdate(ctx, sessionID)
		if err != nil {
			if isNotFound(err) {
				return pkgerrors.NotFound(op, "训练课程不存在")
			}
			return err
		}
		subject := policy.Subject{Status: session.Status, OwnerID: session.CoachID}
		if err := policy.Authorize(actor, policy.ActionRecordAttendance, subject); err != nil {
			return err
		}

		if _, err := txRepo.StudentProfile.GetByID(ctx, req.StudentID); err != nil {
			if isNotFound(err) {
				return pkgerrors.NotFound(op, "学员不存在")
			}
			return err
		}

		exists, err := txRepo.Attendance.Exists(ctx, sessionID, req.StudentID)
		if err != nil {
			return err
		}
		if exists {
			return pkgerrors.Conflict(op, "该学员本节课的出勤已记录")
		}

		if session.MaxAttendees != nil {
			count, err := txRepo.Attendance.CountBySession(ctx, sessionID)
			if err != nil {
				return err
			}
			if count >= int64(*session.MaxAttendees) {
				return pkgerrors.CapacityExceeded(op, fmt.Sprintf("课程人数已达上限 %d", *session.MaxAttendees))
			}
		}

		record = &model.SessionAttendance{
			SessionID:  sessionID,
			StudentID:  req.StudentID,
			Attended:   *req.Attended,
			Notes:      strings.TrimSpace(req.Notes),
			RecordedBy: actor.ID,
		}
		if err := txRepo.Attendance.Create(ctx, record); err != nil {
			if conflict := lockConflict(op, "该学员本节课的出勤已记录", err); conflict != nil {
				return conflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		if pkgerrors.KindOf(err) == nil {
			s.logger.Error("记录出勤失败", zap.String("session_id", sessionID), zap.Error(err))
		}
		return nil, err
	}
	return toAttendanceResponse(record), nil
}

func (s *coachingService) ListSessionAttendance(ctx context.Context, actor policy.Actor, sessionID string) ([]dto.AttendanceResponse, error) {
	const op = "coaching.ListSessionAttendance"
	session, err := s.loadSession(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		if err := policy.Authorize(actor, policy.ActionManageCoachingSession, policy.Subject{OwnerID: session.CoachID}); err != nil {
			return nil, err
		}
	}

	records, err := s.repo.Attendance.ListBySession(ctx, sessionID)
	if err != nil {
		s.logger.Error("列出出勤记录失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.AttendanceResponse, 0, len(records))
	for i := range records {
		result = append(result, *toAttendanceResponse(&records[i]))
	}
	return result, nil
}

// ═══════════════════════════════════════════════════════════
// 家访 / 评估 / 进度报告
// ═══════════════════════════════════════════════════════════

func (s *coachingService) RecordHomeVisit(ctx context.Context, actor policy.Actor, req *dto.CreateHomeVisitRequest) (*dto.HomeVisitResponse, error) {
	const op = "coaching.RecordHomeVisit"
	if _, err := s.ownedStudent(ctx, op, actor, policy.ActionRecordHomeVisit, req.StudentID); err != nil {
		return nil, err
	}
	if req.DurationMinutes < 1 {
		return nil, pkgerrors.Validation(op, "家访时长必须大于 0")
	}

	visit := &model.HomeVisit{
		CoachID:         actor.ID,
		StudentID:       req.StudentID,
		VisitDate:       req.VisitDate,
		DurationMinutes: req.DurationMinutes,
		Notes:           strings.TrimSpace(req.Notes),
	}
	if err := s.repo.HomeVisit.Create(ctx, visit); err != nil {
		s.logger.Error("记录家访失败", zap.String("student_id", req.StudentID), zap.Error(err))
		return nil, err
	}
	return toHomeVisitResponse(visit), nil
}

func (s *coachingService) ListHomeVisits(ctx context.Context, actor policy.Actor, req *dto.RecordListRequest) ([]dto.HomeVisitResponse, error) {
	filter, err := s.scopeRecords(ctx, "coaching.ListHomeVisits", actor, req)
	if err != nil {
		return nil, err
	}
	visits, err := s.repo.HomeVisit.List(ctx, filter)
	if err != nil {
		s.logger.Error("列出家访记录失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.HomeVisitResponse, 0, len(visits))
	for i := range visits {
		result = append(result, *toHomeVisitResponse(&visits[i]))
	}
	return result, nil
}

func (s *coachingService) CreateAssessment(ctx context.Context, actor policy.Actor, req *dto.CreateAssessmentRequest) (*dto.AssessmentResponse, error) {
	const op = "coaching.CreateAssessment"
	if _, err := s.ownedStudent(ctx, op, actor, policy.ActionCreateAssessment, req.StudentID); err != nil {
		return nil, err
	}
	if req.Score == nil || *req.Score < s.engine.LSASScoreMin || *req.Score > s.engine.LSASScoreMax {
		return nil, pkgerrors.Validation(op, fmt.Sprintf("LSAS 分数必须在 %d 到 %d 之间", s.engine.LSASScoreMin, s.engine.LSASScoreMax))
	}

	assessment := &model.LSASAssessment{
		StudentID:      req.StudentID,
		CoachID:        actor.ID,
		AssessmentDate: req.AssessmentDate,
		Score:          *req.Score,
		Notes:          strings.TrimSpace(req.Notes),
	}
	if err := s.repo.Assessment.Create(ctx, assessment); err != nil {
		s.logger.Error("创建评估失败", zap.String("student_id", req.StudentID), zap.Error(err))
		return nil, err
	}
	return toAssessmentResponse(assessment), nil
}

func (s *coachingService) ListAssessments(ctx context.Context, actor policy.Actor, studentID string) ([]dto.AssessmentResponse, error) {
	const op = "coaching.ListAssessments"
	profile, err := s.loadStudent(ctx, op, studentID)
	if err != nil {
		return nil, err
	}
	if err := authorizeStudentView(actor, profile); err != nil {
		return nil, err
	}

	list, err := s.repo.Assessment.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("列出评估失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.AssessmentResponse, 0, len(list))
	for i := range list {
		result = append(result, *toAssessmentResponse(&list[i]))
	}
	return result, nil
}

func (s *coachingService) GenerateProgressReport(ctx context.Context, actor policy.Actor, req *dto.GenerateReportRequest) (*dto.ProgressReportResponse, error) {
	const op = "coaching.GenerateProgressReport"
	if _, err := s.ownedStudent(ctx, op, actor, policy.ActionGenerateProgressReport, req.StudentID); err != nil {
		return nil, err
	}

	snapshot, err := s.metrics.Snapshot(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}

	report := &model.ProgressReport{
		StudentID:             req.StudentID,
		CoachID:               actor.ID,
		ReportDate:            s.now(),
		AttendanceRate:        snapshot.AttendanceRate,
		HomeVisitsCount:       snapshot.HomeVisitsCount,
		LatestAssessmentScore: snapshot.LatestAssessmentScore,
		Summary:               strings.TrimSpace(req.Summary),
		Recommendations:       strings.TrimSpace(req.Recommendations),
	}
	if err := s.repo.ProgressReport.Create(ctx, report); err != nil {
		s.logger.Error("生成进度报告失败", zap.String("student_id", req.StudentID), zap.Error(err))
		return nil, err
	}
	return toProgressReportResponse(report), nil
}

func (s *coachingService) ListProgressReports(ctx context.Context, actor policy.Actor, req *dto.RecordListRequest) ([]dto.ProgressReportResponse, error) {
	filter, err := s.scopeRecords(ctx, "coaching.ListProgressReports", actor, req)
	if err != nil {
		return nil, err
	}
	reports, err := s.repo.ProgressReport.List(ctx, filter)
	if err != nil {
		s.logger.Error("列出进度报告失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.ProgressReportResponse, 0, len(reports))
	for i := range reports {
		result = append(result, *toProgressReportResponse(&reports[i]))
	}
	return result, nil
}

// ── 内部辅助方法 ──

func (s *coachingService) loadSession(ctx context.Context, op, sessionID string) (*model.CoachingSession, error) {
	session, err := s.repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.NotFound(op, "训练课程不存在")
		}
		s.logger.Error("查询训练课程失败", zap.String("id", sessionID), zap.Error(err))
		return nil, err
	}
	return session, nil
}

func (s *coachingService) loadStudent(ctx context.Context, op, studentID string) (*model.StudentProfile, error) {
	profile, err := s.repo.StudentProfile.GetByID(ctx, studentID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.NotFound(op, "学员不存在")
		}
		s.logger.Error("查询学员失败", zap.String("id", studentID), zap.Error(err))
		return nil, err
	}
	return profile, nil
}

// ownedStudent 只有学员的负责教练可以写入其记录
func (s *coachingService) ownedStudent(ctx context.Context, op string, actor policy.Actor, action policy.Action, studentID string) (*model.StudentProfile, error) {
	if err := policy.AuthorizeRole(actor, action); err != nil {
		return nil, err
	}
	profile, err := s.loadStudent(ctx, op, studentID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, action, policy.Subject{OwnerID: derefString(profile.CoachID)}); err != nil {
		return nil, err
	}
	return profile, nil
}

// scopeRecords 按角色收窄列表范围：教练默认只看自己的记录，学员只看本人
func (s *coachingService) scopeRecords(ctx context.Context, op string, actor policy.Actor, req *dto.RecordListRequest) (repository.RecordFilter, error) {
	filter := repository.RecordFilter{StudentID: req.StudentID, CoachID: req.CoachID}

	switch actor.Role {
	case policy.RoleAdmin:
		return filter, nil
	case policy.RoleStudent:
		profile, err := s.repo.StudentProfile.GetByUserID(ctx, actor.ID)
		if err != nil {
			if isNotFound(err) {
				return filter, pkgerrors.NotFound(op, "学员档案不存在")
			}
			return filter, err
		}
		if req.StudentID != "" && req.StudentID != profile.StudentID {
			return filter, pkgerrors.PermissionDenied(op, "只能查看自己的记录")
		}
		return repository.RecordFilter{StudentID: profile.StudentID}, nil
	case policy.RoleCoach:
		if req.StudentID == "" {
			return repository.RecordFilter{CoachID: actor.ID}, nil
		}
		profile, err := s.loadStudent(ctx, op, req.StudentID)
		if err != nil {
			return filter, err
		}
		if err := authorizeStudentView(actor, profile); err != nil {
			return filter, err
		}
		return repository.RecordFilter{StudentID: req.StudentID}, nil
	}
	return filter, pkgerrors.PermissionDenied(op, "无效的操作者")
}

func toSessionResponse(s *model.CoachingSession) *dto.SessionResponse {
	return &dto.SessionResponse{
		ID:              s.SessionID,
		CoachID:         s.CoachID,
		Title:           s.Title,
		Description:     s.Description,
		Location:        s.Location,
		ScheduledDate:   formatTime(s.ScheduledDate),
		DurationMinutes: s.DurationMinutes,
		MaxAttendees:    s.MaxAttendees,
		Status:          s.Status,
	}
}

func toAttendanceResponse(a *model.SessionAttendance) *dto.AttendanceResponse {
	return &dto.AttendanceResponse{
		ID:         a.AttendanceID,
		SessionID:  a.SessionID,
		StudentID:  a.StudentID,
		Attended:   a.Attended,
		Notes:      a.Notes,
		RecordedBy: a.RecordedBy,
		CreatedAt:  formatTime(a.CreatedAt),
	}
}

func toHomeVisitResponse(v *model.HomeVisit) *dto.HomeVisitResponse {
	return &dto.HomeVisitResponse{
		ID:              v.HomeVisitID,
		CoachID:         v.CoachID,
		StudentID:       v.StudentID,
		VisitDate:       formatTime(v.VisitDate),
		DurationMinutes: v.DurationMinutes,
		Notes:           v.Notes,
	}
}

func toAssessmentResponse(a *model.LSASAssessment) *dto.AssessmentResponse {
	return &dto.AssessmentResponse{
		ID:             a.AssessmentID,
		StudentID:      a.StudentID,
		CoachID:        a.CoachID,
		AssessmentDate: formatTime(a.AssessmentDate),
		Score:          a.Score,
		Notes:          a.Notes,
	}
}

func toProgressReportResponse(r *model.ProgressReport) *dto.ProgressReportResponse {
	return &dto.ProgressReportResponse{
		ID:                    r.ReportID,
		StudentID:             r.StudentID,
		CoachID:               r.CoachID,
		ReportDate:            formatTime(r.ReportDate),
		AttendanceRate:        r.AttendanceRate,
		HomeVisitsCount:       r.HomeVisitsCount,
		LatestAssessmentScore: r.LatestAssessmentScore,
		Summary:               r.Summary,
		Recommendations:       r.Recommendations,
	}
}

package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Nisheeka1604/yultimate/internal/dto"
	"github.com/Nisheeka1604/yultimate/internal/model"
	"github.com/Nisheeka1604/yultimate/internal/policy"
	"github.com/Nisheeka1604/yultimate/internal/repository"
	pkgerrors "github.com/Nisheeka1604/yultimate/pkg/errors"
)

// MetricsService 学员指标与角色仪表盘
type MetricsService interface {
	// ComputeStudentMetrics 学员本人、负责教练或管理员可查看
	ComputeStudentMetrics(ctx context.Context, actor policy.Actor, studentID string) (*dto.StudentMetrics, error)
	// Snapshot 不做权限判断，供报告生成与导出复用
	Snapshot(ctx context.Context, studentID string) (policy.StudentMetrics, error)
	Dashboard(ctx context.Context, actor policy.Actor) (*dto.DashboardResponse, error)
}

type metricsService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewMetricsService 创建 MetricsService 实例
func NewMetricsService(repo *repository.Repository, logger *zap.Logger) MetricsService {
	return &metricsService{repo: repo, logger: logger, now: time.Now}
}

func (s *metricsService) ComputeStudentMetrics(ctx context.Context, actor policy.Actor, studentID string) (*dto.StudentMetrics, error) {
	const op = "metrics.ComputeStudentMetrics"
	profile, err := s.repo.StudentProfile.GetByID(ctx, studentID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.NotFound(op, "学员不存在")
		}
		s.logger.Error("查询学员失败", zap.String("id", studentID), zap.Error(err))
		return nil, err
	}
	if err := authorizeStudentView(actor, profile); err != nil {
		return nil, err
	}

	m, err := s.Snapshot(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return toStudentMetrics(studentID, m), nil
}

// Snapshot 四组记录并发读取，任一失败则整体失败
func (s *metricsService) Snapshot(ctx context.Context, studentID string) (policy.StudentMetrics, error) {
	var (
		attendance  []model.SessionAttendance
		homeVisits  int64
		assessments []model.LSASAssessment
		reports     int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		attendance, err = s.repo.Attendance.ListByStudent(gctx, studentID)
		return err
	})
	g.Go(func() (err error) {
		homeVisits, err = s.repo.HomeVisit.CountByStudent(gctx, studentID)
		return err
	})
	g.Go(func() (err error) {
		assessments, err = s.repo.Assessment.ListByStudent(gctx, studentID)
		return err
	})
	g.Go(func() (err error) {
		reports, err = s.repo.ProgressReport.CountByStudent(gctx, studentID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("计算学员指标失败", zap.String("student_id", studentID), zap.Error(err))
		return policy.StudentMetrics{}, err
	}

	attended := make([]bool, 0, len(attendance))
	for _, a := range attendance {
		attended = append(attended, a.Attended)
	}
	points := make([]policy.AssessmentPoint, 0, len(assessments))
	for _, a := range assessments {
		points = append(points, policy.AssessmentPoint{Date: a.AssessmentDate, Score: a.Score})
	}
	return policy.ComputeStudentMetrics(attended, int(homeVisits), points, int(reports)), nil
}

// ────────────────────── Dashboard ──────────────────────

func (s *metricsService) Dashboard(ctx context.Context, actor policy.Actor) (*dto.DashboardResponse, error) {
	const op = "metrics.Dashboard"
	resp := &dto.DashboardResponse{Role: string(actor.Role)}

	switch actor.Role {
	case policy.RoleAdmin:
		admin, err := s.adminDashboard(ctx)
		if err != nil {
			return nil, err
		}
		resp.Admin = admin
	case policy.RoleCoach:
		coach, err := s.coachDashboard(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		resp.Coach = coach
	case policy.RoleStudent:
		profile, err := s.repo.StudentProfile.GetByUserID(ctx, actor.ID)
		if err != nil {
			if isNotFound(err) {
				return nil, pkgerrors.NotFound(op, "学员档案不存在")
			}
			s.logger.Error("查询学员档案失败", zap.String("user_id", actor.ID), zap.Error(err))
			return nil, err
		}
		m, err := s.Snapshot(ctx, profile.StudentID)
		if err != nil {
			return nil, err
		}
		resp.Student = toStudentMetrics(profile.StudentID, m)
	default:
		return nil, pkgerrors.PermissionDenied(op, "无效的操作者")
	}
	return resp, nil
}

func (s *metricsService) adminDashboard(ctx context.Context) (*dto.AdminDashboard, error) {
	var d dto.AdminDashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		_, d.TotalTournaments, err = s.repo.Tournament.List(gctx, repository.TournamentFilter{}, 0, 1)
		return err
	})
	g.Go(func() (err error) {
		filter := repository.TournamentFilter{Status: string(policy.TournamentInProgress)}
		_, d.ActiveTournaments, err = s.repo.Tournament.List(gctx, filter, 0, 1)
		return err
	})
	g.Go(func() (err error) {
		_, d.TotalStudents, err = s.repo.User.List(gctx, string(policy.RoleStudent), 0, 1)
		return err
	})
	g.Go(func() (err error) {
		_, d.TotalCoaches, err = s.repo.User.List(gctx, string(policy.RoleCoach), 0, 1)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("统计管理员仪表盘失败", zap.Error(err))
		return nil, err
	}
	return &d, nil
}

// coachDashboard 学员数为该教练所有课程出勤记录中的不同学员
func (s *metricsService) coachDashboard(ctx context.Context, coachID string) (*dto.CoachDashboard, error) {
	sessions, err := s.repo.Session.List(ctx, repository.SessionFilter{CoachID: coachID})
	if err != nil {
		s.logger.Error("查询教练课程失败", zap.String("coach_id", coachID), zap.Error(err))
		return nil, err
	}

	var (
		mu       sync.Mutex
		students = make(map[string]struct{})
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, session := range sessions {
		sessionID := session.SessionID
		g.Go(func() error {
			records, err := s.repo.Attendance.ListBySession(gctx, sessionID)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, r := range records {
				students[r.StudentID] = struct{}{}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("统计教练学员失败", zap.String("coach_id", coachID), zap.Error(err))
		return nil, err
	}

	now := s.now()
	upcoming := make([]dto.SessionResponse, 0)
	for i := range sessions {
		if sessions[i].Status == string(policy.SessionScheduled) && sessions[i].ScheduledDate.After(now) {
			upcoming = append(upcoming, *toSessionResponse(&sessions[i]))
		}
	}

	return &dto.CoachDashboard{
		TotalSessions:    len(sessions),
		UpcomingSessions: upcoming,
		TotalStudents:    len(students),
	}, nil
}

func toStudentMetrics(studentID string, m policy.StudentMetrics) *dto.StudentMetrics {
	return &dto.StudentMetrics{
		StudentID:             studentID,
		AttendanceRate:        m.AttendanceRate,
		HomeVisitsCount:       m.HomeVisitsCount,
		LatestAssessmentScore: m.LatestAssessmentScore,
		ReportsCount:          m.ReportsCount,
	}
}

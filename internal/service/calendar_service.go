package service

import (
	"context"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/Nisheeka1604/yultimate/internal/model"
	"github.com/Nisheeka1604/yultimate/internal/policy"
	"github.com/Nisheeka1604/yultimate/internal/repository"
	pkgerrors "github.com/Nisheeka1604/yultimate/pkg/errors"
)

// ── 训练课程日历 ──────────────────────────────────────────────
//
// 将教练的训练课程导出为 iCalendar (RFC 5545)，供日历客户端订阅。
//   - 每节课一个 VEVENT，UID 由课程 ID 派生，重复导出时保持稳定
//   - DTEND = scheduled_date + duration_minutes
//   - 已取消的课程保留并标记 STATUS:CANCELLED，客户端据此移除
// ─────────────────────────────────────────────────────────────

const calendarProductID = "-//Y-Ultimate//Coaching Sessions//ZH"

// CalendarService 日历导出接口
type CalendarService interface {
	// CoachCalendar 返回 .ics 内容
	CoachCalendar(ctx context.Context, coachID string) (string, error)
}

type calendarService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(repo *repository.Repository, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, logger: logger}
}

func (s *calendarService) CoachCalendar(ctx context.Context, coachID string) (string, error) {
	const op = "calendar.CoachCalendar"
	coach, err := s.repo.User.GetByID(ctx, coachID)
	if err != nil {
		if isNotFound(err) {
			return "", pkgerrors.NotFound(op, "教练不存在")
		}
		s.logger.Error("查询教练失败", zap.String("id", coachID), zap.Error(err))
		return "", err
	}
	if coach.Role != string(policy.RoleCoach) {
		return "", pkgerrors.NotFound(op, "教练不存在")
	}

	sessions, err := s.repo.Session.List(ctx, repository.SessionFilter{CoachID: coachID})
	if err != nil {
		s.logger.Error("查询训练课程失败", zap.String("coach_id", coachID), zap.Error(err))
		return "", err
	}
	return BuildSessionCalendar(coach.FullName, sessions, time.Now()), nil
}

// BuildSessionCalendar 由课程列表生成日历，stamp 为 DTSTAMP
func BuildSessionCalendar(coachName string, sessions []model.CoachingSession, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName(coachName + " 训练课程")

	for i := range sessions {
		addSessionEvent(cal, &sessions[i], stamp)
	}
	return cal.Serialize()
}

func addSessionEvent(cal *ics.Calendar, session *model.CoachingSession, stamp time.Time) {
	event := cal.AddEvent(session.SessionID + "@yultimate")
	event.SetDtStampTime(stamp.UTC())
	event.SetStartAt(session.ScheduledDate.UTC())
	event.SetEndAt(session.ScheduledDate.Add(time.Duration(session.DurationMinutes) * time.Minute).UTC())
	event.SetSummary(session.Title)
	if session.Location != "" {
		event.SetLocation(session.Location)
	}
	if session.Description != "" {
		event.SetDescription(session.Description)
	}

	switch policy.SessionStatus(session.Status) {
	case policy.SessionCancelled:
		event.SetStatus(ics.ObjectStatusCancelled)
	default:
		event.SetStatus(ics.ObjectStatusConfirmed)
	}
}

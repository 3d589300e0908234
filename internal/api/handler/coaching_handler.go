package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nisheeka1604/yultimate/internal/dto"
	"github.com/Nisheeka1604/yultimate/internal/policy"
	"github.com/Nisheeka1604/yultimate/internal/service"
	"github.com/Nisheeka1604/yultimate/pkg/response"
)

// CoachingHandler 训练课程、出勤、家访、评估与进度报告 HTTP 处理器
type CoachingHandler struct {
	coachingSvc service.CoachingService
	calendarSvc service.CalendarService
}

// NewCoachingHandler 创建 CoachingHandler
func NewCoachingHandler(coachingSvc service.CoachingService, calendarSvc service.CalendarService) *CoachingHandler {
	return &CoachingHandler{coachingSvc: coachingSvc, calendarSvc: calendarSvc}
}

// ════════════════════════ 训练课程 ════════════════════════

// ListSessions 课程列表
// GET /api/v1/sessions?coach_id=&status=
func (h *CoachingHandler) ListSessions(c *gin.Context) {
	var req dto.SessionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	sessions, err := h.coachingSvc.ListSessions(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": sessions})
}

// CreateSession 创建课程，当前教练为负责人
// POST /api/v1/sessions
func (h *CoachingHandler) CreateSession(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	session, err := h.coachingSvc.CreateSession(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, session)
}

// GetSession 课程详情
// GET /api/v1/sessions/:id
func (h *CoachingHandler) GetSession(c *gin.Context) {
	session, err := h.coachingSvc.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, session)
}

type sessionTransition func(ctx context.Context, actor policy.Actor, sessionID string) (*dto.SessionResponse, error)

func (h *CoachingHandler) transition(c *gin.Context, fn sessionTransition) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	session, err := fn(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, session)
}

// StartSession POST /api/v1/sessions/:id/start
func (h *CoachingHandler) StartSession(c *gin.Context) {
	h.transition(c, h.coachingSvc.StartSession)
}

// CompleteSession POST /api/v1/sessions/:id/complete
func (h *CoachingHandler) CompleteSession(c *gin.Context) {
	h.transition(c, h.coachingSvc.CompleteSession)
}

// CancelSession POST /api/v1/sessions/:id/cancel
func (h *CoachingHandler) CancelSession(c *gin.Context) {
	h.transition(c, h.coachingSvc.CancelSession)
}

// RecordAttendance 记录出勤
// POST /api/v1/sessions/:id/attendance
func (h *CoachingHandler) RecordAttendance(c *gin.Context) {
	var req dto.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	record, err := h.coachingSvc.RecordAttendance(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, record)
}

// ListAttendance 课程出勤记录
// GET /api/v1/sessions/:id/attendance
func (h *CoachingHandler) ListAttendance(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	records, err := h.coachingSvc.ListSessionAttendance(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": records})
}

// Calendar 教练课程日历（iCalendar）
// GET /api/v1/sessions/calendar?coach_id=xxx，教练省略 coach_id 时取本人
func (h *CoachingHandler) Calendar(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	coachID := c.Query("coach_id")
	if coachID == "" {
		if actor.Role != policy.RoleCoach {
			response.BadRequest(c, 10001, "coach_id 不能为空")
			return
		}
		coachID = actor.ID
	}

	ics, err := h.calendarSvc.CoachCalendar(c.Request.Context(), coachID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="sessions.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}

// ════════════════════════ 家访 ════════════════════════

// RecordHomeVisit POST /api/v1/home-visits
func (h *CoachingHandler) RecordHomeVisit(c *gin.Context) {
	var req dto.CreateHomeVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	visit, err := h.coachingSvc.RecordHomeVisit(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, visit)
}

// ListHomeVisits GET /api/v1/home-visits?student_id=&coach_id=
func (h *CoachingHandler) ListHomeVisits(c *gin.Context) {
	var req dto.RecordListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	visits, err := h.coachingSvc.ListHomeVisits(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": visits})
}

// ════════════════════════ LSAS 评估 ════════════════════════

// CreateAssessment POST /api/v1/assessments
func (h *CoachingHandler) CreateAssessment(c *gin.Context) {
	var req dto.CreateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	assessment, err := h.coachingSvc.CreateAssessment(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, assessment)
}

// ListAssessments GET /api/v1/assessments?student_id=xxx
func (h *CoachingHandler) ListAssessments(c *gin.Context) {
	studentID := c.Query("student_id")
	if studentID == "" {
		response.BadRequest(c, 10001, "student_id 不能为空")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, err := h.coachingSvc.ListAssessments(c.Request.Context(), actor, studentID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ════════════════════════ 进度报告 ════════════════════════

// GenerateProgressReport POST /api/v1/progress-reports
func (h *CoachingHandler) GenerateProgressReport(c *gin.Context) {
	var req dto.GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	report, err := h.coachingSvc.GenerateProgressReport(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, report)
}

// ListProgressReports GET /api/v1/progress-reports?student_id=&coach_id=
func (h *CoachingHandler) ListProgressReports(c *gin.Context) {
	var req dto.RecordListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	reports, err := h.coachingSvc.ListProgressReports(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": reports})
}

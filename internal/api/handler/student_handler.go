package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Nisheeka1604/yultimate/internal/dto"
	"github.com/Nisheeka1604/yultimate/internal/service"
	"github.com/Nisheeka1604/yultimate/pkg/response"
)

// StudentHandler 学员档案 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
	metricsSvc service.MetricsService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService, metricsSvc service.MetricsService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc, metricsSvc: metricsSvc}
}

// ListStudents 学员列表（管理员全部，教练仅本人负责）
// GET /api/v1/students
func (h *StudentHandler) ListStudents(c *gin.Context) {
	var req dto.StudentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, total, err := h.studentSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetMyProfile 学员本人档案
// GET /api/v1/students/me
func (h *StudentHandler) GetMyProfile(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	profile, err := h.studentSvc.GetMine(c.Request.Context(), actor)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, profile)
}

// GetStudent 学员档案
// GET /api/v1/students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	profile, err := h.studentSvc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, profile)
}

// UpdateStudent 更新档案（学员本人或管理员）
// PUT /api/v1/students/:id
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	var req dto.UpdateStudentProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	profile, err := h.studentSvc.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, profile)
}

// AssignCoach 指派负责教练
// PUT /api/v1/students/:id/coach
func (h *StudentHandler) AssignCoach(c *gin.Context) {
	var req dto.AssignCoachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	profile, err := h.studentSvc.AssignCoach(c.Request.Context(), actor, c.Param("id"), req.CoachID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, profile)
}

// GetMetrics 学员派生指标
// GET /api/v1/students/:id/metrics
func (h *StudentHandler) GetMetrics(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	m, err := h.metricsSvc.ComputeStudentMetrics(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, m)
}

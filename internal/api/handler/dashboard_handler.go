package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Nisheeka1604/yultimate/internal/dto"
	"github.com/Nisheeka1604/yultimate/internal/service"
	"github.com/Nisheeka1604/yultimate/pkg/response"
)

// DashboardHandler 按角色汇总的首页数据
type DashboardHandler struct {
	metricsSvc service.MetricsService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(metricsSvc service.MetricsService) *DashboardHandler {
	return &DashboardHandler{metricsSvc: metricsSvc}
}

// GetDashboard GET /api/v1/dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	data, err := h.metricsSvc.Dashboard(c.Request.Context(), actor)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, data)
}

// NotificationHandler 站内通知 HTTP 处理器
type NotificationHandler struct {
	notificationSvc service.NotificationService
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// ListNotifications GET /api/v1/notifications?unread_only=true
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	var req dto.NotificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, total, err := h.notificationSvc.List(c.Request.Context(), userID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// UnreadCount GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	count, err := h.notificationSvc.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, gin.H{"count": count})
}

// MarkRead PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.notificationSvc.MarkRead(c.Request.Context(), userID, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, nil)
}

// MarkAllRead PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.notificationSvc.MarkAllRead(c.Request.Context(), userID); err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteNotification DELETE /api/v1/notifications/:id
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.notificationSvc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, nil)
}

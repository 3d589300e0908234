package handler

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Nisheeka1604/yultimate/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportLeaderboard 导出赛事精神分排行榜
// GET /api/v1/tournaments/:id/leaderboard/export
func (h *ExportHandler) ExportLeaderboard(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportLeaderboard(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	writeAttachment(c, buf, filename)
}

// ExportProgress 导出学员进度
// GET /api/v1/students/:id/progress/export
func (h *ExportHandler) ExportProgress(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportProgress(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	writeAttachment(c, buf, filename)
}

// 设置下载响应头
func writeAttachment(c *gin.Context, buf *bytes.Buffer, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

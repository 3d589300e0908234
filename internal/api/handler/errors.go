package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/Nisheeka1604/yultimate/pkg/errors"
	"github.com/Nisheeka1604/yultimate/pkg/metrics"
	"github.com/Nisheeka1604/yultimate/pkg/observability"
	"github.com/Nisheeka1604/yultimate/pkg/response"
)

// ── 业务错误码 ──
// 10001 参数校验 | 10002 未认证 | 10003 无权限 | 10004 限流 | 10005 请求体过大
// 10006 不存在 | 10007 冲突 | 10008 非法状态流转 | 10009 超出容量 | 11001 登录失败

type errorMapping struct {
	status int
	code   int
	label  string
}

var kindMappings = map[error]errorMapping{
	pkgerrors.ErrValidation:        {http.StatusBadRequest, 10001, "validation"},
	pkgerrors.ErrPermissionDenied:  {http.StatusForbidden, 10003, "permission_denied"},
	pkgerrors.ErrNotFound:          {http.StatusNotFound, 10006, "not_found"},
	pkgerrors.ErrConflict:          {http.StatusConflict, 10007, "conflict"},
	pkgerrors.ErrInvalidTransition: {http.StatusConflict, 10008, "invalid_transition"},
	pkgerrors.ErrCapacityExceeded:  {http.StatusConflict, 10009, "capacity_exceeded"},
}

// handleError 按错误类别写响应；未归类的错误按 500 处理并上报
func handleError(c *gin.Context, err error) {
	kind := pkgerrors.KindOf(err)
	m, ok := kindMappings[kind]
	if !ok {
		_ = c.Error(err)
		observability.CaptureErr(err)
		response.InternalError(c)
		return
	}

	metrics.EngineRejections.WithLabelValues(m.label).Inc()

	message := kind.Error()
	var appErr *pkgerrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	}
	response.Error(c, m.status, m.code, message)
}

func badRequest(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
		return
	}
	if err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
	}
	response.BadRequest(c, 10001, "参数校验失败")
}

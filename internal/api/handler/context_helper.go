package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Nisheeka1604/yultimate/internal/policy"
	"github.com/Nisheeka1604/yultimate/pkg/jwt"
	"github.com/Nisheeka1604/yultimate/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString("user_id")
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetActor 当前操作者，由 JWT 中的 user_id 与 role 组成
func MustGetActor(c *gin.Context) (policy.Actor, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return policy.Actor{}, false
	}
	role := policy.Role(c.GetString("role"))
	if !role.Valid() {
		response.Unauthorized(c, 10002, "未认证")
		return policy.Actor{}, false
	}
	return policy.Actor{ID: userID, Role: role}, true
}

// MustGetClaims 登出时需要 jti 与过期时间
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}

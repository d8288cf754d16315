package middleware

import (
	"strings"

	"gameops/console/common/response"
	"gameops/console/internal/ctxutil"
	"gameops/console/internal/session"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware 认证中间件，会话写入上下文
func AuthMiddleware(sessions *session.Manager, tokenName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := GetToken(c, tokenName)
		if token == "" {
			return response.Unauthorized(c, "请先登录")
		}

		s, err := sessions.Authenticate(token)
		if err != nil {
			return response.Unauthorized(c, "登录已过期，请重新登录")
		}

		ctxutil.SetSession(c, s)
		return c.Next()
	}
}

// PermissionMiddleware 按钮权限验证，满足任一即可
func PermissionMiddleware(permissions ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := ctxutil.GetSession(c)
		if s == nil {
			return response.Unauthorized(c, "请先登录")
		}
		if !s.HasAuth(permissions...) {
			return response.Forbidden(c, "没有操作权限")
		}
		return c.Next()
	}
}

// GetToken 从请求中获取Token
func GetToken(c *fiber.Ctx, tokenName string) string {
	if tokenName == "" {
		tokenName = "satoken"
	}

	// 从Header获取
	token := c.Get(tokenName)
	if token != "" {
		return token
	}

	// 从Authorization获取
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	// 从Query获取
	token = c.Query(tokenName)
	if token != "" {
		return token
	}

	// 从Cookie获取
	return c.Cookies(tokenName)
}

package ctxutil

import (
	"gameops/console/internal/session"

	"github.com/gofiber/fiber/v2"
)

const (
	sessionKey = "session"
	tokenKey   = "token"
)

// SetSession 认证中间件写入当前会话
func SetSession(c *fiber.Ctx, s *session.Session) {
	c.Locals(sessionKey, s)
	c.Locals(tokenKey, s.ID())
}

// GetSession 当前会话，未认证时返回 nil
func GetSession(c *fiber.Ctx) *session.Session {
	s, _ := c.Locals(sessionKey).(*session.Session)
	return s
}

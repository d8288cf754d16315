package handler

import (
	"errors"

	"gameops/console/common/response"
	"gameops/console/internal/ctxutil"
	"gameops/console/internal/logic"
	"gameops/console/internal/session"
	"gameops/console/internal/svc"
	"gameops/console/internal/upstream"

	"github.com/gofiber/fiber/v2"
)

// fail 把错误转换为统一响应
func fail(c *fiber.Ctx, err error) error {
	if e, ok := upstream.AsError(err); ok {
		if e.EndsSession() {
			return response.Unauthorized(c, e.Message)
		}
		if e.Kind == upstream.KindTransport {
			return response.ServerError(c, "上游服务不可用")
		}
		return response.Error(c, e.Message)
	}
	switch {
	case errors.Is(err, session.ErrNotLoggedIn), errors.Is(err, logic.ErrNotLoggedIn):
		return response.Unauthorized(c, "请先登录")
	case errors.Is(err, session.ErrNoPermission), errors.Is(err, logic.ErrViewForbidden):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, session.ErrUnknownTable), errors.Is(err, logic.ErrViewNotFound):
		return response.NotFound(c, err.Error())
	}
	return response.Error(c, err.Error())
}

func sessions() *session.Manager {
	return svc.Ctx.Sessions
}

// current 认证中间件之后一定存在
func current(c *fiber.Ctx) *session.Session {
	return ctxutil.GetSession(c)
}

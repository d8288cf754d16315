package handler

import (
	"gameops/console/common/response"
	"gameops/console/internal/svc"
	"gameops/console/internal/types"

	"github.com/gofiber/fiber/v2"
)

// AuthLogin 上游账号登录
func AuthLogin(c *fiber.Ctx) error {
	var req types.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	if req.Username == "" || req.Password == "" {
		return response.Error(c, "用户名和密码不能为空")
	}

	m := sessions()
	locale := req.Locale
	if locale == "" {
		locale = m.Catalog().Match(c.Get(fiber.HeaderAcceptLanguage))
	}
	s, err := m.Login(c.UserContext(), req.Username, req.Password, locale)
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, types.LoginResponse{
		Token:     s.ID(),
		TokenName: svc.Ctx.Config.SaToken.TokenName,
		Locale:    s.Locale(),
	})
}

// AuthLogout 退出登录
func AuthLogout(c *fiber.Ctx) error {
	s := current(c)
	if err := sessions().Logout(c.UserContext(), s.ID()); err != nil {
		return fail(c, err)
	}
	return response.SuccessWithMessage(c, "已退出登录", nil)
}

// AuthGetUserInfo 当前用户信息，未加载时先拉取
func AuthGetUserInfo(c *fiber.Ctx) error {
	s := current(c)
	if !s.HasUserInfo() {
		if err := s.InitUserInfo(c.UserContext()); err != nil {
			return fail(c, err)
		}
	}
	info, ok := s.UserInfo()
	if !ok {
		return response.Unauthorized(c, "请先登录")
	}
	return response.Success(c, types.NewUserInfoResponse(s.UserID(), s.Locale(), info))
}

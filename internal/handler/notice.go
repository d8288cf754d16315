package handler

import (
	"gameops/console/common/response"
	"gameops/console/internal/middleware"
	"gameops/console/internal/notice"
	"gameops/console/internal/svc"
	"gameops/console/internal/types"

	"github.com/gofiber/fiber/v2"
)

// NoticesDrain 取走当前会话的消息与弹窗
//
// 会话被重置后仍需取到退出弹窗，所以这里不要求登录。
func NoticesDrain(c *fiber.Ctx) error {
	token := middleware.GetToken(c, svc.Ctx.Config.SaToken.TokenName)
	if token == "" {
		return response.Unauthorized(c, "请先登录")
	}
	out, _ := sessions().DrainNotices(token)
	return response.Success(c, out)
}

// NoticesDialogAck 用户确认弹窗
func NoticesDialogAck(c *fiber.Ctx) error {
	var req types.DialogAckRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	token := middleware.GetToken(c, svc.Ctx.Config.SaToken.TokenName)
	if err := sessions().AckDialog(token, notice.Kind(req.Kind), req.Content); err != nil {
		return response.Unauthorized(c, "请先登录")
	}
	return response.Success(c, nil)
}

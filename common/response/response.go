package response

import (
	"github.com/gofiber/fiber/v2"
)

// Response 统一响应结构
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

const (
	CodeSuccess      = 0
	CodeError        = -1
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeServerError  = 500
)

func write(c *fiber.Ctx, status, code int, message string, data any) error {
	return c.Status(status).JSON(Response{Code: code, Message: message, Data: data})
}

// Success 成功响应
func Success(c *fiber.Ctx, data any) error {
	return write(c, fiber.StatusOK, CodeSuccess, "success", data)
}

// SuccessWithMessage 成功响应带消息
func SuccessWithMessage(c *fiber.Ctx, message string, data any) error {
	return write(c, fiber.StatusOK, CodeSuccess, message, data)
}

// Error 业务错误，HTTP 状态仍为 200
func Error(c *fiber.Ctx, message string) error {
	return write(c, fiber.StatusOK, CodeError, message, nil)
}

// Unauthorized 未登录
func Unauthorized(c *fiber.Ctx, message string) error {
	return write(c, fiber.StatusUnauthorized, CodeUnauthorized, orDefault(message, "unauthorized"), nil)
}

// Forbidden 无权限
func Forbidden(c *fiber.Ctx, message string) error {
	return write(c, fiber.StatusForbidden, CodeForbidden, orDefault(message, "forbidden"), nil)
}

// NotFound 资源不存在
func NotFound(c *fiber.Ctx, message string) error {
	return write(c, fiber.StatusNotFound, CodeNotFound, orDefault(message, "not found"), nil)
}

// ServerError 服务器错误
func ServerError(c *fiber.Ctx, message string) error {
	return write(c, fiber.StatusInternalServerError, CodeServerError, orDefault(message, "server error"), nil)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

package middleware

import (
	"strings"

	"gameops/console/common/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// CORS 跨域，origins 为空时放开全部
func CORS(origins []string) fiber.Handler {
	allow := "*"
	if len(origins) > 0 {
		allow = strings.Join(origins, ",")
	}
	return cors.New(cors.Config{
		AllowOrigins:  allow,
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization,X-Requested-With,satoken,Accept-Language",
		ExposeHeaders: "Content-Length,Content-Type,X-Request-Id",
		MaxAge:        86400,
	})
}

// RequestID 请求ID
func RequestID() fiber.Handler {
	return requestid.New()
}

// Logger 请求日志
func Logger() fiber.Handler {
	return logger.Middleware()
}

// Recover 异常恢复
func Recover() fiber.Handler {
	return recover.New(recover.Config{EnableStackTrace: true})
}

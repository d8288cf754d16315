package logger

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Middleware Fiber 请求日志
func Middleware() fiber.Handler {
	lg := Named("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		rid, _ := c.Locals("requestid").(string)
		if IsJson() {
			fields := []zap.Field{
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Duration("latency", latency),
				zap.String("ip", c.IP()),
				zap.String("rid", rid),
			}
			switch {
			case err != nil || status >= 500:
				lg.Error("request", append(fields, zap.Error(err))...)
			case status >= 400:
				lg.Warn("request", fields...)
			default:
				lg.Info("request", fields...)
			}
			return err
		}

		msg := fmt.Sprintf("%d %s %s %.3fms", status, c.Method(), c.Path(), float64(latency.Microseconds())/1000)
		switch {
		case err != nil || status >= 500:
			lg.Error(msg, zap.String("rid", rid), zap.Error(err))
		case status >= 400:
			lg.Warn(msg, zap.String("rid", rid))
		default:
			lg.Info(msg)
		}
		return err
	}
}

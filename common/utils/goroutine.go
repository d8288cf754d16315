package utils

import (
	"runtime/debug"

	"gameops/console/common/logger"

	"go.uber.org/zap"
)

// SafeGo 启动带名称的 goroutine，panic 被捕获并记录
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("goroutine panic recovered",
					zap.String("name", name),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
			}
		}()
		fn()
	}()
}

package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// GormLogger 把 gorm 日志转到 zap
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormlogger.LogLevel
}

// NewGormLogger level 取值 silent, error, warn, info
func NewGormLogger(level string) *GormLogger {
	lv := gormlogger.Warn
	switch level {
	case "silent":
		lv = gormlogger.Silent
	case "error":
		lv = gormlogger.Error
	case "info", "debug":
		lv = gormlogger.Info
	}
	return &GormLogger{SlowThreshold: 200 * time.Millisecond, LogLevel: lv}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.LogLevel = level
	return &cp
}

func (l *GormLogger) Info(_ context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Info {
		L().Sugar().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Warn {
		L().Sugar().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Error {
		L().Sugar().Errorf(msg, data...)
	}
}

// 只保留 包名/文件:行号
func trimCaller(caller string) string {
	if i := strings.LastIndex(caller, "/"); i > 0 {
		if j := strings.LastIndex(caller[:i], "/"); j >= 0 {
			return caller[j+1:]
		}
	}
	return caller
}

func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := l.SlowThreshold != 0 && elapsed > l.SlowThreshold
	lg := L().WithOptions(zap.WithCaller(false)).Named("gorm")
	caller := trimCaller(utils.FileWithLineNum())

	if IsJson() {
		fields := []zap.Field{
			zap.String("caller", caller),
			zap.Duration("latency", elapsed),
			zap.Int64("rows", rows),
			zap.String("sql", sql),
		}
		switch {
		case failed:
			lg.Error("sql", append(fields, zap.Error(err))...)
		case slow:
			lg.Warn("slow sql", fields...)
		case l.LogLevel >= gormlogger.Info:
			lg.Debug("sql", fields...)
		}
		return
	}

	msg := fmt.Sprintf("%s [%.3fms] [rows:%d] %s", caller, float64(elapsed.Microseconds())/1000, rows, sql)
	switch {
	case failed:
		lg.Error(msg, zap.Error(err))
	case slow:
		lg.Warn("SLOW " + msg)
	case l.LogLevel >= gormlogger.Info:
		lg.Debug(msg)
	}
}

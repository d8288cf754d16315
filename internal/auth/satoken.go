package auth

import (
	"gameops/console/common/config"
	"gameops/console/common/logger"

	"github.com/click33/sa-token-go/core"
	"github.com/click33/sa-token-go/storage/memory"
	satokenRedis "github.com/click33/sa-token-go/storage/redis"
	"github.com/click33/sa-token-go/stputil"
	"go.uber.org/zap"
)

// DeviceWeb 控制台只有浏览器一种设备
const DeviceWeb = "web"

var manager *core.Manager

// InitSaToken 初始化SaToken，Redis 不可用时降级为内存存储
func InitSaToken(cfg *config.Config) error {
	var storage core.Storage
	log := logger.Named("satoken")

	if cfg.Redis.Enabled() {
		s, err := satokenRedis.NewStorage(cfg.Redis.URL())
		if err != nil {
			log.Warn("Redis存储初始化失败，降级使用内存存储", zap.Error(err))
			storage = memory.NewStorage()
		} else {
			log.Info("使用Redis存储", zap.String("addr", cfg.Redis.Addr()))
			storage = s
		}
	} else {
		log.Warn("使用内存存储，服务重启后token会丢失")
		storage = memory.NewStorage()
	}

	sc := cfg.SaToken
	manager = core.NewBuilder().
		Storage(storage).
		TokenName(sc.TokenName).
		Timeout(sc.Timeout).
		ActiveTimeout(sc.ActiveTimeout).
		IsConcurrent(sc.IsConcurrent).
		IsShare(sc.IsShare).
		MaxLoginCount(sc.MaxLoginCount).
		IsLog(sc.IsLog).
		Build()

	stputil.SetManager(manager)
	return nil
}

// GetManager 获取Manager
func GetManager() *core.Manager {
	return manager
}

// Login 登录，返回本地 token
func Login(loginID string) (string, error) {
	return stputil.Login(loginID, DeviceWeb)
}

// LogoutByToken 根据Token登出
func LogoutByToken(token string) error {
	err := stputil.LogoutByToken(token)
	if err != nil {
		logger.Named("satoken").Warn("LogoutByToken失败", zap.String("token", mask(token)), zap.Error(err))
	}
	return err
}

// IsLogin 判断是否登录
func IsLogin(token string) bool {
	if token == "" {
		return false
	}
	return stputil.IsLogin(token)
}

// GetLoginID 获取登录ID
func GetLoginID(token string) (string, error) {
	return stputil.GetLoginID(token)
}

// mask 日志里只保留 token 前 8 位
func mask(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8] + "..."
}

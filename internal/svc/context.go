package svc

import (
	"gameops/console/internal/config"
	"gameops/console/internal/session"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ServiceContext 全局服务上下文
type ServiceContext struct {
	Config   *config.Config
	DB       *gorm.DB // 未配置数据库时为 nil
	Redis    *redis.Client
	Sessions *session.Manager
}

var Ctx *ServiceContext

// Init 初始化服务上下文
func Init(cfg *config.Config, db *gorm.DB, rdb *redis.Client, sessions *session.Manager) *ServiceContext {
	Ctx = &ServiceContext{
		Config:   cfg,
		DB:       db,
		Redis:    rdb,
		Sessions: sessions,
	}
	return Ctx
}

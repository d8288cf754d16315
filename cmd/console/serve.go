package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gameops/console/common/database"
	"gameops/console/common/logger"
	commonRedis "gameops/console/common/redis"
	"gameops/console/internal/auth"
	"gameops/console/internal/config"
	"gameops/console/internal/i18n"
	"gameops/console/internal/metrics"
	"gameops/console/internal/model"
	"gameops/console/internal/notice"
	"gameops/console/internal/router"
	"gameops/console/internal/routes"
	"gameops/console/internal/session"
	"gameops/console/internal/svc"
	"gameops/console/internal/upstream"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	serveOrigins []string
	serveSweep   time.Duration
)

// serveCmd 启动 HTTP 服务
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动控制台服务",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringSliceVar(&serveOrigins, "cors", nil, "允许跨域的来源，为空时不限制")
	serveCmd.Flags().DurationVar(&serveSweep, "sweep-interval", time.Minute, "空闲会话清理间隔")
}

func runServe(cmd *cobra.Command, _ []string) error {
	// 加载配置
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	logger.Init(&cfg.Log)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis 可选，用于 sa-token 存储与路由存在性缓存
	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		if rdb, err = commonRedis.Init(ctx, &cfg.Redis); err != nil {
			return fmt.Errorf("初始化Redis失败: %w", err)
		}
		defer commonRedis.Close()
	}

	// 数据库可选，只有表格视图需要
	var db *gorm.DB
	if cfg.Database.Enabled() {
		if db, err = database.Init(&cfg.Database, cfg.Log.Level); err != nil {
			return fmt.Errorf("初始化数据库失败: %w", err)
		}
		defer database.Close()
		if err := db.AutoMigrate(model.AllModels()...); err != nil {
			return fmt.Errorf("数据库迁移失败: %w", err)
		}
	}

	// 初始化SaToken
	if err := auth.InitSaToken(&cfg.Config); err != nil {
		return fmt.Errorf("初始化SaToken失败: %w", err)
	}
	if err := metrics.Register(nil); err != nil {
		return fmt.Errorf("注册指标失败: %w", err)
	}

	static, err := routes.LoadStatic(cfg.Console.RoutesFile)
	if err != nil {
		return fmt.Errorf("加载静态路由失败: %w", err)
	}

	manager, clients := newManager(cfg, static, rdb)
	defer func() {
		for _, c := range clients {
			c.Close()
		}
	}()
	manager.StartJanitor(ctx, serveSweep)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	})
	router.Setup(app, svc.Init(cfg, db, rdb, manager), serveOrigins)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("服务器启动", zap.String("addr", cfg.Server.Addr()))
		errCh <- app.Listen(cfg.Server.Addr())
	}()

	// 优雅关闭
	select {
	case err := <-errCh:
		return fmt.Errorf("服务器启动失败: %w", err)
	case <-ctx.Done():
	}
	logger.Info("正在关闭服务器...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("服务器关闭失败", zap.Error(err))
	}
	logger.Info("服务器已关闭")
	return nil
}

// newManager 组装闸门、上游客户端与会话管理器
func newManager(cfg *config.Config, static routes.StaticRoutes, rdb *redis.Client) (*session.Manager, map[string]*upstream.Client) {
	gate := notice.NewGate(cfg.Console.DialogCooldownDuration())
	clients := map[string]*upstream.Client{
		session.PlatformClient: upstream.New(session.PlatformClient, cfg.Upstream.Platform, gate),
	}
	if cfg.Upstream.Demo.BaseURL != "" {
		clients[session.DemoClient] = upstream.New(session.DemoClient, cfg.Upstream.Demo, gate)
	}

	ttl := time.Duration(cfg.Console.RouteExistTTL) * time.Second
	var cache routes.ExistCache = routes.NewMemoryExistCache(ttl)
	if rdb != nil {
		cache = routes.NewRedisExistCache(rdb, ttl)
	}

	return session.NewManager(session.Deps{
		Config:     cfg,
		Clients:    clients,
		Gate:       gate,
		Catalog:    i18n.NewCatalog(cfg.I18n),
		Static:     static,
		ExistCache: cache,
	}), clients
}

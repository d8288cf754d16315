package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gameops/console/common/logger"
	"gameops/console/common/utils"
	"gameops/console/internal/auth"
	"gameops/console/internal/config"
	"gameops/console/internal/i18n"
	"gameops/console/internal/metrics"
	"gameops/console/internal/notice"
	"gameops/console/internal/routes"
	"gameops/console/internal/upstream"

	"go.uber.org/zap"
)

// 上游客户端名称
const (
	PlatformClient = "platform"
	DemoClient     = "demo"
)

// Deps 会话管理器依赖
type Deps struct {
	Config     *config.Config
	Clients    map[string]*upstream.Client
	Gate       *notice.Gate
	Catalog    *i18n.Catalog
	Static     routes.StaticRoutes
	ExistCache routes.ExistCache
}

// Manager 全部会话，按本地 token 索引
type Manager struct {
	cfg        *config.Config
	clients    map[string]*upstream.Client
	gate       *notice.Gate
	catalog    *i18n.Catalog
	static     routes.StaticRoutes
	existCache routes.ExistCache
	log        *zap.Logger
	now        func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(d Deps) *Manager {
	if d.Catalog == nil {
		d.Catalog = i18n.NewCatalog(d.Config.I18n)
	}
	if d.Gate == nil {
		d.Gate = notice.NewGate(d.Config.Console.DialogCooldownDuration())
	}
	return &Manager{
		cfg:        d.Config,
		clients:    d.Clients,
		gate:       d.Gate,
		catalog:    d.Catalog,
		static:     d.Static,
		existCache: d.ExistCache,
		log:        logger.Named("session"),
		now:        time.Now,
		sessions:   make(map[string]*Session),
	}
}

// Catalog 文案目录
func (m *Manager) Catalog() *i18n.Catalog {
	return m.catalog
}

// Gate 弹窗闸门
func (m *Manager) Gate() *notice.Gate {
	return m.gate
}

// Client 按名称取上游客户端
func (m *Manager) Client(name string) (*upstream.Client, bool) {
	c, ok := m.clients[name]
	return c, ok
}

// Login 上游账号密码登录，成功后建立本地会话并加载常量路由与用户信息
func (m *Manager) Login(ctx context.Context, username, password, locale string) (*Session, error) {
	platform, ok := m.clients[PlatformClient]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClient, PlatformClient)
	}
	tok, err := platform.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	localToken, err := auth.Login(username)
	if err != nil {
		return nil, fmt.Errorf("local login: %w", err)
	}

	if locale == "" {
		locale = m.catalog.Default()
	}
	s := newSession(m, localToken, username, locale)
	s.SetUpstreamTokens(tok.Token, tok.RefreshToken)
	s.mu.Lock()
	s.loggedIn = true
	s.mu.Unlock()
	metrics.ActiveSessions.Inc()

	m.mu.Lock()
	m.sessions[localToken] = s
	m.mu.Unlock()

	if err := s.routes.InitConstantRoute(ctx); err != nil {
		m.abort(ctx, s)
		return nil, fmt.Errorf("init constant routes: %w", err)
	}
	if err := s.InitUserInfo(ctx); err != nil {
		m.abort(ctx, s)
		return nil, fmt.Errorf("init user info: %w", err)
	}

	name := username
	if info, ok := s.UserInfo(); ok && info.User.NickName != "" {
		name = info.User.NickName
	}
	s.queue.Success(s.T("page.login.common.loginSuccess"))
	s.queue.Info(s.Text("page.login.common.welcomeBack", map[string]any{"userName": name}))
	m.log.Info("用户登录", zap.String("user", username))
	return s, nil
}

func (m *Manager) abort(ctx context.Context, s *Session) {
	if err := s.Reset(ctx); err != nil {
		m.log.Warn("登录失败后重置会话出错", zap.Error(err))
	}
	m.Remove(s.id)
}

// Get 按 token 取会话，不检查登录态
func (m *Manager) Get(token string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[token]
	return s, ok
}

// Authenticate 取已登录的会话并刷新活跃时间
func (m *Manager) Authenticate(token string) (*Session, error) {
	if token == "" {
		return nil, ErrNotLoggedIn
	}
	s, ok := m.Get(token)
	if !ok {
		if auth.IsLogin(token) {
			_ = auth.LogoutByToken(token)
		}
		return nil, ErrNotLoggedIn
	}
	if !s.IsLogin() {
		return nil, ErrNotLoggedIn
	}
	s.touch()
	return s, nil
}

// Logout 主动退出，会话被移除
func (m *Manager) Logout(ctx context.Context, token string) error {
	s, ok := m.Get(token)
	if !ok {
		return ErrNotLoggedIn
	}
	err := s.Reset(ctx)
	m.Remove(token)
	return err
}

// Remove 移除会话，不做重置
func (m *Manager) Remove(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// Len 会话数，包括已重置但通知未取走的
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// DrainNotices 取走会话通知，已重置的会话取空后移除
func (m *Manager) DrainNotices(token string) (notice.Notices, bool) {
	s, ok := m.Get(token)
	if !ok {
		return notice.Notices{Messages: []notice.Message{}, Dialogs: []notice.Dialog{}}, false
	}
	out := s.queue.Drain()
	s.mu.Lock()
	loggedIn := s.loggedIn
	s.mu.Unlock()
	if !loggedIn {
		m.Remove(token)
	} else {
		s.touch()
	}
	return out, true
}

// AckDialog 用户确认弹窗后释放闸门
func (m *Manager) AckDialog(token string, kind notice.Kind, content string) error {
	if token == "" {
		return errors.New("session: empty token")
	}
	if kind == notice.KindErrorModal {
		m.gate.ReleaseModal(token, content)
		return nil
	}
	m.gate.Release(token)
	return nil
}

// Sweep 清理空闲会话与过期的闸门记录，返回清理的会话数
func (m *Manager) Sweep(ctx context.Context, idle time.Duration) int {
	cutoff := m.now().Add(-idle)
	m.mu.RLock()
	var stale []*Session
	for _, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, s)
		}
	}
	m.mu.RUnlock()

	for _, s := range stale {
		if err := s.Reset(ctx); err != nil {
			m.log.Warn("清理会话出错", zap.String("user", s.username), zap.Error(err))
		}
		m.Remove(s.id)
	}
	m.gate.Sweep(idle)
	if len(stale) > 0 {
		m.log.Info("清理空闲会话", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// StartJanitor 定时清理空闲会话，ctx 结束时退出
func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	idle := time.Duration(m.cfg.Console.SessionIdle) * time.Minute
	utils.SafeGo("session.janitor", func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Sweep(ctx, idle)
			}
		}
	})
}

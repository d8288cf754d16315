package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gameops/console/internal/auth"
	"gameops/console/internal/config"
	"gameops/console/internal/metrics"
	"gameops/console/internal/notice"
	"gameops/console/internal/routes"
	"gameops/console/internal/upstream"

	"go.uber.org/zap"
)

var (
	ErrNotLoggedIn   = errors.New("session: not logged in")
	ErrUnknownTable  = errors.New("session: unknown table")
	ErrNoPermission  = errors.New("session: no permission")
	ErrUnknownClient = errors.New("session: unknown upstream client")
)

// Session 单个浏览器登录态，按本地 token 索引
//
// 实现 upstream.Session 与 routes.Identity，通知队列同时作为表格操作的消息出口。
type Session struct {
	id       string
	username string
	mgr      *Manager
	queue    *notice.Queue
	routes   *routes.Store
	log      *zap.Logger

	mu           sync.Mutex
	loggedIn     bool
	locale       string
	upToken      string
	refreshToken string
	info         *upstream.UserInfo
	tables       map[string]*Table
	lastSeen     time.Time
}

func newSession(mgr *Manager, id, username, locale string) *Session {
	s := &Session{
		id:       id,
		username: username,
		mgr:      mgr,
		queue:    notice.NewQueue(),
		log:      mgr.log.With(zap.String("user", username)),
		locale:   locale,
		tables:   make(map[string]*Table),
		lastSeen: mgr.now(),
	}
	cc := mgr.cfg.Console
	var source routes.Source
	if c, ok := mgr.clients[PlatformClient]; ok {
		source = upstream.RouteSource{Client: c, Session: s}
	}
	s.routes = routes.NewStore(routes.Options{
		Mode:       routes.Mode(cc.RouteMode),
		Home:       cc.Home,
		SuperRole:  cc.SuperRole,
		MenuIcon:   cc.MenuIcon,
		Static:     mgr.static,
		Source:     source,
		Identity:   s,
		Text:       s.T,
		ExistCache: mgr.existCache,
	})
	return s
}

// ID 本地 token
func (s *Session) ID() string {
	return s.id
}

// Username 登录账号
func (s *Session) Username() string {
	return s.username
}

// UserID 优先取上游用户 id
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info != nil && s.info.User.UserID != 0 {
		return fmt.Sprint(s.info.User.UserID)
	}
	return s.username
}

// UpstreamUserID 上游用户 id，用户信息未加载时为 0
func (s *Session) UpstreamUserID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return 0
	}
	return s.info.User.UserID
}

func (s *Session) UpstreamToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upToken
}

func (s *Session) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshToken
}

func (s *Session) SetUpstreamTokens(token, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upToken = token
	if refresh != "" {
		s.refreshToken = refresh
	}
}

// Notices 消息队列
func (s *Session) Notices() *notice.Queue {
	return s.queue
}

// Routes 路由仓库
func (s *Session) Routes() *routes.Store {
	return s.routes
}

// Locale 当前语言
func (s *Session) Locale() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locale
}

// SetLocale 切换语言并刷新菜单文案，不支持的语言返回 false
func (s *Session) SetLocale(value string) bool {
	locale, ok := s.mgr.catalog.Parse(value)
	if !ok {
		return false
	}
	s.mu.Lock()
	s.locale = locale
	s.mu.Unlock()
	s.routes.UpdateMenusLocale()
	return true
}

// T 按当前语言翻译
func (s *Session) T(key string) string {
	return s.mgr.catalog.T(s.Locale(), key, nil)
}

// Text 带插值的翻译
func (s *Session) Text(key string, args map[string]any) string {
	return s.mgr.catalog.T(s.Locale(), key, args)
}

// IsLogin 本地登录态有效且未被重置
func (s *Session) IsLogin() bool {
	s.mu.Lock()
	loggedIn := s.loggedIn
	s.mu.Unlock()
	return loggedIn && auth.IsLogin(s.id)
}

// UserInfo 已拉取的用户信息
func (s *Session) UserInfo() (upstream.UserInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return upstream.UserInfo{}, false
	}
	return *s.info, true
}

func (s *Session) HasUserInfo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info != nil
}

// InitUserInfo 拉取上游用户信息
func (s *Session) InitUserInfo(ctx context.Context) error {
	c, ok := s.mgr.clients[PlatformClient]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownClient, PlatformClient)
	}
	info, err := c.UserInfo(ctx, s)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if !s.loggedIn {
		s.mu.Unlock()
		return ErrNotLoggedIn
	}
	s.info = &info
	s.mu.Unlock()
	return nil
}

// Roles 用户角色
func (s *Session) Roles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return nil
	}
	return append([]string(nil), s.info.Roles...)
}

// Permissions 按钮权限
func (s *Session) Permissions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return nil
	}
	return append([]string(nil), s.info.Permissions...)
}

// HasAuth 是否拥有任一按钮权限，未登录一律 false
func (s *Session) HasAuth(codes ...string) bool {
	if !s.IsLogin() {
		return false
	}
	return auth.HasAuth(s.Permissions(), codes...)
}

// Reset 退出本地登录、清空表格并重置路由，重复调用无副作用
//
// 弹窗闸门状态不在这里清理，已发出的请求仍需要去重。
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	if !s.loggedIn {
		s.mu.Unlock()
		return nil
	}
	s.loggedIn = false
	s.info = nil
	s.upToken = ""
	s.refreshToken = ""
	s.tables = make(map[string]*Table)
	s.mu.Unlock()

	metrics.ActiveSessions.Dec()
	s.log.Info("会话已重置")
	if auth.GetManager() != nil {
		_ = auth.LogoutByToken(s.id)
	}
	return s.routes.ResetStore(ctx)
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = s.mgr.now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Tables 当前用户可见的列表声明
func (s *Session) Tables() []config.TableDecl {
	out := make([]config.TableDecl, 0, len(s.mgr.cfg.Console.Tables))
	for _, decl := range s.mgr.cfg.Console.Tables {
		if decl.Permission == "" || s.HasAuth(decl.Permission) {
			out = append(out, decl)
		}
	}
	return out
}

// OpenTables 已创建的列表页
func (s *Session) OpenTables() []*Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Table, 0, len(s.tables))
	for _, t := range s.tables {
		out = append(out, t)
	}
	return out
}

// Table 取列表页状态，首次访问时创建并拉取第一页
func (s *Session) Table(ctx context.Context, key string) (*Table, error) {
	s.mu.Lock()
	if !s.loggedIn {
		s.mu.Unlock()
		return nil, ErrNotLoggedIn
	}
	if t, ok := s.tables[key]; ok {
		s.mu.Unlock()
		return t, nil
	}
	s.mu.Unlock()

	decl, ok := s.mgr.cfg.Table(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, key)
	}
	if decl.Permission != "" && !s.HasAuth(decl.Permission) {
		return nil, fmt.Errorf("%w: %s", ErrNoPermission, decl.Permission)
	}
	t, err := newTable(s, decl)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if existing, ok := s.tables[key]; ok {
		s.mu.Unlock()
		return existing, nil
	}
	if !s.loggedIn {
		s.mu.Unlock()
		return nil, ErrNotLoggedIn
	}
	s.tables[key] = t
	s.mu.Unlock()

	if err := t.Start(ctx); err != nil {
		s.log.Warn("首次拉取表格失败", zap.String("table", key), zap.Error(err))
	}
	return t, nil
}

package routes

import (
	"context"
	"fmt"
	"sync"

	"gameops/console/common/logger"
	"gameops/console/common/utils"
	"gameops/console/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Identity 路由初始化需要的会话信息，Reset 是唯一的变更入口
type Identity interface {
	UserID() string
	HasUserInfo() bool
	InitUserInfo(ctx context.Context) error
	Roles() []string
	Reset(ctx context.Context) error
}

// Source 动态路由来源
type Source interface {
	FetchUserRoutes(ctx context.Context) ([]BackendRoute, error)
	IsRouteExist(ctx context.Context, routeName string) (bool, error)
}

// Options 路由仓库配置
type Options struct {
	Mode       Mode
	Home       string
	SuperRole  string
	MenuIcon   string
	Static     StaticRoutes
	Router     Router
	Source     Source
	Identity   Identity
	Text       Text
	ExistCache ExistCache
}

// Store 一个会话的路由与菜单状态
type Store struct {
	opts Options
	log  *zap.Logger
	sf   singleflight.Group

	mu             sync.Mutex
	constantRoutes []Route
	authRoutes     []Route
	sortedRoutes   []Route
	removeFns      []func()
	menus          []Menu
	cacheRoutes    []string
	routeHome      string
	constantLoaded bool
	authLoaded     bool
}

func NewStore(opts Options) *Store {
	if opts.Mode == "" {
		opts.Mode = ModeStatic
	}
	if opts.Home == "" {
		opts.Home = HomeRouteName
	}
	if opts.Text == nil {
		opts.Text = func(key string) string { return key }
	}
	if opts.Router == nil {
		opts.Router = NewRegistry(BuiltinRoutes("/" + opts.Home)...)
	}
	return &Store{
		opts:      opts,
		log:       logger.Named("routes"),
		routeHome: opts.Home,
	}
}

func (s *Store) builder() MenuBuilder {
	return MenuBuilder{Text: s.opts.Text, MenuIcon: s.opts.MenuIcon}
}

// Router 底层路由器
func (s *Store) Router() Router {
	return s.opts.Router
}

// dedupe 按名称去重，后写覆盖，位置取首次出现
func dedupe(routes []Route) []Route {
	pos := make(map[string]int, len(routes))
	out := make([]Route, 0, len(routes))
	for _, r := range routes {
		if i, ok := pos[r.Name]; ok {
			out[i] = r
			continue
		}
		pos[r.Name] = len(out)
		out = append(out, r)
	}
	return out
}

// InitConstantRoute 加载常量路由，已加载时直接返回
func (s *Store) InitConstantRoute(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.constantLoaded {
		return nil
	}
	s.constantRoutes = dedupe(cloneRoutes(s.opts.Static.Constant))
	if err := s.handleRoutesLocked(); err != nil {
		return err
	}
	s.constantLoaded = true
	return nil
}

// InitAuthRoute 加载权限路由，用户信息缺失时先拉取
func (s *Store) InitAuthRoute(ctx context.Context) error {
	id := s.opts.Identity
	if id != nil && !id.HasUserInfo() {
		if err := id.InitUserInfo(ctx); err != nil {
			return fmt.Errorf("init user info: %w", err)
		}
	}

	var err error
	if s.opts.Mode == ModeStatic {
		err = s.initStaticAuthRoute()
	} else {
		err = s.initDynamicAuthRoute(ctx)
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.RouteInits.WithLabelValues(string(s.opts.Mode), result).Inc()
	return err
}

func (s *Store) roles() []string {
	if s.opts.Identity == nil {
		return nil
	}
	return s.opts.Identity.Roles()
}

// IsStaticSuper 静态模式下持有超级角色的用户跳过角色过滤
func (s *Store) IsStaticSuper() bool {
	return s.opts.Mode == ModeStatic && s.opts.SuperRole != "" &&
		utils.SliceContains(s.roles(), s.opts.SuperRole)
}

func (s *Store) initStaticAuthRoute() error {
	auth := cloneRoutes(s.opts.Static.Auth)
	if !s.IsStaticSuper() {
		auth = FilterByRoles(auth, s.roles())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.authRoutes = dedupe(auth)
	if err := s.handleRoutesLocked(); err != nil {
		return err
	}
	s.authLoaded = true
	return nil
}

func (s *Store) initDynamicAuthRoute(ctx context.Context) error {
	if s.opts.Source == nil {
		return fmt.Errorf("routes: dynamic mode without route source")
	}
	v, err, _ := s.sf.Do("user-routes", func() (any, error) {
		return s.opts.Source.FetchUserRoutes(ctx)
	})
	var transformed []Route
	if err == nil {
		transformed, err = TransformBackendRoutes(v.([]BackendRoute))
	}
	if err != nil {
		s.log.Warn("加载动态路由失败，重置会话", zap.Error(err))
		if id := s.opts.Identity; id != nil {
			if rerr := id.Reset(ctx); rerr != nil {
				s.log.Error("重置会话失败", zap.Error(rerr))
			}
		}
		return err
	}
	transformed = append(transformed, DynamicFixedRoutes()...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.authRoutes = dedupe(transformed)
	if err := s.handleRoutesLocked(); err != nil {
		return err
	}
	s.routeHome = HomeRouteName
	s.updateRootRedirectLocked(HomeRouteName)
	s.authLoaded = true
	return nil
}

// 合并、排序、转换并重新注册全部路由
func (s *Store) handleRoutesLocked() error {
	all := make([]Route, 0, len(s.constantRoutes)+len(s.authRoutes))
	all = append(all, s.constantRoutes...)
	all = append(all, s.authRoutes...)
	sorted := SortRoutesByOrder(all)

	routerRoutes, err := ToRouterRoutes(sorted)
	if err != nil {
		return err
	}

	s.resetRouterLocked()
	for _, rr := range routerRoutes {
		remove, err := s.opts.Router.AddRoute(rr)
		if err != nil {
			return fmt.Errorf("register route %q: %w", rr.Name, err)
		}
		s.removeFns = append(s.removeFns, remove)
	}

	s.sortedRoutes = sorted
	s.menus = s.builder().Menus(sorted)
	s.cacheRoutes = CacheRouteNames(routerRoutes)
	return nil
}

func (s *Store) resetRouterLocked() {
	for _, fn := range s.removeFns {
		fn()
	}
	s.removeFns = nil
}

func (s *Store) updateRootRedirectLocked(key string) {
	path, ok := PathOf(key, s.sortedRoutes)
	if !ok {
		return
	}
	s.opts.Router.RemoveRoute(RootRouteName)
	if _, err := s.opts.Router.AddRoute(RootRoute(normalizePath(path))); err != nil {
		s.log.Error("更新根路由失败", zap.Error(err))
	}
}

// 根路由恢复为配置的首页
func (s *Store) restoreRootLocked() {
	s.opts.Router.RemoveRoute(RootRouteName)
	if _, err := s.opts.Router.AddRoute(RootRoute("/" + s.opts.Home)); err != nil {
		s.log.Error("恢复根路由失败", zap.Error(err))
	}
}

// ResetStore 移除已注册路由、清空状态并重新加载常量路由
func (s *Store) ResetStore(ctx context.Context) error {
	s.mu.Lock()
	s.resetRouterLocked()
	s.restoreRootLocked()
	s.constantRoutes = nil
	s.authRoutes = nil
	s.sortedRoutes = nil
	s.menus = nil
	s.cacheRoutes = nil
	s.routeHome = s.opts.Home
	s.constantLoaded = false
	s.authLoaded = false
	s.mu.Unlock()
	return s.InitConstantRoute(ctx)
}

// Lifecycle 当前初始化阶段
func (s *Store) Lifecycle() Lifecycle {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.authLoaded:
		return AuthRoutesLoaded
	case s.constantLoaded:
		return ConstantRoutesLoaded
	default:
		return Uninitialized
	}
}

// IsInitAuthRoute 权限路由是否已加载
func (s *Store) IsInitAuthRoute() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authLoaded
}

// RouteHome 首页路由名
func (s *Store) RouteHome() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.routeHome
}

// Routes 合并排序后的全部路由
func (s *Store) Routes() []Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRoutes(s.sortedRoutes)
}

// Menus 全局菜单
func (s *Store) Menus() []Menu {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Menu(nil), s.menus...)
}

// SearchMenus 可搜索的叶子菜单
func (s *Store) SearchMenus() []Menu {
	return SearchMenus(s.Menus())
}

// UpdateMenusLocale 切换语言后刷新菜单文案
func (s *Store) UpdateMenusLocale() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menus = s.builder().Relabel(s.menus)
}

// CacheRoutes 需要 keep-alive 的路由名
func (s *Store) CacheRoutes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.cacheRoutes...)
}

// ResetRouteCache 返回本次需要排除缓存的路由，name 为空时取当前路由
func (s *Store) ResetRouteCache(name string) []string {
	if name == "" {
		if cur, ok := s.opts.Router.CurrentRoute(); ok {
			name = cur.Name
		}
	}
	if name == "" {
		return []string{}
	}
	return []string{name}
}

// Breadcrumbs 当前路由的面包屑
func (s *Store) Breadcrumbs() []Breadcrumb {
	cur, ok := s.opts.Router.CurrentRoute()
	if !ok {
		return []Breadcrumb{}
	}
	return s.BreadcrumbsOf(CurrentRoute{Name: cur.Name, Path: cur.Path, Meta: cur.Meta})
}

// BreadcrumbsOf 指定路由的面包屑
func (s *Store) BreadcrumbsOf(cur CurrentRoute) []Breadcrumb {
	out := s.builder().Breadcrumbs(cur, s.Menus())
	if out == nil {
		return []Breadcrumb{}
	}
	return out
}

// SelectedMenuKeyPath 选中菜单的 key 路径
func (s *Store) SelectedMenuKeyPath(key string) []string {
	return SelectedMenuKeyPath(key, s.Menus())
}

// IsAuthRouteExist 判断路径对应的权限路由是否存在
//
// 静态模式查静态权限路由；动态模式询问后端，结果按用户缓存。
func (s *Store) IsAuthRouteExist(ctx context.Context, path string) (bool, error) {
	name := ""
	if rr, ok := s.opts.Router.Resolve(path); ok && rr.Name != NotFoundName {
		name = rr.Name
	}
	if name == "" {
		name, _ = NameOf(path, s.opts.Static.Auth)
	}
	if name == "" {
		return false, nil
	}

	if s.opts.Mode == ModeStatic {
		return IsRouteExistByName(name, s.opts.Static.Auth), nil
	}
	if s.opts.Source == nil {
		return false, nil
	}

	key := ""
	if s.opts.ExistCache != nil {
		uid := ""
		if s.opts.Identity != nil {
			uid = s.opts.Identity.UserID()
		}
		key = ExistKey(uid, name)
		if exists, ok := s.opts.ExistCache.Get(ctx, key); ok {
			return exists, nil
		}
	}
	exists, err := s.opts.Source.IsRouteExist(ctx, name)
	if err != nil {
		return false, err
	}
	if key != "" {
		s.opts.ExistCache.Set(ctx, key, exists)
	}
	return exists, nil
}

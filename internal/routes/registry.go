package routes

import (
	"fmt"
	"strings"
	"sync"
)

// Router 路由器，Store 只依赖这组操作
type Router interface {
	AddRoute(r RouterRoute) (remove func(), err error)
	RemoveRoute(name string)
	HasRoute(name string) bool
	Resolve(path string) (RouterRoute, bool)
	CurrentRoute() (RouterRoute, bool)
	Push(path string) (RouterRoute, error)
	Routes() []RouterRoute
}

const maxRedirects = 8

type entry struct {
	route RouterRoute
}

// Registry 每个会话一份的内存路由表
type Registry struct {
	mu      sync.RWMutex
	entries []*entry
	current *RouterRoute
}

// NewRegistry 创建路由表并注册内置路由
func NewRegistry(builtin ...RouterRoute) *Registry {
	r := &Registry{}
	for _, b := range builtin {
		_, _ = r.AddRoute(b)
	}
	return r
}

// BuiltinRoutes 根路由与兜底 404 路由
func BuiltinRoutes(homePath string) []RouterRoute {
	return []RouterRoute{
		RootRoute(homePath),
		{
			Path:   "/:pathMatch(.*)*",
			Layout: "blank",
			Meta:   Meta{Title: NotFoundName, Constant: true},
			Children: []RouterRoute{{
				Name: NotFoundName,
				View: "404",
				Meta: Meta{Title: NotFoundName, Constant: true},
			}},
		},
	}
}

// RootRoute 重定向到首页的根路由
func RootRoute(redirect string) RouterRoute {
	return RouterRoute{
		Name:     RootRouteName,
		Path:     "/",
		Redirect: redirect,
		Meta:     Meta{Title: RootRouteName, Constant: true},
	}
}

// AddRoute 注册一级路由，同名路由先被替换
func (r *Registry) AddRoute(route RouterRoute) (func(), error) {
	if route.Path == "" && route.Name == "" {
		return nil, fmt.Errorf("routes: route without name and path")
	}
	e := &entry{route: route}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range collectNames(route) {
		r.removeLocked(name)
	}
	r.entries = append(r.entries, e)

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, cur := range r.entries {
			if cur == e {
				r.entries = append(r.entries[:i], r.entries[i+1:]...)
				return
			}
		}
	}, nil
}

func collectNames(route RouterRoute) []string {
	var names []string
	if route.Name != "" {
		names = append(names, route.Name)
	}
	for _, c := range route.Children {
		names = append(names, collectNames(c)...)
	}
	return names
}

// RemoveRoute 按名称移除，命中子路由时只移除该子路由
func (r *Registry) RemoveRoute(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(name)
}

func (r *Registry) removeLocked(name string) {
	for i, e := range r.entries {
		if e.route.Name == name {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
		if kids, ok := removeChild(e.route.Children, name); ok {
			e.route.Children = kids
			if e.route.Name == "" && len(kids) == 0 {
				r.entries = append(r.entries[:i], r.entries[i+1:]...)
			}
			return
		}
	}
}

func removeChild(children []RouterRoute, name string) ([]RouterRoute, bool) {
	for i, c := range children {
		if c.Name == name {
			out := make([]RouterRoute, 0, len(children)-1)
			out = append(out, children[:i]...)
			return append(out, children[i+1:]...), true
		}
		if kids, ok := removeChild(c.Children, name); ok {
			out := append([]RouterRoute(nil), children...)
			out[i].Children = kids
			return out, true
		}
	}
	return children, false
}

// HasRoute 是否存在该名称的路由
func (r *Registry) HasRoute(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if _, ok := findByName(e.route, name); ok {
			return true
		}
	}
	return false
}

func findByName(route RouterRoute, name string) (RouterRoute, bool) {
	if route.Name == name {
		return route, true
	}
	for _, c := range route.Children {
		if found, ok := findByName(c, name); ok {
			return found, true
		}
	}
	return RouterRoute{}, false
}

// Resolve 按路径匹配路由，优先精确匹配，其次兜底路由
func (r *Registry) Resolve(path string) (RouterRoute, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolveLocked(path)
}

func (r *Registry) resolveLocked(path string) (RouterRoute, bool) {
	want := normalizePath(strings.SplitN(path, "?", 2)[0])
	var fallback *RouterRoute
	for _, e := range r.entries {
		if found, ok := matchPath(e.route, "", want); ok {
			return found, true
		}
		if fallback == nil && strings.Contains(e.route.Path, ":pathMatch") {
			fb := leafOf(e.route)
			fallback = &fb
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return RouterRoute{}, false
}

// 空路径的子路由继承父路径，优先返回有名称的叶子
func matchPath(route RouterRoute, parentPath, want string) (RouterRoute, bool) {
	full := parentPath
	if route.Path != "" {
		full = normalizePath(route.Path)
	}
	for _, c := range route.Children {
		if found, ok := matchPath(c, full, want); ok {
			return found, true
		}
	}
	if full == want && (route.Name != "" || route.Redirect != "") {
		if route.Path == "" {
			route.Path = full
		}
		return route, true
	}
	return RouterRoute{}, false
}

func leafOf(route RouterRoute) RouterRoute {
	for _, c := range route.Children {
		if c.Name != "" {
			return c
		}
	}
	return route
}

// CurrentRoute 当前激活的路由
func (r *Registry) CurrentRoute() (RouterRoute, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return RouterRoute{}, false
	}
	return *r.current, true
}

// Push 跳转到路径，沿 redirect 解析到最终路由
func (r *Registry) Push(path string) (RouterRoute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	target := path
	for i := 0; i < maxRedirects; i++ {
		found, ok := r.resolveLocked(target)
		if !ok {
			return RouterRoute{}, fmt.Errorf("%w: %s", ErrRouteNotFound, path)
		}
		if found.Redirect == "" || found.View != "" {
			r.current = &found
			return found, nil
		}
		target = found.Redirect
	}
	return RouterRoute{}, fmt.Errorf("routes: too many redirects from %s", path)
}

// Routes 已注册的一级路由
func (r *Registry) Routes() []RouterRoute {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RouterRoute, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.route
	}
	return out
}

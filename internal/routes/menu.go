package routes

import (
	"sort"

	"gameops/console/common/utils"
)

// SortRoutesByOrder 按 meta.order 稳定排序，逐层处理子路由，返回新切片
func SortRoutesByOrder(routes []Route) []Route {
	out := cloneRoutes(routes)
	sortLevel(out)
	return out
}

func sortLevel(routes []Route) {
	sort.SliceStable(routes, func(i, j int) bool {
		return routes[i].Meta.Order < routes[j].Meta.Order
	})
	for i := range routes {
		if len(routes[i].Children) > 0 {
			sortLevel(routes[i].Children)
		}
	}
}

func cloneRoutes(routes []Route) []Route {
	if routes == nil {
		return nil
	}
	out := make([]Route, len(routes))
	for i, r := range routes {
		r.Meta.Roles = append([]string(nil), r.Meta.Roles...)
		r.Children = cloneRoutes(r.Children)
		out[i] = r
	}
	return out
}

// FilterByRoles 按角色过滤权限路由
//
// 未声明角色或与用户角色有交集的路由保留；过滤后子路由为空的父路由被移除。
func FilterByRoles(routes []Route, roles []string) []Route {
	out := make([]Route, 0, len(routes))
	for _, r := range routes {
		if kept, ok := filterRoute(r, roles); ok {
			out = append(out, kept)
		}
	}
	return out
}

func filterRoute(r Route, roles []string) (Route, bool) {
	allowed := len(r.Meta.Roles) == 0 || utils.SliceContainsAny(r.Meta.Roles, roles)
	if len(r.Children) > 0 {
		r.Children = FilterByRoles(r.Children, roles)
		if len(r.Children) == 0 {
			return Route{}, false
		}
	}
	return r, allowed
}

// MenuBuilder 由路由生成菜单
type MenuBuilder struct {
	Text     Text
	MenuIcon string
}

func (b MenuBuilder) label(i18nKey, title string) string {
	if i18nKey != "" && b.Text != nil {
		return b.Text(i18nKey)
	}
	return title
}

// MenuOf 单个路由对应的菜单节点
func (b MenuBuilder) MenuOf(name, path string, meta Meta) Menu {
	icon := meta.Icon
	if icon == "" {
		icon = b.MenuIcon
	}
	return Menu{
		Key:       name,
		Label:     b.label(meta.I18nKey, meta.Title),
		I18nKey:   meta.I18nKey,
		RouteKey:  name,
		RoutePath: path,
		Icon:      icon,
		LocalIcon: meta.LocalIcon,
	}
}

// Menus 由已排序的路由生成菜单，hideInMenu 的路由不出现；
// 只有存在可见子路由时才生成 children
func (b MenuBuilder) Menus(routes []Route) []Menu {
	menus := make([]Menu, 0, len(routes))
	for _, r := range routes {
		if r.Meta.HideInMenu {
			continue
		}
		m := b.MenuOf(r.Name, r.Path, r.Meta)
		if hasVisibleChild(r.Children) {
			m.Children = b.Menus(r.Children)
		}
		menus = append(menus, m)
	}
	return menus
}

func hasVisibleChild(children []Route) bool {
	for _, c := range children {
		if !c.Meta.HideInMenu {
			return true
		}
	}
	return false
}

// Relabel 按当前语言刷新菜单文案
func (b MenuBuilder) Relabel(menus []Menu) []Menu {
	out := make([]Menu, len(menus))
	for i, m := range menus {
		if m.I18nKey != "" && b.Text != nil {
			m.Label = b.Text(m.I18nKey)
		}
		if len(m.Children) > 0 {
			m.Children = b.Relabel(m.Children)
		}
		out[i] = m
	}
	return out
}

// SearchMenus 只保留叶子菜单的扁平列表
func SearchMenus(menus []Menu) []Menu {
	out := make([]Menu, 0)
	stack := make([][]Menu, 0, 4)
	stack = append(stack, menus)
	idx := []int{0}
	for len(stack) > 0 {
		top := len(stack) - 1
		if idx[top] >= len(stack[top]) {
			stack = stack[:top]
			idx = idx[:top]
			continue
		}
		m := stack[top][idx[top]]
		idx[top]++
		if len(m.Children) == 0 {
			leaf := m
			leaf.Children = nil
			out = append(out, leaf)
			continue
		}
		if len(stack) >= MaxDepth {
			continue
		}
		stack = append(stack, m.Children)
		idx = append(idx, 0)
	}
	return out
}

// SelectedMenuKeyPath 从根到目标菜单的 key 路径，找不到返回空
func SelectedMenuKeyPath(key string, menus []Menu) []string {
	for _, m := range menus {
		if path := findMenuPath(key, m, 1); len(path) > 0 {
			return path
		}
	}
	return []string{}
}

func findMenuPath(target string, m Menu, depth int) []string {
	if m.Key == target {
		return []string{m.Key}
	}
	if depth >= MaxDepth {
		return nil
	}
	for _, child := range m.Children {
		if sub := findMenuPath(target, child, depth+1); len(sub) > 0 {
			return append([]string{m.Key}, sub...)
		}
	}
	return nil
}

// IsRouteExistByName 路由树中是否存在该名称
func IsRouteExistByName(name string, routes []Route) bool {
	stack := append([]Route(nil), routes...)
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if r.Name == name {
			return true
		}
		stack = append(stack, r.Children...)
	}
	return false
}

// PathOf 按名称查找路由路径
func PathOf(name string, routes []Route) (string, bool) {
	stack := append([]Route(nil), routes...)
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if r.Name == name {
			return r.Path, true
		}
		stack = append(stack, r.Children...)
	}
	return "", false
}

// NameOf 按路径查找路由名称
func NameOf(path string, routes []Route) (string, bool) {
	want := normalizePath(path)
	stack := append([]Route(nil), routes...)
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if r.Path != "" && normalizePath(r.Path) == want {
			return r.Name, true
		}
		stack = append(stack, r.Children...)
	}
	return "", false
}

package routes

import (
	"fmt"
	"strings"
)

// ToRouterRoutes 转换为路由器路由
//
// 一级路由保留嵌套，更深的子路由全部展开为一级路由的子级。
// layout.x$view.y 形式的单级路由包一层布局。
func ToRouterRoutes(routes []Route) ([]RouterRoute, error) {
	out := make([]RouterRoute, 0, len(routes))
	for _, r := range routes {
		converted, err := toRouterRoute(r, true, 1)
		if err != nil {
			return nil, err
		}
		out = append(out, converted...)
	}
	return out, nil
}

func toRouterRoute(r Route, firstLevel bool, depth int) ([]RouterRoute, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("%w: %s", ErrRouteTooDeep, r.Name)
	}
	rr := RouterRoute{Name: r.Name, Path: r.Path, Redirect: r.Redirect, Meta: r.Meta}

	if r.Component != "" {
		if layout, view, ok := strings.Cut(r.Component, singleLevelSep); ok {
			l, okL := strings.CutPrefix(layout, layoutPrefix)
			v, okV := strings.CutPrefix(view, viewPrefix)
			if !okL || !okV || l == "" || v == "" {
				return nil, fmt.Errorf("%w: %q on route %q", ErrInvalidComponent, r.Component, r.Name)
			}
			rr.Path = ""
			rr.View = v
			wrapper := RouterRoute{
				Path:     r.Path,
				Layout:   l,
				Meta:     Meta{Title: r.Meta.Title},
				Children: []RouterRoute{rr},
			}
			return []RouterRoute{wrapper}, nil
		}
		switch {
		case strings.HasPrefix(r.Component, layoutPrefix):
			rr.Layout = strings.TrimPrefix(r.Component, layoutPrefix)
		case strings.HasPrefix(r.Component, viewPrefix):
			rr.View = strings.TrimPrefix(r.Component, viewPrefix)
		default:
			return nil, fmt.Errorf("%w: %q on route %q", ErrInvalidComponent, r.Component, r.Name)
		}
	}

	if len(r.Children) > 0 && rr.Redirect == "" {
		rr.Redirect = normalizePath(r.Children[0].Path)
	}

	result := []RouterRoute{rr}
	if len(r.Children) == 0 {
		return result, nil
	}
	var kids []RouterRoute
	for _, c := range r.Children {
		converted, err := toRouterRoute(c, false, depth+1)
		if err != nil {
			return nil, err
		}
		kids = append(kids, converted...)
	}
	if firstLevel {
		result[0].Children = kids
		return result, nil
	}
	return append(result, kids...), nil
}

// CacheRouteNames 需要缓存的路由名，只看一级路由下带视图且 keepAlive 的子路由
func CacheRouteNames(routes []RouterRoute) []string {
	names := make([]string, 0)
	for _, r := range routes {
		for _, c := range r.Children {
			if c.View != "" && c.Meta.KeepAlive && c.Name != "" {
				names = append(names, c.Name)
			}
		}
	}
	return names
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	return "/" + strings.Trim(collapseSlashes(p), "/")
}

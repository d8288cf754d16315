package routes

import (
	"fmt"
	"strings"
)

// TransformBackendRoutes 把后端路由树转换为权限路由
//
// 路由名为全部祖先名与自身名小写后用 _ 连接；有子节点的为 layout.base，
// 叶子为 view.<name>。生成名冲突时返回 ErrDuplicateRouteName。
func TransformBackendRoutes(nodes []BackendRoute) ([]Route, error) {
	type item struct {
		src        *BackendRoute
		dst        *Route
		parentPath string
		parentName string
		depth      int
	}

	out := make([]Route, len(nodes))
	stack := make([]item, 0, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		stack = append(stack, item{src: &nodes[i], dst: &out[i], depth: 1})
	}

	seen := make(map[string]string)
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.depth > MaxDepth {
			return nil, fmt.Errorf("%w: %s", ErrRouteTooDeep, it.parentPath)
		}

		src := it.src
		own := strings.ToLower(strings.TrimSpace(src.Name))
		if own == "" {
			own = DefaultName
		}
		name := own
		if it.parentName != "" {
			name = it.parentName + nameSeparator + own
		}
		path := JoinPath(it.parentPath, src.Path)
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q generated by %q and %q", ErrDuplicateRouteName, name, prev, path)
		}
		seen[name] = path

		*it.dst = buildRoute(src, name, path)
		if len(src.Children) == 0 {
			continue
		}
		it.dst.Children = make([]Route, len(src.Children))
		for i := len(src.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{
				src:        &src.Children[i],
				dst:        &it.dst.Children[i],
				parentPath: path,
				parentName: name,
				depth:      it.depth + 1,
			})
		}
	}
	return out, nil
}

func buildRoute(src *BackendRoute, name, path string) Route {
	component := viewPrefix + name
	if len(src.Children) > 0 {
		component = BaseLayout
	}
	icon := src.Meta.Icon
	if icon == "" {
		icon = DefaultIcon
	}
	order := DefaultOrder
	if src.Meta.Order != nil {
		order = *src.Meta.Order
	}
	keepAlive := true
	if src.Meta.KeepAlive != nil {
		keepAlive = *src.Meta.KeepAlive
	}
	roles := append([]string{}, src.Meta.Roles...)
	return Route{
		Name:      name,
		Path:      path,
		Component: component,
		Meta: Meta{
			Title:      src.Meta.Title,
			I18nKey:    i18nRoutePrefix + name,
			Icon:       icon,
			Order:      order,
			Roles:      roles,
			KeepAlive:  keepAlive,
			HideInMenu: src.Hidden,
		},
	}
}

// JoinPath 拼接父子路径，不产生重复的斜杠
func JoinPath(parent, child string) string {
	child = strings.TrimSpace(child)
	if parent == "" {
		return collapseSlashes(child)
	}
	c := strings.TrimLeft(child, "/")
	if c == "" {
		return parent
	}
	return collapseSlashes(strings.TrimRight(parent, "/") + "/" + c)
}

func collapseSlashes(p string) string {
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}

// DynamicFixedRoutes 动态模式下追加的首页与个人中心
func DynamicFixedRoutes() []Route {
	return []Route{
		{
			Name:      HomeRouteName,
			Path:      "/home",
			Component: "layout.base$view.home",
			Meta: Meta{
				Title:   HomeRouteName,
				I18nKey: "route.home",
				Icon:    "mdi:monitor-dashboard",
				Order:   1,
			},
		},
		{
			Name:      UserCenterName,
			Path:      "/user-center",
			Component: "layout.base$view.user-center",
			Meta: Meta{
				Title:      UserCenterName,
				I18nKey:    "route.user-center",
				HideInMenu: true,
			},
		},
	}
}

package routes

// CurrentRoute 当前激活路由的信息
type CurrentRoute struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Meta Meta   `json:"meta"`
}

// Breadcrumbs 根据当前路由在菜单中的位置生成面包屑
//
// 路由声明了 activeMenu 时按 activeMenu 定位，末级节点用当前路由自身生成。
func (b MenuBuilder) Breadcrumbs(current CurrentRoute, menus []Menu) []Breadcrumb {
	return b.breadcrumbs(current, menus, 1)
}

func (b MenuBuilder) breadcrumbs(current CurrentRoute, menus []Menu, depth int) []Breadcrumb {
	if depth > MaxDepth {
		return nil
	}
	activeKey := current.Meta.ActiveMenu
	menuKey := current.Name
	if activeKey != "" {
		menuKey = activeKey
	}
	for _, m := range menus {
		if m.Key == menuKey {
			crumb := m
			if activeKey != "" {
				crumb = b.MenuOf(current.Name, current.Path, current.Meta)
			}
			return []Breadcrumb{toBreadcrumb(crumb)}
		}
		if len(m.Children) > 0 {
			if sub := b.breadcrumbs(current, m.Children, depth+1); len(sub) > 0 {
				return append([]Breadcrumb{toBreadcrumb(m)}, sub...)
			}
		}
	}
	return nil
}

func toBreadcrumb(m Menu) Breadcrumb {
	bc := Breadcrumb{
		Key:       m.Key,
		Label:     m.Label,
		I18nKey:   m.I18nKey,
		RouteKey:  m.RouteKey,
		RoutePath: m.RoutePath,
		Icon:      m.Icon,
		LocalIcon: m.LocalIcon,
	}
	if len(m.Children) > 0 {
		bc.Options = make([]Breadcrumb, len(m.Children))
		for i, c := range m.Children {
			bc.Options[i] = toBreadcrumb(c)
		}
	}
	return bc
}

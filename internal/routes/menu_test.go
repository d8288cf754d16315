package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAuthRoutes() []Route {
	return []Route{
		{
			Name: "manage", Path: "/manage", Component: BaseLayout,
			Meta: Meta{Title: "manage", I18nKey: "route.manage", Order: 9, Roles: []string{"R_SUPER"}},
			Children: []Route{
				{Name: "manage_user", Path: "/manage/user", Component: "view.manage_user",
					Meta: Meta{Title: "manage_user", Roles: []string{"R_SUPER"}, KeepAlive: true}},
			},
		},
		{
			Name: "game", Path: "/game", Component: BaseLayout,
			Meta: Meta{Title: "game", I18nKey: "route.game", Icon: "mdi:gamepad", Order: 2},
			Children: []Route{
				{Name: "game_server", Path: "/game/server", Component: "view.game_server",
					Meta: Meta{Title: "game_server", Order: 2, Roles: []string{"R_ADMIN"}}},
				{Name: "game_list", Path: "/game/list", Component: "view.game_list",
					Meta: Meta{Title: "game_list", I18nKey: "route.game_list", Order: 1, KeepAlive: true}},
				{Name: "game_detail", Path: "/game/detail", Component: "view.game_detail",
					Meta: Meta{Title: "game_detail", HideInMenu: true, ActiveMenu: "game_list"}},
			},
		},
		{
			Name: "home", Path: "/home", Component: "layout.base$view.home",
			Meta: Meta{Title: "home", I18nKey: "route.home", Order: 1},
		},
		{
			Name: "user-center", Path: "/user-center", Component: "layout.base$view.user-center",
			Meta: Meta{Title: "user-center", HideInMenu: true},
		},
	}
}

func names(rs []Route) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

func TestSortRoutesByOrder(t *testing.T) {
	in := sampleAuthRoutes()
	sorted := SortRoutesByOrder(in)
	assert.Equal(t, []string{"user-center", "home", "game", "manage"}, names(sorted))
	game := sorted[2]
	require.Equal(t, "game", game.Name)
	assert.Equal(t, []string{"game_detail", "game_list", "game_server"}, names(game.Children))
	// 原切片不变
	assert.Equal(t, "manage", in[0].Name)
	assert.Equal(t, "game_server", in[1].Children[0].Name)
}

func TestFilterByRoles(t *testing.T) {
	admin := FilterByRoles(sampleAuthRoutes(), []string{"R_ADMIN"})
	assert.Equal(t, []string{"game", "home", "user-center"}, names(admin))
	assert.Equal(t, []string{"game_server", "game_list", "game_detail"}, names(admin[0].Children))

	none := FilterByRoles(sampleAuthRoutes(), nil)
	assert.Equal(t, []string{"game", "home", "user-center"}, names(none))
	assert.Equal(t, []string{"game_list", "game_detail"}, names(none[0].Children))

	super := FilterByRoles(sampleAuthRoutes(), []string{"R_SUPER"})
	assert.Equal(t, []string{"manage", "game", "home", "user-center"}, names(super))
}

// TestFilterByRoles_EmptyParentDropped 子路由全部被过滤时父路由一并移除
func TestFilterByRoles_EmptyParentDropped(t *testing.T) {
	routes := []Route{{
		Name: "ops", Path: "/ops",
		Children: []Route{{Name: "ops_kick", Path: "/ops/kick", Meta: Meta{Roles: []string{"R_OPS"}}}},
	}}
	assert.Empty(t, FilterByRoles(routes, []string{"R_ADMIN"}))
	assert.Len(t, FilterByRoles(routes, []string{"R_OPS"}), 1)
}

func TestMenus(t *testing.T) {
	b := MenuBuilder{
		Text:     func(key string) string { return "T(" + key + ")" },
		MenuIcon: "mdi:menu",
	}
	menus := b.Menus(SortRoutesByOrder(FilterByRoles(sampleAuthRoutes(), []string{"R_ADMIN"})))
	require.Len(t, menus, 2)

	home := menus[0]
	assert.Equal(t, "home", home.Key)
	assert.Equal(t, "T(route.home)", home.Label)
	assert.Equal(t, "mdi:menu", home.Icon)
	assert.Empty(t, home.Children)

	game := menus[1]
	assert.Equal(t, "mdi:gamepad", game.Icon)
	require.Len(t, game.Children, 2)
	assert.Equal(t, "game_list", game.Children[0].Key)
	assert.Equal(t, "/game/list", game.Children[0].RoutePath)
	assert.Equal(t, "game_server", game.Children[1].Label)

	relabeled := MenuBuilder{Text: func(key string) string { return "EN(" + key + ")" }}.Relabel(menus)
	assert.Equal(t, "EN(route.home)", relabeled[0].Label)
	assert.Equal(t, "EN(route.game_list)", relabeled[1].Children[0].Label)
	assert.Equal(t, "game_server", relabeled[1].Children[1].Label)
	assert.Equal(t, "T(route.home)", menus[0].Label)
}

// TestMenus_HiddenChildrenOnly 只有隐藏子路由时不生成 children
func TestMenus_HiddenChildrenOnly(t *testing.T) {
	menus := MenuBuilder{}.Menus([]Route{{
		Name: "game", Path: "/game",
		Children: []Route{{Name: "game_detail", Path: "/game/detail", Meta: Meta{HideInMenu: true}}},
	}})
	require.Len(t, menus, 1)
	assert.Nil(t, menus[0].Children)
}

func TestSearchMenusAndKeyPath(t *testing.T) {
	menus := MenuBuilder{}.Menus(SortRoutesByOrder(sampleAuthRoutes()))

	leaves := SearchMenus(menus)
	keys := make([]string, len(leaves))
	for i, m := range leaves {
		keys[i] = m.Key
	}
	assert.Equal(t, []string{"home", "game_list", "game_server", "manage_user"}, keys)

	assert.Equal(t, []string{"game", "game_server"}, SelectedMenuKeyPath("game_server", menus))
	assert.Equal(t, []string{"home"}, SelectedMenuKeyPath("home", menus))
	assert.Equal(t, []string{}, SelectedMenuKeyPath("missing", menus))
}

func TestLookups(t *testing.T) {
	routes := sampleAuthRoutes()
	assert.True(t, IsRouteExistByName("game_list", routes))
	assert.False(t, IsRouteExistByName("game_missing", routes))

	p, ok := PathOf("manage_user", routes)
	assert.True(t, ok)
	assert.Equal(t, "/manage/user", p)

	n, ok := NameOf("game/list/", routes)
	assert.True(t, ok)
	assert.Equal(t, "game_list", n)

	_, ok = NameOf("/nowhere", routes)
	assert.False(t, ok)
}

func TestBreadcrumbs(t *testing.T) {
	b := MenuBuilder{}
	menus := b.Menus(SortRoutesByOrder(sampleAuthRoutes()))

	crumbs := b.Breadcrumbs(CurrentRoute{Name: "game_list", Path: "/game/list"}, menus)
	require.Len(t, crumbs, 2)
	assert.Equal(t, "game", crumbs[0].Key)
	require.Len(t, crumbs[0].Options, 2)
	assert.Equal(t, "game_server", crumbs[0].Options[1].Key)
	assert.Equal(t, "game_list", crumbs[1].Key)

	// activeMenu 定位到 game_list，末级用当前路由
	detail := b.Breadcrumbs(CurrentRoute{
		Name: "game_detail", Path: "/game/detail",
		Meta: Meta{Title: "详情", ActiveMenu: "game_list"},
	}, menus)
	require.Len(t, detail, 2)
	assert.Equal(t, "game", detail[0].Key)
	assert.Equal(t, "game_detail", detail[1].Key)
	assert.Equal(t, "详情", detail[1].Label)

	assert.Empty(t, b.Breadcrumbs(CurrentRoute{Name: "nope"}, menus))
}

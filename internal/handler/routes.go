package handler

import (
	"strings"

	"gameops/console/common/response"
	"gameops/console/internal/routes"
	"gameops/console/internal/types"

	"github.com/gofiber/fiber/v2"
)

func routesResponse(store *routes.Store) types.RoutesResponse {
	return types.RoutesResponse{
		Home:        store.RouteHome(),
		Lifecycle:   string(store.Lifecycle()),
		Routes:      store.Routes(),
		Menus:       store.Menus(),
		CacheRoutes: store.CacheRoutes(),
	}
}

// RoutesGet 权限路由与菜单，首次访问时加载
func RoutesGet(c *fiber.Ctx) error {
	store := current(c).Routes()
	if !store.IsInitAuthRoute() {
		if err := store.InitAuthRoute(c.UserContext()); err != nil {
			return fail(c, err)
		}
	}
	return response.Success(c, routesResponse(store))
}

// RoutesReload 重置并重新加载权限路由
func RoutesReload(c *fiber.Ctx) error {
	store := current(c).Routes()
	if err := store.ResetStore(c.UserContext()); err != nil {
		return fail(c, err)
	}
	if err := store.InitAuthRoute(c.UserContext()); err != nil {
		return fail(c, err)
	}
	return response.Success(c, routesResponse(store))
}

// RoutesNavigate 切换当前路由，返回解析结果与面包屑
func RoutesNavigate(c *fiber.Ctx) error {
	var req types.NavigateRequest
	if err := c.BodyParser(&req); err != nil || req.Path == "" {
		return response.Error(c, "参数错误")
	}
	store := current(c).Routes()
	rr, err := store.Router().Push(req.Path)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, types.NavigateResponse{
		Route:       rr,
		Breadcrumbs: store.Breadcrumbs(),
		MenuKeyPath: store.SelectedMenuKeyPath(rr.Name),
	})
}

// RoutesBreadcrumbs 当前路由的面包屑
func RoutesBreadcrumbs(c *fiber.Ctx) error {
	store := current(c).Routes()
	if path := c.Query("path"); path != "" {
		rr, ok := store.Router().Resolve(path)
		if !ok {
			return response.Success(c, []routes.Breadcrumb{})
		}
		return response.Success(c, store.BreadcrumbsOf(routes.CurrentRoute{Name: rr.Name, Path: path, Meta: rr.Meta}))
	}
	return response.Success(c, store.Breadcrumbs())
}

// RoutesMenuPath 选中菜单的 key 路径
func RoutesMenuPath(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" {
		return response.Error(c, "菜单标识不能为空")
	}
	return response.Success(c, current(c).Routes().SelectedMenuKeyPath(key))
}

// RoutesExists 路径对应的权限路由是否存在
func RoutesExists(c *fiber.Ctx) error {
	path := c.Query("path")
	if path == "" {
		return response.Error(c, "路径不能为空")
	}
	ok, err := current(c).Routes().IsAuthRouteExist(c.UserContext(), path)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, ok)
}

// RoutesSearch 按关键字搜索叶子菜单，关键字为空返回全部
func RoutesSearch(c *fiber.Ctx) error {
	keyword := strings.ToLower(strings.TrimSpace(c.Query("keyword")))
	menus := current(c).Routes().SearchMenus()
	out := make([]routes.Menu, 0, len(menus))
	for _, m := range menus {
		if keyword == "" || strings.Contains(strings.ToLower(m.Label), keyword) || strings.Contains(strings.ToLower(m.RoutePath), keyword) {
			out = append(out, m)
		}
	}
	return response.Success(c, out)
}

// RoutesCacheReset 需要刷新 keep-alive 缓存的路由
func RoutesCacheReset(c *fiber.Ctx) error {
	return response.Success(c, current(c).Routes().ResetRouteCache(c.Query("name")))
}

// SessionLocale 切换语言
func SessionLocale(c *fiber.Ctx) error {
	var req types.LocaleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "参数解析失败")
	}
	s := current(c)
	if !s.SetLocale(req.Locale) {
		return response.Error(c, "不支持的语言")
	}
	for _, t := range s.OpenTables() {
		t.ReloadColumns()
	}
	return response.Success(c, types.LocaleRequest{Locale: s.Locale()})
}

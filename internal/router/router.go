package router

import (
	commonMiddleware "gameops/console/common/middleware"
	"gameops/console/internal/handler"
	"gameops/console/internal/logic"
	"gameops/console/internal/middleware"
	"gameops/console/internal/svc"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Setup 设置路由
func Setup(app *fiber.App, ctx *svc.ServiceContext, origins []string) {
	// 全局中间件
	app.Use(commonMiddleware.CORS(origins), commonMiddleware.RequestID(), commonMiddleware.Logger(), commonMiddleware.Recover())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// ========== 公开路由 ==========
	api.Post("/auth/login", handler.AuthLogin)

	// 会话重置后仍要取走退出弹窗
	n := api.Group("/notices")
	n.Get("", handler.NoticesDrain)
	n.Post("/dialog/ack", handler.NoticesDialogAck)

	// ========== 需要认证的路由 ==========
	authed := api.Group("", middleware.AuthMiddleware(ctx.Sessions, ctx.Config.SaToken.TokenName))

	ag := authed.Group("/auth")
	ag.Post("/logout", handler.AuthLogout)
	ag.Get("/user-info", handler.AuthGetUserInfo)

	authed.Put("/session/locale", handler.SessionLocale)

	// 路由与菜单
	r := authed.Group("/routes")
	r.Get("", handler.RoutesGet)
	r.Post("/reload", handler.RoutesReload)
	r.Post("/navigate", handler.RoutesNavigate)
	r.Get("/breadcrumbs", handler.RoutesBreadcrumbs)
	r.Get("/menu-path", handler.RoutesMenuPath)
	r.Get("/exists", handler.RoutesExists)
	r.Get("/search", handler.RoutesSearch)
	r.Get("/cache-reset", handler.RoutesCacheReset)

	// 列表页
	t := authed.Group("/tables")
	t.Get("", handler.TableList)
	t.Get("/:key", handler.TableGet)
	t.Post("/:key/data", handler.TableData)
	t.Post("/:key/page", handler.TablePage)
	t.Post("/:key/page-size", handler.TablePageSize)
	t.Post("/:key/search", handler.TableSearch)
	t.Post("/:key/search/reset", handler.TableSearchReset)
	t.Put("/:key/columns", handler.TableColumns)
	t.Post("/:key/columns/reload", handler.TableColumnsReload)
	t.Post("/:key/operate/add", handler.OperateAdd)
	t.Post("/:key/operate/edit", handler.OperateEdit)
	t.Post("/:key/operate/drawer/close", handler.OperateDrawerClose)
	t.Put("/:key/operate/checked", handler.OperateChecked)
	t.Delete("/:key/rows", handler.TableDeleteRows)

	// 表格视图
	v := authed.Group("/table-views")
	v.Get("/:tableKey", handler.TableViewGet)
	v.Post("", handler.TableViewSave)
	v.Delete("/:id", handler.TableViewDelete)
	v.Put("/:tableKey/default/:id", handler.TableViewSetDefault)
	v.Put("/:tableKey/sort", handler.TableViewUpdateSort)
	v.Post("/:tableKey/apply/:id", handler.TableViewApply)
	v.Post("/system", middleware.PermissionMiddleware(logic.SystemViewPermission), handler.TableViewSaveSystem)
}

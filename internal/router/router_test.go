package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	commonConfig "gameops/console/common/config"
	"gameops/console/common/response"
	"gameops/console/common/utils"
	"gameops/console/internal/auth"
	"gameops/console/internal/config"
	"gameops/console/internal/notice"
	"gameops/console/internal/routes"
	"gameops/console/internal/session"
	"gameops/console/internal/svc"
	"gameops/console/internal/table"
	"gameops/console/internal/upstream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := auth.InitSaToken(&commonConfig.Config{
		SaToken: commonConfig.SaTokenConfig{TokenName: "satoken", Timeout: 3600, IsConcurrent: true, MaxLoginCount: 12},
	}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func startUpstream(t *testing.T, kicked *atomic.Bool) string {
	t.Helper()
	app := fiber.New()
	app.Post("/auth/login", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"code": 200, "data": fiber.Map{"token": "up", "refreshToken": "r"}})
	})
	app.Get("/platform-system/user/getInfo", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"code":        200,
			"permissions": []string{"game:*"},
			"roles":       []string{"R_ADMIN"},
			"user":        fiber.Map{"userId": 42, "userName": "ops", "nickName": "运营"},
		})
	})
	app.Get("/game/list", func(c *fiber.Ctx) error {
		if kicked.Load() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"code": 100005, "msg": "kicked"})
		}
		return c.JSON(fiber.Map{"code": 200, "total": 2, "rows": []fiber.Map{
			{"gameId": 1, "name": "dragon"},
			{"gameId": 2, "name": "phoenix"},
		}})
	})
	app.Delete("/game/:ids", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"code": 200, "msg": "ok"})
	})
	server := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(server.Close)
	return server.URL
}

func setup(t *testing.T) (*fiber.App, *atomic.Bool) {
	t.Helper()
	kicked := &atomic.Bool{}
	cfg := &config.Config{}
	cfg.Upstream.Platform = config.ClientConfig{BaseURL: startUpstream(t, kicked)}
	cfg.Console.RouteMode = "static"
	cfg.Console.Tables = []config.TableDecl{{
		Key: "game", Title: "route.game", ListPath: "/game/list", DeletePath: "/game",
		IDKey: "gameId", Permission: "game:list",
		Columns: []table.Column{{Type: "selection"}, {Key: "gameId", Title: "ID"}, {Key: "name", Title: "名称"}},
	}}
	cfg.SetDefaults()

	gate := notice.NewGate(time.Minute)
	platform := upstream.New(session.PlatformClient, cfg.Upstream.Platform, gate)
	t.Cleanup(platform.Close)
	m := session.NewManager(session.Deps{
		Config:  cfg,
		Clients: map[string]*upstream.Client{session.PlatformClient: platform},
		Gate:    gate,
		Static: routes.StaticRoutes{
			Constant: []routes.Route{{
				Name: "login", Path: "/login", Component: "layout.blank$view.login",
				Meta: routes.Meta{Title: "login", Constant: true, HideInMenu: true},
			}},
			Auth: []routes.Route{
				{Name: "home", Path: "/home", Component: "layout.base$view.home", Meta: routes.Meta{Title: "home", Order: 1}},
				{Name: "game", Path: "/game", Component: "layout.base$view.game", Meta: routes.Meta{Title: "游戏管理", Order: 2}},
			},
		},
		ExistCache: routes.NewMemoryExistCache(time.Minute),
	})

	ctx := svc.Init(cfg, nil, nil, m)
	app := fiber.New()
	Setup(app, ctx, nil)
	return app, kicked
}

type envelope struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func call(t *testing.T, app *fiber.App, method, path, token, body string) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("satoken", token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if strings.HasPrefix(strings.TrimSpace(string(raw)), "{") {
		var loose struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Data    any    `json:"data"`
		}
		require.NoError(t, utils.Unmarshal(raw, &loose))
		env.Code, env.Message = loose.Code, loose.Message
		env.Data, _ = loose.Data.(map[string]any)
	}
	return resp.StatusCode, env
}

func loginToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, env := call(t, app, http.MethodPost, "/api/auth/login", "", `{"username":"ops","password":"123456"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, response.CodeSuccess, env.Code)
	token, _ := env.Data["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, "satoken", env.Data["tokenName"])
	return token
}

func TestLoginAndUserInfo(t *testing.T) {
	app, _ := setup(t)
	token := loginToken(t, app)

	status, env := call(t, app, http.MethodGet, "/api/auth/user-info", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "42", env.Data["userId"])
	assert.Equal(t, "运营", env.Data["nickName"])

	status, env = call(t, app, http.MethodGet, "/api/notices", token, "")
	require.Equal(t, http.StatusOK, status)
	msgs, _ := env.Data["messages"].([]any)
	assert.Len(t, msgs, 2)
}

func TestRequiresLogin(t *testing.T) {
	app, _ := setup(t)

	status, env := call(t, app, http.MethodGet, "/api/routes", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, response.CodeUnauthorized, env.Code)

	status, _ = call(t, app, http.MethodGet, "/api/tables", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, app, http.MethodPost, "/api/auth/login", "", `{"username":"ops"}`)
	assert.Equal(t, http.StatusOK, status)
}

func TestRoutes(t *testing.T) {
	app, _ := setup(t)
	token := loginToken(t, app)

	status, env := call(t, app, http.MethodGet, "/api/routes", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, string(routes.AuthRoutesLoaded), env.Data["lifecycle"])
	menus, _ := env.Data["menus"].([]any)
	assert.Len(t, menus, 2)

	status, env = call(t, app, http.MethodPost, "/api/routes/navigate", token, `{"path":"/game"}`)
	require.Equal(t, http.StatusOK, status)
	route, _ := env.Data["route"].(map[string]any)
	assert.Equal(t, "game", route["name"])

	status, env = call(t, app, http.MethodGet, "/api/routes/exists?path=/game", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, response.CodeSuccess, env.Code)
}

func TestTableLifecycle(t *testing.T) {
	app, _ := setup(t)
	token := loginToken(t, app)
	call(t, app, http.MethodGet, "/api/notices", token, "")

	status, env := call(t, app, http.MethodGet, "/api/tables/game", token, "")
	require.Equal(t, http.StatusOK, status)
	tbl, _ := env.Data["table"].(map[string]any)
	rows, _ := tbl["data"].([]any)
	require.Len(t, rows, 2)
	first, _ := rows[0].(map[string]any)
	assert.EqualValues(t, 1, first["index"])

	status, env = call(t, app, http.MethodPost, "/api/tables/game/search", token, `{"params":{"name":"dragon"}}`)
	require.Equal(t, http.StatusOK, status)
	tbl, _ = env.Data["table"].(map[string]any)
	params, _ := tbl["searchParams"].(map[string]any)
	assert.Equal(t, "dragon", params["name"])

	status, env = call(t, app, http.MethodPut, "/api/tables/game/operate/checked", token, `{"keys":["1","2"]}`)
	require.Equal(t, http.StatusOK, status)

	status, env = call(t, app, http.MethodDelete, "/api/tables/game/rows", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, env.Data["deleted"])

	_, env = call(t, app, http.MethodGet, "/api/notices", token, "")
	msgs, _ := env.Data["messages"].([]any)
	require.NotEmpty(t, msgs)

	status, _ = call(t, app, http.MethodGet, "/api/tables/unknown", token, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestKickedSessionDeliversDialog(t *testing.T) {
	app, kicked := setup(t)
	token := loginToken(t, app)

	status, _ := call(t, app, http.MethodGet, "/api/tables/game", token, "")
	require.Equal(t, http.StatusOK, status)

	kicked.Store(true)
	status, _ = call(t, app, http.MethodPost, "/api/tables/game/data", token, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, app, http.MethodGet, "/api/tables", token, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env := call(t, app, http.MethodGet, "/api/notices", token, "")
	require.Equal(t, http.StatusOK, status)
	dialogs, _ := env.Data["dialogs"].([]any)
	require.Len(t, dialogs, 1)
	dialog, _ := dialogs[0].(map[string]any)
	assert.Equal(t, string(notice.KindAccountKicked), dialog["kind"])

	status, _ = call(t, app, http.MethodPost, "/api/notices/dialog/ack", token, `{"kind":"account-kicked"}`)
	assert.Equal(t, http.StatusOK, status)
}

func TestLocaleAndLogout(t *testing.T) {
	app, _ := setup(t)
	token := loginToken(t, app)

	status, env := call(t, app, http.MethodPut, "/api/session/locale", token, `{"locale":"en-US"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "en-US", env.Data["locale"])

	_, env = call(t, app, http.MethodPut, "/api/session/locale", token, `{"locale":"xx"}`)
	assert.Equal(t, response.CodeError, env.Code)

	status, _ = call(t, app, http.MethodPost, "/api/auth/logout", token, "")
	require.Equal(t, http.StatusOK, status)
	status, _ = call(t, app, http.MethodGet, "/api/auth/user-info", token, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestTableViewsWithoutDatabase(t *testing.T) {
	app, _ := setup(t)
	token := loginToken(t, app)

	status, env := call(t, app, http.MethodGet, "/api/table-views/game", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, response.CodeError, env.Code)
	assert.Contains(t, env.Message, "未启用数据库")

	status, _ = call(t, app, http.MethodPost, "/api/table-views/system", token, `{"tableKey":"game","name":"v"}`)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := setup(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

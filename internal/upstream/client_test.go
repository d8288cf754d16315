package upstream

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gameops/console/internal/config"
	"gameops/console/internal/notice"
	"gameops/console/internal/operate"
	"gameops/console/internal/table"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu      sync.Mutex
	id      string
	token   string
	refresh string
	resets  int
	queue   *notice.Queue
}

func newFakeSession(token, refresh string) *fakeSession {
	return &fakeSession{id: "s-" + token, token: token, refresh: refresh, queue: notice.NewQueue()}
}

func (s *fakeSession) ID() string { return s.id }

func (s *fakeSession) UpstreamToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *fakeSession) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh
}

func (s *fakeSession) SetUpstreamTokens(token, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.refresh = token, refresh
}

func (s *fakeSession) Notices() *notice.Queue { return s.queue }
func (s *fakeSession) T(key string) string    { return key }

func (s *fakeSession) Reset(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets++
	return nil
}

func (s *fakeSession) resetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resets
}

type upstreamState struct {
	refreshCalls atomic.Int32
	flatRoutes   atomic.Bool
}

func setupUpstream(t *testing.T) (string, *upstreamState) {
	t.Helper()
	st := &upstreamState{}
	app := fiber.New()

	app.Get("/ok/array", func(c *fiber.Ctx) error { return c.JSON([]int{1, 2}) })
	app.Get("/ok/nocode", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"name": "x"}) })
	app.Get("/ok/code", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"code": 200, "msg": "ok", "data": fiber.Map{"v": 1}})
	})
	app.Get("/fail/business", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"code": 500, "msg": "操作失败"})
	})
	app.Get("/http401", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"msg": "unauthorized"})
	})
	app.Get("/code401", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"code": 401}) })
	app.Get("/kicked", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"code": 100005, "msg": "kicked"})
	})
	app.Get("/expired403", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"code": "100001"})
	})
	app.Get("/forbidden", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"code": 403, "msg": "无权限"})
	})
	app.Get("/logout", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"code": 8888, "msg": "bye"}) })
	app.Get("/modal", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"code": 7777, "msg": "余额异常"}) })
	app.Get("/guarded", func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "Bearer new" {
			return c.JSON(fiber.Map{"code": 200, "data": "fresh"})
		}
		return c.JSON(fiber.Map{"code": 9999, "msg": "token expired"})
	})
	app.Post("/auth/refreshToken", func(c *fiber.Ctx) error {
		st.refreshCalls.Add(1)
		time.Sleep(150 * time.Millisecond)
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = c.BodyParser(&body)
		if body.RefreshToken != "r1" {
			return c.JSON(fiber.Map{"code": 8888, "msg": "refresh rejected"})
		}
		return c.JSON(fiber.Map{"code": 200, "data": fiber.Map{"token": "new", "refreshToken": "r2"}})
	})
	app.Get("/slow", func(c *fiber.Ctx) error {
		time.Sleep(500 * time.Millisecond)
		return c.JSON(fiber.Map{"code": 200})
	})
	app.Post("/auth/login", func(c *fiber.Ctx) error {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = c.BodyParser(&body)
		if body.Username != "admin" || body.Password != "123456" {
			return c.JSON(fiber.Map{"code": 500, "msg": "用户名或密码错误"})
		}
		return c.JSON(fiber.Map{"code": 200, "data": fiber.Map{"token": "t1", "refreshToken": "r1"}})
	})
	app.Get("/platform-system/user/getInfo", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"code": 200, "msg": "ok",
			"permissions": []string{"game:list:*"},
			"roles":       []string{"R_ADMIN"},
			"user":        fiber.Map{"userId": 7, "userName": "ops"},
		})
	})
	app.Get("/platform-system/menu/getRouters", func(c *fiber.Ctx) error {
		if st.flatRoutes.Load() {
			return c.JSON(fiber.Map{"code": 200, "data": []fiber.Map{
				{"menuId": 1, "name": "game", "path": "game", "meta": fiber.Map{"title": "游戏"}},
				{"menuId": 2, "parentId": 1, "name": "list", "path": "list", "meta": fiber.Map{"title": "列表"}},
			}})
		}
		return c.JSON(fiber.Map{"code": 200, "data": []fiber.Map{{
			"name": "game", "path": "game", "meta": fiber.Map{"title": "游戏"},
			"children": []fiber.Map{{"name": "list", "path": "list", "meta": fiber.Map{"title": "列表", "keepAlive": false}}},
		}}})
	})
	app.Get("/route/isRouteExist", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"code": 200, "data": c.Query("routeName") == "game_list"})
	})
	app.Get("/game/list", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"code": 200, "total": 42, "rows": []fiber.Map{
			{"id": 1, "name": c.Query("name"), "page": c.Query("current"), "tags": c.Query("tags")},
		}})
	})
	app.Delete("/game/:ids", func(c *fiber.Ctx) error {
		if c.Params("ids") == "9" {
			return c.JSON(fiber.Map{"code": 500, "msg": "删除失败"})
		}
		return c.JSON(fiber.Map{"code": 200, "msg": "删除成功：" + c.Params("ids")})
	})
	app.Get("/demo", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "200", "result": fiber.Map{"v": 2}})
	})
	app.Get("/demo-fail", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "500", "message": "boom"})
	})

	server := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(server.Close)
	return server.URL, st
}

func platformConfig(baseURL string) config.ClientConfig {
	return config.ClientConfig{
		BaseURL:           baseURL,
		Timeout:           5,
		SuccessCode:       "200",
		CodeField:         "code",
		MessageField:      "msg",
		DataField:         "data",
		LogoutCodes:       []string{"8888"},
		ModalLogoutCodes:  []string{"7777"},
		ExpiredTokenCodes: []string{"9999"},
	}
}

func newPlatform(t *testing.T) (*Client, *upstreamState) {
	url, st := setupUpstream(t)
	c := New("platform", platformConfig(url), notice.NewGate(time.Minute))
	t.Cleanup(c.Close)
	return c, st
}

func get(path string) Request {
	return Request{Method: fiber.MethodGet, Path: path}
}

func kindOf(t *testing.T, err error) Kind {
	t.Helper()
	e, ok := AsError(err)
	require.True(t, ok, "expected *upstream.Error, got %v", err)
	return e.Kind
}

func TestDo_BackendSuccess(t *testing.T) {
	c, _ := newPlatform(t)
	ctx := context.Background()
	sess := newFakeSession("t", "r")

	resp, err := c.Do(ctx, sess, get("/ok/array"))
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2]`, string(resp.Data))

	resp, err = c.Do(ctx, sess, get("/ok/nocode"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"x"}`, string(resp.Data))

	resp, err = c.Do(ctx, sess, get("/ok/code"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(resp.Data))
	assert.Equal(t, 0, sess.queue.Pending())
}

func TestDo_BusinessFailureInline(t *testing.T) {
	c, _ := newPlatform(t)
	sess := newFakeSession("t", "r")

	_, err := c.Do(context.Background(), sess, get("/fail/business"))
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindBusiness, e.Kind)
	assert.Equal(t, "500", e.Code)
	assert.Equal(t, "操作失败", e.Message)
	assert.False(t, e.EndsSession())

	n := sess.queue.Drain()
	require.Len(t, n.Messages, 1)
	assert.Equal(t, notice.LevelError, n.Messages[0].Level)
	assert.Equal(t, 0, sess.resetCount())

	// Silent 请求不推送
	_, err = c.Do(context.Background(), sess, Request{Method: fiber.MethodGet, Path: "/fail/business", Silent: true})
	assert.Equal(t, KindBusiness, kindOf(t, err))
	assert.Equal(t, 0, sess.queue.Pending())
}

// TestDo_Unauthorized HTTP 401 与业务码 401 同样处理
func TestDo_Unauthorized(t *testing.T) {
	c, _ := newPlatform(t)
	for _, path := range []string{"/http401", "/code401"} {
		sess := newFakeSession(strings.Trim(path, "/"), "r")
		_, err := c.Do(context.Background(), sess, get(path))
		assert.Equal(t, KindUnauthorized, kindOf(t, err), path)
		assert.Equal(t, 1, sess.resetCount(), path)
		n := sess.queue.Drain()
		require.Len(t, n.Dialogs, 1, path)
		assert.Equal(t, notice.KindLoginExpired, n.Dialogs[0].Kind)
		assert.Equal(t, "request.loginExpiredTitle", n.Dialogs[0].Title)
	}
}

// TestDo_BackToBack403 连续两次被踢只产生一个弹窗
func TestDo_BackToBack403(t *testing.T) {
	c, _ := newPlatform(t)
	sess := newFakeSession("kick", "r")
	ctx := context.Background()

	_, err1 := c.Do(ctx, sess, get("/kicked"))
	_, err2 := c.Do(ctx, sess, get("/kicked"))
	assert.Equal(t, KindAccountKicked, kindOf(t, err1))
	assert.Equal(t, KindAccountKicked, kindOf(t, err2))

	n := sess.queue.Drain()
	require.Len(t, n.Dialogs, 1)
	assert.Equal(t, notice.KindAccountKicked, n.Dialogs[0].Kind)
	assert.Equal(t, "request.accountKickedOut", n.Dialogs[0].Title)
	assert.Equal(t, 2, sess.resetCount())
}

// TestDo_SharedGate 两个客户端共用闸门
func TestDo_SharedGate(t *testing.T) {
	url, _ := setupUpstream(t)
	gate := notice.NewGate(time.Minute)
	platform := New("platform", platformConfig(url), gate)
	other := New("other", platformConfig(url), gate)
	sess := newFakeSession("shared", "r")

	_, _ = platform.Do(context.Background(), sess, get("/expired403"))
	_, err := other.Do(context.Background(), sess, get("/kicked"))
	assert.Equal(t, KindAccountKicked, kindOf(t, err))
	n := sess.queue.Drain()
	require.Len(t, n.Dialogs, 1)
	assert.Equal(t, notice.KindLoginExpired, n.Dialogs[0].Kind)
}

func TestDo_Forbidden(t *testing.T) {
	c, _ := newPlatform(t)
	sess := newFakeSession("t", "r")
	_, err := c.Do(context.Background(), sess, get("/forbidden"))
	assert.Equal(t, KindForbidden, kindOf(t, err))
	assert.Equal(t, 0, sess.resetCount())
	n := sess.queue.Drain()
	require.Len(t, n.Messages, 1)
	assert.Equal(t, "无权限", n.Messages[0].Content)
	assert.Empty(t, n.Dialogs)
}

func TestDo_LogoutCodeSilent(t *testing.T) {
	c, _ := newPlatform(t)
	sess := newFakeSession("t", "r")
	_, err := c.Do(context.Background(), sess, get("/logout"))
	assert.Equal(t, KindLogout, kindOf(t, err))
	assert.Equal(t, 1, sess.resetCount())
	assert.Equal(t, 0, sess.queue.Pending())
}

func TestDo_ModalDedupByMessage(t *testing.T) {
	c, _ := newPlatform(t)
	sess := newFakeSession("t", "r")
	for i := 0; i < 3; i++ {
		_, err := c.Do(context.Background(), sess, get("/modal"))
		assert.Equal(t, KindModalLogout, kindOf(t, err))
	}
	n := sess.queue.Drain()
	require.Len(t, n.Dialogs, 1)
	assert.Equal(t, notice.KindErrorModal, n.Dialogs[0].Kind)
	assert.Equal(t, "余额异常", n.Dialogs[0].Content)
	assert.Equal(t, 3, sess.resetCount())
}

func TestDo_RefreshAndRetry(t *testing.T) {
	c, st := newPlatform(t)
	sess := newFakeSession("old", "r1")

	resp, err := c.Do(context.Background(), sess, get("/guarded"))
	require.NoError(t, err)
	assert.JSONEq(t, `"fresh"`, string(resp.Data))
	assert.Equal(t, int32(1), st.refreshCalls.Load())
	assert.Equal(t, "new", sess.UpstreamToken())
	assert.Equal(t, "r2", sess.RefreshToken())
	assert.Equal(t, 0, sess.resetCount())
}

// TestDo_RefreshSingleFlight 并发过期只刷新一次
func TestDo_RefreshSingleFlight(t *testing.T) {
	c, st := newPlatform(t)
	sess := newFakeSession("old", "r1")

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Do(context.Background(), sess, get("/guarded"))
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), st.refreshCalls.Load())
}

func TestDo_RefreshFailure(t *testing.T) {
	c, _ := newPlatform(t)
	sess := newFakeSession("old", "stale")
	_, err := c.Do(context.Background(), sess, get("/guarded"))
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindTokenExpired, e.Kind)
	assert.True(t, e.EndsSession())
	assert.GreaterOrEqual(t, sess.resetCount(), 1)

	noRefresh := newFakeSession("old", "")
	_, err = c.Do(context.Background(), noRefresh, get("/guarded"))
	assert.Equal(t, KindTokenExpired, kindOf(t, err))
}

func TestDo_Transport(t *testing.T) {
	url, _ := setupUpstream(t)
	cfg := platformConfig(url)
	cfg.BaseURL = "http://127.0.0.1:1"
	cfg.Timeout = 1
	c := New("platform", cfg, nil)
	_, err := c.Do(context.Background(), nil, get("/ok/code"))
	assert.Equal(t, KindTransport, kindOf(t, err))
}

func TestDo_ContextCancel(t *testing.T) {
	c, _ := newPlatform(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Do(ctx, nil, get("/slow"))
	assert.Equal(t, KindTransport, kindOf(t, err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestDo_ContextCanceledMidFlight(t *testing.T) {
	c, _ := newPlatform(t)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)
	_, err := c.Do(ctx, nil, get("/slow"))
	assert.Equal(t, KindTransport, kindOf(t, err))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, context.DeadlineExceeded))
}

func TestDemoClient(t *testing.T) {
	url, _ := setupUpstream(t)
	c := New("demo", config.ClientConfig{
		BaseURL: url, SuccessCode: "200", CodeField: "status", MessageField: "message", DataField: "result",
	}, nil)
	sess := newFakeSession("t", "")

	resp, err := c.Do(context.Background(), sess, get("/demo"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(resp.Data))

	_, err = c.Do(context.Background(), sess, get("/demo-fail"))
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindBusiness, e.Kind)
	assert.Equal(t, "boom", e.Message)
}

func TestLoginAndUserInfo(t *testing.T) {
	c, _ := newPlatform(t)
	ctx := context.Background()

	tok, err := c.Login(ctx, "admin", "123456")
	require.NoError(t, err)
	assert.Equal(t, LoginToken{Token: "t1", RefreshToken: "r1"}, tok)

	_, err = c.Login(ctx, "admin", "wrong")
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "用户名或密码错误", e.Message)

	info, err := c.UserInfo(ctx, newFakeSession("t1", "r1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"R_ADMIN"}, info.Roles)
	assert.Equal(t, []string{"game:list:*"}, info.Permissions)
	assert.Equal(t, int64(7), info.User.UserID)
	assert.Equal(t, "ops", info.User.UserName)
}

func TestUserRoutes(t *testing.T) {
	c, st := newPlatform(t)
	sess := newFakeSession("t", "r")
	src := RouteSource{Client: c, Session: sess}

	tree, err := src.FetchUserRoutes(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	require.NotNil(t, tree[0].Children[0].Meta.KeepAlive)
	assert.False(t, *tree[0].Children[0].Meta.KeepAlive)

	st.flatRoutes.Store(true)
	tree, err = src.FetchUserRoutes(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "list", tree[0].Children[0].Name)

	ok, err := src.IsRouteExist(context.Background(), "game_list")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = src.IsRouteExist(context.Background(), "game_other")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTableAPI(t *testing.T) {
	c, _ := newPlatform(t)
	api := c.TableAPI(newFakeSession("t", "r"), "game", "/game/list")

	page, err := api(context.Background(), table.SearchParams{
		"current": 2, "size": 10, "name": "dragon", "tags": []any{"a", "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, table.ShapeRows, page.Shape)
	assert.Equal(t, 42, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "dragon", page.Items[0]["name"])
	assert.Equal(t, "2", page.Items[0]["page"])
	assert.Equal(t, "a,b", page.Items[0]["tags"])
}

func TestDelete(t *testing.T) {
	c, _ := newPlatform(t)
	sess := newFakeSession("t", "r")

	res, err := c.Delete(context.Background(), sess, "/game", []string{"1", "2"})
	require.NoError(t, err)
	failed, _ := operate.CheckResult(res, "删除")
	assert.False(t, failed)
	assert.Equal(t, "删除成功：1,2", res.Msg)

	res, err = c.Delete(context.Background(), sess, "/game/", []string{"9"})
	require.NoError(t, err)
	failed, msg := operate.CheckResult(res, "删除")
	assert.True(t, failed)
	assert.Equal(t, "删除失败", msg)
	assert.Equal(t, 0, sess.queue.Pending())
}

func TestEncodeParams(t *testing.T) {
	var nilPtr *int
	got := EncodeParams(table.SearchParams{
		"a": "x", "b": 3, "c": 1.5, "d": []string{"p", "q"}, "e": nil, "f": nilPtr, "g": true,
	})
	assert.Equal(t, map[string]string{"a": "x", "b": "3", "c": "1.5", "d": "p,q", "g": "true"}, got)
}

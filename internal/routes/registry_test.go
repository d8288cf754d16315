package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*Registry, []func()) {
	t.Helper()
	reg := NewRegistry(BuiltinRoutes("/home")...)
	rr, err := ToRouterRoutes(SortRoutesByOrder(sampleAuthRoutes()))
	require.NoError(t, err)
	var removes []func()
	for _, r := range rr {
		rm, err := reg.AddRoute(r)
		require.NoError(t, err)
		removes = append(removes, rm)
	}
	return reg, removes
}

func TestRegistry_Resolve(t *testing.T) {
	reg, _ := newTestRegistry(t)

	r, ok := reg.Resolve("/game/list?tab=1")
	require.True(t, ok)
	assert.Equal(t, "game_list", r.Name)

	r, ok = reg.Resolve("/home")
	require.True(t, ok)
	assert.Equal(t, "home", r.Name)
	assert.Equal(t, "/home", r.Path)

	r, ok = reg.Resolve("/no/such/page")
	require.True(t, ok)
	assert.Equal(t, NotFoundName, r.Name)

	assert.True(t, reg.HasRoute("manage_user"))
	assert.False(t, reg.HasRoute("game_missing"))
}

func TestRegistry_PushFollowsRedirects(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, ok := reg.CurrentRoute()
	assert.False(t, ok)

	r, err := reg.Push("/")
	require.NoError(t, err)
	assert.Equal(t, "home", r.Name)

	r, err = reg.Push("/game")
	require.NoError(t, err)
	assert.Equal(t, "game_detail", r.Name)

	cur, ok := reg.CurrentRoute()
	require.True(t, ok)
	assert.Equal(t, "game_detail", cur.Name)
}

func TestRegistry_Remove(t *testing.T) {
	reg, removes := newTestRegistry(t)
	before := len(reg.Routes())

	// removes[2] 对应 game
	removes[2]()
	assert.False(t, reg.HasRoute("game"))
	assert.False(t, reg.HasRoute("game_list"))
	assert.Len(t, reg.Routes(), before-1)

	// 移除单级路由的子路由后空包装一并移除
	reg.RemoveRoute("home")
	assert.False(t, reg.HasRoute("home"))
	assert.Len(t, reg.Routes(), before-2)

	reg.RemoveRoute("manage_user")
	assert.True(t, reg.HasRoute("manage"))
	assert.False(t, reg.HasRoute("manage_user"))

	// 重复调用无副作用
	removes[2]()
	assert.Len(t, reg.Routes(), before-2)
}

func TestRegistry_AddReplacesSameName(t *testing.T) {
	reg := NewRegistry(BuiltinRoutes("/home")...)
	_, err := reg.AddRoute(RootRoute("/dashboard"))
	require.NoError(t, err)

	r, ok := reg.Resolve("/")
	require.True(t, ok)
	assert.Equal(t, "/dashboard", r.Redirect)
	assert.Len(t, reg.Routes(), 2)

	_, err = reg.AddRoute(RouterRoute{})
	assert.Error(t, err)
}

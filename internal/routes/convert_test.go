package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRouterRoutes(t *testing.T) {
	rr, err := ToRouterRoutes(SortRoutesByOrder(sampleAuthRoutes()))
	require.NoError(t, err)
	require.Len(t, rr, 4)

	uc := rr[0]
	assert.Empty(t, uc.Name)
	assert.Equal(t, "/user-center", uc.Path)
	assert.Equal(t, "base", uc.Layout)
	require.Len(t, uc.Children, 1)
	assert.Equal(t, "user-center", uc.Children[0].Name)
	assert.Equal(t, "", uc.Children[0].Path)
	assert.Equal(t, "user-center", uc.Children[0].View)

	game := rr[2]
	assert.Equal(t, "game", game.Name)
	assert.Equal(t, "base", game.Layout)
	assert.Equal(t, "/game/detail", game.Redirect)
	require.Len(t, game.Children, 3)
	assert.Equal(t, "game_list", game.Children[1].View)

	assert.Equal(t, []string{"game_list", "manage_user"}, CacheRouteNames(rr))
}

// TestToRouterRoutes_Flatten 二级以下的路由展开到一级路由下
func TestToRouterRoutes_Flatten(t *testing.T) {
	routes, err := TransformBackendRoutes([]BackendRoute{{
		Name: "a", Path: "/a",
		Children: []BackendRoute{{
			Name: "b", Path: "b",
			Children: []BackendRoute{{Name: "c", Path: "c"}},
		}},
	}})
	require.NoError(t, err)

	rr, err := ToRouterRoutes(routes)
	require.NoError(t, err)
	require.Len(t, rr, 1)
	assert.Equal(t, "/a/b", rr[0].Redirect)
	require.Len(t, rr[0].Children, 2)
	assert.Equal(t, "a_b", rr[0].Children[0].Name)
	assert.Equal(t, "/a/b/c", rr[0].Children[0].Redirect)
	assert.Empty(t, rr[0].Children[0].Children)
	assert.Equal(t, "a_b_c", rr[0].Children[1].Name)
	assert.Equal(t, "a_b_c", rr[0].Children[1].View)
}

func TestToRouterRoutes_InvalidComponent(t *testing.T) {
	for _, comp := range []string{"foo.bar", "layout.base$foo", "layout.$view.x", "view.x$layout.base"} {
		_, err := ToRouterRoutes([]Route{{Name: "x", Path: "/x", Component: comp}})
		assert.ErrorIs(t, err, ErrInvalidComponent, comp)
	}
}

func TestStaticValidate(t *testing.T) {
	ok := StaticRoutes{Constant: staticConstant(), Auth: sampleAuthRoutes()}
	assert.NoError(t, ok.Validate())

	dup := StaticRoutes{
		Constant: staticConstant(),
		Auth:     []Route{{Name: "login", Path: "/login2", Component: "layout.base$view.login"}},
	}
	assert.ErrorIs(t, dup.Validate(), ErrDuplicateRouteName)

	bad := StaticRoutes{Auth: []Route{{Name: "x", Path: "/x", Component: "page.x"}}}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidComponent)
}

package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTree(t *testing.T) {
	flat := []BackendRoute{
		{MenuID: 1, Name: "game", Path: "game"},
		{MenuID: 11, ParentID: 1, Name: "list", Path: "list"},
		{MenuID: 2, Name: "mail", Path: "mail"},
		{MenuID: 12, ParentID: 1, Name: "server", Path: "server"},
		{MenuID: 121, ParentID: 12, Name: "merge", Path: "merge"},
		{MenuID: 30, ParentID: 999, Name: "orphan", Path: "orphan"},
	}
	tree, err := BuildTree(flat)
	require.NoError(t, err)
	require.Len(t, tree, 3)
	assert.Equal(t, "game", tree[0].Name)
	assert.Equal(t, "mail", tree[1].Name)
	assert.Equal(t, "orphan", tree[2].Name)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, "list", tree[0].Children[0].Name)
	assert.Equal(t, "merge", tree[0].Children[1].Children[0].Name)

	routes, err := TransformBackendRoutes(tree)
	require.NoError(t, err)
	assert.Equal(t, "game_server_merge", routes[0].Children[1].Children[0].Name)
}

// TestBuildTree_Cycle parentId 成环时返回错误
func TestBuildTree_Cycle(t *testing.T) {
	_, err := BuildTree([]BackendRoute{
		{MenuID: 1, Name: "root"},
		{MenuID: 2, ParentID: 3, Name: "a"},
		{MenuID: 3, ParentID: 2, Name: "b"},
	})
	assert.ErrorIs(t, err, ErrCyclicRoute)

	_, err = BuildTree([]BackendRoute{{MenuID: 5, ParentID: 5, Name: "self"}})
	assert.ErrorIs(t, err, ErrCyclicRoute)

	_, err = BuildTree([]BackendRoute{{MenuID: 1, Name: "a"}, {MenuID: 1, Name: "b"}})
	assert.ErrorIs(t, err, ErrCyclicRoute)
}

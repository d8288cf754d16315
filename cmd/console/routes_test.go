package main

import (
	"bytes"
	"strings"
	"testing"

	"gameops/console/common/utils"
	"gameops/console/internal/routes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const treeJSON = `[{"name":"Game","path":"/game","meta":{"title":"游戏"},
  "children":[{"name":"List","path":"list","meta":{"title":"游戏列表"}}]}]`

func TestTransformBackend(t *testing.T) {
	out, err := transformBackend([]byte(treeJSON), false)
	require.NoError(t, err)

	var got []routes.Route
	require.NoError(t, utils.Unmarshal(out, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "game", got[0].Name)
	require.Len(t, got[0].Children, 1)
	assert.Equal(t, "game_list", got[0].Children[0].Name)
	assert.Equal(t, "/game/list", got[0].Children[0].Path)
}

func TestTransformBackendFlat(t *testing.T) {
	flatJSON := `[{"menuId":1,"name":"Game","path":"/game","meta":{"title":"游戏"}},
  {"menuId":2,"parentId":1,"name":"List","path":"list","meta":{"title":"游戏列表"}}]`

	out, err := transformBackend([]byte(flatJSON), true)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"game_list"`)
}

func TestTransformCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetIn(strings.NewReader(treeJSON))
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"routes", "transform"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), `"game_list"`)

	_, err := transformBackend([]byte("{"), false)
	assert.Error(t, err)
}

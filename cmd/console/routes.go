package main

import (
	"fmt"
	"io"
	"os"

	"gameops/console/common/utils"
	"gameops/console/internal/routes"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

var transformRouter bool

// routesCmd 路由工具
var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "路由工具",
}

// transformCmd 把后端路由树转换为前端路由
var transformCmd = &cobra.Command{
	Use:   "transform [file]",
	Short: "转换后端路由 JSON，文件为空时读取标准输入",
	Example: `  console routes transform menus.json
  cat menus.json | console routes transform --router`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTransform,
}

func init() {
	rootCmd.AddCommand(routesCmd)
	routesCmd.AddCommand(transformCmd)
	transformCmd.Flags().BoolVar(&transformRouter, "router", false, "输出注册到路由器的形式")
}

func runTransform(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	raw, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	out, err := transformBackend(raw, transformRouter)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

// transformBackend 支持树形与 menuId/parentId 扁平两种输入
func transformBackend(raw []byte, router bool) ([]byte, error) {
	var nodes []routes.BackendRoute
	if err := utils.Unmarshal(raw, &nodes); err != nil {
		return nil, fmt.Errorf("解析路由失败: %w", err)
	}
	if routes.IsFlat(nodes) {
		tree, err := routes.BuildTree(nodes)
		if err != nil {
			return nil, err
		}
		nodes = tree
	}

	converted, err := routes.TransformBackendRoutes(nodes)
	if err != nil {
		return nil, err
	}
	if !router {
		return sonic.ConfigStd.MarshalIndent(converted, "", "  ")
	}
	rr, err := routes.ToRouterRoutes(converted)
	if err != nil {
		return nil, err
	}
	return sonic.ConfigStd.MarshalIndent(rr, "", "  ")
}

package routes

import (
	"fmt"

	"gameops/console/common/config"
)

// StaticRoutes 静态常量路由与权限路由
type StaticRoutes struct {
	Constant []Route `yaml:"constant"`
	Auth     []Route `yaml:"auth"`
}

// LoadStatic 读取静态路由文件
func LoadStatic(path string) (StaticRoutes, error) {
	var s StaticRoutes
	if err := config.Load(path, &s); err != nil {
		return StaticRoutes{}, err
	}
	if err := s.Validate(); err != nil {
		return StaticRoutes{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate 校验名称唯一与组件格式
func (s StaticRoutes) Validate() error {
	seen := make(map[string]struct{})
	all := append(append([]Route(nil), s.Constant...), s.Auth...)
	stack := append([]Route(nil), all...)
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, dup := seen[r.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateRouteName, r.Name)
		}
		seen[r.Name] = struct{}{}
		stack = append(stack, r.Children...)
	}
	_, err := ToRouterRoutes(all)
	return err
}

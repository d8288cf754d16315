package types

import (
	"gameops/console/internal/routes"
	"gameops/console/internal/table"
	"gameops/console/internal/upstream"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Locale   string `json:"locale"`
}

// LoginResponse 登录响应，token 为本地会话 token
type LoginResponse struct {
	Token     string `json:"token"`
	TokenName string `json:"tokenName"`
	Locale    string `json:"locale"`
}

// UserInfoResponse 当前用户
type UserInfoResponse struct {
	UserID      string   `json:"userId"`
	UserName    string   `json:"userName"`
	NickName    string   `json:"nickName,omitempty"`
	Avatar      string   `json:"avatar,omitempty"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"buttons"`
	Locale      string   `json:"locale"`
}

// NewUserInfoResponse 由上游用户信息组装
func NewUserInfoResponse(userID, locale string, info upstream.UserInfo) UserInfoResponse {
	resp := UserInfoResponse{
		UserID:      userID,
		UserName:    info.User.UserName,
		NickName:    info.User.NickName,
		Roles:       nonNil(info.Roles),
		Permissions: nonNil(info.Permissions),
		Locale:      locale,
	}
	if info.User.Avatar != nil {
		resp.Avatar = *info.User.Avatar
	}
	return resp
}

// RoutesResponse 路由与菜单
type RoutesResponse struct {
	Home        string         `json:"home"`
	Lifecycle   string         `json:"lifecycle"`
	Routes      []routes.Route `json:"routes"`
	Menus       []routes.Menu  `json:"menus"`
	CacheRoutes []string       `json:"cacheRoutes"`
}

// LocaleRequest 切换语言
type LocaleRequest struct {
	Locale string `json:"locale"`
}

// PageRequest 翻页
type PageRequest struct {
	Page int `json:"page"`
}

// PageSizeRequest 修改页大小
type PageSizeRequest struct {
	PageSize int `json:"pageSize"`
}

// SearchRequest 更新搜索条件，Fetch 为 true 时立即拉取
type SearchRequest struct {
	Params map[string]any `json:"params"`
	Fetch  bool           `json:"fetch"`
}

// ColumnChecksRequest 更新列勾选
type ColumnChecksRequest struct {
	Checks []table.ColumnCheck `json:"checks"`
}

// EditRequest 打开编辑抽屉，Detail 为空时按 id 从当前数据中查找
type EditRequest struct {
	ID     string         `json:"id"`
	Detail map[string]any `json:"detail"`
}

// AddRequest 打开新增抽屉
type AddRequest struct {
	Initial map[string]any `json:"initial"`
}

// CheckedRequest 更新勾选行
type CheckedRequest struct {
	Keys []string `json:"keys"`
}

// DeleteRowsRequest 删除行，多个 id 为批量删除
type DeleteRowsRequest struct {
	IDs []string `json:"ids"`
}

// DeleteRowsResponse 删除结果
type DeleteRowsResponse struct {
	Deleted bool `json:"deleted"`
}

// DialogAckRequest 确认弹窗
type DialogAckRequest struct {
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// NavigateRequest 切换当前路由
type NavigateRequest struct {
	Path string `json:"path"`
}

// NavigateResponse 切换后的路由与面包屑
type NavigateResponse struct {
	Route       routes.RouterRoute  `json:"route"`
	Breadcrumbs []routes.Breadcrumb `json:"breadcrumbs"`
	MenuKeyPath []string            `json:"menuKeyPath"`
}

package upstream

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"gameops/console/common/utils"
	"gameops/console/internal/metrics"
	"gameops/console/internal/operate"
	"gameops/console/internal/routes"
	"gameops/console/internal/table"

	"github.com/gofiber/fiber/v2"
)

const (
	PathLogin        = "/auth/login"
	PathUserInfo     = "/platform-system/user/getInfo"
	PathUserRoutes   = "/platform-system/menu/getRouters"
	PathIsRouteExist = "/route/isRouteExist"
)

// Login 账号密码登录，登录前没有会话
func (c *Client) Login(ctx context.Context, username, password string) (LoginToken, error) {
	resp, err := c.Do(ctx, nil, Request{
		Method: fiber.MethodPost,
		Path:   PathLogin,
		Body:   map[string]string{"username": username, "password": password},
	})
	if err != nil {
		return LoginToken{}, err
	}
	var tok LoginToken
	if err := resp.Decode(&tok); err != nil {
		return LoginToken{}, fmt.Errorf("decode login token: %w", err)
	}
	if tok.Token == "" {
		return LoginToken{}, &Error{Client: c.name, Kind: KindBusiness, Status: resp.Status, Message: "empty token"}
	}
	return tok, nil
}

// UserInfo 当前用户信息，取整个响应体
func (c *Client) UserInfo(ctx context.Context, sess Session) (UserInfo, error) {
	resp, err := c.Do(ctx, sess, Request{Method: fiber.MethodGet, Path: PathUserInfo})
	if err != nil {
		return UserInfo{}, err
	}
	var info UserInfo
	if err := resp.DecodeBody(&info); err != nil {
		return UserInfo{}, fmt.Errorf("decode user info: %w", err)
	}
	return info, nil
}

// UserRoutes 用户路由，扁平列表按 menuId/parentId 组树
func (c *Client) UserRoutes(ctx context.Context, sess Session) ([]routes.BackendRoute, error) {
	resp, err := c.Do(ctx, sess, Request{Method: fiber.MethodGet, Path: PathUserRoutes})
	if err != nil {
		return nil, err
	}
	var nodes []routes.BackendRoute
	if err := resp.Decode(&nodes); err != nil {
		return nil, fmt.Errorf("decode user routes: %w", err)
	}
	if routes.IsFlat(nodes) {
		return routes.BuildTree(nodes)
	}
	return nodes, nil
}

// IsRouteExist 询问后端路由是否存在
func (c *Client) IsRouteExist(ctx context.Context, sess Session, routeName string) (bool, error) {
	resp, err := c.Do(ctx, sess, Request{
		Method: fiber.MethodGet,
		Path:   PathIsRouteExist,
		Query:  map[string]string{"routeName": routeName},
	})
	if err != nil {
		return false, err
	}
	var exists bool
	if err := resp.Decode(&exists); err != nil {
		return false, fmt.Errorf("decode route exist: %w", err)
	}
	return exists, nil
}

// RouteSource 绑定会话的动态路由来源
type RouteSource struct {
	Client  *Client
	Session Session
}

func (s RouteSource) FetchUserRoutes(ctx context.Context) ([]routes.BackendRoute, error) {
	return s.Client.UserRoutes(ctx, s.Session)
}

func (s RouteSource) IsRouteExist(ctx context.Context, routeName string) (bool, error) {
	return s.Client.IsRouteExist(ctx, s.Session, routeName)
}

// EncodeParams 搜索参数转查询串，切片用逗号连接，nil 已在上游去掉
func EncodeParams(params table.SearchParams) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		if utils.IsNil(v) {
			continue
		}
		out[k] = paramString(v)
	}
	return out
}

func paramString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []any:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			parts = append(parts, paramString(e))
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(x, ",")
	case float64:
		return codeString(x)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		q := url.Values{}
		for _, k := range keys {
			q.Set(k, paramString(x[k]))
		}
		return q.Encode()
	default:
		return fmt.Sprint(x)
	}
}

// TableAPI 列表拉取函数，响应用 NormalizePage 归一
func (c *Client) TableAPI(sess Session, tableKey, path string) func(ctx context.Context, params table.SearchParams) (table.Page[table.Record], error) {
	return func(ctx context.Context, params table.SearchParams) (table.Page[table.Record], error) {
		resp, err := c.Do(ctx, sess, Request{
			Method: fiber.MethodGet,
			Path:   path,
			Query:  EncodeParams(params),
		})
		if err != nil {
			metrics.TableFetches.WithLabelValues(tableKey, "error").Inc()
			return table.Page[table.Record]{}, err
		}
		page, err := table.NormalizePage(resp.Body)
		if err != nil {
			metrics.TableFetches.WithLabelValues(tableKey, "shape_error").Inc()
			return table.Page[table.Record]{}, err
		}
		metrics.TableFetches.WithLabelValues(tableKey, "ok").Inc()
		return page, nil
	}
}

// Delete 删除一行或多行，ids 以逗号拼在路径末尾
//
// 业务失败不作为错误返回，而是转成 Result 交给 operate.CheckResult 判断。
func (c *Client) Delete(ctx context.Context, sess Session, path string, ids []string) (*operate.Result, error) {
	escaped := make([]string, len(ids))
	for i, id := range ids {
		escaped[i] = url.PathEscape(id)
	}
	resp, err := c.Do(ctx, sess, Request{
		Method: fiber.MethodDelete,
		Path:   strings.TrimRight(path, "/") + "/" + strings.Join(escaped, ","),
		Silent: true,
	})
	if err != nil {
		e, ok := AsError(err)
		if !ok || e.Kind == KindTransport {
			return nil, err
		}
		code := 500
		if e.Status >= 400 {
			code = e.Status
		}
		if n, convErr := strconv.Atoi(e.Code); convErr == nil {
			code = n
		}
		return &operate.Result{Code: code, Msg: e.Message}, nil
	}
	var body map[string]any
	if err := resp.DecodeBody(&body); err != nil {
		return nil, nil
	}
	return operate.ResultFrom(body), nil
}

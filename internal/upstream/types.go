package upstream

import (
	"context"
	"errors"
	"fmt"

	"gameops/console/common/utils"
	"gameops/console/internal/notice"
)

// Kind 失败分类
type Kind string

const (
	KindTransport     Kind = "transport"
	KindUnauthorized  Kind = "unauthorized"
	KindLoginExpired  Kind = "login_expired"
	KindAccountKicked Kind = "account_kicked"
	KindForbidden     Kind = "forbidden"
	KindLogout        Kind = "logout"
	KindModalLogout   Kind = "modal_logout"
	KindTokenExpired  Kind = "token_expired"
	KindBusiness      Kind = "business"
)

const (
	CodeLoginExpired  = "100001"
	CodeAccountKicked = "100005"
)

// Error 上游调用失败，调用方总能拿到
type Error struct {
	Client  string
	Kind    Kind
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s: %s: %v", e.Client, e.Kind, e.Err)
	}
	return fmt.Sprintf("upstream %s: %s (status=%d code=%s): %s", e.Client, e.Kind, e.Status, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// EndsSession 该错误是否已导致会话重置
func (e *Error) EndsSession() bool {
	switch e.Kind {
	case KindUnauthorized, KindLoginExpired, KindAccountKicked, KindLogout, KindModalLogout, KindTokenExpired:
		return true
	}
	return false
}

// AsError 取出 *Error
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Session 上游调用需要的会话能力
type Session interface {
	ID() string
	UpstreamToken() string
	RefreshToken() string
	SetUpstreamTokens(token, refreshToken string)
	Notices() *notice.Queue
	T(key string) string
	Reset(ctx context.Context) error
}

// Request 一次上游请求
type Request struct {
	Method string
	Path   string
	Query  map[string]string
	Body   any
	// Silent 不推送行内错误提示，由调用方自行展示
	Silent bool
}

// Response 成功响应，Data 为按 data 字段取出的业务数据，缺失时等于 Body
type Response struct {
	Status int
	Body   []byte
	Data   []byte
}

// Decode 解析业务数据
func (r *Response) Decode(out any) error {
	return utils.Unmarshal(r.Data, out)
}

// DecodeBody 解析整个响应体
func (r *Response) DecodeBody(out any) error {
	return utils.Unmarshal(r.Body, out)
}

// LoginToken 上游登录令牌
type LoginToken struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// User 上游用户
type User struct {
	UserID      int64   `json:"userId"`
	DeptID      int64   `json:"deptId"`
	UserName    string  `json:"userName"`
	NickName    string  `json:"nickName"`
	Email       string  `json:"email"`
	Phonenumber string  `json:"phonenumber"`
	Sex         string  `json:"sex"`
	Avatar      *string `json:"avatar"`
	Status      string  `json:"status"`
	LoginIP     string  `json:"loginIp"`
	LoginDate   string  `json:"loginDate"`
	Admin       bool    `json:"admin"`
}

// UserInfo 上游用户信息
type UserInfo struct {
	Permissions []string `json:"permissions"`
	Roles       []string `json:"roles"`
	User        User     `json:"user"`
}

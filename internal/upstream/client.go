package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gameops/console/common/logger"
	"gameops/console/common/utils"
	"gameops/console/internal/config"
	"gameops/console/internal/metrics"
	"gameops/console/internal/notice"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultRefreshPath 刷新令牌接口
const DefaultRefreshPath = "/auth/refreshToken"

var errNoRefreshToken = errors.New("no refresh token")

// Client 上游 HTTP 客户端，platform 与 demo 各一个，共用同一个弹窗闸门
type Client struct {
	name        string
	cfg         config.ClientConfig
	agent       *fiber.Client
	gate        *notice.Gate
	log         *zap.Logger
	sf          singleflight.Group
	refreshPath string

	logoutCodes  map[string]struct{}
	modalCodes   map[string]struct{}
	expiredCodes map[string]struct{}
}

// New 创建客户端，gate 为 nil 时不去重弹窗
func New(name string, cfg config.ClientConfig, gate *notice.Gate) *Client {
	agent := fiber.AcquireClient()
	agent.JSONEncoder = sonic.Marshal
	agent.JSONDecoder = sonic.Unmarshal
	if gate == nil {
		gate = notice.NewGate(0)
	}
	return &Client{
		name:         name,
		cfg:          cfg,
		agent:        agent,
		gate:         gate,
		log:          logger.Named("upstream." + name),
		refreshPath:  DefaultRefreshPath,
		logoutCodes:  codeSet(cfg.LogoutCodes),
		modalCodes:   codeSet(cfg.ModalLogoutCodes),
		expiredCodes: codeSet(cfg.ExpiredTokenCodes),
	}
}

func codeSet(codes []string) map[string]struct{} {
	m := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		if c = strings.TrimSpace(c); c != "" {
			m[c] = struct{}{}
		}
	}
	return m
}

// Name 客户端名称
func (c *Client) Name() string {
	return c.name
}

// Close 归还底层 fiber.Client
func (c *Client) Close() {
	fiber.ReleaseClient(c.agent)
}

// Do 发送请求并按业务码分类
//
// 失败时总是返回 *Error。过期令牌码会先刷新令牌再重试一次。
func (c *Client) Do(ctx context.Context, sess Session, req Request) (*Response, error) {
	return c.do(ctx, sess, req, true)
}

func (c *Client) do(ctx context.Context, sess Session, req Request, allowRefresh bool) (*Response, error) {
	start := time.Now()
	status, body, err := c.send(ctx, sess, req)
	metrics.UpstreamDuration.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
	if err != nil {
		c.count(KindTransport)
		c.log.Warn("上游请求失败", zap.String("path", req.Path), zap.Error(err))
		return nil, &Error{Client: c.name, Kind: KindTransport, Message: err.Error(), Err: err}
	}

	v := c.inspect(status, body)
	if v.success {
		c.count("ok")
		return &Response{Status: status, Body: body, Data: v.data}, nil
	}

	e := &Error{Client: c.name, Status: status, Code: v.code, Message: v.msg}
	if e.Message == "" {
		e.Message = fmt.Sprintf("HTTP %d", status)
	}
	_, isExpired := c.expiredCodes[e.Code]

	switch {
	case status == fiber.StatusUnauthorized || e.Code == "401":
		e.Kind = KindUnauthorized
		c.endSession(ctx, sess, notice.KindLoginExpired)
	case status == fiber.StatusForbidden && e.Code == CodeLoginExpired:
		e.Kind = KindLoginExpired
		c.endSession(ctx, sess, notice.KindLoginExpired)
	case status == fiber.StatusForbidden && e.Code == CodeAccountKicked:
		e.Kind = KindAccountKicked
		c.endSession(ctx, sess, notice.KindAccountKicked)
	case status == fiber.StatusForbidden:
		e.Kind = KindForbidden
		if !req.Silent {
			c.inline(sess, e.Message)
		}
	case c.has(c.logoutCodes, e.Code):
		e.Kind = KindLogout
		c.reset(ctx, sess)
	case c.has(c.modalCodes, e.Code):
		e.Kind = KindModalLogout
		c.errorModal(ctx, sess, e.Message)
	case isExpired && allowRefresh:
		if rerr := c.refresh(ctx, sess); rerr != nil {
			c.log.Warn("刷新令牌失败", zap.Error(rerr))
			e.Kind = KindTokenExpired
			e.Err = rerr
			c.reset(ctx, sess)
			break
		}
		return c.do(ctx, sess, req, false)
	case isExpired:
		e.Kind = KindTokenExpired
		c.reset(ctx, sess)
	default:
		e.Kind = KindBusiness
		if !req.Silent {
			c.inline(sess, e.Message)
		}
	}
	c.count(e.Kind)
	return nil, e
}

func (c *Client) count(kind Kind) {
	metrics.UpstreamRequests.WithLabelValues(c.name, string(kind)).Inc()
}

func (c *Client) has(set map[string]struct{}, code string) bool {
	if code == "" {
		return false
	}
	_, ok := set[code]
	return ok
}

type verdict struct {
	success bool
	code    string
	msg     string
	data    []byte
}

// inspect 判断业务是否成功：裸数组、无 code 的对象、code 等于成功码
func (c *Client) inspect(status int, body []byte) verdict {
	ok2xx := status >= 200 && status < 300
	var raw any
	if len(body) == 0 || utils.Unmarshal(body, &raw) != nil {
		return verdict{success: ok2xx, data: body}
	}
	obj, isObj := raw.(map[string]any)
	if !isObj {
		return verdict{success: ok2xx, data: body}
	}

	v := verdict{data: body}
	codeVal, hasCode := obj[c.cfg.CodeField]
	if hasCode {
		v.code = codeString(codeVal)
	}
	for _, field := range []string{c.cfg.MessageField, "msg", "message"} {
		if s, ok := obj[field].(string); ok && s != "" {
			v.msg = s
			break
		}
	}
	if inner, ok := obj[c.cfg.DataField]; ok && inner != nil {
		if data, err := utils.Marshal(inner); err == nil {
			v.data = data
		}
	}
	v.success = ok2xx && (!hasCode || v.code == c.cfg.SuccessCode)
	return v
}

func codeString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

func (c *Client) inline(sess Session, msg string) {
	if sess == nil || msg == "" {
		return
	}
	sess.Notices().Error(msg)
}

func (c *Client) reset(ctx context.Context, sess Session) {
	if sess == nil {
		return
	}
	if err := sess.Reset(ctx); err != nil {
		c.log.Error("重置会话失败", zap.String("session", sess.ID()), zap.Error(err))
	}
}

// endSession 登录失效：闸门放行时弹窗，然后重置会话
func (c *Client) endSession(ctx context.Context, sess Session, kind notice.Kind) {
	if sess == nil {
		return
	}
	if c.gate.TryAcquire(sess.ID(), kind) {
		title, content := "request.loginExpiredTitle", "request.loginExpiredMsg"
		if kind == notice.KindAccountKicked {
			title, content = "request.accountKickedOut", "request.accountKickedOutMsg"
		}
		sess.Notices().Dialog(notice.Dialog{
			Kind:     kind,
			Title:    sess.T(title),
			Content:  sess.T(content),
			Redirect: "/login",
		})
	}
	c.reset(ctx, sess)
}

// errorModal 同一消息的错误弹窗只弹一次
func (c *Client) errorModal(ctx context.Context, sess Session, msg string) {
	if sess == nil {
		return
	}
	if c.gate.TryAcquireModal(sess.ID(), msg) {
		sess.Notices().Dialog(notice.Dialog{
			Kind:     notice.KindErrorModal,
			Title:    sess.T("common.error"),
			Content:  msg,
			Redirect: "/login",
		})
	}
	c.reset(ctx, sess)
}

// refresh 同一会话的并发刷新合并为一次
func (c *Client) refresh(ctx context.Context, sess Session) error {
	if sess == nil || sess.RefreshToken() == "" {
		metrics.TokenRefreshes.WithLabelValues("skipped").Inc()
		return errNoRefreshToken
	}
	_, err, _ := c.sf.Do(sess.ID(), func() (any, error) {
		resp, err := c.do(ctx, sess, Request{
			Method: fiber.MethodPost,
			Path:   c.refreshPath,
			Body:   map[string]string{"refreshToken": sess.RefreshToken()},
		}, false)
		if err != nil {
			return nil, err
		}
		var tok LoginToken
		if err := resp.Decode(&tok); err != nil {
			return nil, fmt.Errorf("decode refresh token: %w", err)
		}
		if tok.Token == "" {
			return nil, errors.New("empty token in refresh response")
		}
		sess.SetUpstreamTokens(tok.Token, tok.RefreshToken)
		return nil, nil
	})
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.TokenRefreshes.WithLabelValues(result).Inc()
	return err
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

type sendResult struct {
	status int
	body   []byte
	err    error
}

// send fiber.Client 不接受 context，取消时直接返回，请求在后台结束
func (c *Client) send(ctx context.Context, sess Session, req Request) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	var a *fiber.Agent
	target := c.url(req.Path)
	switch strings.ToUpper(req.Method) {
	case fiber.MethodPost:
		a = c.agent.Post(target)
	case fiber.MethodPut:
		a = c.agent.Put(target)
	case fiber.MethodPatch:
		a = c.agent.Patch(target)
	case fiber.MethodDelete:
		a = c.agent.Delete(target)
	default:
		a = c.agent.Get(target)
	}

	timeout := c.cfg.RequestTimeout()
	byDeadline := false
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
			byDeadline = true
		}
	}
	a.Timeout(timeout)
	for k, v := range c.cfg.Headers {
		a.Set(k, v)
	}
	if sess != nil {
		if token := sess.UpstreamToken(); token != "" {
			a.Set(fiber.HeaderAuthorization, "Bearer "+token)
		}
	}
	if len(req.Query) > 0 {
		q := url.Values{}
		for k, v := range req.Query {
			q.Set(k, v)
		}
		a.QueryString(q.Encode())
	}
	if req.Body != nil {
		a.JSON(req.Body)
	}

	ch := make(chan sendResult, 1)
	utils.SafeGo("upstream."+c.name, func() {
		status, body, errs := a.Bytes()
		if len(errs) > 0 {
			ch <- sendResult{err: errs[0]}
			return
		}
		ch <- sendResult{status: status, body: body}
	})

	select {
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	case r := <-ch:
		if r.err != nil && ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
		// 超时被截到 ctx 截止时间时，agent 的超时先于 ctx 触发
		if byDeadline && errors.Is(r.err, fasthttp.ErrTimeout) {
			return 0, nil, fmt.Errorf("%w: %v", context.DeadlineExceeded, r.err)
		}
		return r.status, r.body, r.err
	}
}

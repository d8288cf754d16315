package operate

import (
	"fmt"
	"strconv"
	"strings"
)

// Result 归一后的接口错误结构
type Result struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

var failureKeywords = []string{
	"已存在", "失败", "错误", "无法", "不能", "无权限",
	"already exists", "failed", "error", "no permission",
}

// ResultFrom 从响应体中取出 code/msg，优先取 data 对象
func ResultFrom(body map[string]any) *Result {
	if body == nil {
		return nil
	}
	src := body
	if inner, ok := body["data"].(map[string]any); ok {
		if _, has := inner["code"]; has {
			src = inner
		}
	}
	r := &Result{}
	switch v := src["code"].(type) {
	case float64:
		r.Code = int(v)
	case int:
		r.Code = v
	case string:
		r.Code, _ = strconv.Atoi(strings.TrimSpace(v))
	}
	if msg, ok := src["msg"].(string); ok {
		r.Msg = msg
	} else if msg, ok := src["message"].(string); ok {
		r.Msg = msg
	}
	return r
}

// CheckResult 判断接口结果是否失败，失败时返回要展示的消息
//
// nil 视为成功；403、500 失败；消息含失败关键字失败；code 不在 {200, 0} 失败。
func CheckResult(r *Result, operation string) (bool, string) {
	if r == nil {
		return false, ""
	}
	msg := r.Msg
	if msg == "" {
		msg = fmt.Sprintf("%s失败", operation)
	}
	if r.Code == 403 || r.Code == 500 {
		return true, msg
	}
	lower := strings.ToLower(r.Msg)
	for _, kw := range failureKeywords {
		if strings.Contains(lower, kw) {
			return true, msg
		}
	}
	if r.Code != 200 && r.Code != 0 {
		return true, msg
	}
	return false, ""
}

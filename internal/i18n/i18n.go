package i18n

import (
	"fmt"
	"strings"

	"gameops/console/internal/config"

	"golang.org/x/text/language"
)

// LangParam 切换语言的查询参数
const LangParam = "lang"

var builtin = map[string]map[string]string{
	"zh-CN": {
		"common.check":                   "勾选",
		"common.expandColumn":            "展开列",
		"common.confirm":                 "确认",
		"common.error":                   "错误",
		"common.addSuccess":              "添加成功",
		"common.updateSuccess":           "更新成功",
		"common.deleteSuccess":           "删除成功",
		"common.deleteFailed":            "删除失败",
		"datatable.itemCount":            "共 {total} 条",
		"request.loginExpiredTitle":      "登录已过期",
		"request.loginExpiredMsg":        "您的登录状态已过期，请重新登录",
		"request.accountKickedOut":       "账号已在其他设备登录",
		"request.accountKickedOutMsg":    "您的账号已在其他设备登录，当前会话已失效",
		"request.requestFailed":          "请求失败",
		"page.login.common.loginSuccess": "登录成功",
		"page.login.common.welcomeBack":  "欢迎回来，{userName}！",
		"route.home":                     "首页",
		"route.user-center":              "个人中心",
		"route.login":                    "登录",
		"route.404":                      "页面不存在",
	},
	"en-US": {
		"common.check":                   "check",
		"common.expandColumn":            "Expand Column",
		"common.confirm":                 "Confirm",
		"common.error":                   "Error",
		"common.addSuccess":              "Add Success",
		"common.updateSuccess":           "Update Success",
		"common.deleteSuccess":           "Delete Success",
		"common.deleteFailed":            "Delete Failed",
		"datatable.itemCount":            "Total {total} items",
		"request.loginExpiredTitle":      "Login expired",
		"request.loginExpiredMsg":        "Your session has expired, please log in again",
		"request.accountKickedOut":       "Signed in elsewhere",
		"request.accountKickedOutMsg":    "Your account has signed in on another device",
		"request.requestFailed":          "Request failed",
		"page.login.common.loginSuccess": "Login successfully",
		"page.login.common.welcomeBack":  "Welcome back, {userName} !",
		"route.home":                     "Home",
		"route.user-center":              "User Center",
		"route.login":                    "Login",
		"route.404":                      "Not Found",
	},
}

// Catalog 文案目录，内置文案可被配置覆盖
type Catalog struct {
	def       string
	supported []string
	tags      []language.Tag
	matcher   language.Matcher
	messages  map[string]map[string]string
}

// NewCatalog 由配置创建目录，无法解析的语言被忽略
func NewCatalog(cfg config.I18nConfig) *Catalog {
	c := &Catalog{messages: make(map[string]map[string]string)}
	for _, s := range cfg.Supported {
		tag, err := language.Parse(s)
		if err != nil {
			continue
		}
		c.supported = append(c.supported, s)
		c.tags = append(c.tags, tag)
	}
	if len(c.supported) == 0 {
		c.supported = []string{"zh-CN"}
		c.tags = []language.Tag{language.SimplifiedChinese}
	}
	c.def = c.supported[0]
	if d, ok := c.Parse(cfg.Default); ok {
		c.def = d
	}
	c.matcher = language.NewMatcher(c.tags)

	for loc, msgs := range builtin {
		c.merge(loc, msgs)
	}
	for loc, msgs := range cfg.Messages {
		c.merge(loc, msgs)
	}
	return c
}

func (c *Catalog) merge(locale string, msgs map[string]string) {
	m, ok := c.messages[locale]
	if !ok {
		m = make(map[string]string, len(msgs))
		c.messages[locale] = m
	}
	for k, v := range msgs {
		m[k] = v
	}
}

// Default 默认语言
func (c *Catalog) Default() string {
	return c.def
}

// Supported 支持的语言
func (c *Catalog) Supported() []string {
	return append([]string(nil), c.supported...)
}

// Parse 解析为受支持的语言，不支持时返回 false
func (c *Catalog) Parse(value string) (string, bool) {
	tag, err := language.Parse(strings.TrimSpace(value))
	if err != nil {
		return "", false
	}
	for i, t := range c.tags {
		if t == tag {
			return c.supported[i], true
		}
	}
	return "", false
}

// Match 按 Accept-Language 匹配最合适的语言
func (c *Catalog) Match(accept string) string {
	accept = strings.TrimSpace(accept)
	if accept == "" {
		return c.def
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return c.def
	}
	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No {
		return c.def
	}
	return c.supported[idx]
}

// T 翻译，缺失时回退到默认语言，再缺失返回 key；{name} 按 args 插值
func (c *Catalog) T(locale, key string, args map[string]any) string {
	msg, ok := c.messages[locale][key]
	if !ok {
		msg, ok = c.messages[c.def][key]
	}
	if !ok {
		return key
	}
	for k, v := range args {
		msg = strings.ReplaceAll(msg, "{"+k+"}", fmt.Sprint(v))
	}
	return msg
}

// Text 绑定语言的插值翻译函数
func (c *Catalog) Text(locale string) func(key string, args map[string]any) string {
	return func(key string, args map[string]any) string {
		return c.T(locale, key, args)
	}
}

// Label 绑定语言的翻译函数
func (c *Catalog) Label(locale string) func(key string) string {
	return func(key string) string {
		return c.T(locale, key, nil)
	}
}

package config

import (
	"os"
	"time"

	commonConfig "gameops/console/common/config"
	"gameops/console/internal/table"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	commonConfig.Config `yaml:",inline"`
	Upstream            UpstreamConfig `yaml:"upstream"`
	Console             ConsoleConfig  `yaml:"console"`
	I18n                I18nConfig     `yaml:"i18n"`
}

// UpstreamConfig 上游服务
type UpstreamConfig struct {
	Platform ClientConfig `yaml:"platform"`
	Demo     ClientConfig `yaml:"demo"`
}

// ClientConfig 单个上游客户端配置
type ClientConfig struct {
	BaseURL           string            `yaml:"base_url"`
	Timeout           int               `yaml:"timeout"` // 秒
	SuccessCode       string            `yaml:"success_code"`
	CodeField         string            `yaml:"code_field"`
	MessageField      string            `yaml:"message_field"`
	DataField         string            `yaml:"data_field"`
	LogoutCodes       []string          `yaml:"logout_codes"`
	ModalLogoutCodes  []string          `yaml:"modal_logout_codes"`
	ExpiredTokenCodes []string          `yaml:"expired_token_codes"`
	Headers           map[string]string `yaml:"headers"`
}

// RequestTimeout 请求超时
func (c ClientConfig) RequestTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// ConsoleConfig 控制台行为
type ConsoleConfig struct {
	RouteMode       string      `yaml:"route_mode"` // static, dynamic
	RoutesFile      string      `yaml:"routes_file"`
	Home            string      `yaml:"home"`
	SuperRole       string      `yaml:"super_role"`
	MenuIcon        string      `yaml:"menu_icon"`
	DialogCooldown  int         `yaml:"dialog_cooldown"` // 秒
	DefaultPageSize int         `yaml:"default_page_size"`
	SessionIdle     int         `yaml:"session_idle"`    // 分钟
	RouteExistTTL   int         `yaml:"route_exist_ttl"` // 秒
	Tables          []TableDecl `yaml:"tables"`
}

// TableDecl 声明式的列表页
type TableDecl struct {
	Key             string         `yaml:"key" json:"key"`
	Title           string         `yaml:"title" json:"title"`
	Client          string         `yaml:"client" json:"client"`
	ListPath        string         `yaml:"list_path" json:"listPath"`
	DeletePath      string         `yaml:"delete_path" json:"deletePath,omitempty"`
	BatchDeletePath string         `yaml:"batch_delete_path" json:"batchDeletePath,omitempty"`
	IDKey           string         `yaml:"id_key" json:"idKey"`
	ChildrenKey     string         `yaml:"children_key" json:"childrenKey,omitempty"`
	Permission      string         `yaml:"permission" json:"permission,omitempty"`
	ShowTotal       bool           `yaml:"show_total" json:"showTotal"`
	Params          map[string]any `yaml:"params" json:"params,omitempty"`
	DefaultHidden   []string       `yaml:"default_hidden" json:"defaultHidden,omitempty"`
	Columns         []table.Column `yaml:"columns" json:"columns"`
}

// I18nConfig 多语言
type I18nConfig struct {
	Default   string                       `yaml:"default"`
	Supported []string                     `yaml:"supported"`
	Messages  map[string]map[string]string `yaml:"messages"`
}

// LoadConfig 加载配置文件，.env 存在时先加载为环境变量
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load(".env")
	if env := os.Getenv("APP_ENV"); env != "" {
		_ = godotenv.Load(".env." + env)
	}

	var cfg Config
	if err := commonConfig.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if v := os.Getenv("UPSTREAM_PLATFORM_URL"); v != "" {
		cfg.Upstream.Platform.BaseURL = v
	}
	if v := os.Getenv("UPSTREAM_DEMO_URL"); v != "" {
		cfg.Upstream.Demo.BaseURL = v
	}
	if v := os.Getenv("ROUTE_MODE"); v != "" {
		cfg.Console.RouteMode = v
	}
	cfg.SetDefaults()

	return &cfg, nil
}

// SetDefaults 补齐缺省值
func (c *Config) SetDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5555
	}
	if c.SaToken.TokenName == "" {
		c.SaToken.TokenName = "satoken"
	}
	if c.SaToken.Timeout == 0 {
		c.SaToken.Timeout = 7 * 24 * 3600
	}
	if c.SaToken.MaxLoginCount == 0 {
		c.SaToken.MaxLoginCount = 12
	}
	p := &c.Upstream.Platform
	if p.SuccessCode == "" {
		p.SuccessCode = "200"
	}
	if p.CodeField == "" {
		p.CodeField = "code"
	}
	if p.MessageField == "" {
		p.MessageField = "msg"
	}
	if p.DataField == "" {
		p.DataField = "data"
	}
	d := &c.Upstream.Demo
	if d.SuccessCode == "" {
		d.SuccessCode = "200"
	}
	if d.CodeField == "" {
		d.CodeField = "status"
	}
	if d.MessageField == "" {
		d.MessageField = "message"
	}
	if d.DataField == "" {
		d.DataField = "result"
	}

	cc := &c.Console
	if cc.RouteMode == "" {
		cc.RouteMode = "static"
	}
	if cc.RoutesFile == "" {
		cc.RoutesFile = "config/routes.yml"
	}
	if cc.Home == "" {
		cc.Home = "home"
	}
	if cc.SuperRole == "" {
		cc.SuperRole = "R_SUPER"
	}
	if cc.DialogCooldown <= 0 {
		cc.DialogCooldown = 3
	}
	if cc.DefaultPageSize <= 0 {
		cc.DefaultPageSize = table.DefaultPageSize
	}
	if cc.SessionIdle <= 0 {
		cc.SessionIdle = 120
	}
	if cc.RouteExistTTL <= 0 {
		cc.RouteExistTTL = 60
	}
	for i := range cc.Tables {
		if cc.Tables[i].Client == "" {
			cc.Tables[i].Client = "platform"
		}
		if cc.Tables[i].IDKey == "" {
			cc.Tables[i].IDKey = "id"
		}
	}

	if c.I18n.Default == "" {
		c.I18n.Default = "zh-CN"
	}
	if len(c.I18n.Supported) == 0 {
		c.I18n.Supported = []string{"zh-CN", "en-US"}
	}
}

// Table 按 key 查找列表声明
func (c *Config) Table(key string) (TableDecl, bool) {
	for _, t := range c.Console.Tables {
		if t.Key == key {
			return t, true
		}
	}
	return TableDecl{}, false
}

// DialogCooldownDuration 弹窗冷却时间
func (c ConsoleConfig) DialogCooldownDuration() time.Duration {
	return time.Duration(c.DialogCooldown) * time.Second
}

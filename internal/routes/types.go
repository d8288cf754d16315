package routes

import "errors"

var (
	// ErrDuplicateRouteName 生成的路由名冲突
	ErrDuplicateRouteName = errors.New("routes: duplicate generated route name")
	// ErrCyclicRoute 扁平菜单的 parentId 成环
	ErrCyclicRoute = errors.New("routes: cyclic parent reference")
	// ErrRouteTooDeep 路由树超过最大深度
	ErrRouteTooDeep = errors.New("routes: route tree too deep")
	// ErrInvalidComponent 组件标记无法识别
	ErrInvalidComponent = errors.New("routes: invalid component")
	// ErrRouteNotFound 路径无法匹配任何路由
	ErrRouteNotFound = errors.New("routes: route not found")
)

// MaxDepth 路由树最大深度
const MaxDepth = 32

const (
	DefaultIcon     = "akar-icons:airplay-video"
	DefaultOrder    = 10
	DefaultName     = "default_route"
	BaseLayout      = "layout.base"
	RootRouteName   = "root"
	HomeRouteName   = "home"
	NotFoundName    = "not-found"
	UserCenterName  = "user-center"
	layoutPrefix    = "layout."
	viewPrefix      = "view."
	singleLevelSep  = "$"
	nameSeparator   = "_"
	i18nRoutePrefix = "route."
)

// Mode 权限路由来源
type Mode string

const (
	ModeStatic  Mode = "static"
	ModeDynamic Mode = "dynamic"
)

// Lifecycle 路由初始化阶段
type Lifecycle string

const (
	Uninitialized        Lifecycle = "uninitialized"
	ConstantRoutesLoaded Lifecycle = "constant_routes_loaded"
	AuthRoutesLoaded     Lifecycle = "auth_routes_loaded"
)

// Meta 路由元信息
type Meta struct {
	Title      string   `json:"title" yaml:"title"`
	I18nKey    string   `json:"i18nKey,omitempty" yaml:"i18nKey"`
	Icon       string   `json:"icon,omitempty" yaml:"icon"`
	LocalIcon  string   `json:"localIcon,omitempty" yaml:"localIcon"`
	Order      int      `json:"order,omitempty" yaml:"order"`
	Roles      []string `json:"roles,omitempty" yaml:"roles"`
	KeepAlive  bool     `json:"keepAlive,omitempty" yaml:"keepAlive"`
	HideInMenu bool     `json:"hideInMenu,omitempty" yaml:"hideInMenu"`
	Constant   bool     `json:"constant,omitempty" yaml:"constant"`
	ActiveMenu string   `json:"activeMenu,omitempty" yaml:"activeMenu"`
	Href       string   `json:"href,omitempty" yaml:"href"`
	MultiTab   bool     `json:"multiTab,omitempty" yaml:"multiTab"`
}

// Route 常量路由与权限路由的统一描述
type Route struct {
	Name      string  `json:"name" yaml:"name"`
	Path      string  `json:"path" yaml:"path"`
	Component string  `json:"component,omitempty" yaml:"component"`
	Redirect  string  `json:"redirect,omitempty" yaml:"redirect"`
	Meta      Meta    `json:"meta" yaml:"meta"`
	Children  []Route `json:"children,omitempty" yaml:"children"`
}

// BackendMeta 后端路由元信息
type BackendMeta struct {
	Title     string   `json:"title"`
	Icon      string   `json:"icon,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	KeepAlive *bool    `json:"keepAlive,omitempty"`
	Order     *int     `json:"order,omitempty"`
}

// BackendRoute 后端下发的路由节点，扁平形式带 menuId/parentId
type BackendRoute struct {
	MenuID   int64          `json:"menuId,omitempty"`
	ParentID int64          `json:"parentId,omitempty"`
	Name     string         `json:"name"`
	Path     string         `json:"path"`
	Hidden   bool           `json:"hidden,omitempty"`
	Meta     BackendMeta    `json:"meta"`
	Children []BackendRoute `json:"children,omitempty"`
}

// RouterRoute 注册到路由器的路由
type RouterRoute struct {
	Name     string        `json:"name,omitempty"`
	Path     string        `json:"path"`
	Layout   string        `json:"layout,omitempty"`
	View     string        `json:"view,omitempty"`
	Redirect string        `json:"redirect,omitempty"`
	Meta     Meta          `json:"meta"`
	Children []RouterRoute `json:"children,omitempty"`
}

// Menu 菜单节点
type Menu struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	I18nKey   string `json:"i18nKey,omitempty"`
	RouteKey  string `json:"routeKey"`
	RoutePath string `json:"routePath"`
	Icon      string `json:"icon,omitempty"`
	LocalIcon string `json:"localIcon,omitempty"`
	Children  []Menu `json:"children,omitempty"`
}

// Breadcrumb 面包屑，Options 为该节点的子级
type Breadcrumb struct {
	Key       string       `json:"key"`
	Label     string       `json:"label"`
	I18nKey   string       `json:"i18nKey,omitempty"`
	RouteKey  string       `json:"routeKey"`
	RoutePath string       `json:"routePath"`
	Icon      string       `json:"icon,omitempty"`
	LocalIcon string       `json:"localIcon,omitempty"`
	Options   []Breadcrumb `json:"options,omitempty"`
}

// Text 文案翻译
type Text func(key string) string

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// 独立成包，避免 upstream、routes 与 handler 之间互相引用

var (
	UpstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_upstream_requests_total",
		Help: "上游请求数，按客户端与分类结果统计",
	}, []string{"client", "kind"})

	UpstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "console_upstream_request_duration_seconds",
		Help:    "上游请求耗时",
		Buckets: prometheus.DefBuckets,
	}, []string{"client"})

	TokenRefreshes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_token_refresh_total",
		Help: "上游令牌刷新次数",
	}, []string{"result"})

	Dialogs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_dialogs_total",
		Help: "会话弹窗，shown 为展示，suppressed 为去重拦截",
	}, []string{"kind", "result"})

	RouteInits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_route_init_total",
		Help: "权限路由初始化次数",
	}, []string{"mode", "result"})

	TableFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_table_fetch_total",
		Help: "表格拉取次数",
	}, []string{"table", "result"})

	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "console_active_sessions",
		Help: "当前会话数",
	})
)

// Register 注册全部指标，reg 为 nil 时使用默认注册器
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	collectors := []prometheus.Collector{
		UpstreamRequests, UpstreamDuration, TokenRefreshes, Dialogs, RouteInits, TableFetches, ActiveSessions,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

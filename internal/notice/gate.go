package notice

import (
	"sync"
	"time"

	"gameops/console/internal/metrics"
)

// DefaultCooldown 同一会话两次弹窗的最小间隔
const DefaultCooldown = 3 * time.Second

type gateState struct {
	showing  bool
	kind     Kind
	lastShow time.Time
	modals   map[string]struct{}
}

// Gate 弹窗去重，两个上游客户端共用一份
//
// 会话级别：弹窗未确认前或冷却期内不会再弹。错误弹窗另按内容去重。
type Gate struct {
	mu       sync.Mutex
	cooldown time.Duration
	now      func() time.Time
	sessions map[string]*gateState
}

// NewGate cooldown<=0 时使用 DefaultCooldown
func NewGate(cooldown time.Duration) *Gate {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Gate{
		cooldown: cooldown,
		now:      time.Now,
		sessions: make(map[string]*gateState),
	}
}

func (g *Gate) stateLocked(sessionID string) *gateState {
	st, ok := g.sessions[sessionID]
	if !ok {
		st = &gateState{modals: make(map[string]struct{})}
		g.sessions[sessionID] = st
	}
	return st
}

// TryAcquire 检查并占用弹窗位，成功时调用方负责弹窗
func (g *Gate) TryAcquire(sessionID string, kind Kind) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := g.stateLocked(sessionID)
	now := g.now()
	if st.showing || (!st.lastShow.IsZero() && now.Sub(st.lastShow) < g.cooldown) {
		metrics.Dialogs.WithLabelValues(string(kind), "suppressed").Inc()
		return false
	}
	st.showing = true
	st.kind = kind
	st.lastShow = now
	metrics.Dialogs.WithLabelValues(string(kind), "shown").Inc()
	return true
}

// Release 用户确认后释放弹窗位，冷却期仍然生效
func (g *Gate) Release(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if st, ok := g.sessions[sessionID]; ok {
		st.showing = false
	}
}

// Showing 当前会话是否有弹窗未确认
func (g *Gate) Showing(sessionID string) (Kind, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	st, ok := g.sessions[sessionID]
	if !ok || !st.showing {
		return "", false
	}
	return st.kind, true
}

// TryAcquireModal 同一内容的错误弹窗只弹一次，直到 ReleaseModal
func (g *Gate) TryAcquireModal(sessionID, content string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := g.stateLocked(sessionID)
	if _, dup := st.modals[content]; dup {
		metrics.Dialogs.WithLabelValues(string(KindErrorModal), "suppressed").Inc()
		return false
	}
	st.modals[content] = struct{}{}
	metrics.Dialogs.WithLabelValues(string(KindErrorModal), "shown").Inc()
	return true
}

// ReleaseModal 错误弹窗确认后移除
func (g *Gate) ReleaseModal(sessionID, content string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if st, ok := g.sessions[sessionID]; ok {
		delete(st.modals, content)
	}
}

// Sweep 清理最后一次弹窗早于 maxAge 的会话状态，返回清理数量
//
// 会话重置时不清理，重置前已发出的请求仍需命中同一份状态。
func (g *Gate) Sweep(maxAge time.Duration) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	n := 0
	for id, st := range g.sessions {
		if len(st.modals) == 0 && now.Sub(st.lastShow) > maxAge {
			delete(g.sessions, id)
			n++
		}
	}
	return n
}

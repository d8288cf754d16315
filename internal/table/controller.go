package table

import (
	"context"
	"errors"
	"sync"

	"gameops/console/common/utils"
)

// Config 表格控制器配置
type Config[R, T, C any] struct {
	// APIFn 拉取数据，参数已去掉 nil 值
	APIFn func(ctx context.Context, params SearchParams) (R, error)
	// Params 初始搜索参数
	Params SearchParams
	// Columns 列工厂，每次重载都会重新调用
	Columns func() []C
	// Transformer 把接口响应转成一页数据，params 为本次实际发出的参数
	Transformer func(resp R, params SearchParams) (Page[T], error)
	// GetColumnChecks 由列生成勾选列表
	GetColumnChecks func(cols []C) []ColumnCheck
	// GetColumns 按勾选过滤并排序列
	GetColumns func(cols []C, checks []ColumnCheck) []C
	// OnFetched 拉取成功后的回调，在锁外执行
	OnFetched func(ctx context.Context, data TransformedData[T]) error
	// Immediate 为 true 时 Start 会立即拉取一次
	Immediate bool
}

// Controller 绑定拉取函数与表格状态
type Controller[R, T, C any] struct {
	cfg Config[R, T, C]

	mu         sync.Mutex
	params     SearchParams
	initial    SearchParams
	allColumns []C
	checks     []ColumnCheck
	data       []Row[T]
	empty      bool
	loading    bool
	gen        uint64
	cancel     context.CancelFunc
}

// New 创建控制器，不会发起请求
func New[R, T, C any](cfg Config[R, T, C]) *Controller[R, T, C] {
	c := &Controller[R, T, C]{
		cfg:     cfg,
		initial: SearchParams(utils.DeepCloneMap(cfg.Params)),
		params:  SearchParams(utils.DeepCloneMap(cfg.Params)),
	}
	if c.initial == nil {
		c.initial = SearchParams{}
		c.params = SearchParams{}
	}
	c.allColumns = cfg.Columns()
	c.checks = cfg.GetColumnChecks(cfg.Columns())
	return c
}

// Start 按 Immediate 配置决定是否首次拉取
func (c *Controller[R, T, C]) Start(ctx context.Context) error {
	if !c.cfg.Immediate {
		return nil
	}
	_, err := c.GetData(ctx)
	return err
}

// FormatSearchParams 深拷贝并去掉值为 nil 的键，带类型的空指针同样去掉
func FormatSearchParams(params SearchParams) SearchParams {
	out := make(SearchParams, len(params))
	for k, v := range utils.DeepCloneMap(params) {
		if !utils.IsNil(v) {
			out[k] = v
		}
	}
	return out
}

// GetData 拉取并刷新数据
//
// 每次调用取消上一次未完成的请求；结果返回时若已不是最新一次调用，
// 数据被丢弃并返回 ErrStaleResponse。loading 在任何路径上都会复位。
func (c *Controller[R, T, C]) GetData(ctx context.Context) (TransformedData[T], error) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	if c.cancel != nil {
		c.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.loading = true
	params := FormatSearchParams(c.params)
	c.mu.Unlock()

	defer func() {
		cancel()
		c.mu.Lock()
		if c.gen == gen {
			c.loading = false
			c.cancel = nil
		}
		c.mu.Unlock()
	}()

	resp, err := c.cfg.APIFn(reqCtx, params)
	if err != nil {
		if c.isStale(gen) && errors.Is(err, context.Canceled) {
			return TransformedData[T]{}, ErrStaleResponse
		}
		return TransformedData[T]{}, err
	}
	page, err := c.cfg.Transformer(resp, params)
	if err != nil {
		return TransformedData[T]{}, err
	}
	transformed := Transform(page)

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return TransformedData[T]{}, ErrStaleResponse
	}
	c.data = transformed.Data
	c.empty = len(transformed.Data) == 0
	c.mu.Unlock()

	if c.cfg.OnFetched != nil {
		if err := c.cfg.OnFetched(ctx, transformed); err != nil {
			return transformed, err
		}
	}
	return transformed, nil
}

func (c *Controller[R, T, C]) isStale(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen != gen
}

// UpdateSearchParams 浅合并
func (c *Controller[R, T, C]) UpdateSearchParams(partial map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range partial {
		c.params[k] = v
	}
}

// ResetSearchParams 恢复为初始参数，之后新增的键被移除
func (c *Controller[R, T, C]) ResetSearchParams() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.params {
		delete(c.params, k)
	}
	for k, v := range utils.DeepCloneMap(c.initial) {
		c.params[k] = v
	}
}

// SearchParams 当前参数的副本
func (c *Controller[R, T, C]) SearchParams() SearchParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SearchParams(utils.DeepCloneMap(c.params))
}

// ReloadColumns 重新生成列，保留每个 key 之前的勾选状态
func (c *Controller[R, T, C]) ReloadColumns() {
	cols := c.cfg.Columns()
	defaults := c.cfg.GetColumnChecks(cols)

	c.mu.Lock()
	defer c.mu.Unlock()
	checked := make(map[string]bool, len(c.checks))
	for _, ck := range c.checks {
		checked[ck.Key] = ck.Checked
	}
	for i := range defaults {
		if v, ok := checked[defaults[i].Key]; ok {
			defaults[i].Checked = v
		}
	}
	c.allColumns = cols
	c.checks = defaults
}

// SetColumnChecks 按传入顺序更新勾选，未知 key 忽略，缺失的 key 追加在末尾
func (c *Controller[R, T, C]) SetColumnChecks(checks []ColumnCheck) {
	c.mu.Lock()
	defer c.mu.Unlock()
	current := make(map[string]ColumnCheck, len(c.checks))
	for _, ck := range c.checks {
		current[ck.Key] = ck
	}
	next := make([]ColumnCheck, 0, len(c.checks))
	seen := make(map[string]bool, len(c.checks))
	for _, ck := range checks {
		old, ok := current[ck.Key]
		if !ok || seen[ck.Key] {
			continue
		}
		seen[ck.Key] = true
		old.Checked = ck.Checked
		next = append(next, old)
	}
	for _, ck := range c.checks {
		if !seen[ck.Key] {
			next = append(next, ck)
		}
	}
	c.checks = next
}

// ColumnChecks 勾选列表副本
func (c *Controller[R, T, C]) ColumnChecks() []ColumnCheck {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ColumnCheck(nil), c.checks...)
}

// Columns 按勾选派生出的渲染列
func (c *Controller[R, T, C]) Columns() []C {
	c.mu.Lock()
	cols := append([]C(nil), c.allColumns...)
	checks := append([]ColumnCheck(nil), c.checks...)
	c.mu.Unlock()
	return c.cfg.GetColumns(cols, checks)
}

// AllColumns 工厂生成的全部列
func (c *Controller[R, T, C]) AllColumns() []C {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]C(nil), c.allColumns...)
}

// Data 当前行数据
func (c *Controller[R, T, C]) Data() []Row[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Row[T](nil), c.data...)
}

func (c *Controller[R, T, C]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Controller[R, T, C]) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.empty
}

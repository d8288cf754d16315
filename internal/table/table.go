package table

import (
	"context"
	"sync"
)

// Text 文案翻译，args 用于插值
type Text func(key string, args map[string]any) string

// TableConfig 带分页的表格配置
type TableConfig[T any] struct {
	APIFn             func(ctx context.Context, params SearchParams) (Page[T], error)
	Params            SearchParams
	Columns           func() []Column
	DefaultHiddenKeys []string
	ShowTotal         bool
	Immediate         bool
	PageSizes         []int
	Text              Text
	OnFetched         func(ctx context.Context, data TransformedData[T])
}

// Table 在 Controller 之上维护分页状态
type Table[T any] struct {
	*Controller[Page[T], T, Column]

	mu         sync.Mutex
	pagination Pagination
	showTotal  bool
	text       Text
	onFetched  func(ctx context.Context, data TransformedData[T])
}

// State 表格的完整快照
type State[T any] struct {
	Loading      bool          `json:"loading"`
	Empty        bool          `json:"empty"`
	Data         []Row[T]      `json:"data"`
	Columns      []Column      `json:"columns"`
	ColumnChecks []ColumnCheck `json:"columnChecks"`
	Pagination   Pagination    `json:"pagination"`
	SearchParams SearchParams  `json:"searchParams"`
	ScrollX      int           `json:"scrollX"`
}

// NewTable 创建表格，不会发起请求
func NewTable[T any](cfg TableConfig[T]) *Table[T] {
	text := cfg.Text
	if text == nil {
		text = func(key string, _ map[string]any) string { return key }
	}
	sizes := cfg.PageSizes
	if len(sizes) == 0 {
		sizes = DefaultPageSizes
	}
	t := &Table[T]{
		showTotal: cfg.ShowTotal,
		text:      text,
		onFetched: cfg.OnFetched,
		pagination: Pagination{
			Page:           1,
			PageSize:       DefaultPageSize,
			ShowSizePicker: true,
			PageSizes:      append([]int(nil), sizes...),
		},
	}
	if v, ok := toInt(cfg.Params["current"]); ok && v > 0 {
		t.pagination.Page = v
	}
	if v, ok := toInt(cfg.Params["size"]); ok && v > 0 {
		t.pagination.PageSize = v
	}

	hidden := append([]string(nil), cfg.DefaultHiddenKeys...)
	t.Controller = New(Config[Page[T], T, Column]{
		APIFn:       cfg.APIFn,
		Params:      cfg.Params,
		Columns:     cfg.Columns,
		Transformer: t.transform,
		GetColumnChecks: func(cols []Column) []ColumnCheck {
			return ColumnChecks(cols, hidden, text("common.check", nil), text("common.expandColumn", nil))
		},
		GetColumns: VisibleColumns,
		OnFetched:  t.fetched,
		Immediate:  cfg.Immediate,
	})
	return t
}

// 响应里缺失的页码与页大小先取本次请求参数，再取当前分页状态
func (t *Table[T]) transform(p Page[T], params SearchParams) (Page[T], error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p.Current <= 0 {
		if v, ok := toInt(params["current"]); ok && v > 0 {
			p.Current = v
		} else {
			p.Current = t.pagination.Page
		}
	}
	if p.Current <= 0 {
		p.Current = 1
	}
	if p.Size <= 0 {
		if v, ok := toInt(params["size"]); ok && v > 0 {
			p.Size = v
		} else {
			p.Size = t.pagination.PageSize
		}
	}
	return p, nil
}

func (t *Table[T]) fetched(ctx context.Context, data TransformedData[T]) error {
	t.mu.Lock()
	t.pagination.Page = data.PageNum
	t.pagination.PageSize = data.PageSize
	t.pagination.ItemCount = data.Total
	t.mu.Unlock()
	if t.onFetched != nil {
		t.onFetched(ctx, data)
	}
	return nil
}

// GetDataByPage 跳到指定页并拉取，page<=0 视为 1
func (t *Table[T]) GetDataByPage(ctx context.Context, page int) (TransformedData[T], error) {
	if page <= 0 {
		page = 1
	}
	t.mu.Lock()
	t.pagination.Page = page
	size := t.pagination.PageSize
	t.mu.Unlock()
	t.UpdateSearchParams(map[string]any{"current": page, "size": size})
	return t.GetData(ctx)
}

// UpdatePageSize 修改页大小并回到第一页
func (t *Table[T]) UpdatePageSize(ctx context.Context, size int) (TransformedData[T], error) {
	if size <= 0 {
		size = DefaultPageSize
	}
	t.mu.Lock()
	t.pagination.PageSize = size
	t.pagination.Page = 1
	t.mu.Unlock()
	t.UpdateSearchParams(map[string]any{"current": 1, "size": size})
	return t.GetData(ctx)
}

// ResetSearchParams 恢复初始参数，分页状态同步回初始页码与页大小
func (t *Table[T]) ResetSearchParams() {
	t.Controller.ResetSearchParams()
	params := t.SearchParams()
	t.mu.Lock()
	defer t.mu.Unlock()
	if v, ok := toInt(params["current"]); ok && v > 0 {
		t.pagination.Page = v
	} else {
		t.pagination.Page = 1
	}
	if v, ok := toInt(params["size"]); ok && v > 0 {
		t.pagination.PageSize = v
	}
}

// SafeUpdateSearchParams 合并参数，同时保留当前页码与页大小
func (t *Table[T]) SafeUpdateSearchParams(params map[string]any) {
	t.mu.Lock()
	merged := map[string]any{"current": t.pagination.Page, "size": t.pagination.PageSize}
	t.mu.Unlock()
	for k, v := range params {
		merged[k] = v
	}
	t.UpdateSearchParams(merged)
}

// Pagination 当前分页，开启 showTotal 时带总数前缀
func (t *Table[T]) Pagination() Pagination {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.pagination
	p.PageSizes = append([]int(nil), t.pagination.PageSizes...)
	if t.showTotal {
		p.Prefix = t.text("datatable.itemCount", map[string]any{"total": p.ItemCount})
	}
	return p
}

// MobilePagination 适配移动端的分页
func (t *Table[T]) MobilePagination(isMobile bool) Pagination {
	return t.Pagination().Mobile(isMobile, t.showTotal)
}

// ScrollX 横向滚动宽度
func (t *Table[T]) ScrollX() int {
	return ScrollX(t.Columns(), t.ColumnChecks())
}

// Snapshot 整体状态
func (t *Table[T]) Snapshot(isMobile bool) State[T] {
	cols := t.Columns()
	checks := t.ColumnChecks()
	return State[T]{
		Loading:      t.Loading(),
		Empty:        t.Empty(),
		Data:         t.Data(),
		Columns:      cols,
		ColumnChecks: checks,
		Pagination:   t.MobilePagination(isMobile),
		SearchParams: t.SearchParams(),
		ScrollX:      ScrollX(cols, checks),
	}
}

package table

import "errors"

var (
	// ErrStaleResponse 已有更新的请求，本次结果被丢弃
	ErrStaleResponse = errors.New("table: stale response discarded")
	// ErrUnrecognizedShape 列表响应既不是 rows/data 对象也不是数组
	ErrUnrecognizedShape = errors.New("table: unrecognized response shape")
)

const (
	// SelectionKey 勾选列的合成 key
	SelectionKey = "__selection__"
	// ExpandKey 展开列的合成 key
	ExpandKey = "__expand__"
	// DefaultPageSize 分页大小非法时的兜底值
	DefaultPageSize = 10
)

// SearchParams 搜索参数，controller 生命周期内始终是同一个 map
type SearchParams map[string]any

// Record 未声明结构的行
type Record = map[string]any

// ColumnCheck 列显示开关
type ColumnCheck struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Checked bool   `json:"checked"`
}

// Page 接口返回的一页数据，Current/Size 为 0 表示响应中没有
type Page[T any] struct {
	Items   []T
	Current int
	Size    int
	Total   int
	Shape   Shape
}

// TransformedData 表格最终渲染的数据
type TransformedData[T any] struct {
	Data     []Row[T] `json:"data"`
	PageNum  int      `json:"pageNum"`
	PageSize int      `json:"pageSize"`
	Total    int      `json:"total"`
}

// Transform 为每行注入全局序号，pageSize<=0 时按 DefaultPageSize 计算
func Transform[T any](p Page[T]) TransformedData[T] {
	pageNum := p.Current
	if pageNum <= 0 {
		pageNum = 1
	}
	pageSize := p.Size
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	rows := make([]Row[T], len(p.Items))
	for i, item := range p.Items {
		rows[i] = Row[T]{Index: (pageNum-1)*pageSize + i + 1, Item: item}
	}
	return TransformedData[T]{Data: rows, PageNum: pageNum, PageSize: pageSize, Total: p.Total}
}

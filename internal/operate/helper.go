package operate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gameops/console/common/utils"
	"gameops/console/internal/table"
)

// Mode 抽屉的操作类型
type Mode string

const (
	ModeAdd  Mode = "add"
	ModeEdit Mode = "edit"
)

// MaxTreeDepth 扁平化行树的最大深度
const MaxTreeDepth = 64

var (
	ErrRowNotFound = errors.New("operate: row not found")
	ErrTreeTooDeep = errors.New("operate: row tree too deep")
)

// Notifier 用户消息出口
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Options 操作助手配置
type Options[T any] struct {
	// Rows 当前表格数据
	Rows func() []T
	// Refresh 删除成功后的重新拉取
	Refresh func(ctx context.Context) error
	// Children 取子行，nil 表示平铺数据
	Children func(T) []T
	// MatchID 按通用 id 或实体 key 匹配
	MatchID  func(row T, id string) bool
	Notifier Notifier
	Text     table.Text
}

// Helper 表格的增删改交互状态
type Helper[T any] struct {
	opts Options[T]

	mu             sync.Mutex
	drawerVisible  bool
	mode           Mode
	editing        *T
	checkedRowKeys []string
}

// State 对外快照
type State[T any] struct {
	DrawerVisible  bool     `json:"drawerVisible"`
	OperateType    Mode     `json:"operateType"`
	EditingData    *T       `json:"editingData"`
	CheckedRowKeys []string `json:"checkedRowKeys"`
}

func NewHelper[T any](opts Options[T]) *Helper[T] {
	if opts.Text == nil {
		opts.Text = func(key string, _ map[string]any) string { return key }
	}
	return &Helper[T]{opts: opts, mode: ModeAdd, checkedRowKeys: []string{}}
}

// HandleAdd 以给定默认值打开新增抽屉
func (h *Helper[T]) HandleAdd(initial *T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mode = ModeAdd
	h.editing = initial
	h.drawerVisible = true
}

// HandleEdit 打开编辑抽屉，detail 为空时从表格数据中按 id 查找并深拷贝
func (h *Helper[T]) HandleEdit(id string, detail *T) error {
	if detail != nil {
		h.mu.Lock()
		h.mode = ModeEdit
		h.editing = detail
		h.drawerVisible = true
		h.mu.Unlock()
		return nil
	}

	var rows []T
	if h.opts.Rows != nil {
		rows = h.opts.Rows()
	}
	flat, err := Flatten(rows, h.opts.Children)
	if err != nil {
		return err
	}
	var found *T
	for i := range flat {
		if h.opts.MatchID(flat[i], id) {
			cloned := Clone(flat[i])
			found = &cloned
			break
		}
	}

	h.mu.Lock()
	h.mode = ModeEdit
	h.editing = found
	h.drawerVisible = true
	h.mu.Unlock()
	if found == nil {
		return fmt.Errorf("%w: %s", ErrRowNotFound, id)
	}
	return nil
}

// Flatten 深度优先展开行树，父行在前
func Flatten[T any](rows []T, children func(T) []T) ([]T, error) {
	if children == nil {
		return append([]T(nil), rows...), nil
	}
	type frame struct {
		row   T
		depth int
	}
	stack := make([]frame, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		stack = append(stack, frame{row: rows[i], depth: 1})
	}
	out := make([]T, 0, len(rows))
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.depth > MaxTreeDepth {
			return nil, ErrTreeTooDeep
		}
		out = append(out, top.row)
		kids := children(top.row)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{row: kids[i], depth: top.depth + 1})
		}
	}
	return out, nil
}

// Clone 深拷贝一行，编辑缓冲与表格数据互不影响
func Clone[T any](src T) T {
	return utils.DeepClone(src)
}

// OnDeleted 单条删除完成，成功时提示并刷新
func (h *Helper[T]) OnDeleted(ctx context.Context, r *Result) (bool, error) {
	return h.afterDelete(ctx, r, "删除", false)
}

// OnBatchDeleted 批量删除完成，成功时额外清空勾选
func (h *Helper[T]) OnBatchDeleted(ctx context.Context, r *Result) (bool, error) {
	return h.afterDelete(ctx, r, "批量删除", true)
}

func (h *Helper[T]) afterDelete(ctx context.Context, r *Result, operation string, clearChecked bool) (bool, error) {
	if failed, msg := CheckResult(r, operation); failed {
		h.notifyError(msg)
		return false, nil
	}
	if h.opts.Notifier != nil {
		h.opts.Notifier.Success(h.opts.Text("common.deleteSuccess", nil))
	}
	if clearChecked {
		h.mu.Lock()
		h.checkedRowKeys = []string{}
		h.mu.Unlock()
	}
	if h.opts.Refresh == nil {
		return true, nil
	}
	if err := h.opts.Refresh(ctx); err != nil {
		h.notifyError(fmt.Sprintf("%s失败: %v", operation, err))
		return true, err
	}
	return true, nil
}

func (h *Helper[T]) notifyError(msg string) {
	if h.opts.Notifier != nil {
		h.opts.Notifier.Error(msg)
	}
}

// OpenDrawer 打开抽屉
func (h *Helper[T]) OpenDrawer() {
	h.mu.Lock()
	h.drawerVisible = true
	h.mu.Unlock()
}

// CloseDrawer 关闭抽屉
func (h *Helper[T]) CloseDrawer() {
	h.mu.Lock()
	h.drawerVisible = false
	h.mu.Unlock()
}

// SetCheckedRowKeys 更新勾选行
func (h *Helper[T]) SetCheckedRowKeys(keys []string) {
	h.mu.Lock()
	h.checkedRowKeys = append([]string{}, keys...)
	h.mu.Unlock()
}

// CheckedRowKeys 当前勾选行
func (h *Helper[T]) CheckedRowKeys() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string{}, h.checkedRowKeys...)
}

// State 当前状态
func (h *Helper[T]) State() State[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return State[T]{
		DrawerVisible:  h.drawerVisible,
		OperateType:    h.mode,
		EditingData:    h.editing,
		CheckedRowKeys: append([]string{}, h.checkedRowKeys...),
	}
}

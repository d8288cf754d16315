package table

import (
	"bytes"
	"strconv"

	"gameops/console/common/utils"

	"github.com/bytedance/sonic/ast"
)

// Row 带序号的行，序列化时 index 与行字段平铺，行自身的 index 字段被序号覆盖
type Row[T any] struct {
	Index int
	Item  T
}

func (r Row[T]) MarshalJSON() ([]byte, error) {
	body, err := utils.Marshal(r.Item)
	if err != nil {
		return nil, err
	}
	idx := strconv.Itoa(r.Index)
	body = bytes.TrimSpace(body)
	if len(body) < 2 || body[0] != '{' {
		out := make([]byte, 0, len(body)+len(idx)+20)
		out = append(out, `{"index":`...)
		out = append(out, idx...)
		out = append(out, `,"item":`...)
		out = append(out, body...)
		return append(out, '}'), nil
	}

	if bytes.Contains(body, []byte(`"index"`)) {
		node := ast.NewRaw(string(body))
		if _, err := node.Unset("index"); err != nil {
			return nil, err
		}
		if body, err = node.MarshalJSON(); err != nil {
			return nil, err
		}
	}
	inner := bytes.TrimSpace(body[1 : len(body)-1])
	out := make([]byte, 0, len(body)+len(idx)+10)
	out = append(out, `{"index":`...)
	out = append(out, idx...)
	if len(inner) > 0 {
		out = append(out, ',')
		out = append(out, inner...)
	}
	return append(out, '}'), nil
}

// Items 去掉序号
func Items[T any](rows []Row[T]) []T {
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = r.Item
	}
	return out
}

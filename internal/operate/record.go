package operate

import (
	"fmt"

	"gameops/console/internal/table"
)

// RecordChildren 取 Record 行的 children
func RecordChildren(r table.Record) []table.Record {
	return childrenOf(r, "children")
}

// RecordChildrenBy 子行字段不叫 children 时使用
func RecordChildrenBy(key string) func(table.Record) []table.Record {
	if key == "" {
		key = "children"
	}
	return func(r table.Record) []table.Record { return childrenOf(r, key) }
}

func childrenOf(r table.Record, key string) []table.Record {
	list, ok := r[key].([]any)
	if !ok {
		if typed, ok := r[key].([]table.Record); ok {
			return typed
		}
		return nil
	}
	out := make([]table.Record, 0, len(list))
	for _, it := range list {
		if child, ok := it.(map[string]any); ok {
			out = append(out, child)
		}
	}
	return out
}

// MatchRecordID 先比较实体 key，再比较通用 id
func MatchRecordID(idKey string) func(table.Record, string) bool {
	return func(r table.Record, id string) bool {
		if idKey != "" {
			if v, ok := r[idKey]; ok && v != nil && formatID(v) == id {
				return true
			}
		}
		v, ok := r["id"]
		return ok && v != nil && formatID(v) == id
	}
}

func formatID(v any) string {
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprint(v)
}

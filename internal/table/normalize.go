package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gameops/console/common/utils"
)

// Shape 列表响应的形态
type Shape int

const (
	ShapeRows Shape = iota + 1
	ShapeData
	ShapeArray
)

func (s Shape) String() string {
	switch s {
	case ShapeRows:
		return "rows"
	case ShapeData:
		return "data"
	case ShapeArray:
		return "array"
	default:
		return "unknown"
	}
}

// NormalizePage 把上游列表响应归一成 Page
//
// 支持三种形态，按顺序匹配：含 rows 数组的对象、含 data 数组的对象、裸数组。
// data 为对象时再向内找一层。total 缺省时取行数。
func NormalizePage(body []byte) (Page[Record], error) {
	var raw any
	if err := utils.Unmarshal(body, &raw); err != nil {
		return Page[Record]{}, fmt.Errorf("%w: %v", ErrUnrecognizedShape, err)
	}
	return normalizeValue(raw, 0)
}

func normalizeValue(raw any, depth int) (Page[Record], error) {
	switch v := raw.(type) {
	case []any:
		items, err := toRecords(v)
		if err != nil {
			return Page[Record]{}, err
		}
		return Page[Record]{Items: items, Total: len(items), Shape: ShapeArray}, nil
	case map[string]any:
		if rows, ok := v["rows"].([]any); ok {
			return objectPage(v, rows, ShapeRows)
		}
		if data, ok := v["data"].([]any); ok {
			return objectPage(v, data, ShapeData)
		}
		if inner, ok := v["data"].(map[string]any); ok && depth == 0 {
			return normalizeValue(inner, depth+1)
		}
	}
	return Page[Record]{}, fmt.Errorf("%w: %T", ErrUnrecognizedShape, raw)
}

func objectPage(obj map[string]any, list []any, shape Shape) (Page[Record], error) {
	items, err := toRecords(list)
	if err != nil {
		return Page[Record]{}, err
	}
	total, ok := toInt(obj["total"])
	if !ok {
		total = len(items)
	}
	current, _ := toInt(obj["current"])
	size, _ := toInt(obj["size"])
	return Page[Record]{Items: items, Current: current, Size: size, Total: total, Shape: shape}, nil
}

func toRecords(list []any) ([]Record, error) {
	items := make([]Record, 0, len(list))
	for i, it := range list {
		rec, ok := it.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: row %d is %T", ErrUnrecognizedShape, i, it)
		}
		items = append(items, rec)
	}
	return items, nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}

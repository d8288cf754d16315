package utils

import (
	"reflect"

	"github.com/duke-git/lancet/v2/convertor"
	"github.com/duke-git/lancet/v2/slice"
)

// SliceContains 是否包含元素
func SliceContains[T comparable](s []T, item T) bool {
	return slice.Contain(s, item)
}

// SliceContainsAny 两个切片是否有交集
func SliceContainsAny[T comparable](s []T, items []T) bool {
	return len(slice.Intersection(s, items)) > 0
}

// IsNil 是否为 nil，包括带类型的空指针、空 map、空切片
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// DeepClone 深拷贝任意值，嵌套的 map、切片与指针都会复制
func DeepClone[T any](v T) T {
	return convertor.DeepClone(v)
}

// DeepCloneMap 深拷贝 map，值为 nil 的键保留
func DeepCloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	return DeepClone(src)
}

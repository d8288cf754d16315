package utils

import (
	"github.com/bytedance/sonic"
)

// Marshal 序列化
func Marshal(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

// MarshalString 序列化为字符串
func MarshalString(v any) (string, error) {
	return sonic.MarshalString(v)
}

// Unmarshal 反序列化
func Unmarshal(data []byte, v any) error {
	return sonic.Unmarshal(data, v)
}

// UnmarshalString 从字符串反序列化
func UnmarshalString(s string, v any) error {
	return sonic.UnmarshalString(s, v)
}

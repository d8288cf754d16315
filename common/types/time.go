package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// DateTimeFormat 控制台统一的时间格式
const DateTimeFormat = "2006-01-02 15:04:05"

var parseLayouts = []string{DateTimeFormat, time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// DateTime JSON 输出为 "yyyy-MM-dd HH:mm:ss"，零值输出 null
type DateTime time.Time

// Now 当前时间
func Now() DateTime {
	return DateTime(time.Now())
}

func (t DateTime) Time() time.Time { return time.Time(t) }

func (t DateTime) IsZero() bool { return time.Time(t).IsZero() }

func (t DateTime) String() string {
	return time.Time(t).Format(DateTimeFormat)
}

func (t DateTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.String() + `"`), nil
}

func (t *DateTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*t = DateTime{}
		return nil
	}
	for _, layout := range parseLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			*t = DateTime(parsed)
			return nil
		}
	}
	return fmt.Errorf("无法解析时间: %s", s)
}

// Value 写库
func (t DateTime) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return time.Time(t), nil
}

// Scan 读库
func (t *DateTime) Scan(v any) error {
	switch val := v.(type) {
	case nil:
		*t = DateTime{}
	case time.Time:
		*t = DateTime(val)
	case []byte:
		return t.UnmarshalJSON(val)
	case string:
		return t.UnmarshalJSON([]byte(val))
	default:
		return fmt.Errorf("无法将 %T 转换为 DateTime", v)
	}
	return nil
}

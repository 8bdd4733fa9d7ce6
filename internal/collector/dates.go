package collector

import (
	"strings"
	"time"
)

// Format 描述某个来源已知的时间戳格式，每个来源通常只有一两种
type Format int

const (
	// RFC822Zone 形如 "Mon, 02 Jan 2006 15:04:05 GMT"（Google RSS / CNBC）
	RFC822Zone Format = iota
	// RFC822Offset 形如 "Mon, 02 Jan 2006 15:04:05 +0900"（Yahoo / Naver）
	RFC822Offset
	// RFC822Any 先按数字时区再按时区名尝试
	RFC822Any
	// ISODateTime 形如 "2006-01-02T15:04:05Z"（NewsAPI）
	ISODateTime
	// DottedDateTime 形如 "2006.01.02 15:04"（Naver 金融列表页）
	DottedDateTime
)

// 日使用 "2" 而不是 "02"，兼容 "Mon, 2 Jan 2006" 这种单数字日期
var formatLayouts = map[Format][]string{
	RFC822Zone:     {"Mon, 2 Jan 2006 15:04:05 MST"},
	RFC822Offset:   {"Mon, 2 Jan 2006 15:04:05 -0700"},
	RFC822Any:      {"Mon, 2 Jan 2006 15:04:05 -0700", "Mon, 2 Jan 2006 15:04:05 MST"},
	ISODateTime:    {time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04:05.999999999Z07:00"},
	DottedDateTime: {"2006.01.02 15:04", "2006.01.02"},
}

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04"
)

// ParseTime 按来源格式解析，不做时区换算
func ParseTime(raw string, f Format) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range formatLayouts[f] {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDate 解析成功返回 out 布局（DateLayout 或 DateTimeLayout），
// 失败时原样返回 raw，调用方把它当作降级而不是错误
func NormalizeDate(raw string, f Format, out string) string {
	t, ok := ParseTime(raw, f)
	if !ok {
		return raw
	}
	if out == "" {
		out = DateLayout
	}
	return t.Format(out)
}

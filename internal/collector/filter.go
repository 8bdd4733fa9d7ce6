package collector

import (
	"strings"
	"time"
)

const defaultRecencyWindow = 3 * 24 * time.Hour

// RecencyFilter Naver 专用：标题必须包含查询词，且发布时间在窗口内
type RecencyFilter struct {
	Window time.Duration
	Now    func() time.Time
}

func NewRecencyFilter() *RecencyFilter {
	return &RecencyFilter{Window: defaultRecencyWindow, Now: time.Now}
}

// Accept 判断候选条目是否保留。pubDate 为带时区的 RFC822 原始字符串；
// 无法解析的时间视为过期（fail-closed）
func (f *RecencyFilter) Accept(title, pubDate, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" || !strings.Contains(title, query) {
		return false
	}

	published, ok := ParseTime(pubDate, RFC822Offset)
	if !ok {
		return false
	}

	window := f.Window
	if window <= 0 {
		window = defaultRecencyWindow
	}
	nowFn := f.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	// now 换算到与发布时间相同的时区，避免偏移量不一致
	now := nowFn().In(published.Location())
	return now.Sub(published) <= window
}

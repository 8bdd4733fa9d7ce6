package collector

import (
	"context"
	"strings"
)

// Source 标识新闻来源，只用于排序与配额，不写入表格
type Source string

const (
	SourceCNBC         Source = "CNBC"
	SourceGoogleRSS    Source = "GoogleRSS"
	SourceYahoo        Source = "Yahoo"
	SourceNewsAPI      Source = "NewsAPI"
	SourceNaver        Source = "Naver"
	SourceNaverFinance Source = "NaverFinance"
	SourceFinnhub      Source = "Finnhub"
)

// Language 区分本地语言（韩语）与外语，外语条目需要翻译
type Language int

const (
	LanguageNative Language = iota
	LanguageForeign
)

func (l Language) String() string {
	if l == LanguageForeign {
		return "foreign"
	}
	return "native"
}

// NewsItem 统一采集后的基础结构。
// PublishDate 为规范化日期（YYYY-MM-DD 或 YYYY-MM-DD HH:MM），解析失败时保留原始字符串
type NewsItem struct {
	Title       string
	Link        string
	Snippet     string
	PublishDate string
	Publisher   string // 媒体名称，可为空，仅用于日志与预览
	Language    Language
	Source      Source
}

// FetchResult 采集结果：成功时 Items 有效，失败时 Err 非空
type FetchResult struct {
	Items []NewsItem
	Err   error
}

func Success(items []NewsItem) FetchResult {
	if items == nil {
		items = []NewsItem{}
	}
	return FetchResult{Items: items}
}

func Failure(err error) FetchResult {
	return FetchResult{Err: err}
}

func (r FetchResult) Failed() bool {
	return r.Err != nil
}

// Collector 抽象每一个数据源。
// Fetch 不会向上抛错：网络、解析失败都以 Failure 返回，调用方按空结果处理
type Collector interface {
	Source() Source
	Fetch(ctx context.Context, query string, limit int) FetchResult
}

// keepValid 丢弃标题或链接为空的条目，并截断到 limit
func keepValid(items []NewsItem, limit int) []NewsItem {
	out := make([]NewsItem, 0, len(items))
	for _, it := range items {
		if limit > 0 && len(out) >= limit {
			break
		}
		it.Title = strings.TrimSpace(it.Title)
		it.Link = strings.TrimSpace(it.Link)
		if it.Title == "" || it.Link == "" {
			continue
		}
		out = append(out, it)
	}
	return out
}

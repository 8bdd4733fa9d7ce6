package collector

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/LJTian/StockNewsHub/internal/apperr"
)

const (
	naverNewsSearchURL = "https://openapi.naver.com/v1/search/news.json"
	naverDisplay       = 10
	// 无论请求多少条，Naver 最多返回 3 条
	naverMaxItems = 3
)

// NaverCollector 调用 Naver 新闻搜索 API（按相关度排序），
// 并只保留标题包含查询词、且 3 天内发布的新闻
type NaverCollector struct {
	clientID     string
	clientSecret string
	endpoint     string
	client       *resty.Client
	filter       *RecencyFilter
	opts         Options
}

func NewNaverCollector(clientID, clientSecret string, opts Options) *NaverCollector {
	client := resty.NewWithClient(opts.client()).
		SetHeader("User-Agent", opts.userAgent()).
		SetHeader("X-Naver-Client-Id", clientID).
		SetHeader("X-Naver-Client-Secret", clientSecret)
	return &NaverCollector{
		clientID:     clientID,
		clientSecret: clientSecret,
		endpoint:     opts.endpoint(naverNewsSearchURL),
		client:       client,
		filter:       NewRecencyFilter(),
		opts:         opts,
	}
}

// WithFilter 替换默认过滤器（测试中注入固定时钟）
func (n *NaverCollector) WithFilter(f *RecencyFilter) *NaverCollector {
	n.filter = f
	return n
}

func (n *NaverCollector) Source() Source {
	return SourceNaver
}

type naverItem struct {
	Title        string `json:"title"`
	OriginalLink string `json:"originallink"`
	Link         string `json:"link"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
}

type naverResponse struct {
	Items        []naverItem `json:"items"`
	ErrorMessage string      `json:"errorMessage"`
	ErrorCode    string      `json:"errorCode"`
}

var naverTagReplacer = strings.NewReplacer("<b>", "", "</b>", "")

func cleanNaverText(s string) string {
	return strings.TrimSpace(html.UnescapeString(naverTagReplacer.Replace(s)))
}

func (n *NaverCollector) Fetch(ctx context.Context, query string, limit int) FetchResult {
	if limit <= 0 {
		return Success(nil)
	}
	if limit > naverMaxItems {
		limit = naverMaxItems
	}
	log := n.opts.logger()
	const op = "naver: fetch"

	if n.clientID == "" || n.clientSecret == "" {
		return logFailure(log, SourceNaver, query, apperr.Network(op, fmt.Errorf("client id/secret not configured")))
	}
	if err := n.opts.wait(ctx, op); err != nil {
		return logFailure(log, SourceNaver, query, err)
	}

	var payload, failure naverResponse
	resp, err := n.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":   query,
			"display": fmt.Sprint(naverDisplay),
			"start":   "1",
			"sort":    "sim",
		}).
		SetResult(&payload).
		SetError(&failure).
		Get(n.endpoint)
	if err != nil {
		return logFailure(log, SourceNaver, query, apperr.Network(op, err))
	}
	if resp.IsError() {
		return logFailure(log, SourceNaver, query,
			apperr.Network(op, fmt.Errorf("status %d: %s", resp.StatusCode(), failure.ErrorMessage)))
	}

	items := make([]NewsItem, 0, naverMaxItems)
	var rejected int
	for _, it := range payload.Items {
		title := cleanNaverText(it.Title)
		if !n.filter.Accept(title, it.PubDate, query) {
			rejected++
			continue
		}
		link := it.OriginalLink
		if link == "" {
			link = it.Link
		}
		items = append(items, NewsItem{
			Title:       title,
			Link:        link,
			Snippet:     cleanNaverText(it.Description),
			PublishDate: NormalizeDate(it.PubDate, RFC822Offset, DateLayout),
			Language:    LanguageNative,
			Source:      SourceNaver,
		})
	}

	out := keepValid(items, limit)
	log.Debug("fetch done", "collector", "naver", "query", query, "parsed", len(payload.Items), "rejected", rejected, "kept", len(out))
	return Success(out)
}

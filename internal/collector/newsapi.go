package collector

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/LJTian/StockNewsHub/internal/apperr"
)

const (
	newsAPIEverythingURL = "https://newsapi.org/v2/everything"
	newsAPILookback      = 7 * 24 * time.Hour
)

// NewsAPICollector 通过 NewsAPI /v2/everything 按相关度搜索英文新闻
type NewsAPICollector struct {
	apiKey   string
	endpoint string
	client   *resty.Client
	opts     Options
	now      func() time.Time
}

func NewNewsAPICollector(apiKey string, opts Options) *NewsAPICollector {
	client := resty.NewWithClient(opts.client()).
		SetHeader("User-Agent", opts.userAgent())
	return &NewsAPICollector{
		apiKey:   apiKey,
		endpoint: opts.endpoint(newsAPIEverythingURL),
		client:   client,
		opts:     opts,
		now:      time.Now,
	}
}

func (n *NewsAPICollector) Source() Source {
	return SourceNewsAPI
}

type newsAPIArticle struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Content     string `json:"content"`
	PublishedAt string `json:"publishedAt"`
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

func (n *NewsAPICollector) Fetch(ctx context.Context, query string, limit int) FetchResult {
	if limit <= 0 {
		return Success(nil)
	}
	log := n.opts.logger()
	const op = "newsapi: fetch"

	if n.apiKey == "" {
		return logFailure(log, SourceNewsAPI, query, apperr.Network(op, fmt.Errorf("api key not configured")))
	}
	if err := n.opts.wait(ctx, op); err != nil {
		return logFailure(log, SourceNewsAPI, query, err)
	}

	end := n.now()
	start := end.Add(-newsAPILookback)

	var payload, failure newsAPIResponse
	resp, err := n.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":        strings.TrimSpace(query),
			"apiKey":   n.apiKey,
			"language": "en",
			"sortBy":   "relevancy",
			"pageSize": strconv.Itoa(limit),
			"from":     start.Format(DateLayout),
			"to":       end.Format(DateLayout),
		}).
		SetResult(&payload).
		SetError(&failure).
		Get(n.endpoint)
	if err != nil {
		return logFailure(log, SourceNewsAPI, query, apperr.Network(op, err))
	}
	if resp.IsError() {
		return logFailure(log, SourceNewsAPI, query,
			apperr.Network(op, fmt.Errorf("status %d: %s", resp.StatusCode(), failure.Message)))
	}
	if payload.Status != "ok" {
		return logFailure(log, SourceNewsAPI, query,
			apperr.Parse(op, fmt.Errorf("api status %q: %s", payload.Status, payload.Message)))
	}

	items := make([]NewsItem, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		snippet := a.Description
		if snippet == "" {
			snippet = a.Content
		}
		items = append(items, NewsItem{
			Title:       a.Title,
			Link:        a.URL,
			Snippet:     snippet,
			PublishDate: NormalizeDate(a.PublishedAt, ISODateTime, DateLayout),
			Language:    LanguageForeign,
			Source:      SourceNewsAPI,
		})
	}
	return Success(keepValid(items, limit))
}

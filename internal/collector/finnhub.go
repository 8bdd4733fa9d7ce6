package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"

	"github.com/LJTian/StockNewsHub/internal/apperr"
)

const finnhubLookback = 7 * 24 * time.Hour

// FinnhubCollector 通过 Finnhub company-news 接口按 ticker 拉取近 7 天新闻
type FinnhubCollector struct {
	apiKey string
	client *finnhub.DefaultApiService
	opts   Options
	now    func() time.Time
}

func NewFinnhubCollector(apiKey string, opts Options) *FinnhubCollector {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	cfg.UserAgent = opts.userAgent()
	cfg.HTTPClient = opts.client()
	if opts.Endpoint != "" {
		cfg.Servers = finnhub.ServerConfigurations{{URL: opts.Endpoint}}
	}
	return &FinnhubCollector{
		apiKey: apiKey,
		client: finnhub.NewAPIClient(cfg).DefaultApi,
		opts:   opts,
		now:    time.Now,
	}
}

func (f *FinnhubCollector) Source() Source {
	return SourceFinnhub
}

func (f *FinnhubCollector) Fetch(ctx context.Context, query string, limit int) FetchResult {
	if limit <= 0 {
		return Success(nil)
	}
	log := f.opts.logger()
	const op = "finnhub: fetch"

	if f.apiKey == "" {
		return logFailure(log, SourceFinnhub, query, apperr.Network(op, fmt.Errorf("api key not configured")))
	}
	if err := f.opts.wait(ctx, op); err != nil {
		return logFailure(log, SourceFinnhub, query, err)
	}

	end := f.now()
	start := end.Add(-finnhubLookback)
	res, _, err := f.client.CompanyNews(ctx).
		Symbol(strings.ToUpper(strings.TrimSpace(query))).
		From(start.Format(DateLayout)).
		To(end.Format(DateLayout)).
		Execute()
	if err != nil {
		return logFailure(log, SourceFinnhub, query, apperr.Network(op, err))
	}

	items := make([]NewsItem, 0, len(res))
	for _, news := range res {
		// 没有发布时间的条目无法给出日期，直接丢弃
		if news.Datetime == nil {
			continue
		}
		var it NewsItem
		it.Language = LanguageForeign
		it.Source = SourceFinnhub
		if news.Headline != nil {
			it.Title = *news.Headline
		}
		if news.Url != nil {
			it.Link = *news.Url
		}
		if news.Summary != nil {
			it.Snippet = *news.Summary
		}
		if news.Source != nil {
			it.Publisher = *news.Source
		}
		it.PublishDate = time.Unix(*news.Datetime, 0).UTC().Format(DateLayout)
		items = append(items, it)
	}
	return Success(keepValid(items, limit))
}

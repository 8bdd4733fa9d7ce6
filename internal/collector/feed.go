package collector

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/LJTian/StockNewsHub/internal/apperr"
)

// FeedCollector 基于 RSS 的采集器：拉取 feed → gofeed 解析 → 规范化日期。
// CNBC / Google RSS / Yahoo 只是 URL、日期格式和语言不同
type FeedCollector struct {
	source   Source
	name     string
	endpoint string
	format   Format
	layout   string
	language Language
	opts     Options
}

func (c *FeedCollector) Source() Source {
	return c.source
}

// Name 便于日志区分同一来源的不同变体（如 google_rss_ko / google_rss_en）
func (c *FeedCollector) Name() string {
	return c.name
}

func (c *FeedCollector) feedURL(query string) string {
	if !strings.Contains(c.endpoint, "%s") {
		return c.endpoint
	}
	return fmt.Sprintf(c.endpoint, url.QueryEscape(strings.TrimSpace(query)))
}

func (c *FeedCollector) Fetch(ctx context.Context, query string, limit int) FetchResult {
	if limit <= 0 {
		return Success(nil)
	}
	log := c.opts.logger()
	op := c.name + ": fetch"

	resp, err := c.opts.get(ctx, op, c.feedURL(query))
	if err != nil {
		return logFailure(log, c.source, query, err)
	}
	defer resp.Body.Close()

	feed, err := gofeed.NewParser().Parse(limitBody(resp.Body))
	if err != nil {
		return logFailure(log, c.source, query, apperr.Parse(c.name+": parse feed", err))
	}

	items := make([]NewsItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		items = append(items, NewsItem{
			Title:       it.Title,
			Link:        it.Link,
			Snippet:     strings.TrimSpace(it.Description),
			PublishDate: NormalizeDate(it.Published, c.format, c.layout),
			Language:    c.language,
			Source:      c.source,
		})
	}

	out := keepValid(items, limit)
	log.Debug("fetch done",
		"collector", c.name,
		"query", query,
		"parsed", len(feed.Items),
		"kept", len(out),
	)
	return Success(out)
}

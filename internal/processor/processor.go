package processor

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/LJTian/StockNewsHub/internal/collector"
)

// DefaultMaxSlots 表格模板每行 6 组 [标题, 链接, 日期]
const DefaultMaxSlots = 6

// Step 采集计划中的一项：某个采集器及其配额
type Step struct {
	Name      string
	Collector collector.Collector
	Quota     int
}

// Plan 按优先级排列的采集计划
type Plan []Step

// Aggregator 对一个 subject 依次调用计划中的采集器，按计划顺序拼接结果
type Aggregator struct {
	plan       Plan
	concurrent bool
	log        *slog.Logger
}

type Option func(*Aggregator)

// WithConcurrency 并发调用各采集器；结果仍按计划顺序排列
func WithConcurrency(on bool) Option {
	return func(a *Aggregator) { a.concurrent = on }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) { a.log = l }
}

func NewAggregator(plan Plan, opts ...Option) *Aggregator {
	a := &Aggregator{plan: plan, log: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Aggregator) Plan() Plan {
	return a.plan
}

// Aggregate 返回按计划优先级排列的新闻。
// 采集器返回少于配额（包括失败）时不重试，也不把空位让给其他采集器
func (a *Aggregator) Aggregate(ctx context.Context, subject string) []collector.NewsItem {
	results := make([][]collector.NewsItem, len(a.plan))

	fetch := func(i int) {
		step := a.plan[i]
		if step.Collector == nil || step.Quota <= 0 {
			return
		}
		res := step.Collector.Fetch(ctx, subject, step.Quota)
		if res.Failed() {
			a.log.Info("collector failed, slot left empty",
				"subject", subject, "collector", step.Name, "err", res.Err)
			return
		}
		items := res.Items
		if len(items) > step.Quota {
			items = items[:step.Quota]
		}
		results[i] = items
	}

	if a.concurrent {
		// 每个 goroutine 只写自己的下标，Fetch 不返回 error，Wait 只用于同步
		var g errgroup.Group
		for i := range a.plan {
			i := i
			g.Go(func() error {
				fetch(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range a.plan {
			fetch(i)
		}
	}

	var out []collector.NewsItem
	for _, items := range results {
		out = append(out, items...)
	}
	a.log.Debug("aggregated", "subject", subject, "items", len(out))
	return out
}

// ToRow 把一个 subject 的新闻映射为定长行：subject + maxSlots 组 [标题, 链接, 日期]。
// 不足补空串，超出部分丢弃，长度恒为 1+3*maxSlots
func ToRow(subject string, items []collector.NewsItem, maxSlots int) []string {
	if maxSlots < 0 {
		maxSlots = 0
	}
	row := make([]string, 0, RowWidth(maxSlots))
	row = append(row, subject)
	for i := 0; i < maxSlots; i++ {
		if i < len(items) {
			it := items[i]
			row = append(row, it.Title, it.Link, it.PublishDate)
			continue
		}
		row = append(row, "", "", "")
	}
	return row
}

func RowWidth(maxSlots int) int {
	return 1 + 3*maxSlots
}

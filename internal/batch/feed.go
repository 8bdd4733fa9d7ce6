package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/LJTian/StockNewsHub/internal/collector"
	"github.com/LJTian/StockNewsHub/internal/config"
	"github.com/LJTian/StockNewsHub/internal/sheet"
	"github.com/LJTian/StockNewsHub/internal/translate"
)

const (
	originalCols   = 4 // 标题、描述、时间、链接
	translatedCols = 2 // 标题译文、描述译文
)

// FeedRunner 固定 feed 批次：原文块与译文块各占 Count 行，一次 WriteBatch 写出
type FeedRunner struct {
	phase config.FeedPhase
	store sheet.Store
	feed  collector.Collector
	title translate.Transformer
	desc  translate.Transformer
	lock  Locker
	log   *slog.Logger
}

// NewFeedRunner title 用于标题；desc 用于描述（开启摘要时传入摘要器）
func NewFeedRunner(phase config.FeedPhase, store sheet.Store, feed collector.Collector,
	title, desc translate.Transformer, opts ...Option) *FeedRunner {
	o := buildOptions(opts)
	if desc == nil {
		desc = title
	}
	return &FeedRunner{
		phase: phase,
		store: store,
		feed:  feed,
		title: title,
		desc:  desc,
		lock:  o.lock,
		log:   o.log,
	}
}

func (r *FeedRunner) Name() string {
	return config.PhaseCNBC
}

// ranges 原文块与译文块的区域；起始格由配置给出
func (r *FeedRunner) ranges() (sheet.Range, sheet.Range, error) {
	orig, err := sheet.Block(r.phase.OriginalStart, originalCols, r.phase.Count)
	if err != nil {
		return sheet.Range{}, sheet.Range{}, err
	}
	tr, err := sheet.Block(r.phase.TranslatedStart, translatedCols, r.phase.Count)
	if err != nil {
		return sheet.Range{}, sheet.Range{}, err
	}
	return orig, tr, nil
}

func (r *FeedRunner) Run(ctx context.Context) (Report, error) {
	runID := uuid.NewString()
	log := r.log.With("phase", config.PhaseCNBC, "run_id", runID)
	report := newReport(config.PhaseCNBC, runID)
	report.Subjects = 1
	finish := func(err error) (Report, error) {
		report.FinishedAt = time.Now()
		return report, err
	}

	origRange, trRange, err := r.ranges()
	if err != nil {
		return finish(fmt.Errorf("cnbc: %w", err))
	}

	if r.lock != nil {
		release, err := r.lock.Acquire(ctx, r.phase.Worksheet)
		if err != nil {
			return finish(fmt.Errorf("cnbc: acquire run lock: %w", err))
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				log.Warn("release run lock failed", "err", err)
			}
		}()
	}

	res := r.feed.Fetch(ctx, "", r.phase.Count)
	if res.Failed() {
		log.Warn("feed fetch failed", "err", res.Err)
		report.skip(config.PhaseCNBC, "fetch failed: "+res.Err.Error())
		return finish(nil)
	}
	if len(res.Items) == 0 {
		log.Info("feed is empty, nothing written")
		report.skip(config.PhaseCNBC, reasonNoNews)
		return finish(nil)
	}
	report.Items = len(res.Items)

	original := make([][]string, r.phase.Count)
	translated := make([][]string, r.phase.Count)
	for i := range original {
		original[i] = make([]string, originalCols)
		translated[i] = make([]string, translatedCols)
	}

	for i, it := range res.Items {
		if i >= r.phase.Count {
			break
		}
		if ctx.Err() != nil {
			log.Warn("run cancelled before write", "translated", i)
			report.skip(config.PhaseCNBC, reasonCancelled)
			return finish(ctx.Err())
		}
		original[i] = []string{it.Title, it.Snippet, it.PublishDate, it.Link}
		translated[i] = []string{
			r.title.Transform(ctx, it.Title),
			r.desc.Transform(ctx, it.Snippet),
		}
		log.Debug("item translated", "index", i, "title", it.Title)
	}

	err = r.store.WriteBatch(ctx, []sheet.Update{
		{Range: origRange, Rows: original},
		{Range: trRange, Rows: translated},
	})
	report.Writes++
	if err != nil {
		log.Error("write failed", "err", err)
		report.skip(config.PhaseCNBC, "write failed: "+err.Error())
		return finish(err)
	}
	report.Written = append(report.Written, config.PhaseCNBC)
	log.Info("run finished", "items", len(res.Items), "rows", r.phase.Count)
	return finish(nil)
}

package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/LJTian/StockNewsHub/internal/config"
	"github.com/LJTian/StockNewsHub/internal/processor"
	"github.com/LJTian/StockNewsHub/internal/sheet"
)

const (
	lookupColumn = 1
	headerRows   = 1
	// 取消后仍把已采集的行写出去，但最多等这么久
	flushGrace = 30 * time.Second
)

// SubjectRunner 逐个 subject 采集、映射成定长行，再按批写入工作表
type SubjectRunner struct {
	phase   config.Phase
	store   sheet.Store
	agg     *processor.Aggregator
	limiter *rate.Limiter
	lock    Locker
	log     *slog.Logger
}

type Option func(*runnerOptions)

type runnerOptions struct {
	lock Locker
	log  *slog.Logger
}

func WithLocker(l Locker) Option {
	return func(o *runnerOptions) { o.lock = l }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *runnerOptions) { o.log = l }
}

func buildOptions(opts []Option) runnerOptions {
	o := runnerOptions{log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func NewSubjectRunner(phase config.Phase, store sheet.Store, agg *processor.Aggregator, opts ...Option) *SubjectRunner {
	o := buildOptions(opts)
	limit := rate.Inf
	if phase.SubjectDelay > 0 {
		limit = rate.Every(phase.SubjectDelay)
	}
	if phase.BatchSize < 1 {
		phase.BatchSize = 1
	}
	return &SubjectRunner{
		phase:   phase,
		store:   store,
		agg:     agg,
		limiter: rate.NewLimiter(limit, 1),
		lock:    o.lock,
		log:     o.log,
	}
}

func (r *SubjectRunner) Name() string {
	return r.phase.Name
}

// Run 处理 subjects；为 nil 时从工作表 A 列读取（跳过表头与空白）。
// 单个 subject 的失败只记入 Report.Skipped；返回的 error 只来自写入失败（或无法开始运行）
func (r *SubjectRunner) Run(ctx context.Context, subjects []string) (Report, error) {
	runID := uuid.NewString()
	log := r.log.With("phase", r.phase.Name, "run_id", runID)
	report := newReport(r.phase.Name, runID)
	finish := func(err error) (Report, error) {
		report.FinishedAt = time.Now()
		return report, err
	}

	if r.lock != nil {
		release, err := r.lock.Acquire(ctx, r.phase.Worksheet)
		if err != nil {
			return finish(fmt.Errorf("%s: acquire run lock: %w", r.phase.Name, err))
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				log.Warn("release run lock failed", "err", err)
			}
		}()
	}

	column, err := r.store.ReadColumn(ctx, lookupColumn)
	if err != nil {
		return finish(fmt.Errorf("%s: read lookup column: %w", r.phase.Name, err))
	}
	if subjects == nil {
		subjects = sheet.Subjects(column, headerRows)
	}
	report.Subjects = len(subjects)
	log.Info("run started", "subjects", len(subjects), "batch_size", r.phase.BatchSize)

	width := processor.RowWidth(r.phase.MaxSlots)
	var (
		pending     []sheet.Update
		pendingSubj []string
		writeErrs   []error
	)

	flush := func(ctx context.Context) {
		if len(pending) == 0 {
			return
		}
		var err error
		if len(pending) == 1 {
			err = r.store.WriteRange(ctx, pending[0].Range, pending[0].Rows)
		} else {
			err = r.store.WriteBatch(ctx, pending)
		}
		report.Writes++
		if err != nil {
			log.Error("write failed", "subjects", len(pendingSubj), "err", err)
			writeErrs = append(writeErrs, err)
			for _, s := range pendingSubj {
				report.skip(s, "write failed: "+err.Error())
			}
		} else {
			report.Written = append(report.Written, pendingSubj...)
			log.Info("rows written", "subjects", len(pendingSubj))
		}
		pending, pendingSubj = nil, nil
	}

	for i, subject := range subjects {
		if err := r.limiter.Wait(ctx); err != nil {
			for _, s := range subjects[i:] {
				report.skip(s, reasonCancelled)
			}
			log.Warn("run cancelled", "remaining", len(subjects)-i)
			break
		}

		row, err := sheet.Resolve(subject, column)
		if err != nil {
			log.Warn("subject skipped", "subject", subject, "err", err)
			report.skip(subject, reasonNotFound)
			continue
		}

		items := r.agg.Aggregate(ctx, subject)
		// 采集途中被取消：结果不完整，不能用空行覆盖表格中原有内容
		if ctx.Err() != nil {
			for _, s := range subjects[i:] {
				report.skip(s, reasonCancelled)
			}
			log.Warn("run cancelled while collecting", "subject", subject, "remaining", len(subjects)-i)
			break
		}
		report.Items += len(items)
		if len(items) == 0 && r.phase.SkipEmpty {
			log.Info("subject skipped", "subject", subject, "reason", reasonNoNews)
			report.skip(subject, reasonNoNews)
			continue
		}

		// 首列写回单元格原文，只在匹配时去空白
		values := processor.ToRow(column[row-1], items, r.phase.MaxSlots)
		pending = append(pending, sheet.Update{Range: sheet.RowRange(row, width), Rows: [][]string{values}})
		pendingSubj = append(pendingSubj, subject)
		log.Debug("row mapped", "subject", subject, "row", row, "items", len(items))

		if len(pending) >= r.phase.BatchSize {
			flush(ctx)
			if i < len(subjects)-1 {
				_ = sleep(ctx, r.phase.BatchDelay)
			}
		}
	}

	if ctx.Err() != nil {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushGrace)
		defer cancel()
		flush(fctx)
	} else {
		flush(ctx)
	}

	log.Info("run finished",
		"written", len(report.Written),
		"skipped", len(report.Skipped),
		"writes", report.Writes,
		"write_errors", len(writeErrs),
	)
	return finish(errors.Join(writeErrs...))
}

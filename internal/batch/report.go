package batch

import (
	"context"
	"time"
)

// Skip 被跳过的 subject 及原因
type Skip struct {
	Subject string `json:"subject"`
	Reason  string `json:"reason"`
}

// Report 一次批次运行的结果，供命令行与 API 展示
type Report struct {
	Phase      string    `json:"phase"`
	RunID      string    `json:"runId"`
	Subjects   int       `json:"subjects"`
	Written    []string  `json:"written"`
	Skipped    []Skip    `json:"skipped"`
	Writes     int       `json:"writes"`
	Items      int       `json:"items"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

func newReport(phase, runID string) Report {
	return Report{
		Phase:     phase,
		RunID:     runID,
		Written:   []string{},
		Skipped:   []Skip{},
		StartedAt: time.Now(),
	}
}

func (r *Report) skip(subject, reason string) {
	r.Skipped = append(r.Skipped, Skip{Subject: subject, Reason: reason})
}

// Locker 防止同一工作表被并发写入；storage.RunLock 实现了它
type Locker interface {
	Acquire(ctx context.Context, name string) (func(context.Context) error, error)
}

const (
	reasonNotFound  = "not found in lookup column"
	reasonNoNews    = "no news collected"
	reasonCancelled = "run cancelled"
)

// sleep 可被 ctx 打断的等待
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

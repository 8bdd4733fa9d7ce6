package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/LJTian/StockNewsHub/internal/collector"
	"github.com/LJTian/StockNewsHub/internal/processor"
)

type PreviewItem struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Date      string `json:"date"`
	Publisher string `json:"publisher,omitempty"`
	Source    string `json:"source"`
}

// Preview 一个 subject 的采集结果与映射后的行，不写入工作表
type Preview struct {
	Phase   string        `json:"phase"`
	Subject string        `json:"subject"`
	Items   []PreviewItem `json:"items"`
	Row     []string      `json:"row"`
}

func (a *App) Preview(ctx context.Context, phaseName, subject string) (Preview, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return Preview{}, errors.New("subject is required")
	}
	phase, ok := a.cfg.Phase(phaseName)
	if !ok {
		return Preview{}, fmt.Errorf("%w: %q", ErrUnknownPhase, phaseName)
	}
	agg, err := a.aggregator(phase)
	if err != nil {
		return Preview{}, err
	}

	items := agg.Aggregate(ctx, subject)
	return Preview{
		Phase:   phase.Name,
		Subject: subject,
		Items:   previewItems(items),
		Row:     processor.ToRow(subject, items, phase.MaxSlots),
	}, nil
}

func previewItems(items []collector.NewsItem) []PreviewItem {
	out := make([]PreviewItem, 0, len(items))
	for _, it := range items {
		out = append(out, PreviewItem{
			Title:     it.Title,
			Link:      it.Link,
			Date:      it.PublishDate,
			Publisher: it.Publisher,
			Source:    string(it.Source),
		})
	}
	return out
}

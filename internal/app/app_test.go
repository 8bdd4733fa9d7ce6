package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LJTian/StockNewsHub/internal/collector"
	"github.com/LJTian/StockNewsHub/internal/config"
	"github.com/LJTian/StockNewsHub/internal/logger"
	"github.com/LJTian/StockNewsHub/internal/storage"
	"github.com/LJTian/StockNewsHub/internal/translate"
)

type fixedCollector struct {
	source collector.Source
	n      int
}

func (c fixedCollector) Source() collector.Source { return c.source }

func (c fixedCollector) Fetch(_ context.Context, query string, limit int) collector.FetchResult {
	var items []collector.NewsItem
	for i := 0; i < c.n && i < limit; i++ {
		items = append(items, collector.NewsItem{
			Title:       fmt.Sprintf("%s %s %d", c.source, query, i),
			Link:        fmt.Sprintf("https://example.com/%s/%d", c.source, i),
			Snippet:     "snippet",
			PublishDate: "2025-10-14",
			Publisher:   "연합뉴스",
			Source:      c.source,
		})
	}
	return collector.Success(items)
}

func testConfig() *config.Config {
	return &config.Config{
		StoreBackend: config.BackendMemory,
		Translator:   config.TranslatorGoogle,
		HTTPTimeout:  time.Second,
		NaverRPS:     10,
		KR: config.Phase{
			Name: config.PhaseKR, Worksheet: "kr",
			Plan:     []config.PlanEntry{{Key: KeyNaver, Quota: 3}, {Key: KeyGoogleKO, Quota: 3}},
			MaxSlots: 6, BatchSize: 1, SkipEmpty: true,
		},
		Global: config.Phase{
			Name: config.PhaseGlobal, Worksheet: "global",
			Plan:     []config.PlanEntry{{Key: KeyYahoo, Quota: 3}, {Key: "bloomberg", Quota: 1}},
			MaxSlots: 6, BatchSize: 50,
		},
		CNBC: config.FeedPhase{Worksheet: "cnbc", Count: 2, OriginalStart: "A2", TranslatedStart: "A5", Summarize: true},
	}
}

func testRegistry() map[string]collector.Collector {
	return map[string]collector.Collector{
		KeyNaver:    fixedCollector{source: collector.SourceNaver, n: 2},
		KeyGoogleKO: fixedCollector{source: collector.SourceGoogleRSS, n: 5},
		KeyYahoo:    fixedCollector{source: collector.SourceYahoo, n: 1},
		KeyCNBC:     fixedCollector{source: collector.SourceCNBC, n: 1},
	}
}

func newTestApp(t *testing.T, cfg *config.Config, opts ...Option) *App {
	t.Helper()
	translator := translate.Func(func(_ context.Context, s string) string { return "T:" + s })
	summarizer := translate.Func(func(_ context.Context, s string) string { return "S:" + s })
	opts = append([]Option{WithCollectors(testRegistry()), WithTranslators(translator, summarizer)}, opts...)
	a, err := New(context.Background(), cfg, logger.Discard(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestNewRegistryHasEveryPlanKey(t *testing.T) {
	reg := NewRegistry(testConfig(), logger.Discard())
	for _, key := range []string{KeyNaver, KeyNaverFinance, KeyGoogleKO, KeyGoogleEN, KeyYahoo, KeyNewsAPI, KeyFinnhub, KeyCNBC} {
		require.Contains(t, reg, key)
	}
	require.Equal(t, collector.SourceFinnhub, reg[KeyFinnhub].Source())
}

func TestBuildPlan(t *testing.T) {
	plan, err := BuildPlan([]config.PlanEntry{{Key: KeyGoogleKO, Quota: 2}, {Key: KeyNaver, Quota: 3}}, testRegistry())
	require.NoError(t, err)
	require.Len(t, plan, 2)
	require.Equal(t, KeyGoogleKO, plan[0].Name)
	require.Equal(t, 3, plan[1].Quota)

	_, err = BuildPlan([]config.PlanEntry{{Key: "bloomberg", Quota: 1}}, testRegistry())
	require.ErrorContains(t, err, "bloomberg")
}

func TestWebTransformersSkipKorean(t *testing.T) {
	tr, sum := NewTransformers(testConfig(), logger.Discard())
	require.Equal(t, "삼성전자 주가 상승", tr.Transform(context.Background(), " 삼성전자 주가 상승 "))
	require.Equal(t, "삼성전자 주가 상승", sum.Transform(context.Background(), "삼성전자 주가 상승"))
}

func TestRunDomesticPhase(t *testing.T) {
	store := storage.NewMemoryStore([]string{"종목", "삼성전자"})
	a := newTestApp(t, testConfig(), WithStore("kr", store))

	report, err := a.Run(context.Background(), config.PhaseKR, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"삼성전자"}, report.Written)

	row := store.Row(2)
	require.Len(t, row, 19)
	require.Equal(t, "Naver 삼성전자 0", row[1])
	require.Equal(t, "GoogleRSS 삼성전자 0", row[7])
	require.Equal(t, "GoogleRSS 삼성전자 2", row[13])
	require.Equal(t, "2025-10-14", row[15])
	require.Equal(t, []string{"", "", ""}, row[16:])
}

func TestRunCNBCUsesSummarizer(t *testing.T) {
	a := newTestApp(t, testConfig())

	report, err := a.Run(context.Background(), config.PhaseCNBC, nil)
	require.NoError(t, err)
	require.Equal(t, 1, report.Items)

	store, ok := a.Store("cnbc").(*storage.MemoryStore)
	require.True(t, ok)
	require.Equal(t, []string{"CNBC  0", "snippet", "2025-10-14", "https://example.com/CNBC/0"}, store.Row(2))
	require.Equal(t, []string{"T:CNBC  0", "S:snippet"}, store.Row(5))
	require.Equal(t, []string{"", ""}, store.Row(6))
}

func TestRunErrors(t *testing.T) {
	a := newTestApp(t, testConfig())

	_, err := a.Run(context.Background(), "weekly", nil)
	require.ErrorIs(t, err, ErrUnknownPhase)

	_, err = a.Run(context.Background(), config.PhaseGlobal, nil)
	require.ErrorContains(t, err, "unknown collector")
}

func TestPreview(t *testing.T) {
	cfg := testConfig()
	cfg.KR.MaxSlots = 2
	a := newTestApp(t, cfg)

	p, err := a.Preview(context.Background(), config.PhaseKR, " 카카오 ")
	require.NoError(t, err)
	require.Equal(t, "카카오", p.Subject)
	require.Len(t, p.Items, 5)
	require.Equal(t, "연합뉴스", p.Items[0].Publisher)
	require.Equal(t, "Naver", p.Items[0].Source)
	require.Len(t, p.Row, 7)
	require.Equal(t, "Naver 카카오 1", p.Row[4])

	_, err = a.Preview(context.Background(), config.PhaseCNBC, "x")
	require.ErrorIs(t, err, ErrUnknownPhase)
	_, err = a.Preview(context.Background(), config.PhaseKR, " ")
	require.Error(t, err)
}

func TestRunPhasesContinuesAfterFailure(t *testing.T) {
	cfg := testConfig()
	cfg.PhaseDelay = time.Millisecond
	store := storage.NewMemoryStore([]string{"종목", "카카오"})
	a := newTestApp(t, cfg, WithStore("kr", store))

	err := a.RunPhases(context.Background(), config.PhaseGlobal, config.PhaseKR, config.PhaseCNBC)
	require.ErrorContains(t, err, "bloomberg")
	require.Equal(t, "카카오", store.Row(2)[0])
	require.Equal(t, 1, a.Store("cnbc").(*storage.MemoryStore).Writes())
}

func TestRunPhasesStopsWhenCancelled(t *testing.T) {
	cfg := testConfig()
	cfg.PhaseDelay = time.Hour
	a := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := a.RunPhases(ctx, config.PhaseCNBC, config.PhaseKR)
	require.ErrorIs(t, err, context.Canceled)
}

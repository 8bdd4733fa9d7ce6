package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"google.golang.org/api/sheets/v4"
	"gorm.io/gorm"

	"github.com/LJTian/StockNewsHub/internal/batch"
	"github.com/LJTian/StockNewsHub/internal/collector"
	"github.com/LJTian/StockNewsHub/internal/config"
	"github.com/LJTian/StockNewsHub/internal/processor"
	"github.com/LJTian/StockNewsHub/internal/sheet"
	"github.com/LJTian/StockNewsHub/internal/storage"
	"github.com/LJTian/StockNewsHub/internal/translate"
)

// 采集计划中可用的采集器名
const (
	KeyNaver        = "naver"
	KeyNaverFinance = "naver_finance"
	KeyGoogleKO     = "google_ko"
	KeyGoogleEN     = "google_en"
	KeyYahoo        = "yahoo"
	KeyNewsAPI      = "newsapi"
	KeyFinnhub      = "finnhub"
	KeyCNBC         = "cnbc"
)

var ErrUnknownPhase = errors.New("unknown phase")

// App 按配置组装存储、采集器、翻译器与各批次 runner，cmd 与 API 共用
type App struct {
	cfg *config.Config
	log *slog.Logger

	collectors map[string]collector.Collector
	translator translate.Transformer
	summarizer translate.Transformer
	lock       *storage.RunLock
	rdb        *redis.Client
	db         *gorm.DB
	sheetsSvc  *sheets.Service

	mu     sync.Mutex
	stores map[string]sheet.Store
}

type Option func(*App)

// WithCollectors 替换采集器注册表（测试用）
func WithCollectors(reg map[string]collector.Collector) Option {
	return func(a *App) { a.collectors = reg }
}

// WithStore 为某个工作表指定存储，跳过后端初始化
func WithStore(worksheet string, store sheet.Store) Option {
	return func(a *App) { a.stores[worksheet] = store }
}

func WithTranslators(translator, summarizer translate.Transformer) Option {
	return func(a *App) {
		a.translator = translator
		a.summarizer = summarizer
	}
}

func New(ctx context.Context, cfg *config.Config, log *slog.Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	a := &App{
		cfg:    cfg,
		log:    log,
		stores: make(map[string]sheet.Store),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.collectors == nil {
		a.collectors = NewRegistry(cfg, log)
	}
	if a.translator == nil {
		a.translator, a.summarizer = NewTransformers(cfg, log)
	}

	if cfg.RedisAddr != "" {
		a.rdb = storage.OpenRedis(cfg.RedisAddr, log)
		a.lock = storage.NewRunLock(a.rdb, cfg.RunLockTTL)
	}

	switch cfg.StoreBackend {
	case config.BackendSheets:
		svc, err := storage.NewSheetsService(ctx, cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("init sheets service: %w", err)
		}
		a.sheetsSvc = svc
	case config.BackendPostgres:
		db, err := storage.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.db = db
	}
	return a, nil
}

func (a *App) Config() *config.Config {
	return a.cfg
}

// Store 每个工作表一个实例，首次使用时创建
func (a *App) Store(worksheet string) sheet.Store {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s, ok := a.stores[worksheet]; ok {
		return s
	}
	var s sheet.Store
	switch {
	case a.sheetsSvc != nil:
		s = storage.NewSheetsStore(a.sheetsSvc, a.cfg.SheetID, worksheet)
	case a.db != nil:
		s = storage.NewPostgresStore(a.db, worksheet)
	default:
		s = storage.NewMemoryStore(nil)
	}
	a.stores[worksheet] = s
	return s
}

// NewRegistry 按配置创建全部采集器；缺少密钥的采集器仍会注册，调用时返回 Network 失败
func NewRegistry(cfg *config.Config, log *slog.Logger) map[string]collector.Collector {
	client := &http.Client{Timeout: cfg.HTTPTimeout}
	opts := func(name string) collector.Options {
		return collector.Options{
			HTTPClient: client,
			UserAgent:  cfg.UserAgent,
			Logger:     log.With("collector", name),
		}
	}

	naverOpts := opts(KeyNaver)
	if cfg.NaverRPS > 0 {
		naverOpts.Limiter = rate.NewLimiter(rate.Limit(cfg.NaverRPS), 1)
	}
	cnbcOpts := opts(KeyCNBC)
	cnbcOpts.Endpoint = cfg.CNBC.FeedURL

	return map[string]collector.Collector{
		KeyNaver:        collector.NewNaverCollector(cfg.NaverClientID, cfg.NaverClientSecret, naverOpts),
		KeyNaverFinance: collector.NewNaverFinanceCollector(opts(KeyNaverFinance)),
		KeyGoogleKO:     collector.NewGoogleRSSKoreanCollector(opts(KeyGoogleKO)),
		KeyGoogleEN:     collector.NewGoogleRSSEnglishCollector(opts(KeyGoogleEN)),
		KeyYahoo:        collector.NewYahooCollector(opts(KeyYahoo)),
		KeyNewsAPI:      collector.NewNewsAPICollector(cfg.NewsAPIKey, opts(KeyNewsAPI)),
		KeyFinnhub:      collector.NewFinnhubCollector(cfg.FinnhubAPIKey, opts(KeyFinnhub)),
		KeyCNBC:         collector.NewCNBCCollector(cnbcOpts),
	}
}

// NewTransformers 返回翻译器与摘要器，两者都会跳过已是韩文的文本。
// 网页翻译不支持摘要，此时摘要器退回翻译器
func NewTransformers(cfg *config.Config, log *slog.Logger) (translate.Transformer, translate.Transformer) {
	log = log.With("component", "translate")
	switch cfg.Translator {
	case config.TranslatorClaude:
		return translate.SkipKorean(translate.NewClaude(cfg.ClaudeAPIKey, cfg.ClaudeModel, translate.TaskTranslate, log)),
			translate.SkipKorean(translate.NewClaude(cfg.ClaudeAPIKey, cfg.ClaudeModel, translate.TaskSummarize, log))
	case config.TranslatorOpenAI:
		return translate.SkipKorean(translate.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, translate.TaskTranslate, log)),
			translate.SkipKorean(translate.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, translate.TaskSummarize, log))
	default:
		web := translate.SkipKorean(translate.NewWeb(log))
		return web, web
	}
}

// BuildPlan 把配置中的计划映射到采集器；未注册的名称是配置错误
func BuildPlan(entries []config.PlanEntry, reg map[string]collector.Collector) (processor.Plan, error) {
	plan := make(processor.Plan, 0, len(entries))
	for _, e := range entries {
		c, ok := reg[e.Key]
		if !ok {
			return nil, fmt.Errorf("plan: unknown collector %q", e.Key)
		}
		plan = append(plan, processor.Step{Name: e.Key, Collector: c, Quota: e.Quota})
	}
	return plan, nil
}

func (a *App) aggregator(phase config.Phase) (*processor.Aggregator, error) {
	plan, err := BuildPlan(phase.Plan, a.collectors)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", phase.Name, err)
	}
	return processor.NewAggregator(plan,
		processor.WithConcurrency(a.cfg.ConcurrentFetch),
		processor.WithLogger(a.log.With("phase", phase.Name)),
	), nil
}

func (a *App) runnerOptions() []batch.Option {
	opts := []batch.Option{batch.WithLogger(a.log)}
	if a.lock != nil {
		opts = append(opts, batch.WithLocker(a.lock))
	}
	return opts
}

// SubjectRunner kr 或 global
func (a *App) SubjectRunner(name string) (*batch.SubjectRunner, error) {
	phase, ok := a.cfg.Phase(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPhase, name)
	}
	agg, err := a.aggregator(phase)
	if err != nil {
		return nil, err
	}
	return batch.NewSubjectRunner(phase, a.Store(phase.Worksheet), agg, a.runnerOptions()...), nil
}

func (a *App) FeedRunner() (*batch.FeedRunner, error) {
	feed, ok := a.collectors[KeyCNBC]
	if !ok {
		return nil, fmt.Errorf("cnbc: collector %q not registered", KeyCNBC)
	}
	desc := a.translator
	if a.cfg.CNBC.Summarize && a.summarizer != nil {
		desc = a.summarizer
	}
	return batch.NewFeedRunner(a.cfg.CNBC, a.Store(a.cfg.CNBC.Worksheet), feed,
		a.translator, desc, a.runnerOptions()...), nil
}

// Run 执行一个批次；subjects 只对 kr/global 生效，为 nil 时读取工作表
func (a *App) Run(ctx context.Context, phase string, subjects []string) (batch.Report, error) {
	if phase == config.PhaseCNBC {
		r, err := a.FeedRunner()
		if err != nil {
			return batch.Report{Phase: phase}, err
		}
		return r.Run(ctx)
	}
	r, err := a.SubjectRunner(phase)
	if err != nil {
		return batch.Report{Phase: phase}, err
	}
	return r.Run(ctx, subjects)
}

// RunPhases 依次执行多个批次，之间等待 PhaseDelay；某个批次失败不影响后续批次
func (a *App) RunPhases(ctx context.Context, phases ...string) error {
	var errs []error
	for i, phase := range phases {
		if i > 0 {
			if err := sleep(ctx, a.cfg.PhaseDelay); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", phase, err))
				break
			}
		}
		report, err := a.Run(ctx, phase, nil)
		a.log.Info("phase finished",
			"phase", phase,
			"run_id", report.RunID,
			"written", len(report.Written),
			"skipped", len(report.Skipped),
			"writes", report.Writes,
			"elapsed", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond),
		)
		if err != nil {
			a.log.Error("phase failed", "phase", phase, "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

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

func (a *App) Close() error {
	var errs []error
	if a.rdb != nil {
		errs = append(errs, a.rdb.Close())
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/LJTian/StockNewsHub/internal/sheet"
)

const (
	PhaseKR     = "kr"
	PhaseGlobal = "global"
	PhaseCNBC   = "cnbc"
)

const (
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

const (
	TranslatorClaude = "claude"
	TranslatorOpenAI = "openai"
	TranslatorGoogle = "google"
)

// PlanEntry 采集计划中的一项，Key 对应采集器注册名（naver、yahoo ...）
type PlanEntry struct {
	Key   string
	Quota int
}

// Phase 按 subject 逐行写入的批次（国内 / 海外）
type Phase struct {
	Name         string
	Worksheet    string
	Plan         []PlanEntry
	MaxSlots     int
	BatchSize    int
	SubjectDelay time.Duration
	BatchDelay   time.Duration
	// SkipEmpty 为 true 时没有新闻的 subject 不写入
	SkipEmpty bool
}

// FeedPhase 固定 feed（CNBC）批次
type FeedPhase struct {
	Worksheet       string
	FeedURL         string
	Count           int
	OriginalStart   string
	TranslatedStart string
	Summarize       bool
}

type Config struct {
	AppPort string

	// 同时配置时 API 启用 Basic Auth（/health 除外）
	BasicAuthUser string
	BasicAuthPass string

	SheetID         string
	CredentialsFile string
	StoreBackend    string
	PostgresDSN     string
	RedisAddr       string
	RunLockTTL      time.Duration

	HTTPTimeout time.Duration
	UserAgent   string

	NaverClientID     string
	NaverClientSecret string
	NaverRPS          float64
	NewsAPIKey        string
	FinnhubAPIKey     string

	Translator   string
	ClaudeAPIKey string
	ClaudeModel  string
	OpenAIAPIKey string
	OpenAIModel  string

	PhaseDelay      time.Duration
	ConcurrentFetch bool

	KR     Phase
	Global Phase
	CNBC   FeedPhase
}

// Load 先读取 .env（不存在则忽略），再读环境变量并校验
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv 只读环境变量，不加载 .env
func FromEnv() (*Config, error) {
	var errs []error
	r := &reader{errs: &errs}

	cfg := &Config{
		AppPort:         getEnv("APP_PORT", "9000"),
		BasicAuthUser:   getEnv("APP_BASIC_USER", ""),
		BasicAuthPass:   getEnv("APP_BASIC_PASS", ""),
		SheetID:         getEnv("GOOGLE_SHEET_ID", ""),
		CredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "creds.json"),
		StoreBackend:    strings.ToLower(getEnv("STORE_BACKEND", BackendSheets)),
		PostgresDSN:     getEnv("POSTGRES_DSN", ""),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RunLockTTL:      r.getDuration("RUN_LOCK_TTL", 30*time.Minute),

		HTTPTimeout: r.getDuration("HTTP_TIMEOUT", 15*time.Second),
		UserAgent:   getEnv("HTTP_USER_AGENT", ""),

		NaverClientID:     getEnv("NAVER_CLIENT_ID", ""),
		NaverClientSecret: getEnv("NAVER_CLIENT_SECRET", ""),
		NaverRPS:          r.getFloat("NAVER_RPS", 10),
		NewsAPIKey:        getEnv("NEWSAPI_KEY", ""),
		FinnhubAPIKey:     getEnv("FINNHUB_API_KEY", ""),

		ClaudeAPIKey: getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:  getEnv("CLAUDE_MODEL", ""),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", ""),

		PhaseDelay:      r.getDuration("PHASE_DELAY", 2*time.Second),
		ConcurrentFetch: r.getBool("CONCURRENT_FETCH", false),

		KR: r.phase(PhaseKR, "KR", Phase{
			Worksheet:    "kr",
			Plan:         []PlanEntry{{"naver", 3}, {"google_ko", 3}},
			MaxSlots:     6,
			BatchSize:    1,
			SubjectDelay: time.Second,
			SkipEmpty:    true,
		}),
		Global: r.phase(PhaseGlobal, "GLOBAL", Phase{
			Worksheet:  "global",
			Plan:       []PlanEntry{{"yahoo", 3}, {"google_en", 2}, {"newsapi", 1}},
			MaxSlots:   6,
			BatchSize:  50,
			BatchDelay: 2 * time.Second,
		}),
		CNBC: FeedPhase{
			Worksheet:       getEnv("CNBC_WORKSHEET", "cnbc"),
			FeedURL:         getEnv("CNBC_FEED_URL", ""),
			Count:           r.getInt("CNBC_COUNT", 30),
			OriginalStart:   strings.ToUpper(getEnv("CNBC_ORIGINAL_START", "A2")),
			TranslatedStart: strings.ToUpper(getEnv("CNBC_TRANSLATED_START", "A34")),
			Summarize:       r.getBool("CNBC_SUMMARIZE", false),
		},
	}
	cfg.Translator = strings.ToLower(getEnv("TRANSLATOR", cfg.defaultTranslator()))

	errs = append(errs, cfg.validate()...)
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// defaultTranslator 有哪个 key 就用哪个，都没有时退回免费网页翻译
func (c *Config) defaultTranslator() string {
	switch {
	case c.ClaudeAPIKey != "":
		return TranslatorClaude
	case c.OpenAIAPIKey != "":
		return TranslatorOpenAI
	default:
		return TranslatorGoogle
	}
}

// Phase 按名称返回 subject 批次配置
func (c *Config) Phase(name string) (Phase, bool) {
	switch name {
	case PhaseKR:
		return c.KR, true
	case PhaseGlobal:
		return c.Global, true
	default:
		return Phase{}, false
	}
}

func (c *Config) validate() []error {
	var errs []error
	switch c.StoreBackend {
	case BackendSheets:
		if c.SheetID == "" {
			errs = append(errs, errors.New("GOOGLE_SHEET_ID is required for the sheets backend"))
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required for the postgres backend"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}

	switch c.Translator {
	case TranslatorClaude:
		if c.ClaudeAPIKey == "" {
			errs = append(errs, errors.New("CLAUDE_API_KEY is required for the claude translator"))
		}
	case TranslatorOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai translator"))
		}
	case TranslatorGoogle:
	default:
		errs = append(errs, fmt.Errorf("unknown TRANSLATOR %q", c.Translator))
	}

	for _, p := range []Phase{c.KR, c.Global} {
		if p.Worksheet == "" {
			errs = append(errs, fmt.Errorf("%s: worksheet is empty", p.Name))
		}
		if p.MaxSlots < 1 {
			errs = append(errs, fmt.Errorf("%s: max slots must be >= 1", p.Name))
		}
		if p.BatchSize < 1 {
			errs = append(errs, fmt.Errorf("%s: batch size must be >= 1", p.Name))
		}
	}

	if c.CNBC.Count < 1 {
		errs = append(errs, errors.New("CNBC_COUNT must be >= 1"))
	}
	for _, cell := range []string{c.CNBC.OriginalStart, c.CNBC.TranslatedStart} {
		if _, _, err := sheet.ParseCell(cell); err != nil {
			errs = append(errs, fmt.Errorf("cnbc: %w", err))
		}
	}
	if c.NaverRPS < 0 {
		errs = append(errs, errors.New("NAVER_RPS must not be negative"))
	}
	return errs
}

// ParsePlan 解析 "yahoo:3,google_en:2,newsapi:1"；顺序即优先级
func ParsePlan(raw string) ([]PlanEntry, error) {
	var out []PlanEntry
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, quota, ok := strings.Cut(part, ":")
		key = strings.ToLower(strings.TrimSpace(key))
		if !ok || key == "" {
			return nil, fmt.Errorf("plan entry %q: want key:quota", part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(quota))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("plan entry %q: quota must be a positive integer", part)
		}
		out = append(out, PlanEntry{Key: key, Quota: n})
	}
	if len(out) == 0 {
		return nil, errors.New("plan is empty")
	}
	return out, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// reader 解析带类型的变量，错误收集到 errs，最后统一返回
type reader struct {
	errs *[]error
}

func (r *reader) fail(key, raw string, err error) {
	*r.errs = append(*r.errs, fmt.Errorf("%s=%q: %w", key, raw, err))
}

func (r *reader) getInt(key string, def int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		r.fail(key, raw, err)
		return def
	}
	return n
}

func (r *reader) getFloat(key string, def float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.fail(key, raw, err)
		return def
	}
	return f
}

func (r *reader) getBool(key string, def bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		r.fail(key, raw, err)
		return def
	}
	return b
}

// duration 支持 "2s"、"500ms"，纯数字按秒处理
func (r *reader) getDuration(key string, def time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 {
			r.fail(key, raw, errors.New("negative duration"))
			return def
		}
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		if err == nil {
			err = errors.New("negative duration")
		}
		r.fail(key, raw, err)
		return def
	}
	return d
}

func (r *reader) phase(name, prefix string, def Phase) Phase {
	p := def
	p.Name = name
	p.Worksheet = getEnv(prefix+"_WORKSHEET", def.Worksheet)
	if raw := getEnv(prefix+"_PLAN", ""); raw != "" {
		plan, err := ParsePlan(raw)
		if err != nil {
			r.fail(prefix+"_PLAN", raw, err)
		} else {
			p.Plan = plan
		}
	}
	p.MaxSlots = r.getInt(prefix+"_MAX_SLOTS", def.MaxSlots)
	p.BatchSize = r.getInt(prefix+"_BATCH_SIZE", def.BatchSize)
	p.SubjectDelay = r.getDuration(prefix+"_SUBJECT_DELAY", def.SubjectDelay)
	p.BatchDelay = r.getDuration(prefix+"_BATCH_DELAY", def.BatchDelay)
	p.SkipEmpty = r.getBool(prefix+"_SKIP_EMPTY", def.SkipEmpty)
	return p
}

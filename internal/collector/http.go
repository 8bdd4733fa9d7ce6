package collector

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/LJTian/StockNewsHub/internal/apperr"
)

const (
	defaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	defaultClientTimeout = 15 * time.Second
	maxResponseBytes     = 2 << 20 // 2MB，防止超大响应
)

// Options 各采集器共用的外部依赖；Endpoint 为空时使用该来源的默认地址
type Options struct {
	HTTPClient *http.Client
	UserAgent  string
	// Limiter 可选：针对单个外部 API 的令牌桶限速
	Limiter  *rate.Limiter
	Logger   *slog.Logger
	Endpoint string
}

func (o Options) client() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return &http.Client{Timeout: defaultClientTimeout}
}

func (o Options) userAgent() string {
	if o.UserAgent != "" {
		return o.UserAgent
	}
	return defaultUserAgent
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o Options) endpoint(def string) string {
	if o.Endpoint != "" {
		return o.Endpoint
	}
	return def
}

func (o Options) wait(ctx context.Context, op string) error {
	if o.Limiter == nil {
		return nil
	}
	if err := o.Limiter.Wait(ctx); err != nil {
		return apperr.Network(op, err)
	}
	return nil
}

// get 发起 GET 请求，非 200 视为网络失败；调用方负责关闭 Body
func (o Options) get(ctx context.Context, op, rawURL string) (*http.Response, error) {
	if err := o.wait(ctx, op); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperr.Network(op, err)
	}
	req.Header.Set("User-Agent", o.userAgent())

	resp, err := o.client().Do(req)
	if err != nil {
		return nil, apperr.Network(op, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, apperr.Network(op, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	return resp, nil
}

func limitBody(r io.Reader) io.Reader {
	return io.LimitReader(r, maxResponseBytes)
}

// logFailure 在采集器边界记录失败并返回 Failure
func logFailure(log *slog.Logger, source Source, query string, err error) FetchResult {
	log.Warn("fetch failed",
		slog.String("source", string(source)),
		slog.String("query", query),
		slog.String("kind", apperr.KindOf(err).String()),
		slog.Any("err", err),
	)
	return Failure(err)
}

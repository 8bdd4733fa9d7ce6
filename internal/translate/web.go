package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	googleGTXURL = "https://translate.googleapis.com/translate_a/single"
	myMemoryURL  = "https://api.mymemory.translated.net/get"

	webMaxInputRunes = 500
	webClientTimeout = 20 * time.Second
)

// Web 免密钥翻译：先 Google Translate 公开接口（client=gtx），失败再 MyMemory。
// 只支持翻译，目标语言固定为韩语
type Web struct {
	client      *resty.Client
	gtxURL      string
	myMemoryURL string
	log         *slog.Logger
}

type WebOption func(*Web)

// WithEndpoints 替换两个接口地址（测试用）
func WithEndpoints(gtx, myMemory string) WebOption {
	return func(w *Web) {
		w.gtxURL = gtx
		w.myMemoryURL = myMemory
	}
}

func WithHTTPClient(c *http.Client) WebOption {
	return func(w *Web) {
		w.client = resty.NewWithClient(c)
	}
}

func NewWeb(log *slog.Logger, opts ...WebOption) *Web {
	if log == nil {
		log = slog.Default()
	}
	w := &Web{
		client:      resty.New().SetTimeout(webClientTimeout),
		gtxURL:      googleGTXURL,
		myMemoryURL: myMemoryURL,
		log:         log,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.client.SetHeader("User-Agent", "Mozilla/5.0")
	return w
}

func (w *Web) Transform(ctx context.Context, text string) string {
	text = clip(text, webMaxInputRunes)
	if text == "" {
		return ""
	}

	out, err := w.viaGoogle(ctx, text)
	if err == nil && out != "" {
		return out
	}
	if err != nil {
		w.log.Debug("translate (google-gtx) failed, trying mymemory", "err", err)
	}

	out, err = w.viaMyMemory(ctx, text)
	if err != nil {
		return logFailure(w.log, "web", TaskTranslate, err)
	}
	if out == "" {
		return logFailure(w.log, "web", TaskTranslate, fmt.Errorf("empty translation"))
	}
	return out
}

// viaGoogle 响应格式: [[["译文","原文",...],...],...]
func (w *Web) viaGoogle(ctx context.Context, text string) (string, error) {
	resp, err := w.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client": "gtx",
			"sl":     "auto",
			"tl":     "ko",
			"dt":     "t",
			"q":      text,
		}).
		Get(w.gtxURL)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("status %d", resp.StatusCode())
	}

	var raw []any
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(raw) == 0 {
		return "", nil
	}
	outer, ok := raw[0].([]any)
	if !ok {
		return "", nil
	}
	var sb strings.Builder
	for _, seg := range outer {
		pair, ok := seg.([]any)
		if !ok || len(pair) < 1 {
			continue
		}
		if s, ok := pair[0].(string); ok {
			sb.WriteString(s)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus any `json:"responseStatus"`
}

func (w *Web) viaMyMemory(ctx context.Context, text string) (string, error) {
	var out myMemoryResponse
	resp, err := w.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"langpair": sourceLang(text) + "|ko",
			"q":        text,
		}).
		SetResult(&out).
		Get(w.myMemoryURL)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("status %d", resp.StatusCode())
	}
	return strings.TrimSpace(out.ResponseData.TranslatedText), nil
}

// sourceLang MyMemory 不支持 auto，含假名按日语处理，其余按英语
func sourceLang(s string) string {
	for _, r := range s {
		if r >= 0x3040 && r <= 0x309f || r >= 0x30a0 && r <= 0x30ff {
			return "ja"
		}
	}
	return "en"
}

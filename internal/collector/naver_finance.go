package collector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"golang.org/x/text/encoding/korean"

	"github.com/LJTian/StockNewsHub/internal/apperr"
)

const (
	naverFinanceNewsURL  = "https://finance.naver.com/item/news_news.naver"
	naverFinanceBaseURL  = "https://finance.naver.com"
	naverFinanceTimeout  = 10 * time.Second
	naverFinanceMaxItems = 20
)

var stockCodePattern = regexp.MustCompile(`^\d{6}$`)

// NaverFinanceCollector 抓取 Naver 金融个股新闻列表（table.type5），查询词必须是 6 位股票代码
type NaverFinanceCollector struct {
	endpoint string
	opts     Options
}

func NewNaverFinanceCollector(opts Options) *NaverFinanceCollector {
	return &NaverFinanceCollector{
		endpoint: opts.endpoint(naverFinanceNewsURL),
		opts:     opts,
	}
}

func (n *NaverFinanceCollector) Source() Source {
	return SourceNaverFinance
}

func (n *NaverFinanceCollector) Fetch(ctx context.Context, query string, limit int) FetchResult {
	if limit <= 0 {
		return Success(nil)
	}
	log := n.opts.logger()
	const op = "naver_finance: fetch"

	code := strings.TrimSpace(query)
	if !stockCodePattern.MatchString(code) {
		return logFailure(log, SourceNaverFinance, query, apperr.Parse(op, fmt.Errorf("%q is not a 6-digit stock code", query)))
	}
	if err := n.opts.wait(ctx, op); err != nil {
		return logFailure(log, SourceNaverFinance, query, err)
	}

	c := colly.NewCollector(
		colly.UserAgent(n.opts.userAgent()),
	)
	c.SetRequestTimeout(naverFinanceTimeout)
	if n.opts.HTTPClient != nil && n.opts.HTTPClient.Transport != nil {
		c.WithTransport(n.opts.HTTPClient.Transport)
	}
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Referer", naverFinanceBaseURL+"/item/news.naver?code="+code)
	})

	var (
		items    []NewsItem
		parseErr error
	)
	c.OnResponse(func(r *colly.Response) {
		doc, err := goquery.NewDocumentFromReader(decodeKoreanBody(r.Body))
		if err != nil {
			parseErr = apperr.Parse("naver_finance: parse html", err)
			return
		}
		items = parseNaverFinanceTable(doc)
	})

	// colly 请求不感知 ctx，只能在发起前检查一次，单次请求由 SetRequestTimeout 兜底
	if err := ctx.Err(); err != nil {
		return logFailure(log, SourceNaverFinance, query, apperr.Network(op, err))
	}
	params := url.Values{"code": {code}, "page": {"1"}}
	if err := c.Visit(n.endpoint + "?" + params.Encode()); err != nil {
		return logFailure(log, SourceNaverFinance, query, apperr.Network(op, err))
	}
	if parseErr != nil {
		return logFailure(log, SourceNaverFinance, query, parseErr)
	}

	if len(items) == 0 {
		log.Info("naver_finance: got 0 items", "code", code)
	}
	return Success(keepValid(items, limit))
}

// decodeKoreanBody Naver 金融页面是 EUC-KR；colly 只在响应头声明 charset 时转码，
// 其余情况按字节是否为合法 UTF-8 判断是否需要解码
func decodeKoreanBody(body []byte) io.Reader {
	if utf8.Valid(body) {
		return bytes.NewReader(body)
	}
	return korean.EUCKR.NewDecoder().Reader(bytes.NewReader(body))
}

func parseNaverFinanceTable(doc *goquery.Document) []NewsItem {
	out := make([]NewsItem, 0, naverFinanceMaxItems)
	doc.Find("table.type5 tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if len(out) >= naverFinanceMaxItems {
			return false
		}
		// 表头与分隔行没有 td.title
		link := row.Find("td.title a").First()
		if link.Length() == 0 {
			return true
		}
		title := strings.TrimSpace(link.Text())
		href, ok := link.Attr("href")
		if title == "" || !ok {
			return true
		}
		href = strings.TrimSpace(href)
		if !strings.HasPrefix(href, "http") {
			href = naverFinanceBaseURL + href
		}

		press := strings.TrimSpace(row.Find("td:nth-child(2)").Text())
		rawDate := strings.TrimSpace(row.Find("td:nth-child(3)").Text())

		out = append(out, NewsItem{
			Title:       title,
			Link:        href,
			PublishDate: NormalizeDate(rawDate, DottedDateTime, DateLayout),
			Publisher:   press,
			Language:    LanguageNative,
			Source:      SourceNaverFinance,
		})
		return true
	})
	return out
}

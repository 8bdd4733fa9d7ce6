package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"

	"github.com/LJTian/StockNewsHub/internal/apperr"
)

const naverFinancePage = `<html><body>
<table class="type5">
  <thead><tr><th>제목</th><th>정보제공</th><th>날짜</th></tr></thead>
  <tbody>
    <tr class="first">
      <td class="title"><a href="/item/news_read.naver?article_id=1&office_id=001&code=005930">삼성전자, 3분기 실적 발표</a></td>
      <td class="info">연합뉴스</td>
      <td class="date">2025.10.14 16:20</td>
    </tr>
    <tr><td colspan="3" class="hr"></td></tr>
    <tr>
      <td class="title"><a href="https://news.example.kr/abs">외부 링크 기사</a></td>
      <td class="info">한국경제</td>
      <td class="date">2025.10.13</td>
    </tr>
    <tr>
      <td class="title"><a href="/item/news_read.naver?article_id=3">날짜 미상</a></td>
      <td class="info">매일경제</td>
      <td class="date">어제</td>
    </tr>
  </tbody>
</table>
</body></html>`

func newNaverFinanceServer(t *testing.T, body []byte) (*httptest.Server, *http.Request) {
	t.Helper()
	last := &http.Request{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*last = *r.Clone(context.Background())
		// 不声明 charset，由采集器自行识别编码
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, last
}

func TestNaverFinanceCollectorParsesUTF8(t *testing.T) {
	srv, last := newNaverFinanceServer(t, []byte(naverFinancePage))
	c := NewNaverFinanceCollector(testOptions(srv.URL + "/item/news_news.naver"))

	res := c.Fetch(context.Background(), "005930", 5)
	require.False(t, res.Failed())
	require.Len(t, res.Items, 3)

	require.Equal(t, "005930", last.URL.Query().Get("code"))
	require.Equal(t, "1", last.URL.Query().Get("page"))
	require.Contains(t, last.Header.Get("Referer"), "code=005930")

	first := res.Items[0]
	require.Equal(t, "삼성전자, 3분기 실적 발표", first.Title)
	require.Equal(t, "https://finance.naver.com/item/news_read.naver?article_id=1&office_id=001&code=005930", first.Link)
	require.Equal(t, "연합뉴스", first.Publisher)
	require.Equal(t, "2025-10-14", first.PublishDate)
	require.Equal(t, SourceNaverFinance, first.Source)
	require.Equal(t, LanguageNative, first.Language)

	require.Equal(t, "https://news.example.kr/abs", res.Items[1].Link)
	require.Equal(t, "2025-10-13", res.Items[1].PublishDate)
	require.Equal(t, "어제", res.Items[2].PublishDate)
}

func TestNaverFinanceCollectorDecodesEUCKR(t *testing.T) {
	encoded, err := korean.EUCKR.NewEncoder().Bytes([]byte(naverFinancePage))
	require.NoError(t, err)

	srv, _ := newNaverFinanceServer(t, encoded)
	res := NewNaverFinanceCollector(testOptions(srv.URL)).Fetch(context.Background(), "005930", 1)
	require.False(t, res.Failed())
	require.Len(t, res.Items, 1)
	require.Equal(t, "삼성전자, 3분기 실적 발표", res.Items[0].Title)
	require.Equal(t, "연합뉴스", res.Items[0].Publisher)
}

func TestNaverFinanceCollectorRejectsNonCode(t *testing.T) {
	res := NewNaverFinanceCollector(testOptions("http://127.0.0.1:1")).Fetch(context.Background(), "삼성전자", 3)
	require.True(t, res.Failed())
	require.True(t, apperr.IsKind(res.Err, apperr.KindParse))
}

func TestNaverFinanceCollectorHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	res := NewNaverFinanceCollector(testOptions(srv.URL)).Fetch(context.Background(), "005930", 3)
	require.True(t, res.Failed())
	require.True(t, apperr.IsKind(res.Err, apperr.KindNetwork))
}

func TestNaverFinanceCollectorCancelledContext(t *testing.T) {
	srv, _ := newNaverFinanceServer(t, []byte(naverFinancePage))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewNaverFinanceCollector(testOptions(srv.URL)).Fetch(ctx, "005930", 3)
	require.True(t, res.Failed())
	require.True(t, apperr.IsKind(res.Err, apperr.KindNetwork))
}

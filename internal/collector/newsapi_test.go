package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LJTian/StockNewsHub/internal/apperr"
)

func TestNewsAPICollectorMapsArticles(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"totalResults": 3,
			"articles": [
				{"title": "Apple beats estimates", "url": "https://example.com/1", "description": "desc", "content": "body", "publishedAt": "2025-10-14T08:30:00Z"},
				{"title": "Apple and the chip market", "url": "https://example.com/2", "description": "", "content": "only content", "publishedAt": "2025-10-13T23:59:59Z"},
				{"title": "", "url": "https://example.com/3", "publishedAt": "2025-10-13T00:00:00Z"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewNewsAPICollector("secret", testOptions(srv.URL))
	c.now = func() time.Time { return time.Date(2025, 10, 15, 9, 0, 0, 0, time.UTC) }

	res := c.Fetch(context.Background(), "AAPL", 5)
	require.False(t, res.Failed())
	require.Len(t, res.Items, 2)

	require.Equal(t, "AAPL", got.Get("q"))
	require.Equal(t, "secret", got.Get("apiKey"))
	require.Equal(t, "en", got.Get("language"))
	require.Equal(t, "relevancy", got.Get("sortBy"))
	require.Equal(t, "5", got.Get("pageSize"))
	require.Equal(t, "2025-10-08", got.Get("from"))
	require.Equal(t, "2025-10-15", got.Get("to"))

	require.Equal(t, "desc", res.Items[0].Snippet)
	require.Equal(t, "2025-10-14", res.Items[0].PublishDate)
	require.Equal(t, "only content", res.Items[1].Snippet)
	require.Equal(t, "2025-10-13", res.Items[1].PublishDate)
	require.Equal(t, SourceNewsAPI, res.Items[1].Source)
}

func TestNewsAPICollectorFailures(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		var hits int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
		}))
		defer srv.Close()

		res := NewNewsAPICollector("", testOptions(srv.URL)).Fetch(context.Background(), "AAPL", 1)
		require.True(t, res.Failed())
		require.True(t, apperr.IsKind(res.Err, apperr.KindNetwork))
		require.Zero(t, atomic.LoadInt32(&hits))
	})

	t.Run("unauthorized", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"bad key"}`))
		}))
		defer srv.Close()

		res := NewNewsAPICollector("bad", testOptions(srv.URL)).Fetch(context.Background(), "AAPL", 1)
		require.True(t, res.Failed())
		require.True(t, apperr.IsKind(res.Err, apperr.KindNetwork))
		require.Contains(t, res.Err.Error(), "bad key")
	})

	t.Run("status not ok", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"error","message":"rate limited"}`))
		}))
		defer srv.Close()

		res := NewNewsAPICollector("k", testOptions(srv.URL)).Fetch(context.Background(), "AAPL", 1)
		require.True(t, res.Failed())
		require.True(t, apperr.IsKind(res.Err, apperr.KindParse))
	})
}

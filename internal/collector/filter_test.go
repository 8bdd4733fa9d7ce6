package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const rfc822Offset = "Mon, 02 Jan 2006 15:04:05 -0700"

func fixedFilter(now time.Time) *RecencyFilter {
	return &RecencyFilter{Window: 3 * 24 * time.Hour, Now: func() time.Time { return now }}
}

func TestRecencyFilterBoundary(t *testing.T) {
	kst := time.FixedZone("KST", 9*3600)
	now := time.Date(2025, 4, 15, 12, 0, 0, 0, kst)
	f := fixedFilter(now)

	tooOld := now.Add(-(3*24*time.Hour + time.Second)).Format(rfc822Offset)
	require.False(t, f.Accept("삼성전자 실적 발표", tooOld, "삼성전자"))

	twoDays := now.Add(-2 * 24 * time.Hour).Format(rfc822Offset)
	require.True(t, f.Accept("삼성전자 실적 발표", twoDays, "삼성전자"))

	exactly := now.Add(-3 * 24 * time.Hour).Format(rfc822Offset)
	require.True(t, f.Accept("삼성전자 실적 발표", exactly, "삼성전자"))
}

func TestRecencyFilterUsesPublishedTimezone(t *testing.T) {
	// now 为 UTC，发布时间为 +0900：比较时按绝对时间，不受时区显示影响
	now := time.Date(2025, 4, 15, 3, 0, 0, 0, time.UTC)
	f := fixedFilter(now)

	published := time.Date(2025, 4, 12, 12, 0, 0, 0, time.FixedZone("KST", 9*3600))
	require.True(t, f.Accept("카카오 신사업", published.Format(rfc822Offset), "카카오"))

	published = published.Add(-time.Second)
	require.False(t, f.Accept("카카오 신사업", published.Format(rfc822Offset), "카카오"))
}

func TestRecencyFilterRelevance(t *testing.T) {
	now := time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC)
	f := fixedFilter(now)
	recent := now.Add(-time.Hour).Format(rfc822Offset)

	require.False(t, f.Accept("반도체 업황 개선", recent, "삼성전자"))
	// 大小写敏感
	require.False(t, f.Accept("apple earnings beat", recent, "Apple"))
	require.True(t, f.Accept("Apple earnings beat", recent, " Apple "))
	require.False(t, f.Accept("Apple earnings beat", recent, "  "))
}

func TestRecencyFilterUnparseableDateRejected(t *testing.T) {
	f := fixedFilter(time.Now())
	require.False(t, f.Accept("삼성전자 뉴스", "", "삼성전자"))
	require.False(t, f.Accept("삼성전자 뉴스", "2025-04-12", "삼성전자"))
}

package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeDateRoundTrip(t *testing.T) {
	seoul := time.FixedZone("KST", 9*3600)
	ts := []time.Time{
		time.Date(2025, 4, 12, 9, 34, 0, 0, seoul),
		time.Date(2024, 1, 3, 23, 5, 59, 0, time.UTC),
		time.Date(2023, 12, 31, 0, 0, 0, 0, time.FixedZone("EST", -5*3600)),
	}

	cases := []struct {
		name   string
		format Format
		layout string
	}{
		{"rfc822 zone name", RFC822Zone, "Mon, 02 Jan 2006 15:04:05 MST"},
		{"rfc822 zone name single digit day", RFC822Zone, "Mon, 2 Jan 2006 15:04:05 MST"},
		{"rfc822 numeric offset", RFC822Offset, "Mon, 02 Jan 2006 15:04:05 -0700"},
		{"rfc822 any with offset", RFC822Any, "Mon, 02 Jan 2006 15:04:05 -0700"},
		{"rfc822 any with zone", RFC822Any, "Mon, 02 Jan 2006 15:04:05 MST"},
		{"iso", ISODateTime, time.RFC3339},
		{"naver finance", DottedDateTime, "2006.01.02 15:04"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for _, tt := range ts {
				raw := tt.Format(c.layout)
				require.Equal(t, tt.Format(DateLayout), NormalizeDate(raw, c.format, DateLayout), raw)
				require.Equal(t, tt.Format(DateTimeLayout), NormalizeDate(raw, c.format, DateTimeLayout), raw)
			}
		})
	}
}

func TestNormalizeDateFallsBackToRaw(t *testing.T) {
	inputs := []string{
		"",
		"N/A",
		"yesterday",
		"2025-13-45",
		"Fri, 12 Apr 2025",
		"Fri, 12 Apr 2025 09:34:00 +0900 extra",
	}
	for _, raw := range inputs {
		require.Equal(t, raw, NormalizeDate(raw, RFC822Zone, DateLayout))
		require.Equal(t, raw, NormalizeDate(raw, ISODateTime, DateLayout))
	}
}

func TestNormalizeDateWrongFormatFallsBack(t *testing.T) {
	raw := "2025-04-12T09:34:00Z"
	require.Equal(t, raw, NormalizeDate(raw, RFC822Offset, DateLayout))
	require.Equal(t, "2025-04-12", NormalizeDate(raw, ISODateTime, ""))
}

func TestNormalizeDateKeepsOwnTimezone(t *testing.T) {
	// 不做时区换算：+0900 的凌晨仍然是当天
	require.Equal(t, "2025-04-12 01:10",
		NormalizeDate("Sat, 12 Apr 2025 01:10:00 +0900", RFC822Offset, DateTimeLayout))
	require.Equal(t, "2025-04-11 17:00",
		NormalizeDate("Fri, 11 Apr 2025 17:00:00 GMT", RFC822Zone, DateTimeLayout))
}

package sheet

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LJTian/StockNewsHub/internal/apperr"
)

func TestColumnLettersRoundTrip(t *testing.T) {
	cases := map[int]string{1: "A", 4: "D", 19: "S", 26: "Z", 27: "AA", 52: "AZ", 703: "AAA"}
	for n, letters := range cases {
		require.Equal(t, letters, ColumnLetters(n))
		require.Equal(t, n, ColumnIndex(letters))
	}
	require.Equal(t, "", ColumnLetters(0))
	require.Equal(t, 0, ColumnIndex("A1"))
	require.Equal(t, 19, ColumnIndex("s"))
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("A2:D31")
	require.NoError(t, err)
	require.Equal(t, Range{StartCol: 1, StartRow: 2, EndCol: 4, EndRow: 31}, r)
	require.Equal(t, 30, r.Rows())
	require.Equal(t, 4, r.Cols())
	require.Equal(t, "A2:D31", r.String())

	single, err := ParseRange("B5")
	require.NoError(t, err)
	require.Equal(t, "B5:B5", single.String())

	for _, bad := range []string{"", "A0:B2", "2A:B3", "B3:A1", "A1:B"} {
		_, err := ParseRange(bad)
		require.Error(t, err, bad)
	}
}

func TestBlockAndRowRange(t *testing.T) {
	b, err := Block("A34", 2, 30)
	require.NoError(t, err)
	require.Equal(t, "A34:B63", b.String())

	_, err = Block("A2", 0, 3)
	require.Error(t, err)

	require.Equal(t, "A7:S7", RowRange(7, 19).String())
}

func TestUpdateValidate(t *testing.T) {
	r := MustParseRange("A2:C3")
	require.NoError(t, Update{Range: r, Rows: [][]string{{"a", "b", "c"}, {"d"}}}.Validate())
	require.Error(t, Update{Range: r, Rows: [][]string{{"a", "b", "c"}}}.Validate())
	require.Error(t, Update{Range: r, Rows: [][]string{{"a", "b", "c", "d"}, {}}}.Validate())

	err := ValidateAll("test", []Update{{Range: r, Rows: nil}})
	require.True(t, apperr.IsKind(err, apperr.KindWrite))
}

func TestResolve(t *testing.T) {
	column := []string{"Ticker", " AAPL ", "MSFT", "AAPL", ""}

	row, err := Resolve("AAPL", column)
	require.NoError(t, err)
	require.Equal(t, 2, row)

	row, err = Resolve(" MSFT", column)
	require.NoError(t, err)
	require.Equal(t, 3, row)

	_, err = Resolve("XYZ", column)
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = Resolve("aapl", column)
	require.Error(t, err)
}

func TestSubjects(t *testing.T) {
	column := []string{"Ticker", " AAPL ", "", "  ", "MSFT"}
	require.Equal(t, []string{"AAPL", "MSFT"}, Subjects(column, 1))
	require.Equal(t, []string{"Ticker", "AAPL", "MSFT"}, Subjects(column, 0))
	require.Empty(t, Subjects(nil, 1))
}

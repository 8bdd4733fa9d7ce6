package sheet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Range 矩形区域（A1 表示法），行列均从 1 开始，包含两端
type Range struct {
	StartCol int
	StartRow int
	EndCol   int
	EndRow   int
}

var cellPattern = regexp.MustCompile(`^([A-Za-z]+)([0-9]+)$`)

// ParseCell 解析 "B12" 这样的单元格
func ParseCell(s string) (col, row int, err error) {
	m := cellPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, fmt.Errorf("invalid cell %q", s)
	}
	col = ColumnIndex(m[1])
	row, err = strconv.Atoi(m[2])
	if err != nil || row < 1 {
		return 0, 0, fmt.Errorf("invalid row in cell %q", s)
	}
	return col, row, nil
}

// ParseRange 解析 "A2:D31"；单个单元格视为 1x1 区域
func ParseRange(s string) (Range, error) {
	start, end, found := strings.Cut(strings.TrimSpace(s), ":")
	c1, r1, err := ParseCell(start)
	if err != nil {
		return Range{}, err
	}
	if !found {
		return Range{StartCol: c1, StartRow: r1, EndCol: c1, EndRow: r1}, nil
	}
	c2, r2, err := ParseCell(end)
	if err != nil {
		return Range{}, err
	}
	r := Range{StartCol: c1, StartRow: r1, EndCol: c2, EndRow: r2}
	if c2 < c1 || r2 < r1 {
		return Range{}, fmt.Errorf("range %q is inverted", s)
	}
	return r, nil
}

func MustParseRange(s string) Range {
	r, err := ParseRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Block 以 start 单元格为左上角，构造 cols 列 rows 行的区域
func Block(start string, cols, rows int) (Range, error) {
	if cols < 1 || rows < 1 {
		return Range{}, fmt.Errorf("block %dx%d at %s is empty", cols, rows, start)
	}
	c, r, err := ParseCell(start)
	if err != nil {
		return Range{}, err
	}
	return Range{StartCol: c, StartRow: r, EndCol: c + cols - 1, EndRow: r + rows - 1}, nil
}

// RowRange 第 row 行、从 A 列开始宽 width 列，例如 RowRange(5, 19) = "A5:S5"
func RowRange(row, width int) Range {
	if width < 1 {
		width = 1
	}
	return Range{StartCol: 1, StartRow: row, EndCol: width, EndRow: row}
}

func (r Range) Rows() int { return r.EndRow - r.StartRow + 1 }
func (r Range) Cols() int { return r.EndCol - r.StartCol + 1 }

func (r Range) String() string {
	return fmt.Sprintf("%s%d:%s%d", ColumnLetters(r.StartCol), r.StartRow, ColumnLetters(r.EndCol), r.EndRow)
}

// ColumnLetters 1 → A, 19 → S, 27 → AA
func ColumnLetters(col int) string {
	if col < 1 {
		return ""
	}
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}

// ColumnIndex A → 1, S → 19, AA → 27；非法输入返回 0
func ColumnIndex(letters string) int {
	n := 0
	for _, ch := range strings.ToUpper(letters) {
		if ch < 'A' || ch > 'Z' {
			return 0
		}
		n = n*26 + int(ch-'A'+1)
	}
	return n
}

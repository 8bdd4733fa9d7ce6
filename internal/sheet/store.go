package sheet

import (
	"context"
	"fmt"
	"strings"

	"github.com/LJTian/StockNewsHub/internal/apperr"
)

// Update 一次区域覆盖写：Rows 的行数必须与 Range 的行数一致，每行不超过 Range 的列数
type Update struct {
	Range Range
	Rows  [][]string
}

func (u Update) Validate() error {
	if len(u.Rows) != u.Range.Rows() {
		return fmt.Errorf("range %s expects %d rows, got %d", u.Range, u.Range.Rows(), len(u.Rows))
	}
	for i, row := range u.Rows {
		if len(row) > u.Range.Cols() {
			return fmt.Errorf("range %s row %d has %d cells, max %d", u.Range, i, len(row), u.Range.Cols())
		}
	}
	return nil
}

// Store 目标表格的最小接口；每个实现绑定一个工作表。
// ReadColumn 的列号从 1 开始，返回值下标 i 对应第 i+1 行
type Store interface {
	ReadColumn(ctx context.Context, col int) ([]string, error)
	WriteRange(ctx context.Context, r Range, rows [][]string) error
	WriteBatch(ctx context.Context, updates []Update) error
}

// ValidateAll 在发往存储前统一检查，返回 Write 类错误
func ValidateAll(op string, updates []Update) error {
	for _, u := range updates {
		if err := u.Validate(); err != nil {
			return apperr.Write(op, err)
		}
	}
	return nil
}

// Resolve 在查找列中线性扫描，返回第一个（去空白后）完全匹配的行号（从 1 开始）
func Resolve(name string, column []string) (int, error) {
	name = strings.TrimSpace(name)
	for i, cell := range column {
		if strings.TrimSpace(cell) == name {
			return i + 1, nil
		}
	}
	return 0, apperr.NotFound("sheet: resolve", fmt.Errorf("subject %q not in lookup column", name))
}

// Subjects 从查找列中取出 subject：跳过表头与空白单元格
func Subjects(column []string, headerRows int) []string {
	out := make([]string, 0, len(column))
	for i, cell := range column {
		if i < headerRows {
			continue
		}
		if s := strings.TrimSpace(cell); s != "" {
			out = append(out, s)
		}
	}
	return out
}

package storage

import (
	"context"
	"sync"

	"github.com/LJTian/StockNewsHub/internal/sheet"
)

// MemoryStore 进程内实现，用于预览、测试与 STORE_BACKEND=memory
type MemoryStore struct {
	mu     sync.Mutex
	rows   map[int][]string
	writes int
}

// NewMemoryStore 用第一列初始化，column[i] 写入第 i+1 行
func NewMemoryStore(column []string) *MemoryStore {
	m := &MemoryStore{rows: make(map[int][]string)}
	for i, v := range column {
		m.rows[i+1] = []string{v}
	}
	return m
}

func (m *MemoryStore) ReadColumn(_ context.Context, col int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	maxRow := 0
	for r := range m.rows {
		if r > maxRow {
			maxRow = r
		}
	}
	out := make([]string, maxRow)
	for r, cells := range m.rows {
		if col >= 1 && col <= len(cells) {
			out[r-1] = cells[col-1]
		}
	}
	return out, nil
}

func (m *MemoryStore) WriteRange(ctx context.Context, r sheet.Range, rows [][]string) error {
	return m.WriteBatch(ctx, []sheet.Update{{Range: r, Rows: rows}})
}

func (m *MemoryStore) WriteBatch(_ context.Context, updates []sheet.Update) error {
	if err := sheet.ValidateAll("memory: write batch", updates); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range updates {
		for i, values := range u.Rows {
			row := u.Range.StartRow + i
			m.rows[row] = mergeCells(m.rows[row], u.Range.StartCol, u.Range.Cols(), values)
		}
	}
	m.writes++
	return nil
}

// Row 返回第 row 行的副本
func (m *MemoryStore) Row(row int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.rows[row]...)
}

// Writes 成功写入的调用次数（WriteRange 与 WriteBatch 各算一次）
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

package storage

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/LJTian/StockNewsHub/internal/apperr"
	"github.com/LJTian/StockNewsHub/internal/sheet"
)

// SheetRow 表格的一行在 Postgres 中的镜像：按 (sheet, row) 唯一，单元格以 JSON 数组保存
type SheetRow struct {
	ID        uint                       `gorm:"primaryKey" json:"id"`
	Sheet     string                     `gorm:"size:128;uniqueIndex:idx_sheet_row" json:"sheet"`
	Row       int                        `gorm:"column:row_no;uniqueIndex:idx_sheet_row" json:"row"`
	Cells     datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"cells"`
	CreatedAt time.Time                  `json:"createdAt"`
	UpdatedAt time.Time                  `json:"updatedAt"`
}

// OpenPostgres 连接数据库并迁移表结构
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&SheetRow{}); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenRedis 支持 redis:// URL 或 host:port；Ping 失败只记录警告
func OpenRedis(addr string, log *slog.Logger) *redis.Client {
	opt, err := redis.ParseURL(addr)
	if err != nil {
		opt = &redis.Options{Addr: addr}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis ping failed", "addr", opt.Addr, "err", err)
	}
	return rdb
}

// PostgresStore 以数据库镜像实现 sheet.Store，一个实例对应一个工作表
type PostgresStore struct {
	db    *gorm.DB
	sheet string
}

func NewPostgresStore(db *gorm.DB, worksheet string) *PostgresStore {
	return &PostgresStore{db: db, sheet: worksheet}
}

func (s *PostgresStore) ReadColumn(ctx context.Context, col int) ([]string, error) {
	var rows []SheetRow
	err := s.db.WithContext(ctx).
		Where("sheet = ?", s.sheet).
		Order("row_no ASC").
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Network("postgres: read column", err)
	}
	if len(rows) == 0 {
		return []string{}, nil
	}

	out := make([]string, rows[len(rows)-1].Row)
	for _, r := range rows {
		if r.Row < 1 || col < 1 || col > len(r.Cells) {
			continue
		}
		out[r.Row-1] = r.Cells[col-1]
	}
	return out, nil
}

func (s *PostgresStore) WriteRange(ctx context.Context, r sheet.Range, rows [][]string) error {
	return s.WriteBatch(ctx, []sheet.Update{{Range: r, Rows: rows}})
}

// WriteBatch 在一个事务内写入所有区域
func (s *PostgresStore) WriteBatch(ctx context.Context, updates []sheet.Update) error {
	const op = "postgres: write batch"
	if err := sheet.ValidateAll(op, updates); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			for i, values := range u.Rows {
				if err := s.upsertRow(tx, u.Range.StartRow+i, u.Range.StartCol, u.Range.Cols(), values); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return apperr.Write(op, err)
	}
	return nil
}

func (s *PostgresStore) upsertRow(tx *gorm.DB, row, startCol, width int, values []string) error {
	var existing SheetRow
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("sheet = ? AND row_no = ?", s.sheet, row).
		Limit(1).
		Find(&existing).Error
	if err != nil {
		return err
	}

	existing.Sheet = s.sheet
	existing.Row = row
	existing.Cells = mergeCells(existing.Cells, startCol, width, values)
	return tx.Save(&existing).Error
}

// mergeCells 把 values 覆盖写到 [startCol, startCol+width) 区间，区间内未给出的单元格清空，区间外保持不变
func mergeCells(cells []string, startCol, width int, values []string) []string {
	end := startCol - 1 + width
	if len(cells) < end {
		grown := make([]string, end)
		copy(grown, cells)
		cells = grown
	} else {
		cells = append([]string(nil), cells...)
	}
	for i := 0; i < width; i++ {
		v := ""
		if i < len(values) {
			v = toValidUTF8(values[i])
		}
		cells[startCol-1+i] = v
	}
	return cells
}

// toValidUTF8 避免 PostgreSQL invalid byte sequence 错误
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

package storage

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/LJTian/StockNewsHub/internal/apperr"
	"github.com/LJTian/StockNewsHub/internal/sheet"
)

// 与手动编辑表格时的行为一致：按原样写入，不解析公式
const valueInputOption = "RAW"

// NewSheetsService 用服务账号凭证创建 Sheets API 客户端；测试可传入 option.WithEndpoint 等
func NewSheetsService(ctx context.Context, credentialsFile string, opts ...option.ClientOption) (*sheets.Service, error) {
	if credentialsFile != "" {
		opts = append([]option.ClientOption{
			option.WithCredentialsFile(credentialsFile),
			option.WithScopes(sheets.SpreadsheetsScope),
		}, opts...)
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// SheetsStore 绑定某个 spreadsheet 下的一个工作表
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
}

func NewSheetsStore(svc *sheets.Service, spreadsheetID, worksheet string) *SheetsStore {
	return &SheetsStore{svc: svc, spreadsheetID: spreadsheetID, worksheet: worksheet}
}

// a1 生成带工作表前缀的区域，名称含空格或引号时按 A1 规则加引号
func (s *SheetsStore) a1(rng string) string {
	name := s.worksheet
	if name == "" {
		return rng
	}
	if strings.ContainsAny(name, " '!:") {
		name = "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name + "!" + rng
}

func (s *SheetsStore) ReadColumn(ctx context.Context, col int) ([]string, error) {
	letters := sheet.ColumnLetters(col)
	if letters == "" {
		return nil, apperr.Parse("sheets: read column", fmt.Errorf("invalid column %d", col))
	}
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, s.a1(letters+":"+letters)).
		MajorDimension("COLUMNS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, apperr.Network("sheets: read column", err)
	}
	if len(resp.Values) == 0 {
		return []string{}, nil
	}
	out := make([]string, 0, len(resp.Values[0]))
	for _, v := range resp.Values[0] {
		out = append(out, fmt.Sprint(v))
	}
	return out, nil
}

func (s *SheetsStore) WriteRange(ctx context.Context, r sheet.Range, rows [][]string) error {
	const op = "sheets: write range"
	u := sheet.Update{Range: r, Rows: rows}
	if err := sheet.ValidateAll(op, []sheet.Update{u}); err != nil {
		return err
	}
	_, err := s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, s.a1(r.String()), s.valueRange(u)).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return apperr.Write(op, err)
	}
	return nil
}

// WriteBatch 多个区域一次请求写入；API 不保证原子性
func (s *SheetsStore) WriteBatch(ctx context.Context, updates []sheet.Update) error {
	const op = "sheets: write batch"
	if len(updates) == 0 {
		return nil
	}
	if err := sheet.ValidateAll(op, updates); err != nil {
		return err
	}
	req := &sheets.BatchUpdateValuesRequest{ValueInputOption: valueInputOption}
	for _, u := range updates {
		req.Data = append(req.Data, s.valueRange(u))
	}
	_, err := s.svc.Spreadsheets.Values.
		BatchUpdate(s.spreadsheetID, req).
		Context(ctx).
		Do()
	if err != nil {
		return apperr.Write(op, err)
	}
	return nil
}

func (s *SheetsStore) valueRange(u sheet.Update) *sheets.ValueRange {
	values := make([][]interface{}, len(u.Rows))
	for i, row := range u.Rows {
		cells := make([]interface{}, len(row))
		for j, c := range row {
			cells[j] = c
		}
		values[i] = cells
	}
	return &sheets.ValueRange{
		Range:          s.a1(u.Range.String()),
		MajorDimension: "ROWS",
		Values:         values,
	}
}

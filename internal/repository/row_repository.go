package repository

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	config "github.com/sheetcast/sheetcast/configs"
	"github.com/sheetcast/sheetcast/internal/models"
	"github.com/sheetcast/sheetcast/pkg/utils"
)

type RowRepository interface {
	FetchAll(ctx context.Context) ([]*models.PostRow, error)
	UpdateStatus(ctx context.Context, rowNumber int, status string) error
	UpdateStatusBatch(ctx context.Context, rowNumbers []int, status string) error
}

type sheetRowRepository struct {
	cfg     config.Config
	svc     *sheets.Service
	headers []string
}

func NewSheetRowRepository(ctx context.Context, cfg config.Config) (RowRepository, error) {
	creds, err := os.ReadFile(cfg.GoogleCredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read google credentials: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(creds, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithTokenSource(jwtConfig.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &sheetRowRepository{cfg: cfg, svc: svc}, nil
}

func (r *sheetRowRepository) FetchAll(ctx context.Context) ([]*models.PostRow, error) {
	resp, err := r.svc.Spreadsheets.Values.Get(r.cfg.SpreadsheetID, r.cfg.WorksheetName).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", r.cfg.WorksheetName, err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}

	r.headers = make([]string, len(resp.Values[0]))
	for i, h := range resp.Values[0] {
		r.headers[i] = cellString(h)
	}
	index := headerIndex(r.headers)

	rows := make([]*models.PostRow, 0, len(resp.Values)-1)
	for i, record := range resp.Values[1:] {
		// +2: sheets are 1-indexed and the header row is skipped
		rows = append(rows, mapRow(r.cfg.Columns, index, record, i+2))
	}
	return rows, nil
}

func (r *sheetRowRepository) UpdateStatus(ctx context.Context, rowNumber int, status string) error {
	col, err := r.statusColumn(ctx)
	if err != nil {
		return err
	}

	cellRange := fmt.Sprintf("%s!%s%d", r.cfg.WorksheetName, col, rowNumber)
	vr := &sheets.ValueRange{Values: [][]interface{}{{status}}}

	_, err = r.svc.Spreadsheets.Values.Update(r.cfg.SpreadsheetID, cellRange, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update row %d status: %w", rowNumber, err)
	}
	slog.Info("updated row status", "row", rowNumber, "status", status)
	return nil
}

func (r *sheetRowRepository) UpdateStatusBatch(ctx context.Context, rowNumbers []int, status string) error {
	if len(rowNumbers) == 0 {
		return nil
	}

	col, err := r.statusColumn(ctx)
	if err != nil {
		return err
	}

	data := make([]*sheets.ValueRange, 0, len(rowNumbers))
	for _, row := range rowNumbers {
		data = append(data, &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!%s%d", r.cfg.WorksheetName, col, row),
			Values: [][]interface{}{{status}},
		})
	}

	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}
	_, err = r.svc.Spreadsheets.Values.BatchUpdate(r.cfg.SpreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to batch update %d rows: %w", len(rowNumbers), err)
	}
	slog.Info("batch updated row statuses", "rows", rowNumbers, "status", status)
	return nil
}

// statusColumn resolves the A1 column letter of the status header, fetching
// the header row first if no FetchAll has run yet.
func (r *sheetRowRepository) statusColumn(ctx context.Context) (string, error) {
	if len(r.headers) == 0 {
		headerRange := fmt.Sprintf("%s!1:1", r.cfg.WorksheetName)
		resp, err := r.svc.Spreadsheets.Values.Get(r.cfg.SpreadsheetID, headerRange).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("failed to read header row: %w", err)
		}
		if len(resp.Values) == 0 {
			return "", fmt.Errorf("worksheet %q has no header row", r.cfg.WorksheetName)
		}
		r.headers = make([]string, len(resp.Values[0]))
		for i, h := range resp.Values[0] {
			r.headers[i] = cellString(h)
		}
	}

	idx, ok := headerIndex(r.headers)[normalizeHeader(r.cfg.Columns.Status)]
	if !ok {
		return "", fmt.Errorf("status column %q not found in sheet", r.cfg.Columns.Status)
	}
	return a1Column(idx), nil
}

func headerIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[normalizeHeader(h)] = i
	}
	return index
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// mapRow populates a typed PostRow from one raw record using the configured
// column-name mapping. Missing cells read as empty strings.
func mapRow(cols config.Columns, index map[string]int, record []interface{}, rowNumber int) *models.PostRow {
	field := func(name string) string {
		idx, ok := index[normalizeHeader(name)]
		if !ok || idx >= len(record) {
			return ""
		}
		return cellString(record[idx])
	}

	return &models.PostRow{
		RowNumber:         rowNumber,
		Date:              field(cols.Date),
		Time:              field(cols.Time),
		Text:              field(cols.Text),
		Hashtags:          field(cols.Hashtags),
		HashtagsInCaption: utils.ParseBool(field(cols.HashtagsInCaption)),
		ImageURLs:         field(cols.ImageURLs),
		VideoURLs:         field(cols.VideoURLs),
		LocalImagePaths:   field(cols.LocalImagePaths),
		LocalVideoPaths:   field(cols.LocalVideoPaths),
		PostToInstagram:   utils.ParseBool(field(cols.PostToInstagram)),
		PostToThreads:     utils.ParseBool(field(cols.PostToThreads)),
		TextOnly:          utils.ParseBool(field(cols.TextOnly)),
		Status:            strings.TrimSpace(field(cols.Status)),
	}
}

func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}

// a1Column converts a zero-based column index to its A1 letter form.
func a1Column(idx int) string {
	col := ""
	for idx >= 0 {
		col = string(rune('A'+idx%26)) + col
		idx = idx/26 - 1
	}
	return col
}

package sheets

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/harvest/internal/config"
	"github.com/mamadbah2/harvest/internal/service/export"
)

var _ export.SheetSink = (*GoogleSheetRepository)(nil)

// GoogleSheetRepository mirrors exported tables into a spreadsheet, one tab per table.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// ReplaceSheet clears the tab and writes rows from A1. The tab is created when missing.
func (r *GoogleSheetRepository) ReplaceSheet(ctx context.Context, sheet string, rows [][]interface{}) error {
	if sheet == "" {
		return errors.New("sheet must not be empty")
	}
	if err := r.ensureSheet(ctx, sheet); err != nil {
		return err
	}

	if _, err := r.service.Spreadsheets.Values.Clear(r.spreadsheetID, sheet, &sheetsapi.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", sheet, err)
	}

	payload := &sheetsapi.ValueRange{Values: rows}
	call := r.service.Spreadsheets.Values.Update(r.spreadsheetID, sheet+"!A1", payload).
		ValueInputOption("RAW").
		Context(ctx)
	if _, err := call.Do(); err != nil {
		return fmt.Errorf("write sheet %s: %w", sheet, err)
	}

	r.logger.Debug("sheet replaced", zap.String("sheet", sheet), zap.Int("rows", len(rows)))
	return nil
}

func (r *GoogleSheetRepository) ensureSheet(ctx context.Context, sheet string) error {
	doc, err := r.service.Spreadsheets.Get(r.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, s := range doc.Sheets {
		if s.Properties != nil && s.Properties.Title == sheet {
			return nil
		}
	}

	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{Properties: &sheetsapi.SheetProperties{Title: sheet}},
		}},
	}
	if _, err := r.service.Spreadsheets.BatchUpdate(r.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", sheet, err)
	}
	r.logger.Info("sheet created", zap.String("sheet", sheet))
	return nil
}

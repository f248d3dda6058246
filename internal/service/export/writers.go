package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/harvest/internal/domain/models"
)

// SheetSink replaces the contents of a named spreadsheet tab.
type SheetSink interface {
	ReplaceSheet(ctx context.Context, sheet string, rows [][]interface{}) error
}

// WriteCSV writes the header followed by every row.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write %s header: %w", t.Slug, err)
	}
	for i, row := range t.Rows {
		record := make([]string, len(row))
		for j, v := range row {
			record[j] = text(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write %s row %d: %w", t.Slug, i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes one worksheet per table, in order.
func WriteXLSX(w io.Writer, tables []Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	defaultSheet := f.GetSheetName(0)
	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, t.Name); err != nil {
				return fmt.Errorf("rename sheet %s: %w", t.Name, err)
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return fmt.Errorf("create sheet %s: %w", t.Name, err)
		}

		header := make([]interface{}, len(t.Header))
		for j, h := range t.Header {
			header[j] = h
		}
		if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
			return fmt.Errorf("write %s header: %w", t.Name, err)
		}
		for r, row := range t.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			values := make([]interface{}, len(row))
			for j, v := range row {
				values[j] = native(v)
			}
			if err := f.SetSheetRow(t.Name, cell, &values); err != nil {
				return fmt.Errorf("write %s row %d: %w", t.Name, r+1, err)
			}
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// PushSheets replaces every table's tab in the sink.
func PushSheets(ctx context.Context, sink SheetSink, tables []Table) error {
	for _, t := range tables {
		rows := make([][]interface{}, 0, len(t.Rows)+1)
		header := make([]interface{}, len(t.Header))
		for j, h := range t.Header {
			header[j] = h
		}
		rows = append(rows, header)
		for _, row := range t.Rows {
			values := make([]interface{}, len(row))
			for j, v := range row {
				values[j] = text(v)
			}
			rows = append(rows, values)
		}
		if err := sink.ReplaceSheet(ctx, t.Name, rows); err != nil {
			return fmt.Errorf("push sheet %s: %w", t.Name, err)
		}
	}
	return nil
}

func text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case decimal.Decimal:
		return val.String()
	case models.Date:
		return val.String()
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}

// native converts cells to types excelize stores as numbers where possible.
func native(v any) any {
	switch val := v.(type) {
	case decimal.Decimal:
		return val.InexactFloat64()
	case models.Date, time.Time:
		return text(val)
	default:
		return val
	}
}

package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/harvest/internal/domain/models"
	"github.com/mamadbah2/harvest/internal/service/export"
	"github.com/mamadbah2/harvest/internal/service/reporting"
)

const (
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReceiptReport aggregates receipts for the query string filters.
func (h *Handler) ReceiptReport(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	result, err := h.state.AggregateReceipts(principal(c), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.writeResult(c, result)
}

// OrderReport aggregates orders for the query string filters.
func (h *Handler) OrderReport(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	result, err := h.state.AggregateOrders(principal(c), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.writeResult(c, result)
}

func (h *Handler) ProducerRollup(c *gin.Context) {
	from, to, err := parseRange(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	rows, err := h.state.ProducerRollup(principal(c), from, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.writeRollup(c, rows)
}

func (h *Handler) CustomerRollup(c *gin.Context) {
	from, to, err := parseRange(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	rows, err := h.state.CustomerRollup(principal(c), from, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.writeRollup(c, rows)
}

// Workbook downloads every collection as an XLSX workbook.
func (h *Handler) Workbook(c *gin.Context) {
	tables, err := h.state.Workbook(principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, tables); err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="harvest.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// TableCSV downloads a single collection as CSV.
func (h *Handler) TableCSV(c *gin.Context) {
	tables, err := h.state.Workbook(principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	table, ok := export.Find(tables, c.Param("table"))
	if !ok {
		h.fail(c, fmt.Errorf("table %q: %w", c.Param("table"), models.ErrNotFound))
		return
	}
	h.writeCSV(c, table)
}

func (h *Handler) writeResult(c *gin.Context, result reporting.Result) {
	if c.Query("format") == "csv" {
		h.writeCSV(c, export.AggregateTable(result))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":  result,
		"display": result.Display(),
	})
}

func (h *Handler) writeRollup(c *gin.Context, rows []reporting.Rollup) {
	if c.Query("format") == "csv" {
		h.writeCSV(c, export.RollupTable(rows))
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) writeCSV(c *gin.Context, table export.Table) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, table); err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, table.Slug))
	c.Data(http.StatusOK, csvContentType, buf.Bytes())
}

func parseQuery(c *gin.Context) (reporting.Query, error) {
	from, to, err := parseRange(c)
	if err != nil {
		return reporting.Query{}, err
	}
	grouping, err := reporting.ParseGrouping(c.Query("group"))
	if err != nil {
		return reporting.Query{}, err
	}
	q := reporting.Query{From: from, To: to, Certification: c.Query("certification"), Grouping: grouping}
	if raw := c.Query("counterpart_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return reporting.Query{}, &models.ValidationError{Field: "counterpart_id", Reason: "must be a positive integer"}
		}
		q.CounterpartID = id
	}
	return q, nil
}

func parseRange(c *gin.Context) (models.Date, models.Date, error) {
	var from, to models.Date
	if raw := c.Query("from"); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			return from, to, &models.ValidationError{Field: "from", Reason: "must be YYYY-MM-DD"}
		}
		from = d
	}
	if raw := c.Query("to"); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			return from, to, &models.ValidationError{Field: "to", Reason: "must be YYYY-MM-DD"}
		}
		to = d
	}
	return from, to, nil
}

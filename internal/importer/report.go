package importer

import (
	"time"

	"github.com/QJQnova/Eps-sub001/internal/models"
	"github.com/shopspring/decimal"
)

// SkipReason explains why a row was not stored.
type SkipReason string

const (
	ReasonShortRow      SkipReason = "short_row"
	ReasonMissingName   SkipReason = "missing_name"
	ReasonMissingSKU    SkipReason = "missing_sku"
	ReasonInvalidPrice  SkipReason = "invalid_price"
	ReasonDuplicateSKU  SkipReason = "duplicate_sku"
	ReasonCategoryError SkipReason = "category_error"
	ReasonWriteFailed   SkipReason = "write_failed"
)

const maxReportErrors = 100

// ParsedRow is a row that passed validation and is ready to be written.
type ParsedRow struct {
	Line       int
	Offset     int
	Record     Record
	Price      decimal.Decimal
	CategoryID uint
	Product    models.Product
}

// RowResult is the outcome of processing one row. Reason is empty for rows
// that go on to the batch writer.
type RowResult struct {
	Line   int
	Row    *ParsedRow
	Reason SkipReason
	Err    error
}

func (r RowResult) OK() bool {
	return r.Reason == "" && r.Err == nil
}

// RowError is a reported per-row problem.
type RowError struct {
	Line    int        `json:"line"`
	SKU     string     `json:"sku,omitempty"`
	Reason  SkipReason `json:"reason"`
	Message string     `json:"message,omitempty"`
}

// Report summarises one import run.
type Report struct {
	Source            string             `json:"source"`
	Mode              Mode               `json:"mode"`
	Encoding          Encoding           `json:"encoding,omitempty"`
	Total             int                `json:"total"`
	Resumed           int                `json:"resumed"`
	Imported          int                `json:"imported"`
	Updated           int                `json:"updated"`
	Skipped           int                `json:"skipped"`
	Failed            int                `json:"failed"`
	CategoriesCreated int                `json:"categories_created"`
	Skips             map[SkipReason]int `json:"skips"`
	Errors            []RowError         `json:"errors"`
	Duration          time.Duration      `json:"-"`
	DurationMS        int64              `json:"duration_ms"`
}

func newReport(source string, mode Mode) *Report {
	return &Report{
		Source: source,
		Mode:   mode,
		Skips:  make(map[SkipReason]int),
		Errors: []RowError{},
	}
}

// Success is the number of rows stored (inserted or updated).
func (r *Report) Success() int {
	return r.Imported + r.Updated
}

// FailedCount is the number of rows not stored, skipped or failed.
func (r *Report) FailedCount() int {
	return r.Skipped + r.Failed
}

func (r *Report) skip(line int, sku string, reason SkipReason, err error) {
	r.Skipped++
	r.Skips[reason]++
	r.addError(line, sku, reason, err)
}

func (r *Report) fail(line int, sku string, err error) {
	r.Failed++
	r.Skips[ReasonWriteFailed]++
	r.addError(line, sku, ReasonWriteFailed, err)
}

func (r *Report) addError(line int, sku string, reason SkipReason, err error) {
	if len(r.Errors) >= maxReportErrors {
		return
	}
	e := RowError{Line: line, SKU: sku, Reason: reason}
	if err != nil {
		e.Message = err.Error()
	}
	r.Errors = append(r.Errors, e)
}

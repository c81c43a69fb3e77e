// Package ingestion holds the error taxonomy and row-level reporting shared by
// every adapter that reads rows from a remote tabular source.
package ingestion

import (
	"errors"
	"fmt"
)

var (
	// ErrUnparseable signals the remote payload was not a recognisable table.
	ErrUnparseable = errors.New("remote payload unparseable")
	// ErrTransport signals the remote source could not be reached or answered with a failure status.
	ErrTransport = errors.New("remote source unavailable")
)

// RowIssue describes a problem with one source row. Dropped rows were
// rejected; other issues record a field that was coerced to a default.
type RowIssue struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Reason  string `json:"reason"`
	Dropped bool   `json:"dropped"`
}

func (i RowIssue) String() string {
	action := "coerced"
	if i.Dropped {
		action = "dropped"
	}
	if i.Field == "" {
		return fmt.Sprintf("row %d %s: %s", i.Row, action, i.Reason)
	}
	return fmt.Sprintf("row %d %s (%s): %s", i.Row, action, i.Field, i.Reason)
}

// RowResult is the per-row outcome of mapping a source row: either a Value or
// an Err. Notes lists fields that were coerced while producing Value.
type RowResult[T any] struct {
	Row   int
	Value T
	Err   error
	Notes []RowIssue
}

// OK reports whether the row produced a value.
func (r RowResult[T]) OK() bool { return r.Err == nil }

// Accept builds a successful row result.
func Accept[T any](row int, value T, notes ...RowIssue) RowResult[T] {
	return RowResult[T]{Row: row, Value: value, Notes: notes}
}

// Reject builds a failed row result.
func Reject[T any](row int, err error) RowResult[T] {
	return RowResult[T]{Row: row, Err: err}
}

// Report aggregates the outcome of one ingestion run.
type Report struct {
	Source   string     `json:"source"`
	Rows     int        `json:"rows"`
	Accepted int        `json:"accepted"`
	Issues   []RowIssue `json:"issues,omitempty"`
}

// Coerce records a field that was replaced by its default.
func (r *Report) Coerce(row int, field, reason string) {
	r.Issues = append(r.Issues, RowIssue{Row: row, Field: field, Reason: reason})
}

// Drop records a rejected row.
func (r *Report) Drop(row int, field, reason string) {
	r.Issues = append(r.Issues, RowIssue{Row: row, Field: field, Reason: reason, Dropped: true})
}

// Dropped counts rejected rows.
func (r Report) Dropped() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Dropped {
			n++
		}
	}
	return n
}

// Coerced counts coerced fields.
func (r Report) Coerced() int {
	return len(r.Issues) - r.Dropped()
}

// Collect folds row results into values and a report. Rows whose Err is set
// are dropped with the error text as reason.
func Collect[T any](source string, rows []RowResult[T]) ([]T, Report) {
	report := Report{Source: source, Rows: len(rows)}
	values := make([]T, 0, len(rows))
	for _, row := range rows {
		if !row.OK() {
			var fieldErr *FieldError
			if errors.As(row.Err, &fieldErr) {
				report.Drop(row.Row, fieldErr.Field, fieldErr.Reason)
			} else {
				report.Drop(row.Row, "", row.Err.Error())
			}
			continue
		}
		report.Issues = append(report.Issues, row.Notes...)
		values = append(values, row.Value)
		report.Accepted++
	}
	return values, report
}

// FieldError rejects a row because of one field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

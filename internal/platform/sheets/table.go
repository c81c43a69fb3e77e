package sheets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Apurer/go-sheet-storefront/internal/shared/ingestion"
)

// Table is the decoded body of a Visualization API response.
type Table struct {
	Columns []Column
	Rows    []Row
}

// Column describes one table column.
type Column struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// Row is one positional row of cells. Cells may be nil for empty sheet cells.
type Row struct {
	Cells []*Cell
}

// Cell carries the raw value and the optional formatted rendering.
type Cell struct {
	V json.RawMessage `json:"v"`
	F *string         `json:"f,omitempty"`
}

type responseEnvelope struct {
	Status string `json:"status"`
	Errors []struct {
		Reason          string `json:"reason"`
		Message         string `json:"message"`
		DetailedMessage string `json:"detailed_message"`
	} `json:"errors"`
	Table *struct {
		Cols []Column `json:"cols"`
		Rows []struct {
			C []*Cell `json:"c"`
		} `json:"rows"`
	} `json:"table"`
}

// ParseResponse decodes a gviz "out:json" body. The JSON object is wrapped in
// a JavaScript callback (`google.visualization.Query.setResponse({...});`)
// preceded by a comment; the outermost object is located by brace position so
// changes to the prefix length do not break parsing.
func ParseResponse(body []byte) (*Table, error) {
	start := bytes.IndexByte(body, '{')
	end := bytes.LastIndexByte(body, '}')
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in response", ingestion.ErrUnparseable)
	}
	var env responseEnvelope
	if err := json.Unmarshal(body[start:end+1], &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ingestion.ErrUnparseable, err)
	}
	if env.Status == "error" {
		reason := "query failed"
		if len(env.Errors) > 0 {
			if msg := firstNonEmpty(env.Errors[0].DetailedMessage, env.Errors[0].Message, env.Errors[0].Reason); msg != "" {
				reason = msg
			}
		}
		return nil, fmt.Errorf("%w: %s", ingestion.ErrUnparseable, reason)
	}
	if env.Table == nil {
		return nil, fmt.Errorf("%w: response has no table", ingestion.ErrUnparseable)
	}
	table := &Table{Columns: env.Table.Cols, Rows: make([]Row, 0, len(env.Table.Rows))}
	for _, r := range env.Table.Rows {
		table.Rows = append(table.Rows, Row{Cells: r.C})
	}
	return table, nil
}

func (r Row) cell(i int) *Cell {
	if i < 0 || i >= len(r.Cells) {
		return nil
	}
	c := r.Cells[i]
	if c == nil || len(c.V) == 0 || string(c.V) == "null" {
		return nil
	}
	return c
}

// Present reports whether cell i holds a non-null value.
func (r Row) Present(i int) bool {
	return r.cell(i) != nil
}

// Text renders cell i as a string. Numbers are printed without trailing
// zeros and Date(y,m,d) literals become YYYY-MM-DD. ok is false for absent
// cells and cells that render to the empty string.
func (r Row) Text(i int) (string, bool) {
	c := r.cell(i)
	if c == nil {
		return "", false
	}
	var text string
	switch c.V[0] {
	case '"':
		if err := json.Unmarshal(c.V, &text); err != nil {
			return "", false
		}
		if date, ok := parseDateLiteral(text); ok {
			text = date
		}
	case 't', 'f':
		text = string(c.V)
	default:
		f, err := strconv.ParseFloat(string(c.V), 64)
		if err != nil {
			return "", false
		}
		text = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return text, text != ""
}

// TextOr renders cell i or returns fallback when it is absent or empty.
func (r Row) TextOr(i int, fallback string) string {
	if text, ok := r.Text(i); ok {
		return text
	}
	return fallback
}

// Number returns cell i as a float. Numeric strings are accepted. ok is false
// when the cell is absent or does not hold a number.
func (r Row) Number(i int) (float64, bool) {
	c := r.cell(i)
	if c == nil {
		return 0, false
	}
	if c.V[0] == '"' {
		var s string
		if err := json.Unmarshal(c.V, &s); err != nil {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	f, err := strconv.ParseFloat(string(c.V), 64)
	return f, err == nil
}

// parseDateLiteral converts "Date(2024,0,15)" (zero-based month, optional
// time components) into "2024-01-15".
func parseDateLiteral(s string) (string, bool) {
	if !strings.HasPrefix(s, "Date(") || !strings.HasSuffix(s, ")") {
		return "", false
	}
	parts := strings.Split(strings.TrimSuffix(strings.TrimPrefix(s, "Date("), ")"), ",")
	if len(parts) < 3 {
		return "", false
	}
	nums := make([]int, 3)
	for i := range nums {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return "", false
		}
		nums[i] = n
	}
	d := time.Date(nums[0], time.Month(nums[1]+1), nums[2], 0, 0, 0, 0, time.UTC)
	return d.Format(time.DateOnly), true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

package subset

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

const (
	ColumnID      = "id"
	ColumnTime    = "time"
	ColumnDate    = "date"
	ColumnProduct = "product"

	// TimestampFormat renders the date column in text output.
	TimestampFormat = "2006-01-02 15:04:05"
)

// Table is a region time series, one row per pixel and time step.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of name or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Records renders the table as text, header first.
func (t *Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, append([]string(nil), t.Columns...))
	for _, row := range t.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = FormatValue(v)
		}
		records = append(records, record)
	}
	return records
}

// FormatValue renders one cell. Missing values are empty.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case time.Time:
		return v.UTC().Format(TimestampFormat)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Reshape turns a raw region (header row plus data rows) into a Table: the
// id column is dropped, time in epoch milliseconds becomes date, rows are
// ordered by date and a constant product column is appended.
func Reshape(region [][]any, product string) (*Table, error) {
	if len(region) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrMalformedRegion)
	}

	header := make([]string, len(region[0]))
	for i, h := range region[0] {
		name, ok := h.(string)
		if !ok {
			return nil, fmt.Errorf("%w: header field %d is %T, want string", ErrMalformedRegion, i, h)
		}
		header[i] = name
	}

	timeIdx := -1
	columns := make([]string, 0, len(header)+1)
	keep := make([]int, 0, len(header))
	for i, name := range header {
		switch name {
		case ColumnID:
			continue
		case ColumnTime:
			timeIdx = i
			name = ColumnDate
		}
		columns = append(columns, name)
		keep = append(keep, i)
	}
	if timeIdx < 0 {
		return nil, fmt.Errorf("%w: no %q column", ErrMalformedRegion, ColumnTime)
	}
	columns = append(columns, ColumnProduct)

	dateIdx := -1
	rows := make([][]any, 0, len(region)-1)
	for n, raw := range region[1:] {
		if len(raw) != len(header) {
			return nil, fmt.Errorf("%w: row %d has %d fields, header has %d",
				ErrMalformedRegion, n+1, len(raw), len(header))
		}

		row := make([]any, 0, len(columns))
		for j, i := range keep {
			if i != timeIdx {
				row = append(row, raw[i])
				continue
			}
			date, err := epochMillis(raw[i])
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: %w", ErrMalformedRegion, n+1, err)
			}
			dateIdx = j
			row = append(row, date)
		}
		rows = append(rows, append(row, product))
	}

	if dateIdx >= 0 {
		sort.SliceStable(rows, func(a, b int) bool {
			return rows[a][dateIdx].(time.Time).Before(rows[b][dateIdx].(time.Time))
		})
	}

	return &Table{Columns: columns, Rows: rows}, nil
}

// epochMillis converts a millisecond unix timestamp to UTC time.
func epochMillis(v any) (time.Time, error) {
	var ms float64
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return time.UnixMilli(i).UTC(), nil
		}
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time %q: %w", v.String(), err)
		}
		ms = f
	case float64:
		ms = v
	case int64:
		return time.UnixMilli(v).UTC(), nil
	case int:
		return time.UnixMilli(int64(v)).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("invalid time %v of type %T", v, v)
	}

	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}, fmt.Errorf("invalid time %v", ms)
	}
	sec, frac := math.Modf(ms / 1000)
	return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC(), nil
}

package storage

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"budgets/internal/core"

	"github.com/shopspring/decimal"
)

// Row is one result row addressed by column name. Missing or NULL columns
// decode to zero values.
type Row map[string]any

// Int64 decodes an integer column.
func (r Row) Int64(col string) (int64, error) {
	switch v := r[col].(type) {
	case nil:
		return 0, nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, fmt.Errorf("column %s: %v is not an integer", col, v)
		}
		return int64(v), nil
	case string, []byte:
		n, err := strconv.ParseInt(r.String(col), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", col, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("column %s: unexpected type %T", col, v)
	}
}

// String decodes a text column.
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Decimal decodes an amount stored as text, integer or real.
func (r Row) Decimal(col string) (decimal.Decimal, error) {
	switch v := r[col].(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return v, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	default:
		var d decimal.Decimal
		if err := d.Scan(v); err != nil {
			return decimal.Zero, fmt.Errorf("column %s: %w", col, err)
		}
		return d, nil
	}
}

// Date decodes a YYYY-MM-DD column. The driver may already hand back a time.
func (r Row) Date(col string) (core.Date, error) {
	switch v := r[col].(type) {
	case nil:
		return core.Date{}, nil
	case time.Time:
		return core.NewDate(v.Year(), int(v.Month()), v.Day()), nil
	case core.Date:
		return v, nil
	default:
		s := r.String(col)
		if s == "" {
			return core.Date{}, nil
		}
		if len(s) > len(core.DateLayout) {
			s = s[:len(core.DateLayout)]
		}
		d, err := core.ParseDate(s)
		if err != nil {
			return core.Date{}, fmt.Errorf("column %s: %w", col, err)
		}
		return d, nil
	}
}

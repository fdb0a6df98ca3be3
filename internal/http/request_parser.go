// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Budget forms arrive either form-encoded (plain forms and htmx) or as JSON.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"budgets/internal/core"
)

// Budget form field names.
const (
	fieldContactID   = "contact_id"
	fieldBudgetName  = "budget_name"
	fieldTotalBudget = "total_budget"
	fieldStartDate   = "start_date"
	fieldEndDate     = "end_date"
	fieldCurrency    = "currency"
)

// maxBodyBytes caps the request body. Larger bodies fail Parse with
// *http.MaxBytesError instead of being cut short.
const maxBodyBytes = 64 << 10

// FieldError reports a form field that could not be parsed.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	}
	return p
}

// bodyErrorResponse maps a Parse failure to 413 for oversized bodies and
// 400 for anything else.
func bodyErrorResponse(err error) *HTMXResponseBuilder {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return ErrorResponse(http.StatusRequestEntityTooLarge, "Request body too large")
	}
	return BadRequestError("Invalid request format")
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if strings.Contains(p.contentType, "application/json") || p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Has reports whether key was sent at all, even with an empty value.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	return p.formData.Has(key)
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseBudget reads a complete budget from the body. Field-level parse
// failures are returned as *FieldError; business rules are left to
// core.Budget.Validate.
func ParseBudget(p *RequestBodyParser) (core.Budget, error) {
	var b core.Budget
	var err error

	if b.ContactID, err = parseID(fieldContactID, p.Get(fieldContactID)); err != nil {
		return core.Budget{}, err
	}
	b.Name = p.Get(fieldBudgetName)
	if b.TotalBudget, err = parseAmountField(p.Get(fieldTotalBudget)); err != nil {
		return core.Budget{}, err
	}
	if b.StartDate, err = parseDateField(fieldStartDate, p.Get(fieldStartDate)); err != nil {
		return core.Budget{}, err
	}
	if b.EndDate, err = parseDateField(fieldEndDate, p.Get(fieldEndDate)); err != nil {
		return core.Budget{}, err
	}
	b.Currency = p.Get(fieldCurrency)
	return b, nil
}

// ParseBudgetUpdate builds a partial update from the fields present in the
// body. A field that is absent is left unchanged; a field that is present
// is set, even when empty, so validation can reject it.
func ParseBudgetUpdate(p *RequestBodyParser) (core.BudgetUpdate, error) {
	var u core.BudgetUpdate

	if p.Has(fieldBudgetName) {
		u.Name = core.Set(p.Get(fieldBudgetName))
	}
	if p.Has(fieldTotalBudget) {
		total, err := parseAmountField(p.Get(fieldTotalBudget))
		if err != nil {
			return core.BudgetUpdate{}, err
		}
		u.TotalBudget = core.Set(total)
	}
	if p.Has(fieldStartDate) {
		d, err := parseDateField(fieldStartDate, p.Get(fieldStartDate))
		if err != nil {
			return core.BudgetUpdate{}, err
		}
		u.StartDate = core.Set(d)
	}
	if p.Has(fieldEndDate) {
		d, err := parseDateField(fieldEndDate, p.Get(fieldEndDate))
		if err != nil {
			return core.BudgetUpdate{}, err
		}
		u.EndDate = core.Set(d)
	}
	if p.Has(fieldCurrency) {
		u.Currency = core.Set(p.Get(fieldCurrency))
	}
	return u, nil
}

func parseID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, &FieldError{Field: field, Reason: "must be a positive whole number"}
	}
	return id, nil
}

func parseAmountField(raw string) (decimal.Decimal, error) {
	d, err := core.ParseAmount(raw)
	if err != nil {
		return d, &FieldError{Field: fieldTotalBudget, Reason: "must be a non-negative number"}
	}
	return d, nil
}

func parseDateField(field, raw string) (core.Date, error) {
	d, err := core.ParseDate(raw)
	if err != nil {
		return core.Date{}, &FieldError{Field: field, Reason: "must be a date in YYYY-MM-DD format"}
	}
	return d, nil
}

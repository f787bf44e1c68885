package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	errors "github.com/frahmantamala/budget-ledger/internal"
	"github.com/shopspring/decimal"
)

// Money columns are numeric(12,2). Anything far outside that range is
// rejected before arithmetic rescales it.
const (
	maxIntegerDigits  = 15
	maxFractionDigits = 15
)

func checkMagnitude(field string, d decimal.Decimal) *errors.AppError {
	exp := int64(d.Exponent())
	if exp < -maxFractionDigits || int64(d.NumDigits())+exp > maxIntegerDigits {
		return errors.NewInvalidFormatError(field, fmt.Sprintf("%s is out of range", field))
	}
	return nil
}

// ParseDecimal reads a JSON number or numeric string. Absent and null
// values yield nil so callers can report presence separately.
func ParseDecimal(field string, raw json.RawMessage) (*decimal.Decimal, *errors.AppError) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, errors.NewInvalidFormatError(field, fmt.Sprintf("%s must be a number", field))
		}
		text = strings.TrimSpace(s)
		if text == "" {
			return nil, nil
		}
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return nil, errors.NewInvalidFormatError(field, fmt.Sprintf("%s must be a number", field))
	}
	if appErr := checkMagnitude(field, d); appErr != nil {
		return nil, appErr
	}
	return &d, nil
}

// ParseDecimalParam is ParseDecimal for query-string values.
func ParseDecimalParam(field, value string) (decimal.Decimal, *errors.AppError) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, errors.NewInvalidFormatError(field, fmt.Sprintf("%s must be a number", field))
	}
	if appErr := checkMagnitude(field, d); appErr != nil {
		return decimal.Zero, appErr
	}
	return d, nil
}

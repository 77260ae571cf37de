package domain

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrCodeInvalidCapital         ErrorCode = "INVALID_CAPITAL"
	ErrCodeNoAssets               ErrorCode = "NO_ASSETS"
	ErrCodeInvestedExceedsCapital ErrorCode = "INVESTED_EXCEEDS_CAPITAL"
	ErrCodeInvalidAsset           ErrorCode = "INVALID_ASSET"
	ErrCodeInvalidFeeConfig       ErrorCode = "INVALID_FEE_CONFIG"
	ErrCodeInvalidWeights         ErrorCode = "INVALID_WEIGHTS"
	ErrCodeInvalidExpression      ErrorCode = "INVALID_EXPRESSION"
)

// ValidationError is returned in place of a result whenever an input
// violates one of the documented constraints. Field names the offending
// input path (e.g. "assets[2].buy_price").
type ValidationError struct {
	Code    ErrorCode `json:"code"`
	Field   string    `json:"field,omitempty"`
	Message string    `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s %s", e.Code, e.Field, e.Message)
}

// Is matches any ValidationError carrying the same code, so callers can
// write errors.Is(err, domain.ValidationError{Code: domain.ErrCodeNoAssets}).
func (e ValidationError) Is(target error) bool {
	t, ok := target.(ValidationError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func newValidationError(code ErrorCode, field string, format string, args ...any) ValidationError {
	return ValidationError{
		Code:    code,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// CodeOf extracts the validation code from err, looking through wrapping
func CodeOf(err error) (ErrorCode, bool) {
	var ve ValidationError
	if errors.As(err, &ve) {
		return ve.Code, true
	}
	return "", false
}

// Warning represents a non-fatal issue found while validating a snapshot.
type Warning struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// AsError promotes a warning to a blocking error
func (w Warning) AsError() ValidationError {
	return ValidationError{
		Code:    w.Code,
		Message: w.Message,
	}
}

package core

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers match them with errors.Is.
var (
	ErrNotFound         = errors.New("record not found")
	ErrInvalidReference = errors.New("referenced record does not exist")

	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidDate         = errors.New("invalid date, expected YYYY-MM-DD")
	ErrDepositExceedsTotal = errors.New("visa deposit cannot be greater than total amount")
	ErrEmptyField          = errors.New("required field is empty")
	ErrTooLong             = errors.New("value too long")
	ErrInvalidEnum         = errors.New("unsupported value")
	ErrInvalidRoute        = errors.New("location does not match travel direction")
	ErrExpiryBeforeIssue   = errors.New("expiry date must not be before issue date")
	ErrImmutableField      = errors.New("field cannot be changed")
)

// ValidationError ties a validation failure to the offending field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Err.Error())
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFound wraps ErrNotFound with the entity and id that were looked up.
func NotFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
}

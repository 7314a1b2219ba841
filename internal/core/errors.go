package core

import (
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	ErrInvalidAmount    = errors.New("invalid amount")
	ErrAmountTooLarge   = errors.New("amount too large (max 999999999999.99)")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrEmptyDescription = errors.New("empty description")
	ErrTooLong          = errors.New("too long (max 200 characters)")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidPeriod    = errors.New("invalid period")
	ErrInvalidAssetType = errors.New("invalid asset type")
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrInvalidTheme     = errors.New("invalid theme")
	ErrRequired         = errors.New("required")
)

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string
	causes []error
}

// Add records err against field. The first error per field wins.
func (e *ValidationError) Add(field string, err error) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; exists {
		return
	}
	e.Fields[field] = err.Error()
	e.causes = append(e.causes, err)
}

// OrNil returns e when any field failed, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the field errors to errors.Is.
func (e *ValidationError) Unwrap() []error {
	return e.causes
}

// NewFieldError is a shortcut for a single-field validation failure.
func NewFieldError(field string, err error) *ValidationError {
	v := &ValidationError{}
	v.Add(field, err)
	return v
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

var (
	moneyType = reflect.TypeOf(Money{})
	dateType  = reflect.TypeOf(Date{})
)

// malformed reports an unparseable scalar as a type error so encoding/json
// attaches the name of the field it was decoding.
func malformed(raw []byte, t reflect.Type) error {
	kind := "string"
	if len(raw) > 0 && raw[0] != '"' {
		kind = "number"
	}
	return &json.UnmarshalTypeError{Value: kind, Type: t}
}

// MalformedCause returns the field error for a value of type t that failed
// to decode, or nil when t is not a core scalar.
func MalformedCause(t reflect.Type) error {
	switch t {
	case moneyType:
		return ErrInvalidAmount
	case dateType:
		return ErrInvalidDate
	}
	return nil
}

package invoice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrRequired       = errors.New("is required")
	ErrInvalidQty     = errors.New("quantity must be at least 1")
	ErrInvalidPrice   = errors.New("price must be greater than zero")
	ErrNegativePrice  = errors.New("price cannot be negative")
	ErrInvalidDate    = errors.New("date must be DD/MM/YYYY")
	ErrInvalidStatus  = errors.New("unknown paid status")
	ErrInvalidPayment = errors.New("unknown payment type")
)

// FieldError ties a sentinel error to the form field it concerns.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Err.Error())
}

func (e FieldError) Unwrap() error {
	return e.Err
}

// ValidationError collects every field problem found in one pass.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets errors.Is match any of the wrapped field sentinels.
func (e *ValidationError) Is(target error) bool {
	for _, f := range e.Fields {
		if errors.Is(f.Err, target) {
			return true
		}
	}
	return false
}

// Map returns field -> message, the shape the HTTP layer reports.
func (e *ValidationError) Map() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Err.Error()
	}
	return out
}

func (e *ValidationError) add(field string, err error) {
	e.Fields = append(e.Fields, FieldError{Field: field, Err: err})
}

// collect converts validator failures into field errors keyed by JSON path.
func (e *ValidationError) collect(err error) {
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		e.add("", err)
		return
	}
	for _, fe := range fieldErrs {
		e.add(fieldPath(fe), sentinelFor(fe))
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ValidateDraft applies the add-product rule: a name and a non-zero price.
func ValidateDraft(li LineItem) error {
	verr := &ValidationError{}
	verr.collect(validate.Struct(li))
	if li.ProductPrice.IsZero() {
		verr.add("productPrice", ErrInvalidPrice)
	} else if li.ProductPrice.IsNegative() {
		verr.add("productPrice", ErrNegativePrice)
	}
	return verr.orNil()
}

// Validate checks the fields the form marks as required before submit.
func (inv *Invoice) Validate() error {
	verr := &ValidationError{}
	verr.collect(validate.Struct(inv))
	for i, p := range inv.Products {
		if p.ProductPrice.IsNegative() {
			verr.add("products["+strconv.Itoa(i)+"].productPrice", ErrNegativePrice)
		}
	}
	return verr.orNil()
}

package service

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const msgEmailTaken = "The email has already been taken."

// ValidationError carries per-field messages for rejected input.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

// HasErrors is safe to call on a nil receiver.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// Optional is an update field: Set reports whether the client sent the key,
// Null whether it sent an explicit null.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// CreateCustomerInput is the schema for creating a customer. annualSpend is
// bounded by the NUMERIC(12,2) column.
type CreateCustomerInput struct {
	Name             string           `json:"name" validate:"required,nonul,max=255"`
	Email            string           `json:"email" validate:"required,nonul,email,max=255"`
	AnnualSpend      *decimal.Decimal `json:"annualSpend" validate:"omitnil,gte=0,lte=9999999999.99"`
	LastPurchaseDate *time.Time       `json:"lastPurchaseDate"`

	// Rejected holds fields the caller could not decode. They are reported
	// alongside schema failures and are not checked again.
	Rejected *ValidationError `json:"-" validate:"-"`
}

// UpdateCustomerInput is the schema for a partial update. Every field is
// optional; fields that are set obey the same rules as on create.
type UpdateCustomerInput struct {
	Name             Optional[string]
	Email            Optional[string]
	AnnualSpend      Optional[decimal.Decimal]
	LastPurchaseDate Optional[time.Time]

	// Rejected is as on CreateCustomerInput.
	Rejected *ValidationError
}

// IsEmpty reports whether the input changes nothing and carries no rejected fields.
func (in UpdateCustomerInput) IsEmpty() bool {
	return !in.Name.Set && !in.Email.Set && !in.AnnualSpend.Set && !in.LastPurchaseDate.Set &&
		!in.Rejected.HasErrors()
}

// mergeRejected adds rejected's messages to verr, replacing whatever the
// schema said about the same fields.
func mergeRejected(verr, rejected *ValidationError) {
	if !rejected.HasErrors() {
		return
	}
	for field, msgs := range rejected.Fields {
		verr.Fields[field] = append([]string(nil), msgs...)
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	// Postgres text columns cannot hold NUL.
	_ = v.RegisterValidation("nonul", func(fl validator.FieldLevel) bool {
		return !strings.ContainsRune(fl.Field().String(), 0)
	})
	return v
}

// collectErrors converts validator failures into a ValidationError.
func collectErrors(verr *ValidationError, err error) error {
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), fieldMessage(fe))
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", fe.Field())
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("The %s field must be at least %s.", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("The %s field must not be greater than %s.", fe.Field(), fe.Param())
	case "nonul":
		return fmt.Sprintf("The %s field must not contain null characters.", fe.Field())
	default:
		return fmt.Sprintf("The %s field is invalid.", fe.Field())
	}
}

// Package validation provides request validation using the validator/v10 library.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/memorylane/memorylane-server/internal/domain"
	domainerrors "github.com/memorylane/memorylane-server/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our domain.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("calendardate", isCalendarDate)

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain validation error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func isCalendarDate(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	_, err := domain.ParseDate(fl.Field().String())
	return err == nil
}

// formatError converts validator errors to a domain error.
// The message lists the offending fields so clients that only read the
// message still learn what was wrong.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[fieldName(e)] = v.friendlyMessage(e)
	}

	fields := make([]string, 0, len(fieldErrors))
	for f := range fieldErrors {
		fields = append(fields, f+" "+fieldErrors[f])
	}
	sort.Strings(fields)

	return domainerrors.ValidationWithDetails(
		"validation failed: "+strings.Join(fields, "; "),
		fieldErrors,
	)
}

// fieldName strips the struct prefix from the namespace so nested slice
// elements read as "tags[3]" rather than "CreateMemoryRequest.tags[3]".
func fieldName(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func (v *Validator) friendlyMessage(e validator.FieldError) string {
	isCollection := e.Kind() == reflect.Slice || e.Kind() == reflect.Array || e.Kind() == reflect.Map

	switch e.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		if isCollection {
			return fmt.Sprintf("must contain at least %s items", e.Param())
		}
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		if isCollection {
			return fmt.Sprintf("must not contain more than %s items", e.Param())
		}
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "calendardate":
		return "must be a date (YYYY-MM-DD or RFC 3339)"
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}

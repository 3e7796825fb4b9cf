package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/retailpos/pos-system/internal/core/domain"
)

var maxRate = decimal.NewFromInt(100)

// requestValidator checks bound request DTOs for Echo's c.Validate.
type requestValidator struct {
	v *validator.Validate
}

// NewValidator builds the request validator. Field names in messages follow
// the json tag, and two tags are added for decimals sent as strings:
//
//	money  non-negative, at most two decimal places
//	rate   percentage between 0 and 100
func NewValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Decimals reach the tag functions as their canonical string.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("money", decimalRule(func(d decimal.Decimal) bool {
		return !d.IsNegative() && d.Equal(d.Round(2))
	}))
	_ = v.RegisterValidation("rate", decimalRule(func(d decimal.Decimal) bool {
		return !d.IsNegative() && d.LessThanOrEqual(maxRate)
	}))
	return &requestValidator{v: v}
}

func decimalRule(ok func(decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && ok(d)
	}
}

// Validate satisfies echo.Validator. Every failing field is reported in one
// validation error.
func (rv *requestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return domain.Invalid(nil, "%s", strings.Join(msgs, "; "))
}

func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "money":
		return fmt.Sprintf("%s must be a non-negative amount with at most 2 decimals, got %v", field, fe.Value())
	case "rate":
		return fmt.Sprintf("%s must be a percentage between 0 and 100, got %v", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

package middleware

import (
	"errors"
	"reflect"
	"strings"

	"github.com/documentiulia/backend/internal/domain/hr"
	"github.com/documentiulia/backend/internal/domain/shared/valueobject"
	"github.com/documentiulia/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// SetupValidator registers the Romanian validators on gin's engine:
//
//	cui       tax id with control digit, optional RO prefix
//	vat_rate  one of the legal VAT rates
//	period    YYYY-MM payroll period
//
// Field names in errors follow the json (or form) tag.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	RegisterValidators(v)
}

func RegisterValidators(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	// Money and quantities are validated as numbers.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("cui", func(fl validator.FieldLevel) bool {
		return valueobject.IsValidCUI(fl.Field().String())
	})
	_ = v.RegisterValidation("vat_rate", func(fl validator.FieldLevel) bool {
		return valueobject.IsValidVATRate(fl.Field().Float())
	})
	_ = v.RegisterValidation("period", func(fl validator.FieldLevel) bool {
		return hr.ValidatePeriod(fl.Field().String()) == nil
	})
}

// ValidationDetails turns binding errors into field details. Errors that are
// not validator errors (malformed JSON, wrong types) yield a single detail.
func ValidationDetails(err error) []dto.ValidationDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []dto.ValidationDetail{{Code: "malformed", Message: err.Error()}}
	}
	details := make([]dto.ValidationDetail, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, dto.ValidationDetail{
			Field:   fieldPath(e),
			Code:    e.Tag(),
			Message: validationMessage(e),
		})
	}
	return details
}

// fieldPath drops the struct name from the namespace: "lines[0].vat_rate".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		if e.Kind() == reflect.Slice {
			return "Must contain at least " + e.Param() + " items"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		if e.Kind() == reflect.Slice {
			return "Must contain at most " + e.Param() + " items"
		}
		return "Must be at most " + e.Param()
	case "len":
		return "Must be exactly " + e.Param() + " characters"
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "datetime":
		return "Must be a date in the format " + e.Param()
	case "numeric":
		return "Must be numeric"
	case "alphanum":
		return "Must be alphanumeric"
	case "cui":
		return "Must be a valid Romanian tax id (CUI)"
	case "vat_rate":
		return "VAT rate must be one of 0, 5, 9, 11, 19, 21"
	case "period":
		return "Period must have the form YYYY-MM"
	default:
		return "Invalid value"
	}
}

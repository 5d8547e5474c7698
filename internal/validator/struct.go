package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	playground "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	minCustomerAge = 18
	maxCustomerAge = 120
)

// FieldError is a single constraint violation keyed by the json field name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Invalid builds a ValidationError for one field.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

var now = time.Now

var validate = newValidate()

func newValidate() *playground.Validate {
	v := playground.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("nif", func(fl playground.FieldLevel) bool {
		return nifRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl playground.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("adult", func(fl playground.FieldLevel) bool {
		age := now().Year() - int(fl.Field().Int())
		return age >= minCustomerAge && age <= maxCustomerAge
	})
	_ = v.RegisterValidation("notfuture", func(fl playground.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		y, m, d := now().Date()
		endOfToday := time.Date(y, m, d+1, 0, 0, 0, 0, now().Location())
		return t.Before(endOfToday)
	})
	return v
}

// Struct runs the `validate` tags of s and converts failures into a ValidationError.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "nif":
		return "must be 8 digits followed by a letter"
	case "phone":
		return "must contain between 9 and 15 digits"
	case "adult":
		return fmt.Sprintf("age must be between %d and %d", minCustomerAge, maxCustomerAge)
	case "notfuture":
		return "must not be in the future"
	}
	return "is invalid"
}

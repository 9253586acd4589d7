package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"shopsphere/apperror"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput runs the struct's validate tags and reports the first
// failure as a ValidationError.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.Validation("Invalid request data").WithCause(err)
	}
	fe := verrs[0]
	field := strings.TrimPrefix(fe.Namespace(), typeName(in)+".")
	switch fe.Tag() {
	case "required":
		return apperror.Validation("%s is required", field)
	case "mongodb":
		return apperror.Validation("%s must be a valid id", field)
	case "email":
		return apperror.Validation("%s must be a valid email", field)
	default:
		return apperror.Validation("%s is invalid (%s)", field, fe.Tag())
	}
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

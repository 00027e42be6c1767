package resource

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/pcrs-client/internal/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks struct payloads against their `validate` tags. Other
// payload kinds (maps, raw JSON) pass through unchecked.
func Validate(payload any) error {
	v := reflect.ValueOf(payload)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	err := validate.Struct(v.Interface())
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := errors.FieldErrors{}
	for _, fe := range fieldErrs {
		fields[fe.Field()] = message(fe)
	}
	return &errors.ValidationError{Fields: fields}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return "Ensure this field has at least " + fe.Param() + " characters."
	case "gt", "gte":
		return "Ensure this value is greater than " + fe.Param() + "."
	}
	return fe.Error()
}

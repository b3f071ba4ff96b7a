package helper

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate is the shared validator; field names in errors follow json tags.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
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

// ValidateStruct runs validator tags and converts failures into *FieldErrors.
func ValidateStruct(s any) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return ErrValidation("Invalid input")
	}
	fe := &FieldErrors{}
	for _, e := range ves {
		fe.Add(e.Field(), messageFor(e))
	}
	return fe
}

func messageFor(e validator.FieldError) string {
	f := e.Field()
	switch e.Tag() {
	case "required":
		return f + " is required"
	case "email":
		return f + " must be a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", f, strings.ReplaceAll(e.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", f, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", f, e.Param())
	case "uuid", "uuid4":
		return f + " must be a valid UUID"
	case "url":
		return f + " must be a valid URL"
	default:
		return f + " is invalid"
	}
}

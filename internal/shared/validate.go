package shared

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Validator is the shared request validator. Field names in error output use
// the json tag so clients see the wire names.
var Validator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("complexity", passwordComplexity); err != nil {
		panic(err)
	}
	return v
}

// passwordComplexity requires at least one uppercase letter, one lowercase
// letter, and one digit.
func passwordComplexity(fl validator.FieldLevel) bool {
	var hasUpper, hasLower, hasDigit bool
	for _, ch := range fl.Field().String() {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}

// CheckStruct validates a request body and converts failures into per-field
// messages. Returns nil when the input is valid.
func CheckStruct(s any) map[string]string {
	err := Validator.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": "Invalid request body"}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "name":
		if fe.Tag() == "min" || fe.Tag() == "max" {
			return "Name must be between 2 and 50 characters"
		}
	case "email":
		if fe.Tag() == "email" {
			return "Please provide a valid email"
		}
	case "password":
		switch fe.Tag() {
		case "min":
			return "Password must be at least 8 characters"
		case "complexity":
			return "Password must contain at least one uppercase letter, one lowercase letter, and one number"
		}
	case "role":
		return "Role must be user, admin, or moderator"
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// NormalizeEmail lowercases and trims an email for use as a lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

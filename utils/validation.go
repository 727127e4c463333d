package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one entry of the validation-error list the API returns,
// mirroring the {param, msg} shape clients already consume.
type FieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
}

// ValidationErrors turns a gin binding error into per-field messages. Errors
// that are not field-level (malformed JSON, wrong content type) collapse into
// a single generic entry so every 400 body has the same shape.
func ValidationErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Param: "body", Msg: "Could not parse request data"}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Param: fieldName(fe), Msg: fieldMessage(fe)})
	}
	return out
}

func fieldName(fe validator.FieldError) string {
	return strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
}

func fieldMessage(fe validator.FieldError) string {
	name := fieldName(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "email":
		return "Valid email is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", name)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

package middleware

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
)

// fieldMessages holds the form error text per validator tag; {param} is
// replaced by the tag parameter.
var fieldMessages = map[string]string{
	"required": "This field is required.",
	"len":      "Must be exactly {param} characters",
	"numeric":  "Must be numeric",
	"number":   "Must be a whole number",
	"uuid":     "Invalid UUID format",
	"oneof":    "Must be one of: {param}",
	"min":      "Must be at least {param}",
	"max":      "Must be at most {param}",
	"gte":      "Must be greater than or equal to {param}",
	"datetime": "Enter a valid date.",
}

// SetupValidator makes gin's binding validator report fields by their json
// name, falling back to the form name for query and form-only fields.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(fieldName)
}

func fieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		name, _, _ = strings.Cut(fld.Tag.Get("form"), ",")
	}
	return name
}

// ValidationDetails converts a bind error into form errors. Errors that are
// not field validation failures (malformed JSON) come back as one detail
// with an empty field.
func ValidationDetails(err error) []dto.ValidationDetail {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []dto.ValidationDetail{{Message: err.Error()}}
	}
	details := make([]dto.ValidationDetail, len(fieldErrs))
	for i, fe := range fieldErrs {
		details[i] = dto.ValidationDetail{Field: fe.Field(), Message: fieldMessage(fe)}
	}
	return details
}

func fieldMessage(fe validator.FieldError) string {
	msg, ok := fieldMessages[fe.Tag()]
	if !ok {
		return "Invalid value"
	}
	return strings.ReplaceAll(msg, "{param}", fe.Param())
}

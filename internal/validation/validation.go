// Package validation decodes webhook bodies and turns decode and bound
// failures into per-field errors.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned by Bind when the body cannot be accepted.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Bind decodes the JSON body into obj and validates its binding tags. Any
// failure is reported as *Error.
func Bind(c *gin.Context, obj any) error {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}
	return toError(err)
}

func toError(err error) *Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   jsonName(fe.Field()),
				Message: describe(fe),
			})
		}
		return &Error{Fields: fields}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return &Error{Fields: []FieldError{{
			Field:   field,
			Message: "must be a string",
		}}}
	}

	if errors.Is(err, io.EOF) {
		return &Error{Fields: []FieldError{{Field: "body", Message: "request body is empty"}}}
	}

	return &Error{Fields: []FieldError{{Field: "body", Message: "malformed JSON"}}}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

var fieldNames = map[string]string{
	"Name":        "name",
	"Phone":       "phone",
	"Product":     "product",
	"UTMCampaign": "utm_campaign",
	"SourceURL":   "source_url",
	"Date":        "date",
	"Birthday":    "birthday",
	"Sex":         "sex",
	"Request":     "request",
	"Age":         "age",
	"Area":        "area",
	"Career":      "career",
	"RefererPage": "referer_page",
}

// jsonName maps a struct field name to its JSON key.
func jsonName(field string) string {
	if name, ok := fieldNames[field]; ok {
		return name
	}
	return strings.ToLower(field)
}

// Package validate checks tagged structs with go-playground/validator and
// reports failures under the names an operator would type: the env tag,
// else the json tag, else the Go field name.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one failed constraint.
type FieldError struct {
	Field   string
	Message string
	Value   string
}

// ValidationError collects every FieldError of one Struct call.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	var b strings.Builder
	b.WriteString(e.Message)
	for i, f := range e.Fields {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(f.Message)
	}
	return b.String()
}

// messages maps a validator tag to a format taking the field name and the tag parameter.
var messages = map[string]string{
	"required": "%s is required",
	"numeric":  "%s must be numeric",
	"min":      "%s must be at least %s",
	"gte":      "%s must be at least %s",
	"max":      "%s must be at most %s",
	"lte":      "%s must be at most %s",
	"gt":       "%s must be greater than %s",
	"oneof":    "%s must be one of: %s",
}

// The validator caches struct metadata, so one instance serves the process.
var shared = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	return v
})

// Struct validates s and returns a *ValidationError on failure.
func Struct(s any) error {
	err := shared().Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return &ValidationError{Message: err.Error()}
	}

	out := &ValidationError{Message: "validation failed", Fields: make([]FieldError, 0, len(ve))}
	for _, fe := range ve {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: message(fe),
			Value:   fmt.Sprint(fe.Value()),
		})
	}
	return out
}

func fieldName(fld reflect.StructField) string {
	for _, key := range [...]string{"env", "json"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return fld.Name
}

func message(fe validator.FieldError) string {
	format, ok := messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s failed on %s validation", fe.Field(), fe.Tag())
	}
	if strings.Count(format, "%s") == 1 {
		return fmt.Sprintf(format, fe.Field())
	}
	return fmt.Sprintf(format, fe.Field(), fe.Param())
}

// Package inputval validates request input structs using go-playground/validator
// struct tags and turns failures into short, user-facing messages.
//
// Structs declare rules with `validate:"..."` and the human label with
// `label:"..."`. The JSON name of the field (from the `json` tag) is reported
// as FieldError.Field so API clients can highlight the offending input.
package inputval

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule.
type FieldError struct {
	Field   string // JSON field name
	Message string // user-facing message
}

// Result collects the failures of one Validate call.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool {
	return r != nil && len(r.Errors) > 0
}

// First returns the first message, or "".
func (r *Result) First() string {
	if !r.HasErrors() {
		return ""
	}
	return r.Errors[0].Message
}

// FirstField returns the field of the first failure, or "".
func (r *Result) FirstField() string {
	if !r.HasErrors() {
		return ""
	}
	return r.Errors[0].Field
}

// All joins every message with "; ".
func (r *Result) All() string {
	if !r.HasErrors() {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
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
		registerCustomRules(v)
		validate = v
	})
	return validate
}

// Validate runs the struct-tag rules of v.
func Validate(v any) *Result {
	res := &Result{}
	err := instance().Struct(v)
	if err == nil {
		return res
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}

	rt := reflect.TypeOf(v)
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	for _, fe := range verrs {
		label := fe.Field()
		if sf, found := rt.FieldByName(fe.StructField()); found {
			if l := sf.Tag.Get("label"); l != "" {
				label = l
			}
		}
		res.Errors = append(res.Errors, FieldError{
			Field:   fe.Field(),
			Message: message(label, fe),
		})
	}
	return res
}

func message(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required.", label)
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s entries.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "email":
		return "A valid email address is required."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "httpurl":
		return fmt.Sprintf("%s must be a valid absolute URL (e.g., https://example.com).", label)
	case "hexcolor":
		return fmt.Sprintf("%s must be a hex color such as #3b82f6.", label)
	case "objectid":
		return fmt.Sprintf("%s is not a valid ID.", label)
	case "materialtype":
		return fmt.Sprintf("%s must be one of: note, pdf, link.", label)
	case "priority":
		return fmt.Sprintf("%s must be one of: high, medium, low.", label)
	case "eventtype":
		return fmt.Sprintf("%s must be one of: deadline, exam, meeting, other.", label)
	case "major":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.Join(majorsList(), ", "))
	case "academicyear":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.Join(academicYearsList(), ", "))
	default:
		return fmt.Sprintf("%s is invalid.", label)
	}
}

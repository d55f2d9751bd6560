package element

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldError is used to indicate an error with a specific record field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

type ValidationError struct {
	Subject string       `json:"subject"`
	Fields  []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " (" + f.Rule + ")"
	}
	return fmt.Sprintf("invalid %s: %s", e.Subject, strings.Join(parts, ", "))
}

// Validate checks the per-variant rules of e.
func Validate(e Element) error {
	if e == nil {
		return &ValidationError{Subject: "element", Fields: []FieldError{{Field: "type", Rule: "required"}}}
	}
	return ValidateStruct(string(e.Kind()), e)
}

// ValidateStruct runs the struct tag rules of v and reports failures as a
// *ValidationError labelled subject.
func ValidateStruct(subject string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate %s: %w", subject, err)
	}
	out := &ValidationError{Subject: subject}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}

// ValidColor reports whether s is a hex colour such as #1e90ff.
func ValidColor(s string) bool {
	return validate.Var(s, "required,hexcolor") == nil
}

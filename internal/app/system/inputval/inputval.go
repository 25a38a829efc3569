// Package inputval validates form input structs with go-playground/validator
// and turns failures into per-field messages a template can show.
package inputval

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// usernameRe allows letters, digits and @ . + - _ .
var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

var (
	once sync.Once
	v    *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their form name so errors line up with inputs.
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernameRe.MatchString(fl.Field().String())
		})
	})
	return v
}

// Result holds field name -> message for every failed field.
type Result struct {
	Errors map[string]string
}

// HasErrors reports whether any field failed.
func (r Result) HasErrors() bool { return len(r.Errors) > 0 }

// Field returns the message for a form field, or "".
func (r Result) Field(name string) string { return r.Errors[name] }

// Validate checks s against its `validate` tags. Messages use the `label`
// tag when present.
func Validate(s any) Result {
	res := Result{Errors: map[string]string{}}
	err := get().Struct(s)
	if err == nil {
		return res
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		res.Errors["_"] = err.Error()
		return res
	}

	t := reflect.Indirect(reflect.ValueOf(s)).Type()
	for _, fe := range verrs {
		label := fe.Field()
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if l := sf.Tag.Get("label"); l != "" {
				label = l
			}
		}
		if _, seen := res.Errors[fe.Field()]; !seen {
			res.Errors[fe.Field()] = message(label, fe)
		}
	}
	return res
}

// IsValidUsername reports whether s is an acceptable username.
func IsValidUsername(s string) bool {
	return s != "" && len(s) <= 150 && usernameRe.MatchString(s)
}

func message(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "email":
		return label + " must be a valid email address."
	case "username":
		return label + " may contain only letters, digits and @/./+/-/_ characters."
	case "eqfield":
		return label + " does not match."
	case "nefield":
		return label + " must differ from the current one."
	default:
		return label + " is invalid."
	}
}

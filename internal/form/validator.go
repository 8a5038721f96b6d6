package form

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator adapts go-playground/validator to echo's Validator interface.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// FieldErrors flattens a validator error into field -> message, the shape
// handlers return as the 400 body so clients can render errors inline.
func FieldErrors(err error) map[string]string {
	out := map[string]string{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		out["form"] = "invalid request"
		return out
	}
	for _, fe := range verrs {
		field := snake(fe.Field())
		switch fe.Tag() {
		case "required":
			out[field] = "this field is required"
		case "email":
			out[field] = "enter a valid email address"
		case "min":
			out[field] = "must be at least " + fe.Param() + " characters"
		case "max":
			out[field] = "must be at most " + fe.Param() + " characters"
		default:
			out[field] = "invalid value"
		}
	}
	return out
}

func snake(s string) string {
	var b strings.Builder
	var prevUpper bool
	for i, r := range s {
		upper := r >= 'A' && r <= 'Z'
		if upper {
			if i > 0 && !prevUpper {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
		prevUpper = upper
	}
	return b.String()
}

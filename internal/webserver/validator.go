package webserver

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// structValidator implements echo.Validator.
type structValidator struct {
	validate *validator.Validate
}

func newValidator() *structValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &structValidator{validate: v}
}

func (v *structValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// FieldErrors maps validation errors to field -> rule, nil for other errors.
func FieldErrors(err error) map[string]string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// Package validate wraps go-playground/validator with JSON field names,
// English messages and the custom tags the services use.
package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/mind-engage/mindengage-tasks/internal/apperr"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	notBlankTag = "notblank"
)

func init() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = Validate.RegisterValidation(notBlankTag, notBlankValidation)
	RegisterMessage(notBlankTag, "{0} cannot be blank")
	RegisterMessage("required", "{0} is required")
}

// RegisterMessage registers (or overrides) the English message for a tag.
// {0} is replaced with the field name.
func RegisterMessage(tag, text string) {
	_ = Validate.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Struct validates s and converts failures into an *apperr.ValidationError
// whose fields are named by their JSON path without the root type.
func Struct(msg string, s interface{}) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.NewValidationError(msg, apperr.FieldError{Field: "", Message: err.Error()})
	}
	flds := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		flds = append(flds, apperr.FieldError{Field: fieldPath(fe.Namespace()), Message: fe.Translate(Translator)})
	}
	return apperr.NewValidationError(msg, flds...)
}

func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

package middlewares

import (
	"errors"
	"reflect"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

type DefaultValidator struct {
	once       sync.Once
	validate   *validator.Validate
	translator ut.Translator
}

var _ binding.StructValidator = &DefaultValidator{}

func (v *DefaultValidator) ValidateStruct(obj any) error {
	if kindOfData(obj) == reflect.Struct {
		v.lazyinit()
		if err := v.validate.Struct(obj); err != nil {
			return err
		}
	}
	return nil
}

func (v *DefaultValidator) Engine() any {
	v.lazyinit()
	return v.validate
}

func (v *DefaultValidator) Translator() ut.Translator {
	v.lazyinit()
	return v.translator
}

func (v *DefaultValidator) lazyinit() {
	v.once.Do(func() {
		v.validate = validator.New(validator.WithRequiredStructEnabled())
		v.validate.SetTagName("binding")

		en := en.New()
		uni := ut.New(en, en)

		v.translator, _ = uni.GetTranslator("en")

		en_translations.RegisterDefaultTranslations(v.validate, v.translator)

		v.registerCustomTranslations()
	})
}

type translation struct {
	tag       string
	text      string
	withParam bool
}

var customTranslations = []translation{
	{tag: "required", text: "{0} is required"},
	{tag: "numeric", text: "{0} must be a numeric id"},
	{tag: "max", text: "{0} must be at most {1}", withParam: true},
	{tag: "min", text: "{0} must be at least {1}", withParam: true},
	{tag: "gt", text: "{0} must be greater than {1}", withParam: true},
}

func (v *DefaultValidator) registerCustomTranslations() {
	for _, tr := range customTranslations {
		v.validate.RegisterTranslation(tr.tag, v.translator, func(ut ut.Translator) error {
			return ut.Add(tr.tag, tr.text, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			params := []string{fe.Field()}
			if tr.withParam {
				params = append(params, fe.Param())
			}
			t, _ := ut.T(tr.tag, params...)
			return t
		})
	}
}

func TranslateValidationErrors(err error) []string {
	var messages []string

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		if v, ok := binding.Validator.(*DefaultValidator); ok {
			trans := v.Translator()
			for _, e := range validationErrs {
				messages = append(messages, e.Translate(trans))
			}
		}
	}

	return messages
}

func TranslateValidationError(err error) string {
	messages := TranslateValidationErrors(err)
	if len(messages) > 0 {
		return messages[0]
	}
	return err.Error()
}

func kindOfData(data any) reflect.Kind {
	value := reflect.ValueOf(data)
	valueType := value.Kind()

	if valueType == reflect.Pointer {
		valueType = value.Elem().Kind()
	}

	return valueType
}

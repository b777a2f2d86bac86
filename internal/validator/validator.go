package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var translator ut.Translator

// Setup wires English translations and JSON field names into Gin's
// binding validator. Call once at startup, before the router is built.
func Setup() {
	engine, ok := binding.Validator.Engine().(*govalidator.Validate)
	if !ok {
		return
	}

	engine.RegisterTagNameFunc(jsonFieldName)

	locale := en.New()
	translator, _ = ut.New(locale, locale).GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(engine, translator)
}

// jsonFieldName reports a struct field by its json tag so validation
// messages match the wire names clients send.
func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// Bind decodes the JSON body into dst and validates it. On failure it
// returns a field-to-message map ready for the error envelope; malformed
// JSON collapses into a single "detail" entry.
func Bind(c *gin.Context, dst any) map[string]string {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}

	fields := make(map[string]string)
	var verrs govalidator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Translate(translator)
		}
		return fields
	}
	fields["detail"] = err.Error()
	return fields
}

package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/de"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	de_translations "github.com/go-playground/validator/v10/translations/de"

	"absencecli/pkg/contracts/domain"
)

// columnNames maps struct fields to the export column they come from, so
// messages name what the user sees in the spreadsheet
var columnNames = map[string]string{
	"AbsenceField": "Abwesenheitszeit",
	"PersonName":   "Name",
	"StatusText":   "Status",
	"UpdatedAt":    "Aktualisiert am",
	"Duration":     "Dauer",
}

// RowValidator validates entries with struct tags and renders German messages
type RowValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

var (
	rowOnce sync.Once
	rowSvc  *RowValidator
)

// NewRowValidator returns the shared row validator
func NewRowValidator() *RowValidator {
	rowOnce.Do(func() {
		deLoc := de.New()
		uni := ut.New(en.New(), deLoc)
		trans, _ := uni.GetTranslator("de")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if name, ok := columnNames[fld.Name]; ok {
				return name
			}
			return fld.Name
		})
		_ = de_translations.RegisterDefaultTranslations(v, trans)

		rowSvc = &RowValidator{validate: v, translator: trans}
	})
	return rowSvc
}

// ValidateRaw checks one raw input row and returns a German message for the
// first failing field, or "" when the row is valid
func (rv *RowValidator) ValidateRaw(raw domain.RawEntry) string {
	return rv.message(rv.validate.Struct(raw))
}

// ValidateNormalized checks a normalized entry
func (rv *RowValidator) ValidateNormalized(entry domain.NormalizedEntry) string {
	return rv.message(rv.validate.Struct(entry))
}

// ValidateStruct validates any tagged struct and joins all messages
func (rv *RowValidator) ValidateStruct(s any) string {
	err := rv.validate.Struct(s)
	if err == nil {
		return ""
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(rv.translator))
	}
	return strings.Join(msgs, "; ")
}

func (rv *RowValidator) message(err error) string {
	if err == nil {
		return ""
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	return verrs[0].Translate(rv.translator)
}

package validate

import (
	"errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"
)

// Careers lists the tracks a bootcamp may advertise.
var Careers = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX",
	"Data Science",
	"Business",
	"Other",
}

var validate *validator.Validate

var translator ut.Translator

func init() {

	validate = validator.New()

	translator, _ = ut.New(en.New(), en.New()).GetTranslator("en")
	en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterValidation("career", func(fl validator.FieldLevel) bool {
		return IsCareer(fl.Field().String())
	})
	validate.RegisterTranslation("career", translator,
		func(ut ut.Translator) error {
			return ut.Add("career", "{0} must be one of Web Development, Mobile Development, UI/UX, Data Science, Business or Other", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("career", fe.Field())
			return t
		},
	)
}

func IsCareer(s string) bool {
	for _, c := range Careers {
		if c == s {
			return true
		}
	}
	return false
}

func Check(val any) error {
	if err := validate.Struct(val); err != nil {

		verrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}

		if len(verrors) < 1 {
			return nil
		}

		return errors.New(verrors[0].Translate(translator))
	}

	return nil
}

func GenerateID() string {
	return uuid.NewString()
}

// CheckID accepts only the canonical hyphenated form. uuid.Parse also takes
// braced, urn and unhyphenated ids, which the store would not match.
func CheckID(id string) error {
	if len(id) != 36 {
		return errors.New("ID is not in its proper form")
	}
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("ID is not in its proper form")
	}
	return nil
}

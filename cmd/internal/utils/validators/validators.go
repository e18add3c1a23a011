package validators

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"meetcal/cmd/internal/schedule"
)

func HasUpper(fl validator.FieldLevel) bool {
	return strings.ContainsFunc(fl.Field().String(), unicode.IsUpper)
}

func HasLower(fl validator.FieldLevel) bool {
	return strings.ContainsFunc(fl.Field().String(), unicode.IsLower)
}

func HasDigit(fl validator.FieldLevel) bool {
	return strings.ContainsFunc(fl.Field().String(), unicode.IsDigit)
}

func HasSpecial(fl validator.FieldLevel) bool {
	return strings.ContainsFunc(fl.Field().String(), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func NoWhiteSpaces(fl validator.FieldLevel) bool {
	return !strings.ContainsFunc(fl.Field().String(), unicode.IsSpace)
}

// ClockTime accepts "HH:MM" or "HH:MM:SS" wall-clock strings.
func ClockTime(fl validator.FieldLevel) bool {
	_, err := schedule.ParseTimeOfDay(fl.Field().String())
	return err == nil
}

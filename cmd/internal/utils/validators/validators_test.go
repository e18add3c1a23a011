package validators

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func newValidate(t *testing.T) *validator.Validate {
	t.Helper()

	v := validator.New()
	for name, fn := range map[string]validator.Func{
		"hasupper":   HasUpper,
		"haslower":   HasLower,
		"hasdigit":   HasDigit,
		"hasspecial": HasSpecial,
		"nospaces":   NoWhiteSpaces,
		"clocktime":  ClockTime,
	} {
		if err := v.RegisterValidation(name, fn); err != nil {
			t.Fatalf("failed to register %s: %v", name, err)
		}
	}
	return v
}

func TestPasswordValidators(t *testing.T) {
	v := newValidate(t)

	tests := []struct {
		tag   string
		value string
		valid bool
	}{
		{"hasupper", "Password", true},
		{"hasupper", "password", false},
		{"haslower", "Password", true},
		{"haslower", "PASSWORD", false},
		{"hasdigit", "pass1", true},
		{"hasdigit", "pass", false},
		{"hasspecial", "pass!", true},
		{"hasspecial", "pass1", false},
		{"nospaces", "username", true},
		{"nospaces", "user name", false},
		{"nospaces", "user\tname", false},
	}

	for _, tt := range tests {
		err := v.Var(tt.value, tt.tag)
		if (err == nil) != tt.valid {
			t.Errorf("%s(%q): err = %v, want valid=%v", tt.tag, tt.value, err, tt.valid)
		}
	}
}

func TestClockTime(t *testing.T) {
	v := newValidate(t)

	tests := []struct {
		value string
		valid bool
	}{
		{"14:15", true},
		{"00:00", true},
		{"23:59:59", true},
		{"24:00", false},
		{"14:60", false},
		{"14", false},
		{"2pm", false},
		{"", false},
	}

	for _, tt := range tests {
		err := v.Var(tt.value, "clocktime")
		if (err == nil) != tt.valid {
			t.Errorf("clocktime(%q): err = %v, want valid=%v", tt.value, err, tt.valid)
		}
	}
}

// Package validator provides custom validation rules for request binding.
package validator

import (
	"regexp"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Custom validation tags
const (
	TagPassword     = "password"     // Password (min 8 chars, at least 1 letter and 1 number)
	TagSlug         = "slug"         // URL slug (lowercase alphanumeric and hyphens)
	TagNoWhitespace = "nowhitespace" // No whitespace characters
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Register registers the custom rules on the given validate instance.
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		TagPassword:     validatePassword,
		TagSlug:         validateSlug,
		TagNoWhitespace: validateNoWhitespace,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// RegisterWithGin registers the custom rules on gin's binding engine.
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return Register(v)
}

// validatePassword validates basic password requirements.
// At least 8 characters, containing at least 1 letter and 1 number.
// Empty values pass; combine with "required" to reject them.
func validatePassword(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}

	if len(value) < 8 {
		return false
	}

	hasLetter := false
	hasNumber := false

	for _, char := range value {
		if unicode.IsLetter(char) {
			hasLetter = true
		}
		if unicode.IsDigit(char) {
			hasNumber = true
		}
		if hasLetter && hasNumber {
			return true
		}
	}

	return hasLetter && hasNumber
}

// validateSlug validates URL slug format.
func validateSlug(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return slugRegex.MatchString(value)
}

// validateNoWhitespace validates that string contains no whitespace.
func validateNoWhitespace(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}

	for _, char := range value {
		if unicode.IsSpace(char) {
			return false
		}
	}

	return true
}

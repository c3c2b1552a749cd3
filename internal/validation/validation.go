// Package validation converts raw form input into typed commands and checks
// them with go-playground/validator before any business logic runs.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/example/mangabrew/internal/errors"
)

var (
	fullNamePattern   = regexp.MustCompile(`^[A-Za-z ]{2,50}$`)
	usernamePattern   = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)
	phonePattern      = regexp.MustCompile(`^\d{11}$`)
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	cardExpiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	register("fullname", fullNamePattern)
	register("username", usernamePattern)
	register("phone11", phonePattern)
	_ = validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
}

func register(tag string, pattern *regexp.Regexp) {
	_ = validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	})
}

// StrongPassword requires at least 8 characters with a letter and a digit.
func StrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

var messages = map[string]string{
	"FullName.required":        "Full name is required",
	"FullName.fullname":        "Full name must be 2-50 characters long and contain only letters and spaces",
	"Username.required":        "Username is required",
	"Username.username":        "Username must be 3-20 characters long and contain only letters, numbers, and underscores",
	"Email.required":           "Email is required",
	"Email.email":              "Invalid email format",
	"Password.required":        "Password is required",
	"Password.password":        "Password must be at least 8 characters long and contain at least one letter and one number",
	"ConfirmPassword.required": "Please confirm your password",
	"ConfirmPassword.eqfield":  "Passwords do not match",
	"Phone.phone11":            "Phone number must be 11 digits",
	"Identifier.required":      "Please enter your username or email",
	"CurrentPassword.required": "Current password is required",
	"NewPassword.required":     "New password is required",
	"NewPassword.password":     "Password must be at least 8 characters long and contain at least one letter and one number",
	"Rating.min":               "Invalid rating value",
	"Rating.max":               "Invalid rating value",
	"Rating.required":          "Please fill in all required fields",
	"Title.required":           "Please fill in all required fields",
	"Content.required":         "Please fill in all required fields",
	"Emoji.required":           "Invalid reaction data",
}

// Struct validates a command and returns a *errors.ValidationError listing
// one message per failing field.
func Struct(cmd any) error {
	err := validate.Struct(cmd)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	seen := map[string]bool{}
	out := apperrors.NewValidationError()
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
		if !seen[msg] {
			seen[msg] = true
			out.Messages = append(out.Messages, msg)
		}
	}
	return out
}

// CardBytes checks the three card fields against their formats. Number and
// CVV stay in wipeable buffers.
func CardBytes(number []byte, expiry string, cvv []byte) bool {
	return cardNumberPattern.Match(number) &&
		cardExpiryPattern.MatchString(expiry) &&
		cvvPattern.Match(cvv)
}

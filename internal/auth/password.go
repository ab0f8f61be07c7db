package auth

import (
	"errors"
	"regexp"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password using bcrypt with DefaultCost.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword compares a bcrypt hash with a candidate plaintext password.
func CheckPassword(hash, pw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
}

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// ValidatePasswordStrength enforces the account password policy:
// 12+ characters, upper, lower, digit and special character.
func ValidatePasswordStrength(pw string) error {
	switch {
	case utf8.RuneCountInString(pw) < 12:
		return errors.New("senha deve ter no mínimo 12 caracteres")
	case !upperRe.MatchString(pw):
		return errors.New("senha deve conter ao menos uma letra maiúscula")
	case !lowerRe.MatchString(pw):
		return errors.New("senha deve conter ao menos uma letra minúscula")
	case !digitRe.MatchString(pw):
		return errors.New("senha deve conter ao menos um número")
	case !specialRe.MatchString(pw):
		return errors.New("senha deve conter ao menos um caractere especial")
	}
	return nil
}

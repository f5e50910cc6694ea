package validation

import (
	"regexp"
	"unicode"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Username: letters, digits, underscores and dots, 3-30 chars.
var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_.]{3,30}$`)

// Indian PIN code: six digits, first non-zero.
var pincodeRe = regexp.MustCompile(`^[1-9][0-9]{5}$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

func IsValidUsername(username string) bool {
	return usernameRe.MatchString(username)
}

// IsValidPassword requires at least 8 characters with at least one letter,
// one digit and one special character.
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter, hasDigit, hasSpecial := false, false, false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	return hasLetter && hasDigit && hasSpecial
}

// IsValidPincode accepts empty (optional field) or a six digit PIN code.
func IsValidPincode(pincode string) bool {
	return pincode == "" || pincodeRe.MatchString(pincode)
}

package core

import (
	"regexp"
	"strings"
)

var (
	isbnPattern  = regexp.MustCompile(`^(\d{10}|\d{13})$`)
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
)

// RequireNonBlank trims value and rejects empty input.
func RequireNonBlank(value, field string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", Invalidf("%s must not be empty", field)
	}
	return trimmed, nil
}

// ValidateISBN strips dashes and requires 10 or 13 digits.
func ValidateISBN(isbn string) (string, error) {
	trimmed, err := RequireNonBlank(isbn, "ISBN")
	if err != nil {
		return "", err
	}
	cleaned := strings.ReplaceAll(trimmed, "-", "")
	if !isbnPattern.MatchString(cleaned) {
		return "", Invalidf("ISBN must be 10 or 13 digits")
	}
	return cleaned, nil
}

// ValidateEmail trims and checks the address shape.
func ValidateEmail(email string) (string, error) {
	trimmed, err := RequireNonBlank(email, "Email")
	if err != nil {
		return "", err
	}
	if !emailPattern.MatchString(trimmed) {
		return "", Invalidf("Email format is invalid")
	}
	return trimmed, nil
}

// LooksLikeISBN reports whether the input could be an ISBN once dashes
// are stripped. Used when a key may be either an ISBN or a book alias.
func LooksLikeISBN(value string) bool {
	return isbnPattern.MatchString(strings.ReplaceAll(strings.TrimSpace(value), "-", ""))
}

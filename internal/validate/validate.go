package validate

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MaxTitle     = 128
	MaxCategory  = 128
	MaxCondition = 64
	MaxImageURL  = 250
	MaxQuery     = 100
)

var (
	reEmail    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reUsername = regexp.MustCompile(`^[\p{L}0-9@.+_-]+$`)
)

// Text trims s and requires 1..max characters. max <= 0 means unbounded.
func Text(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if max > 0 && utf8.RuneCountInString(s) > max {
		return s, false
	}
	return s, true
}

// ImageURL accepts an absolute http(s) URL of bounded length.
func ImageURL(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > MaxImageURL {
		return s, false
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return s, false
	}
	return s, true
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Username allows letters, digits and @/./+/-/_ , 4 to 150 characters.
func Username(s string) (string, bool) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n < 4 || n > 150 {
		return s, false
	}
	return s, reUsername.MatchString(s)
}

// Password enforces a length window for registration.
func Password(s string) bool {
	l := len(s)
	return l >= 8 && l <= 128
}

// ID parses a positive integer resource identifier.
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Page parses a 1-based page number; empty means the first page.
func Page(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Q validates a search query: trims, rejects control characters, clamps length.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if utf8.RuneCountInString(s) > MaxQuery {
		s = string([]rune(s)[:MaxQuery])
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return "", false
		}
	}
	return s, true
}

package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reTag   = regexp.MustCompile(`^[a-z0-9_]{1,32}$`)
	rePhone = regexp.MustCompile(`^\+?[0-9 ]{7,16}$`)
	reState = regexp.MustCompile(`^(PLACED|CONFIRMED|SHIPPED|DELIVERED|CANCELED)$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 50 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Term bounds a shop search term. The term is matched as plain text, so it is
// kept as typed; empty means "no search".
func Term(s string) (string, bool) {
	if !utf8.ValidString(s) || utf8.RuneCountInString(s) > 50 {
		return "", false
	}
	return s, true
}

// Category accepts the "all" sentinel or a lowercase tag.
func Category(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "all" {
		return "all", true
	}
	return s, reTag.MatchString(s)
}

func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > 50 {
		return 50
	} // clamp to avoid abuse
	return n
}

// Delta accepts the stepper values only.
func Delta(s string) (int, bool) {
	switch strings.TrimSpace(s) {
	case "1", "+1":
		return 1, true
	case "-1":
		return -1, true
	}
	return 0, false
}

func Rating(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil && n >= 1 && n <= 5
}

// ID validates a simple resource identifier (product/order ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > 40 {
		return "", false
	}
	return s, true
}

func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePhone.MatchString(s)
}

// Text bounds free text such as addresses and review comments.
func Text(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	return s, utf8.RuneCountInString(s) <= max
}

func OrderStatus(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	return s, reState.MatchString(s)
}

// Password enforces a simple length window for login checks.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 20 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}

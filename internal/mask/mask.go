// Package mask partially redacts contact identifiers before they reach
// narration or logs. Masked values keep just enough of the original to be
// recognizable to their owner: a phone number keeps its country code and last
// two digits, an email keeps the first and last character of the local part
// plus the domain.
package mask

import (
	"regexp"
	"strings"
)

const maskRune = '*'

var (
	// Matches email addresses. Kept deliberately loose: catalog data entered
	// by hand contains addresses with dots, plus signs and digits.
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	// Matches phone-like digit sequences: an optional +CC prefix and at least
	// eight digits overall, allowing spaces, dashes and parentheses inside.
	phonePattern = regexp.MustCompile(`\+?\d[\d\s()\-]{6,}\d`)
)

// Value masks every phone number and email address found in s.
func Value(s string) string {
	s = emailPattern.ReplaceAllStringFunc(s, maskEmail)
	s = phonePattern.ReplaceAllStringFunc(s, maskPhone)
	return s
}

// Rows masks every cell of a result set in place and returns it.
func Rows(rows [][]string) [][]string {
	for _, row := range rows {
		for i, cell := range row {
			row[i] = Value(cell)
		}
	}
	return rows
}

func maskEmail(addr string) string {
	at := strings.LastIndex(addr, "@")
	if at <= 0 {
		return addr
	}
	local, domain := addr[:at], addr[at:]

	if len(local) <= 2 {
		return strings.Repeat(string(maskRune), len(local)) + domain
	}
	// First and last character survive; the middle is collapsed to a fixed
	// number of mask characters so length is not leaked either.
	return string(local[0]) + strings.Repeat(string(maskRune), 3) + string(local[len(local)-1]) + domain
}

func maskPhone(num string) string {
	digits := 0
	for _, r := range num {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 8 {
		return num
	}

	// Keep a short visible head (four digits when a +country prefix is
	// present, two otherwise) and the trailing two digits.
	keepHead := 2
	if strings.HasPrefix(num, "+") {
		keepHead = 4
	}
	keepTail := 2

	var b strings.Builder
	seen := 0
	for _, r := range num {
		if r < '0' || r > '9' {
			b.WriteRune(r)
			continue
		}
		seen++
		if seen <= keepHead || seen > digits-keepTail {
			b.WriteRune(r)
		} else {
			b.WriteRune(maskRune)
		}
	}
	return b.String()
}

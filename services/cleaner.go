package services

import (
	"regexp"
	"strings"
)

// nonNumericRegexp matches everything a cleaned value may not contain.
var nonNumericRegexp = regexp.MustCompile(`[^\d-]`)

// CleanValue reduces a rendered cell ("-$1,200", "55%", "+3pp") to its
// digits, keeping a minus sign only when it precedes the first digit.
// A value with no digits cleans to "". CleanValue(CleanValue(s)) == CleanValue(s).
func CleanValue(raw string) string {
	s := nonNumericRegexp.ReplaceAllString(strings.TrimSpace(raw), "")
	negative := strings.HasPrefix(s, "-")
	digits := strings.ReplaceAll(s, "-", "")
	if digits == "" {
		return ""
	}
	if negative {
		return "-" + digits
	}
	return digits
}

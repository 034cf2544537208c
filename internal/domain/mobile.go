package domain

import (
	"strconv"
	"strings"
)

// ParseMobile accepts a ten digit number that does not start with 0 or a
// country prefix.
func ParseMobile(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if len(s) != 10 || s[0] == '+' || s[0] == '0' {
		return 0, ErrInvalidMobile
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalidMobile
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidMobile
	}
	return n, nil
}

package report

import (
	"fmt"
	"regexp"
)

var periodRe = regexp.MustCompile(`^Q([1-4])-(\d{4})$`)

// ValidPeriod reports whether s is a quarter period like "Q1-2025".
func ValidPeriod(s string) bool {
	return periodRe.MatchString(s)
}

// ParsePeriod splits a period into quarter and year.
func ParsePeriod(s string) (quarter int, year int, err error) {
	m := periodRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("período inválido: %q (esperado Q1-2025)", s)
	}
	fmt.Sscanf(m[1], "%d", &quarter)
	fmt.Sscanf(m[2], "%d", &year)
	return quarter, year, nil
}

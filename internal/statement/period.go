package statement

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"mbh/ledger-sync/internal/dateutils"
)

// Period is a calendar month.
type Period struct {
	Month time.Month
	Year  int
}

// ParsePeriod accepts a month name or number followed by a two or four digit
// year: "MAY 24", "may 2024", "05-2024", "5/24".
func ParsePeriod(s string) (Period, error) {
	parts := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return r == ' ' || r == '-' || r == '/' || r == '.'
	})
	if len(parts) != 2 {
		return Period{}, fmt.Errorf("invalid period %q: expected month and year (e.g. MAY 24)", s)
	}

	month, err := parseMonth(parts[0])
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: %w", s, err)
	}
	year, err := parseYear(parts[1])
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: %w", s, err)
	}
	return Period{Month: month, Year: year}, nil
}

func parseMonth(s string) (time.Month, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("month %d out of range", n)
		}
		return time.Month(n), nil
	}
	lower := strings.ToLower(s)
	if len(lower) >= 3 {
		for m := time.January; m <= time.December; m++ {
			if strings.HasPrefix(strings.ToLower(m.String()), lower) {
				return m, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown month %q", s)
}

func parseYear(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	switch len(s) {
	case 2:
		return 2000 + n, nil
	case 4:
		return n, nil
	}
	return 0, fmt.Errorf("invalid year %q", s)
}

// Contains reports whether t falls in the period
func (p Period) Contains(t time.Time) bool {
	return dateutils.InMonth(t, p.Month, p.Year)
}

// String returns MM-YYYY, as used in statement file names.
func (p Period) String() string {
	return fmt.Sprintf("%02d-%d", int(p.Month), p.Year)
}

// Label returns the human form, e.g. "May 2024".
func (p Period) Label() string {
	return fmt.Sprintf("%s %d", p.Month.String(), p.Year)
}

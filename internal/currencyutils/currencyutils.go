// Package currencyutils parses and formats rupee amounts.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var currencyNoise = regexp.MustCompile(`(?i)(₹|rs\.?|inr|\s)`)

// ParseAmount parses an amount cell into a decimal. Empty cells and a lone
// dash are zero. Commas are digit grouping ("1,23,456.50").
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	standardized := StandardizeAmount(amountStr)
	if standardized == "" || standardized == "-" {
		return decimal.Zero, nil
	}

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return amount, nil
}

// ParseAmountOrZero is ParseAmount with failures treated as zero.
func ParseAmountOrZero(amountStr string) decimal.Decimal {
	amount, err := ParseAmount(amountStr)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// StandardizeAmount strips currency markers, whitespace and grouping commas.
// A parenthesised amount is negative.
func StandardizeAmount(amountStr string) string {
	s := currencyNoise.ReplaceAllString(amountStr, "")
	s = strings.ReplaceAll(s, ",", "")
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") && len(s) > 2 {
		s = "-" + s[1:len(s)-1]
	}
	return s
}

// FormatINR formats an amount with two decimals and Indian digit grouping:
// the last three integer digits, then groups of two ("12,34,567.80").
func FormatINR(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var grouped string
	if len(intPart) <= 3 {
		grouped = intPart
	} else {
		head, tail := intPart[:len(intPart)-3], intPart[len(intPart)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		grouped = strings.Join(append(groups, tail), ",")
	}

	if amount.IsNegative() {
		return "-" + grouped + "." + frac
	}
	return grouped + "." + frac
}

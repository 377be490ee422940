// Package dateutils provides the date layouts and parsing used by ledger
// inputs, remote tabs and statements.
package dateutils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Date layouts seen in ledger files and tabs
const (
	DateLayoutLedger    = "02-01-2006"
	DateLayoutPurchase  = "02-Jan-06"
	DateLayoutPayment   = "02/01/2006"
	DateLayoutISO       = "2006-01-02"
	DateLayoutFull      = "2006-01-02 15:04:05"
	DateLayoutWithMonth = "2-Jan-2006"
)

// CommonFormats is the fallback list tried after any preferred layouts.
// Day-first layouts come before month-first ones.
var CommonFormats = []string{
	DateLayoutLedger,
	DateLayoutPurchase,
	"2-Jan-06",
	DateLayoutWithMonth,
	"02-Jan-2006",
	DateLayoutPayment,
	"2/1/2006",
	DateLayoutISO,
	DateLayoutFull,
	DateLayoutISO + "T15:04:05",
	"02.01.2006",
	"02 Jan 2006",
	"2 January 2006",
}

var whitespace = regexp.MustCompile(`\s+`)

// CleanDateString trims, collapses whitespace and drops surrounding parentheses
func CleanDateString(dateStr string) string {
	dateStr = strings.TrimSpace(dateStr)
	dateStr = strings.TrimPrefix(dateStr, "(")
	dateStr = strings.TrimSuffix(dateStr, ")")
	dateStr = strings.TrimSpace(dateStr)
	return whitespace.ReplaceAllString(dateStr, " ")
}

// ParseDate parses dateStr trying the preferred layouts first, then
// CommonFormats, then an Excel serial day number. It returns the parsed date
// and the layout that matched ("serial" for Excel serials).
func ParseDate(dateStr string, preferred ...string) (time.Time, string, error) {
	cleaned := CleanDateString(dateStr)
	if cleaned == "" {
		return time.Time{}, "", fmt.Errorf("unable to parse date: empty value")
	}

	for _, layout := range append(preferred, CommonFormats...) {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, layout, nil
		}
	}

	if serial, err := strconv.ParseFloat(cleaned, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return TruncateToDay(t), "serial", nil
		}
	}

	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// FormatLedgerDate formats a date as DD-MM-YYYY
func FormatLedgerDate(date time.Time) string {
	return date.Format(DateLayoutLedger)
}

// TruncateToDay drops the time of day
func TruncateToDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfMonth returns the first day of the month for a given date
func StartOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
}

// EndOfMonth returns the last day of the month for a given date
func EndOfMonth(date time.Time) time.Time {
	return StartOfMonth(date).AddDate(0, 1, -1)
}

// InMonth reports whether date falls in the given month and year
func InMonth(date time.Time, month time.Month, year int) bool {
	return date.Month() == month && date.Year() == year
}

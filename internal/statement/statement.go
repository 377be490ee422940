// Package statement answers balance and statement lookups against the
// remote ledger and renders monthly statements as PDF.
package statement

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mbh/ledger-sync/internal/currencyutils"
	"mbh/ledger-sync/internal/dateutils"
	"mbh/ledger-sync/internal/models"

	"github.com/shopspring/decimal"
)

// ErrNoData is returned when a firm has no rows in the requested period.
var ErrNoData = errors.New("no data found")

// Line is one ledger row in a statement.
type Line struct {
	Date      time.Time
	Reference string
	Credit    decimal.Decimal
	Debit     decimal.Decimal
}

// Statement is a firm's ledger rows for one month with totals.
type Statement struct {
	Firm        string
	Period      Period
	Lines       []Line
	TotalCredit decimal.Decimal
	TotalDebit  decimal.Decimal
}

// Net returns total credit minus total debit.
func (s *Statement) Net() decimal.Decimal {
	return s.TotalCredit.Sub(s.TotalDebit)
}

// NetLine describes the net as payable (positive) or receivable.
func (s *Statement) NetLine() string {
	net := s.Net()
	if net.IsPositive() {
		return "Net Payable:  " + currencyutils.FormatINR(net)
	}
	return "Net Receivable:  " + currencyutils.FormatINR(net.Abs())
}

// Build collects the rows of a tab that fall in period. rows are the tab's
// displayed values including the scaffold rows. Rows whose date cannot be
// read are left out; amounts that cannot be read count as zero.
func Build(firm string, period Period, rows [][]string) (*Statement, error) {
	st := &Statement{
		Firm:        firm,
		Period:      period,
		TotalCredit: decimal.Zero,
		TotalDebit:  decimal.Zero,
	}
	for i, row := range rows {
		if i < models.HeaderRows || len(row) < 3 {
			continue
		}
		date, _, err := dateutils.ParseDate(row[0], dateutils.DateLayoutLedger)
		if err != nil || !period.Contains(date) {
			continue
		}
		line := Line{
			Date:      date,
			Reference: strings.TrimSpace(row[1]),
			Credit:    currencyutils.ParseAmountOrZero(row[2]),
			Debit:     decimal.Zero,
		}
		if len(row) > 3 {
			line.Debit = currencyutils.ParseAmountOrZero(row[3])
		}
		st.Lines = append(st.Lines, line)
		st.TotalCredit = st.TotalCredit.Add(line.Credit)
		st.TotalDebit = st.TotalDebit.Add(line.Debit)
	}

	if len(st.Lines) == 0 {
		return nil, fmt.Errorf("%w for %s in %s", ErrNoData, firm, period.Label())
	}
	return st, nil
}

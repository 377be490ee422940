package models

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNegativeAmount is returned when a credit or debit is below zero.
var ErrNegativeAmount = errors.New("amount must not be negative")

// LedgerRow is one dated entry in a counterparty's ledger.
// Rows are values and are never modified after construction.
type LedgerRow struct {
	Date      time.Time
	Reference string
	Credit    decimal.Decimal
	Debit     decimal.Decimal
}

// NewLedgerRow validates the amounts and builds a LedgerRow.
func NewLedgerRow(date time.Time, reference string, credit, debit decimal.Decimal) (LedgerRow, error) {
	if credit.IsNegative() {
		return LedgerRow{}, fmt.Errorf("credit %s: %w", credit.String(), ErrNegativeAmount)
	}
	if debit.IsNegative() {
		return LedgerRow{}, fmt.Errorf("debit %s: %w", debit.String(), ErrNegativeAmount)
	}
	return LedgerRow{
		Date:      date,
		Reference: strings.TrimSpace(reference),
		Credit:    credit,
		Debit:     debit,
	}, nil
}

// FormattedDate returns the date in the tab's DD-MM-YYYY layout
func (r LedgerRow) FormattedDate() string {
	return r.Date.Format(DateLayout)
}

// Values renders the row as the four cells of a tab data row.
func (r LedgerRow) Values() []string {
	return []string{r.FormattedDate(), r.Reference, r.Credit.String(), r.Debit.String()}
}

// Net returns credit minus debit for this row
func (r LedgerRow) Net() decimal.Decimal {
	return r.Credit.Sub(r.Debit)
}

// DedupeKey identifies the row within a counterparty's ledger. occurrence
// distinguishes rows that are otherwise identical within one input file.
func (r LedgerRow) DedupeKey(counterparty string, occurrence int) string {
	h := sha256.New()
	for _, part := range []string{
		counterparty,
		r.FormattedDate(),
		r.Reference,
		r.Credit.StringFixed(2),
		r.Debit.StringFixed(2),
		strconv.Itoa(occurrence),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0x1f})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Balance returns the sum of credits minus the sum of debits.
func Balance(rows []LedgerRow) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Net())
	}
	return total
}

// BalanceFormula returns the aggregate balance formula for a tab whose last
// data row is lastRow.
func BalanceFormula(lastRow int) string {
	return fmt.Sprintf("=SUM(%s%d:%s%d)-SUM(%s%d:%s%d)",
		ColumnCredit, FirstDataRow, ColumnCredit, lastRow,
		ColumnDebit, FirstDataRow, ColumnDebit, lastRow)
}

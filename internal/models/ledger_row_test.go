package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRow(t *testing.T, d time.Time, ref string, credit, debit string) LedgerRow {
	t.Helper()
	row, err := NewLedgerRow(d, ref, decimal.RequireFromString(credit), decimal.RequireFromString(debit))
	require.NoError(t, err)
	return row
}

func TestNewLedgerRow(t *testing.T) {
	tests := []struct {
		name        string
		credit      string
		debit       string
		expectError bool
	}{
		{name: "credit only", credit: "100", debit: "0"},
		{name: "debit only", credit: "0", debit: "50.25"},
		{name: "negative credit", credit: "-1", debit: "0", expectError: true},
		{name: "negative debit", credit: "0", debit: "-0.01", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := NewLedgerRow(date(2024, 5, 1), " INV-1 ",
				decimal.RequireFromString(tt.credit), decimal.RequireFromString(tt.debit))
			if tt.expectError {
				assert.ErrorIs(t, err, ErrNegativeAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "INV-1", row.Reference)
		})
	}
}

func TestLedgerRow_Values(t *testing.T) {
	row := mustRow(t, date(2024, time.March, 7), "R-12", "1500.5", "0")
	assert.Equal(t, []string{"07-03-2024", "R-12", "1500.5", "0"}, row.Values())
}

func TestBalance_OrderIndependent(t *testing.T) {
	a := mustRow(t, date(2024, 1, 1), "1", "100", "30")
	b := mustRow(t, date(2024, 1, 2), "2", "50", "0")

	assert.Equal(t, "120.00", Balance([]LedgerRow{a, b}).StringFixed(2))
	assert.Equal(t, "120.00", Balance([]LedgerRow{b, a}).StringFixed(2))
	assert.True(t, Balance(nil).IsZero())
}

func TestDedupeKey(t *testing.T) {
	row := mustRow(t, date(2024, 1, 1), "R-1", "100", "0")
	same := mustRow(t, date(2024, 1, 1), "R-1", "100.00", "0")
	other := mustRow(t, date(2024, 1, 2), "R-1", "100", "0")

	assert.Equal(t, row.DedupeKey("A", 0), same.DedupeKey("A", 0), "scale must not change the key")
	assert.NotEqual(t, row.DedupeKey("A", 0), row.DedupeKey("B", 0))
	assert.NotEqual(t, row.DedupeKey("A", 0), row.DedupeKey("A", 1))
	assert.NotEqual(t, row.DedupeKey("A", 0), other.DedupeKey("A", 0))
	assert.Len(t, row.DedupeKey("A", 0), 64)
}

func TestBalanceFormula(t *testing.T) {
	assert.Equal(t, "=SUM(C4:C5)-SUM(D4:D5)", BalanceFormula(5))
	assert.Equal(t, "=SUM(C4:C4)-SUM(D4:D4)", BalanceFormula(4))
}

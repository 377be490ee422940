package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"mbh/ledger-sync/internal/ledgererror"
	"mbh/ledger-sync/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ledgerRow(t *testing.T, day int, ref, credit, debit string) models.LedgerRow {
	t.Helper()
	row, err := models.NewLedgerRow(time.Date(2024, time.May, day, 0, 0, 0, 0, time.UTC), ref,
		decimal.RequireFromString(credit), decimal.RequireFromString(debit))
	require.NoError(t, err)
	return row
}

func TestMemoryStore_CreateTabScaffold(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	exists, err := store.TabExists(ctx, "Acme Traders")
	require.NoError(t, err)
	assert.False(t, exists)

	writes, err := store.CreateTab(ctx, "Acme Traders")
	require.NoError(t, err)
	assert.Equal(t, MemoryCreateWrites, writes)

	rows, err := store.ReadAllRows(ctx, "Acme Traders")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"ACME TRADERS"},
		{"BALANCE:"},
		{"Date", "Ref No", "Credit", "Debit"},
	}, rows)

	exists, err = store.TabExists(ctx, "Acme Traders")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.TabExists(ctx, "ACME TRADERS")
	require.NoError(t, err)
	assert.False(t, exists, "tab names match exactly")
}

func TestMemoryStore_AppendAndBalance(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, err := store.CreateTab(ctx, "A")
	require.NoError(t, err)

	require.NoError(t, store.AppendRow(ctx, "A", ledgerRow(t, 1, "r1", "100", "30")))
	require.NoError(t, store.AppendRow(ctx, "A", ledgerRow(t, 2, "r2", "50", "0")))

	rows, err := store.ReadAllRows(ctx, "A")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"01-05-2024", "r1", "100", "30"}, rows[3])

	require.NoError(t, store.WriteBalanceCell(ctx, "A", models.BalanceFormula(len(rows))))
	balance, err := store.Balance("A")
	require.NoError(t, err)
	assert.Equal(t, "120.00", balance.StringFixed(2))

	assert.Equal(t, "=SUM(C4:C5)-SUM(D4:D5)", store.RawRows("A")[1][1])
	shown, err := store.ReadCell(ctx, "A", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, "120", shown)
}

func TestMemoryStore_FailureInjection(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, err := store.CreateTab(ctx, "A")
	require.NoError(t, err)

	quotaErr := &ledgererror.QuotaExceededError{Operation: OpAppendRow}
	store.FailNext(OpAppendRow, quotaErr)

	err = store.AppendRow(ctx, "A", ledgerRow(t, 1, "r1", "1", "0"))
	assert.ErrorIs(t, err, quotaErr)
	require.NoError(t, store.AppendRow(ctx, "A", ledgerRow(t, 1, "r1", "1", "0")))
	assert.Equal(t, 2, store.Calls(OpAppendRow))
	assert.Len(t, store.RawRows("A"), 4)
}

func TestMemoryStore_MissingTab(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.AppendRow(ctx, "nope", ledgerRow(t, 1, "r", "1", "0"))
	assert.True(t, errors.Is(err, ledgererror.ErrTabNotFound))
	assert.False(t, ledgererror.IsTransient(err))

	_, err = store.ReadAllRows(ctx, "nope")
	assert.ErrorIs(t, err, ledgererror.ErrTabNotFound)
}

func TestMemoryStore_CreateTabKeepsExistingData(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.SetRows("A", [][]string{{"old"}, {}, {}, {"01-01-2024", "x", "5", "0"}})

	_, err := store.CreateTab(ctx, "A")
	require.NoError(t, err)
	rows := store.RawRows("A")
	require.Len(t, rows, 4)
	assert.Equal(t, "A", rows[0][0])
	assert.Equal(t, "x", rows[3][1])
}

func TestMemoryStore_ListTabsAndWriteCell(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.SetRows("INDEX", [][]string{{"Firm"}, {"A"}})
	_, err := store.CreateTab(ctx, "A")
	require.NoError(t, err)

	tabs, err := store.ListTabs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"INDEX", "A"}, tabs)

	require.NoError(t, store.WriteCell(ctx, "A", 3, 5, "Balance"))
	assert.Equal(t, []string{"Date", "Ref No", "Credit", "Debit", "Balance"}, store.RawRows("A")[2])

	assert.Error(t, store.WriteCell(ctx, "A", 0, 1, "x"))
}

func TestMemoryStore_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryStore().TabExists(ctx, "A")
	assert.ErrorIs(t, err, context.Canceled)
}

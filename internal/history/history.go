package history

import (
	"context"
	"fmt"

	"mbh/ledger-sync/internal/models"
)

// History is the dedupe ledger for one spreadsheet.
type History struct {
	conn        *Connection
	spreadsheet string
}

// New scopes a History to a spreadsheet.
func New(conn *Connection, spreadsheet string) *History {
	return &History{conn: conn, spreadsheet: spreadsheet}
}

// Seen reports whether key was recorded for counterparty.
func (h *History) Seen(ctx context.Context, counterparty, key string) (bool, error) {
	var count int
	err := h.conn.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM synced_rows
		WHERE spreadsheet = ? AND counterparty = ? AND row_key = ?
	`, h.spreadsheet, counterparty, key).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check sync history: %w", err)
	}
	return count > 0, nil
}

// Record stores key for counterparty. Recording a key twice is a no-op.
func (h *History) Record(ctx context.Context, runID, counterparty, key string, row models.LedgerRow) error {
	_, err := h.conn.db.ExecContext(ctx, `
		INSERT INTO synced_rows (spreadsheet, counterparty, row_key, row_date, reference, credit, debit, run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(spreadsheet, counterparty, row_key) DO NOTHING
	`, h.spreadsheet, counterparty, key,
		row.FormattedDate(), row.Reference, row.Credit.String(), row.Debit.String(), runID)
	if err != nil {
		return fmt.Errorf("failed to record synced row: %w", err)
	}
	return nil
}

// Count returns the number of rows recorded for the spreadsheet.
func (h *History) Count(ctx context.Context) (int, error) {
	var count int
	err := h.conn.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM synced_rows WHERE spreadsheet = ?`, h.spreadsheet).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sync history: %w", err)
	}
	return count, nil
}

// Forget drops every key recorded for counterparty so its rows are written
// again on the next sync. It returns the number of keys removed.
func (h *History) Forget(ctx context.Context, counterparty string) (int64, error) {
	res, err := h.conn.db.ExecContext(ctx,
		`DELETE FROM synced_rows WHERE spreadsheet = ? AND counterparty = ?`, h.spreadsheet, counterparty)
	if err != nil {
		return 0, fmt.Errorf("failed to forget sync history: %w", err)
	}
	return res.RowsAffected()
}

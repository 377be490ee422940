// Package history records which ledger rows have already been written to a
// spreadsheet so that re-running a sync does not append them twice.
package history

// Schema creates the history tables.
const Schema = `
CREATE TABLE IF NOT EXISTS synced_rows (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    spreadsheet TEXT NOT NULL,
    counterparty TEXT NOT NULL,
    row_key TEXT NOT NULL,           -- models.LedgerRow.DedupeKey
    row_date TEXT NOT NULL,          -- DD-MM-YYYY
    reference TEXT NOT NULL,
    credit TEXT NOT NULL,
    debit TEXT NOT NULL,
    run_id TEXT NOT NULL,
    synced_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(spreadsheet, counterparty, row_key)
);

CREATE INDEX IF NOT EXISTS idx_synced_rows_counterparty
    ON synced_rows(spreadsheet, counterparty);
`

package syncengine

import (
	"time"

	"mbh/ledger-sync/internal/logging"
)

// Summary counts what a run did.
type Summary struct {
	RunID           string
	Groups          int
	TabsCreated     int
	TabsExisting    int
	TabsFailed      int
	RowsUploaded    int
	RowsDuplicate   int
	RowsFailed      int
	Retries         int
	BalancesWritten int
	BalancesFailed  int
	Pauses          int
	Duration        time.Duration
	Cancelled       bool
}

// Log writes the summary as a single structured line.
func (s *Summary) Log(logger logging.Logger) {
	logger.Info("Sync finished",
		logging.Field{Key: logging.FieldRunID, Value: s.RunID},
		logging.Field{Key: "groups", Value: s.Groups},
		logging.Field{Key: "tabs_created", Value: s.TabsCreated},
		logging.Field{Key: "tabs_existing", Value: s.TabsExisting},
		logging.Field{Key: "tabs_failed", Value: s.TabsFailed},
		logging.Field{Key: "rows_uploaded", Value: s.RowsUploaded},
		logging.Field{Key: "rows_duplicate", Value: s.RowsDuplicate},
		logging.Field{Key: "rows_failed", Value: s.RowsFailed},
		logging.Field{Key: "retries", Value: s.Retries},
		logging.Field{Key: "balances_written", Value: s.BalancesWritten},
		logging.Field{Key: "balances_failed", Value: s.BalancesFailed},
		logging.Field{Key: "pauses", Value: s.Pauses},
		logging.Field{Key: "duration", Value: s.Duration.String()},
		logging.Field{Key: "cancelled", Value: s.Cancelled},
	)
}

// HasFailures reports whether any tab, row or balance write failed.
func (s *Summary) HasFailures() bool {
	return s.TabsFailed > 0 || s.RowsFailed > 0 || s.BalancesFailed > 0
}

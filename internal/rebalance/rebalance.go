// Package rebalance writes running-balance formulas next to every data row
// of every counterparty tab.
package rebalance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mbh/ledger-sync/internal/backoff"
	"mbh/ledger-sync/internal/logging"
	"mbh/ledger-sync/internal/models"
	"mbh/ledger-sync/internal/remote"

	"github.com/xuri/excelize/v2"
)

// Governor rations write calls.
type Governor interface {
	Charge(ctx context.Context, n int) error
}

// Result counts what a rebalance pass did.
type Result struct {
	Tabs         int
	Skipped      int
	Failed       int
	CellsWritten int
	Retries      int
}

// Rebalancer fills the running-balance column of each tab.
type Rebalancer struct {
	store    remote.Store
	governor Governor
	logger   logging.Logger
	policy   backoff.Policy
	sleep    backoff.Sleeper
	indexTab string
}

// Option configures a Rebalancer
type Option func(*Rebalancer)

// WithLogger sets the logger
func WithLogger(l logging.Logger) Option {
	return func(r *Rebalancer) { r.logger = l }
}

// WithBackoff sets the retry delay policy
func WithBackoff(p backoff.Policy) Option {
	return func(r *Rebalancer) { r.policy = p }
}

// WithSleeper replaces the real sleep used between retries
func WithSleeper(s backoff.Sleeper) Option {
	return func(r *Rebalancer) { r.sleep = s }
}

// WithIndexTab sets the name of the directory tab that is never rebalanced
func WithIndexTab(name string) Option {
	return func(r *Rebalancer) { r.indexTab = name }
}

// New creates a Rebalancer
func New(store remote.Store, governor Governor, opts ...Option) *Rebalancer {
	r := &Rebalancer{
		store:    store,
		governor: governor,
		logger:   logging.NewLogrusAdapter("info", "text"),
		policy:   backoff.NewPolicy(backoff.DefaultMaxDelay),
		sleep:    backoff.Sleep,
		indexTab: models.IndexTab,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run rebalances every tab in spreadsheet order. A failing tab is logged and
// counted; cancellation stops the pass.
func (r *Rebalancer) Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	var tabs []string
	err := r.retry(ctx, result, func(ctx context.Context) error {
		var err error
		tabs, err = r.store.ListTabs(ctx)
		return err
	})
	if err != nil {
		return result, fmt.Errorf("failed to list tabs: %w", err)
	}

	for _, tab := range tabs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if strings.EqualFold(tab, r.indexTab) {
			r.logger.Debug("Skipping index tab", logging.Field{Key: logging.FieldTab, Value: tab})
			continue
		}
		result.Tabs++

		written, skipped, err := r.RebalanceTab(ctx, tab, result)
		result.CellsWritten += written
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			result.Failed++
			r.logger.WithError(err).Error("Failed to rebalance tab",
				logging.Field{Key: logging.FieldTab, Value: tab})
			continue
		}
		if skipped {
			result.Skipped++
		}
	}

	r.logger.Info("Rebalance finished",
		logging.Field{Key: "tabs", Value: result.Tabs},
		logging.Field{Key: "skipped", Value: result.Skipped},
		logging.Field{Key: "failed", Value: result.Failed},
		logging.Field{Key: logging.FieldCount, Value: result.CellsWritten},
		logging.Field{Key: "retries", Value: result.Retries})
	return result, nil
}

// RebalanceTab writes the balance header when missing and one running
// formula per data row. Tabs without data rows are skipped. It returns the
// number of cells written.
func (r *Rebalancer) RebalanceTab(ctx context.Context, tab string, result *Result) (int, bool, error) {
	if result == nil {
		result = &Result{}
	}

	var rows [][]string
	err := r.retry(ctx, result, func(ctx context.Context) error {
		var err error
		rows, err = r.store.ReadAllRows(ctx, tab)
		return err
	})
	if err != nil {
		return 0, false, err
	}
	if len(rows) <= models.HeaderRows {
		r.logger.Debug("Tab has no data rows, skipping", logging.Field{Key: logging.FieldTab, Value: tab})
		return 0, true, nil
	}

	written := 0
	col := BalanceColumn(rows[models.HeaderRow-1])
	if col == 0 {
		col = DefaultBalanceColumn
		if err := r.write(ctx, result, tab, models.HeaderRow, col, models.RunningBalanceHeader); err != nil {
			return written, false, err
		}
		written++
	}

	letter, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return written, false, err
	}
	for rowNum := models.FirstDataRow; rowNum <= len(rows); rowNum++ {
		if err := r.write(ctx, result, tab, rowNum, col, RunningFormula(letter, rowNum)); err != nil {
			return written, false, err
		}
		written++
	}

	r.logger.Info("Rebalanced tab",
		logging.Field{Key: logging.FieldTab, Value: tab},
		logging.Field{Key: logging.FieldCount, Value: written})
	return written, false, nil
}

// DefaultBalanceColumn is column E, next to the debit column.
const DefaultBalanceColumn = 5

// BalanceColumn returns the 1-based column holding the running-balance
// header, or 0 when the header row has none.
func BalanceColumn(header []string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == models.RunningBalanceHeader {
			return i + 1
		}
	}
	return 0
}

// RunningFormula returns the running-balance formula for a data row.
func RunningFormula(col string, row int) string {
	if row == models.FirstDataRow {
		return fmt.Sprintf("=%s%d-%s%d", models.ColumnCredit, row, models.ColumnDebit, row)
	}
	return fmt.Sprintf("=%s%d+%s%d-%s%d", col, row-1, models.ColumnCredit, row, models.ColumnDebit, row)
}

func (r *Rebalancer) write(ctx context.Context, result *Result, tab string, row, col int, value string) error {
	err := r.retry(ctx, result, func(ctx context.Context) error {
		return r.store.WriteCell(ctx, tab, row, col, value)
	})
	if err != nil {
		return err
	}
	return r.governor.Charge(ctx, 1)
}

func (r *Rebalancer) retry(ctx context.Context, result *Result, fn func(ctx context.Context) error) error {
	_, err := backoff.Retry(ctx, r.policy, r.sleep, fn, func(retry int, delay time.Duration, err error) {
		result.Retries++
		r.logger.WithError(err).Warn("Transient remote error, backing off",
			logging.Field{Key: logging.FieldAttempt, Value: retry + 1},
			logging.Field{Key: logging.FieldDelay, Value: delay.Milliseconds()})
	})
	return err
}

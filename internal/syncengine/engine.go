// Package syncengine uploads grouped ledger rows to the remote store, one
// tab per counterparty, keeping each tab's balance formula current.
package syncengine

import (
	"context"
	"errors"
	"time"

	"mbh/ledger-sync/internal/backoff"
	"mbh/ledger-sync/internal/logging"
	"mbh/ledger-sync/internal/models"
	"mbh/ledger-sync/internal/remote"

	"github.com/google/uuid"
)

// Governor rations write calls.
type Governor interface {
	Charge(ctx context.Context, n int) error
	Pauses() int
}

// Deduper remembers rows already uploaded.
type Deduper interface {
	Seen(ctx context.Context, counterparty, key string) (bool, error)
	Record(ctx context.Context, runID, counterparty, key string, row models.LedgerRow) error
}

// Engine runs sync passes against one store. Groups and rows are processed
// strictly in order, one remote call at a time.
type Engine struct {
	store    remote.Store
	governor Governor
	deduper  Deduper
	observer Observer
	logger   logging.Logger
	policy   backoff.Policy
	sleep    backoff.Sleeper
}

// Option configures an Engine
type Option func(*Engine)

// WithDeduper enables skipping rows already recorded by d.
func WithDeduper(d Deduper) Option {
	return func(e *Engine) { e.deduper = d }
}

// WithObserver adds an observer alongside the logging one.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = multiObserver{e.observer, o}
		}
	}
}

// WithLogger sets the logger
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		e.logger = l
		e.observer = LogObserver{Logger: l}
	}
}

// WithBackoff sets the retry delay policy
func WithBackoff(p backoff.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithSleeper replaces the real sleep used between retries, for tests.
func WithSleeper(s backoff.Sleeper) Option {
	return func(e *Engine) { e.sleep = s }
}

// New creates an Engine. WithLogger should come before WithObserver.
func New(store remote.Store, governor Governor, opts ...Option) *Engine {
	logger := logging.NewLogrusAdapter("info", "text")
	e := &Engine{
		store:    store,
		governor: governor,
		logger:   logger,
		observer: LogObserver{Logger: logger},
		policy:   backoff.NewPolicy(backoff.DefaultMaxDelay),
		sleep:    backoff.Sleep,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run uploads every group. A failure on one tab or row is counted and the
// run moves on; only cancellation stops it early, in which case the partial
// summary is returned with ctx.Err().
func (e *Engine) Run(ctx context.Context, groups []models.CounterpartyGroup) (*Summary, error) {
	start := time.Now()
	startPauses := e.governor.Pauses()
	summary := &Summary{RunID: uuid.NewString(), Groups: len(groups)}
	logger := e.logger.WithField(logging.FieldRunID, summary.RunID)

	logger.Info("Starting sync",
		logging.Field{Key: "groups", Value: len(groups)},
		logging.Field{Key: logging.FieldCount, Value: models.TotalRows(groups)},
		logging.Field{Key: "dedupe", Value: e.deduper != nil})

	var err error
	for _, group := range groups {
		if err = ctx.Err(); err != nil {
			break
		}
		if err = e.syncGroup(ctx, summary, group); err != nil {
			break
		}
	}

	summary.Pauses = e.governor.Pauses() - startPauses
	summary.Duration = time.Since(start)
	if err != nil {
		summary.Cancelled = true
		summary.Log(logger)
		return summary, err
	}
	summary.Log(logger)
	return summary, nil
}

// syncGroup returns an error only when the run must stop.
func (e *Engine) syncGroup(ctx context.Context, s *Summary, group models.CounterpartyGroup) error {
	tab := group.Key

	ok, err := e.ensureTab(ctx, s, tab)
	if err != nil || !ok {
		return err
	}

	occurrences := make(map[string]int, len(group.Rows))
	for i, row := range group.Rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		base := row.DedupeKey(tab, 0)
		occurrence := occurrences[base]
		occurrences[base]++

		if err := e.uploadRow(ctx, s, tab, i+1, row, row.DedupeKey(tab, occurrence)); err != nil {
			return err
		}
	}

	return e.writeBalance(ctx, s, tab)
}

// ensureTab makes sure the tab exists. It reports false when the group must
// be skipped.
func (e *Engine) ensureTab(ctx context.Context, s *Summary, tab string) (bool, error) {
	var exists bool
	err := e.retry(ctx, s, tab, remote.OpTabExists, 0, func(ctx context.Context) error {
		var err error
		exists, err = e.store.TabExists(ctx, tab)
		return err
	})
	if err != nil {
		if stop := e.stopErr(ctx, err); stop != nil {
			return false, stop
		}
		s.TabsFailed++
		e.emit(s, Event{Counterparty: tab, Operation: remote.OpTabExists, Outcome: OutcomeFailed, Err: err})
		return false, nil
	}
	if exists {
		s.TabsExisting++
		e.emit(s, Event{Counterparty: tab, Operation: remote.OpTabExists, Outcome: OutcomeExists})
		return true, nil
	}

	var createErr, chargeErr error
	err = e.retry(ctx, s, tab, remote.OpCreateTab, 0, func(ctx context.Context) error {
		var writes int
		writes, createErr = e.store.CreateTab(ctx, tab)
		if cerr := e.governor.Charge(ctx, writes); cerr != nil {
			chargeErr = cerr
			return cerr
		}
		return createErr
	})
	if chargeErr != nil {
		if createErr == nil {
			s.TabsCreated++
			e.emit(s, Event{Counterparty: tab, Operation: remote.OpCreateTab, Outcome: OutcomeCreated})
		}
		return false, chargeErr
	}
	if err != nil {
		if stop := e.stopErr(ctx, err); stop != nil {
			return false, stop
		}
		s.TabsFailed++
		e.emit(s, Event{Counterparty: tab, Operation: remote.OpCreateTab, Outcome: OutcomeFailed, Err: err})
		return false, nil
	}
	s.TabsCreated++
	e.emit(s, Event{Counterparty: tab, Operation: remote.OpCreateTab, Outcome: OutcomeCreated})
	return true, nil
}

func (e *Engine) uploadRow(ctx context.Context, s *Summary, tab string, pos int, row models.LedgerRow, key string) error {
	if e.deduper != nil {
		seen, err := e.deduper.Seen(ctx, tab, key)
		if err != nil {
			if stop := e.stopErr(ctx, err); stop != nil {
				return stop
			}
			// An unreadable history must not lose rows.
			e.emit(s, Event{Counterparty: tab, Operation: OpDedupe, Outcome: OutcomeSkipped, Row: pos, Err: err})
		}
		if seen {
			s.RowsDuplicate++
			e.emit(s, Event{Counterparty: tab, Operation: remote.OpAppendRow, Outcome: OutcomeDuplicate, Row: pos})
			return nil
		}
	}

	err := e.retry(ctx, s, tab, remote.OpAppendRow, pos, func(ctx context.Context) error {
		return e.store.AppendRow(ctx, tab, row)
	})
	if err != nil {
		if stop := e.stopErr(ctx, err); stop != nil {
			return stop
		}
		s.RowsFailed++
		e.emit(s, Event{Counterparty: tab, Operation: remote.OpAppendRow, Outcome: OutcomeAbandoned, Row: pos, Err: err})
		return nil
	}
	// The row is in the sheet: count and record it before the governor
	// may pause, so a cancelled pause cannot lose the history entry.
	s.RowsUploaded++
	e.emit(s, Event{Counterparty: tab, Operation: remote.OpAppendRow, Outcome: OutcomeOK, Row: pos})

	if e.deduper != nil {
		if err := e.deduper.Record(context.WithoutCancel(ctx), s.RunID, tab, key, row); err != nil {
			if stop := e.stopErr(ctx, err); stop != nil {
				return stop
			}
			e.emit(s, Event{Counterparty: tab, Operation: OpDedupe, Outcome: OutcomeSkipped, Row: pos, Err: err})
		}
	}
	return e.governor.Charge(ctx, 1)
}

// writeBalance points the balance cell at the tab's current data rows.
// Tabs without data rows are left alone.
func (e *Engine) writeBalance(ctx context.Context, s *Summary, tab string) error {
	var rows [][]string
	err := e.retry(ctx, s, tab, remote.OpReadAllRows, 0, func(ctx context.Context) error {
		var err error
		rows, err = e.store.ReadAllRows(ctx, tab)
		return err
	})
	if err != nil {
		if stop := e.stopErr(ctx, err); stop != nil {
			return stop
		}
		s.BalancesFailed++
		e.emit(s, Event{Counterparty: tab, Operation: remote.OpReadAllRows, Outcome: OutcomeFailed, Err: err})
		return nil
	}
	if len(rows) <= models.HeaderRows {
		return nil
	}

	formula := models.BalanceFormula(len(rows))
	err = e.retry(ctx, s, tab, remote.OpWriteBalance, 0, func(ctx context.Context) error {
		return e.store.WriteBalanceCell(ctx, tab, formula)
	})
	if err != nil {
		if stop := e.stopErr(ctx, err); stop != nil {
			return stop
		}
		s.BalancesFailed++
		e.emit(s, Event{Counterparty: tab, Operation: remote.OpWriteBalance, Outcome: OutcomeFailed, Err: err})
		return nil
	}
	s.BalancesWritten++
	e.emit(s, Event{Counterparty: tab, Operation: remote.OpWriteBalance, Outcome: OutcomeOK})
	return e.governor.Charge(ctx, 1)
}

// retry wraps backoff.Retry, counting and reporting each retry.
func (e *Engine) retry(ctx context.Context, s *Summary, tab, op string, pos int, fn func(ctx context.Context) error) error {
	_, err := backoff.Retry(ctx, e.policy, e.sleep, fn, func(retry int, delay time.Duration, err error) {
		s.Retries++
		e.emit(s, Event{
			Counterparty: tab,
			Operation:    op,
			Outcome:      OutcomeRetry,
			Row:          pos,
			Attempt:      retry + 1,
			Delay:        delay,
			Err:          err,
		})
	})
	return err
}

// stopErr returns the error that should end the run, if any.
func (e *Engine) stopErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (e *Engine) emit(s *Summary, ev Event) {
	ev.RunID = s.RunID
	e.observer.Observe(ev)
}

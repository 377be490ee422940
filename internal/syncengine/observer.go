package syncengine

import (
	"time"

	"mbh/ledger-sync/internal/logging"
)

// OpDedupe is reported for history lookups and records. Remote operations
// use the remote.Op* names.
const OpDedupe = "dedupe"

// Outcomes reported in events
const (
	OutcomeOK        = "ok"
	OutcomeCreated   = "created"
	OutcomeExists    = "exists"
	OutcomeDuplicate = "duplicate"
	OutcomeRetry     = "retry"
	OutcomeFailed    = "failed"
	OutcomeAbandoned = "abandoned"
	OutcomeSkipped   = "skipped"
)

// Event is one step of a sync run.
type Event struct {
	RunID        string
	Counterparty string
	Operation    string
	Outcome      string
	// Row is the 1-based position of the row within its group, 0 for tab-level events.
	Row     int
	Attempt int
	Delay   time.Duration
	Err     error
}

// Observer receives events as the run progresses.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe implements Observer.
func (f ObserverFunc) Observe(e Event) { f(e) }

// LogObserver writes events to a structured logger.
type LogObserver struct {
	Logger logging.Logger
}

// Observe implements Observer.
func (o LogObserver) Observe(e Event) {
	fields := []logging.Field{
		{Key: logging.FieldRunID, Value: e.RunID},
		{Key: logging.FieldCounterparty, Value: e.Counterparty},
		{Key: logging.FieldOperation, Value: e.Operation},
		{Key: logging.FieldOutcome, Value: e.Outcome},
	}
	if e.Row > 0 {
		fields = append(fields, logging.Field{Key: logging.FieldRow, Value: e.Row})
	}
	if e.Outcome == OutcomeRetry {
		fields = append(fields,
			logging.Field{Key: logging.FieldAttempt, Value: e.Attempt},
			logging.Field{Key: logging.FieldDelay, Value: e.Delay.Milliseconds()})
	}

	logger := o.Logger
	if e.Err != nil {
		logger = logger.WithError(e.Err)
	}

	switch e.Outcome {
	case OutcomeFailed, OutcomeAbandoned:
		logger.Error("Sync step failed", fields...)
	case OutcomeRetry:
		logger.Warn("Transient remote error, backing off", fields...)
	case OutcomeCreated:
		logger.Info("Created tab", fields...)
	case OutcomeSkipped:
		logger.Warn("Sync step skipped", fields...)
	default:
		logger.Debug("Sync step", fields...)
	}
}

// multiObserver fans events out to several observers.
type multiObserver []Observer

func (m multiObserver) Observe(e Event) {
	for _, o := range m {
		o.Observe(e)
	}
}

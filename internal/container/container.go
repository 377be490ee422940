// Package container provides dependency injection for ledger-sync.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"

	"mbh/ledger-sync/internal/backoff"
	"mbh/ledger-sync/internal/config"
	"mbh/ledger-sync/internal/history"
	"mbh/ledger-sync/internal/ledgerinput"
	"mbh/ledger-sync/internal/logging"
	"mbh/ledger-sync/internal/mappingstore"
	"mbh/ledger-sync/internal/models"
	"mbh/ledger-sync/internal/normalizer"
	"mbh/ledger-sync/internal/quota"
	"mbh/ledger-sync/internal/rebalance"
	"mbh/ledger-sync/internal/remote"
	"mbh/ledger-sync/internal/statement"
	"mbh/ledger-sync/internal/syncengine"
)

// Options adjust how the container is wired.
type Options struct {
	// DryRun replaces the spreadsheet with an in-memory store and keeps the
	// dedupe history read-only.
	DryRun bool
	// DisableDedupe turns off the dedupe history regardless of config.
	DisableDedupe bool
	// Store, when set, is used instead of opening the spreadsheet.
	Store remote.Store
	// Logger, when set, replaces the configured logger.
	Logger logging.Logger
	// Sleeper, when set, replaces real sleeps in retries and quota pauses.
	Sleeper backoff.Sleeper
}

// Container holds all application dependencies and provides methods to access them.
// Container is immutable after creation.
type Container struct {
	logger logging.Logger
	config *config.Config
	dryRun bool

	mappings    *mappingstore.MappingStore
	normalizer  *normalizer.Normalizer
	reader      *ledgerinput.Reader
	store       remote.Store
	governor    *quota.Governor
	historyConn *history.Connection
	history     *history.History
	engine      *syncengine.Engine
	rebalancer  *rebalance.Rebalancer
	directory   *statement.Directory
}

// NewContainer creates and wires all application dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, opts Options) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	logger := opts.Logger
	if logger == nil {
		logger = config.ConfigureLoggingFromConfig(cfg)
	}
	sleep := opts.Sleeper
	if sleep == nil {
		sleep = backoff.Sleep
	}

	mappings := mappingstore.NewMappingStore(cfg.Mappings.NamesFile, cfg.Mappings.AccountsFile, logger)
	norm, err := normalizer.NewFromStore(mappings)
	if err != nil {
		return nil, fmt.Errorf("failed to load name mappings: %w", err)
	}
	reader := ledgerinput.NewReader(norm, logger)

	store, spreadsheet, err := openStore(ctx, cfg, opts, logger)
	if err != nil {
		return nil, err
	}

	governor := quota.New(cfg.Quota.Threshold, cfg.QuotaPause(),
		quota.WithSleeper(sleep), quota.WithLogger(logger))
	policy := backoff.NewPolicy(cfg.MaxBackoff())

	c := &Container{
		logger:     logger,
		config:     cfg,
		dryRun:     opts.DryRun,
		mappings:   mappings,
		normalizer: norm,
		reader:     reader,
		store:      store,
		governor:   governor,
	}

	engineOpts := []syncengine.Option{
		syncengine.WithLogger(logger),
		syncengine.WithBackoff(policy),
		syncengine.WithSleeper(sleep),
	}
	if cfg.Dedupe.Enabled && !opts.DisableDedupe {
		conn, err := history.Open(ctx, cfg.Dedupe.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open dedupe history: %w", err)
		}
		c.historyConn = conn
		c.history = history.New(conn, spreadsheet)

		var deduper syncengine.Deduper = c.history
		if opts.DryRun {
			deduper = readOnlyDeduper{c.history}
		}
		engineOpts = append(engineOpts, syncengine.WithDeduper(deduper))
	}

	c.engine = syncengine.New(store, governor, engineOpts...)
	c.rebalancer = rebalance.New(store, governor,
		rebalance.WithLogger(logger),
		rebalance.WithBackoff(policy),
		rebalance.WithSleeper(sleep),
		rebalance.WithIndexTab(cfg.Sheets.IndexTab))
	c.directory = statement.NewDirectory(store, cfg.Sheets.IndexTab)

	names, accounts := norm.Sizes()
	logger.Debug("Container initialized successfully",
		logging.Field{Key: logging.FieldSpreadsheet, Value: spreadsheet},
		logging.Field{Key: "dry_run", Value: opts.DryRun},
		logging.Field{Key: "dedupe", Value: c.history != nil},
		logging.Field{Key: "name_mappings", Value: names},
		logging.Field{Key: "account_mappings", Value: accounts})

	return c, nil
}

// openStore returns the remote store and the spreadsheet key used to scope
// the dedupe history.
func openStore(ctx context.Context, cfg *config.Config, opts Options, logger logging.Logger) (remote.Store, string, error) {
	spreadsheet := cfg.Sheets.SpreadsheetID
	if spreadsheet == "" {
		spreadsheet = cfg.Sheets.SpreadsheetName
	}

	switch {
	case opts.Store != nil:
		return opts.Store, spreadsheet, nil
	case opts.DryRun:
		logger.Info("Dry run: writes go to an in-memory spreadsheet")
		return remote.NewMemoryStore(), spreadsheet, nil
	}

	if err := cfg.ValidateRemote(); err != nil {
		return nil, "", err
	}
	store, err := remote.NewSheetsStore(ctx, remote.SheetsConfig{
		CredentialsFile: cfg.Sheets.CredentialsFile,
		SpreadsheetID:   cfg.Sheets.SpreadsheetID,
		SpreadsheetName: cfg.Sheets.SpreadsheetName,
		RequestTimeout:  cfg.RequestTimeout(),
	}, logger)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	return store, store.SpreadsheetID(), nil
}

// readOnlyDeduper answers lookups without recording uploads.
type readOnlyDeduper struct {
	*history.History
}

func (readOnlyDeduper) Record(context.Context, string, string, string, models.LedgerRow) error {
	return nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger { return c.logger }

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config { return c.config }

// IsDryRun reports whether writes go to the in-memory store
func (c *Container) IsDryRun() bool { return c.dryRun }

// GetMappingStore returns the name and account table store.
func (c *Container) GetMappingStore() *mappingstore.MappingStore { return c.mappings }

// GetNormalizer returns the counterparty name normalizer.
func (c *Container) GetNormalizer() *normalizer.Normalizer { return c.normalizer }

// GetReader returns the ledger file reader.
func (c *Container) GetReader() *ledgerinput.Reader { return c.reader }

// GetStore returns the remote ledger store.
func (c *Container) GetStore() remote.Store { return c.store }

// GetGovernor returns the shared write quota governor.
func (c *Container) GetGovernor() *quota.Governor { return c.governor }

// GetHistory returns the dedupe history, nil when dedupe is off.
func (c *Container) GetHistory() *history.History { return c.history }

// GetEngine returns the sync engine.
func (c *Container) GetEngine() *syncengine.Engine { return c.engine }

// GetRebalancer returns the running-balance writer.
func (c *Container) GetRebalancer() *rebalance.Rebalancer { return c.rebalancer }

// GetDirectory returns the firm, balance and statement lookup.
func (c *Container) GetDirectory() *statement.Directory { return c.directory }

// Close releases the dedupe history database.
func (c *Container) Close() error {
	if c.historyConn != nil {
		if err := c.historyConn.Close(); err != nil {
			return fmt.Errorf("failed to close dedupe history: %w", err)
		}
	}
	c.logger.Debug("Container closed")
	return nil
}

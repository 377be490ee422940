// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"fmt"
	"strings"

	"mbh/ledger-sync/cmd/root"
	"mbh/ledger-sync/internal/container"
	"mbh/ledger-sync/internal/fileutils"
	"mbh/ledger-sync/internal/ledgerinput"
	"mbh/ledger-sync/internal/logging"
	"mbh/ledger-sync/internal/models"
)

// InputExtensions are the ledger file types accepted on the command line.
var InputExtensions = []string{".xlsx", ".csv"}

// OpenContainer wires the application from the loaded configuration.
func OpenContainer(ctx context.Context, opts container.Options) (*container.Container, error) {
	if root.Config == nil {
		if err := root.Setup(); err != nil {
			return nil, err
		}
	}
	if opts.Logger == nil {
		opts.Logger = root.Log
	}
	return container.NewContainer(ctx, root.Config, opts)
}

// ReadLedgers reads every input file (directories are expanded) in order.
// Any file that fails validation aborts the whole read, so nothing is
// written for a partially valid batch.
func ReadLedgers(reader *ledgerinput.Reader, paths []string, format ledgerinput.Format, logger logging.Logger) ([]models.Entry, error) {
	files, err := fileutils.ExpandInputs(paths, InputExtensions)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no ledger files found in %v", paths)
	}

	var entries []models.Entry
	skipped := 0
	for _, file := range files {
		result, err := reader.ReadFile(file, format)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		entries = append(entries, result.Entries...)
		skipped += len(result.Skipped)
	}

	if skipped > 0 {
		logger.Warn("Some rows could not be parsed and were skipped",
			logging.Field{Key: logging.FieldCount, Value: skipped},
			logging.Field{Key: "files", Value: len(files)})
	}
	return entries, nil
}

// FirmMatcher resolves a partial firm name.
type FirmMatcher interface {
	Match(ctx context.Context, query string) ([]string, error)
}

// AmbiguousFirmError is returned when a name matches more than one firm.
type AmbiguousFirmError struct {
	Query      string
	Candidates []string
}

func (e *AmbiguousFirmError) Error() string {
	return fmt.Sprintf("%q matches %d firms: %s", e.Query, len(e.Candidates), strings.Join(e.Candidates, ", "))
}

// ResolveFirm returns the single firm matching query.
func ResolveFirm(ctx context.Context, matcher FirmMatcher, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("a firm name is required")
	}
	matches, err := matcher.Match(ctx, query)
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no firms found matching %q", query)
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousFirmError{Query: query, Candidates: matches}
	}
}

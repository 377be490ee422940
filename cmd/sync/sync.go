// Package sync implements the command that uploads ledgers to the shared
// spreadsheet.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"mbh/ledger-sync/cmd/common"
	"mbh/ledger-sync/internal/container"
	"mbh/ledger-sync/internal/ledgerinput"
	"mbh/ledger-sync/internal/models"
	"mbh/ledger-sync/internal/syncengine"

	"github.com/spf13/cobra"
)

// ErrIncomplete is returned when the run finished but some tabs, rows or
// balances could not be written.
var ErrIncomplete = errors.New("sync finished with failures")

var (
	format        string
	dryRun        bool
	disableDedupe bool
)

// Cmd represents the sync command
var Cmd = &cobra.Command{
	Use:   "sync [files or directories...]",
	Short: "Upload purchase and payment ledgers to per-firm tabs",
	Long: `Upload purchase and payment ledgers (Excel or CSV) to the shared spreadsheet.

Every input is read and validated before anything is written. Rows are grouped
by normalized firm name; each firm gets its own tab, created on first use, and
its balance formula is rewritten after the upload. Rows already uploaded by a
previous run are skipped unless --no-dedupe is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := ledgerinput.ParseFormat(format)
		if err != nil {
			return err
		}
		c, err := common.OpenContainer(cmd.Context(), container.Options{
			DryRun:        dryRun,
			DisableDedupe: disableDedupe,
		})
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		_, err = Run(cmd.Context(), c, args, f, cmd.OutOrStdout())
		return err
	},
}

func init() {
	Cmd.Flags().StringVarP(&format, "format", "f", string(ledgerinput.FormatAuto), "Input layout: auto, purchase or payment")
	Cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run against an in-memory spreadsheet; nothing is written remotely")
	Cmd.Flags().BoolVar(&disableDedupe, "no-dedupe", false, "Upload every row even if a previous run already uploaded it")
}

// Run reads every input, groups the rows by firm and uploads them. The
// summary is printed to out.
func Run(ctx context.Context, c *container.Container, paths []string, format ledgerinput.Format, out io.Writer) (*syncengine.Summary, error) {
	logger := c.GetLogger()
	entries, err := common.ReadLedgers(c.GetReader(), paths, format, logger)
	if err != nil {
		return nil, err
	}
	groups := models.GroupByCounterparty(entries)
	if len(groups) == 0 {
		logger.Warn("No ledger rows to upload")
		fmt.Fprintln(out, "No ledger rows to upload.")
		return &syncengine.Summary{}, nil
	}

	summary, err := c.GetEngine().Run(ctx, groups)
	if summary != nil {
		PrintSummary(out, summary, c.IsDryRun())
	}
	if err != nil {
		return summary, err
	}
	if summary.HasFailures() {
		return summary, ErrIncomplete
	}
	return summary, nil
}

// PrintSummary writes a human readable run summary.
func PrintSummary(out io.Writer, s *syncengine.Summary, dryRun bool) {
	if dryRun {
		fmt.Fprintln(out, "Dry run: nothing was written to the spreadsheet.")
	}
	fmt.Fprintf(out, "Run %s\n", s.RunID)
	fmt.Fprintf(out, "  Firms:     %d (%d new tabs, %d existing, %d failed)\n",
		s.Groups, s.TabsCreated, s.TabsExisting, s.TabsFailed)
	fmt.Fprintf(out, "  Rows:      %d uploaded, %d already uploaded, %d failed\n",
		s.RowsUploaded, s.RowsDuplicate, s.RowsFailed)
	fmt.Fprintf(out, "  Balances:  %d written, %d failed\n", s.BalancesWritten, s.BalancesFailed)
	fmt.Fprintf(out, "  Retries:   %d, quota pauses: %d\n", s.Retries, s.Pauses)
	fmt.Fprintf(out, "  Duration:  %s\n", s.Duration.Round(time.Millisecond))
	if s.Cancelled {
		fmt.Fprintln(out, "  Interrupted before all firms were processed.")
	}
}

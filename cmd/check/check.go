// Package check implements the command that previews a sync without
// writing anything.
package check

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"mbh/ledger-sync/cmd/common"
	"mbh/ledger-sync/internal/container"
	"mbh/ledger-sync/internal/ledgerinput"
	"mbh/ledger-sync/internal/models"

	"github.com/spf13/cobra"
)

var format string

// Cmd represents the check command
var Cmd = &cobra.Command{
	Use:   "check [files or directories...]",
	Short: "Validate ledgers and show which firm tabs a sync would touch",
	Long: `Read and validate ledgers exactly as sync does, then list every firm with its
row count and whether its tab already exists. Nothing is written.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := ledgerinput.ParseFormat(format)
		if err != nil {
			return err
		}
		c, err := common.OpenContainer(cmd.Context(), container.Options{DisableDedupe: true})
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		report, err := Run(cmd.Context(), c, args, f)
		if err != nil {
			return err
		}
		return report.Print(cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVarP(&format, "format", "f", string(ledgerinput.FormatAuto), "Input layout: auto, purchase or payment")
}

// FirmStatus describes one firm found in the input.
type FirmStatus struct {
	Name      string
	Rows      int
	TabExists bool
}

// Report is the outcome of a check.
type Report struct {
	Firms []FirmStatus
	Rows  int
}

// Missing returns the number of firms whose tab would be created.
func (r *Report) Missing() int {
	n := 0
	for _, f := range r.Firms {
		if !f.TabExists {
			n++
		}
	}
	return n
}

// Run reads the inputs and compares the firms against the existing tabs.
func Run(ctx context.Context, c *container.Container, paths []string, format ledgerinput.Format) (*Report, error) {
	entries, err := common.ReadLedgers(c.GetReader(), paths, format, c.GetLogger())
	if err != nil {
		return nil, err
	}
	groups := models.GroupByCounterparty(entries)

	tabs, err := c.GetStore().ListTabs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tabs: %w", err)
	}
	existing := make(map[string]bool, len(tabs))
	for _, tab := range tabs {
		existing[tab] = true
	}

	report := &Report{Rows: models.TotalRows(groups)}
	for _, g := range groups {
		report.Firms = append(report.Firms, FirmStatus{
			Name:      g.Key,
			Rows:      len(g.Rows),
			TabExists: existing[g.Key],
		})
	}
	return report, nil
}

// Print writes the report as a table.
func (r *Report) Print(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIRM\tROWS\tTAB")
	for _, f := range r.Firms {
		status := "new"
		if f.TabExists {
			status = "exists"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", f.Name, f.Rows, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "%d firms, %d rows, %d new tabs\n", len(r.Firms), r.Rows, r.Missing())
	return err
}

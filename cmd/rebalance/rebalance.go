// Package rebalance implements the command that rewrites the running
// balance column of every firm tab.
package rebalance

import (
	"context"
	"fmt"
	"io"

	"mbh/ledger-sync/cmd/common"
	"mbh/ledger-sync/internal/container"
	"mbh/ledger-sync/internal/rebalance"

	"github.com/spf13/cobra"
)

// Cmd represents the rebalance command
var Cmd = &cobra.Command{
	Use:   "rebalance",
	Short: "Rewrite the running balance column of every firm tab",
	Long: `Write a running balance formula next to every data row of every firm tab,
adding the Balance header where it is missing. The index tab is left alone.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.OpenContainer(cmd.Context(), container.Options{DisableDedupe: true})
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		_, err = Run(cmd.Context(), c, cmd.OutOrStdout())
		return err
	},
}

// Run rebalances every tab and prints the totals.
func Run(ctx context.Context, c *container.Container, out io.Writer) (*rebalance.Result, error) {
	result, err := c.GetRebalancer().Run(ctx)
	if result != nil {
		fmt.Fprintf(out, "Rebalanced %d tabs (%d empty, %d failed), %d cells written, %d retries\n",
			result.Tabs-result.Skipped-result.Failed, result.Skipped, result.Failed, result.CellsWritten, result.Retries)
	}
	if err != nil {
		return result, err
	}
	if result.Failed > 0 {
		return result, fmt.Errorf("%d tabs could not be rebalanced", result.Failed)
	}
	return result, nil
}

// Package firms implements the command that lists the firms in the index tab.
package firms

import (
	"context"
	"fmt"
	"io"

	"mbh/ledger-sync/cmd/common"
	"mbh/ledger-sync/internal/container"
	"mbh/ledger-sync/internal/statement"

	"github.com/spf13/cobra"
)

// Cmd represents the firms command
var Cmd = &cobra.Command{
	Use:   "firms [filter]",
	Short: "List the firms in the index tab",
	Long: `List the firm names from the index tab. With a filter, only firms whose name
contains it (ignoring case) are shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.OpenContainer(cmd.Context(), container.Options{DisableDedupe: true})
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		filter := ""
		if len(args) == 1 {
			filter = args[0]
		}
		return Run(cmd.Context(), c.GetDirectory(), filter, cmd.OutOrStdout())
	},
}

// Run prints one firm per line.
func Run(ctx context.Context, dir *statement.Directory, filter string, out io.Writer) error {
	var (
		firms []string
		err   error
	)
	if filter == "" {
		firms, err = dir.Firms(ctx)
	} else {
		firms, err = dir.Match(ctx, filter)
	}
	if err != nil {
		return err
	}
	if len(firms) == 0 {
		fmt.Fprintln(out, "No firms found.")
		return nil
	}
	for _, firm := range firms {
		fmt.Fprintln(out, firm)
	}
	return nil
}

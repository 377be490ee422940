// Package balance implements the command that prints a firm's balance.
package balance

import (
	"context"
	"fmt"
	"io"
	"strings"

	"mbh/ledger-sync/cmd/common"
	"mbh/ledger-sync/internal/container"
	"mbh/ledger-sync/internal/statement"

	"github.com/spf13/cobra"
)

// Cmd represents the balance command
var Cmd = &cobra.Command{
	Use:   "balance <firm name>",
	Short: "Print the current balance of a firm",
	Long: `Print the balance cell of a firm's tab. The name may be partial; when it
matches several firms the candidates are listed instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.OpenContainer(cmd.Context(), container.Options{DisableDedupe: true})
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		return Run(cmd.Context(), c.GetDirectory(), strings.Join(args, " "), cmd.OutOrStdout())
	},
}

// Run resolves the firm and prints its balance.
func Run(ctx context.Context, dir *statement.Directory, query string, out io.Writer) error {
	firm, err := common.ResolveFirm(ctx, dir, query)
	if err != nil {
		return err
	}
	value, err := dir.Balance(ctx, firm)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "The balance for %s is %s\n", firm, value)
	return err
}

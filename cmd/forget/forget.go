// Package forget implements the command that clears a firm's upload history.
package forget

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"mbh/ledger-sync/cmd/common"
	"mbh/ledger-sync/internal/container"
	"mbh/ledger-sync/internal/history"

	"github.com/spf13/cobra"
)

// ErrDedupeDisabled is returned when there is no upload history to edit.
var ErrDedupeDisabled = errors.New("upload history is disabled (dedupe.enabled is false)")

// Cmd represents the forget command
var Cmd = &cobra.Command{
	Use:   "forget <firm name>",
	Short: "Clear a firm's upload history so its rows are uploaded again",
	Long: `Remove every row key recorded for a firm in the local upload history. The next
sync uploads that firm's rows again, which is useful after its tab was deleted
or cleared by hand. The name must be the firm's exact tab name.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.OpenContainer(cmd.Context(), container.Options{})
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		_, err = Run(cmd.Context(), c.GetHistory(), strings.Join(args, " "), cmd.OutOrStdout())
		return err
	},
}

// Run drops the history of one firm and reports how many keys were removed.
func Run(ctx context.Context, h *history.History, firm string, out io.Writer) (int64, error) {
	if h == nil {
		return 0, ErrDedupeDisabled
	}
	firm = strings.TrimSpace(firm)
	if firm == "" {
		return 0, fmt.Errorf("a firm name is required")
	}
	removed, err := h.Forget(ctx, firm)
	if err != nil {
		return 0, err
	}
	fmt.Fprintf(out, "Forgot %d uploaded rows for %s\n", removed, firm)
	return removed, nil
}

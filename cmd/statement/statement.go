// Package statement implements the command that renders a firm's monthly
// statement as a PDF.
package statement

import (
	"context"
	"fmt"
	"io"
	"strings"

	"mbh/ledger-sync/cmd/common"
	"mbh/ledger-sync/cmd/root"
	"mbh/ledger-sync/internal/container"
	"mbh/ledger-sync/internal/logging"
	"mbh/ledger-sync/internal/statement"

	"github.com/spf13/cobra"
)

var (
	period    string
	outputDir string
)

// Cmd represents the statement command
var Cmd = &cobra.Command{
	Use:   "statement <firm name> --period <month year>",
	Short: "Render a firm's monthly statement as a PDF",
	Long: `Collect a firm's ledger rows for one month, total the credits and debits and
write the statement as <firm>_<MM>-<YYYY>.pdf. The period accepts forms such
as "MAY 24", "may 2024" or "05-2024".`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := statement.ParsePeriod(period)
		if err != nil {
			return err
		}
		c, err := common.OpenContainer(cmd.Context(), container.Options{DisableDedupe: true})
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		dir := outputDir
		if dir == "" {
			dir = c.GetConfig().Statement.OutputDir
		}
		_, err = Run(cmd.Context(), c.GetDirectory(), statement.Render, strings.Join(args, " "), p, dir, cmd.OutOrStdout())
		return err
	},
}

func init() {
	Cmd.Flags().StringVarP(&period, "period", "p", "", "Statement month, e.g. \"MAY 24\"")
	Cmd.Flags().StringVarP(&outputDir, "out", "o", "", "Output directory (default: statement.output_dir)")
	_ = Cmd.MarkFlagRequired("period")
}

// Renderer writes a statement file into a directory and returns its path.
type Renderer func(st *statement.Statement, dir string) (string, error)

// Run resolves the firm, builds its statement and renders it into dir.
func Run(ctx context.Context, directory *statement.Directory, render Renderer, query string, p statement.Period, dir string, out io.Writer) (string, error) {
	firm, err := common.ResolveFirm(ctx, directory, query)
	if err != nil {
		return "", err
	}
	st, err := directory.Statement(ctx, firm, p)
	if err != nil {
		return "", err
	}
	path, err := render(st, dir)
	if err != nil {
		return "", fmt.Errorf("failed to render statement: %w", err)
	}
	root.Log.Info("Statement written",
		logging.Field{Key: logging.FieldOutputFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(st.Lines)})

	fmt.Fprintf(out, "Statement for %s of %s: %s\n", firm, p.Label(), path)
	fmt.Fprintln(out, st.NetLine())
	return path, nil
}

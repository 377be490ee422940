// Package serve implements the command that runs the WhatsApp webhook.
package serve

import (
	"mbh/ledger-sync/cmd/common"
	"mbh/ledger-sync/internal/bot"
	"mbh/ledger-sync/internal/container"
	"mbh/ledger-sync/internal/statement"

	"github.com/spf13/cobra"
)

var addr string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Answer firm, balance and statement requests over a WhatsApp webhook",
	Long: `Run the HTTP server behind the Twilio WhatsApp webhook. Incoming messages are
answered with TwiML; generated statements are served from the statement
directory under /static/. The server stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.OpenContainer(cmd.Context(), container.Options{DisableDedupe: true})
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		return NewServer(c, addr).ListenAndServe(cmd.Context())
	},
}

func init() {
	Cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default: bot.addr)")
}

// NewServer wires the bot to the container's directory. An empty addr falls
// back to the configured one.
func NewServer(c *container.Container, addr string) *bot.Server {
	cfg := c.GetConfig()
	if addr == "" {
		addr = cfg.Bot.Addr
	}
	responder := bot.NewResponder(c.GetDirectory(), statement.Render, cfg.Statement.OutputDir, c.GetLogger())
	return bot.NewServer(bot.Config{
		Addr:           addr,
		PublicURL:      cfg.Bot.PublicURL,
		StaticDir:      cfg.Statement.OutputDir,
		RequestTimeout: cfg.BotRequestTimeout(),
	}, responder, c.GetLogger())
}

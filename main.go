package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"mbh/ledger-sync/cmd/balance"
	"mbh/ledger-sync/cmd/check"
	"mbh/ledger-sync/cmd/firms"
	"mbh/ledger-sync/cmd/forget"
	"mbh/ledger-sync/cmd/mappings"
	"mbh/ledger-sync/cmd/rebalance"
	"mbh/ledger-sync/cmd/root"
	"mbh/ledger-sync/cmd/serve"
	"mbh/ledger-sync/cmd/statement"
	"mbh/ledger-sync/cmd/sync"
	"mbh/ledger-sync/internal/config"

	"github.com/sirupsen/logrus"
)

func init() {
	// 1. Load .env silently; logging is not configured yet
	_, _ = config.LoadEnv()

	// 2. Set the global logrus level before any logger is created
	configureLogLevelDirectly()

	// 3. Root command and its persistent flags
	root.Init()

	// 4. Subcommands
	root.Cmd.AddCommand(sync.Cmd)
	root.Cmd.AddCommand(check.Cmd)
	root.Cmd.AddCommand(rebalance.Cmd)
	root.Cmd.AddCommand(firms.Cmd)
	root.Cmd.AddCommand(balance.Cmd)
	root.Cmd.AddCommand(statement.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
	root.Cmd.AddCommand(forget.Cmd)
	root.Cmd.AddCommand(mappings.Cmd)
}

// configureLogLevelDirectly applies LOG_LEVEL to the global logrus logger.
func configureLogLevelDirectly() {
	level, err := logrus.ParseLevel(strings.ToLower(config.GetEnv(config.LogLevelEnv, "info")))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.Cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Package mappings implements the commands that maintain the counterparty
// lookup tables.
package mappings

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"mbh/ledger-sync/cmd/root"
	"mbh/ledger-sync/internal/mappingstore"

	"github.com/spf13/cobra"
)

// Table kinds accepted on the command line
const (
	KindName    = "name"
	KindAccount = "account"
)

// Cmd represents the mappings command
var Cmd = &cobra.Command{
	Use:   "mappings",
	Short: "Show or edit the counterparty name and account tables",
	Long: `Show or edit the lookup tables that turn raw ledger names and payment account
numbers into the canonical firm name used as the tab name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var addCmd = &cobra.Command{
	Use:   "add <name|account> <raw value> <firm name>",
	Short: "Add or replace one mapping",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Add(newStore(), args[0], args[1], args[2], cmd.OutOrStdout())
	},
}

var listCmd = &cobra.Command{
	Use:   "list <name|account>",
	Short: "List one table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return List(newStore(), args[0], cmd.OutOrStdout())
	},
}

func init() {
	Cmd.AddCommand(addCmd, listCmd)
}

func newStore() *mappingstore.MappingStore {
	cfg := root.Config
	if cfg == nil {
		return mappingstore.NewMappingStore("", "", root.Log)
	}
	return mappingstore.NewMappingStore(cfg.Mappings.NamesFile, cfg.Mappings.AccountsFile, root.Log)
}

func load(store *mappingstore.MappingStore, kind string) (map[string]string, error) {
	switch strings.ToLower(kind) {
	case KindName:
		return store.LoadNameMappings()
	case KindAccount:
		return store.LoadAccountMappings()
	default:
		return nil, fmt.Errorf("unknown table %q (expected %s or %s)", kind, KindName, KindAccount)
	}
}

// Add stores raw -> firm in the table named by kind.
func Add(store *mappingstore.MappingStore, kind, raw, firm string, out io.Writer) error {
	raw, firm = strings.TrimSpace(raw), strings.TrimSpace(firm)
	if raw == "" || firm == "" {
		return fmt.Errorf("raw value and firm name must not be empty")
	}
	table, err := load(store, kind)
	if err != nil {
		return err
	}
	previous, replaced := table[raw]
	table[raw] = firm

	if strings.ToLower(kind) == KindName {
		err = store.SaveNameMappings(table)
	} else {
		err = store.SaveAccountMappings(table)
	}
	if err != nil {
		return err
	}
	if replaced && previous != firm {
		fmt.Fprintf(out, "Updated %s mapping %q: %s -> %s\n", strings.ToLower(kind), raw, previous, firm)
		return nil
	}
	fmt.Fprintf(out, "Mapped %s %q to %s\n", strings.ToLower(kind), raw, firm)
	return nil
}

// List prints a table sorted by raw value.
func List(store *mappingstore.MappingStore, kind string, out io.Writer) error {
	table, err := load(store, kind)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "%s\t%s\n", k, table[k])
	}
	return nil
}

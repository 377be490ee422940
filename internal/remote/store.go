// Package remote abstracts the shared spreadsheet that holds one ledger tab
// per counterparty.
package remote

import (
	"context"
	"fmt"
	"strings"

	"mbh/ledger-sync/internal/models"

	"github.com/xuri/excelize/v2"
)

// Operation names used in errors, events and failure injection.
const (
	OpTabExists    = "tab_exists"
	OpCreateTab    = "create_tab"
	OpAppendRow    = "append_row"
	OpReadAllRows  = "read_all_rows"
	OpWriteBalance = "write_balance"
	OpListTabs     = "list_tabs"
	OpWriteCell    = "write_cell"
	OpReadCell     = "read_cell"
)

// Store is a remote tabular ledger store. Write operations (CreateTab,
// AppendRow, WriteBalanceCell, WriteCell) consume the remote write quota;
// reads do not.
type Store interface {
	// TabExists reports whether a tab with exactly this name exists.
	TabExists(ctx context.Context, name string) (bool, error)
	// CreateTab creates the tab with its title, balance label and header
	// rows. It returns the number of write calls it issued, including a
	// failed one.
	CreateTab(ctx context.Context, name string) (int, error)
	// AppendRow writes row below the last non-empty row.
	AppendRow(ctx context.Context, tab string, row models.LedgerRow) error
	// ReadAllRows returns every non-empty row of the tab as displayed values.
	ReadAllRows(ctx context.Context, tab string) ([][]string, error)
	// WriteBalanceCell overwrites the aggregate balance cell.
	WriteBalanceCell(ctx context.Context, tab, formulaOrValue string) error
	// ListTabs returns the tab names in spreadsheet order.
	ListTabs(ctx context.Context) ([]string, error)
	// WriteCell overwrites one cell; row and col are 1-based.
	WriteCell(ctx context.Context, tab string, row, col int, value string) error
	// ReadCell returns the displayed value of one cell; row and col are 1-based.
	ReadCell(ctx context.Context, tab string, row, col int) (string, error)
}

// TabTitle is the text written to a new tab's title row.
func TabTitle(name string) string {
	return strings.ToUpper(name)
}

// QuoteTab quotes a tab name for use in an A1 range.
func QuoteTab(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// CellRange returns the A1 range of a single cell in tab.
func CellRange(tab string, row, col int) (string, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", fmt.Errorf("invalid cell (%d,%d): %w", row, col, err)
	}
	return QuoteTab(tab) + "!" + cell, nil
}

// scaffoldRows are the rows written above the data by CreateTab.
func scaffoldRows(name string) [][]string {
	return [][]string{
		{TabTitle(name)},
		{models.BalanceLabel},
		append([]string(nil), models.TabHeader...),
	}
}

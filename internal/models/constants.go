package models

// Remote tab layout. Rows and columns are 1-based.
const (
	TitleRow     = 1
	BalanceRow   = 2
	HeaderRow    = 3
	FirstDataRow = 4

	// HeaderRows is the number of scaffold rows above the first data row.
	HeaderRows = 3

	// TabColumns is the width of the title merge and header row.
	TabColumns = 4

	BalanceLabel = "BALANCE:"

	// BalanceCell is the A1 reference of the aggregate balance cell.
	BalanceCell = "B2"
)

// Data column letters
const (
	ColumnDate      = "A"
	ColumnReference = "B"
	ColumnCredit    = "C"
	ColumnDebit     = "D"
	ColumnRunning   = "E"
)

// RunningBalanceHeader labels the per-row running balance column.
const RunningBalanceHeader = "Balance"

// DateLayout is how ledger dates are written to and read from tabs (DD-MM-YYYY).
const DateLayout = "02-01-2006"

// IndexTab lists the firms and is never treated as a counterparty ledger.
const IndexTab = "INDEX"

// TabHeader is written to HeaderRow of every new tab.
var TabHeader = []string{"Date", "Ref No", "Credit", "Debit"}

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
	PermissionReportFile = 0644
)

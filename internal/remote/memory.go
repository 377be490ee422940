package remote

import (
	"context"
	"fmt"
	"sync"

	"mbh/ledger-sync/internal/ledgererror"
	"mbh/ledger-sync/internal/models"

	"github.com/shopspring/decimal"
)

// MemoryCreateWrites is the write count MemoryStore reports for CreateTab,
// matching SheetsStore.
const MemoryCreateWrites = 3

// MemoryStore is an in-process Store with the same tab layout as the
// spreadsheet. Formulas are kept as written and evaluated on read. Errors
// can be queued per operation to simulate remote failures.
type MemoryStore struct {
	mu       sync.Mutex
	order    []string
	tabs     map[string][][]string
	failures map[string][]error
	calls    map[string]int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tabs:     make(map[string][][]string),
		failures: make(map[string][]error),
		calls:    make(map[string]int),
	}
}

// FailNext queues errs to be returned, one per call, by the next calls of op.
func (m *MemoryStore) FailNext(op string, errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = append(m.failures[op], errs...)
}

// Calls returns how many times op was invoked, failed calls included.
func (m *MemoryStore) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// SetRows replaces a tab's raw cells, creating the tab if needed.
func (m *MemoryStore) SetRows(tab string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tabs[tab]; !ok {
		m.order = append(m.order, tab)
	}
	m.tabs[tab] = copyRows(rows)
}

// RawRows returns a tab's cells with formulas unevaluated.
func (m *MemoryStore) RawRows(tab string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyRows(m.tabs[tab])
}

// Balance evaluates the tab's balance cell.
func (m *MemoryStore) Balance(tab string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.tabs[tab]
	if !ok {
		return decimal.Zero, ledgererror.ErrTabNotFound
	}
	return evaluateCell(rows, models.BalanceRow, 2)
}

// begin counts the call and pops a queued failure. Callers hold m.mu.
func (m *MemoryStore) begin(ctx context.Context, op string) error {
	m.calls[op]++
	if err := ctx.Err(); err != nil {
		return err
	}
	if queue := m.failures[op]; len(queue) > 0 {
		m.failures[op] = queue[1:]
		return queue[0]
	}
	return nil
}

// TabExists implements Store.
func (m *MemoryStore) TabExists(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx, OpTabExists); err != nil {
		return false, err
	}
	_, ok := m.tabs[name]
	return ok, nil
}

// ListTabs implements Store.
func (m *MemoryStore) ListTabs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx, OpListTabs); err != nil {
		return nil, err
	}
	return append([]string(nil), m.order...), nil
}

// CreateTab implements Store. An existing tab keeps its data rows and gets
// its scaffold rewritten.
func (m *MemoryStore) CreateTab(ctx context.Context, name string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx, OpCreateTab); err != nil {
		return 1, err
	}
	scaffold := scaffoldRows(name)
	rows, ok := m.tabs[name]
	if !ok {
		m.order = append(m.order, name)
	}
	if len(rows) > len(scaffold) {
		rows = append(scaffold, rows[len(scaffold):]...)
	} else {
		rows = scaffold
	}
	m.tabs[name] = rows
	return MemoryCreateWrites, nil
}

// AppendRow implements Store.
func (m *MemoryStore) AppendRow(ctx context.Context, tab string, row models.LedgerRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx, OpAppendRow); err != nil {
		return err
	}
	rows, ok := m.tabs[tab]
	if !ok {
		return notFound(OpAppendRow, tab)
	}
	m.tabs[tab] = append(rows, row.Values())
	return nil
}

// ReadAllRows implements Store. Formula cells are returned evaluated.
func (m *MemoryStore) ReadAllRows(ctx context.Context, tab string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx, OpReadAllRows); err != nil {
		return nil, err
	}
	rows, ok := m.tabs[tab]
	if !ok {
		return nil, notFound(OpReadAllRows, tab)
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, len(row))
		for j := range row {
			out[i][j] = displayValue(rows, i+1, j+1)
		}
	}
	return out, nil
}

// WriteBalanceCell implements Store.
func (m *MemoryStore) WriteBalanceCell(ctx context.Context, tab, formulaOrValue string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx, OpWriteBalance); err != nil {
		return err
	}
	return m.set(OpWriteBalance, tab, models.BalanceRow, 2, formulaOrValue)
}

// WriteCell implements Store.
func (m *MemoryStore) WriteCell(ctx context.Context, tab string, row, col int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx, OpWriteCell); err != nil {
		return err
	}
	return m.set(OpWriteCell, tab, row, col, value)
}

// ReadCell implements Store.
func (m *MemoryStore) ReadCell(ctx context.Context, tab string, row, col int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx, OpReadCell); err != nil {
		return "", err
	}
	rows, ok := m.tabs[tab]
	if !ok {
		return "", notFound(OpReadCell, tab)
	}
	return displayValue(rows, row, col), nil
}

func (m *MemoryStore) set(op, tab string, row, col int, value string) error {
	rows, ok := m.tabs[tab]
	if !ok {
		return notFound(op, tab)
	}
	if row < 1 || col < 1 {
		return &ledgererror.RemoteAPIError{Operation: op, StatusCode: 400, Err: fmt.Errorf("invalid cell (%d,%d)", row, col)}
	}
	for len(rows) < row {
		rows = append(rows, nil)
	}
	for len(rows[row-1]) < col {
		rows[row-1] = append(rows[row-1], "")
	}
	rows[row-1][col-1] = value
	m.tabs[tab] = rows
	return nil
}

func notFound(op, tab string) error {
	return &ledgererror.RemoteAPIError{
		Operation:  op,
		StatusCode: 400,
		Err:        fmt.Errorf("%w: %s", ledgererror.ErrTabNotFound, tab),
	}
}

func copyRows(rows [][]string) [][]string {
	if rows == nil {
		return nil
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

package statement

import (
	"context"
	"fmt"
	"strings"

	"mbh/ledger-sync/internal/models"
	"mbh/ledger-sync/internal/remote"
)

// Directory looks up firms, balances and statements in the remote ledger.
type Directory struct {
	store    remote.Store
	indexTab string
}

// NewDirectory creates a Directory reading firm names from indexTab
// (models.IndexTab when empty).
func NewDirectory(store remote.Store, indexTab string) *Directory {
	if indexTab == "" {
		indexTab = models.IndexTab
	}
	return &Directory{store: store, indexTab: indexTab}
}

// Firms returns the firm names listed in column A of the index tab, below
// its header.
func (d *Directory) Firms(ctx context.Context) ([]string, error) {
	rows, err := d.store.ReadAllRows(ctx, d.indexTab)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", d.indexTab, err)
	}
	var firms []string
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		if name := strings.TrimSpace(row[0]); name != "" {
			firms = append(firms, name)
		}
	}
	return firms, nil
}

// Match returns the firms whose name contains query, ignoring case. A firm
// named exactly query is returned alone.
func (d *Directory) Match(ctx context.Context, query string) ([]string, error) {
	firms, err := d.Firms(ctx)
	if err != nil {
		return nil, err
	}
	return MatchFirms(firms, query), nil
}

// MatchFirms is the matching rule used by Match.
func MatchFirms(firms []string, query string) []string {
	needle := strings.ToUpper(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}
	var matches []string
	for _, firm := range firms {
		upper := strings.ToUpper(firm)
		if upper == needle {
			return []string{firm}
		}
		if strings.Contains(upper, needle) {
			matches = append(matches, firm)
		}
	}
	return matches
}

// Balance returns the displayed balance cell of the firm's tab.
func (d *Directory) Balance(ctx context.Context, firm string) (string, error) {
	value, err := d.store.ReadCell(ctx, firm, models.BalanceRow, 2)
	if err != nil {
		return "", fmt.Errorf("failed to read balance for %s: %w", firm, err)
	}
	return strings.TrimSpace(value), nil
}

// Statement builds the firm's statement for period.
func (d *Directory) Statement(ctx context.Context, firm string, period Period) (*Statement, error) {
	rows, err := d.store.ReadAllRows(ctx, firm)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger for %s: %w", firm, err)
	}
	return Build(firm, period, rows)
}

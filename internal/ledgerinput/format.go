package ledgerinput

import (
	"fmt"
	"strings"

	"mbh/ledger-sync/internal/dateutils"
)

// Format identifies a ledger file layout.
type Format string

// Supported ledger layouts
const (
	FormatAuto     Format = "auto"
	FormatPurchase Format = "purchase"
	FormatPayment  Format = "payment"
)

// ParseFormat converts a flag or config value to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatPurchase, FormatPayment:
		return f, nil
	default:
		return "", fmt.Errorf("unknown ledger format %q (expected purchase, payment or auto)", s)
	}
}

// column maps the accepted source headers to the RawRecord csv tag.
type column struct {
	canonical string
	names     []string
}

type layout struct {
	format      Format
	columns     []column
	dateLayouts []string
	// marker is a header that only this layout carries.
	marker string
}

var layouts = map[Format]layout{
	FormatPurchase: {
		format: FormatPurchase,
		columns: []column{
			{canonical: "Particulars", names: []string{"Particulars"}},
			{canonical: "Date", names: []string{"Date"}},
			{canonical: "Ref No", names: []string{"Ref No", "Ref No.", "Reference No"}},
			{canonical: "Credit", names: []string{"Credit"}},
			{canonical: "Debit", names: []string{"Debit"}},
		},
		dateLayouts: []string{dateutils.DateLayoutPurchase, dateutils.DateLayoutLedger},
		marker:      "Particulars",
	},
	FormatPayment: {
		format: FormatPayment,
		columns: []column{
			{canonical: "Particulars", names: []string{"Beneciary Name", "Beneficiary Name"}},
			{canonical: "Date", names: []string{"Payment Date"}},
			{canonical: "Ref No", names: []string{"Reference No.", "Reference No"}},
			{canonical: "Debit", names: []string{"Transfer Amount"}},
			{canonical: "Credit A/c No", names: []string{"Credit A/c No", "Credit A/C No", "Credit Account No"}},
		},
		dateLayouts: []string{dateutils.DateLayoutPayment, dateutils.DateLayoutLedger},
		marker:      "Transfer Amount",
	},
}

// detect picks the layout whose marker header appears in row.
func detect(row []string) (layout, bool) {
	for _, f := range []Format{FormatPayment, FormatPurchase} {
		l := layouts[f]
		if indexOf(row, l.marker) >= 0 {
			return l, true
		}
	}
	return layout{}, false
}

// sourceNames returns, for each column, the header text present in row or
// the column's primary name when absent.
func (l layout) sourceNames(row []string) []string {
	names := make([]string, 0, len(l.columns))
	for _, c := range l.columns {
		name := c.names[0]
		for _, candidate := range c.names {
			if i := indexOf(row, candidate); i >= 0 {
				name = strings.TrimSpace(row[i])
				break
			}
		}
		names = append(names, name)
	}
	return names
}

// canonicalHeader rewrites row so known headers carry their RawRecord tag.
func (l layout) canonicalHeader(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = strings.TrimSpace(cell)
		for _, c := range l.columns {
			if containsFold(c.names, out[i]) {
				out[i] = c.canonical
				break
			}
		}
	}
	return out
}

// matches reports whether row holds at least one header of every column.
func (l layout) matches(row []string) bool {
	for _, c := range l.columns {
		found := false
		for _, n := range c.names {
			if indexOf(row, n) >= 0 {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func indexOf(row []string, name string) int {
	for i, cell := range row {
		if strings.EqualFold(strings.TrimSpace(cell), name) {
			return i
		}
	}
	return -1
}

func containsFold(names []string, s string) bool {
	for _, n := range names {
		if strings.EqualFold(n, s) {
			return true
		}
	}
	return false
}

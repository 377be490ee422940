package remote

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// maxFormulaDepth bounds reference chains such as running balance columns.
const maxFormulaDepth = 10000

// displayValue returns the cell as the spreadsheet would show it: formulas
// evaluated, everything else verbatim. Unevaluable formulas show "#ERROR!".
func displayValue(rows [][]string, row, col int) string {
	raw := rawCell(rows, row, col)
	if !strings.HasPrefix(raw, "=") {
		return raw
	}
	v, err := evaluateCell(rows, row, col)
	if err != nil {
		return "#ERROR!"
	}
	return v.String()
}

func rawCell(rows [][]string, row, col int) string {
	if row < 1 || row > len(rows) || col < 1 || col > len(rows[row-1]) {
		return ""
	}
	return rows[row-1][col-1]
}

// evaluateCell computes a cell holding a number or a formula made of SUM
// ranges, cell references and numbers joined by + and -.
func evaluateCell(rows [][]string, row, col int) (decimal.Decimal, error) {
	return (&evaluator{rows: rows}).cell(row, col, 0)
}

type evaluator struct {
	rows [][]string
}

func (e *evaluator) cell(row, col, depth int) (decimal.Decimal, error) {
	if depth > maxFormulaDepth {
		return decimal.Zero, fmt.Errorf("formula nesting too deep")
	}
	raw := strings.TrimSpace(rawCell(e.rows, row, col))
	if raw == "" {
		return decimal.Zero, nil
	}
	if !strings.HasPrefix(raw, "=") {
		d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
		if err != nil {
			// Text cells count as zero, as in SUM.
			return decimal.Zero, nil
		}
		return d, nil
	}
	return e.expression(strings.ToUpper(strings.ReplaceAll(raw[1:], " ", "")), depth)
}

func (e *evaluator) expression(expr string, depth int) (decimal.Decimal, error) {
	total := decimal.Zero
	sign := decimal.NewFromInt(1)
	start := 0
	for i := 0; i <= len(expr); i++ {
		if i < len(expr) && expr[i] != '+' && expr[i] != '-' {
			continue
		}
		if i < len(expr) && i == start {
			// leading or doubled sign
			if expr[i] == '-' {
				sign = sign.Neg()
			}
			start = i + 1
			continue
		}
		v, err := e.term(expr[start:i], depth)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(v.Mul(sign))
		if i < len(expr) && expr[i] == '-' {
			sign = decimal.NewFromInt(-1)
		} else {
			sign = decimal.NewFromInt(1)
		}
		start = i + 1
	}
	return total, nil
}

func (e *evaluator) term(term string, depth int) (decimal.Decimal, error) {
	if strings.HasPrefix(term, "SUM(") && strings.HasSuffix(term, ")") {
		from, to, ok := strings.Cut(term[4:len(term)-1], ":")
		if !ok {
			to = from
		}
		c1, r1, err := excelize.CellNameToCoordinates(from)
		if err != nil {
			return decimal.Zero, err
		}
		c2, r2, err := excelize.CellNameToCoordinates(to)
		if err != nil {
			return decimal.Zero, err
		}
		sum := decimal.Zero
		for r := r1; r <= r2; r++ {
			for c := c1; c <= c2; c++ {
				v, err := e.cell(r, c, depth+1)
				if err != nil {
					return decimal.Zero, err
				}
				sum = sum.Add(v)
			}
		}
		return sum, nil
	}
	if d, err := decimal.NewFromString(term); err == nil {
		return d, nil
	}
	c, r, err := excelize.CellNameToCoordinates(term)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unsupported formula term %q", term)
	}
	return e.cell(r, c, depth+1)
}

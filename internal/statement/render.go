package statement

import (
	"fmt"
	"os"
	"path/filepath"

	"mbh/ledger-sync/internal/currencyutils"
	"mbh/ledger-sync/internal/fileutils"
	"mbh/ledger-sync/internal/models"

	"github.com/go-pdf/fpdf"
)

const (
	columnWidth = 40.0
	headerRowH  = 10.0
	lineH       = 7.0
)

// FileName returns "<firm>_<MM>-<YYYY>.pdf" with spaces in the firm name
// replaced by underscores.
func FileName(firm string, period Period) string {
	return fmt.Sprintf("%s_%s.pdf", fileutils.SanitizeFileName(firm), period.String())
}

// Render writes the statement as a PDF into dir, replacing any earlier file
// for the same firm and month. It returns the file path.
func Render(st *Statement, dir string) (string, error) {
	if err := fileutils.EnsureDirectoryExists(dir); err != nil {
		return "", fmt.Errorf("failed to create statement directory: %w", err)
	}
	path := filepath.Join(dir, FileName(st.Firm, st.Period))

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, headerRowH, tr(fmt.Sprintf("Statement for %s of %s", st.Firm, st.Period.Label())),
		"", 1, "C", false, 0, "")

	pageWidth, _ := pdf.GetPageSize()
	startX := (pageWidth - float64(len(models.TabHeader))*columnWidth) / 2

	pdf.SetFont("Arial", "B", 12)
	pdf.SetX(startX)
	for _, h := range models.TabHeader {
		pdf.CellFormat(columnWidth, headerRowH, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, line := range st.Lines {
		pdf.SetX(startX)
		pdf.CellFormat(columnWidth, lineH, line.Date.Format(models.DateLayout), "1", 0, "", false, 0, "")
		pdf.CellFormat(columnWidth, lineH, tr(line.Reference), "1", 0, "", false, 0, "")
		pdf.CellFormat(columnWidth, lineH, currencyutils.FormatINR(line.Credit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(columnWidth, lineH, currencyutils.FormatINR(line.Debit), "1", 1, "R", false, 0, "")
	}

	pdf.SetX(startX)
	pdf.CellFormat(2*columnWidth, lineH, "Total:", "1", 0, "", false, 0, "")
	pdf.CellFormat(columnWidth, lineH, currencyutils.FormatINR(st.TotalCredit), "1", 0, "R", false, 0, "")
	pdf.CellFormat(columnWidth, lineH, currencyutils.FormatINR(st.TotalDebit), "1", 1, "R", false, 0, "")

	pdf.SetX(startX)
	pdf.CellFormat(0, headerRowH, st.NetLine(), "", 1, "L", false, 0, "")

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to replace %s: %w", path, err)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write statement PDF: %w", err)
	}
	return path, nil
}

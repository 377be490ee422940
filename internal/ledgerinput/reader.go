// Package ledgerinput reads purchase and payment ledgers from Excel or CSV
// files into counterparty-tagged ledger rows.
package ledgerinput

import (
	"errors"
	"fmt"
	"strings"

	"mbh/ledger-sync/internal/currencyutils"
	"mbh/ledger-sync/internal/dateutils"
	"mbh/ledger-sync/internal/ledgererror"
	"mbh/ledger-sync/internal/logging"
	"mbh/ledger-sync/internal/models"
	"mbh/ledger-sync/internal/validation"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// headerSearchRows bounds how far down a sheet the header row may sit.
const headerSearchRows = 20

// Normalizer resolves raw counterparty identifiers.
type Normalizer interface {
	Normalize(rawIdentifier, rawAccountNumber string) string
}

// Result is the outcome of reading one file.
type Result struct {
	Path    string
	Format  Format
	Entries []models.Entry
	// Skipped lists the rows dropped because a value could not be parsed.
	Skipped []*ledgererror.ParseError
}

// Reader turns ledger files into entries.
type Reader struct {
	normalizer Normalizer
	logger     logging.Logger
}

// NewReader creates a Reader.
func NewReader(normalizer Normalizer, logger logging.Logger) *Reader {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Reader{normalizer: normalizer, logger: logger}
}

// ReadFile reads path in the given format (FormatAuto detects it from the
// header). A missing required column is a *ledgererror.ValidationError.
func (r *Reader) ReadFile(path string, format Format) (*Result, error) {
	if _, known := layouts[format]; !known && format != FormatAuto {
		return nil, fmt.Errorf("unknown ledger format %q", format)
	}
	if err := validation.IsValidInputFile(path); err != nil {
		return nil, err
	}

	rows, err := readTable(path)
	if err != nil {
		return nil, err
	}

	l, headerIdx, err := locateHeader(path, rows, format)
	if err != nil {
		return nil, err
	}

	header := l.canonicalHeader(rows[headerIdx])
	table := [][]string{header}
	sourceRows := []int{}
	for i := headerIdx + 1; i < len(rows); i++ {
		if isBlank(rows[i]) {
			continue
		}
		table = append(table, pad(rows[i], len(header)))
		sourceRows = append(sourceRows, i+1)
	}

	var records []models.RawRecord
	if len(table) > 1 {
		if err := gocsv.UnmarshalCSV(&tableReader{rows: table}, &records); err != nil {
			return nil, fmt.Errorf("error decoding %s: %w", path, err)
		}
	}

	result := &Result{Path: path, Format: l.format}
	for i, rec := range records {
		entry, err := r.toEntry(l, rec, sourceRows[i])
		if err != nil {
			var pe *ledgererror.ParseError
			if !errors.As(err, &pe) {
				return nil, err
			}
			r.logger.WithError(err).Warn("Skipping unparseable row",
				logging.Field{Key: logging.FieldInputFile, Value: path},
				logging.Field{Key: logging.FieldRow, Value: pe.Row})
			result.Skipped = append(result.Skipped, pe)
			continue
		}
		result.Entries = append(result.Entries, entry)
	}

	r.logger.Info("Read ledger file",
		logging.Field{Key: logging.FieldInputFile, Value: path},
		logging.Field{Key: logging.FieldFormat, Value: string(l.format)},
		logging.Field{Key: logging.FieldCount, Value: len(result.Entries)})
	return result, nil
}

// locateHeader finds the header row among the first rows of the table.
func locateHeader(path string, rows [][]string, format Format) (layout, int, error) {
	limit := len(rows)
	if limit > headerSearchRows {
		limit = headerSearchRows
	}

	candidate := -1
	var candidateLayout layout
	for i := 0; i < limit; i++ {
		if isBlank(rows[i]) {
			continue
		}
		l, ok := layouts[format]
		if format == FormatAuto {
			l, ok = detect(rows[i])
		} else if ok && indexOf(rows[i], l.marker) < 0 {
			ok = false
		}
		if !ok {
			continue
		}
		if l.matches(rows[i]) {
			return l, i, nil
		}
		if candidate < 0 {
			candidate, candidateLayout = i, l
		}
	}

	if candidate < 0 {
		if format == FormatAuto {
			return layout{}, 0, &ledgererror.ValidationError{
				FilePath: path,
				Reason:   "cannot detect ledger format: no Particulars or Transfer Amount column",
			}
		}
		l := layouts[format]
		return layout{}, 0, &ledgererror.ValidationError{
			FilePath: path,
			Reason:   fmt.Sprintf("no header row with a %q column", l.marker),
		}
	}

	// Report the missing columns against the row that looked like a header.
	header := rows[candidate]
	if err := validation.RequireColumns(path, header, candidateLayout.sourceNames(header)); err != nil {
		return layout{}, 0, err
	}
	return layout{}, 0, &ledgererror.ValidationError{FilePath: path, Reason: "no header row found"}
}

func (r *Reader) toEntry(l layout, rec models.RawRecord, rowNum int) (models.Entry, error) {
	parseErr := func(field, value string, err error) error {
		return &ledgererror.ParseError{Format: string(l.format), Row: rowNum, Field: field, Value: value, Err: err}
	}

	date, _, err := dateutils.ParseDate(rec.Date, l.dateLayouts...)
	if err != nil {
		return models.Entry{}, parseErr("Date", rec.Date, err)
	}

	credit := decimal.Zero
	if l.format == FormatPurchase {
		if credit, err = currencyutils.ParseAmount(rec.Credit); err != nil {
			return models.Entry{}, parseErr("Credit", rec.Credit, err)
		}
	}
	debit, err := currencyutils.ParseAmount(rec.Debit)
	if err != nil {
		return models.Entry{}, parseErr("Debit", rec.Debit, err)
	}

	row, err := models.NewLedgerRow(date, normalizeReference(rec.RefNo), credit, debit)
	if err != nil {
		return models.Entry{}, parseErr("Amount", credit.String()+"/"+debit.String(), err)
	}

	identifier := strings.TrimSpace(rec.Particulars)
	account := identifier
	if l.format == FormatPayment {
		account = normalizeAccount(rec.CreditAccountNo)
	}
	counterparty := r.normalizer.Normalize(identifier, account)
	if counterparty == "" {
		return models.Entry{}, parseErr("Particulars", rec.Particulars, errors.New("no counterparty name or account number"))
	}

	return models.Entry{Counterparty: counterparty, Row: row}, nil
}

// normalizeAccount turns spreadsheet renderings such as "5.02000123E+13" or
// "1234.0" back into the digit string.
func normalizeAccount(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.ContainsAny(s, ".eE") {
		return s
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return s
	}
	return d.String()
}

// normalizeReference drops the ".0" spreadsheets append to numeric references.
func normalizeReference(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasSuffix(s, ".0") {
		if d, err := decimal.NewFromString(s); err == nil && d.IsInteger() {
			return d.String()
		}
	}
	return s
}

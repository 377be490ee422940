package ledgerinput

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mbh/ledger-sync/internal/ledgererror"
	"mbh/ledger-sync/internal/logging"
	"mbh/ledger-sync/internal/normalizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func writeXLSX(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func newTestReader() (*Reader, *logging.MockLogger) {
	logger := logging.NewMockLogger()
	n := normalizer.New(
		map[string]string{"M/S KRISHNA": "KRISHNA TRADERS"},
		map[string]string{"50200012345678": "RAJ ENTERPRISES"},
	)
	return NewReader(n, logger), logger
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" Payment ")
	require.NoError(t, err)
	assert.Equal(t, FormatPayment, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatAuto, f)

	_, err = ParseFormat("sales")
	assert.Error(t, err)
}

func TestReadFile_PurchaseCSV(t *testing.T) {
	path := writeCSV(t, `Particulars,Date,Ref No,Credit,Debit
M/S KRISHNA ,05-Mar-24,INV-1,"1,200.50",0
SHRI SAI,06-Mar-24,INV-2,,300
M/S KRISHNA,07-Mar-24,INV-3,0,50
`)
	reader, _ := newTestReader()

	result, err := reader.ReadFile(path, FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, FormatPurchase, result.Format)
	require.Len(t, result.Entries, 3)

	first := result.Entries[0]
	assert.Equal(t, "KRISHNA TRADERS", first.Counterparty)
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), first.Row.Date)
	assert.Equal(t, "INV-1", first.Row.Reference)
	assert.Equal(t, "1200.5", first.Row.Credit.String())
	assert.True(t, first.Row.Debit.IsZero())

	assert.Equal(t, "SHRI SAI", result.Entries[1].Counterparty)
	assert.True(t, result.Entries[1].Row.Credit.IsZero())
	assert.Equal(t, "300", result.Entries[1].Row.Debit.String())
	assert.Empty(t, result.Skipped)
}

func TestReadFile_PaymentCSV(t *testing.T) {
	path := writeCSV(t, `Beneciary Name,Payment Date,Reference No.,Transfer Amount,Credit A/c No
,31/01/2024,UTR1,5000,5.0200012345678E+13
ACME,01/02/2024,UTR2,"2,500",11112222
`)
	reader, _ := newTestReader()

	result, err := reader.ReadFile(path, FormatPayment)
	require.NoError(t, err)
	require.Len(t, result.Entries, 2)

	assert.Equal(t, "RAJ ENTERPRISES", result.Entries[0].Counterparty)
	assert.True(t, result.Entries[0].Row.Credit.IsZero())
	assert.Equal(t, "5000", result.Entries[0].Row.Debit.String())
	assert.Equal(t, time.January, result.Entries[0].Row.Date.Month())
	assert.Equal(t, 31, result.Entries[0].Row.Date.Day())

	assert.Equal(t, "ACME", result.Entries[1].Counterparty)
	assert.Equal(t, "2500", result.Entries[1].Row.Debit.String())
}

func TestReadFile_BadRowsSkipped(t *testing.T) {
	path := writeCSV(t, `Particulars,Date,Ref No,Credit,Debit
A,05-Mar-24,1,100,0
TOTAL,,,100,0
B,06-Mar-24,2,abc,0
C,07-Mar-24,3,-5,0
`)
	reader, logger := newTestReader()

	result, err := reader.ReadFile(path, FormatPurchase)
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	require.Len(t, result.Skipped, 3)
	assert.Equal(t, 3, result.Skipped[0].Row)
	assert.Equal(t, "Date", result.Skipped[0].Field)
	assert.Equal(t, "Credit", result.Skipped[1].Field)
	assert.Equal(t, "Amount", result.Skipped[2].Field)
	assert.Len(t, logger.GetEntriesByLevel("WARN"), 3)
}

func TestReadFile_MissingColumn(t *testing.T) {
	path := writeCSV(t, `Particulars,Date,Credit,Debit
A,05-Mar-24,100,0
`)
	reader, _ := newTestReader()

	_, err := reader.ReadFile(path, FormatAuto)
	var ve *ledgererror.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Contains(t, ve.Reason, "Ref No")
}

func TestReadFile_UndetectableFormat(t *testing.T) {
	path := writeCSV(t, "Name,Amount\nA,1\n")
	reader, _ := newTestReader()

	_, err := reader.ReadFile(path, FormatAuto)
	var ve *ledgererror.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Reason, "cannot detect")
}

func TestReadFile_XLSXWithTitleRowsAndSerialDates(t *testing.T) {
	path := writeXLSX(t, [][]interface{}{
		{"PURCHASE REGISTER"},
		{},
		{"Particulars", "Date", "Ref No", "Credit", "Debit"},
		{"M/S KRISHNA", time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC), "R1", 200, 0},
		{"B", "03-May-24", 77.0, 0, 10.5},
		{"C", "04-May-24", "R3", 25},
	})
	reader, _ := newTestReader()

	result, err := reader.ReadFile(path, FormatAuto)
	require.NoError(t, err)
	require.Len(t, result.Entries, 3)

	assert.Equal(t, "KRISHNA TRADERS", result.Entries[0].Counterparty)
	assert.Equal(t, time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC), result.Entries[0].Row.Date)
	assert.Equal(t, "200", result.Entries[0].Row.Credit.String())

	assert.Equal(t, "77", result.Entries[1].Row.Reference)
	assert.Equal(t, "10.5", result.Entries[1].Row.Debit.String())

	// trailing blank debit cell
	assert.Equal(t, "25", result.Entries[2].Row.Credit.String())
	assert.True(t, result.Entries[2].Row.Debit.IsZero())
}

func TestReadFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))
	reader, _ := newTestReader()

	_, err := reader.ReadFile(path, FormatAuto)
	var ve *ledgererror.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestNormalizeAccount(t *testing.T) {
	assert.Equal(t, "50200012345678", normalizeAccount("5.0200012345678E+13"))
	assert.Equal(t, "1234", normalizeAccount(" 1234.0 "))
	assert.Equal(t, "12.5", normalizeAccount("12.5"))
	assert.Equal(t, "ABC-1", normalizeAccount("ABC-1"))
}

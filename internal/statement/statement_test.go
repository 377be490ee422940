package statement

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mbh/ledger-sync/internal/models"
	"mbh/ledger-sync/internal/remote"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input string
		want  Period
	}{
		{"MAY 24", Period{time.May, 2024}},
		{"may 2024", Period{time.May, 2024}},
		{"05-2024", Period{time.May, 2024}},
		{"5/24", Period{time.May, 2024}},
		{"September 23", Period{time.September, 2023}},
		{" jan 25 ", Period{time.January, 2025}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePeriod(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePeriod_Invalid(t *testing.T) {
	for _, input := range []string{"", "MAY", "13-2024", "MA 24", "MAY 202", "FOO 24", "MAY 24 25"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParsePeriod(input)
			assert.Error(t, err)
		})
	}
}

func TestPeriod_Format(t *testing.T) {
	p := Period{time.May, 2024}
	assert.Equal(t, "05-2024", p.String())
	assert.Equal(t, "May 2024", p.Label())
	assert.True(t, p.Contains(time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)))
}

func ledger(data ...[]string) [][]string {
	return append([][]string{{"SHRI SAI"}, {models.BalanceLabel, "0"}, models.TabHeader}, data...)
}

func TestBuild(t *testing.T) {
	rows := ledger(
		[]string{"01-05-2024", "R1", "100", "0"},
		[]string{"(15-05-2024)", "R2", "0", "30"},
		[]string{"20-05-2024", "R3", "n/a", "5"},
		[]string{"01-06-2024", "R4", "999", "0"},
		[]string{"not a date", "R5", "1", "0"},
		[]string{"31-05-2024", "R6"},
	)

	st, err := Build("SHRI SAI", Period{time.May, 2024}, rows)
	require.NoError(t, err)

	require.Len(t, st.Lines, 3)
	assert.Equal(t, "R2", st.Lines[1].Reference)
	assert.True(t, decimal.NewFromInt(100).Equal(st.TotalCredit))
	assert.True(t, decimal.NewFromInt(35).Equal(st.TotalDebit))
	assert.True(t, decimal.NewFromInt(65).Equal(st.Net()))
	assert.Equal(t, "Net Payable:  65.00", st.NetLine())
}

func TestBuild_Receivable(t *testing.T) {
	st, err := Build("A", Period{time.May, 2024}, ledger([]string{"01-05-2024", "R1", "0", "150000"}))
	require.NoError(t, err)
	assert.Equal(t, "Net Receivable:  1,50,000.00", st.NetLine())
}

func TestBuild_NoData(t *testing.T) {
	_, err := Build("A", Period{time.May, 2024}, ledger([]string{"01-06-2024", "R1", "10", "0"}))
	assert.ErrorIs(t, err, ErrNoData)
	assert.Contains(t, err.Error(), "May 2024")
}

func newDirectory(t *testing.T) (*Directory, *remote.MemoryStore) {
	t.Helper()
	store := remote.NewMemoryStore()
	store.SetRows(models.IndexTab, [][]string{
		{"Firm"}, {"SHRI SAI AGENCIES"}, {"SHRI SAI AGENCIES RKE"}, {""}, {"KRISHNA TRADERS"},
	})
	rows := ledger(
		[]string{"01-05-2024", "R1", "200", "0"},
		[]string{"02-05-2024", "R2", "0", "50"},
	)
	rows[1] = []string{models.BalanceLabel, models.BalanceFormula(5)}
	store.SetRows("KRISHNA TRADERS", rows)
	return NewDirectory(store, ""), store
}

func TestDirectory_Firms(t *testing.T) {
	dir, _ := newDirectory(t)
	firms, err := dir.Firms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"SHRI SAI AGENCIES", "SHRI SAI AGENCIES RKE", "KRISHNA TRADERS"}, firms)
}

func TestDirectory_Match(t *testing.T) {
	dir, _ := newDirectory(t)
	ctx := context.Background()

	matches, err := dir.Match(ctx, "sai")
	require.NoError(t, err)
	assert.Equal(t, []string{"SHRI SAI AGENCIES", "SHRI SAI AGENCIES RKE"}, matches)

	matches, err = dir.Match(ctx, "shri sai agencies")
	require.NoError(t, err)
	assert.Equal(t, []string{"SHRI SAI AGENCIES"}, matches)

	matches, err = dir.Match(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, matches)

	assert.Empty(t, MatchFirms([]string{"A"}, "  "))
}

func TestDirectory_BalanceAndStatement(t *testing.T) {
	dir, _ := newDirectory(t)
	ctx := context.Background()

	balance, err := dir.Balance(ctx, "KRISHNA TRADERS")
	require.NoError(t, err)
	assert.Equal(t, "150", balance)

	st, err := dir.Statement(ctx, "KRISHNA TRADERS", Period{time.May, 2024})
	require.NoError(t, err)
	assert.Len(t, st.Lines, 2)

	_, err = dir.Balance(ctx, "MISSING")
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	st, err := Build("SHRI SAI AGENCIES", Period{time.May, 2024}, ledger(
		[]string{"01-05-2024", "R1", "123456.5", "0"},
		[]string{"02-05-2024", "R2", "0", "30"},
	))
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "static")
	path, err := Render(st, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "SHRI_SAI_AGENCIES_05-2024.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(data) > 4 && string(data[:4]) == "%PDF")

	// Rendering again replaces the file.
	_, err = Render(st, dir)
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "A_B_C_12-2024.pdf", FileName("A B C", Period{time.December, 2024}))
	assert.Equal(t, "AB_01-2025.pdf", FileName("A/B", Period{time.January, 2025}))
}

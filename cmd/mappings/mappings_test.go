package mappings

import (
	"bytes"
	"path/filepath"
	"testing"

	"mbh/ledger-sync/internal/logging"
	"mbh/ledger-sync/internal/mappingstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *mappingstore.MappingStore {
	t.Helper()
	dir := t.TempDir()
	return mappingstore.NewMappingStore(filepath.Join(dir, "names.yaml"), filepath.Join(dir, "accounts.yaml"), logging.NewMockLogger())
}

func TestMappingsCommand_Metadata(t *testing.T) {
	assert.Equal(t, "mappings", Cmd.Use)
	assert.Contains(t, Cmd.Short, "counterparty")

	names := map[string]bool{}
	for _, sub := range Cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["add"])
	assert.True(t, names["list"])
	assert.Error(t, addCmd.Args(addCmd, []string{"name", "raw"}))
}

func TestAdd_NameThenList(t *testing.T) {
	store := newTestStore(t)
	var out bytes.Buffer

	require.NoError(t, Add(store, "name", " M/S KRISHNA ", "KRISHNA TRADERS", &out))
	assert.Equal(t, "Mapped name \"M/S KRISHNA\" to KRISHNA TRADERS\n", out.String())

	out.Reset()
	require.NoError(t, Add(store, "NAME", "M/S KRISHNA", "KRISHNA AGENCIES", &out))
	assert.Contains(t, out.String(), "Updated name mapping")

	require.NoError(t, Add(store, "name", "SAI", "SHRI SAI TRADERS", &bytes.Buffer{}))

	table, err := store.LoadNameMappings()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"M/S KRISHNA": "KRISHNA AGENCIES", "SAI": "SHRI SAI TRADERS"}, table)

	out.Reset()
	require.NoError(t, List(store, "name", &out))
	assert.Equal(t, "M/S KRISHNA\tKRISHNA AGENCIES\nSAI\tSHRI SAI TRADERS\n", out.String())
}

func TestAdd_Account(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, Add(store, "account", "50100012345678", "KRISHNA TRADERS", &bytes.Buffer{}))

	table, err := store.LoadAccountMappings()
	require.NoError(t, err)
	assert.Equal(t, "KRISHNA TRADERS", table["50100012345678"])

	names, err := store.LoadNameMappings()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestAdd_Invalid(t *testing.T) {
	store := newTestStore(t)
	assert.ErrorContains(t, Add(store, "phone", "1", "A", &bytes.Buffer{}), "unknown table")
	assert.ErrorContains(t, Add(store, "name", " ", "A", &bytes.Buffer{}), "must not be empty")
}

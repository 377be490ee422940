package serve

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mbh/ledger-sync/internal/config"
	"mbh/ledger-sync/internal/container"
	"mbh/ledger-sync/internal/logging"
	"mbh/ledger-sync/internal/remote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func TestServeCommand_Metadata(t *testing.T) {
	assert.Equal(t, "serve", Cmd.Use)
	assert.Contains(t, Cmd.Short, "WhatsApp")
	assert.NotNil(t, Cmd.RunE)

	addrFlag := Cmd.Flags().Lookup("addr")
	require.NotNil(t, addrFlag)
	assert.Equal(t, "a", addrFlag.Shorthand)
	assert.Equal(t, "", addrFlag.DefValue)
}

func TestNewServer_AnswersWebhook(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.Mappings.NamesFile = filepath.Join(dir, "names.yaml")
	cfg.Mappings.AccountsFile = filepath.Join(dir, "accounts.yaml")
	cfg.Statement.OutputDir = filepath.Join(dir, "static")
	cfg.Bot.PublicURL = "https://bot.example.com"

	store := remote.NewMemoryStore()
	store.SetRows("INDEX", [][]string{{"Firm"}, {"KRISHNA TRADERS"}})
	store.SetRows("KRISHNA TRADERS", [][]string{
		{"KRISHNA TRADERS"},
		{"Balance", "100"},
		{"Date", "Ref No", "Credit", "Debit"},
		{"01-05-2024", "R1", "100", "0"},
	})
	c, err := container.NewContainer(context.Background(), cfg, container.Options{
		Store:         store,
		DisableDedupe: true,
		Logger:        logging.NewMockLogger(),
		Sleeper:       noSleep,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	srv := httptest.NewServer(NewServer(c, "").Handler())
	defer srv.Close()

	post := func(body string) string {
		t.Helper()
		resp, err := http.PostForm(srv.URL+"/whatsapp", url.Values{"Body": {body}, "From": {"whatsapp:+910000000000"}})
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(data)
	}

	assert.Contains(t, post("balance krishna"), "The balance for KRISHNA TRADERS is 100")

	reply := post("statement krishna MAY 24")
	assert.Contains(t, reply, "<Media>https://bot.example.com/static/KRISHNA_TRADERS_05-2024.pdf</Media>")

	resp, err := http.Get(srv.URL + "/static/KRISHNA_TRADERS_05-2024.pdf")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"mbh/ledger-sync/internal/ledgererror"
	"mbh/ledger-sync/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	body   string
}

type fakeSheetsAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	handler  func(w http.ResponseWriter, r *http.Request, body string)
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, body: string(b)})
	f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	f.handler(w, r, string(b))
}

func newTestSheetsStore(t *testing.T, api *fakeSheetsAPI, timeout time.Duration) *SheetsStore {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	srv, err := sheets.NewService(context.Background(),
		option.WithHTTPClient(server.Client()),
		option.WithEndpoint(server.URL+"/"))
	require.NoError(t, err)
	return NewSheetsStoreFromService(srv, "sheet-1", timeout, logging.NewMockLogger())
}

const spreadsheetJSON = `{"sheets":[{"properties":{"sheetId":0,"title":"INDEX"}},{"properties":{"sheetId":7,"title":"ACME"}}]}`

func TestSheetsStore_TabExistsAndList(t *testing.T) {
	api := &fakeSheetsAPI{handler: func(w http.ResponseWriter, r *http.Request, _ string) {
		_, _ = io.WriteString(w, spreadsheetJSON)
	}}
	store := newTestSheetsStore(t, api, time.Second)
	ctx := context.Background()

	exists, err := store.TabExists(ctx, "ACME")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.TabExists(ctx, "acme")
	require.NoError(t, err)
	assert.False(t, exists)

	tabs, err := store.ListTabs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"INDEX", "ACME"}, tabs)
}

func TestSheetsStore_AppendRowSendsNumbers(t *testing.T) {
	api := &fakeSheetsAPI{handler: func(w http.ResponseWriter, r *http.Request, _ string) {
		_, _ = io.WriteString(w, `{}`)
	}}
	store := newTestSheetsStore(t, api, time.Second)

	require.NoError(t, store.AppendRow(context.Background(), "O'Brien", ledgerRow(t, 3, "R-9", "1500.5", "0")))

	require.Len(t, api.requests, 1)
	req := api.requests[0]
	assert.Equal(t, http.MethodPost, req.method)
	assert.True(t, strings.HasSuffix(req.path, "'O''Brien'!A:D:append"), req.path)
	assert.Contains(t, req.query, "valueInputOption=RAW")
	assert.Contains(t, req.query, "insertDataOption=INSERT_ROWS")

	var body struct {
		Values [][]interface{} `json:"values"`
	}
	require.NoError(t, json.Unmarshal([]byte(req.body), &body))
	assert.Equal(t, [][]interface{}{{"03-05-2024", "R-9", 1500.5, 0.0}}, body.Values)
}

func TestSheetsStore_CreateTabIssuesThreeWrites(t *testing.T) {
	api := &fakeSheetsAPI{handler: func(w http.ResponseWriter, r *http.Request, body string) {
		if strings.HasSuffix(r.URL.Path, ":batchUpdate") && strings.Contains(body, "addSheet") {
			_, _ = io.WriteString(w, `{"replies":[{"addSheet":{"properties":{"sheetId":42,"title":"New Firm"}}}]}`)
			return
		}
		_, _ = io.WriteString(w, `{}`)
	}}
	store := newTestSheetsStore(t, api, time.Second)

	writes, err := store.CreateTab(context.Background(), "New Firm")
	require.NoError(t, err)
	assert.Equal(t, 3, writes)
	require.Len(t, api.requests, 3)

	assert.Contains(t, api.requests[0].body, `"title":"New Firm"`)

	assert.True(t, strings.HasSuffix(api.requests[1].path, "/values:batchUpdate"))
	assert.Contains(t, api.requests[1].body, `"NEW FIRM"`)
	assert.Contains(t, api.requests[1].body, `"BALANCE:"`)
	assert.Contains(t, api.requests[1].body, `["Date","Ref No","Credit","Debit"]`)

	merge := api.requests[2].body
	assert.Contains(t, merge, `"mergeCells"`)
	assert.Contains(t, merge, `"sheetId":42`)
	assert.Contains(t, merge, `"endColumnIndex":4`)
}

func existingTabAPI(name string) *fakeSheetsAPI {
	return &fakeSheetsAPI{handler: func(w http.ResponseWriter, r *http.Request, body string) {
		switch {
		case strings.HasSuffix(r.URL.Path, ":batchUpdate") && strings.Contains(body, "addSheet"):
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"code":400,"message":"Invalid requests[0].addSheet: A sheet with the name \"`+name+`\" already exists. Please enter another name.","status":"INVALID_ARGUMENT"}}`)
		case r.Method == http.MethodGet:
			_, _ = io.WriteString(w, spreadsheetJSON)
		default:
			_, _ = io.WriteString(w, `{}`)
		}
	}}
}

func TestSheetsStore_CreateTabCompletesExistingTab(t *testing.T) {
	api := existingTabAPI("ACME")
	store := newTestSheetsStore(t, api, time.Second)

	writes, err := store.CreateTab(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Equal(t, 3, writes)

	require.Len(t, api.requests, 4)
	assert.True(t, strings.HasSuffix(api.requests[2].path, "/values:batchUpdate"))
	assert.Contains(t, api.requests[3].body, `"mergeCells"`)
	assert.Contains(t, api.requests[3].body, `"sheetId":7`)
}

func TestSheetsStore_CreateTabCaseClashWritesNothing(t *testing.T) {
	api := existingTabAPI("acme")
	store := newTestSheetsStore(t, api, time.Second)

	writes, err := store.CreateTab(context.Background(), "acme")
	require.Error(t, err)
	assert.Equal(t, 1, writes)

	var apiErr *ledgererror.RemoteAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.False(t, ledgererror.IsTransient(err))

	require.Len(t, api.requests, 2, "only the add attempt and the sheet lookup")
	for _, req := range api.requests {
		assert.NotContains(t, req.body, "mergeCells")
		assert.False(t, strings.HasSuffix(req.path, "/values:batchUpdate"))
	}
}

func TestSheetsStore_QuotaError(t *testing.T) {
	api := &fakeSheetsAPI{handler: func(w http.ResponseWriter, r *http.Request, _ string) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"code":429,"message":"Quota exceeded for quota metric 'Write requests'","status":"RESOURCE_EXHAUSTED"}}`)
	}}
	store := newTestSheetsStore(t, api, time.Second)

	err := store.WriteBalanceCell(context.Background(), "ACME", "=SUM(C4:C5)-SUM(D4:D5)")
	assert.True(t, ledgererror.IsQuota(err), "got %v", err)
}

func TestSheetsStore_RequestTimeout(t *testing.T) {
	api := &fakeSheetsAPI{handler: func(w http.ResponseWriter, r *http.Request, _ string) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		_, _ = io.WriteString(w, `{}`)
	}}
	store := newTestSheetsStore(t, api, 50*time.Millisecond)

	_, err := store.ReadAllRows(context.Background(), "ACME")
	assert.True(t, ledgererror.IsTimeout(err), "got %v", err)
}

func TestSheetsStore_ReadAllRowsAndCell(t *testing.T) {
	api := &fakeSheetsAPI{handler: func(w http.ResponseWriter, r *http.Request, _ string) {
		if strings.HasSuffix(r.URL.Path, "!B2") {
			_, _ = io.WriteString(w, `{"range":"ACME!B2","values":[["1,250.00"]]}`)
			return
		}
		_, _ = io.WriteString(w, `{"range":"ACME!A1:D4","values":[["ACME"],["BALANCE:","1,250.00"],["Date","Ref No","Credit","Debit"],["01-05-2024","R1",1250,0]]}`)
	}}
	store := newTestSheetsStore(t, api, time.Second)
	ctx := context.Background()

	rows, err := store.ReadAllRows(ctx, "ACME")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"01-05-2024", "R1", "1250", "0"}, rows[3])

	cell, err := store.ReadCell(ctx, "ACME", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, "1,250.00", cell)
}

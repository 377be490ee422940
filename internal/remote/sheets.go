package remote

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"mbh/ledger-sync/internal/ledgererror"
	"mbh/ledger-sync/internal/logging"
	"mbh/ledger-sync/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// DefaultRequestTimeout bounds each remote call.
const DefaultRequestTimeout = 30 * time.Second

const (
	valueInputRaw         = "RAW"
	valueInputUserEntered = "USER_ENTERED"
)

// SheetsConfig identifies the spreadsheet and how to reach it.
type SheetsConfig struct {
	CredentialsFile string
	SpreadsheetID   string
	// SpreadsheetName is resolved through Drive when SpreadsheetID is empty.
	SpreadsheetName string
	RequestTimeout  time.Duration
}

// SheetsStore is a Store backed by the Google Sheets v4 API.
type SheetsStore struct {
	srv           *sheets.Service
	spreadsheetID string
	timeout       time.Duration
	logger        logging.Logger
}

// NewSheetsStore authenticates with a service-account key and opens the
// spreadsheet.
func NewSheetsStore(ctx context.Context, cfg SheetsConfig, logger logging.Logger) (*SheetsStore, error) {
	if cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("no credentials file configured")
	}
	b, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(b, sheets.SpreadsheetsScope, drive.DriveMetadataReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials file: %w", err)
	}
	client := jwtConfig.Client(ctx)

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client: %w", err)
	}

	spreadsheetID := cfg.SpreadsheetID
	if spreadsheetID == "" {
		driveSrv, err := drive.NewService(ctx, option.WithHTTPClient(client))
		if err != nil {
			return nil, fmt.Errorf("unable to create Drive client: %w", err)
		}
		spreadsheetID, err = ResolveSpreadsheetID(ctx, driveSrv, cfg.SpreadsheetName)
		if err != nil {
			return nil, err
		}
	}

	return NewSheetsStoreFromService(srv, spreadsheetID, cfg.RequestTimeout, logger), nil
}

// NewSheetsStoreFromService wraps an existing Sheets service.
func NewSheetsStoreFromService(srv *sheets.Service, spreadsheetID string, timeout time.Duration, logger logging.Logger) *SheetsStore {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &SheetsStore{
		srv:           srv,
		spreadsheetID: spreadsheetID,
		timeout:       timeout,
		logger:        logger.WithField(logging.FieldSpreadsheet, spreadsheetID),
	}
}

// SpreadsheetID returns the ID of the open spreadsheet
func (s *SheetsStore) SpreadsheetID() string { return s.spreadsheetID }

func (s *SheetsStore) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return classify(ctx, op, fn(reqCtx))
}

// sheetIDs maps tab titles to their numeric sheet IDs.
func (s *SheetsStore) sheetIDs(ctx context.Context, op string) (map[string]int64, []string, error) {
	var resp *sheets.Spreadsheet
	err := s.call(ctx, op, func(ctx context.Context) error {
		var err error
		resp, err = s.srv.Spreadsheets.Get(s.spreadsheetID).
			Fields("sheets.properties(sheetId,title)").
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	ids := make(map[string]int64, len(resp.Sheets))
	titles := make([]string, 0, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh.Properties == nil {
			continue
		}
		ids[sh.Properties.Title] = sh.Properties.SheetId
		titles = append(titles, sh.Properties.Title)
	}
	return ids, titles, nil
}

// TabExists implements Store.
func (s *SheetsStore) TabExists(ctx context.Context, name string) (bool, error) {
	ids, _, err := s.sheetIDs(ctx, OpTabExists)
	if err != nil {
		return false, err
	}
	_, ok := ids[name]
	return ok, nil
}

// ListTabs implements Store.
func (s *SheetsStore) ListTabs(ctx context.Context) ([]string, error) {
	_, titles, err := s.sheetIDs(ctx, OpListTabs)
	return titles, err
}

// CreateTab implements Store. It issues three writes: add the sheet, write
// the scaffold values, merge the title across the data columns. A tab left
// behind by an earlier failed attempt is reused.
func (s *SheetsStore) CreateTab(ctx context.Context, name string) (int, error) {
	writes := 0

	var sheetID int64
	writes++
	err := s.call(ctx, OpCreateTab, func(ctx context.Context) error {
		resp, err := s.srv.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: name},
				},
			}},
		}).Context(ctx).Do()
		if err != nil {
			return err
		}
		if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil {
			sheetID = resp.Replies[0].AddSheet.Properties.SheetId
		}
		return nil
	})
	if err != nil {
		if !strings.Contains(err.Error(), "already exists") {
			return writes, err
		}
		ids, _, lookupErr := s.sheetIDs(ctx, OpCreateTab)
		if lookupErr != nil {
			return writes, lookupErr
		}
		id, ok := ids[name]
		if !ok {
			// Titles are unique ignoring case; the clash is with another tab.
			return writes, &ledgererror.RemoteAPIError{
				Operation:  OpCreateTab,
				StatusCode: http.StatusConflict,
				Err:        fmt.Errorf("tab %q clashes with an existing tab of a different case", name),
			}
		}
		sheetID = id
		s.logger.Debug("Tab already present, completing scaffold", logging.Field{Key: logging.FieldTab, Value: name})
	}

	scaffold := scaffoldRows(name)
	data := make([]*sheets.ValueRange, 0, len(scaffold))
	for i, row := range scaffold {
		rng, err := CellRange(name, i+1, 1)
		if err != nil {
			return writes, err
		}
		data = append(data, &sheets.ValueRange{Range: rng, Values: [][]interface{}{toInterfaces(row)}})
	}
	writes++
	err = s.call(ctx, OpCreateTab, func(ctx context.Context) error {
		_, err := s.srv.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateValuesRequest{
			ValueInputOption: valueInputRaw,
			Data:             data,
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return writes, err
	}

	writes++
	err = s.call(ctx, OpCreateTab, func(ctx context.Context) error {
		_, err := s.srv.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				MergeCells: &sheets.MergeCellsRequest{
					MergeType: "MERGE_ALL",
					Range: &sheets.GridRange{
						SheetId:          sheetID,
						StartRowIndex:    models.TitleRow - 1,
						EndRowIndex:      models.TitleRow,
						StartColumnIndex: 0,
						EndColumnIndex:   models.TabColumns,
						ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
					},
				},
			}},
		}).Context(ctx).Do()
		return err
	})
	return writes, err
}

// AppendRow implements Store. Amounts are sent as numbers so the balance
// formulas can sum them.
func (s *SheetsStore) AppendRow(ctx context.Context, tab string, row models.LedgerRow) error {
	values := []interface{}{
		row.FormattedDate(),
		row.Reference,
		row.Credit.InexactFloat64(),
		row.Debit.InexactFloat64(),
	}
	return s.call(ctx, OpAppendRow, func(ctx context.Context) error {
		_, err := s.srv.Spreadsheets.Values.Append(s.spreadsheetID, QuoteTab(tab)+"!A:D", &sheets.ValueRange{
			Values: [][]interface{}{values},
		}).ValueInputOption(valueInputRaw).InsertDataOption("INSERT_ROWS").Context(ctx).Do()
		return err
	})
}

// ReadAllRows implements Store.
func (s *SheetsStore) ReadAllRows(ctx context.Context, tab string) ([][]string, error) {
	var resp *sheets.ValueRange
	err := s.call(ctx, OpReadAllRows, func(ctx context.Context) error {
		var err error
		resp, err = s.srv.Spreadsheets.Values.Get(s.spreadsheetID, QuoteTab(tab)).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return toStrings(resp.Values), nil
}

// WriteBalanceCell implements Store.
func (s *SheetsStore) WriteBalanceCell(ctx context.Context, tab, formulaOrValue string) error {
	return s.writeCell(ctx, OpWriteBalance, tab, models.BalanceRow, 2, formulaOrValue)
}

// WriteCell implements Store.
func (s *SheetsStore) WriteCell(ctx context.Context, tab string, row, col int, value string) error {
	return s.writeCell(ctx, OpWriteCell, tab, row, col, value)
}

func (s *SheetsStore) writeCell(ctx context.Context, op, tab string, row, col int, value string) error {
	rng, err := CellRange(tab, row, col)
	if err != nil {
		return err
	}
	return s.call(ctx, op, func(ctx context.Context) error {
		_, err := s.srv.Spreadsheets.Values.Update(s.spreadsheetID, rng, &sheets.ValueRange{
			Values: [][]interface{}{{value}},
		}).ValueInputOption(valueInputUserEntered).Context(ctx).Do()
		return err
	})
}

// ReadCell implements Store.
func (s *SheetsStore) ReadCell(ctx context.Context, tab string, row, col int) (string, error) {
	rng, err := CellRange(tab, row, col)
	if err != nil {
		return "", err
	}
	var resp *sheets.ValueRange
	err = s.call(ctx, OpReadCell, func(ctx context.Context) error {
		var err error
		resp, err = s.srv.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", err
	}
	values := toStrings(resp.Values)
	if len(values) == 0 || len(values[0]) == 0 {
		return "", nil
	}
	return values[0][0], nil
}

func toInterfaces(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

func toStrings(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = fmt.Sprint(v)
		}
	}
	return out
}

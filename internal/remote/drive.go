package remote

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// ResolveSpreadsheetID finds the spreadsheet shared with the service account
// whose name is exactly name.
func ResolveSpreadsheetID(ctx context.Context, srv *drive.Service, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("neither spreadsheet ID nor spreadsheet name is configured")
	}

	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`), spreadsheetMimeType)

	var files []*drive.File
	err := classify(ctx, OpListTabs, func() error {
		resp, err := srv.Files.List().Q(query).Fields("files(id, name)").
			SupportsAllDrives(true).IncludeItemsFromAllDrives(true).
			Context(ctx).Do()
		if err != nil {
			return err
		}
		files = resp.Files
		return nil
	}())
	if err != nil {
		return "", fmt.Errorf("failed to look up spreadsheet %q: %w", name, err)
	}

	switch len(files) {
	case 0:
		return "", fmt.Errorf("spreadsheet %q not found or not shared with the service account", name)
	case 1:
		return files[0].Id, nil
	default:
		return "", fmt.Errorf("spreadsheet name %q is ambiguous: %d matches", name, len(files))
	}
}

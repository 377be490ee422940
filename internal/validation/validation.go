package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mbh/ledger-sync/internal/ledgererror"
)

// SupportedInputExtensions lists the ledger file types that can be read.
var SupportedInputExtensions = []string{".xlsx", ".csv"}

// IsValidInputFile checks that path is an existing regular file with a
// supported extension.
func IsValidInputFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return &ledgererror.ValidationError{FilePath: path, Reason: "file does not exist"}
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return &ledgererror.ValidationError{FilePath: path, Reason: "not a regular file"}
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range SupportedInputExtensions {
		if ext == supported {
			return nil
		}
	}
	return &ledgererror.ValidationError{
		FilePath: path,
		Reason:   fmt.Sprintf("unsupported file type %q, expected one of %s", ext, strings.Join(SupportedInputExtensions, ", ")),
	}
}

// RequireColumns checks that every required column name is in header.
// Header cells are compared after trimming.
func RequireColumns(filePath string, header, required []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}

	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &ledgererror.ValidationError{
			FilePath: filePath,
			Reason:   fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")),
		}
	}
	return nil
}

// IsValidFilePermissions checks if the given file mode is valid for sensitive files.
func IsValidFilePermissions(mode os.FileMode) error {
	if mode&0007 != 0 {
		return fmt.Errorf("file permissions are too permissive: %s. Recommended 0600 or 0644", mode.String())
	}
	return nil
}

// Package output persists merged datasets.
package output

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/smith-xyz/sbom-graph-merger/pkg/utils"
)

// Writer writes JSON documents so that readers never observe a partial file.
type Writer struct {
	logger *slog.Logger
}

// NewWriter creates a new writer
func NewWriter(logger *slog.Logger) *Writer {
	return &Writer{logger: logger}
}

// WriteJSON encodes v as indented JSON into path. The document is written to
// a temporary file in the same directory and renamed over path once complete;
// on failure any existing file at path is left untouched.
func (w *Writer) WriteJSON(path string, v any) (err error) {
	if err := utils.ValidateOutputPath(path); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err = encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	w.logger.Info("Output successfully written", "path", path)
	return nil
}

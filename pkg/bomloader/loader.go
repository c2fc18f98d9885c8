package bomloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/viant/afs"
)

// ErrUnsupportedFormat is returned for SBOM files that are neither JSON nor XML.
var ErrUnsupportedFormat = errors.New("unsupported SBOM file format")

// Loader decodes CycloneDX SBOM documents into dependency trees.
type Loader struct {
	logger *slog.Logger
	fs     afs.Service
}

// NewLoader creates a new SBOM loader.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logger, fs: afs.New()}
}

// FormatFromPath picks the CycloneDX encoding from the file extension.
func FormatFromPath(path string) (cdx.BOMFileFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return cdx.BOMFileFormatJSON, nil
	case ".xml":
		return cdx.BOMFileFormatXML, nil
	default:
		return cdx.BOMFileFormatJSON, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadFromFile reads and decodes the SBOM at location, which may be a local
// path or any URL afs understands.
func (l *Loader) LoadFromFile(ctx context.Context, location string) ([]Node, error) {
	format, err := FormatFromPath(location)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("loading SBOM", "path", location)
	data, err := l.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read SBOM %s: %w", location, err)
	}

	nodes, err := l.LoadFromReader(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return nodes, nil
}

// LoadFromReader decodes one CycloneDX document from reader.
func (l *Loader) LoadFromReader(reader io.Reader, format cdx.BOMFileFormat) ([]Node, error) {
	bom := new(cdx.BOM)
	if err := cdx.NewBOMDecoder(reader, format).Decode(bom); err != nil {
		return nil, fmt.Errorf("failed to decode SBOM: %w", err)
	}

	nodes := FromBOM(bom)
	l.logger.Debug("decoded SBOM", "dependencies", len(nodes))
	return nodes, nil
}

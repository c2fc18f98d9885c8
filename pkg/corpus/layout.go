package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/smith-xyz/sbom-graph-merger/pkg/config"
)

// SBOMFile is one tool's SBOM for one package.
type SBOMFile struct {
	Tool string
	Path string
}

// Layout knows where a corpus keeps its SBOM files.
type Layout interface {
	// Discover lists the SBOM files present for pkg, sorted by tool name.
	Discover(root, pkg string) ([]SBOMFile, error)
	// Path returns where tool's SBOM for pkg is expected.
	Path(root, pkg, tool string) string
}

// NewLayout returns the layout registered under name.
func NewLayout(name string) (Layout, error) {
	switch name {
	case config.LayoutByTool:
		return ByTool{}, nil
	case config.LayoutByPackage:
		return ByPackage{}, nil
	default:
		return nil, fmt.Errorf("%w: layout %q", config.ErrInvalidPolicy, name)
	}
}

// ByTool stores SBOMs as sbom/<tool>/<package>-result.json.
// Every tool directory is expected to hold a result for every package.
type ByTool struct{}

// Discover implements Layout
func (ByTool) Discover(root, pkg string) ([]SBOMFile, error) {
	tools, err := listEntries(filepath.Join(root, "sbom"), true)
	if err != nil {
		return nil, err
	}

	files := make([]SBOMFile, 0, len(tools))
	for _, tool := range tools {
		files = append(files, SBOMFile{Tool: tool, Path: ByTool{}.Path(root, pkg, tool)})
	}
	return files, nil
}

// Path implements Layout
func (ByTool) Path(root, pkg, tool string) string {
	return filepath.Join(root, "sbom", tool, pkg+"-result.json")
}

// ByPackage stores SBOMs as sbom/<package>/<tool>.json.
// The tool name is the file name without its extension.
type ByPackage struct{}

// Discover implements Layout
func (ByPackage) Discover(root, pkg string) ([]SBOMFile, error) {
	dir := filepath.Join(root, "sbom", pkg)
	names, err := listEntries(dir, false)
	if err != nil {
		return nil, err
	}

	files := make([]SBOMFile, 0, len(names))
	for _, name := range names {
		tool := strings.TrimSuffix(name, filepath.Ext(name))
		files = append(files, SBOMFile{Tool: tool, Path: filepath.Join(dir, name)})
	}
	return files, nil
}

// Path implements Layout
func (ByPackage) Path(root, pkg, tool string) string {
	return filepath.Join(root, "sbom", pkg, tool+".json")
}

// listEntries returns the sorted names of the directories (dirs true) or
// regular files (dirs false) in dir. Hidden entries are ignored.
func listEntries(dir string, dirs bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	// os.ReadDir sorts by file name.
	var names []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") || entry.IsDir() != dirs {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Package corpus maps a corpus configuration onto its directory tree:
//
//	<root>/packages/<package>/requirements.txt
//	<root>/sbom/...                              (see Layout)
//	<root>/deptree_gt/<package>-deptree.json
package corpus

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/smith-xyz/sbom-graph-merger/pkg/config"
	"github.com/smith-xyz/sbom-graph-merger/pkg/models"
	"github.com/smith-xyz/sbom-graph-merger/pkg/utils"
)

// ErrMissingRoot is returned when a corpus root directory does not exist.
var ErrMissingRoot = errors.New("corpus root not found")

// Corpus is one collection of software packages on disk.
type Corpus struct {
	Name          string
	Root          string
	layout        Layout
	sourcePattern string
	sources       map[string][]string
	tools         []string
}

// New builds a corpus from its configuration.
func New(cfg config.CorpusConfig) (*Corpus, error) {
	layout, err := NewLayout(cfg.Layout)
	if err != nil {
		return nil, err
	}
	return &Corpus{
		Name:          cfg.Name,
		Root:          cfg.Root,
		layout:        layout,
		sourcePattern: cfg.SourcePattern,
		sources:       cfg.Sources,
		tools:         cfg.Tools,
	}, nil
}

// Packages returns the software package directories, sorted by name.
func (c *Corpus) Packages() ([]string, error) {
	if !utils.DirectoryExists(c.Root) {
		return nil, fmt.Errorf("%w: %s", ErrMissingRoot, c.Root)
	}
	return listEntries(filepath.Join(c.Root, "packages"), true)
}

// RequirementsPath returns the location of pkg's requirements file.
func (c *Corpus) RequirementsPath(pkg string) string {
	return filepath.Join(c.Root, "packages", pkg, "requirements.txt")
}

// HasRequirements reports whether pkg declares its dependencies.
// Packages without a requirements file are not part of the dataset.
func (c *Corpus) HasRequirements(pkg string) bool {
	return utils.FileExists(c.RequirementsPath(pkg))
}

// GroundTruthPath returns the location of pkg's curated dependency tree.
func (c *Corpus) GroundTruthPath(pkg string) string {
	return filepath.Join(c.Root, "deptree_gt", pkg+"-deptree.json")
}

// SourcePath returns pkg's entry points: the per-package override when one
// is configured, the corpus pattern otherwise.
func (c *Corpus) SourcePath(pkg string) models.SourcePath {
	expand := strings.NewReplacer("{root}", c.Root, "{package}", pkg)

	if override, ok := c.sources[pkg]; ok {
		paths := make(models.SourcePath, 0, len(override))
		for _, p := range override {
			paths = append(paths, filepath.FromSlash(expand.Replace(p)))
		}
		return paths
	}

	if c.sourcePattern == "" {
		return models.SourcePath{filepath.Join(c.Root, "packages", pkg)}
	}
	return models.SourcePath{filepath.FromSlash(expand.Replace(c.sourcePattern))}
}

// SBOMFiles returns the SBOMs to process for pkg. With an explicit tool list
// every tool is returned whether or not its file exists; otherwise the
// layout discovers what is on disk.
func (c *Corpus) SBOMFiles(pkg string) ([]SBOMFile, error) {
	if len(c.tools) == 0 {
		return c.layout.Discover(c.Root, pkg)
	}

	files := make([]SBOMFile, 0, len(c.tools))
	for _, tool := range c.tools {
		files = append(files, SBOMFile{Tool: tool, Path: c.layout.Path(c.Root, pkg, tool)})
	}
	return files, nil
}

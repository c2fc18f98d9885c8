package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/smith-xyz/sbom-graph-merger/pkg/models"
)

// Embedded default configuration
// Use 'go generate ./pkg/config' to update from root config.toml
//
//go:generate cp ../../config.toml default_config.toml
//go:embed default_config.toml
var embeddedConfigData []byte

// Layout names for the SBOM directory structure of a corpus.
const (
	// LayoutByTool stores SBOMs as sbom/<tool>/<package>-result.json
	LayoutByTool = "by-tool"
	// LayoutByPackage stores SBOMs as sbom/<package>/<tool>.json
	LayoutByPackage = "by-package"
)

var (
	// ErrUnknownCorpus is returned when a requested corpus is not configured.
	ErrUnknownCorpus = errors.New("unknown corpus")
	// ErrInvalidPolicy is returned for a corpus with an unknown layout, failure policy or edge order.
	ErrInvalidPolicy = errors.New("invalid corpus policy")
)

// Config holds the application configuration.
type Config struct {
	Corpora []CorpusConfig `toml:"corpora"`
}

// CorpusConfig describes one corpus: where its inputs live and how failures are handled.
type CorpusConfig struct {
	Name          string               `toml:"name"`
	Root          string               `toml:"root"`
	Layout        string               `toml:"layout"`
	SBOMErrors    models.FailurePolicy `toml:"sbom_errors"`
	EdgeOrder     models.EdgeOrder     `toml:"edge_order"`
	GroundTruth   bool                 `toml:"ground_truth"`
	MetadataGraph bool                 `toml:"metadata_graph"`
	Output        string               `toml:"output"`
	SourcePattern string               `toml:"source_pattern"`
	Sources       map[string][]string  `toml:"sources"`
	Tools         []string             `toml:"tools"`
	Concurrency   int                  `toml:"concurrency"`
}

// LocalConfigFile is the working-directory file that replaces the embedded config.
const LocalConfigFile = "config.toml"

// DefaultConfig returns the embedded configuration, or the local config.toml
// when one exists. A local file that fails to load is an error.
func DefaultConfig() (*Config, error) {
	return defaultConfig(LocalConfigFile)
}

func defaultConfig(localPath string) (*Config, error) {
	if _, err := os.Stat(localPath); err == nil {
		return LoadFromFile(localPath)
	}

	var config Config
	if err := toml.Unmarshal(embeddedConfigData, &config); err != nil {
		return nil, fmt.Errorf("failed to parse embedded config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("embedded config: %w", err)
	}
	return &config, nil
}

// LoadFromFile loads configuration from a TOML file.
func LoadFromFile(filepath string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(filepath, &config); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", filepath, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", filepath, err)
	}
	return &config, nil
}

// Validate fills defaults and rejects corpora with unknown policies.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Corpora))
	for i := range c.Corpora {
		corpus := &c.Corpora[i]
		if corpus.Name == "" {
			return fmt.Errorf("%w: corpus #%d has no name", ErrInvalidPolicy, i+1)
		}
		if seen[corpus.Name] {
			return fmt.Errorf("%w: corpus %s defined twice", ErrInvalidPolicy, corpus.Name)
		}
		seen[corpus.Name] = true

		if err := corpus.validate(); err != nil {
			return fmt.Errorf("corpus %s: %w", corpus.Name, err)
		}
	}
	return nil
}

func (c *CorpusConfig) validate() error {
	if c.Root == "" {
		c.Root = c.Name
	}
	if c.Output == "" {
		c.Output = fmt.Sprintf("merged_%s.json", c.Name)
	}
	if c.SBOMErrors == "" {
		c.SBOMErrors = models.FailurePolicyAbort
	}
	if c.EdgeOrder == "" {
		c.EdgeOrder = models.EdgeOrderAfterChildren
	}
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}

	switch c.Layout {
	case LayoutByTool, LayoutByPackage:
	default:
		return fmt.Errorf("%w: layout %q", ErrInvalidPolicy, c.Layout)
	}
	switch c.SBOMErrors {
	case models.FailurePolicyAbort, models.FailurePolicySkip:
	default:
		return fmt.Errorf("%w: sbom_errors %q", ErrInvalidPolicy, c.SBOMErrors)
	}
	switch c.EdgeOrder {
	case models.EdgeOrderAfterChildren, models.EdgeOrderBeforeChildren:
	default:
		return fmt.Errorf("%w: edge_order %q", ErrInvalidPolicy, c.EdgeOrder)
	}
	return nil
}

// Corpus returns the configuration of the named corpus.
func (c *Config) Corpus(name string) (*CorpusConfig, error) {
	for i := range c.Corpora {
		if c.Corpora[i].Name == name {
			return &c.Corpora[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCorpus, name)
}

// Select returns the named corpora in the given order, or every corpus when names is empty.
func (c *Config) Select(names []string) ([]CorpusConfig, error) {
	if len(names) == 0 {
		return c.Corpora, nil
	}
	selected := make([]CorpusConfig, 0, len(names))
	for _, name := range names {
		corpus, err := c.Corpus(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		selected = append(selected, *corpus)
	}
	return selected, nil
}

// AnalysisConfig returns the options the analysis builder needs for this corpus.
func (c *CorpusConfig) AnalysisConfig() models.AnalysisConfig {
	return models.AnalysisConfig{
		SBOMErrors:    c.SBOMErrors,
		EdgeOrder:     c.EdgeOrder,
		GroundTruth:   c.GroundTruth,
		MetadataGraph: c.MetadataGraph,
	}
}

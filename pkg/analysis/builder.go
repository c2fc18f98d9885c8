// Package analysis builds the PackageAnalysis record of one software package
// from its requirements file, every tool's SBOM and, when configured, its
// ground-truth dependency tree.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/smith-xyz/sbom-graph-merger/pkg/bomloader"
	"github.com/smith-xyz/sbom-graph-merger/pkg/corpus"
	"github.com/smith-xyz/sbom-graph-merger/pkg/deptree"
	"github.com/smith-xyz/sbom-graph-merger/pkg/extractor"
	"github.com/smith-xyz/sbom-graph-merger/pkg/models"
	"github.com/smith-xyz/sbom-graph-merger/pkg/requirements"
)

// MetadataGraphKey is the graphs entry holding the declared-requirements graph.
const MetadataGraphKey = "requirements"

// ErrToolConflict is returned for an SBOM whose tool name is already taken,
// by another file of the same tool or by the metadata graph.
var ErrToolConflict = errors.New("conflicting tool name")

// Builder assembles PackageAnalysis records for the packages of one corpus.
type Builder struct {
	logger *slog.Logger
	config models.AnalysisConfig
	corpus *corpus.Corpus

	boms         *bomloader.Loader
	groundTruths *deptree.Loader
	requirements *requirements.Loader
}

// NewBuilder creates a builder for the packages of c.
func NewBuilder(logger *slog.Logger, c *corpus.Corpus, config models.AnalysisConfig) *Builder {
	logger = logger.With("corpus", c.Name)
	return &Builder{
		logger:       logger,
		config:       config,
		corpus:       c,
		boms:         bomloader.NewLoader(logger),
		groundTruths: deptree.NewLoader(logger),
		requirements: requirements.NewLoader(logger),
	}
}

// Build returns the analysis of pkg. A package without a requirements file
// is not part of the corpus: Build returns nil and no error.
func (b *Builder) Build(ctx context.Context, pkg string) (*models.PackageAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !b.corpus.HasRequirements(pkg) {
		b.logger.Debug("no requirements file, skipping package", "package", pkg)
		return nil, nil
	}

	declared, err := b.requirements.LoadFromFile(ctx, b.corpus.RequirementsPath(pkg))
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", pkg, err)
	}

	graphs, err := b.buildToolGraphs(ctx, pkg)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", pkg, err)
	}

	if b.config.MetadataGraph {
		graphs[MetadataGraphKey] = extractor.FromMetadata(pkg, declared)
	}

	analysis := &models.PackageAnalysis{
		SourcePath:              b.corpus.SourcePath(pkg),
		RawPackagesFromMetadata: declared,
		Graphs:                  graphs,
	}

	if b.config.GroundTruth {
		truth, err := b.buildGroundTruth(ctx, pkg)
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", pkg, err)
		}
		analysis.GroundTruth = truth
	}

	b.logger.Debug("package analysed", "package", pkg, "tools", len(graphs), "requirements", len(declared))
	return analysis, nil
}

func (b *Builder) buildToolGraphs(ctx context.Context, pkg string) (map[string]*models.DependencyGraph, error) {
	graphs := make(map[string]*models.DependencyGraph)

	files, err := b.corpus.SBOMFiles(pkg)
	if err != nil {
		if err := b.sbomFailure(pkg, "", err); err != nil {
			return nil, err
		}
		return graphs, nil
	}

	seen := make(map[string]string, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := b.checkToolName(file, seen); err != nil {
			if err := b.sbomFailure(pkg, file.Tool, err); err != nil {
				return nil, err
			}
			continue
		}

		nodes, err := b.boms.LoadFromFile(ctx, file.Path)
		if err != nil {
			if err := b.sbomFailure(pkg, file.Tool, err); err != nil {
				return nil, err
			}
			continue
		}

		graphs[file.Tool] = extractor.FromBOM(nodes, b.config.EdgeOrder)
	}
	return graphs, nil
}

// checkToolName records file's tool in seen and rejects a tool that already
// has a graph source.
func (b *Builder) checkToolName(file corpus.SBOMFile, seen map[string]string) error {
	if b.config.MetadataGraph && file.Tool == MetadataGraphKey {
		return fmt.Errorf("%w: %s is reserved for the metadata graph", ErrToolConflict, file.Path)
	}
	if previous, ok := seen[file.Tool]; ok {
		return fmt.Errorf("%w: %s and %s", ErrToolConflict, previous, file.Path)
	}
	seen[file.Tool] = file.Path
	return nil
}

// sbomFailure applies the corpus failure policy to an SBOM that could not be
// listed, read or decoded. It returns the error to propagate, or nil when the
// tool is skipped.
func (b *Builder) sbomFailure(pkg, tool string, err error) error {
	if b.config.SBOMErrors == models.FailurePolicySkip {
		b.logger.Warn("skipping unreadable SBOM", "package", pkg, "tool", tool, "error", err)
		return nil
	}
	if tool == "" {
		return fmt.Errorf("listing SBOMs: %w", err)
	}
	return fmt.Errorf("tool %s: %w", tool, err)
}

func (b *Builder) buildGroundTruth(ctx context.Context, pkg string) (*models.DependencyGraph, error) {
	nodes, err := b.groundTruths.LoadFromFile(ctx, b.corpus.GroundTruthPath(pkg))
	if err != nil {
		return nil, err
	}

	graph, err := extractor.FromGroundTruth(nodes, b.config.EdgeOrder)
	if err != nil {
		return nil, fmt.Errorf("ground truth: %w", err)
	}
	return graph, nil
}

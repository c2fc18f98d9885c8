// Package dataset assembles the merged dataset of a corpus: one
// PackageAnalysis per software package that declares its requirements.
package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/smith-xyz/sbom-graph-merger/pkg/models"
	"github.com/smith-xyz/sbom-graph-merger/pkg/utils"
)

// PackageSource lists the packages of a corpus.
type PackageSource interface {
	Packages() ([]string, error)
}

// PackageBuilder produces the analysis of one package, or nil when the
// package is not part of the dataset.
type PackageBuilder interface {
	Build(ctx context.Context, pkg string) (*models.PackageAnalysis, error)
}

// Assembler walks a corpus and collects its package analyses.
type Assembler struct {
	logger          *slog.Logger
	instrumentation *utils.Instrumentation
	concurrency     int
}

// NewAssembler creates an assembler building up to concurrency packages at
// once. Values below one mean sequential processing.
func NewAssembler(logger *slog.Logger, verbose bool, concurrency int) *Assembler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Assembler{
		logger:          logger,
		instrumentation: utils.NewInstrumentation(logger, verbose),
		concurrency:     concurrency,
	}
}

// Assemble builds the dataset of the named corpus. The first failing package
// aborts the whole pass and no partial dataset is returned.
func (a *Assembler) Assemble(ctx context.Context, name string, source PackageSource, builder PackageBuilder) (*models.Dataset, error) {
	var ds *models.Dataset

	err := a.instrumentation.TimedOperation("assemble "+name, func() error {
		phases := a.instrumentation.NewPhaseTracker("assemble " + name)

		phases.StartPhase("discovery")
		pkgs, err := source.Packages()
		if err != nil {
			return fmt.Errorf("listing packages of %s: %w", name, err)
		}

		phases.StartPhase("analysis")
		progress := a.instrumentation.NewProgressTracker(name, len(pkgs))
		ds, err = a.build(ctx, pkgs, builder, progress)
		if err != nil {
			return err
		}
		progress.Complete()

		phases.Complete(len(ds.PackageAnalyses))
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("dataset assembled", "corpus", name, "packages", len(ds.PackageAnalyses))
	return ds, nil
}

func (a *Assembler) build(ctx context.Context, pkgs []string, builder PackageBuilder, progress *utils.ProgressTracker) (*models.Dataset, error) {
	ds := models.NewDataset()

	if a.concurrency == 1 {
		for _, pkg := range pkgs {
			analysis, err := builder.Build(ctx, pkg)
			if err != nil {
				return nil, err
			}
			if analysis != nil {
				ds.PackageAnalyses[pkg] = analysis
			}
			progress.Update(1)
		}
		return ds, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for _, pkg := range pkgs {
		g.Go(func() error {
			analysis, err := builder.Build(gctx, pkg)
			if err != nil {
				return err
			}
			if analysis != nil {
				mu.Lock()
				ds.PackageAnalyses[pkg] = analysis
				mu.Unlock()
			}
			progress.Update(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ds, nil
}

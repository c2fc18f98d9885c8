package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/smith-xyz/sbom-graph-merger/pkg/analysis"
	"github.com/smith-xyz/sbom-graph-merger/pkg/config"
	"github.com/smith-xyz/sbom-graph-merger/pkg/corpus"
	"github.com/smith-xyz/sbom-graph-merger/pkg/dataset"
	"github.com/smith-xyz/sbom-graph-merger/pkg/output"
	"github.com/smith-xyz/sbom-graph-merger/pkg/utils"
	"github.com/smith-xyz/sbom-graph-merger/pkg/version"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to a TOML configuration file (default: embedded config, overridden by ./config.toml)")
		corpora     = flag.String("corpus", "", "Comma-separated list of corpora to merge (default: all configured corpora)")
		verbose     = flag.Bool("v", false, "Verbose output")
		showVersion = flag.Bool("version", false, "Show version information and exit")
	)
	flag.Parse()

	if *showVersion {
		if *verbose {
			fmt.Println(version.GetFullVersionString())
		} else {
			fmt.Println(version.GetVersionWithCommit())
		}
		os.Exit(0)
	}

	logger := utils.NewLogger(*verbose)
	logger.Debug("Starting merge", "version", version.GetVersionWithCommit(), "prerelease", version.IsPrerelease())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, logger, cfg, utils.ParseCommaDelimited(*corpora), *verbose); err != nil {
		logger.Error("Merge failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig()
	}
	return config.LoadFromFile(path)
}

// run merges the selected corpora in order. Each corpus is written as soon as
// it is complete; the first failure stops the run.
func run(ctx context.Context, logger *slog.Logger, cfg *config.Config, names []string, verbose bool) error {
	selected, err := cfg.Select(names)
	if err != nil {
		return err
	}

	writer := output.NewWriter(logger)
	for _, cc := range selected {
		if err := mergeCorpus(ctx, logger, writer, cc, verbose); err != nil {
			return fmt.Errorf("corpus %s: %w", cc.Name, err)
		}
	}
	return nil
}

func mergeCorpus(ctx context.Context, logger *slog.Logger, writer *output.Writer, cc config.CorpusConfig, verbose bool) error {
	c, err := corpus.New(cc)
	if err != nil {
		return err
	}

	builder := analysis.NewBuilder(logger, c, cc.AnalysisConfig())
	assembler := dataset.NewAssembler(logger, verbose, cc.Concurrency)

	ds, err := assembler.Assemble(ctx, c.Name, c, builder)
	if err != nil {
		return err
	}
	return writer.WriteJSON(cc.Output, ds)
}

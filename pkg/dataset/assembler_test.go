package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smith-xyz/sbom-graph-merger/pkg/analysis"
	"github.com/smith-xyz/sbom-graph-merger/pkg/config"
	"github.com/smith-xyz/sbom-graph-merger/pkg/corpus"
	"github.com/smith-xyz/sbom-graph-merger/pkg/corpus/corpustest"
	"github.com/smith-xyz/sbom-graph-merger/pkg/models"
	"github.com/smith-xyz/sbom-graph-merger/pkg/utils"
)

type staticSource []string

func (s staticSource) Packages() ([]string, error) { return s, nil }

type failingSource struct{ err error }

func (s failingSource) Packages() ([]string, error) { return nil, s.err }

type fakeBuilder struct {
	fail  map[string]error
	skip  map[string]bool
	calls atomic.Int32
}

func (b *fakeBuilder) Build(ctx context.Context, pkg string) (*models.PackageAnalysis, error) {
	b.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := b.fail[pkg]; err != nil {
		return nil, err
	}
	if b.skip[pkg] {
		return nil, nil
	}
	return &models.PackageAnalysis{
		SourcePath:              models.SourcePath{pkg},
		RawPackagesFromMetadata: []string{},
		Graphs:                  map[string]*models.DependencyGraph{},
	}, nil
}

func TestAssembleCollectsPackages(t *testing.T) {
	for _, concurrency := range []int{0, 1, 4} {
		b := &fakeBuilder{skip: map[string]bool{"b": true}}
		a := NewAssembler(utils.DiscardLogger(), false, concurrency)

		ds, err := a.Assemble(context.Background(), "ds1", staticSource{"a", "b", "c"}, b)
		require.NoError(t, err)

		assert.Len(t, ds.PackageAnalyses, 2, "concurrency %d", concurrency)
		assert.Contains(t, ds.PackageAnalyses, "a")
		assert.Contains(t, ds.PackageAnalyses, "c")
		assert.NotContains(t, ds.PackageAnalyses, "b")
		assert.Equal(t, int32(3), b.calls.Load())
	}
}

func TestAssembleEmptyCorpus(t *testing.T) {
	a := NewAssembler(utils.DiscardLogger(), false, 1)

	ds, err := a.Assemble(context.Background(), "ds1", staticSource{}, &fakeBuilder{})
	require.NoError(t, err)
	assert.Empty(t, ds.PackageAnalyses)

	data, err := json.Marshal(ds)
	require.NoError(t, err)
	assert.JSONEq(t, `{"package_analyses": {}}`, string(data))
}

func TestAssembleFailureReturnsNoDataset(t *testing.T) {
	boom := errors.New("boom")

	for _, concurrency := range []int{1, 3} {
		b := &fakeBuilder{fail: map[string]error{"b": boom}}
		a := NewAssembler(utils.DiscardLogger(), false, concurrency)

		ds, err := a.Assemble(context.Background(), "ds1", staticSource{"a", "b", "c"}, b)
		assert.ErrorIs(t, err, boom, "concurrency %d", concurrency)
		assert.Nil(t, ds)
	}
}

func TestAssembleSequentialStopsAtFirstFailure(t *testing.T) {
	b := &fakeBuilder{fail: map[string]error{"a": errors.New("boom")}}
	a := NewAssembler(utils.DiscardLogger(), false, 1)

	_, err := a.Assemble(context.Background(), "ds1", staticSource{"a", "b", "c"}, b)
	require.Error(t, err)
	assert.Equal(t, int32(1), b.calls.Load())
}

func TestAssembleListingFailure(t *testing.T) {
	missing := errors.New("no packages directory")
	a := NewAssembler(utils.DiscardLogger(), false, 1)

	_, err := a.Assemble(context.Background(), "ds1", failingSource{missing}, &fakeBuilder{})
	assert.ErrorIs(t, err, missing)
}

func TestAssembleCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewAssembler(utils.DiscardLogger(), false, 2)
	_, err := a.Assemble(ctx, "ds1", staticSource{"a", "b"}, &fakeBuilder{})
	assert.ErrorIs(t, err, context.Canceled)
}

func newCorpus(t *testing.T, cfg config.CorpusConfig) (*corpus.Corpus, *analysis.Builder) {
	t.Helper()
	cfgs := &config.Config{Corpora: []config.CorpusConfig{cfg}}
	require.NoError(t, cfgs.Validate())
	validated := cfgs.Corpora[0]

	c, err := corpus.New(validated)
	require.NoError(t, err)
	return c, analysis.NewBuilder(utils.DiscardLogger(), c, validated.AnalysisConfig())
}

func TestAssembleCorpusEndToEnd(t *testing.T) {
	fx := corpustest.New(t)
	fx.Package("p", "six")
	fx.Package("q", "requests>=2.0", "idna")
	fx.Mkdir("packages/no-reqs")
	fx.Write("sbom/tool1/p-result.json", corpustest.BOM(t, corpustest.Dependency{Ref: "pkg:pypi/p@1.0"}))
	fx.Write("sbom/tool1/q-result.json", corpustest.BOM(t,
		corpustest.Dependency{Ref: "pkg:pypi/q@0.1", DependsOn: []string{"pkg:pypi/requests@2.31.0", "pkg:pypi/idna@3.4"}}))

	c, b := newCorpus(t, config.CorpusConfig{Name: "ds1", Root: fx.Root, Layout: config.LayoutByTool})
	a := NewAssembler(utils.DiscardLogger(), false, 2)

	ds, err := a.Assemble(context.Background(), c.Name, c, b)
	require.NoError(t, err)

	require.Len(t, ds.PackageAnalyses, 2)
	assert.NotContains(t, ds.PackageAnalyses, "no-reqs")

	q := ds.PackageAnalyses["q"]
	assert.Equal(t, []string{"requests", "idna"}, q.RawPackagesFromMetadata)
	assert.Equal(t, []models.Package{{Name: "q"}, {Name: "idna"}, {Name: "requests"}}, q.Graphs["tool1"].Packages)
	assert.Equal(t, []models.ImportStatement{
		{Imports: models.Package{Name: "idna"}, Imported: models.Package{Name: "q"}},
		{Imports: models.Package{Name: "requests"}, Imported: models.Package{Name: "q"}},
	}, q.Graphs["tool1"].ImportStatements)
}

func TestAssembleIsDeterministic(t *testing.T) {
	fx := corpustest.New(t)
	for _, pkg := range []string{"alpha", "beta", "gamma", "delta"} {
		fx.Package(pkg, "six")
		fx.Write("sbom/syft/"+pkg+"-result.json", corpustest.BOM(t,
			corpustest.Dependency{Ref: "pkg:pypi/" + pkg + "@1.0", DependsOn: []string{"pkg:pypi/six@1.16.0"}}))
		fx.Write("sbom/cdxgen/"+pkg+"-result.json", corpustest.BOM(t, corpustest.Dependency{Ref: "pkg:pypi/" + pkg + "@1.0"}))
	}

	render := func(concurrency int) []byte {
		c, b := newCorpus(t, config.CorpusConfig{Name: "ds1", Root: fx.Root, Layout: config.LayoutByTool})
		ds, err := NewAssembler(utils.DiscardLogger(), false, concurrency).Assemble(context.Background(), c.Name, c, b)
		require.NoError(t, err)
		data, err := json.MarshalIndent(ds, "", "  ")
		require.NoError(t, err)
		return data
	}

	first := render(1)
	assert.Equal(t, first, render(1))
	assert.Equal(t, first, render(4))
}

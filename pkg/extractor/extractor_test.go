package extractor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smith-xyz/sbom-graph-merger/pkg/bomloader"
	"github.com/smith-xyz/sbom-graph-merger/pkg/deptree"
	"github.com/smith-xyz/sbom-graph-merger/pkg/models"
)

func edge(imports, imported string) models.ImportStatement {
	return models.ImportStatement{
		Imports:  models.Package{Name: imports},
		Imported: models.Package{Name: imported},
	}
}

// A -> [B -> [C]]
func chainTree() []bomloader.Node {
	return []bomloader.Node{
		{Ref: "pkg:pypi/a@1.0", Children: []bomloader.Node{
			{Ref: "pkg:pypi/b@2.0", Children: []bomloader.Node{
				{Ref: "pkg:pypi/c@3.0"},
			}},
		}},
	}
}

func TestExtractEdgeDirection(t *testing.T) {
	tests := []struct {
		name          string
		order         models.EdgeOrder
		expectedEdges []models.ImportStatement
	}{
		{
			name:          "after children",
			order:         models.EdgeOrderAfterChildren,
			expectedEdges: []models.ImportStatement{edge("c", "b"), edge("b", "a")},
		},
		{
			name:          "before children",
			order:         models.EdgeOrderBeforeChildren,
			expectedEdges: []models.ImportStatement{edge("b", "a"), edge("c", "b")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			graph := FromBOM(chainTree(), tt.order)

			assert.Equal(t, []string{"a", "b", "c"}, graph.PackageNames())
			assert.Equal(t, tt.expectedEdges, graph.ImportStatements)
			assert.ElementsMatch(t, []models.ImportStatement{edge("b", "a"), edge("c", "b")}, graph.ImportStatements)
		})
	}
}

func TestExtractKeepsRepeatedPackages(t *testing.T) {
	tree := []bomloader.Node{
		{Ref: "pkg:pypi/app@1.0", Children: []bomloader.Node{
			{Ref: "pkg:pypi/left@1.0", Children: []bomloader.Node{{Ref: "pkg:pypi/six@1.16.0"}}},
			{Ref: "pkg:pypi/right@1.0", Children: []bomloader.Node{{Ref: "pkg:pypi/six@1.16.0"}}},
		}},
	}

	graph := FromBOM(tree, models.EdgeOrderBeforeChildren)

	assert.Equal(t, []string{"app", "left", "six", "right", "six"}, graph.PackageNames())
	assert.Equal(t, []models.ImportStatement{
		edge("left", "app"),
		edge("six", "left"),
		edge("right", "app"),
		edge("six", "right"),
	}, graph.ImportStatements)
}

func TestExtractTopLevelHasNoEdges(t *testing.T) {
	tree := []bomloader.Node{{Ref: "pkg:pypi/p@1.0"}, {Ref: "pkg:pypi/q@1.0"}}

	graph := FromBOM(tree, models.EdgeOrderAfterChildren)

	assert.Equal(t, []string{"p", "q"}, graph.PackageNames())
	assert.Empty(t, graph.ImportStatements)
}

func TestExtractIntoExistingGraph(t *testing.T) {
	graph := models.NewDependencyGraph()
	root := graph.InsertPackage("root")

	err := Extract([]bomloader.Node{{Ref: "pkg:pypi/x@1"}}, &root, graph, BOMShape(models.EdgeOrderAfterChildren))
	require.NoError(t, err)

	assert.Equal(t, []string{"root", "x"}, graph.PackageNames())
	assert.Equal(t, []models.ImportStatement{edge("x", "root")}, graph.ImportStatements)
}

func TestFromGroundTruth(t *testing.T) {
	t.Run("both name shapes", func(t *testing.T) {
		tree := []deptree.Node{
			deptree.NewNestedNode("flask",
				deptree.NewNode("jinja2", deptree.NewNode("markupsafe")),
				deptree.NewNestedNode("click")),
		}

		graph, err := FromGroundTruth(tree, models.EdgeOrderBeforeChildren)
		require.NoError(t, err)

		assert.Equal(t, []string{"flask", "jinja2", "markupsafe", "click"}, graph.PackageNames())
		assert.Equal(t, []models.ImportStatement{
			edge("jinja2", "flask"),
			edge("markupsafe", "jinja2"),
			edge("click", "flask"),
		}, graph.ImportStatements)
	})

	t.Run("node without a name fails", func(t *testing.T) {
		tree := []deptree.Node{
			deptree.NewNode("flask", deptree.Node{}),
		}

		graph, err := FromGroundTruth(tree, models.EdgeOrderAfterChildren)
		assert.Nil(t, graph)
		assert.True(t, errors.Is(err, deptree.ErrMissingName))
		assert.Contains(t, err.Error(), "flask")
	})
}

func TestFromMetadata(t *testing.T) {
	graph := FromMetadata("p", []string{"six", "requests", "six"})

	assert.Equal(t, []string{"p", "six", "requests", "six"}, graph.PackageNames())
	assert.Equal(t, []models.ImportStatement{
		edge("six", "p"),
		edge("requests", "p"),
		edge("six", "p"),
	}, graph.ImportStatements)
}

func TestExtractStopsAtFirstError(t *testing.T) {
	failing := errors.New("boom")
	shape := Shape[string]{
		Name: func(s string) (string, error) {
			if s == "bad" {
				return "", failing
			}
			return s, nil
		},
	}

	graph := models.NewDependencyGraph()
	err := Extract([]string{"ok", "bad", "never"}, nil, graph, shape)

	assert.ErrorIs(t, err, failing)
	assert.Equal(t, []string{"ok"}, graph.PackageNames())
}

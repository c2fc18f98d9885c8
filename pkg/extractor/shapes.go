package extractor

import (
	"github.com/smith-xyz/sbom-graph-merger/pkg/bomloader"
	"github.com/smith-xyz/sbom-graph-merger/pkg/deptree"
	"github.com/smith-xyz/sbom-graph-merger/pkg/identifier"
	"github.com/smith-xyz/sbom-graph-merger/pkg/models"
)

// BOMShape reads decoded SBOM nodes, normalizing their composite identifiers.
func BOMShape(order models.EdgeOrder) Shape[bomloader.Node] {
	return Shape[bomloader.Node]{
		Name: func(n bomloader.Node) (string, error) {
			return identifier.Normalize(n.Ref), nil
		},
		Children: func(n bomloader.Node) []bomloader.Node {
			return n.Children
		},
		Order: order,
	}
}

// GroundTruthShape reads curated deptree nodes. A node without a name fails
// the extraction with deptree.ErrMissingName.
func GroundTruthShape(order models.EdgeOrder) Shape[deptree.Node] {
	return Shape[deptree.Node]{
		Name: deptree.Node.Name,
		Children: func(n deptree.Node) []deptree.Node {
			return n.Dependencies
		},
		Order: order,
	}
}

// FlatShape reads a flat list of names with no nesting.
func FlatShape() Shape[string] {
	return Shape[string]{
		Name: func(name string) (string, error) {
			return name, nil
		},
	}
}

// FromBOM builds a fresh graph from a decoded SBOM tree.
func FromBOM(nodes []bomloader.Node, order models.EdgeOrder) *models.DependencyGraph {
	graph := models.NewDependencyGraph()
	// BOM names never fail to resolve.
	_ = Extract(nodes, nil, graph, BOMShape(order))
	return graph
}

// FromGroundTruth builds a fresh graph from a ground-truth tree.
func FromGroundTruth(nodes []deptree.Node, order models.EdgeOrder) (*models.DependencyGraph, error) {
	graph := models.NewDependencyGraph()
	if err := Extract(nodes, nil, graph, GroundTruthShape(order)); err != nil {
		return nil, err
	}
	return graph, nil
}

// FromMetadata builds a graph rooted at root in which every declared name
// imports root.
func FromMetadata(root string, declared []string) *models.DependencyGraph {
	graph := models.NewDependencyGraph()
	rootPkg := graph.InsertPackage(root)
	_ = Extract(declared, &rootPkg, graph, FlatShape())
	return graph
}

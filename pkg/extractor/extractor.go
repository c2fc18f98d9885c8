// Package extractor turns nested dependency trees into dependency graphs.
//
// Every tree node becomes a new package in the graph, and every node below
// the synthetic root records one import statement pointing at its parent:
// the child imports the parent. Repeated mentions of a package are kept as
// separate nodes.
package extractor

import (
	"fmt"

	"github.com/smith-xyz/sbom-graph-merger/pkg/models"
)

// Shape tells Extract how to read one kind of tree node.
type Shape[N any] struct {
	// Name returns the package name recorded for a node.
	Name func(N) (string, error)
	// Children returns the nested nodes, nil or empty for a leaf.
	Children func(N) []N
	// Order decides whether the edge to the parent is recorded before or after the subtree.
	Order models.EdgeOrder
}

// Extract walks nodes depth-first in input order and accumulates packages
// and import statements into graph. A nil parent marks the top-level call:
// those nodes are inserted without an edge.
func Extract[N any](nodes []N, parent *models.Package, graph *models.DependencyGraph, shape Shape[N]) error {
	for _, node := range nodes {
		name, err := shape.Name(node)
		if err != nil {
			return err
		}
		pkg := graph.InsertPackage(name)

		if parent != nil && shape.Order == models.EdgeOrderBeforeChildren {
			graph.InsertImport(pkg, *parent)
		}

		if children := childrenOf(shape, node); len(children) > 0 {
			if err := Extract(children, &pkg, graph, shape); err != nil {
				return fmt.Errorf("under %q: %w", name, err)
			}
		}

		if parent != nil && shape.Order != models.EdgeOrderBeforeChildren {
			graph.InsertImport(pkg, *parent)
		}
	}
	return nil
}

func childrenOf[N any](shape Shape[N], node N) []N {
	if shape.Children == nil {
		return nil
	}
	return shape.Children(node)
}

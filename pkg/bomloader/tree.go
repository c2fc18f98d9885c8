// Package bomloader decodes CycloneDX SBOM documents and exposes their
// dependencies section as a tree of composite identifiers.
package bomloader

import (
	"cmp"
	"slices"

	cdx "github.com/CycloneDX/cyclonedx-go"
)

// Node is one entry of a decoded dependency tree.
type Node struct {
	Ref      string `json:"ref"`
	Children []Node `json:"children,omitempty"`
}

// FromBOM converts the document's dependencies section into a tree.
// Every dependency entry becomes a top-level node whose children are the
// refs it depends on; those children are leaves, so dependency cycles in the
// document cannot produce an unbounded tree. Entries and their children are
// ordered by ref, not by document position; repeated refs are kept.
func FromBOM(bom *cdx.BOM) []Node {
	if bom == nil || bom.Dependencies == nil {
		return []Node{}
	}

	nodes := make([]Node, 0, len(*bom.Dependencies))
	for _, dep := range *bom.Dependencies {
		node := Node{Ref: dep.Ref}
		if dep.Dependencies != nil {
			for _, ref := range *dep.Dependencies {
				node.Children = append(node.Children, Node{Ref: ref})
			}
		}
		slices.SortStableFunc(node.Children, byRef)
		nodes = append(nodes, node)
	}
	slices.SortStableFunc(nodes, byRef)
	return nodes
}

func byRef(a, b Node) int {
	return cmp.Compare(a.Ref, b.Ref)
}

package models

// Package is a node in a dependency graph, identified solely by its normalized name.
type Package struct {
	Name string `json:"name"`
}

// ImportStatement is a directed edge: Imports declares a dependency on Imported.
type ImportStatement struct {
	Imports  Package `json:"imports"`
	Imported Package `json:"imported"`
}

// DependencyGraph holds the packages and import statements observed for one
// (software package, tool) pair. Both lists keep insertion order and neither
// is deduplicated: every mention in the source tree is one entry.
type DependencyGraph struct {
	Packages         []Package         `json:"packages"`
	ImportStatements []ImportStatement `json:"import_statements"`
}

// NewDependencyGraph returns an empty graph whose lists encode as [] rather than null.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		Packages:         []Package{},
		ImportStatements: []ImportStatement{},
	}
}

// InsertPackage appends a new node for name and returns it.
// It never looks up an existing node with the same name.
func (g *DependencyGraph) InsertPackage(name string) Package {
	pkg := Package{Name: name}
	g.Packages = append(g.Packages, pkg)
	return pkg
}

// InsertImport records that imports depends on imported.
func (g *DependencyGraph) InsertImport(imports, imported Package) ImportStatement {
	stmt := ImportStatement{Imports: imports, Imported: imported}
	g.ImportStatements = append(g.ImportStatements, stmt)
	return stmt
}

// Simplify returns a copy of the graph with duplicate-named packages and
// duplicate edges folded into their first occurrence. The receiver is left untouched.
func (g *DependencyGraph) Simplify() *DependencyGraph {
	simple := NewDependencyGraph()

	seenPackages := make(map[Package]bool, len(g.Packages))
	for _, pkg := range g.Packages {
		if seenPackages[pkg] {
			continue
		}
		seenPackages[pkg] = true
		simple.Packages = append(simple.Packages, pkg)
	}

	seenEdges := make(map[ImportStatement]bool, len(g.ImportStatements))
	for _, stmt := range g.ImportStatements {
		if seenEdges[stmt] {
			continue
		}
		seenEdges[stmt] = true
		simple.ImportStatements = append(simple.ImportStatements, stmt)
	}

	return simple
}

// PackageNames returns the node names in insertion order.
func (g *DependencyGraph) PackageNames() []string {
	names := make([]string, 0, len(g.Packages))
	for _, pkg := range g.Packages {
		names = append(names, pkg.Name)
	}
	return names
}

// Package deptree loads hand-curated ground-truth dependency trees.
//
// A tree file is a JSON array of nodes. Two node shapes are accepted, and
// may be mixed within one file:
//
//	{"package": {"package_name": "flask"}, "dependencies": [...]}
//	{"package_name": "flask", "dependencies": [...]}
package deptree

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/viant/afs"
)

// ErrMissingName is returned for a node that carries neither name shape.
var ErrMissingName = errors.New("ground-truth node has no package_name")

type packageRef struct {
	PackageName *string `json:"package_name"`
}

// Node is one ground-truth tree node.
type Node struct {
	Package      *packageRef `json:"package,omitempty"`
	PackageName  *string     `json:"package_name,omitempty"`
	Dependencies []Node      `json:"dependencies,omitempty"`
}

// NewNode builds a node in the flat package_name shape.
func NewNode(name string, dependencies ...Node) Node {
	return Node{PackageName: &name, Dependencies: dependencies}
}

// NewNestedNode builds a node in the package.package_name shape.
func NewNestedNode(name string, dependencies ...Node) Node {
	return Node{Package: &packageRef{PackageName: &name}, Dependencies: dependencies}
}

// Name resolves the node's package name, preferring package.package_name.
func (n Node) Name() (string, error) {
	if n.Package != nil && n.Package.PackageName != nil {
		return *n.Package.PackageName, nil
	}
	if n.PackageName != nil {
		return *n.PackageName, nil
	}
	return "", ErrMissingName
}

// Loader reads ground-truth tree files.
type Loader struct {
	logger *slog.Logger
	fs     afs.Service
}

// NewLoader creates a new ground-truth loader.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logger, fs: afs.New()}
}

// LoadFromFile reads the tree stored at location.
func (l *Loader) LoadFromFile(ctx context.Context, location string) ([]Node, error) {
	l.logger.Debug("loading ground truth", "path", location)
	data, err := l.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read ground truth %s: %w", location, err)
	}

	nodes, err := l.LoadFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return nodes, nil
}

// LoadFromReader decodes a tree from reader.
func (l *Loader) LoadFromReader(reader io.Reader) ([]Node, error) {
	var nodes []Node
	if err := json.NewDecoder(reader).Decode(&nodes); err != nil {
		return nil, fmt.Errorf("failed to parse ground-truth JSON: %w", err)
	}
	if nodes == nil {
		nodes = []Node{}
	}
	return nodes, nil
}

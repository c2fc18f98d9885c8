// Package corpustest builds throwaway corpus directory trees for tests.
package corpustest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// Dependency is one entry of a CycloneDX dependencies section.
type Dependency struct {
	Ref       string   `json:"ref"`
	DependsOn []string `json:"dependsOn,omitempty"`
}

// Fixture is a corpus rooted in a temporary directory.
type Fixture struct {
	t    *testing.T
	Root string
}

// New creates an empty corpus under t.TempDir().
func New(t *testing.T) *Fixture {
	t.Helper()
	return &Fixture{t: t, Root: t.TempDir()}
}

// Write creates rel (slash separated, relative to Root) with content.
func (f *Fixture) Write(rel, content string) string {
	f.t.Helper()
	path := filepath.Join(f.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		f.t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		f.t.Fatalf("write %s: %v", rel, err)
	}
	return path
}

// Mkdir creates the directory rel.
func (f *Fixture) Mkdir(rel string) {
	f.t.Helper()
	if err := os.MkdirAll(filepath.Join(f.Root, filepath.FromSlash(rel)), 0o750); err != nil {
		f.t.Fatalf("mkdir %s: %v", rel, err)
	}
}

// Package creates packages/<name>/ with a requirements file holding lines.
func (f *Fixture) Package(name string, lines ...string) {
	f.t.Helper()
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	f.Write("packages/"+name+"/requirements.txt", content)
}

// BOM renders a minimal CycloneDX JSON document with the given dependencies.
func BOM(t *testing.T, deps ...Dependency) string {
	t.Helper()
	if deps == nil {
		deps = []Dependency{}
	}
	doc := map[string]any{
		"bomFormat":    "CycloneDX",
		"specVersion":  "1.4",
		"version":      1,
		"dependencies": deps,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("marshal BOM: %v", err)
	}
	return string(data)
}

package models

import (
	"encoding/json"
	"fmt"
)

// SourcePath is the entry point of a software package: one file, or several
// for frameworks that have no single main file.
// It encodes as a JSON string when it holds one path and as an array otherwise.
type SourcePath []string

// MarshalJSON implements json.Marshaler
func (s SourcePath) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// UnmarshalJSON implements json.Unmarshaler
func (s *SourcePath) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = SourcePath{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("source path must be a string or a list of strings: %w", err)
	}
	*s = SourcePath(many)
	return nil
}

// PackageAnalysis gathers every dependency view of one software package.
type PackageAnalysis struct {
	SourcePath              SourcePath                  `json:"source_path"`
	RawPackagesFromMetadata []string                    `json:"raw_packages_from_metadata"`
	Graphs                  map[string]*DependencyGraph `json:"graphs"`
	GroundTruth             *DependencyGraph            `json:"ground_truth,omitempty"`
}

// Tools returns the names of the tools that produced a graph.
// Order is unspecified.
func (a *PackageAnalysis) Tools() []string {
	tools := make([]string, 0, len(a.Graphs))
	for tool := range a.Graphs {
		tools = append(tools, tool)
	}
	return tools
}

// Dataset maps a software package name to its analysis for one corpus.
type Dataset struct {
	PackageAnalyses map[string]*PackageAnalysis `json:"package_analyses"`
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{PackageAnalyses: make(map[string]*PackageAnalysis)}
}

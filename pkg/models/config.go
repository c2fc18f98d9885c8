package models

// FailurePolicy decides what happens when one tool's SBOM cannot be read or decoded.
type FailurePolicy string

const (
	// FailurePolicyAbort propagates the error and aborts the whole corpus run.
	FailurePolicyAbort FailurePolicy = "abort"
	// FailurePolicySkip logs the error and omits that tool's graph.
	FailurePolicySkip FailurePolicy = "skip"
)

// EdgeOrder decides whether a node's edge to its parent is recorded before
// or after the edges of its own subtree.
type EdgeOrder string

const (
	// EdgeOrderAfterChildren recurses into children first, then records the edge to the parent.
	EdgeOrderAfterChildren EdgeOrder = "after-children"
	// EdgeOrderBeforeChildren records the edge to the parent, then recurses into children.
	EdgeOrderBeforeChildren EdgeOrder = "before-children"
)

// AnalysisConfig contains the per-corpus options the analysis builder needs
type AnalysisConfig struct {
	// SBOM handling
	SBOMErrors FailurePolicy // What to do with a missing or undecodable SBOM
	EdgeOrder  EdgeOrder     // Edge recording order used by the extractor

	// Optional inputs
	GroundTruth   bool // Load deptree_gt/<package>-deptree.json
	MetadataGraph bool // Add a "requirements" graph built from the declared list
}

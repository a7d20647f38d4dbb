// Package domain defines the core business entities for ragkit.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested document with metadata
//   - Passage: An overlapping span of a document used for retrieval
//   - VectorEntry: An embedded passage held by the vector index
//   - QueryOptions / Answer: Retrieval request and response shapes
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

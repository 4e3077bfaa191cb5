// Package domain defines the core business entities for reshelve.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Schema: the input and output segment orderings
//   - Binding: segment values captured from one relative path
//   - FileResult: the outcome of processing one source file
//   - Run: one invocation over a source tree, with its tally
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

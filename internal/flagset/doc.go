// Package flagset turns parsed `flags` items into resolved flag sets.
//
// The pipeline is Collect (AST to ordered Declarations), Resolve (fixpoint
// discriminant resolution) and width selection. A FlagSet is immutable once
// Resolve returns it; the emitter and `flagger eval` only read it.
package flagset

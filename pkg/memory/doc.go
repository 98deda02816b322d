// Package memory defines the memory node exchanged between the tabular
// store, the aligner and the node cache.
//
// A node starts pending when it is built from an upstream record and moves
// to aligned exactly once, when the aligner attaches its structural
// analysis:
//
//	pending --(align)--> aligned
package memory

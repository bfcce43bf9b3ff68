// Package pagination turns keyset listings into relay-style connections
// with opaque cursors. A cursor encodes the sort key of one row (a task ID);
// it is stable across calls for the same row and carries no other state.
package pagination

package tree

import "github.com/nomasters/mailtree/recordindex"

// assertExclusive is the Go expression of Dovecot's i_assert-style
// preconditions: outside Rebuild and OpenOrCreate's retry path the tree
// never acquires locks itself, it asserts the caller already holds the
// state an operation requires. Violating a
// precondition is a programmer error, not a recoverable failure, so it
// panics rather than returning an error.
func (t *Tree) assertExclusive(op string) {
	if t.index.LockType() != recordindex.LockExclusive {
		panic("mailtree: " + op + " requires the owning record-index to be held exclusive")
	}
}

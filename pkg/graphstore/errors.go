package graphstore

import "errors"

// The core's closed set of error kinds. Every one is raised
// synchronously, only by the operations documented alongside it, and
// never partially commits: if an operation returns an error, the store
// is left exactly as it was before the call began.
var (
	// ErrInvalidEntity is returned by InsertNode/InsertEdge when given an
	// empty or malformed label/relationship, or a property map with a
	// value NormalizeValue rejects.
	ErrInvalidEntity = errors.New("graphstore: invalid entity")

	// ErrNotFound is returned by DeleteNode/DeleteEdge for an identifier
	// that does not currently name a live entity.
	ErrNotFound = errors.New("graphstore: not found")

	// ErrUnknownEndpoint is returned by InsertEdge when the source or
	// target node is not currently live.
	ErrUnknownEndpoint = errors.New("graphstore: unknown endpoint")

	// ErrOutOfHistory is returned by Rollback/RollbackToTimestamp when
	// asked to roll back further than the diff log holds.
	ErrOutOfHistory = errors.New("graphstore: out of history")

	// ErrCancelled is returned by a context-accepting operation whose
	// context was already done before the operation could acquire the
	// store's lock.
	ErrCancelled = errors.New("graphstore: cancelled")

	// ErrClosed is returned by any operation on a Store after Close has
	// been called.
	ErrClosed = errors.New("graphstore: closed")
)

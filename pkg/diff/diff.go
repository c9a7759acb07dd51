// Package diff implements the append-only, reversible operation log that
// every mutation to the store passes through. A Diff is the sole
// observable record of state change: invariant I3 (diff totality)
// requires exactly one Diff per successful mutation, and I4
// (reversibility) requires that Inverse, applied to the most recent
// Diff, returns the store to its prior observable state.
package diff

import (
	"time"

	"github.com/orneryd/graphstore/pkg/entity"
)

// Op names the four mutations the store supports. There is no update
// op: invariant I2 forbids in-place mutation, so "updates" are modeled
// as a delete paired with an insert.
type Op int

const (
	OpInsertNode Op = iota
	OpDeleteNode
	OpInsertEdge
	OpDeleteEdge
)

// String renders an Op for logging.
func (o Op) String() string {
	switch o {
	case OpInsertNode:
		return "insert_node"
	case OpDeleteNode:
		return "delete_node"
	case OpInsertEdge:
		return "insert_edge"
	case OpDeleteEdge:
		return "delete_edge"
	default:
		return "unknown"
	}
}

// Diff is one entry in the log. Exactly one of Node or Edge is
// populated, depending on Op. AgentID and SessionID are optional audit
// fields; both are empty strings when unset. The facade's insert and
// delete operations leave them empty; Import carries them over from a
// snapshot.
type Diff struct {
	ID        string
	Op        Op
	Timestamp time.Time
	Node      *entity.Node
	Edge      *entity.Edge
	AgentID   string
	SessionID string
}

// Inverse returns the Diff that undoes d: an insert becomes a delete of
// the same payload and vice versa, with the same identifiers. The
// timestamp is left zero.
func Inverse(d Diff) Diff {
	inv := d
	inv.Timestamp = time.Time{}
	switch d.Op {
	case OpInsertNode:
		inv.Op = OpDeleteNode
	case OpDeleteNode:
		inv.Op = OpInsertNode
	case OpInsertEdge:
		inv.Op = OpDeleteEdge
	case OpDeleteEdge:
		inv.Op = OpInsertEdge
	}
	return inv
}

// Log is an append-only history of Diffs. It performs no locking of its
// own: the facade touches it only while holding its single logical
// lock, matching the single-writer/multi-reader discipline described at
// the facade level.
type Log struct {
	entries []Diff
}

// NewLog returns an empty Log.
func NewLog() *Log {
	return &Log{}
}

// Append adds d to the end of the log.
func (l *Log) Append(d Diff) {
	l.entries = append(l.entries, d)
}

// Len returns the number of entries currently in the log.
func (l *Log) Len() int {
	return len(l.entries)
}

// At returns the entry at position i (0-indexed, oldest first).
func (l *Log) At(i int) Diff {
	return l.entries[i]
}

// Tail returns the last k entries, oldest first. If k exceeds the log
// length, the whole log is returned.
func (l *Log) Tail(k int) []Diff {
	if k <= 0 {
		return nil
	}
	if k > len(l.entries) {
		k = len(l.entries)
	}
	out := make([]Diff, k)
	copy(out, l.entries[len(l.entries)-k:])
	return out
}

// All returns every entry in the log, oldest first. The returned slice
// is a copy; mutating it does not affect the log.
func (l *Log) All() []Diff {
	out := make([]Diff, len(l.entries))
	copy(out, l.entries)
	return out
}

// Truncate drops entries so that only the first n remain, discarding
// the rest. Used after a rollback to shorten the log to the point the
// store was rolled back to.
func (l *Log) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n >= len(l.entries) {
		return
	}
	l.entries = l.entries[:n]
}

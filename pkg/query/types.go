// Package query implements the AND-composed query planner: node
// queries, edge queries, and connected-node traversal. All query shapes
// are satisfied either through a posting-list intersection (pkg/gindex)
// or, when no index covers a predicate, a filtered scan over the tier
// store — the two paths always agree (invariant I5), since the index
// path is itself followed by a full predicate re-check before a result
// is returned.
package query

import (
	"time"

	"github.com/orneryd/graphstore/pkg/entity"
	"github.com/orneryd/graphstore/pkg/tier"
)

// NodeQuery selects nodes by an optional label and zero or more property
// equality constraints, all AND-composed.
type NodeQuery struct {
	Label      string
	Properties map[string]any
}

// EdgeQuery selects edges by an optional relationship type, optional
// source/target endpoints, and zero or more property equality
// constraints, all AND-composed. A zero-value Source or Target means
// "unconstrained".
type EdgeQuery struct {
	Relationship string
	Source       entity.NodeID
	Target       entity.NodeID
	Properties   map[string]any
}

// Direction constrains which edges a ConnectedQuery traverses relative
// to its Start node.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
	Both
)

// String renders a Direction for logging.
func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "outgoing"
	case Incoming:
		return "incoming"
	case Both:
		return "both"
	default:
		return "unknown"
	}
}

// ConnectedQuery finds the nodes reachable from Start by exactly one hop
// of relationship Relationship (or any relationship, if empty), in the
// given Direction.
type ConnectedQuery struct {
	Start        entity.NodeID
	Relationship string
	Direction    Direction
}

// Result wraps a query's materialized items with the wall-clock time the
// planner spent and the tier most of the results were found resident
// in, so collaborators can reason about hit latency without the core
// emitting telemetry itself.
type Result[T any] struct {
	Items       []T
	Duration    time.Duration
	PrimaryTier tier.Tier
}

// Package entity defines the node and edge value objects and the tagged
// property-value union shared by every other package in the store.
//
// Nodes and edges are immutable: once constructed, only access metadata
// (AccessCount, LastAccessed) changes, and only by deriving a new value
// through WithAccess. Callers that need update semantics delete and
// reinsert, obtaining a new identifier.
package entity

import (
	"fmt"
	"time"

	"github.com/orneryd/graphstore/pkg/convert"
)

// NodeID identifies a node. Opaque and globally unique for the life of
// the entity it names.
type NodeID string

// EdgeID identifies an edge. Opaque and globally unique for the life of
// the entity it names.
type EdgeID string

// Node is an immutable labeled vertex with a property bag.
//
// Fields are unexported so that the only way to obtain a Node is through
// NewNode or a derivation method (WithAccess) — there is no exported
// setter, matching invariant I2: once created, a node's fields other
// than access metadata never change.
type Node struct {
	id           NodeID
	label        string
	properties   map[string]Value
	createdAt    time.Time
	accessCount  int64
	lastAccessed time.Time
}

// NewNode constructs a Node with a fresh, zeroed access history.
// Properties are deep-copied and normalized through NormalizeValue.
func NewNode(id NodeID, label string, properties map[string]any, createdAt time.Time) (*Node, error) {
	normalized, err := normalizeProperties(properties)
	if err != nil {
		return nil, fmt.Errorf("entity: normalize node properties: %w", err)
	}
	return &Node{
		id:           id,
		label:        label,
		properties:   normalized,
		createdAt:    createdAt,
		lastAccessed: createdAt,
	}, nil
}

// RestoreNode reconstructs a Node with explicit access metadata, for use
// by Export/Import round-tripping where the access history must survive
// the trip rather than reset to zero.
func RestoreNode(id NodeID, label string, properties map[string]any, createdAt time.Time, accessCount int64, lastAccessed time.Time) (*Node, error) {
	normalized, err := normalizeProperties(properties)
	if err != nil {
		return nil, fmt.Errorf("entity: normalize node properties: %w", err)
	}
	return &Node{
		id:           id,
		label:        label,
		properties:   normalized,
		createdAt:    createdAt,
		accessCount:  accessCount,
		lastAccessed: lastAccessed,
	}, nil
}

// ID returns the node's identifier.
func (n *Node) ID() NodeID { return n.id }

// Label returns the node's label.
func (n *Node) Label() string { return n.label }

// CreatedAt returns the time the node was inserted.
func (n *Node) CreatedAt() time.Time { return n.createdAt }

// AccessCount returns the number of times the node has been read since
// creation.
func (n *Node) AccessCount() int64 { return n.accessCount }

// LastAccessed returns the time of the node's most recent read, or its
// creation time if it has never been read.
func (n *Node) LastAccessed() time.Time { return n.lastAccessed }

// Properties returns a deep copy of the node's property bag, converted
// back to plain Go values for caller/JSON consumption.
func (n *Node) Properties() map[string]any {
	return rawProperties(n.properties)
}

// Property looks up a single property by name.
func (n *Node) Property(name string) (Value, bool) {
	v, ok := n.properties[name]
	return v, ok
}

// Values returns the node's property bag as normalized Values, without
// the Raw() round-trip Properties performs. Used by index maintenance,
// which needs to test IsHashable() on each value.
func (n *Node) Values() map[string]Value {
	out := make(map[string]Value, len(n.properties))
	for k, v := range n.properties {
		out[k] = v
	}
	return out
}

// WithAccess returns a copy of the node with its access metadata bumped
// to now, leaving every other field untouched. It never mutates the
// receiver, preserving I2.
func (n *Node) WithAccess(now time.Time) *Node {
	clone := *n
	clone.accessCount = n.accessCount + 1
	clone.lastAccessed = now
	return &clone
}

// Equal reports whether two nodes have identical identity, label, and
// properties, ignoring access metadata.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.id != other.id || n.label != other.label {
		return false
	}
	return propertiesEqual(n.properties, other.properties)
}

// Edge is an immutable directed, typed relationship between two nodes.
type Edge struct {
	id           EdgeID
	source       NodeID
	target       NodeID
	relationship string
	properties   map[string]Value
	createdAt    time.Time
	accessCount  int64
	lastAccessed time.Time
}

// NewEdge constructs an Edge with a fresh, zeroed access history.
// Properties are deep-copied and normalized through NormalizeValue.
func NewEdge(id EdgeID, source, target NodeID, relationship string, properties map[string]any, createdAt time.Time) (*Edge, error) {
	normalized, err := normalizeProperties(properties)
	if err != nil {
		return nil, fmt.Errorf("entity: normalize edge properties: %w", err)
	}
	return &Edge{
		id:           id,
		source:       source,
		target:       target,
		relationship: relationship,
		properties:   normalized,
		createdAt:    createdAt,
		lastAccessed: createdAt,
	}, nil
}

// RestoreEdge reconstructs an Edge with explicit access metadata, for
// use by Export/Import round-tripping where the access history must
// survive the trip rather than reset to zero.
func RestoreEdge(id EdgeID, source, target NodeID, relationship string, properties map[string]any, createdAt time.Time, accessCount int64, lastAccessed time.Time) (*Edge, error) {
	normalized, err := normalizeProperties(properties)
	if err != nil {
		return nil, fmt.Errorf("entity: normalize edge properties: %w", err)
	}
	return &Edge{
		id:           id,
		source:       source,
		target:       target,
		relationship: relationship,
		properties:   normalized,
		createdAt:    createdAt,
		accessCount:  accessCount,
		lastAccessed: lastAccessed,
	}, nil
}

// ID returns the edge's identifier.
func (e *Edge) ID() EdgeID { return e.id }

// Source returns the identifier of the edge's start node.
func (e *Edge) Source() NodeID { return e.source }

// Target returns the identifier of the edge's end node.
func (e *Edge) Target() NodeID { return e.target }

// Relationship returns the edge's relationship type.
func (e *Edge) Relationship() string { return e.relationship }

// CreatedAt returns the time the edge was inserted.
func (e *Edge) CreatedAt() time.Time { return e.createdAt }

// AccessCount returns the number of times the edge has been read since
// creation.
func (e *Edge) AccessCount() int64 { return e.accessCount }

// LastAccessed returns the time of the edge's most recent read, or its
// creation time if it has never been read.
func (e *Edge) LastAccessed() time.Time { return e.lastAccessed }

// Properties returns a deep copy of the edge's property bag, converted
// back to plain Go values for caller/JSON consumption.
func (e *Edge) Properties() map[string]any {
	return rawProperties(e.properties)
}

// Property looks up a single property by name.
func (e *Edge) Property(name string) (Value, bool) {
	v, ok := e.properties[name]
	return v, ok
}

// Values returns the edge's property bag as normalized Values, without
// the Raw() round-trip Properties performs.
func (e *Edge) Values() map[string]Value {
	out := make(map[string]Value, len(e.properties))
	for k, v := range e.properties {
		out[k] = v
	}
	return out
}

// WithAccess returns a copy of the edge with its access metadata bumped
// to now, leaving every other field untouched.
func (e *Edge) WithAccess(now time.Time) *Edge {
	clone := *e
	clone.accessCount = e.accessCount + 1
	clone.lastAccessed = now
	return &clone
}

// Equal reports whether two edges have identical identity, endpoints,
// relationship, and properties, ignoring access metadata.
func (e *Edge) Equal(other *Edge) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.id != other.id || e.source != other.source || e.target != other.target {
		return false
	}
	if e.relationship != other.relationship {
		return false
	}
	return propertiesEqual(e.properties, other.properties)
}

func normalizeProperties(properties map[string]any) (map[string]Value, error) {
	out := make(map[string]Value, len(properties))
	for k, v := range properties {
		nv, err := NormalizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		out[k] = nv
	}
	return out, nil
}

func rawProperties(properties map[string]Value) map[string]any {
	out := make(map[string]any, len(properties))
	for k, v := range properties {
		out[k] = v.Raw()
	}
	return out
}

func propertiesEqual(a, b map[string]Value) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !av.Equal(bv) {
			return false
		}
	}
	return true
}

// coerceInt and coerceFloat are small hooks used by NormalizeValue for
// the int/float disambiguation described there; they defer to
// pkg/convert so the coercion rules live in one place.
func coerceInt(v any) (int64, bool) {
	return convert.ToInt64(v)
}

func coerceFloat(v any) (float64, bool) {
	return convert.ToFloat64(v)
}

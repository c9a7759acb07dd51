// Package gindex maintains the secondary indexes (label, node property,
// relationship, edge endpoint, edge property) that let the query engine
// avoid a full scan. Every posting list is ordered so set intersection
// is a single merge pass, O(|A|+|B|).
//
// Maintenance is synchronous: the facade calls OnInsertNode/
// OnDeleteNode/OnInsertEdge/OnDeleteEdge in the same critical section as
// the tier-store mutation and diff-log append, so there is never a
// window where an index is stale relative to the entities it covers
// (invariant I5).
package gindex

import (
	"fmt"

	"github.com/orneryd/graphstore/pkg/entity"
)

// propKey identifies a (name, value) pair in a property index. It is
// only ever constructed for hashable values — unhashable properties
// (lists, maps, null) fall back to a filtered scan in the query engine.
type propKey struct {
	name  string
	value entity.Value
}

// hashKey renders a propKey as a string suitable for use as a Go map
// key, since entity.Value itself is not comparable (it embeds slices
// and maps for the unhashable kinds, even though those never reach
// here).
func (k propKey) hashKey() string {
	return fmt.Sprintf("%s=%s:%v", k.name, k.value.Kind(), k.value.Raw())
}

// Manager owns every secondary index over the live node and edge set.
type Manager struct {
	labels        map[string]*PostingList
	nodeProps     map[string]*PostingList
	relationships map[string]*PostingList
	bySource      map[entity.NodeID]*PostingList
	byTarget      map[entity.NodeID]*PostingList
	edgeProps     map[string]*PostingList
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{
		labels:        make(map[string]*PostingList),
		nodeProps:     make(map[string]*PostingList),
		relationships: make(map[string]*PostingList),
		bySource:      make(map[entity.NodeID]*PostingList),
		byTarget:      make(map[entity.NodeID]*PostingList),
		edgeProps:     make(map[string]*PostingList),
	}
}

// OnInsertNode derives every eligible index key for n and registers its
// identifier in each corresponding posting list.
func (m *Manager) OnInsertNode(n *entity.Node) {
	id := string(n.ID())
	m.listFor(m.labels, n.Label()).Insert(id)
	for name, v := range n.Values() {
		if !v.IsHashable() {
			continue
		}
		key := propKey{name: name, value: v}.hashKey()
		m.listFor(m.nodeProps, key).Insert(id)
	}
}

// OnDeleteNode removes n's identifier from every list it was registered
// in.
func (m *Manager) OnDeleteNode(n *entity.Node) {
	id := string(n.ID())
	if l, ok := m.labels[n.Label()]; ok {
		l.Remove(id)
	}
	for name, v := range n.Values() {
		if !v.IsHashable() {
			continue
		}
		key := propKey{name: name, value: v}.hashKey()
		if l, ok := m.nodeProps[key]; ok {
			l.Remove(id)
		}
	}
}

// OnInsertEdge derives every eligible index key for e and registers its
// identifier in each corresponding posting list.
func (m *Manager) OnInsertEdge(e *entity.Edge) {
	id := string(e.ID())
	m.listFor(m.relationships, e.Relationship()).Insert(id)
	m.listForNode(m.bySource, e.Source()).Insert(id)
	m.listForNode(m.byTarget, e.Target()).Insert(id)
	for name, v := range e.Values() {
		if !v.IsHashable() {
			continue
		}
		key := propKey{name: name, value: v}.hashKey()
		m.listFor(m.edgeProps, key).Insert(id)
	}
}

// OnDeleteEdge removes e's identifier from every list it was registered
// in.
func (m *Manager) OnDeleteEdge(e *entity.Edge) {
	id := string(e.ID())
	if l, ok := m.relationships[e.Relationship()]; ok {
		l.Remove(id)
	}
	if l, ok := m.bySource[e.Source()]; ok {
		l.Remove(id)
	}
	if l, ok := m.byTarget[e.Target()]; ok {
		l.Remove(id)
	}
	for name, v := range e.Values() {
		if !v.IsHashable() {
			continue
		}
		key := propKey{name: name, value: v}.hashKey()
		if l, ok := m.edgeProps[key]; ok {
			l.Remove(id)
		}
	}
}

// NodesByLabel returns the posting list of node identifiers carrying
// label, or nil if no node currently carries it.
func (m *Manager) NodesByLabel(label string) *PostingList {
	return m.labels[label]
}

// NodesByProperty returns the posting list of node identifiers whose
// name property equals value, or nil if there is no such list. value
// must be hashable; callers holding an unhashable value should fall
// back to a filtered scan instead of calling this method.
func (m *Manager) NodesByProperty(name string, value entity.Value) *PostingList {
	return m.nodeProps[propKey{name: name, value: value}.hashKey()]
}

// EdgesByRelationship returns the posting list of edge identifiers with
// the given relationship type, or nil.
func (m *Manager) EdgesByRelationship(relationship string) *PostingList {
	return m.relationships[relationship]
}

// EdgesBySource returns the posting list of edge identifiers whose
// source is id, or nil.
func (m *Manager) EdgesBySource(id entity.NodeID) *PostingList {
	return m.bySource[id]
}

// EdgesByTarget returns the posting list of edge identifiers whose
// target is id, or nil.
func (m *Manager) EdgesByTarget(id entity.NodeID) *PostingList {
	return m.byTarget[id]
}

// EdgesByProperty returns the posting list of edge identifiers whose
// name property equals value, or nil. value must be hashable.
func (m *Manager) EdgesByProperty(name string, value entity.Value) *PostingList {
	return m.edgeProps[propKey{name: name, value: value}.hashKey()]
}

func (m *Manager) listFor(set map[string]*PostingList, key string) *PostingList {
	l, ok := set[key]
	if !ok {
		l = NewPostingList()
		set[key] = l
	}
	return l
}

func (m *Manager) listForNode(set map[entity.NodeID]*PostingList, key entity.NodeID) *PostingList {
	l, ok := set[key]
	if !ok {
		l = NewPostingList()
		set[key] = l
	}
	return l
}

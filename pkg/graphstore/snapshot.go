package graphstore

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/orneryd/graphstore/pkg/diff"
	"github.com/orneryd/graphstore/pkg/entity"
)

// Snapshot is the self-describing export format: every live node and
// edge, plus the full diff history, sufficient for Import to
// reconstruct a store on which every public operation returns the same
// results as the source store (modulo wall-clock durations and the
// primary-tier field in query results, which depend on live access
// patterns).
type Snapshot struct {
	Metadata SnapshotMetadata `json:"metadata"`
	Nodes    []NodeSnapshot   `json:"nodes"`
	Edges    []EdgeSnapshot   `json:"edges"`
	Diffs    []DiffSnapshot   `json:"diffs"`
}

// SnapshotMetadata summarizes a Snapshot's contents.
type SnapshotMetadata struct {
	TotalNodes int       `json:"total_nodes"`
	TotalEdges int       `json:"total_edges"`
	TotalDiffs int       `json:"total_diffs"`
	ExportTime time.Time `json:"export_time"`
}

// NodeSnapshot is the exported shape of one node.
type NodeSnapshot struct {
	ID           string         `json:"id"`
	Label        string         `json:"label"`
	Properties   map[string]any `json:"properties"`
	CreatedAt    time.Time      `json:"created_at"`
	AccessCount  int64          `json:"access_count"`
	LastAccessed time.Time      `json:"last_accessed"`
}

// EdgeSnapshot is the exported shape of one edge.
type EdgeSnapshot struct {
	ID           string         `json:"id"`
	SourceID     string         `json:"source_id"`
	TargetID     string         `json:"target_id"`
	Relationship string         `json:"relationship"`
	Properties   map[string]any `json:"properties"`
	CreatedAt    time.Time      `json:"created_at"`
	AccessCount  int64          `json:"access_count"`
	LastAccessed time.Time      `json:"last_accessed"`
}

// DiffSnapshot is the exported shape of one log entry. Payload holds
// either a NodeSnapshot or an EdgeSnapshot depending on Op, encoded as
// raw JSON so the outer schema stays uniform.
type DiffSnapshot struct {
	ID        string          `json:"id"`
	Op        string          `json:"op"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
	AgentID   string          `json:"agent_id,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
}

func nodeToSnapshot(n *entity.Node) NodeSnapshot {
	return NodeSnapshot{
		ID:           string(n.ID()),
		Label:        n.Label(),
		Properties:   n.Properties(),
		CreatedAt:    n.CreatedAt(),
		AccessCount:  n.AccessCount(),
		LastAccessed: n.LastAccessed(),
	}
}

func edgeToSnapshot(e *entity.Edge) EdgeSnapshot {
	return EdgeSnapshot{
		ID:           string(e.ID()),
		SourceID:     string(e.Source()),
		TargetID:     string(e.Target()),
		Relationship: e.Relationship(),
		Properties:   e.Properties(),
		CreatedAt:    e.CreatedAt(),
		AccessCount:  e.AccessCount(),
		LastAccessed: e.LastAccessed(),
	}
}

func snapshotToNode(ns NodeSnapshot) (*entity.Node, error) {
	return entity.RestoreNode(entity.NodeID(ns.ID), ns.Label, ns.Properties, ns.CreatedAt, ns.AccessCount, ns.LastAccessed)
}

func snapshotToEdge(es EdgeSnapshot) (*entity.Edge, error) {
	return entity.RestoreEdge(entity.EdgeID(es.ID), entity.NodeID(es.SourceID), entity.NodeID(es.TargetID), es.Relationship, es.Properties, es.CreatedAt, es.AccessCount, es.LastAccessed)
}

func diffToSnapshot(d diff.Diff) (DiffSnapshot, error) {
	ds := DiffSnapshot{ID: d.ID, Op: d.Op.String(), Timestamp: d.Timestamp, AgentID: d.AgentID, SessionID: d.SessionID}
	var (
		raw []byte
		err error
	)
	switch d.Op {
	case diff.OpInsertNode, diff.OpDeleteNode:
		raw, err = json.Marshal(nodeToSnapshot(d.Node))
	case diff.OpInsertEdge, diff.OpDeleteEdge:
		raw, err = json.Marshal(edgeToSnapshot(d.Edge))
	}
	if err != nil {
		return DiffSnapshot{}, err
	}
	ds.Payload = raw
	return ds, nil
}

func opFromString(s string) (diff.Op, error) {
	switch s {
	case diff.OpInsertNode.String():
		return diff.OpInsertNode, nil
	case diff.OpDeleteNode.String():
		return diff.OpDeleteNode, nil
	case diff.OpInsertEdge.String():
		return diff.OpInsertEdge, nil
	case diff.OpDeleteEdge.String():
		return diff.OpDeleteEdge, nil
	default:
		return 0, fmt.Errorf("graphstore: unknown diff op %q", s)
	}
}

func snapshotToDiff(ds DiffSnapshot) (diff.Diff, error) {
	op, err := opFromString(ds.Op)
	if err != nil {
		return diff.Diff{}, err
	}
	d := diff.Diff{ID: ds.ID, Op: op, Timestamp: ds.Timestamp, AgentID: ds.AgentID, SessionID: ds.SessionID}
	switch op {
	case diff.OpInsertNode, diff.OpDeleteNode:
		var ns NodeSnapshot
		if err := json.Unmarshal(ds.Payload, &ns); err != nil {
			return diff.Diff{}, fmt.Errorf("graphstore: decode node payload: %w", err)
		}
		n, err := snapshotToNode(ns)
		if err != nil {
			return diff.Diff{}, err
		}
		d.Node = n
	case diff.OpInsertEdge, diff.OpDeleteEdge:
		var es EdgeSnapshot
		if err := json.Unmarshal(ds.Payload, &es); err != nil {
			return diff.Diff{}, fmt.Errorf("graphstore: decode edge payload: %w", err)
		}
		e, err := snapshotToEdge(es)
		if err != nil {
			return diff.Diff{}, err
		}
		d.Edge = e
	}
	return d, nil
}

// Export captures every live node, edge, and the full diff history into
// a Snapshot. Nodes and edges are sorted by identifier for a
// deterministic encoding (Import/Export round-tripping is
// byte-equivalent modulo this ordering choice, which carries no
// semantic meaning).
func (s *Store) Export() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	nodes := s.nodes.All()
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	nodeSnaps := make([]NodeSnapshot, len(nodes))
	for i, n := range nodes {
		nodeSnaps[i] = nodeToSnapshot(n)
	}

	edges := s.edges.All()
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID() < edges[j].ID() })
	edgeSnaps := make([]EdgeSnapshot, len(edges))
	for i, e := range edges {
		edgeSnaps[i] = edgeToSnapshot(e)
	}

	diffs := s.log.All()
	diffSnaps := make([]DiffSnapshot, len(diffs))
	for i, d := range diffs {
		ds, err := diffToSnapshot(d)
		if err != nil {
			return nil, fmt.Errorf("graphstore: export diff %d: %w", i, err)
		}
		diffSnaps[i] = ds
	}

	return &Snapshot{
		Metadata: SnapshotMetadata{
			TotalNodes: len(nodeSnaps),
			TotalEdges: len(edgeSnaps),
			TotalDiffs: len(diffSnaps),
			ExportTime: s.clock.Now(),
		},
		Nodes: nodeSnaps,
		Edges: edgeSnaps,
		Diffs: diffSnaps,
	}, nil
}

// Import replaces the store's entire state with snap: every node and
// edge is loaded directly into the runtime tier and every index
// rebuilt from scratch (the snapshot itself carries no index state —
// rebuilding is cheaper to keep consistent than serializing index
// internals), and the diff log is replaced with snap.Diffs verbatim.
func (s *Store) Import(snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", ErrInvalidEntity)
	}

	nodes := make([]*entity.Node, 0, len(snap.Nodes))
	for _, ns := range snap.Nodes {
		n, err := snapshotToNode(ns)
		if err != nil {
			return fmt.Errorf("graphstore: import node %s: %w", ns.ID, err)
		}
		nodes = append(nodes, n)
	}

	edges := make([]*entity.Edge, 0, len(snap.Edges))
	for _, es := range snap.Edges {
		e, err := snapshotToEdge(es)
		if err != nil {
			return fmt.Errorf("graphstore: import edge %s: %w", es.ID, err)
		}
		edges = append(edges, e)
	}

	diffs := make([]diff.Diff, 0, len(snap.Diffs))
	for _, ds := range snap.Diffs {
		d, err := snapshotToDiff(ds)
		if err != nil {
			return fmt.Errorf("graphstore: import diff %s: %w", ds.ID, err)
		}
		diffs = append(diffs, d)
	}

	s.resetLocked()
	for _, n := range nodes {
		s.nodes.Put(n.ID(), n)
		s.index.OnInsertNode(n)
	}
	for _, e := range edges {
		s.edges.Put(e.ID(), e)
		s.index.OnInsertEdge(e)
	}
	for _, d := range diffs {
		s.log.Append(d)
	}

	s.logger.Debug("import", "nodes", len(nodes), "edges", len(edges), "diffs", len(diffs))
	return nil
}

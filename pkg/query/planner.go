package query

import (
	"sort"
	"time"

	"github.com/orneryd/graphstore/pkg/entity"
	"github.com/orneryd/graphstore/pkg/gindex"
	"github.com/orneryd/graphstore/pkg/tier"
)

// Planner answers node, edge, and connectivity queries against a node
// tier store, an edge tier store, and the index manager covering both.
// It holds no lock of its own: the facade calls it only while holding
// its RLock/Lock, so every planner method is safe to treat as a single
// atomic step with respect to concurrent mutation.
type Planner struct {
	nodes *tier.Store[entity.NodeID, *entity.Node]
	edges *tier.Store[entity.EdgeID, *entity.Edge]
	index *gindex.Manager
}

// NewPlanner returns a Planner over the given stores and index manager.
func NewPlanner(nodes *tier.Store[entity.NodeID, *entity.Node], edges *tier.Store[entity.EdgeID, *entity.Edge], index *gindex.Manager) *Planner {
	return &Planner{nodes: nodes, edges: edges, index: index}
}

// QueryNodes returns every live node matching q, sorted by ascending
// identifier.
func (p *Planner) QueryNodes(q NodeQuery, now time.Time) (Result[*entity.Node], error) {
	start := now

	normalized, err := normalizeProps(q.Properties)
	if err != nil {
		return Result[*entity.Node]{}, err
	}

	var lists []*gindex.PostingList
	if q.Label != "" {
		if l := p.index.NodesByLabel(q.Label); l != nil {
			lists = append(lists, l)
		} else {
			return Result[*entity.Node]{Items: nil, Duration: time.Since(start), PrimaryTier: tier.Runtime}, nil
		}
	}
	for name, v := range normalized {
		if !v.IsHashable() {
			continue
		}
		l := p.index.NodesByProperty(name, v)
		if l == nil {
			return Result[*entity.Node]{Items: nil, Duration: time.Since(start), PrimaryTier: tier.Runtime}, nil
		}
		lists = append(lists, l)
	}

	var candidateIDs []string
	if len(lists) > 0 {
		candidateIDs = gindex.Intersect(lists...)
	} else {
		for _, n := range p.nodes.All() {
			candidateIDs = append(candidateIDs, string(n.ID()))
		}
	}

	var items []*entity.Node
	tierCounts := make(map[tier.Tier]int)
	for _, idStr := range candidateIDs {
		id := entity.NodeID(idStr)
		t, _ := p.nodes.TierOf(id)
		n, _, ok := p.nodes.Get(id, now)
		if !ok {
			continue
		}
		if q.Label != "" && n.Label() != q.Label {
			continue
		}
		if !matchesProperties(n.Values(), normalized) {
			continue
		}
		items = append(items, n)
		tierCounts[t]++
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID() < items[j].ID() })

	return Result[*entity.Node]{
		Items:       items,
		Duration:    time.Since(start),
		PrimaryTier: primaryTier(tierCounts),
	}, nil
}

// QueryEdges returns every live edge matching q, sorted by ascending
// identifier.
func (p *Planner) QueryEdges(q EdgeQuery, now time.Time) (Result[*entity.Edge], error) {
	start := now

	normalized, err := normalizeProps(q.Properties)
	if err != nil {
		return Result[*entity.Edge]{}, err
	}

	var lists []*gindex.PostingList
	noMatch := false
	addList := func(l *gindex.PostingList) {
		if l == nil {
			noMatch = true
			return
		}
		lists = append(lists, l)
	}
	if q.Relationship != "" {
		addList(p.index.EdgesByRelationship(q.Relationship))
	}
	if q.Source != "" {
		addList(p.index.EdgesBySource(q.Source))
	}
	if q.Target != "" {
		addList(p.index.EdgesByTarget(q.Target))
	}
	for name, v := range normalized {
		if !v.IsHashable() {
			continue
		}
		addList(p.index.EdgesByProperty(name, v))
	}

	if noMatch {
		return Result[*entity.Edge]{Items: nil, Duration: time.Since(start), PrimaryTier: tier.Runtime}, nil
	}

	var candidateIDs []string
	if len(lists) > 0 {
		candidateIDs = gindex.Intersect(lists...)
	} else {
		for _, e := range p.edges.All() {
			candidateIDs = append(candidateIDs, string(e.ID()))
		}
	}

	var items []*entity.Edge
	tierCounts := make(map[tier.Tier]int)
	for _, idStr := range candidateIDs {
		id := entity.EdgeID(idStr)
		t, _ := p.edges.TierOf(id)
		e, _, ok := p.edges.Get(id, now)
		if !ok {
			continue
		}
		if q.Relationship != "" && e.Relationship() != q.Relationship {
			continue
		}
		if q.Source != "" && e.Source() != q.Source {
			continue
		}
		if q.Target != "" && e.Target() != q.Target {
			continue
		}
		if !matchesProperties(e.Values(), normalized) {
			continue
		}
		items = append(items, e)
		tierCounts[t]++
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID() < items[j].ID() })

	return Result[*entity.Edge]{
		Items:       items,
		Duration:    time.Since(start),
		PrimaryTier: primaryTier(tierCounts),
	}, nil
}

// QueryConnectedNodes returns the nodes reachable from q.Start by one
// hop matching q.Relationship (or any relationship, if empty) in
// q.Direction. Edges whose opposite endpoint no longer resolves to a
// live node are silently skipped (dangling-edge tolerance); this is not
// an error.
func (p *Planner) QueryConnectedNodes(q ConnectedQuery, now time.Time) (Result[*entity.Node], error) {
	start := now

	var edgeIDs []string
	switch q.Direction {
	case Outgoing:
		edgeIDs = p.directionIDs(p.index.EdgesBySource(q.Start), q.Relationship)
	case Incoming:
		edgeIDs = p.directionIDs(p.index.EdgesByTarget(q.Start), q.Relationship)
	case Both:
		out := p.directionIDs(p.index.EdgesBySource(q.Start), q.Relationship)
		in := p.directionIDs(p.index.EdgesByTarget(q.Start), q.Relationship)
		edgeIDs = mergeUnique(out, in)
	}

	seen := make(map[entity.NodeID]struct{})
	var items []*entity.Node
	tierCounts := make(map[tier.Tier]int)
	for _, idStr := range edgeIDs {
		e, _, ok := p.edges.Get(entity.EdgeID(idStr), now)
		if !ok {
			continue
		}
		var opposite entity.NodeID
		if e.Source() == q.Start {
			opposite = e.Target()
		} else {
			opposite = e.Source()
		}
		if _, dup := seen[opposite]; dup {
			continue
		}
		seen[opposite] = struct{}{}

		t, _ := p.nodes.TierOf(opposite)
		n, _, ok := p.nodes.Get(opposite, now)
		if !ok {
			continue // dangling edge: endpoint no longer resolves, tolerated per spec
		}
		items = append(items, n)
		tierCounts[t]++
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID() < items[j].ID() })

	return Result[*entity.Node]{
		Items:       items,
		Duration:    time.Since(start),
		PrimaryTier: primaryTier(tierCounts),
	}, nil
}

func (p *Planner) directionIDs(endpointList *gindex.PostingList, relationship string) []string {
	if endpointList == nil {
		return nil
	}
	if relationship == "" {
		return append([]string(nil), endpointList.IDs()...)
	}
	relList := p.index.EdgesByRelationship(relationship)
	if relList == nil {
		return nil
	}
	return gindex.Intersect(endpointList, relList)
}

func mergeUnique(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, id := range a {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	for _, id := range b {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func normalizeProps(properties map[string]any) (map[string]entity.Value, error) {
	out := make(map[string]entity.Value, len(properties))
	for k, v := range properties {
		nv, err := entity.NormalizeValue(v)
		if err != nil {
			return nil, err
		}
		out[k] = nv
	}
	return out, nil
}

func matchesProperties(have map[string]entity.Value, want map[string]entity.Value) bool {
	for name, wantVal := range want {
		haveVal, ok := have[name]
		if !ok || !haveVal.Equal(wantVal) {
			return false
		}
	}
	return true
}

func primaryTier(counts map[tier.Tier]int) tier.Tier {
	best := tier.Runtime
	bestCount := -1
	for _, t := range []tier.Tier{tier.Runtime, tier.Warm, tier.Cold} {
		if counts[t] > bestCount {
			bestCount = counts[t]
			best = t
		}
	}
	return best
}

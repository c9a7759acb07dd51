package query

import (
	"testing"
	"time"

	"github.com/orneryd/graphstore/pkg/entity"
	"github.com/orneryd/graphstore/pkg/gindex"
	"github.com/orneryd/graphstore/pkg/tier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	nodes *tier.Store[entity.NodeID, *entity.Node]
	edges *tier.Store[entity.EdgeID, *entity.Edge]
	index *gindex.Manager
}

func newFixture() *fixture {
	return &fixture{
		nodes: tier.NewStore[entity.NodeID, *entity.Node](),
		edges: tier.NewStore[entity.EdgeID, *entity.Edge](),
		index: gindex.NewManager(),
	}
}

func (f *fixture) addNode(t *testing.T, id, label string, props map[string]any) *entity.Node {
	t.Helper()
	n, err := entity.NewNode(entity.NodeID(id), label, props, time.Now())
	require.NoError(t, err)
	f.nodes.Put(n.ID(), n)
	f.index.OnInsertNode(n)
	return n
}

func (f *fixture) addEdge(t *testing.T, id, src, dst, rel string, props map[string]any) *entity.Edge {
	t.Helper()
	e, err := entity.NewEdge(entity.EdgeID(id), entity.NodeID(src), entity.NodeID(dst), rel, props, time.Now())
	require.NoError(t, err)
	f.edges.Put(e.ID(), e)
	f.index.OnInsertEdge(e)
	return e
}

func TestQueryNodesByLabel(t *testing.T) {
	f := newFixture()
	f.addNode(t, "n1", "Person", map[string]any{"city": "nyc"})
	f.addNode(t, "n2", "Person", map[string]any{"city": "sf"})
	f.addNode(t, "n3", "Company", nil)

	p := NewPlanner(f.nodes, f.edges, f.index)
	res, err := p.QueryNodes(NodeQuery{Label: "Person"}, time.Now())
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, entity.NodeID("n1"), res.Items[0].ID())
	assert.Equal(t, entity.NodeID("n2"), res.Items[1].ID())
}

func TestQueryNodesByLabelAndProperty(t *testing.T) {
	f := newFixture()
	f.addNode(t, "n1", "Person", map[string]any{"city": "nyc"})
	f.addNode(t, "n2", "Person", map[string]any{"city": "sf"})

	p := NewPlanner(f.nodes, f.edges, f.index)
	res, err := p.QueryNodes(NodeQuery{Label: "Person", Properties: map[string]any{"city": "nyc"}}, time.Now())
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, entity.NodeID("n1"), res.Items[0].ID())
}

func TestQueryNodesUnknownLabelReturnsEmpty(t *testing.T) {
	f := newFixture()
	f.addNode(t, "n1", "Person", nil)

	p := NewPlanner(f.nodes, f.edges, f.index)
	res, err := p.QueryNodes(NodeQuery{Label: "Nope"}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestQueryNodesWithUnhashablePropertyFallsBackToFilter(t *testing.T) {
	f := newFixture()
	f.addNode(t, "n1", "Person", map[string]any{"tags": []any{"a", "b"}})
	f.addNode(t, "n2", "Person", map[string]any{"tags": []any{"c"}})

	p := NewPlanner(f.nodes, f.edges, f.index)
	res, err := p.QueryNodes(NodeQuery{Label: "Person", Properties: map[string]any{"tags": []any{"a", "b"}}}, time.Now())
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, entity.NodeID("n1"), res.Items[0].ID())
}

func TestQueryNodesFullScanWithNoConstraints(t *testing.T) {
	f := newFixture()
	f.addNode(t, "n1", "Person", nil)
	f.addNode(t, "n2", "Company", nil)

	p := NewPlanner(f.nodes, f.edges, f.index)
	res, err := p.QueryNodes(NodeQuery{}, time.Now())
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
}

func TestQueryNodesBumpsAccessMetadata(t *testing.T) {
	f := newFixture()
	f.addNode(t, "n1", "Person", nil)

	p := NewPlanner(f.nodes, f.edges, f.index)
	res, err := p.QueryNodes(NodeQuery{Label: "Person"}, time.Now())
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, int64(1), res.Items[0].AccessCount())
}

func TestQueryEdgesByRelationshipAndEndpoints(t *testing.T) {
	f := newFixture()
	f.addEdge(t, "e1", "n1", "n2", "KNOWS", nil)
	f.addEdge(t, "e2", "n1", "n3", "KNOWS", nil)
	f.addEdge(t, "e3", "n2", "n3", "LIKES", nil)

	p := NewPlanner(f.nodes, f.edges, f.index)
	res, err := p.QueryEdges(EdgeQuery{Relationship: "KNOWS", Source: entity.NodeID("n1")}, time.Now())
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
}

func TestQueryEdgesUnknownRelationshipReturnsEmpty(t *testing.T) {
	f := newFixture()
	f.addEdge(t, "e1", "n1", "n2", "KNOWS", nil)

	p := NewPlanner(f.nodes, f.edges, f.index)
	res, err := p.QueryEdges(EdgeQuery{Relationship: "NOPE"}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestQueryConnectedNodesOutgoing(t *testing.T) {
	f := newFixture()
	f.addNode(t, "n1", "Person", nil)
	f.addNode(t, "n2", "Person", nil)
	f.addNode(t, "n3", "Person", nil)
	f.addEdge(t, "e1", "n1", "n2", "KNOWS", nil)
	f.addEdge(t, "e2", "n1", "n3", "LIKES", nil)

	p := NewPlanner(f.nodes, f.edges, f.index)
	res, err := p.QueryConnectedNodes(ConnectedQuery{Start: entity.NodeID("n1"), Direction: Outgoing}, time.Now())
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
}

func TestQueryConnectedNodesFiltersByRelationship(t *testing.T) {
	f := newFixture()
	f.addNode(t, "n1", "Person", nil)
	f.addNode(t, "n2", "Person", nil)
	f.addNode(t, "n3", "Person", nil)
	f.addEdge(t, "e1", "n1", "n2", "KNOWS", nil)
	f.addEdge(t, "e2", "n1", "n3", "LIKES", nil)

	p := NewPlanner(f.nodes, f.edges, f.index)
	res, err := p.QueryConnectedNodes(ConnectedQuery{Start: entity.NodeID("n1"), Relationship: "KNOWS", Direction: Outgoing}, time.Now())
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, entity.NodeID("n2"), res.Items[0].ID())
}

func TestQueryConnectedNodesIncoming(t *testing.T) {
	f := newFixture()
	f.addNode(t, "n1", "Person", nil)
	f.addNode(t, "n2", "Person", nil)
	f.addEdge(t, "e1", "n2", "n1", "KNOWS", nil)

	p := NewPlanner(f.nodes, f.edges, f.index)
	res, err := p.QueryConnectedNodes(ConnectedQuery{Start: entity.NodeID("n1"), Direction: Incoming}, time.Now())
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, entity.NodeID("n2"), res.Items[0].ID())
}

func TestQueryConnectedNodesSkipsDanglingEndpoint(t *testing.T) {
	f := newFixture()
	f.addNode(t, "n1", "Person", nil)
	e := f.addEdge(t, "e1", "n1", "n2", "KNOWS", nil)
	_ = e
	// n2 was never inserted into the node tier store: the edge dangles.

	p := NewPlanner(f.nodes, f.edges, f.index)
	res, err := p.QueryConnectedNodes(ConnectedQuery{Start: entity.NodeID("n1"), Direction: Outgoing}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "outgoing", Outgoing.String())
	assert.Equal(t, "incoming", Incoming.String())
	assert.Equal(t, "both", Both.String())
}

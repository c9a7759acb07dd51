package graphstore

import (
	"context"

	"github.com/orneryd/graphstore/pkg/entity"
	"github.com/orneryd/graphstore/pkg/query"
)

// QueryNodes returns every live node matching q. If ctx is already done
// when QueryNodes is called, it returns ErrCancelled without touching
// any state; once the read lock is acquired, the query runs to
// completion regardless of later cancellation.
func (s *Store) QueryNodes(ctx context.Context, q query.NodeQuery) (query.Result[*entity.Node], error) {
	if err := checkCancelled(ctx); err != nil {
		return query.Result[*entity.Node]{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return query.Result[*entity.Node]{}, ErrClosed
	}

	return s.planner.QueryNodes(q, s.clock.Now())
}

// QueryEdges returns every live edge matching q.
func (s *Store) QueryEdges(ctx context.Context, q query.EdgeQuery) (query.Result[*entity.Edge], error) {
	if err := checkCancelled(ctx); err != nil {
		return query.Result[*entity.Edge]{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return query.Result[*entity.Edge]{}, ErrClosed
	}

	return s.planner.QueryEdges(q, s.clock.Now())
}

// QueryConnectedNodes returns the nodes reachable from q.Start by one
// hop in q.Direction matching q.Relationship.
func (s *Store) QueryConnectedNodes(ctx context.Context, q query.ConnectedQuery) (query.Result[*entity.Node], error) {
	if err := checkCancelled(ctx); err != nil {
		return query.Result[*entity.Node]{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return query.Result[*entity.Node]{}, ErrClosed
	}

	return s.planner.QueryConnectedNodes(q, s.clock.Now())
}

// Package graphstore implements the Core Facade: the single entry point
// coordinating the entity model, diff log, tier store, and index
// manager under one logical lock. Every mutating operation validates,
// constructs the entity, appends a Diff, updates the tier store, and
// updates the indexes, all inside one critical section — never a
// partial commit.
package graphstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/orneryd/graphstore/pkg/clock"
	"github.com/orneryd/graphstore/pkg/config"
	"github.com/orneryd/graphstore/pkg/diff"
	"github.com/orneryd/graphstore/pkg/entity"
	"github.com/orneryd/graphstore/pkg/gindex"
	"github.com/orneryd/graphstore/pkg/query"
	"github.com/orneryd/graphstore/pkg/tier"
)

// Store is the embedded graph knowledge store. The zero value is not
// usable; construct one with New. A Store is safe for concurrent use:
// all mutations take the write lock, all queries take the read lock,
// so readers never observe a partially applied mutation.
type Store struct {
	mu     sync.RWMutex
	cfg    config.Config
	clock  *clock.Clock
	logger *slog.Logger

	log     *diff.Log
	nodes   *tier.Store[entity.NodeID, *entity.Node]
	edges   *tier.Store[entity.EdgeID, *entity.Edge]
	index   *gindex.Manager
	planner *query.Planner

	closed bool
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithConfig overrides the default tier-limit/auto-prune configuration.
func WithConfig(cfg config.Config) Option {
	return func(s *Store) { s.cfg = cfg }
}

// WithLogger overrides the default discard logger. The facade logs one
// structured line per mutating operation and per rollback, at Debug
// level only — routine CRUD is silent unless the caller's handler
// surfaces Debug.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New constructs a Store ready for use, applying any options over the
// package's DefaultConfig.
func New(opts ...Option) *Store {
	cfg := config.DefaultConfig()
	s := &Store{
		cfg:    *cfg,
		clock:  clock.New(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		log:    diff.NewLog(),
		nodes:  tier.NewStore[entity.NodeID, *entity.Node](),
		edges:  tier.NewStore[entity.EdgeID, *entity.Edge](),
		index:  gindex.NewManager(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.planner = query.NewPlanner(s.nodes, s.edges, s.index)
	return s
}

func newID() string {
	return uuid.New().String()
}

// InsertNode validates label and properties, constructs a new node with
// a fresh identifier, appends an insert Diff, places the node in the
// runtime tier, and updates every index it qualifies for. It returns
// the Diff recording the insert.
func (s *Store) InsertNode(label string, properties map[string]any) (diff.Diff, error) {
	if label == "" {
		return diff.Diff{}, fmt.Errorf("%w: label must not be empty", ErrInvalidEntity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return diff.Diff{}, ErrClosed
	}

	now := s.clock.Now()
	n, err := entity.NewNode(entity.NodeID(newID()), label, properties, now)
	if err != nil {
		return diff.Diff{}, fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}

	d := diff.Diff{ID: newID(), Op: diff.OpInsertNode, Timestamp: now, Node: n}
	s.log.Append(d)
	s.nodes.Put(n.ID(), n)
	s.index.OnInsertNode(n)

	s.logger.Debug("mutate", "op", d.Op.String(), "id", string(n.ID()))
	return d, nil
}

// InsertEdge validates relationship and properties, checks that source
// and target currently name live nodes, constructs a new edge with a
// fresh identifier, appends an insert Diff, places the edge in the
// runtime tier, and updates every index it qualifies for.
func (s *Store) InsertEdge(source, target entity.NodeID, relationship string, properties map[string]any) (diff.Diff, error) {
	if relationship == "" {
		return diff.Diff{}, fmt.Errorf("%w: relationship must not be empty", ErrInvalidEntity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return diff.Diff{}, ErrClosed
	}

	if _, _, ok := s.nodes.Peek(source); !ok {
		return diff.Diff{}, fmt.Errorf("%w: source %s", ErrUnknownEndpoint, source)
	}
	if _, _, ok := s.nodes.Peek(target); !ok {
		return diff.Diff{}, fmt.Errorf("%w: target %s", ErrUnknownEndpoint, target)
	}

	now := s.clock.Now()
	e, err := entity.NewEdge(entity.EdgeID(newID()), source, target, relationship, properties, now)
	if err != nil {
		return diff.Diff{}, fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}

	d := diff.Diff{ID: newID(), Op: diff.OpInsertEdge, Timestamp: now, Edge: e}
	s.log.Append(d)
	s.edges.Put(e.ID(), e)
	s.index.OnInsertEdge(e)

	s.logger.Debug("mutate", "op", d.Op.String(), "id", string(e.ID()))
	return d, nil
}

// DeleteNode removes the node named by id, appending a delete Diff
// carrying the node's last-known state. Edges referencing id are left
// untouched: a subsequent traversal through them silently skips the
// now-dangling endpoint (deletes never cascade).
func (s *Store) DeleteNode(id entity.NodeID) (diff.Diff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return diff.Diff{}, ErrClosed
	}

	n, _, ok := s.nodes.Peek(id)
	if !ok {
		return diff.Diff{}, fmt.Errorf("%w: node %s", ErrNotFound, id)
	}

	now := s.clock.Now()
	d := diff.Diff{ID: newID(), Op: diff.OpDeleteNode, Timestamp: now, Node: n}
	s.log.Append(d)
	s.nodes.Delete(id)
	s.index.OnDeleteNode(n)

	s.logger.Debug("mutate", "op", d.Op.String(), "id", string(id))
	return d, nil
}

// DeleteEdge removes the edge named by id, appending a delete Diff
// carrying the edge's last-known state.
func (s *Store) DeleteEdge(id entity.EdgeID) (diff.Diff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return diff.Diff{}, ErrClosed
	}

	e, _, ok := s.edges.Peek(id)
	if !ok {
		return diff.Diff{}, fmt.Errorf("%w: edge %s", ErrNotFound, id)
	}

	now := s.clock.Now()
	d := diff.Diff{ID: newID(), Op: diff.OpDeleteEdge, Timestamp: now, Edge: e}
	s.log.Append(d)
	s.edges.Delete(id)
	s.index.OnDeleteEdge(e)

	s.logger.Debug("mutate", "op", d.Op.String(), "id", string(id))
	return d, nil
}

// checkCancelled returns ErrCancelled if ctx is already done. It is the
// only permitted suspension/abort point before a query acquires the
// lock; once the lock is held, cancellation is ignored until the
// operation completes.
func checkCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ErrCancelled
	default:
		return nil
	}
}

// DiffHistory returns every Diff recorded so far, oldest first.
func (s *Store) DiffHistory() []diff.Diff {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.All()
}

// CountNodes returns the number of live nodes, or the number resident
// in a specific tier if t is non-nil.
func (s *Store) CountNodes(t *tier.Tier) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	if t == nil {
		return s.nodes.Total(), nil
	}
	return s.nodes.Count(*t), nil
}

// CountEdges returns the number of live edges, or the number resident in
// a specific tier if t is non-nil.
func (s *Store) CountEdges(t *tier.Tier) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	if t == nil {
		return s.edges.Total(), nil
	}
	return s.edges.Count(*t), nil
}

// Prune demotes entities exceeding runtimeLimit/warmLimit one tier
// colder, by ascending (access_count, last_accessed, id). It returns
// the number of entities moved, across both nodes and edges.
func (s *Store) Prune(runtimeLimit, warmLimit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	nodeLess := func(a, b entity.NodeID) bool { return a < b }
	edgeLess := func(a, b entity.EdgeID) bool { return a < b }

	moved := s.nodes.Prune(runtimeLimit, warmLimit, nodeLess)
	moved += s.edges.Prune(runtimeLimit, warmLimit, edgeLess)

	s.logger.Debug("prune", "runtime_limit", runtimeLimit, "warm_limit", warmLimit, "moved", moved)
	return moved, nil
}

// PruneDefault runs Prune using the Store's own configured
// RuntimeLimit/WarmLimit (config.Config, set via WithConfig or
// DefaultConfig). It is the limit-free counterpart collaborators call
// when they don't want to track the configured values themselves.
func (s *Store) PruneDefault() (int, error) {
	s.mu.RLock()
	runtimeLimit, warmLimit := s.cfg.RuntimeLimit, s.cfg.WarmLimit
	s.mu.RUnlock()
	return s.Prune(runtimeLimit, warmLimit)
}

// Config returns a copy of the Store's tuning parameters (tier limits
// and the suggested auto-prune interval). The facade itself never
// schedules a goroutine against AutoPruneInterval — per the no-
// internal-parallelism concurrency model, a collaborator reads this
// value and drives its own scheduler, calling PruneDefault or Prune on
// that cadence.
func (s *Store) Config() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// resetLocked discards all nodes, edges, indexes, and log entries.
// Caller must hold s.mu. Used by Import, which replaces state wholesale.
func (s *Store) resetLocked() {
	s.log = diff.NewLog()
	s.nodes = tier.NewStore[entity.NodeID, *entity.Node]()
	s.edges = tier.NewStore[entity.EdgeID, *entity.Edge]()
	s.index = gindex.NewManager()
	s.planner = query.NewPlanner(s.nodes, s.edges, s.index)
}

// Close marks the store closed. It is idempotent: calling Close more
// than once is a no-op. Once closed, every operation that returns an
// error, other than Close itself, returns ErrClosed; DiffHistory and
// Config do not check the closed flag and keep returning the state held
// at close.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

package graphstore

import (
	"time"

	"github.com/orneryd/graphstore/pkg/diff"
)

// Rollback undoes the last steps successful mutations, applying each
// one's inverse in reverse order through the normal tier/index path and
// then truncating the log so the inverses themselves are never
// recorded (invariant I4). steps <= 0 is a no-op. Rolling back more
// steps than the log holds returns ErrOutOfHistory and leaves the store
// untouched.
func (s *Store) Rollback(steps int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if steps <= 0 {
		return nil
	}
	if steps > s.log.Len() {
		return ErrOutOfHistory
	}
	s.rollbackLocked(steps)
	s.logger.Debug("rollback", "steps", steps)
	return nil
}

// RollbackToTimestamp undoes every Diff with a timestamp strictly after
// t — equivalent to Rollback(k) where k is however many trailing Diffs
// satisfy that condition. A t older than the earliest recorded Diff
// returns ErrOutOfHistory.
func (s *Store) RollbackToTimestamp(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if s.log.Len() > 0 && t.Before(s.log.At(0).Timestamp) {
		return ErrOutOfHistory
	}

	steps := 0
	for i := s.log.Len() - 1; i >= 0; i-- {
		if s.log.At(i).Timestamp.After(t) {
			steps++
		} else {
			break
		}
	}
	if steps == 0 {
		return nil
	}
	s.rollbackLocked(steps)
	s.logger.Debug("rollback_to_timestamp", "steps", steps)
	return nil
}

// rollbackLocked applies the inverse of the last `steps` Diffs, most
// recent first, then truncates the log. Caller must hold s.mu.
func (s *Store) rollbackLocked(steps int) {
	entries := s.log.Tail(steps)
	for i := len(entries) - 1; i >= 0; i-- {
		s.applyInverse(entries[i])
	}
	s.log.Truncate(s.log.Len() - steps)
}

func (s *Store) applyInverse(d diff.Diff) {
	switch d.Op {
	case diff.OpInsertNode:
		s.nodes.Delete(d.Node.ID())
		s.index.OnDeleteNode(d.Node)
	case diff.OpDeleteNode:
		s.nodes.Put(d.Node.ID(), d.Node)
		s.index.OnInsertNode(d.Node)
	case diff.OpInsertEdge:
		s.edges.Delete(d.Edge.ID())
		s.index.OnDeleteEdge(d.Edge)
	case diff.OpDeleteEdge:
		s.edges.Put(d.Edge.ID(), d.Edge)
		s.index.OnInsertEdge(d.Edge)
	}
}

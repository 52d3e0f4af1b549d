package monitor

import (
	"sort"
	"sync"

	"github.com/gregtusar/spreadwatch/pkg/models"
)

// Store holds the latest spread snapshot per pair. The polling loop is the
// only writer; dashboard readers receive copies.
type Store struct {
	mu        sync.RWMutex
	snapshots map[models.TradingPair]models.SpreadSnapshot
}

func NewStore() *Store {
	return &Store{snapshots: make(map[models.TradingPair]models.SpreadSnapshot)}
}

func (s *Store) Put(snap models.SpreadSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.Pair] = snap
}

func (s *Store) Get(pair models.TradingPair) (models.SpreadSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[pair]
	return snap, ok
}

func (s *Store) Delete(pair models.TradingPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, pair)
}

// Snapshot returns a copy of the table, ordered by pair for stable output.
func (s *Store) Snapshot() []models.SpreadSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.SpreadSnapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pair < out[j].Pair })
	return out
}

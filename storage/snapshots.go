// Package storage persists collection snapshots with monotonically
// increasing revisions so downstream reporting can replay history.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/btree"
	"go.etcd.io/bbolt"

	"github.com/pzaremba/oswatch/types"
)

// Bucket names in bbolt
var (
	bucketSnapshots = []byte("snapshots")
	bucketMeta      = []byte("meta")
)

var keyCurrentRev = []byte("current_rev")

// Snapshot is one stored collection result for a resource kind.
// Absent fields persist as JSON nulls.
type Snapshot struct {
	Kind     types.Kind     `json:"kind"`
	Revision int64          `json:"revision"`
	TakenAt  time.Time      `json:"taken_at"`
	Records  []types.Record `json:"records"`
}

// KindState tracks one kind's presence in the store.
type KindState struct {
	Kind      types.Kind
	FirstRev  int64
	LastRev   int64
	Snapshots int
}

// SnapshotStore is a bbolt-backed snapshot store with an in-memory
// btree index of per-kind state.
type SnapshotStore struct {
	mu sync.RWMutex

	index *btree.BTreeG[*KindState]
	db    *bbolt.DB

	currentRev int64
	dir        string
}

// NewSnapshotStore opens (or creates) the store under dir.
func NewSnapshotStore(dir string) (*SnapshotStore, error) {
	dbPath := filepath.Join(dir, "oswatch.db")

	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{bucketSnapshots, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &SnapshotStore{
		index: btree.NewG[*KindState](32, func(a, b *KindState) bool {
			return a.Kind < b.Kind
		}),
		db:  db,
		dir: dir,
	}

	if err := store.load(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// load restores the revision counter and rebuilds the kind index from
// disk.
func (s *SnapshotStore) load() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		if raw := tx.Bucket(bucketMeta).Get(keyCurrentRev); raw != nil {
			if err := json.Unmarshal(raw, &s.currentRev); err != nil {
				return fmt.Errorf("failed to decode revision: %w", err)
			}
		}

		return tx.Bucket(bucketSnapshots).ForEach(func(k, v []byte) error {
			var snap Snapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				return fmt.Errorf("failed to decode snapshot %s: %w", k, err)
			}
			s.indexSnapshot(snap.Kind, snap.Revision)
			return nil
		})
	})
}

func (s *SnapshotStore) indexSnapshot(kind types.Kind, rev int64) {
	state, ok := s.index.Get(&KindState{Kind: kind})
	if !ok {
		state = &KindState{Kind: kind, FirstRev: rev}
	}
	if state.FirstRev == 0 || rev < state.FirstRev {
		state.FirstRev = rev
	}
	if rev > state.LastRev {
		state.LastRev = rev
	}
	state.Snapshots++
	s.index.ReplaceOrInsert(state)
}

// Save stores one collection result and returns its revision.
func (s *SnapshotStore) Save(kind types.Kind, records []types.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rev := s.currentRev + 1
	snap := Snapshot{
		Kind:     kind,
		Revision: rev,
		TakenAt:  time.Now().UTC(),
		Records:  records,
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return 0, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	revData, err := json.Marshal(rev)
	if err != nil {
		return 0, err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketSnapshots).Put(snapshotKey(kind, rev), data); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keyCurrentRev, revData)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to write snapshot: %w", err)
	}

	s.currentRev = rev
	s.indexSnapshot(kind, rev)
	return rev, nil
}

// Latest returns the newest snapshot for kind, or nil when the kind
// has never been collected.
func (s *SnapshotStore) Latest(kind types.Kind) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.index.Get(&KindState{Kind: kind})
	if !ok {
		return nil, nil
	}
	return s.readSnapshot(kind, state.LastRev)
}

// History returns up to limit snapshots for kind, newest first.
func (s *SnapshotStore) History(kind types.Kind, limit int) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snaps []Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketSnapshots).Cursor()
		prefix := []byte(string(kind) + "/")
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var snap Snapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				return fmt.Errorf("failed to decode snapshot %s: %w", k, err)
			}
			snaps = append(snaps, snap)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Keys sort oldest first; flip and trim.
	for i, j := 0, len(snaps)-1; i < j; i, j = i+1, j-1 {
		snaps[i], snaps[j] = snaps[j], snaps[i]
	}
	if limit > 0 && len(snaps) > limit {
		snaps = snaps[:limit]
	}
	return snaps, nil
}

// CurrentRevision returns the store's latest assigned revision.
func (s *SnapshotStore) CurrentRevision() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRev
}

// Stats lists per-kind index state in kind order.
func (s *SnapshotStore) Stats() []KindState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make([]KindState, 0, s.index.Len())
	s.index.Ascend(func(state *KindState) bool {
		stats = append(stats, *state)
		return true
	})
	return stats
}

// Close closes the underlying database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

func (s *SnapshotStore) readSnapshot(kind types.Kind, rev int64) (*Snapshot, error) {
	var snap Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketSnapshots).Get(snapshotKey(kind, rev))
		if raw == nil {
			return fmt.Errorf("snapshot %s@%d missing from disk", kind, rev)
		}
		return json.Unmarshal(raw, &snap)
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// snapshotKey orders snapshots by kind then revision.
func snapshotKey(kind types.Kind, rev int64) []byte {
	return []byte(fmt.Sprintf("%s/%016d", kind, rev))
}

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pzaremba/oswatch/types"
)

func newTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	store, err := NewSnapshotStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAssignsIncreasingRevisions(t *testing.T) {
	store := newTestStore(t)

	rev1, err := store.Save(types.KindVM, []types.Record{{"id": "i-1"}})
	require.NoError(t, err)
	rev2, err := store.Save(types.KindVolume, []types.Record{{"id": "v-1"}})
	require.NoError(t, err)

	assert.Equal(t, int64(1), rev1)
	assert.Equal(t, int64(2), rev2)
	assert.Equal(t, int64(2), store.CurrentRevision())
}

func TestLatestRoundTrip(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(types.KindVM, []types.Record{{"id": "i-1", "status": "ACTIVE"}})
	require.NoError(t, err)
	_, err = store.Save(types.KindVM, []types.Record{{"id": "i-2", "status": "SHUTOFF"}})
	require.NoError(t, err)

	snap, err := store.Latest(types.KindVM)
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.Equal(t, types.KindVM, snap.Kind)
	assert.Equal(t, int64(2), snap.Revision)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, "i-2", snap.Records[0]["id"])
	assert.False(t, snap.TakenAt.IsZero())
}

func TestLatestUnknownKind(t *testing.T) {
	store := newTestStore(t)

	snap, err := store.Latest(types.KindImage)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestHistoryNewestFirst(t *testing.T) {
	store := newTestStore(t)

	for _, id := range []string{"i-1", "i-2", "i-3"} {
		_, err := store.Save(types.KindVM, []types.Record{{"id": id}})
		require.NoError(t, err)
	}
	_, err := store.Save(types.KindVolume, []types.Record{{"id": "v-1"}})
	require.NoError(t, err)

	snaps, err := store.History(types.KindVM, 2)
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	assert.Equal(t, "i-3", snaps[0].Records[0]["id"])
	assert.Equal(t, "i-2", snaps[1].Records[0]["id"])
}

func TestReopenRestoresState(t *testing.T) {
	dir := t.TempDir()

	store, err := NewSnapshotStore(dir)
	require.NoError(t, err)
	_, err = store.Save(types.KindTenant, []types.Record{{"id": "t-1", "enabled_flag": true}})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewSnapshotStore(dir)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	assert.Equal(t, int64(1), reopened.CurrentRevision())
	snap, err := reopened.Latest(types.KindTenant)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, true, snap.Records[0]["enabled_flag"])

	stats := reopened.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, types.KindTenant, stats[0].Kind)
	assert.Equal(t, 1, stats[0].Snapshots)
}

func TestAbsentFieldsPersistAsNull(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(types.KindVM, []types.Record{{"id": "i-1", "tenant_id": types.Absent}})
	require.NoError(t, err)

	snap, err := store.Latest(types.KindVM)
	require.NoError(t, err)
	require.NotNil(t, snap)

	v, ok := snap.Records[0]["tenant_id"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

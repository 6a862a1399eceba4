package journal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenMigratesIdempotently(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Re-opening an existing journal must not fail on migration.
	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
}

func TestAppendAndReadEvents(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.AppendEvents(nil), "empty batch is a no-op")

	batch := []Event{
		{Tick: 1, Category: "stream", Description: "chunk (0,0) loaded"},
		{Tick: 2, Category: "terrain", Description: "cell (3,4) became Swamp"},
		{Tick: 3, Category: "stream", Description: "chunk (0,0) unloaded"},
	}
	require.NoError(t, db.AppendEvents(batch))

	events, err := db.RecentEvents(2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(3), events[0].Tick, "newest first")
	assert.Equal(t, "stream", events[0].Category)
	assert.Equal(t, uint64(2), events[1].Tick)
}

func TestAppendAndReadPathRecords(t *testing.T) {
	db := openTestDB(t)

	records := []PathRecord{
		{RequestID: 1, Tick: 10, StartQ: 0, StartR: 0, GoalQ: 5, GoalR: 5, Steps: 11, Outcome: "done"},
		{RequestID: 2, Tick: 11, StartQ: 2, StartR: 2, GoalQ: 40, GoalR: 40, Steps: 0, Outcome: "failed"},
	}
	require.NoError(t, db.AppendPathRecords(records))

	got, err := db.PathRecords(10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].RequestID, "newest first")
	assert.Equal(t, "failed", got[0].Outcome)
	assert.Equal(t, int64(1), got[1].RequestID)
	assert.Equal(t, 11, got[1].Steps)
}

func TestMetaRoundTrip(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveMeta("seed", "42"))
	require.NoError(t, db.SaveMeta("seed", "43"), "overwrite")

	v, err := db.GetMeta("seed")
	require.NoError(t, err)
	assert.Equal(t, "43", v)

	_, err = db.GetMeta("missing")
	assert.Error(t, err)
}

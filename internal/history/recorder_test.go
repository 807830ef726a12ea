package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rclarkson/dropwatch/internal/feed"
)

func openTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	r, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func snap(drops ...feed.Drop) feed.Snapshot {
	s := feed.Snapshot{Drops: make(map[string]feed.Drop, len(drops))}
	for _, d := range drops {
		s.OrderedIDs = append(s.OrderedIDs, d.OID)
		s.Drops[d.OID] = d
	}
	return s
}

func TestRecordOnlyWritesChangedStatuses(t *testing.T) {
	r := openTestRecorder(t)

	require.NoError(t, r.Record("s1", snap(
		feed.Drop{OID: "A", Status: "running"},
		feed.Drop{OID: "B", Status: "pending"},
	)))
	// Same statuses again: nothing new to record.
	require.NoError(t, r.Record("s1", snap(
		feed.Drop{OID: "A", Status: "running"},
		feed.Drop{OID: "B", Status: "pending"},
	)))
	require.NoError(t, r.Record("s1", snap(
		feed.Drop{OID: "A", Status: "completed"},
		feed.Drop{OID: "B", Status: "pending"},
	)))

	got, err := r.Transitions("s1", 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, tr := range got {
		assert.Equal(t, "s1", tr.Session)
	}
}

func TestTransitionsNewestFirst(t *testing.T) {
	r := openTestRecorder(t)
	base := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	clock := base
	r.now = func() time.Time { return clock }

	require.NoError(t, r.Record("s1", snap(feed.Drop{OID: "A", Status: "running"})))
	clock = base.Add(time.Second)
	require.NoError(t, r.Record("s1", snap(feed.Drop{OID: "A", Status: "completed"})))

	got, err := r.Transitions("s1", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "completed", got[0].Status)
	assert.Equal(t, "running", got[1].Status)
	assert.True(t, got[0].At.After(got[1].At))
}

func TestTransitionsLimitAndSessionScope(t *testing.T) {
	r := openTestRecorder(t)

	require.NoError(t, r.Record("s1", snap(feed.Drop{OID: "A", Status: "running"})))
	require.NoError(t, r.Record("s2", snap(feed.Drop{OID: "B", Status: "pending"})))
	require.NoError(t, r.Record("s1", snap(feed.Drop{OID: "A", Status: "completed"})))

	got, err := r.Transitions("s1", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].OID)
	assert.Equal(t, "completed", got[0].Status)

	other, err := r.Transitions("s2", 0)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "B", other[0].OID)
}

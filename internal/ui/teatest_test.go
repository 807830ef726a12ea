package ui

import (
	"bytes"
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/require"

	"github.com/rclarkson/dropwatch/internal/feed"
)

// pushSource delivers canned snapshots through the monitor callback.
type pushSource struct {
	onSnap feed.SnapshotFunc
	snaps  []feed.Snapshot
}

func (s *pushSource) Start(ctx context.Context) error {
	go func() {
		for _, snap := range s.snaps {
			s.onSnap(snap)
		}
	}()
	return nil
}

func (s *pushSource) Stop() {}

func TestMonitorProgramSmoke(t *testing.T) {
	snap := listSnapshot(
		feed.Drop{OID: "ingest", Status: "running"},
		feed.Drop{OID: "reduce", Status: "pending"},
	)
	m, err := NewMonitor(Options{
		SessionID: "smoke",
		Mode:      ModeList,
		MakeSource: func(onSnap feed.SnapshotFunc) (feed.Source, error) {
			return &pushSource{onSnap: onSnap, snaps: []feed.Snapshot{snap}}, nil
		},
	})
	require.NoError(t, err)

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("ingest")) && bytes.Contains(out, []byte("reduce"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))
}

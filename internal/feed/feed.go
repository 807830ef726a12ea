package feed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrNoSession is returned when a feed is created without a session id.
// The monitor must render nothing rather than poll with an empty id.
var ErrNoSession = errors.New("feed: empty session id")

// SnapshotFunc receives each successfully composed snapshot, in fetch order.
type SnapshotFunc func(Snapshot)

// Source is anything that delivers session snapshots until stopped: the
// polling Feed or the websocket Stream.
type Source interface {
	Start(ctx context.Context) error
	Stop()
}

// Feed polls a session's statuses at a fixed cadence and delivers composed
// snapshots through a callback. Only one fetch is ever in flight: the next
// wait begins after the current fetch settles, so a slow manager cannot pile
// up requests. Fetch failures are logged and the loop keeps its cadence.
type Feed struct {
	client    *Client
	sessionID string
	rootOID   string
	interval  time.Duration
	onSnap    SnapshotFunc
	logger    *log.Logger

	// Cached graph spec, refreshed when a status response names an oid the
	// cache does not know about.
	specs map[string]DropSpec

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// New creates a polling Feed. sessionID must be non-empty and interval
// positive; rootOID optionally scopes snapshots to one drop's subtree.
func New(client *Client, sessionID, rootOID string, interval time.Duration, onSnapshot SnapshotFunc, logger *log.Logger) (*Feed, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}
	if interval <= 0 {
		return nil, fmt.Errorf("feed: interval must be positive, got %v", interval)
	}
	if onSnapshot == nil {
		return nil, fmt.Errorf("feed: nil snapshot callback")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Feed{
		client:    client,
		sessionID: sessionID,
		rootOID:   rootOID,
		interval:  interval,
		onSnap:    onSnapshot,
		logger:    logger,
	}, nil
}

// Start launches the poll loop. It returns immediately; snapshots arrive on
// the callback from the feed's own goroutine.
func (f *Feed) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started {
		return fmt.Errorf("feed: already started")
	}
	f.started = true

	ctx, f.cancel = context.WithCancel(ctx)
	f.done = make(chan struct{})
	go f.run(ctx)
	return nil
}

// Stop cancels the poll loop and waits for it to exit. Safe to call with a
// fetch in flight; the in-flight result is discarded. Safe to call twice.
func (f *Feed) Stop() {
	f.mu.Lock()
	cancel, done := f.cancel, f.done
	f.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (f *Feed) run(ctx context.Context) {
	defer close(f.done)

	// One token per interval, burst 1: the first poll fires immediately and
	// each subsequent wait only begins after the previous fetch settled.
	limiter := rate.NewLimiter(rate.Every(f.interval), 1)

	if f.prime(ctx) {
		// The prime already delivered a snapshot; it counts as the first tick.
		_ = limiter.Allow()
	}

	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		snap, err := f.poll(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			f.logger.Printf("feed: poll session %s: %v", f.sessionID, err)
			continue
		}
		f.onSnap(snap)
	}
}

// prime fetches the graph spec and the first status batch concurrently so
// the first snapshot already carries edges. Failures are tolerated: the poll
// loop retries statuses each tick and the spec refreshes lazily. Returns
// true if a snapshot was delivered.
func (f *Feed) prime(ctx context.Context) bool {
	var (
		specs    map[string]DropSpec
		statuses []DropStatus
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		specs, err = f.client.GraphSpec(gctx, f.sessionID)
		return err
	})
	g.Go(func() error {
		var err error
		statuses, err = f.client.GraphStatus(gctx, f.sessionID, f.rootOID)
		return err
	})
	err := g.Wait()
	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		f.logger.Printf("feed: prime session %s: %v", f.sessionID, err)
	}
	if specs != nil {
		f.specs = specs
	}
	if statuses == nil {
		return false
	}
	f.onSnap(composeSnapshot(statuses, f.specs))
	return true
}

func (f *Feed) poll(ctx context.Context) (Snapshot, error) {
	statuses, err := f.client.GraphStatus(ctx, f.sessionID, f.rootOID)
	if err != nil {
		return Snapshot{}, err
	}
	if f.staleSpec(statuses) {
		specs, err := f.client.GraphSpec(ctx, f.sessionID)
		if err != nil {
			// Not fatal: the snapshot still goes out, new drops just have
			// no edges until a later refresh succeeds.
			f.logger.Printf("feed: refresh graph spec for session %s: %v", f.sessionID, err)
		} else {
			f.specs = specs
		}
	}
	return composeSnapshot(statuses, f.specs), nil
}

// staleSpec reports whether a status response names a drop the cached spec
// does not know about.
func (f *Feed) staleSpec(statuses []DropStatus) bool {
	if f.specs == nil {
		return len(statuses) > 0
	}
	for _, st := range statuses {
		if _, ok := f.specs[st.OID]; !ok {
			return true
		}
	}
	return false
}

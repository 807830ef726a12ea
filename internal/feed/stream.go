package feed

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// streamEvent is one push from the manager's session event socket: the
// current graph spec plus the ordered status list, enough to compose a full
// snapshot. The manager sends one event per state change.
type streamEvent struct {
	Graph  []DropSpec   `json:"graph"`
	Status []DropStatus `json:"status"`
}

// Stream is the push alternative to the polling Feed: it subscribes to the
// manager's session event socket and delivers the same snapshots through the
// same callback. Callers fall back to polling when the dial fails.
type Stream struct {
	baseURL   string
	sessionID string
	rootOID   string
	onSnap    SnapshotFunc
	logger    *log.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	cancel  context.CancelFunc
	done    chan struct{}
	started bool

	specs map[string]DropSpec
}

// NewStream creates a Stream for one session. sessionID must be non-empty.
func NewStream(baseURL, sessionID, rootOID string, onSnapshot SnapshotFunc, logger *log.Logger) (*Stream, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}
	if onSnapshot == nil {
		return nil, fmt.Errorf("stream: nil snapshot callback")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Stream{
		baseURL:   strings.TrimRight(baseURL, "/"),
		sessionID: sessionID,
		rootOID:   rootOID,
		onSnap:    onSnapshot,
		logger:    logger,
	}, nil
}

// wsURL converts the manager base URL to the session event socket URL.
func (s *Stream) wsURL() (string, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("stream: parse base url %q: %w", s.baseURL, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("stream: unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/sessions/" + url.PathEscape(s.sessionID) + "/events"
	if s.rootOID != "" {
		q := u.Query()
		q.Set("root", s.rootOID)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Start dials the event socket and launches the read loop. The dial happens
// synchronously so callers can fall back to polling on failure.
func (s *Stream) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("stream: already started")
	}

	target, err := s.wsURL()
	if err != nil {
		return err
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("stream: dial %s: %w (status %s)", target, err, resp.Status)
		}
		return fmt.Errorf("stream: dial %s: %w", target, err)
	}

	s.started = true
	s.conn = conn
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.readLoop(ctx, conn)
	return nil
}

// Stop closes the socket and waits for the read loop to exit. Events already
// received but not yet dispatched are discarded. Safe to call twice.
func (s *Stream) Stop() {
	s.mu.Lock()
	cancel, conn, done := s.cancel, s.conn, s.done
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	_ = conn.Close()
	<-done
}

func (s *Stream) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer close(s.done)
	defer conn.Close()

	for {
		var ev streamEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Printf("stream: session %s: %v", s.sessionID, err)
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		if ev.Graph != nil {
			specs := make(map[string]DropSpec, len(ev.Graph))
			for _, spec := range ev.Graph {
				if spec.OID != "" {
					specs[spec.OID] = spec
				}
			}
			s.specs = specs
		}
		if ev.Status == nil {
			continue
		}
		s.onSnap(composeSnapshot(ev.Status, s.specs))
	}
}

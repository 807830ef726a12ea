package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGraphStatusPreservesOrderAndDecodesStateCodes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/s1/graph/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"oid":"B","status":2},{"oid":"A","status":"running"},{"oid":"C","status":3}]`))
	}))
	defer ts.Close()

	statuses, err := NewClient(ts.URL).GraphStatus(context.Background(), "s1", "")
	if err != nil {
		t.Fatalf("GraphStatus: %v", err)
	}
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if statuses[0].OID != "B" || statuses[1].OID != "A" || statuses[2].OID != "C" {
		t.Fatalf("order not preserved: %+v", statuses)
	}
	if statuses[0].Status != "completed" {
		t.Errorf("state code 2 should decode to completed, got %q", statuses[0].Status)
	}
	if statuses[1].Status != "running" {
		t.Errorf("string status should pass through, got %q", statuses[1].Status)
	}
	if statuses[2].Status != "error" {
		t.Errorf("state code 3 should decode to error, got %q", statuses[2].Status)
	}
}

func TestGraphStatusScopesToRoot(t *testing.T) {
	var gotRoot string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRoot = r.URL.Query().Get("root")
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	if _, err := NewClient(ts.URL).GraphStatus(context.Background(), "s1", "drop_7"); err != nil {
		t.Fatalf("GraphStatus: %v", err)
	}
	if gotRoot != "drop_7" {
		t.Errorf("expected root=drop_7, got %q", gotRoot)
	}
}

func TestGraphSpecKeysByOID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/s1/graph" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[
			{"oid":"A","consumers":["C"]},
			{"oid":"B","uid":"u-b"},
			{"oid":"C","producer":"B","outputs":["D"]},
			{"oid":"D"}
		]`))
	}))
	defer ts.Close()

	specs, err := NewClient(ts.URL).GraphSpec(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GraphSpec: %v", err)
	}
	if len(specs) != 4 {
		t.Fatalf("expected 4 specs, got %d", len(specs))
	}
	if specs["B"].UID != "u-b" {
		t.Errorf("expected uid u-b on B, got %q", specs["B"].UID)
	}
	c := specs["C"]
	up, down := upstreamOf(c), downstreamOf(c)
	if len(up) != 1 || up[0] != "B" {
		t.Errorf("expected upstream [B] for C, got %v", up)
	}
	if len(down) != 1 || down[0] != "D" {
		t.Errorf("expected downstream [D] for C, got %v", down)
	}
}

func TestClientReportsServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such session", http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).GraphStatus(context.Background(), "nope", "")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestSessions(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Client-ID") == "" {
			t.Error("expected X-Client-ID header")
		}
		w.Write([]byte(`[{"sessionId":"s1","status":"RUNNING","size":12}]`))
	}))
	defer ts.Close()

	sessions, err := NewClient(ts.URL).Sessions(context.Background())
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].SessionID != "s1" || sessions[0].Size != 12 {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}
}

func TestComposeSnapshotSkipsDuplicatesAndEmptyIDs(t *testing.T) {
	statuses := []DropStatus{
		{OID: "A", Status: "running"},
		{OID: "", Status: "running"},
		{OID: "A", Status: "completed"},
		{OID: "B", Status: "pending"},
	}
	snap := composeSnapshot(statuses, nil)
	if len(snap.OrderedIDs) != 2 {
		t.Fatalf("expected 2 ids, got %v", snap.OrderedIDs)
	}
	if snap.Drops["A"].Status != "running" {
		t.Errorf("first occurrence should win, got %q", snap.Drops["A"].Status)
	}
}

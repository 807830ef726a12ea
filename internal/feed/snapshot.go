package feed

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Drop state names for the numeric states reported by older managers.
// Indexes match the manager's DROPStates enumeration.
var dropStateNames = []string{
	"initialized",
	"writing",
	"completed",
	"error",
	"expired",
	"deleted",
	"cancelled",
}

// StatusLabel is a drop status as reported by the manager. Managers send
// either a plain string or a numeric state code; numeric codes are decoded
// to their readable names.
type StatusLabel string

func (s *StatusLabel) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = StatusLabel(str)
		return nil
	}
	var code int
	if err := json.Unmarshal(data, &code); err != nil {
		return fmt.Errorf("status is neither string nor state code: %w", err)
	}
	if code >= 0 && code < len(dropStateNames) {
		*s = StatusLabel(dropStateNames[code])
		return nil
	}
	*s = StatusLabel(strconv.Itoa(code))
	return nil
}

// DropSpec is one entry of a session's physical graph as served by the
// manager. Relation keys mirror the manager's graph format: plural and
// singular forms are both accepted.
type DropSpec struct {
	OID       string      `json:"oid"`
	UID       string      `json:"uid,omitempty"`
	Status    StatusLabel `json:"status,omitempty"`
	Outputs   []string    `json:"outputs,omitempty"`
	Inputs    []string    `json:"inputs,omitempty"`
	Producers []string    `json:"producers,omitempty"`
	Consumers []string    `json:"consumers,omitempty"`
	Producer  string      `json:"producer,omitempty"`
	Consumer  string      `json:"consumer,omitempty"`
}

// DropStatus is one entry of the manager's status response. The response is
// an ordered array; array order defines snapshot order.
type DropStatus struct {
	OID    string      `json:"oid"`
	Status StatusLabel `json:"status"`
}

// SessionInfo describes one session known to the manager.
type SessionInfo struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
	Size      int    `json:"size"`
}

// Drop is the monitor-side view of one execution unit: identity, current
// status, and its producer/consumer relations normalized to directed edges.
type Drop struct {
	OID    string
	UID    string
	Status string

	// Upstream lists drops that feed this one, Downstream the drops this
	// one feeds. Both derived from the spec's declared relations.
	Upstream   []string
	Downstream []string
}

// Snapshot is one full point-in-time read of a session: the ordered drop id
// sequence plus per-drop state. Snapshots are replaced, never mutated.
type Snapshot struct {
	OrderedIDs []string
	Drops      map[string]Drop
}

// upstreamOf returns the declared upstream relations of a spec entry.
func upstreamOf(spec DropSpec) []string {
	up := make([]string, 0, len(spec.Inputs)+len(spec.Producers)+1)
	up = append(up, spec.Inputs...)
	up = append(up, spec.Producers...)
	if spec.Producer != "" {
		up = append(up, spec.Producer)
	}
	return up
}

// downstreamOf returns the declared downstream relations of a spec entry.
func downstreamOf(spec DropSpec) []string {
	down := make([]string, 0, len(spec.Outputs)+len(spec.Consumers)+1)
	down = append(down, spec.Outputs...)
	down = append(down, spec.Consumers...)
	if spec.Consumer != "" {
		down = append(down, spec.Consumer)
	}
	return down
}

// composeSnapshot joins an ordered status response with the cached graph
// spec. Drops without a spec entry still appear in the snapshot; they simply
// carry no relations until the spec refresh catches up.
func composeSnapshot(statuses []DropStatus, specs map[string]DropSpec) Snapshot {
	snap := Snapshot{
		OrderedIDs: make([]string, 0, len(statuses)),
		Drops:      make(map[string]Drop, len(statuses)),
	}
	for _, st := range statuses {
		if st.OID == "" {
			continue
		}
		if _, dup := snap.Drops[st.OID]; dup {
			continue
		}
		drop := Drop{OID: st.OID, Status: string(st.Status)}
		if spec, ok := specs[st.OID]; ok {
			drop.UID = spec.UID
			if drop.Status == "" {
				drop.Status = string(spec.Status)
			}
			drop.Upstream = upstreamOf(spec)
			drop.Downstream = downstreamOf(spec)
		}
		snap.OrderedIDs = append(snap.OrderedIDs, st.OID)
		snap.Drops[st.OID] = drop
	}
	return snap
}

package model

import (
	"encoding/json"
	"time"
)

// CheckpointID names a point in the orchestration pipeline where state is
// persisted.
type CheckpointID string

const (
	CheckpointStart          CheckpointID = "start"
	CheckpointPhase1Complete CheckpointID = "phase1_complete"
	CheckpointPhase2Complete CheckpointID = "phase2_complete"
	CheckpointPhase3Complete CheckpointID = "phase3_complete"
	CheckpointEnd            CheckpointID = "end"
)

// Checkpoint is a durable, thread-scoped state record. Payloads at or
// above InlinePayloadLimit (default 350KB serialized) are off-loaded to
// object storage; only StateRef is populated inline for those.
type Checkpoint struct {
	Thread       Thread         `json:"thread"`
	CheckpointID CheckpointID   `json:"checkpoint_id"`
	Timestamp    time.Time      `json:"timestamp"`
	Phase        string         `json:"phase"`
	AgentName    AgentName      `json:"agent_name,omitempty"`

	State    json.RawMessage `json:"state,omitempty"`
	StateRef string          `json:"state_ref,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty"`
	TTLEpoch int64             `json:"ttl_epoch"`
}

// IsOffloaded reports whether this checkpoint's payload lives in object
// storage rather than inline.
func (c *Checkpoint) IsOffloaded() bool {
	return c.StateRef != ""
}

// ObjectStoreKey is the documented path for an off-loaded checkpoint
// payload: checkpoints/{thread}/{checkpoint_id}.json
func (c *Checkpoint) ObjectStoreKey() string {
	return "checkpoints/" + c.Thread.String() + "/" + string(c.CheckpointID) + ".json"
}

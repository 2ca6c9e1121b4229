// Package checkpoint implements the Checkpoint Store:
// durable, thread-scoped, append-style state persistence with automatic
// large-payload off-loading and crash-recovery semantics. Two backends
// share this interface: an in-memory store for dev/test and a durable
// Postgres-backed store for production, selected via
// core.Config.CheckpointBackend ("memory" default, "postgres" to
// promote) -- resolving the "single flag, unspecified name" open
// backend choice as the CHECKPOINT_STORE_BACKEND environment variable.
package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/airline-ops/recovery-orchestrator/model"
)

// WriteStatus reports whether a Save landed durably or fell back to the
// in-memory shadow.
type WriteStatus string

const (
	StatusOK       WriteStatus = "ok"
	StatusDegraded WriteStatus = "degraded"
)

// InlinePayloadLimit is the serialized-size threshold at or above which
// a checkpoint's state is off-loaded to object storage (350KB).
const InlinePayloadLimit = 350 * 1024

// DefaultTTL is the default forward TTL stamped on new checkpoints
// (90 days).
const DefaultTTL = 90 * 24 * time.Hour

// Offloader persists large checkpoint payloads outside the keyed store.
type Offloader interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// Store is the uniform checkpoint persistence contract.
type Store interface {
	// Save serializes state, inlining it when below InlinePayloadLimit
	// and off-loading to the configured Offloader otherwise. It never
	// returns an error to the caller for a failed durable write: after
	// exhausting retries it records to an in-memory shadow and returns
	// StatusDegraded.
	Save(ctx context.Context, thread model.Thread, id model.CheckpointID, state interface{}, metadata map[string]string) (WriteStatus, error)

	// Load returns the most recent checkpoint for thread, or a specific
	// one when id is non-empty. Returns (nil, false, nil) when absent.
	Load(ctx context.Context, thread model.Thread, id model.CheckpointID) (*model.Checkpoint, bool, error)

	// List returns every checkpoint for thread, ascending by timestamp.
	List(ctx context.Context, thread model.Thread) ([]*model.Checkpoint, error)
}

// serialize marshals state to JSON, the shared encoding for both
// backends' inline and off-loaded payloads.
func serialize(state interface{}) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("serialize checkpoint state: %w", err)
	}
	return data, nil
}

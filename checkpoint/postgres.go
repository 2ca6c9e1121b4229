package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/airline-ops/recovery-orchestrator/core"
	"github.com/airline-ops/recovery-orchestrator/metrics"
	"github.com/airline-ops/recovery-orchestrator/model"
)

// PostgresStore is the durable production checkpoint backend. Rows are
// appended under (thread, checkpoint_id, timestamp) -- the Postgres
// analogue of the documented partition/sort key layout
// (THREAD#{thread} / CHECKPOINT#{checkpoint_id}#{iso_timestamp}) -- and
// a per-thread metadata row tracks the latest checkpoint id, its
// timestamp and a checkpoint count, with an optimistic version column
// for conditional updates. The metadata row has no status or error
// fields.
type PostgresStore struct {
	pool      *pgxpool.Pool
	offloader Offloader
	ttl       time.Duration
	logger    core.Logger
	shadow    *MemoryStore
	retry     *core.RetryConfig
	metrics   *metrics.Recorder
}

// NewPostgresStore wraps pool (migrated via the checkpoint/migrations
// goose scripts at startup) with offloader for large payloads.
func NewPostgresStore(pool *pgxpool.Pool, offloader Offloader, logger core.Logger) *PostgresStore {
	if logger == nil {
		logger = core.NoopLogger{}
	}
	return &PostgresStore{
		pool:      pool,
		offloader: offloader,
		ttl:       DefaultTTL,
		logger:    logger,
		shadow:    NewMemoryStore(),
		retry:     core.DefaultRetryConfig(),
	}
}

// WithMetrics attaches a recorder so degraded writes are observable;
// returns the receiver for chaining at construction time.
func (s *PostgresStore) WithMetrics(m *metrics.Recorder) *PostgresStore {
	s.metrics = m
	return s
}

func (s *PostgresStore) Save(ctx context.Context, thread model.Thread, id model.CheckpointID, state interface{}, metadata map[string]string) (WriteStatus, error) {
	payload, err := serialize(state)
	if err != nil {
		return StatusDegraded, err
	}

	cp := &model.Checkpoint{
		Thread:       thread,
		CheckpointID: id,
		Timestamp:    time.Now(),
		Metadata:     metadata,
		TTLEpoch:     time.Now().Add(s.ttl).Unix(),
	}

	if len(payload) >= InlinePayloadLimit {
		key := cp.ObjectStoreKey()
		if s.offloader == nil {
			return s.degrade(ctx, cp, payload, metadata, fmt.Errorf("payload %d bytes requires offload but no offloader configured", len(payload)))
		}
		if err := s.offloader.Put(ctx, key, payload); err != nil {
			return s.degrade(ctx, cp, payload, metadata, err)
		}
		cp.StateRef = key
	} else {
		cp.State = payload
	}

	writeErr := core.Retry(ctx, s.retry, func(attempt int) error {
		return s.insertRow(ctx, cp)
	})
	if writeErr != nil {
		return s.degrade(ctx, cp, payload, metadata, writeErr)
	}

	if err := s.upsertMetadataWithConflictRetry(ctx, thread, id, cp.Timestamp); err != nil {
		// Metadata is a convenience index; a failure here doesn't
		// invalidate the durable row that was just written.
		s.logger.Warn("checkpoint metadata update failed, row is durable regardless", map[string]interface{}{
			"thread": thread.String(), "checkpoint_id": id, "error": err.Error(),
		})
	}

	return StatusOK, nil
}

// degrade logs the durable-write failure and records the checkpoint to
// the in-memory shadow, returning StatusDegraded without raising to the
// caller: a durable-write failure never aborts the workflow.
func (s *PostgresStore) degrade(ctx context.Context, cp *model.Checkpoint, payload []byte, metadata map[string]string, cause error) (WriteStatus, error) {
	s.logger.Error("checkpoint durable write failed, falling back to in-memory shadow", map[string]interface{}{
		"thread": cp.Thread.String(), "checkpoint_id": cp.CheckpointID, "error": cause.Error(),
	})
	cp.State = payload
	cp.StateRef = ""
	_, _ = s.shadow.Save(ctx, cp.Thread, cp.CheckpointID, json.RawMessage(payload), metadata)
	s.metrics.CheckpointDegraded(ctx, string(cp.CheckpointID))
	return StatusDegraded, nil
}

func (s *PostgresStore) insertRow(ctx context.Context, cp *model.Checkpoint) error {
	metaJSON, err := json.Marshal(cp.Metadata)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO checkpoints (thread, checkpoint_id, ts, state, state_ref, metadata, ttl_epoch)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (thread, checkpoint_id, ts) DO NOTHING
	`, cp.Thread.String(), string(cp.CheckpointID), cp.Timestamp, cp.State, nullIfEmpty(cp.StateRef), metaJSON, cp.TTLEpoch)
	return err
}

// upsertMetadataWithConflictRetry maintains the per-thread METADATA
// index row with optimistic concurrency: a conditional UPDATE on the
// stored version, reload-merge-retry up to 3 times on conflict, per
// optimistic concurrency control.
func (s *PostgresStore) upsertMetadataWithConflictRetry(ctx context.Context, thread model.Thread, id model.CheckpointID, ts time.Time) error {
	const maxConflictRetries = 3
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		var version int
		err := s.pool.QueryRow(ctx, `
			SELECT version FROM checkpoint_thread_meta WHERE thread = $1
		`, thread.String()).Scan(&version)
		if err != nil {
			// No metadata row yet; create it. If a concurrent writer
			// created it first, go round again to the conditional update.
			insertTag, insertErr := s.pool.Exec(ctx, `
				INSERT INTO checkpoint_thread_meta (thread, last_checkpoint_id, last_ts, count, version)
				VALUES ($1, $2, $3, 1, 1)
				ON CONFLICT (thread) DO NOTHING
			`, thread.String(), string(id), ts)
			if insertErr != nil {
				return insertErr
			}
			if insertTag.RowsAffected() == 1 {
				return nil
			}
			continue
		}

		tag, updateErr := s.pool.Exec(ctx, `
			UPDATE checkpoint_thread_meta
			SET last_checkpoint_id = $1, last_ts = $2, count = count + 1, version = version + 1
			WHERE thread = $3 AND version = $4
		`, string(id), ts, thread.String(), version)
		if updateErr != nil {
			return updateErr
		}
		if tag.RowsAffected() == 1 {
			return nil
		}
		// Version changed underneath us: reload and retry.
	}
	return core.ErrConflict
}

func (s *PostgresStore) Load(ctx context.Context, thread model.Thread, id model.CheckpointID) (*model.Checkpoint, bool, error) {
	var row struct {
		checkpointID string
		ts           time.Time
		state        []byte
		stateRef     *string
		metadata     []byte
		ttlEpoch     int64
	}

	var err error
	if id == "" {
		err = s.pool.QueryRow(ctx, `
			SELECT checkpoint_id, ts, state, state_ref, metadata, ttl_epoch
			FROM checkpoints WHERE thread = $1 ORDER BY ts DESC LIMIT 1
		`, thread.String()).Scan(&row.checkpointID, &row.ts, &row.state, &row.stateRef, &row.metadata, &row.ttlEpoch)
	} else {
		err = s.pool.QueryRow(ctx, `
			SELECT checkpoint_id, ts, state, state_ref, metadata, ttl_epoch
			FROM checkpoints WHERE thread = $1 AND checkpoint_id = $2 ORDER BY ts DESC LIMIT 1
		`, thread.String(), string(id)).Scan(&row.checkpointID, &row.ts, &row.state, &row.stateRef, &row.metadata, &row.ttlEpoch)
	}
	if err != nil {
		return nil, false, nil
	}

	cp := &model.Checkpoint{
		Thread:       thread,
		CheckpointID: model.CheckpointID(row.checkpointID),
		Timestamp:    row.ts,
		State:        row.state,
		TTLEpoch:     row.ttlEpoch,
	}
	if row.stateRef != nil {
		cp.StateRef = *row.stateRef
		if s.offloader != nil {
			if data, getErr := s.offloader.Get(ctx, cp.StateRef); getErr == nil {
				cp.State = data
			}
		}
	}
	if len(row.metadata) > 0 {
		_ = json.Unmarshal(row.metadata, &cp.Metadata)
	}

	return cp, true, nil
}

func (s *PostgresStore) List(ctx context.Context, thread model.Thread) ([]*model.Checkpoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT checkpoint_id, ts, state, state_ref, metadata, ttl_epoch
		FROM checkpoints WHERE thread = $1 ORDER BY ts ASC
	`, thread.String())
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	var out []*model.Checkpoint
	for rows.Next() {
		var checkpointID string
		var ts time.Time
		var state []byte
		var stateRef *string
		var metadata []byte
		var ttlEpoch int64

		if err := rows.Scan(&checkpointID, &ts, &state, &stateRef, &metadata, &ttlEpoch); err != nil {
			return nil, err
		}
		cp := &model.Checkpoint{
			Thread:       thread,
			CheckpointID: model.CheckpointID(checkpointID),
			Timestamp:    ts,
			State:        state,
			TTLEpoch:     ttlEpoch,
		}
		if stateRef != nil {
			cp.StateRef = *stateRef
		}
		if len(metadata) > 0 {
			_ = json.Unmarshal(metadata, &cp.Metadata)
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

var _ Store = (*PostgresStore)(nil)

// Package dataaccess implements the Batched Data Accessor:
// bounded-batch reads against the operational key/value store, with
// retry of residual (unprocessed) keys and exponential backoff.
package dataaccess

import (
	"context"
	"math/rand"
	"time"

	"github.com/airline-ops/recovery-orchestrator/core"
	"github.com/airline-ops/recovery-orchestrator/metrics"
)

// Item is one resolved record from the operational store.
type Item struct {
	Key   string
	Value []byte
}

// Accessor is the uniform batched-read contract every analyzer uses.
type Accessor interface {
	// BatchGet reads keys from table in windows of at most batchSize (or
	// the accessor's configured default when batchSize<=0), retrying
	// residual keys up to the configured retry budget. It returns every
	// item resolved plus the keys that remained unresolved after retries
	// exhausted (never an error purely for residual keys).
	BatchGet(ctx context.Context, table string, keys []string, batchSize int) (items []Item, residual []string, err error)

	// Get is a single-item convenience wrapper, semantically a BatchGet
	// with one key, kept for back-compatibility with call sites that
	// only need one record.
	Get(ctx context.Context, table, key string) (Item, bool, error)
}

// Store is the minimal backing operation dataaccess needs from the
// operational key/value store: a batched multi-get that may return
// fewer items than requested (the remainder being "unprocessed").
type Store interface {
	MGet(ctx context.Context, table string, keys []string) (found map[string][]byte, unprocessed []string, err error)
}

const (
	DefaultBatchSize    = 100
	DefaultMaxRetries   = 3
	ResidualRetryBase   = 100 * time.Millisecond // base for 0.1 * 2^attempt seconds backoff
)

// BatchedAccessor implements Accessor over a Store, windowing requests
// at batchSize and retrying residual keys with exponential backoff.
type BatchedAccessor struct {
	store      Store
	batchSize  int
	maxRetries int
	logger     core.Logger
	metrics    *metrics.Recorder
}

// WithMetrics attaches a recorder so residual-retry rounds are
// observable; returns the receiver for chaining at construction time.
func (a *BatchedAccessor) WithMetrics(m *metrics.Recorder) *BatchedAccessor {
	a.metrics = m
	return a
}

// NewBatchedAccessor constructs an accessor with the given default batch
// size and retry budget (both fall back to the package defaults when <= 0).
func NewBatchedAccessor(store Store, batchSize, maxRetries int, logger core.Logger) *BatchedAccessor {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if logger == nil {
		logger = core.NoopLogger{}
	}
	return &BatchedAccessor{store: store, batchSize: batchSize, maxRetries: maxRetries, logger: logger}
}

// BatchGet splits keys into windows of at most batchSize (falling back
// to the accessor's default when batchSize<=0), submits each window,
// and retries any residual (unprocessed) keys up to maxRetries times
// with exponential backoff plus up to 25% jitter. Every key is attempted at least once;
// residual keys after the retry budget are reported, not failed.
func (a *BatchedAccessor) BatchGet(ctx context.Context, table string, keys []string, batchSize int) ([]Item, []string, error) {
	if batchSize <= 0 {
		batchSize = a.batchSize
	}

	var items []Item
	var allResidual []string

	for start := 0; start < len(keys); start += batchSize {
		end := start + batchSize
		if end > len(keys) {
			end = len(keys)
		}
		window := keys[start:end]

		found, residual, err := a.fetchWindowWithRetry(ctx, table, window)
		if err != nil {
			return items, allResidual, err
		}
		items = append(items, found...)
		allResidual = append(allResidual, residual...)
	}

	if len(allResidual) > 0 {
		a.logger.Warn("batch_get residual keys unresolved after retries", map[string]interface{}{
			"table": table, "residual_count": len(allResidual),
		})
	}

	return items, allResidual, nil
}

func (a *BatchedAccessor) fetchWindowWithRetry(ctx context.Context, table string, window []string) ([]Item, []string, error) {
	var items []Item
	pending := window

	for attempt := 0; attempt <= a.maxRetries && len(pending) > 0; attempt++ {
		if attempt > 0 {
			wait := core.BackoffDuration(ResidualRetryBase, attempt)
			wait += time.Duration(rand.Int63n(int64(wait)/4 + 1))
			select {
			case <-ctx.Done():
				return items, pending, ctx.Err()
			case <-time.After(wait):
			}
		}

		found, unprocessed, err := a.store.MGet(ctx, table, pending)
		if err != nil {
			return items, pending, err
		}
		for _, k := range pending {
			if v, ok := found[k]; ok {
				items = append(items, Item{Key: k, Value: v})
			}
		}
		pending = unprocessed
		if len(pending) > 0 {
			a.metrics.BatchResidual(ctx, attempt, len(pending))
		}
	}

	return items, pending, nil
}

// Get reads a single key, semantically a BatchGet with one key.
func (a *BatchedAccessor) Get(ctx context.Context, table, key string) (Item, bool, error) {
	items, _, err := a.BatchGet(ctx, table, []string{key}, 1)
	if err != nil {
		return Item{}, false, err
	}
	if len(items) == 0 {
		return Item{}, false, nil
	}
	return items[0], true, nil
}

var _ Accessor = (*BatchedAccessor)(nil)

package checkpoint

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/airline-ops/recovery-orchestrator/model"
)

// MemoryStore is an in-process Store for development and tests. It also
// serves as the in-memory shadow a durable store falls back to on write
// failure: each Save whose durable write fails is recorded here instead,
// while later Saves still try the durable store first.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[model.Thread][]*model.Checkpoint
	ttl  time.Duration
}

// NewMemoryStore builds an empty in-memory checkpoint store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[model.Thread][]*model.Checkpoint),
		ttl:  DefaultTTL,
	}
}

func (m *MemoryStore) Save(_ context.Context, thread model.Thread, id model.CheckpointID, state interface{}, metadata map[string]string) (WriteStatus, error) {
	payload, err := serialize(state)
	if err != nil {
		return StatusDegraded, err
	}

	cp := &model.Checkpoint{
		Thread:       thread,
		CheckpointID: id,
		Timestamp:    time.Now(),
		State:        payload,
		Metadata:     metadata,
		TTLEpoch:     time.Now().Add(m.ttl).Unix(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[thread] = append(m.data[thread], cp)
	return StatusOK, nil
}

func (m *MemoryStore) Load(_ context.Context, thread model.Thread, id model.CheckpointID) (*model.Checkpoint, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cps := m.data[thread]
	if len(cps) == 0 {
		return nil, false, nil
	}

	if id == "" {
		latest := cps[0]
		for _, cp := range cps[1:] {
			if cp.Timestamp.After(latest.Timestamp) {
				latest = cp
			}
		}
		return latest, true, nil
	}

	var match *model.Checkpoint
	for _, cp := range cps {
		if cp.CheckpointID == id {
			if match == nil || cp.Timestamp.After(match.Timestamp) {
				match = cp
			}
		}
	}
	if match == nil {
		return nil, false, nil
	}
	return match, true, nil
}

func (m *MemoryStore) List(_ context.Context, thread model.Thread) ([]*model.Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cps := append([]*model.Checkpoint{}, m.data[thread]...)
	sort.Slice(cps, func(i, j int) bool { return cps[i].Timestamp.Before(cps[j].Timestamp) })
	return cps, nil
}

var _ Store = (*MemoryStore)(nil)

package dataaccess

import "context"

// MemoryStore is an in-process Store for tests: it can simulate partial
// returns by listing keys that should come back unprocessed on the
// first N calls.
type MemoryStore struct {
	Data map[string]map[string][]byte

	// FlakyUnprocessed, if set, lists keys that are reported unprocessed
	// while the store has served no more than FlakyAttempts MGet calls in
	// total (every call counts, whether or not it includes the key).
	FlakyUnprocessed map[string]bool
	FlakyAttempts    int
	calls            int
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Data: make(map[string]map[string][]byte)}
}

// Set seeds table[key] = value.
func (m *MemoryStore) Set(table, key string, value []byte) {
	if m.Data[table] == nil {
		m.Data[table] = make(map[string][]byte)
	}
	m.Data[table][key] = value
}

func (m *MemoryStore) MGet(_ context.Context, table string, keys []string) (map[string][]byte, []string, error) {
	m.calls++
	found := make(map[string][]byte, len(keys))
	var unprocessed []string
	tbl := m.Data[table]
	for _, k := range keys {
		if m.FlakyUnprocessed[k] && m.calls <= m.FlakyAttempts {
			unprocessed = append(unprocessed, k)
			continue
		}
		if v, ok := tbl[k]; ok {
			found[k] = v
		} else {
			unprocessed = append(unprocessed, k)
		}
	}
	return found, unprocessed, nil
}

// Calls reports how many times MGet has been invoked (windows issued).
func (m *MemoryStore) Calls() int { return m.calls }

var _ Store = (*MemoryStore)(nil)

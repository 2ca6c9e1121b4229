package dataaccess

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchGet_SplitsWindows(t *testing.T) {
	store := NewMemoryStore()
	var keys []string
	for i := 0; i < 25; i++ {
		k := fmt.Sprintf("key-%d", i)
		keys = append(keys, k)
		store.Set("flights", k, []byte("v"))
	}

	acc := NewBatchedAccessor(store, 10, 3, nil)
	items, residual, err := acc.BatchGet(context.Background(), "flights", keys, 10)
	require.NoError(t, err)
	assert.Empty(t, residual)
	assert.Len(t, items, 25)

	expectedWindows := int(math.Ceil(25.0 / 10.0))
	assert.Equal(t, expectedWindows, store.Calls())
}

func TestBatchGet_RetriesResidualThenReports(t *testing.T) {
	store := NewMemoryStore()
	store.Set("flights", "a", []byte("1"))
	store.FlakyUnprocessed = map[string]bool{"b": true}
	store.FlakyAttempts = 100 // never resolves, to exercise residual reporting path

	acc := NewBatchedAccessor(store, 10, 2, nil)
	items, residual, err := acc.BatchGet(context.Background(), "flights", []string{"a", "b"}, 10)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, []string{"b"}, residual)
}

func TestBatchGet_RetrySucceedsEventually(t *testing.T) {
	store := NewMemoryStore()
	store.Set("flights", "a", []byte("1"))
	store.FlakyUnprocessed = map[string]bool{"a": true}
	store.FlakyAttempts = 1 // fails first call, succeeds on retry

	acc := NewBatchedAccessor(store, 10, 3, nil)
	items, residual, err := acc.BatchGet(context.Background(), "flights", []string{"a"}, 10)
	require.NoError(t, err)
	assert.Empty(t, residual)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].Key)
}

func TestGet_SingleKeyWrapper(t *testing.T) {
	store := NewMemoryStore()
	store.Set("flights", "a", []byte("1"))
	acc := NewBatchedAccessor(store, 10, 3, nil)

	item, ok, err := acc.Get(context.Background(), "flights", "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), item.Value)

	_, ok, err = acc.Get(context.Background(), "flights", "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

package checkpoint

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airline-ops/recovery-orchestrator/model"
)

func TestMemoryStore_SaveLoadList(t *testing.T) {
	s := NewMemoryStore()
	thread := model.NewThread()

	status, err := s.Save(context.Background(), thread, model.CheckpointStart, map[string]string{"prompt": "x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)

	status, err = s.Save(context.Background(), thread, model.CheckpointPhase1Complete, map[string]string{"phase": "initial"}, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)

	latest, ok, err := s.Load(context.Background(), thread, "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.CheckpointPhase1Complete, latest.CheckpointID)

	specific, ok, err := s.Load(context.Background(), thread, model.CheckpointStart)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.CheckpointStart, specific.CheckpointID)

	all, err := s.List(context.Background(), thread)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].Timestamp.Before(all[1].Timestamp) || all[0].Timestamp.Equal(all[1].Timestamp))
}

func TestMemoryStore_LoadMissing(t *testing.T) {
	s := NewMemoryStore()
	_, ok, err := s.Load(context.Background(), model.NewThread(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInlinePayloadLimit_Threshold(t *testing.T) {
	big := strings.Repeat("a", InlinePayloadLimit+1)
	assert.Greater(t, len(big), InlinePayloadLimit)
}

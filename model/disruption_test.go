package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDisruption_Sanitizes(t *testing.T) {
	d, err := NewDisruption("Flight EY123 delayed <script>{hack}</script>", "")
	require.NoError(t, err)
	assert.NotContains(t, d.Text, "<")
	assert.NotContains(t, d.Text, "{")
}

func TestNewDisruption_LengthBounds(t *testing.T) {
	_, err := NewDisruption("too short", "")
	assert.Error(t, err)

	_, err = NewDisruption(strings.Repeat("a", 10001), "")
	assert.Error(t, err)

	_, err = NewDisruption("Flight EY123 delayed 2 hours due to weather", "")
	assert.NoError(t, err)
}

func TestDecisionRecordObjectStoreKey(t *testing.T) {
	d := NewDecisionRecord("disr-1", "2026-07-29T10:00:00Z", nil, nil, 1, 2, "manual override")
	key, err := d.ObjectStoreKey()
	require.NoError(t, err)
	assert.Equal(t, "decisions/2026/07/29/disr-1.json", key)
	assert.True(t, d.HumanOverride)
}

package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatePatch_PresenceDecoding(t *testing.T) {
	var patch StatePatch

	require.NoError(t, json.Unmarshal([]byte(`{
		"blocked": true,
		"blockedReason": null,
		"entitlements": {
			"pro": {"status": "active"},
			"legacy": null
		}
	}`), &patch))

	assert.True(t, patch.Blocked.IsSet())
	assert.True(t, patch.Blocked.Value)

	assert.True(t, patch.BlockedReason.IsNull())
	assert.False(t, patch.BlockedReason.IsSet())

	// Keys not present in the payload stay absent.
	assert.False(t, patch.Blocked.IsNull())
	assert.False(t, patch.WillNotRenew.Present)
	assert.False(t, patch.Caps.Present)
	assert.False(t, patch.Billing.Present)

	entitlements, ok := patch.Entitlements.Get()
	require.True(t, ok)

	pro := entitlements["pro"]
	assert.True(t, pro.IsSet())

	status, ok := pro.Value.Status.Get()
	assert.True(t, ok)
	assert.Equal(t, "active", status)

	legacy := entitlements["legacy"]
	assert.True(t, legacy.IsNull())
}

func TestLooseTimestamp_Decoding(t *testing.T) {
	var patch StatePatch

	require.NoError(t, json.Unmarshal([]byte(`{
		"activeUntil": "2026-12-31",
		"blockedUntil": 1773577800000
	}`), &patch))

	require.True(t, patch.ActiveUntil.IsSet())
	require.NotNil(t, patch.ActiveUntil.Value.Time)
	assert.Equal(t, "2026-12-31T00:00:00Z", patch.ActiveUntil.Value.Time.Format("2006-01-02T15:04:05Z07:00"))

	require.True(t, patch.BlockedUntil.IsSet())
	require.NotNil(t, patch.BlockedUntil.Value.Time)
	assert.Equal(t, int64(1773577800000), patch.BlockedUntil.Value.Time.UnixMilli())
}

func TestLooseTimestamp_UnparseableClampsToNil(t *testing.T) {
	var patch StatePatch

	require.NoError(t, json.Unmarshal([]byte(`{"activeUntil": "whenever"}`), &patch))

	assert.True(t, patch.ActiveUntil.IsSet())
	assert.Nil(t, patch.ActiveUntil.Value.Time)
}

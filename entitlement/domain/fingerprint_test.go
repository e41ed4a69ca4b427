package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	activatedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	base := map[string]*EntitlementRecord{
		"pro": {
			Status:      StatusActive,
			ActivatedAt: timePtr(activatedAt),
		},
		"analytics": {
			Status: StatusInactive,
		},
	}

	t.Run("stable for identical maps", func(t *testing.T) {
		other := map[string]*EntitlementRecord{
			"analytics": {
				Status: StatusInactive,
			},
			"pro": {
				Status:      StatusActive,
				ActivatedAt: timePtr(activatedAt),
			},
		}

		assert.Equal(t, Fingerprint(base), Fingerprint(other))
	})

	t.Run("capability keys compare case-insensitively", func(t *testing.T) {
		other := map[string]*EntitlementRecord{
			"PRO": {
				Status:      StatusActive,
				ActivatedAt: timePtr(activatedAt),
			},
			"Analytics": {
				Status: StatusInactive,
			},
		}

		assert.Equal(t, Fingerprint(base), Fingerprint(other))
	})

	t.Run("note and ref are cosmetic", func(t *testing.T) {
		other := map[string]*EntitlementRecord{
			"pro": {
				Status:      StatusActive,
				ActivatedAt: timePtr(activatedAt),
				Note:        "added by support",
				Ref:         "ticket-123",
			},
			"analytics": {
				Status: StatusInactive,
			},
		}

		assert.Equal(t, Fingerprint(base), Fingerprint(other))
	})

	t.Run("status change alters fingerprint", func(t *testing.T) {
		other := map[string]*EntitlementRecord{
			"pro": {
				Status:      StatusCancelAtPeriodEnd,
				ActivatedAt: timePtr(activatedAt),
			},
			"analytics": {
				Status: StatusInactive,
			},
		}

		assert.NotEqual(t, Fingerprint(base), Fingerprint(other))
	})

	t.Run("timestamps compare at millisecond precision", func(t *testing.T) {
		other := map[string]*EntitlementRecord{
			"pro": {
				Status:      StatusActive,
				ActivatedAt: timePtr(activatedAt.Add(500 * time.Microsecond)),
			},
			"analytics": {
				Status: StatusInactive,
			},
		}

		assert.Equal(t, Fingerprint(base), Fingerprint(other))
	})

	t.Run("nil records are skipped", func(t *testing.T) {
		other := map[string]*EntitlementRecord{
			"pro": {
				Status:      StatusActive,
				ActivatedAt: timePtr(activatedAt),
			},
			"analytics": {
				Status: StatusInactive,
			},
			"ghost": nil,
		}

		assert.Equal(t, Fingerprint(base), Fingerprint(other))
	})
}

func TestSameCaps(t *testing.T) {
	assert.True(t, sameCaps([]string{"pro", "analytics"}, []string{"Analytics", "PRO"}))
	assert.False(t, sameCaps([]string{"pro"}, []string{"pro", "analytics"}))
	assert.False(t, sameCaps([]string{"pro", "pro"}, []string{"pro", "analytics"}))
	assert.True(t, sameCaps(nil, []string{}))
}

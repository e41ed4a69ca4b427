package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"
)

type fingerprintEntry struct {
	Cap               string `json:"cap"`
	Status            Status `json:"status"`
	ActivatedAt       *int64 `json:"activatedAt"`
	CancelRequestedAt *int64 `json:"cancelRequestedAt"`
	DeactivatedAt     *int64 `json:"deactivatedAt"`
}

// Fingerprint reduces the entitlement map to a stable digest so that the
// commit coordinator can tell a semantic change from a cosmetic rewrite.
// Capabilities are keyed case-insensitively and timestamps compared at
// millisecond precision; note and ref are deliberately excluded.
func Fingerprint(entitlements map[string]*EntitlementRecord) string {
	entries := make([]fingerprintEntry, 0, len(entitlements))

	for cap, record := range entitlements {
		if record == nil {
			continue
		}

		entries = append(entries, fingerprintEntry{
			Cap:               strings.ToLower(cap),
			Status:            record.Status,
			ActivatedAt:       epochMillisPtr(record.ActivatedAt),
			CancelRequestedAt: epochMillisPtr(record.CancelRequestedAt),
			DeactivatedAt:     epochMillisPtr(record.DeactivatedAt),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Cap < entries[j].Cap
	})

	payload, err := json.Marshal(entries)
	if err != nil {
		return ""
	}

	sum := sha256.Sum256(payload)

	return hex.EncodeToString(sum[:])
}

func epochMillisPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}

	ms := t.UnixMilli()

	return &ms
}

// sameTime compares two nullable instants at millisecond precision.
func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.UnixMilli() == b.UnixMilli()
}

// sameCaps compares two caps lists order-insensitively and
// case-insensitively.
func sameCaps(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	counts := make(map[string]int, len(a))
	for _, cap := range a {
		counts[strings.ToLower(cap)]++
	}

	for _, cap := range b {
		key := strings.ToLower(cap)

		counts[key]--
		if counts[key] < 0 {
			return false
		}
	}

	return true
}

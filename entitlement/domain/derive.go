package domain

import (
	"sort"
	"strings"
)

// DeriveCaps computes the caps list implied by the entitlement records: every
// capability whose status is active or cancel_at_period_end, sorted
// case-insensitively for a deterministic document shape.
func DeriveCaps(entitlements map[string]*EntitlementRecord) []string {
	caps := []string{}

	for cap, record := range entitlements {
		if record == nil {
			continue
		}

		switch record.Status {
		case StatusActive, StatusCancelAtPeriodEnd:
			caps = append(caps, cap)
		}
	}

	sort.Slice(caps, func(i, j int) bool {
		return strings.ToLower(caps[i]) < strings.ToLower(caps[j])
	})

	return caps
}

// shouldDeriveCaps decides whether caps are recomputed from entitlements.
// An explicit caps list always wins; otherwise derivation runs when asked
// for, or by default whenever entitlements were patched and syncing was not
// explicitly switched off.
func shouldDeriveCaps(patch *StatePatch) bool {
	if patch.Caps.IsSet() {
		return false
	}

	if v, ok := patch.SyncCapsFromEntitlements.Get(); ok {
		return v
	}

	return patch.Entitlements.IsSet()
}

package domain

import (
	"sort"
	"time"
)

// ApplyRequest is one patch submission addressed to a tenant.
type ApplyRequest struct {
	TenantID   string
	RequestID  string
	Patch      StatePatch
	Privileged bool
}

// CommitOutcome is the computed effect of a patch: the next state document,
// the events to append, and whether the commit is semantically different
// from the previous state.
type CommitOutcome struct {
	State   *TenantEntitlementState
	Events  []*EntitlementEvent
	Changed bool
}

// ApplyStatePatch computes the next tenant state from the previous one and a
// patch. It is a pure function: it never mutates prev and performs no I/O,
// which is what lets the commit coordinator retry it inside a transaction.
func ApplyStatePatch(prev *TenantEntitlementState, req *ApplyRequest, now time.Time) *CommitOutcome {
	if prev == nil {
		prev = NewTenantEntitlementState(req.TenantID)
	}

	next := prev.Clone()
	next.TenantID = req.TenantID

	patch := &req.Patch
	manualDates := req.Privileged && boolOf(patch.ManualDates)

	var events []*EntitlementEvent

	if entitlements, ok := patch.Entitlements.Get(); ok {
		if next.Entitlements == nil {
			next.Entitlements = map[string]*EntitlementRecord{}
		}

		// Sorted application keeps event order deterministic when a
		// single request patches several capabilities.
		caps := make([]string, 0, len(entitlements))
		for cap := range entitlements {
			caps = append(caps, cap)
		}

		sort.Strings(caps)

		for _, cap := range caps {
			outcome := applyCapabilityPatch(cap, next.Entitlements[cap], entitlements[cap], req.RequestID, now, manualDates)

			switch {
			case outcome.removed:
				delete(next.Entitlements, cap)
			case outcome.record != nil:
				next.Entitlements[cap] = outcome.record
			}

			if outcome.event != nil {
				events = append(events, outcome.event)
			}
		}
	}

	if caps, ok := patch.Caps.Get(); ok {
		next.Caps = NormalizeCaps(caps)
	} else if shouldDeriveCaps(patch) {
		next.Caps = DeriveCaps(next.Entitlements)
	}

	if billing, ok := patch.Billing.Get(); ok {
		if billing.PeriodStart.Present {
			next.Billing.PeriodStart = timeOf(billing.PeriodStart)
		}

		if billing.PeriodEnd.Present {
			next.Billing.PeriodEnd = timeOf(billing.PeriodEnd)
		}
	} else if patch.Billing.IsNull() {
		next.Billing = Billing{}
	}

	// billing.periodEnd is authoritative; the legacy activeUntil field only
	// applies when the patch does not set the period end itself.
	billingPatch, billingSet := patch.Billing.Get()
	periodEndPatched := billingSet && billingPatch.PeriodEnd.Present

	if patch.ActiveUntil.Present && !periodEndPatched && !patch.Billing.IsNull() {
		next.Billing.PeriodEnd = timeOf(patch.ActiveUntil)
	}

	next.ActiveUntil = cloneTime(next.Billing.PeriodEnd)

	if v, ok := patch.WillNotRenew.Get(); ok {
		next.WillNotRenew = v
	} else if patch.WillNotRenew.IsNull() {
		next.WillNotRenew = false
	}

	if v, ok := patch.Blocked.Get(); ok {
		next.Blocked = v
	} else if patch.Blocked.IsNull() {
		next.Blocked = false
	}

	if patch.BlockedUntil.Present {
		next.BlockedUntil = timeOf(patch.BlockedUntil)
	}

	if v, ok := patch.BlockedReason.Get(); ok {
		next.BlockedReason = v
	} else if patch.BlockedReason.IsNull() {
		next.BlockedReason = ""
	}

	changed := stateChanged(prev, next)

	switch {
	case patch.Rev.IsSet():
		// An explicit rev overrides the bump heuristic but the revision
		// itself never moves backwards.
		next.Rev = maxInt64(prev.Rev, patch.Rev.Value)
	case changed || boolOf(patch.BumpRev):
		next.Rev = prev.Rev + 1
	default:
		next.Rev = prev.Rev
	}

	if changed || next.Rev != prev.Rev {
		next.UpdatedAt = now.UTC()
	}

	return &CommitOutcome{
		State:   next,
		Events:  events,
		Changed: changed,
	}
}

// stateChanged reports whether the two documents differ in any field a
// downstream consumer can observe, comparing entitlements by fingerprint.
func stateChanged(prev, next *TenantEntitlementState) bool {
	if !sameCaps(prev.Caps, next.Caps) {
		return true
	}

	if !sameTime(prev.Billing.PeriodStart, next.Billing.PeriodStart) ||
		!sameTime(prev.Billing.PeriodEnd, next.Billing.PeriodEnd) ||
		!sameTime(prev.ActiveUntil, next.ActiveUntil) ||
		!sameTime(prev.BlockedUntil, next.BlockedUntil) {
		return true
	}

	if prev.WillNotRenew != next.WillNotRenew ||
		prev.Blocked != next.Blocked ||
		prev.BlockedReason != next.BlockedReason {
		return true
	}

	return Fingerprint(prev.Entitlements) != Fingerprint(next.Entitlements)
}

func boolOf(o Optional[bool]) bool {
	v, ok := o.Get()
	return ok && v
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}

	return b
}

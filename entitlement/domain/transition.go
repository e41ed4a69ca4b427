package domain

import (
	"context"
	"time"

	"github.com/qmuntal/stateless"
)

const (
	triggerActivate      = "activate"
	triggerRequestCancel = "request_cancel"
	triggerDeactivate    = "deactivate"
)

// transitionOutcome is the result of applying one capability patch.
type transitionOutcome struct {
	record  *EntitlementRecord
	removed bool
	event   *EntitlementEvent
}

// manualOverrides tracks which timestamp fields the caller pinned explicitly,
// so canonicalization only fires for fields left unset.
type manualOverrides struct {
	activatedAt       bool
	cancelRequestedAt bool
	deactivatedAt     bool
}

func (m manualOverrides) any() bool {
	return m.activatedAt || m.cancelRequestedAt || m.deactivatedAt
}

// applyCapabilityPatch applies a single capability patch to the current
// record and determines the event to emit, per the per-capability state
// machine over {inactive, active, cancel_at_period_end}.
func applyCapabilityPatch(cap string, cur *EntitlementRecord, patch Optional[EntitlementPatch], requestID string, now time.Time, manualDates bool) transitionOutcome {
	// A null patch value removes the capability record entirely.
	if patch.IsNull() {
		if cur == nil {
			return transitionOutcome{}
		}

		return transitionOutcome{
			removed: true,
			event:   newEvent(requestID, cap, EventRemoved, cur.Status, "", cur),
		}
	}

	p := patch.Value

	prevStatus := StatusInactive
	if cur != nil {
		prevStatus = NormalizeStatus(string(cur.Status))
	}

	requested := prevStatus
	if s, ok := p.Status.Get(); ok {
		requested = NormalizeStatus(s)
	}

	// Requesting cancellation of an already-inactive capability is a
	// business no-op, not an error: the record stays completely untouched
	// and the ignored request is still recorded as an event.
	if prevStatus == StatusInactive && requested == StatusCancelAtPeriodEnd {
		return transitionOutcome{
			record: cur,
			event:  newEvent(requestID, cap, EventCancelRequestIgnored, prevStatus, "", cur),
		}
	}

	next := cur.clone()
	if next == nil {
		next = &EntitlementRecord{Status: prevStatus}
	}

	var overrides manualOverrides

	if manualDates {
		if p.ActivatedAt.Present {
			next.ActivatedAt = timeOf(p.ActivatedAt)
			overrides.activatedAt = true
		}

		if p.CancelRequestedAt.Present {
			next.CancelRequestedAt = timeOf(p.CancelRequestedAt)
			overrides.cancelRequestedAt = true
		}

		if p.DeactivatedAt.Present {
			next.DeactivatedAt = timeOf(p.DeactivatedAt)
			overrides.deactivatedAt = true
		}
	}

	touched := overrides.any()

	if v, ok := p.Note.Get(); ok {
		next.Note = v
		touched = true
	} else if p.Note.IsNull() {
		next.Note = ""
		touched = true
	}

	if v, ok := p.Ref.Get(); ok {
		next.Ref = v
		touched = true
	} else if p.Ref.IsNull() {
		next.Ref = ""
		touched = true
	}

	statusChanged := requested != prevStatus
	// "Deactivate" is modeled as a reentrant trigger, so explicitly
	// requesting inactive on an inactive record still canonicalizes
	// its dates.
	reentry := p.Status.IsSet() && requested == StatusInactive && prevStatus == StatusInactive

	if !statusChanged && !reentry {
		if overrides.any() {
			next.UpdatedAt = now
			return transitionOutcome{
				record: next,
				event:  newEvent(requestID, cap, EventDatesUpdated, prevStatus, requested, next),
			}
		}

		if !touched || cur == nil {
			// Nothing to do; do not create a record as a side effect
			// of a note-only patch on an absent capability.
			return transitionOutcome{record: cur}
		}

		next.UpdatedAt = now

		return transitionOutcome{record: next}
	}

	trigger, eventType := transitionTrigger(prevStatus, requested)

	machine := newCapabilityMachine(prevStatus, next, overrides, now)
	if err := machine.Fire(trigger); err != nil {
		// The trigger table above only produces permitted triggers.
		return transitionOutcome{record: cur}
	}

	next.Status = machine.MustState().(Status)
	next.UpdatedAt = now

	return transitionOutcome{
		record: next,
		event:  newEvent(requestID, cap, eventType, prevStatus, next.Status, next),
	}
}

// newCapabilityMachine wires the per-capability status machine. Entry actions
// canonicalize the timestamp matching the new status, auto-filling "now" only
// for fields the caller left unset.
func newCapabilityMachine(initial Status, record *EntitlementRecord, overrides manualOverrides, now time.Time) *stateless.StateMachine {
	machine := stateless.NewStateMachine(initial)

	machine.Configure(StatusInactive).
		Permit(triggerActivate, StatusActive).
		PermitReentry(triggerDeactivate).
		OnEntryFrom(triggerDeactivate, func(_ context.Context, _ ...interface{}) error {
			if !overrides.deactivatedAt && record.DeactivatedAt == nil {
				record.DeactivatedAt = utcTime(now)
			}

			if !overrides.cancelRequestedAt {
				record.CancelRequestedAt = nil
			}

			return nil
		})

	machine.Configure(StatusActive).
		Permit(triggerRequestCancel, StatusCancelAtPeriodEnd).
		Permit(triggerDeactivate, StatusInactive).
		OnEntryFrom(triggerActivate, func(_ context.Context, _ ...interface{}) error {
			if !overrides.activatedAt && record.ActivatedAt == nil {
				record.ActivatedAt = utcTime(now)
			}

			if !overrides.cancelRequestedAt {
				record.CancelRequestedAt = nil
			}

			if !overrides.deactivatedAt {
				record.DeactivatedAt = nil
			}

			return nil
		})

	machine.Configure(StatusCancelAtPeriodEnd).
		Permit(triggerActivate, StatusActive).
		Permit(triggerDeactivate, StatusInactive).
		OnEntryFrom(triggerRequestCancel, func(_ context.Context, _ ...interface{}) error {
			if !overrides.cancelRequestedAt && record.CancelRequestedAt == nil {
				record.CancelRequestedAt = utcTime(now)
			}

			// The capability remains usable until period end.
			if !overrides.deactivatedAt {
				record.DeactivatedAt = nil
			}

			return nil
		})

	return machine
}

func transitionTrigger(from, to Status) (string, EventType) {
	switch to {
	case StatusActive:
		return triggerActivate, EventActivated
	case StatusCancelAtPeriodEnd:
		return triggerRequestCancel, EventCancelRequested
	default:
		return triggerDeactivate, EventDeactivated
	}
}

func newEvent(requestID, cap string, eventType EventType, prevStatus, nextStatus Status, record *EntitlementRecord) *EntitlementEvent {
	ev := &EntitlementEvent{
		RequestID:  requestID,
		Cap:        cap,
		Type:       eventType,
		PrevStatus: prevStatus,
		NextStatus: nextStatus,
	}

	if record != nil {
		ev.ActivatedAt = cloneTime(record.ActivatedAt)
		ev.CancelRequestedAt = cloneTime(record.CancelRequestedAt)
		ev.DeactivatedAt = cloneTime(record.DeactivatedAt)
		ev.Note = record.Note
		ev.Ref = record.Ref
	}

	return ev
}

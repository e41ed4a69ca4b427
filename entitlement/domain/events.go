package domain

import (
	"time"
)

// EventType classifies a single entitlement state transition.
type EventType string

const (
	EventActivated            EventType = "activated"
	EventCancelRequested      EventType = "cancel_requested"
	EventDeactivated          EventType = "deactivated"
	EventDatesUpdated         EventType = "dates_updated"
	EventCancelRequestIgnored EventType = "cancel_request_ignored"
	EventRemoved              EventType = "removed"
)

// EntitlementEvent is an append-only record of one capability transition.
// Events are written once, inside the same transaction as the state document,
// and never updated or deleted.
type EntitlementEvent struct {
	TenantID  string    `firestore:"tenantId" json:"tenantId"`
	RequestID string    `firestore:"requestId" json:"requestId"`
	Cap       string    `firestore:"cap" json:"cap"`
	Type      EventType `firestore:"type" json:"type"`
	// At is assigned by the server on write.
	At                time.Time  `firestore:"at,serverTimestamp" json:"at"`
	PrevStatus        Status     `firestore:"prevStatus" json:"prevStatus"`
	NextStatus        Status     `firestore:"nextStatus,omitempty" json:"nextStatus,omitempty"`
	ActivatedAt       *time.Time `firestore:"activatedAt" json:"activatedAt"`
	CancelRequestedAt *time.Time `firestore:"cancelRequestedAt" json:"cancelRequestedAt"`
	DeactivatedAt     *time.Time `firestore:"deactivatedAt" json:"deactivatedAt"`
	Note              string     `firestore:"note" json:"note"`
	Ref               string     `firestore:"ref" json:"ref"`
}

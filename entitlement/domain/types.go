package domain

import (
	"time"
)

// Status is the lifecycle status of a single capability entitlement.
type Status string

const (
	StatusActive            Status = "active"
	StatusCancelAtPeriodEnd Status = "cancel_at_period_end"
	StatusInactive          Status = "inactive"
)

// EntitlementRecord tracks the lifecycle of one capability granted to a tenant.
type EntitlementRecord struct {
	Status            Status     `firestore:"status" json:"status"`
	ActivatedAt       *time.Time `firestore:"activatedAt" json:"activatedAt"`
	CancelRequestedAt *time.Time `firestore:"cancelRequestedAt" json:"cancelRequestedAt"`
	DeactivatedAt     *time.Time `firestore:"deactivatedAt" json:"deactivatedAt"`
	Note              string     `firestore:"note" json:"note"`
	Ref               string     `firestore:"ref" json:"ref"`
	UpdatedAt         time.Time  `firestore:"updatedAt" json:"updatedAt"`
}

func (r *EntitlementRecord) clone() *EntitlementRecord {
	if r == nil {
		return nil
	}

	c := *r
	c.ActivatedAt = cloneTime(r.ActivatedAt)
	c.CancelRequestedAt = cloneTime(r.CancelRequestedAt)
	c.DeactivatedAt = cloneTime(r.DeactivatedAt)

	return &c
}

// Billing is the tenant's current billing period.
type Billing struct {
	PeriodStart *time.Time `firestore:"periodStart" json:"periodStart"`
	PeriodEnd   *time.Time `firestore:"periodEnd" json:"periodEnd"`
}

// TenantEntitlementState is the per-tenant state document. It is owned
// exclusively by the commit coordinator and mutated only inside its
// transaction.
type TenantEntitlementState struct {
	TenantID string   `firestore:"tenantId" json:"tenantId"`
	Rev      int64    `firestore:"rev" json:"rev"`
	Caps     []string `firestore:"caps" json:"caps"`
	Billing  Billing  `firestore:"billing" json:"billing"`
	// ActiveUntil is a legacy alias that always mirrors billing.periodEnd.
	ActiveUntil   *time.Time                    `firestore:"activeUntil" json:"activeUntil"`
	WillNotRenew  bool                          `firestore:"willNotRenew" json:"willNotRenew"`
	Blocked       bool                          `firestore:"blocked" json:"blocked"`
	BlockedUntil  *time.Time                    `firestore:"blockedUntil" json:"blockedUntil"`
	BlockedReason string                        `firestore:"blockedReason" json:"blockedReason"`
	Entitlements  map[string]*EntitlementRecord `firestore:"entitlements" json:"entitlements"`
	UpdatedAt     time.Time                     `firestore:"updatedAt" json:"updatedAt"`
}

// NewTenantEntitlementState returns the empty defaults a tenant has before
// its first committed patch.
func NewTenantEntitlementState(tenantID string) *TenantEntitlementState {
	return &TenantEntitlementState{
		TenantID:     tenantID,
		Caps:         []string{},
		Entitlements: map[string]*EntitlementRecord{},
	}
}

// Clone returns a deep copy of the state.
func (s *TenantEntitlementState) Clone() *TenantEntitlementState {
	c := *s

	c.Caps = append([]string{}, s.Caps...)
	c.Billing.PeriodStart = cloneTime(s.Billing.PeriodStart)
	c.Billing.PeriodEnd = cloneTime(s.Billing.PeriodEnd)
	c.ActiveUntil = cloneTime(s.ActiveUntil)
	c.BlockedUntil = cloneTime(s.BlockedUntil)

	c.Entitlements = make(map[string]*EntitlementRecord, len(s.Entitlements))
	for cap, record := range s.Entitlements {
		c.Entitlements[cap] = record.clone()
	}

	return &c
}

// IdempotencyMarker proves a request id was already fully processed for a
// tenant. Its presence is the sole source of truth for "already processed".
type IdempotencyMarker struct {
	RequestID string    `firestore:"requestId" json:"requestId"`
	TenantID  string    `firestore:"tenantId" json:"tenantId"`
	At        time.Time `firestore:"at,serverTimestamp" json:"at"`
	Rev       int64     `firestore:"rev" json:"rev"`
	Changed   bool      `firestore:"changed" json:"changed"`
	Events    int       `firestore:"events" json:"events"`
}

// CommitResult is what callers of the commit coordinator receive.
type CommitResult struct {
	Rev           int64      `json:"rev"`
	Caps          []string   `json:"caps"`
	Billing       Billing    `json:"billing"`
	ActiveUntil   *time.Time `json:"activeUntil"`
	WillNotRenew  bool       `json:"willNotRenew"`
	Blocked       bool       `json:"blocked"`
	BlockedUntil  *time.Time `json:"blockedUntil"`
	BlockedReason string     `json:"blockedReason"`
	IdempotentHit bool       `json:"idempotentHit"`
}

// ResultFromState builds a CommitResult from a committed state document.
func ResultFromState(s *TenantEntitlementState, idempotentHit bool) *CommitResult {
	return &CommitResult{
		Rev:           s.Rev,
		Caps:          append([]string{}, s.Caps...),
		Billing:       s.Billing,
		ActiveUntil:   s.ActiveUntil,
		WillNotRenew:  s.WillNotRenew,
		Blocked:       s.Blocked,
		BlockedUntil:  s.BlockedUntil,
		BlockedReason: s.BlockedReason,
		IdempotentHit: idempotentHit,
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	c := *t

	return &c
}

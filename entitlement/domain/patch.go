package domain

import (
	"encoding/json"
	"time"
)

// LooseTimestamp is a timestamp field that accepts epoch milliseconds or
// ISO-8601 strings on the wire. Unparseable input clamps to nil rather than
// failing the whole patch.
type LooseTimestamp struct {
	Time *time.Time
}

func (lt *LooseTimestamp) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	lt.Time = ParseTimestamp(v)

	return nil
}

func (lt LooseTimestamp) MarshalJSON() ([]byte, error) {
	if lt.Time == nil {
		return []byte("null"), nil
	}

	return json.Marshal(lt.Time)
}

// timeOf resolves an optional loose timestamp to a concrete instant; both
// absent and explicit null resolve to nil.
func timeOf(o Optional[LooseTimestamp]) *time.Time {
	if !o.IsSet() {
		return nil
	}

	return o.Value.Time
}

// StatePatch is the request shape consumed by the commit coordinator. Every
// field distinguishes absent from explicitly-null from value.
type StatePatch struct {
	Caps                     Optional[[]interface{}]                         `json:"caps"`
	ActiveUntil              Optional[LooseTimestamp]                        `json:"activeUntil"`
	WillNotRenew             Optional[bool]                                  `json:"willNotRenew"`
	Blocked                  Optional[bool]                                  `json:"blocked"`
	BlockedUntil             Optional[LooseTimestamp]                        `json:"blockedUntil"`
	BlockedReason            Optional[string]                                `json:"blockedReason"`
	Billing                  Optional[BillingPatch]                          `json:"billing"`
	Entitlements             Optional[map[string]Optional[EntitlementPatch]] `json:"entitlements"`
	SyncCapsFromEntitlements Optional[bool]                                  `json:"syncCapsFromEntitlements"`
	BumpRev                  Optional[bool]                                  `json:"bumpRev"`
	Rev                      Optional[int64]                                 `json:"rev"`
	ManualDates              Optional[bool]                                  `json:"manualDates"`
}

// BillingPatch updates the billing period; each bound is independently
// overridable.
type BillingPatch struct {
	PeriodStart Optional[LooseTimestamp] `json:"periodStart"`
	PeriodEnd   Optional[LooseTimestamp] `json:"periodEnd"`
}

// EntitlementPatch is the per-capability patch. A JSON null in place of the
// whole object removes the capability instead.
type EntitlementPatch struct {
	Status            Optional[string]         `json:"status"`
	ActivatedAt       Optional[LooseTimestamp] `json:"activatedAt"`
	CancelRequestedAt Optional[LooseTimestamp] `json:"cancelRequestedAt"`
	DeactivatedAt     Optional[LooseTimestamp] `json:"deactivatedAt"`
	Note              Optional[string]         `json:"note"`
	Ref               Optional[string]         `json:"ref"`
}

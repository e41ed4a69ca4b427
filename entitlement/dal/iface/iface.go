package iface

import (
	"context"

	"github.com/licensehq/entitlement-engine/entitlement/domain"
)

//go:generate mockery --name EntitlementStore --output ../mocks

// Transaction is the read/write surface available inside a single
// entitlement commit. Reads return nil without error for absent documents.
type Transaction interface {
	State() (*domain.TenantEntitlementState, error)
	Marker() (*domain.IdempotencyMarker, error)
	SetState(state *domain.TenantEntitlementState) error
	SetEvent(eventID string, event *domain.EntitlementEvent) error
	SetMarker(marker *domain.IdempotencyMarker) error
}

type TransactionFunc func(tx Transaction) error

// EntitlementStore persists tenant entitlement state, its event log and the
// per-request idempotency markers.
type EntitlementStore interface {
	RunEntitlementTransaction(ctx context.Context, tenantID, requestID string, fn TransactionFunc) error
	GetState(ctx context.Context, tenantID string) (*domain.TenantEntitlementState, error)
	ListEvents(ctx context.Context, tenantID string, limit int) ([]*domain.EntitlementEvent, error)
}

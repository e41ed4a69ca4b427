package service

import (
	"context"

	"github.com/licensehq/entitlement-engine/entitlement/domain"
)

//go:generate mockery --name EntitlementStateService --output ./mocks

// EntitlementStateService is the entitlement engine's front door: patch
// commits, state reads, event history and capability checks.
type EntitlementStateService interface {
	Apply(ctx context.Context, req *domain.ApplyRequest) (*domain.CommitResult, error)
	GetState(ctx context.Context, tenantID string) (*domain.TenantEntitlementState, error)
	ListEvents(ctx context.Context, tenantID string, limit int) ([]*domain.EntitlementEvent, error)
	TenantHasCap(ctx context.Context, tenantID, cap string) (bool, error)
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/licensehq/entitlement-engine/entitlement/domain"
)

type EntitlementStateService struct {
	mock.Mock
}

func (m *EntitlementStateService) Apply(ctx context.Context, req *domain.ApplyRequest) (*domain.CommitResult, error) {
	args := m.Called(ctx, req)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.CommitResult), args.Error(1)
}

func (m *EntitlementStateService) GetState(ctx context.Context, tenantID string) (*domain.TenantEntitlementState, error) {
	args := m.Called(ctx, tenantID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.TenantEntitlementState), args.Error(1)
}

func (m *EntitlementStateService) ListEvents(ctx context.Context, tenantID string, limit int) ([]*domain.EntitlementEvent, error) {
	args := m.Called(ctx, tenantID, limit)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*domain.EntitlementEvent), args.Error(1)
}

func (m *EntitlementStateService) TenantHasCap(ctx context.Context, tenantID, cap string) (bool, error) {
	args := m.Called(ctx, tenantID, cap)
	return args.Bool(0), args.Error(1)
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type CapabilityChecker struct {
	mock.Mock
}

func (m *CapabilityChecker) TenantHasCap(ctx context.Context, tenantID, cap string) (bool, error) {
	args := m.Called(ctx, tenantID, cap)
	return args.Bool(0), args.Error(1)
}

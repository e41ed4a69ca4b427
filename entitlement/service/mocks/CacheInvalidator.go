package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type CacheInvalidator struct {
	mock.Mock
}

func (m *CacheInvalidator) InvalidateTenant(ctx context.Context, tenantID string, rev int64) error {
	args := m.Called(ctx, tenantID, rev)
	return args.Error(0)
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/licensehq/entitlement-engine/entitlement/dal"
	"github.com/licensehq/entitlement-engine/entitlement/dal/iface"
	"github.com/licensehq/entitlement-engine/entitlement/domain"
	"github.com/licensehq/entitlement-engine/framework/connection"
	"github.com/licensehq/entitlement-engine/logger"
)

var (
	ErrMissingTenantID  = errors.New("tenant id is required")
	ErrMissingRequestID = errors.New("request id is required")
)

// ErrTenantStateNotFound is returned for tenants that never committed any
// patch.
var ErrTenantStateNotFound = dal.ErrTenantStateNotFound

type EntitlementService struct {
	loggerProvider logger.Provider
	conn           *connection.Connection
	store          iface.EntitlementStore
	invalidator    CacheInvalidator
	now            func() time.Time
}

func NewEntitlementService(log logger.Provider, conn *connection.Connection) *EntitlementService {
	return &EntitlementService{
		loggerProvider: log,
		conn:           conn,
		store:          dal.NewTenantEntitlementFirestoreDALWithClient(conn.Firestore),
		invalidator:    NewPubsubCacheInvalidator(conn.Pubsub),
		now:            time.Now,
	}
}

// GetState returns the tenant's current state document.
func (s *EntitlementService) GetState(ctx context.Context, tenantID string) (*domain.TenantEntitlementState, error) {
	if tenantID == "" {
		return nil, ErrMissingTenantID
	}

	return s.store.GetState(ctx, tenantID)
}

// ListEvents returns the tenant's most recent entitlement events.
func (s *EntitlementService) ListEvents(ctx context.Context, tenantID string, limit int) ([]*domain.EntitlementEvent, error) {
	if tenantID == "" {
		return nil, ErrMissingTenantID
	}

	return s.store.ListEvents(ctx, tenantID, limit)
}

// TenantHasCap reports whether the tenant currently holds the capability.
// A blocked tenant holds no capabilities while its block is in effect, and a
// tenant with no state document holds none at all.
func (s *EntitlementService) TenantHasCap(ctx context.Context, tenantID, cap string) (bool, error) {
	state, err := s.GetState(ctx, tenantID)
	if err != nil {
		if errors.Is(err, ErrTenantStateNotFound) {
			return false, nil
		}

		return false, err
	}

	now := s.now().UTC()

	if state.Blocked && (state.BlockedUntil == nil || now.Before(*state.BlockedUntil)) {
		return false, nil
	}

	for _, granted := range state.Caps {
		if strings.EqualFold(granted, cap) {
			return true, nil
		}
	}

	return false, nil
}

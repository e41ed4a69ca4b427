package service

import (
	"context"

	"github.com/licensehq/entitlement-engine/entitlement/dal"
	"github.com/licensehq/entitlement-engine/entitlement/dal/iface"
	"github.com/licensehq/entitlement-engine/entitlement/domain"
	"github.com/licensehq/entitlement-engine/logger"
)

// Apply commits one patch request exactly once. The idempotency marker is
// read first inside the transaction: if it exists, the request already
// committed and the current state is returned unmodified. Otherwise the new
// state, all resulting events and the marker are written atomically, so a
// request can never half-apply.
func (s *EntitlementService) Apply(ctx context.Context, req *domain.ApplyRequest) (*domain.CommitResult, error) {
	if req.TenantID == "" {
		return nil, ErrMissingTenantID
	}

	if req.RequestID == "" {
		return nil, ErrMissingRequestID
	}

	var (
		result    *domain.CommitResult
		committed bool
	)

	err := s.store.RunEntitlementTransaction(ctx, req.TenantID, req.RequestID, func(tx iface.Transaction) error {
		// Firestore may retry the transaction; reset outputs so a retry
		// never leaks results from an aborted attempt.
		result = nil
		committed = false

		marker, err := tx.Marker()
		if err != nil {
			return err
		}

		state, err := tx.State()
		if err != nil {
			return err
		}

		if marker != nil {
			if state == nil {
				state = domain.NewTenantEntitlementState(req.TenantID)
			}

			result = domain.ResultFromState(state, true)

			return nil
		}

		outcome := domain.ApplyStatePatch(state, req, s.now())

		for _, event := range outcome.Events {
			event.TenantID = req.TenantID

			if err := tx.SetEvent(dal.DeriveEventID(req.RequestID, event.Cap, event.Type), event); err != nil {
				return err
			}
		}

		if err := tx.SetState(outcome.State); err != nil {
			return err
		}

		if err := tx.SetMarker(&domain.IdempotencyMarker{
			RequestID: req.RequestID,
			TenantID:  req.TenantID,
			Rev:       outcome.State.Rev,
			Changed:   outcome.Changed,
			Events:    len(outcome.Events),
		}); err != nil {
			return err
		}

		result = domain.ResultFromState(outcome.State, false)
		committed = true

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Every fresh commit invalidates downstream caches, even when the
	// document is semantically unchanged: the committed rev may still have
	// moved, and rev is exactly what cache consumers key on. Only
	// idempotent replays skip the signal.
	if committed {
		s.invalidateTenant(ctx, req.TenantID, result.Rev)
	}

	return result, nil
}

// invalidateTenant notifies cache consumers after a commit. Invalidation is
// best effort: the commit already happened, so failures are logged and
// swallowed.
func (s *EntitlementService) invalidateTenant(ctx context.Context, tenantID string, rev int64) {
	if s.invalidator == nil {
		return
	}

	if err := s.invalidator.InvalidateTenant(ctx, tenantID, rev); err != nil {
		s.logger(ctx).Errorf("cache invalidation for tenant %s failed: %s", tenantID, err)
	}
}

func (s *EntitlementService) logger(ctx context.Context) logger.ILogger {
	if s.loggerProvider != nil {
		return s.loggerProvider(ctx)
	}

	return logger.FromContext(ctx)
}

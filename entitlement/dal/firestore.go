package dal

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/licensehq/entitlement-engine/entitlement/dal/iface"
	"github.com/licensehq/entitlement-engine/entitlement/domain"
	"github.com/licensehq/entitlement-engine/framework/connection"
)

const (
	tenantEntitlementCollection = "tenantEntitlements"
	eventsCollection            = "entitlementEvents"
	requestsCollection          = "entitlementRequests"

	defaultEventsLimit = 50
	maxEventsLimit     = 500
)

var (
	ErrTenantStateNotFound = errors.New("tenant entitlement state not found")
	ErrInvalidTenantID     = errors.New("invalid tenant id")
	ErrInvalidRequestID    = errors.New("invalid request id")
)

// TenantEntitlementFirestoreDAL persists tenant entitlement state documents
// together with their event log and idempotency markers.
type TenantEntitlementFirestoreDAL struct {
	firestoreClientFun connection.FirestoreFromContextFun
}

func NewTenantEntitlementFirestoreDAL(ctx context.Context, projectID string) (*TenantEntitlementFirestoreDAL, error) {
	fs, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return NewTenantEntitlementFirestoreDALWithClient(
		func(_ context.Context) *firestore.Client {
			return fs
		}), nil
}

func NewTenantEntitlementFirestoreDALWithClient(fun connection.FirestoreFromContextFun) *TenantEntitlementFirestoreDAL {
	return &TenantEntitlementFirestoreDAL{
		firestoreClientFun: fun,
	}
}

func (d *TenantEntitlementFirestoreDAL) stateRef(ctx context.Context, tenantID string) *firestore.DocumentRef {
	return d.firestoreClientFun(ctx).Collection(tenantEntitlementCollection).Doc(tenantID)
}

func (d *TenantEntitlementFirestoreDAL) eventRef(ctx context.Context, tenantID, eventID string) *firestore.DocumentRef {
	return d.stateRef(ctx, tenantID).Collection(eventsCollection).Doc(eventID)
}

func (d *TenantEntitlementFirestoreDAL) markerRef(ctx context.Context, tenantID, requestID string) *firestore.DocumentRef {
	return d.stateRef(ctx, tenantID).Collection(requestsCollection).Doc(sanitizeDocID(requestID))
}

// GetState reads the current state document outside any transaction.
func (d *TenantEntitlementFirestoreDAL) GetState(ctx context.Context, tenantID string) (*domain.TenantEntitlementState, error) {
	if tenantID == "" {
		return nil, ErrInvalidTenantID
	}

	docSnap, err := d.stateRef(ctx, tenantID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrTenantStateNotFound
		}

		return nil, err
	}

	var state domain.TenantEntitlementState

	if err := docSnap.DataTo(&state); err != nil {
		return nil, err
	}

	return &state, nil
}

// ListEvents returns the newest events first, capped at limit.
func (d *TenantEntitlementFirestoreDAL) ListEvents(ctx context.Context, tenantID string, limit int) ([]*domain.EntitlementEvent, error) {
	if tenantID == "" {
		return nil, ErrInvalidTenantID
	}

	if limit <= 0 {
		limit = defaultEventsLimit
	}

	if limit > maxEventsLimit {
		limit = maxEventsLimit
	}

	iter := d.stateRef(ctx, tenantID).
		Collection(eventsCollection).
		OrderBy("at", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	events := []*domain.EntitlementEvent{}

	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}

		if err != nil {
			return nil, err
		}

		var event domain.EntitlementEvent

		if err := docSnap.DataTo(&event); err != nil {
			return nil, err
		}

		events = append(events, &event)
	}

	return events, nil
}

// RunEntitlementTransaction runs fn inside a Firestore transaction scoped to
// one tenant and one request id.
func (d *TenantEntitlementFirestoreDAL) RunEntitlementTransaction(ctx context.Context, tenantID, requestID string, fn iface.TransactionFunc) error {
	if tenantID == "" {
		return ErrInvalidTenantID
	}

	if requestID == "" {
		return ErrInvalidRequestID
	}

	fs := d.firestoreClientFun(ctx)

	return fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(&firestoreTransaction{
			dal:       d,
			ctx:       ctx,
			tx:        tx,
			tenantID:  tenantID,
			requestID: requestID,
		})
	})
}

type firestoreTransaction struct {
	dal       *TenantEntitlementFirestoreDAL
	ctx       context.Context
	tx        *firestore.Transaction
	tenantID  string
	requestID string
}

func (t *firestoreTransaction) State() (*domain.TenantEntitlementState, error) {
	docSnap, err := t.tx.Get(t.dal.stateRef(t.ctx, t.tenantID))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}

		return nil, err
	}

	var state domain.TenantEntitlementState

	if err := docSnap.DataTo(&state); err != nil {
		return nil, err
	}

	return &state, nil
}

func (t *firestoreTransaction) Marker() (*domain.IdempotencyMarker, error) {
	docSnap, err := t.tx.Get(t.dal.markerRef(t.ctx, t.tenantID, t.requestID))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}

		return nil, err
	}

	var marker domain.IdempotencyMarker

	if err := docSnap.DataTo(&marker); err != nil {
		return nil, err
	}

	return &marker, nil
}

func (t *firestoreTransaction) SetState(state *domain.TenantEntitlementState) error {
	return t.tx.Set(t.dal.stateRef(t.ctx, t.tenantID), state)
}

func (t *firestoreTransaction) SetEvent(eventID string, event *domain.EntitlementEvent) error {
	return t.tx.Set(t.dal.eventRef(t.ctx, t.tenantID, eventID), event)
}

func (t *firestoreTransaction) SetMarker(marker *domain.IdempotencyMarker) error {
	return t.tx.Set(t.dal.markerRef(t.ctx, t.tenantID, t.requestID), marker)
}

package service

import (
	"context"
	"sort"
	"sync"

	"github.com/licensehq/entitlement-engine/entitlement/dal"
	"github.com/licensehq/entitlement-engine/entitlement/dal/iface"
	"github.com/licensehq/entitlement-engine/entitlement/domain"
)

// memStore is an in-memory EntitlementStore with serializable transactions,
// used to exercise the commit coordinator without a Firestore emulator.
type memStore struct {
	mu      sync.Mutex
	states  map[string]*domain.TenantEntitlementState
	events  map[string]map[string]*domain.EntitlementEvent
	markers map[string]map[string]*domain.IdempotencyMarker
}

func newMemStore() *memStore {
	return &memStore{
		states:  map[string]*domain.TenantEntitlementState{},
		events:  map[string]map[string]*domain.EntitlementEvent{},
		markers: map[string]map[string]*domain.IdempotencyMarker{},
	}
}

func (s *memStore) RunEntitlementTransaction(_ context.Context, tenantID, requestID string, fn iface.TransactionFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTransaction{
		store:     s,
		tenantID:  tenantID,
		requestID: requestID,
	}

	if err := fn(tx); err != nil {
		return err
	}

	tx.commit()

	return nil
}

func (s *memStore) GetState(_ context.Context, tenantID string) (*domain.TenantEntitlementState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[tenantID]
	if !ok {
		return nil, dal.ErrTenantStateNotFound
	}

	return state.Clone(), nil
}

func (s *memStore) ListEvents(_ context.Context, tenantID string, limit int) ([]*domain.EntitlementEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := []*domain.EntitlementEvent{}
	for _, event := range s.events[tenantID] {
		events = append(events, event)
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].At.After(events[j].At)
	})

	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}

	return events, nil
}

func (s *memStore) eventCount(tenantID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.events[tenantID])
}

// memTransaction buffers writes until commit, mirroring how a Firestore
// transaction only applies its writes when it succeeds.
type memTransaction struct {
	store     *memStore
	tenantID  string
	requestID string

	state  *domain.TenantEntitlementState
	events map[string]*domain.EntitlementEvent
	marker *domain.IdempotencyMarker
}

func (t *memTransaction) State() (*domain.TenantEntitlementState, error) {
	state, ok := t.store.states[t.tenantID]
	if !ok {
		return nil, nil
	}

	return state.Clone(), nil
}

func (t *memTransaction) Marker() (*domain.IdempotencyMarker, error) {
	marker, ok := t.store.markers[t.tenantID][t.requestID]
	if !ok {
		return nil, nil
	}

	copied := *marker

	return &copied, nil
}

func (t *memTransaction) SetState(state *domain.TenantEntitlementState) error {
	t.state = state.Clone()
	return nil
}

func (t *memTransaction) SetEvent(eventID string, event *domain.EntitlementEvent) error {
	if t.events == nil {
		t.events = map[string]*domain.EntitlementEvent{}
	}

	copied := *event
	t.events[eventID] = &copied

	return nil
}

func (t *memTransaction) SetMarker(marker *domain.IdempotencyMarker) error {
	copied := *marker
	t.marker = &copied

	return nil
}

func (t *memTransaction) commit() {
	if t.state != nil {
		t.store.states[t.tenantID] = t.state
	}

	if len(t.events) > 0 {
		if t.store.events[t.tenantID] == nil {
			t.store.events[t.tenantID] = map[string]*domain.EntitlementEvent{}
		}

		for id, event := range t.events {
			t.store.events[t.tenantID][id] = event
		}
	}

	if t.marker != nil {
		if t.store.markers[t.tenantID] == nil {
			t.store.markers[t.tenantID] = map[string]*domain.IdempotencyMarker{}
		}

		t.store.markers[t.tenantID][t.requestID] = t.marker
	}
}

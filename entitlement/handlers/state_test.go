package handlers

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/licensehq/entitlement-engine/common"
	"github.com/licensehq/entitlement-engine/entitlement/domain"
	"github.com/licensehq/entitlement-engine/entitlement/service"
	serviceMocks "github.com/licensehq/entitlement-engine/entitlement/service/mocks"
	"github.com/licensehq/entitlement-engine/framework/web"
	"github.com/licensehq/entitlement-engine/logger"
)

func GetContext(method string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	request := httptest.NewRequest(method, "http://example.com/foo", reader)
	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)
	ctx.Request = request
	ctx.Set(common.CtxKeys.Email, "test@email.com")
	ctx.Params = gin.Params{{Key: "tenantID", Value: "tenant-1"}}

	return ctx, recorder
}

type fields struct {
	loggerProvider logger.Provider
	service        *serviceMocks.EntitlementStateService
}

func TestEntitlementHandler_SetState(t *testing.T) {
	validBody := []byte(`{
		"requestId": "req-1",
		"entitlements": {"pro": {"status": "active"}}
	}`)

	tests := []struct {
		name    string
		body    []byte
		on      func(*fields)
		wantErr bool
	}{
		{
			name: "happy path",
			body: validBody,
			on: func(f *fields) {
				f.service.
					On(
						"Apply",
						mock.Anything,
						mock.AnythingOfType("*domain.ApplyRequest"),
					).
					Return(&domain.CommitResult{Rev: 1, Caps: []string{"pro"}}, nil).
					Once()
			},
		},
		{
			name:    "invalid request body",
			body:    []byte(`{"entitlements": [`),
			wantErr: true,
		},
		{
			name:    "service returned error",
			body:    validBody,
			wantErr: true,
			on: func(f *fields) {
				f.service.
					On(
						"Apply",
						mock.Anything,
						mock.AnythingOfType("*domain.ApplyRequest"),
					).
					Return(nil, assert.AnError).
					Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt := tt

			f := fields{
				loggerProvider: logger.FromContext,
				service:        &serviceMocks.EntitlementStateService{},
			}

			if tt.on != nil {
				tt.on(&f)
			}

			h := &EntitlementHandler{
				loggerProvider: f.loggerProvider,
				svc:            f.service,
			}

			ctx, _ := GetContext(http.MethodPost, tt.body)

			err := h.SetState(ctx)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			f.service.AssertExpectations(t)
		})
	}
}

func TestEntitlementHandler_SetState_GeneratesRequestID(t *testing.T) {
	f := fields{
		loggerProvider: logger.FromContext,
		service:        &serviceMocks.EntitlementStateService{},
	}

	var captured *domain.ApplyRequest

	f.service.
		On("Apply", mock.Anything, mock.AnythingOfType("*domain.ApplyRequest")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*domain.ApplyRequest)
		}).
		Return(&domain.CommitResult{Rev: 1}, nil).
		Once()

	h := &EntitlementHandler{
		loggerProvider: f.loggerProvider,
		svc:            f.service,
	}

	ctx, _ := GetContext(http.MethodPost, []byte(`{"entitlements": {"pro": {"status": "active"}}}`))

	assert.NoError(t, h.SetState(ctx))

	if assert.NotNil(t, captured) {
		assert.NotEmpty(t, captured.RequestID)
		assert.Equal(t, "tenant-1", captured.TenantID)
		assert.False(t, captured.Privileged)
	}
}

func TestEntitlementHandler_SetState_PrivilegedUser(t *testing.T) {
	f := fields{
		loggerProvider: logger.FromContext,
		service:        &serviceMocks.EntitlementStateService{},
	}

	var captured *domain.ApplyRequest

	f.service.
		On("Apply", mock.Anything, mock.AnythingOfType("*domain.ApplyRequest")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*domain.ApplyRequest)
		}).
		Return(&domain.CommitResult{Rev: 1}, nil).
		Once()

	h := &EntitlementHandler{
		loggerProvider: f.loggerProvider,
		svc:            f.service,
	}

	ctx, _ := GetContext(http.MethodPost, []byte(`{"requestId": "req-1", "manualDates": true}`))
	ctx.Set(common.CtxKeys.PrivilegedUser, true)

	assert.NoError(t, h.SetState(ctx))

	if assert.NotNil(t, captured) {
		assert.True(t, captured.Privileged)
	}
}

func TestEntitlementHandler_GetState(t *testing.T) {
	tests := []struct {
		name       string
		on         func(*fields)
		wantErr    bool
		wantStatus int
	}{
		{
			name: "happy path",
			on: func(f *fields) {
				f.service.
					On("GetState", mock.Anything, "tenant-1").
					Return(&domain.TenantEntitlementState{TenantID: "tenant-1", Rev: 3}, nil).
					Once()
			},
		},
		{
			name:       "unknown tenant maps to 404",
			wantErr:    true,
			wantStatus: http.StatusNotFound,
			on: func(f *fields) {
				f.service.
					On("GetState", mock.Anything, "tenant-1").
					Return(nil, service.ErrTenantStateNotFound).
					Once()
			},
		},
		{
			name:       "store error maps to 500",
			wantErr:    true,
			wantStatus: http.StatusInternalServerError,
			on: func(f *fields) {
				f.service.
					On("GetState", mock.Anything, "tenant-1").
					Return(nil, assert.AnError).
					Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fields{
				loggerProvider: logger.FromContext,
				service:        &serviceMocks.EntitlementStateService{},
			}

			if tt.on != nil {
				tt.on(&f)
			}

			h := &EntitlementHandler{
				loggerProvider: f.loggerProvider,
				svc:            f.service,
			}

			ctx, _ := GetContext(http.MethodGet, nil)

			err := h.GetState(ctx)

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			if assert.Error(t, err) {
				var webErr *web.Error
				if assert.ErrorAs(t, err, &webErr) {
					assert.Equal(t, tt.wantStatus, webErr.Status)
				}
			}
		})
	}
}

func TestEntitlementHandler_ListEvents(t *testing.T) {
	t.Run("happy path with limit", func(t *testing.T) {
		svc := &serviceMocks.EntitlementStateService{}
		svc.
			On("ListEvents", mock.Anything, "tenant-1", 10).
			Return([]*domain.EntitlementEvent{{Cap: "pro", Type: domain.EventActivated}}, nil).
			Once()

		h := &EntitlementHandler{loggerProvider: logger.FromContext, svc: svc}

		ctx, _ := GetContext(http.MethodGet, nil)
		ctx.Request = httptest.NewRequest(http.MethodGet, "http://example.com/foo?limit=10", nil)

		assert.NoError(t, h.ListEvents(ctx))
		svc.AssertExpectations(t)
	})

	t.Run("invalid limit maps to 400", func(t *testing.T) {
		svc := &serviceMocks.EntitlementStateService{}
		h := &EntitlementHandler{loggerProvider: logger.FromContext, svc: svc}

		ctx, _ := GetContext(http.MethodGet, nil)
		ctx.Request = httptest.NewRequest(http.MethodGet, "http://example.com/foo?limit=banana", nil)

		err := h.ListEvents(ctx)

		if assert.Error(t, err) {
			var webErr *web.Error
			if assert.ErrorAs(t, err, &webErr) {
				assert.ErrorIs(t, webErr.Err, ErrInvalidLimitParam)
				assert.Equal(t, http.StatusBadRequest, webErr.Status)
			}
		}

		svc.AssertNotCalled(t, "ListEvents")
	})
}

func TestEntitlementHandler_CheckCapability(t *testing.T) {
	svc := &serviceMocks.EntitlementStateService{}
	svc.
		On("TenantHasCap", mock.Anything, "tenant-1", "pro").
		Return(true, nil).
		Once()

	h := &EntitlementHandler{loggerProvider: logger.FromContext, svc: svc}

	ctx, _ := GetContext(http.MethodGet, nil)
	ctx.Params = append(ctx.Params, gin.Param{Key: "cap", Value: "pro"})

	assert.NoError(t, h.CheckCapability(ctx))
	svc.AssertExpectations(t)
}

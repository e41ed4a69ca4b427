package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/licensehq/entitlement-engine/common"
	"github.com/licensehq/entitlement-engine/entitlement/domain"
	"github.com/licensehq/entitlement-engine/entitlement/service"
	"github.com/licensehq/entitlement-engine/framework/connection"
	"github.com/licensehq/entitlement-engine/framework/web"
	"github.com/licensehq/entitlement-engine/logger"
)

type EntitlementHandler struct {
	loggerProvider logger.Provider
	svc            service.EntitlementStateService
}

func NewEntitlementHandler(log logger.Provider, conn *connection.Connection) *EntitlementHandler {
	return &EntitlementHandler{
		loggerProvider: log,
		svc:            service.NewEntitlementService(log, conn),
	}
}

func NewEntitlementHandlerWithService(log logger.Provider, svc service.EntitlementStateService) *EntitlementHandler {
	return &EntitlementHandler{
		loggerProvider: log,
		svc:            svc,
	}
}

type setStateRequest struct {
	domain.StatePatch
	RequestID string `json:"requestId" validate:"omitempty,max=128"`
}

// SetState applies a state patch to the tenant. Requests without a request id
// get a generated one, which makes them effectively non-retryable; callers
// that want idempotent retries must supply their own.
func (h *EntitlementHandler) SetState(ctx *gin.Context) error {
	tenantID := ctx.Param("tenantID")

	var req setStateRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		return web.NewRequestError(ErrInvalidRequestBody, http.StatusBadRequest)
	}

	validate := validator.New()

	if err := validate.Struct(req); err != nil {
		return web.NewRequestError(err, http.StatusBadRequest)
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	result, err := h.svc.Apply(ctx, &domain.ApplyRequest{
		TenantID:   tenantID,
		RequestID:  requestID,
		Patch:      req.StatePatch,
		Privileged: ctx.GetBool(common.CtxKeys.PrivilegedUser),
	})
	if err != nil {
		if errors.Is(err, service.ErrMissingTenantID) || errors.Is(err, service.ErrMissingRequestID) {
			return web.NewRequestError(err, http.StatusBadRequest)
		}

		return web.NewRequestError(err, http.StatusInternalServerError)
	}

	return web.Respond(ctx, result, http.StatusOK)
}

// GetState returns the tenant's current entitlement state document.
func (h *EntitlementHandler) GetState(ctx *gin.Context) error {
	tenantID := ctx.Param("tenantID")

	state, err := h.svc.GetState(ctx, tenantID)
	if err != nil {
		if errors.Is(err, service.ErrTenantStateNotFound) {
			return web.NewRequestError(err, http.StatusNotFound)
		}

		if errors.Is(err, service.ErrMissingTenantID) {
			return web.NewRequestError(err, http.StatusBadRequest)
		}

		return web.NewRequestError(err, http.StatusInternalServerError)
	}

	return web.Respond(ctx, state, http.StatusOK)
}

type capabilityCheckResponse struct {
	TenantID string `json:"tenantId"`
	Cap      string `json:"cap"`
	Granted  bool   `json:"granted"`
}

// CheckCapability reports whether the tenant currently holds a capability.
// Token issuers use this as their source of truth on cache miss.
func (h *EntitlementHandler) CheckCapability(ctx *gin.Context) error {
	tenantID := ctx.Param("tenantID")
	cap := ctx.Param("cap")

	granted, err := h.svc.TenantHasCap(ctx, tenantID, cap)
	if err != nil {
		if errors.Is(err, service.ErrMissingTenantID) {
			return web.NewRequestError(err, http.StatusBadRequest)
		}

		return web.NewRequestError(err, http.StatusInternalServerError)
	}

	return web.Respond(ctx, capabilityCheckResponse{
		TenantID: tenantID,
		Cap:      cap,
		Granted:  granted,
	}, http.StatusOK)
}

// ListEvents returns the tenant's most recent entitlement events, newest
// first. An optional limit query parameter caps the page size.
func (h *EntitlementHandler) ListEvents(ctx *gin.Context) error {
	tenantID := ctx.Param("tenantID")

	limit := 0

	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return web.NewRequestError(ErrInvalidLimitParam, http.StatusBadRequest)
		}

		limit = parsed
	}

	events, err := h.svc.ListEvents(ctx, tenantID, limit)
	if err != nil {
		if errors.Is(err, service.ErrMissingTenantID) {
			return web.NewRequestError(err, http.StatusBadRequest)
		}

		return web.NewRequestError(err, http.StatusInternalServerError)
	}

	return web.Respond(ctx, events, http.StatusOK)
}

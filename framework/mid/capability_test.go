package mid

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/licensehq/entitlement-engine/common"
	"github.com/licensehq/entitlement-engine/framework/mid/mocks"
	"github.com/licensehq/entitlement-engine/framework/web"
)

func GetContext() (*gin.Context, *httptest.ResponseRecorder) {
	request := httptest.NewRequest(http.MethodGet, "http://example.com/foo", nil)
	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)
	ctx.Request = request
	ctx.Set(common.CtxKeys.Email, "test@email.com")
	ctx.Params = gin.Params{{Key: "tenantID", Value: "tenant-1"}}

	return ctx, recorder
}

func TestCapabilityMiddleware_NotGranted(t *testing.T) {
	testHandler := func(ctx *gin.Context) error { return nil }
	ctx, _ := GetContext()

	checker := &mocks.CapabilityChecker{}
	checker.On("TenantHasCap", mock.Anything, "tenant-1", "analytics").Return(false, nil)
	requireCap := RequireCapabilityFunc(checker)

	mw := requireCap("analytics")

	err := mw(testHandler)(ctx)

	if assert.Error(t, err) {
		var webErr *web.Error
		if assert.ErrorAs(t, err, &webErr) {
			assert.ErrorIs(t, webErr.Err, ErrCapabilityNotGranted)
			assert.Equal(t, http.StatusForbidden, webErr.Status)
		}
	}
}

func TestCapabilityMiddleware_CheckerError(t *testing.T) {
	testHandler := func(ctx *gin.Context) error { return nil }
	ctx, _ := GetContext()

	checker := &mocks.CapabilityChecker{}
	checker.On("TenantHasCap", mock.Anything, "tenant-1", "analytics").Return(false, errors.New("store unavailable"))
	requireCap := RequireCapabilityFunc(checker)

	mw := requireCap("analytics")

	err := mw(testHandler)(ctx)

	if assert.Error(t, err) {
		var webErr *web.Error
		if assert.ErrorAs(t, err, &webErr) {
			assert.Equal(t, http.StatusForbidden, webErr.Status)
		}
	}
}

func TestCapabilityMiddleware_Granted(t *testing.T) {
	testHandler := func(ctx *gin.Context) error { ctx.String(http.StatusOK, "%s", "success"); return nil }
	ctx, recorder := GetContext()

	checker := &mocks.CapabilityChecker{}
	checker.On("TenantHasCap", mock.Anything, "tenant-1", "analytics").Return(true, nil)
	requireCap := RequireCapabilityFunc(checker)

	mw := requireCap("analytics")

	err := mw(testHandler)(ctx)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestCapabilityMiddleware_PrivilegedUserSkipsCheck(t *testing.T) {
	testHandler := func(ctx *gin.Context) error { return nil }
	ctx, _ := GetContext()
	ctx.Set(common.CtxKeys.PrivilegedUser, true)

	checker := &mocks.CapabilityChecker{}
	requireCap := RequireCapabilityFunc(checker)

	mw := requireCap("analytics")

	err := mw(testHandler)(ctx)

	assert.NoError(t, err)
	checker.AssertNotCalled(t, "TenantHasCap")
}

func TestCapabilityMiddleware_MissingTenantID(t *testing.T) {
	testHandler := func(ctx *gin.Context) error { return nil }
	ctx, _ := GetContext()
	ctx.Params = gin.Params{}

	checker := &mocks.CapabilityChecker{}
	requireCap := RequireCapabilityFunc(checker)

	mw := requireCap("analytics")

	err := mw(testHandler)(ctx)

	if assert.Error(t, err) {
		var webErr *web.Error
		if assert.ErrorAs(t, err, &webErr) {
			assert.Equal(t, http.StatusBadRequest, webErr.Status)
		}
	}
}

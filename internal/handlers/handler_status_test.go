package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"smartflow/internal/testutil"
	"smartflow/internal/version"
)

func TestAuthStatusHandler_ShouldReturnUnauthorizedForAnonymousUser(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/api/auth/status")
	defer tc.Finish()

	tc.CallHandler(AuthStatusHandler)

	tc.AssertStatus(t, http.StatusUnauthorized)
	tc.AssertContentType(t, "application/json")
	tc.AssertJSONBool(t, "authenticated", false)

	if _, ok := tc.GetJSONResponse(t)["user"]; ok {
		t.Errorf("Expected user to be omitted for anonymous requests")
	}
}

func TestAuthStatusHandler_ShouldReturnAuthorizedForKnownUser(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/api/auth/status").WithSession(testutil.TestSession())
	defer tc.Finish()

	tc.CallHandler(AuthStatusHandler)

	tc.AssertStatus(t, http.StatusOK)
	tc.AssertJSONBool(t, "authenticated", true)
	tc.AssertJSONObject(t, "user", map[string]interface{}{
		"id":       "user-1",
		"email":    "ana@example.com",
		"name":     "Ana Souza",
		"provider": "password",
	})
	tc.AssertBodyNotContains(t, "session-token")
}

func TestHandlerHealth(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/api/v1/health")
	defer tc.Finish()

	tc.CallHandler(HandlerHealth)

	tc.AssertStatus(t, http.StatusOK)
	tc.AssertContentType(t, "application/json")
	tc.AssertJSONString(t, "status", "OK")
	tc.AssertJSONString(t, "version", version.GetVersion())
}

func TestHandlerReady(t *testing.T) {
	t.Run("provider up", func(t *testing.T) {
		tc := testutil.NewTestContextWithURL(t, "GET", "/api/v1/ready")
		defer tc.Finish()

		tc.MockIdentity.EXPECT().Ping(tc.AppContext).Return(nil)

		tc.CallHandler(HandlerReady)

		tc.AssertStatus(t, http.StatusOK)
		tc.AssertJSONField(t, "status", "OK")
	})

	t.Run("provider down", func(t *testing.T) {
		tc := testutil.NewTestContextWithURL(t, "GET", "/api/v1/ready")
		defer tc.Finish()

		tc.MockIdentity.EXPECT().Ping(tc.AppContext).Return(errors.New("connection refused"))

		tc.CallHandler(HandlerReady)

		tc.AssertStatus(t, http.StatusServiceUnavailable)
		tc.AssertLogsContainMessage(t, slog.LevelWarn, "identity provider not ready")
	})
}

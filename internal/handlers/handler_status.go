package handlers

import (
	"net/http"

	"smartflow/internal/middlewares"
	"smartflow/internal/models"
	"smartflow/internal/version"
)

type AuthStatusResponse struct {
	Authenticated bool            `json:"authenticated"`
	User          *models.Session `json:"user,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func AuthStatusHandler(ctx *middlewares.AppContext) {
	if !ctx.IsAuthenticated() {
		ctx.WriteJSON(http.StatusUnauthorized, AuthStatusResponse{})
		return
	}

	ctx.WriteJSON(http.StatusOK, AuthStatusResponse{
		Authenticated: true,
		User:          ctx.Session,
	})
}

func HandlerHealth(ctx *middlewares.AppContext) {
	ctx.WriteJSON(http.StatusOK, HealthResponse{Status: "OK", Version: version.GetVersion()})
}

// HandlerReady reports whether the identity provider answers.
func HandlerReady(ctx *middlewares.AppContext) {
	if err := ctx.Identity.Ping(ctx); err != nil {
		ctx.Logger.Warn("identity provider not ready", "error", err)
		ctx.SetJSONStatus(http.StatusServiceUnavailable, "identity provider unavailable")
		return
	}

	ctx.SetJSONStatus(http.StatusOK, "OK")
}

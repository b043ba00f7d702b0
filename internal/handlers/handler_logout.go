package handlers

import (
	"net/http"

	"smartflow/internal/authentication"
	"smartflow/internal/metrics"
	"smartflow/internal/middlewares"
	"smartflow/internal/models"
)

// POSTLogoutHandler revokes the provider session for password logins and always destroys the local one.
func POSTLogoutHandler(ctx *middlewares.AppContext) {
	session := ctx.Session

	if session != nil && session.Provider == models.ProviderPassword && session.Token != "" {
		err := ctx.Identity.SignOut(ctx, session.Token)
		metrics.RecordAuthEvent(metrics.AuthEventSignOut, err)
		if err != nil {
			ctx.Logger.Warn("failed to revoke provider session", "user_id", session.UserID, "error", err)
		}
	}

	if err := ctx.SessionManager.Logout(ctx); err != nil {
		ctx.Logger.Error("failed to logout user", "error", err)
		ctx.WriteText(http.StatusInternalServerError, "Failed to logout")
		return
	}
	ctx.Session = nil

	if session != nil {
		ctx.Logger.Info("user logged out", requestAttrs(ctx, "user_id", session.UserID)...)
	}

	ctx.Redirect(authentication.LoginPath, http.StatusSeeOther)
}

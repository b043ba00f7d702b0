package handlers

import (
	"net/http"

	"smartflow/internal/authentication"
	"smartflow/internal/metrics"
	"smartflow/internal/middlewares"

	"github.com/go-chi/chi/v5"
)

// POSTOAuthLoginHandler sends the browser to the named provider. The target to return to after the
// callback is kept in the session.
func POSTOAuthLoginHandler(ctx *middlewares.AppContext) {
	name := chi.URLParam(ctx.Request, "provider")

	provider, ok := ctx.OAuth.Get(name)
	if !ok {
		ctx.Logger.Warn("unknown oauth provider", "provider", name)
		ctx.Redirect(authentication.LoginErrorOAuth.LoginURL(), http.StatusSeeOther)
		return
	}

	next := authentication.SanitizeNext(ctx.Request.URL.Query().Get("next"), authentication.DefaultNextPath)
	ctx.SessionManager.SetOauthProvider(ctx, provider.Name())
	ctx.SessionManager.SetRedirectAfterLogin(ctx, next)

	authURL, err := provider.StartLogin(ctx)
	metrics.RecordAuthEvent(metrics.AuthEventOAuthStart, err)
	if err != nil {
		ctx.Logger.Error("failed to start oauth login", "provider", name, "error", err)
		ctx.Redirect(authentication.LoginErrorOAuth.LoginURL(), http.StatusSeeOther)
		return
	}

	ctx.Logger.Debug("redirecting to oauth provider", "provider", name)
	ctx.Redirect(authURL, http.StatusSeeOther)
}

func GETCallbackHandler(ctx *middlewares.AppContext) {
	query := ctx.Request.URL.Query()

	if errorParam := query.Get("error"); errorParam != "" {
		ctx.Logger.Warn("oauth callback error", "error", errorParam, "description", query.Get("error_description"))
	}

	if query.Get("code") == "" {
		ctx.Redirect(authentication.LoginErrorNoCode.LoginURL(), http.StatusFound)
		return
	}

	if !exchangeCode(ctx, metrics.AuthEventOAuthCallback) {
		ctx.Redirect(authentication.LoginErrorOAuth.LoginURL(), http.StatusFound)
		return
	}

	ctx.Redirect(redirectTarget(ctx), http.StatusFound)
}

// exchangeCode completes the login started with the provider recorded in the session.
func exchangeCode(ctx *middlewares.AppContext, event string) bool {
	name := ctx.SessionManager.GetOauthProvider(ctx)

	provider, ok := ctx.OAuth.Get(name)
	if !ok {
		ctx.Logger.Warn("no oauth login in progress", "provider", name)
		metrics.RecordAuthEvent(event, authentication.ErrNoSession)
		return false
	}

	session, err := provider.HandleCallback(ctx)
	metrics.RecordAuthEvent(event, err)
	if err != nil {
		ctx.Logger.Error("failed to handle oauth callback", requestAttrs(ctx, "provider", name, "error", err)...)
		return false
	}

	if !establishSession(ctx, session) {
		return false
	}

	ctx.Logger.Info("user authenticated", requestAttrs(ctx, "user_id", session.UserID, "provider", name, "email", RedactEmail(session.Email))...)
	return true
}

// redirectTarget prefers an explicit next parameter over the target stored at initiation. Both are
// sanitized.
func redirectTarget(ctx *middlewares.AppContext) string {
	stored := ctx.SessionManager.PopRedirectAfterLogin(ctx)

	if next := ctx.Request.URL.Query().Get("next"); next != "" {
		return authentication.SanitizeNext(next, authentication.DefaultNextPath)
	}

	return authentication.SanitizeNext(stored, authentication.DefaultNextPath)
}

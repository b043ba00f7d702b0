package middlewares

import (
	"errors"
	"net/http"
	"time"

	"smartflow/internal/authentication"
)

// LoadSession places the current Session, if any, on the AppContext. With sessions.revalidate enabled the
// stored copy is checked against the identity provider on every request.
func LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		appCtx := GetAppContext(r)
		if appCtx == nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		session, ok := appCtx.SessionManager.GetSession(appCtx)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		if appCtx.Config.Sessions.Revalidate && appCtx.Identity != nil && session.Token != "" {
			fresh, err := appCtx.Identity.GetSession(appCtx, session.Token)
			switch {
			case errors.Is(err, authentication.ErrNoSession):
				appCtx.Logger.Info("provider session no longer valid", "user_id", session.UserID)
				if err := appCtx.SessionManager.Logout(appCtx); err != nil {
					appCtx.Logger.Error("failed to destroy local session", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			case err != nil:
				appCtx.Logger.Warn("unable to revalidate session, using stored copy", "user_id", session.UserID, "error", err)
			default:
				fresh.Provider = session.Provider
				fresh.Token = session.Token
				appCtx.SessionManager.UpdateSession(appCtx, fresh)
				session = fresh
			}
		}

		appCtx.Session = session
		next.ServeHTTP(w, r)
	})
}

// RequireSession sends anonymous requests to the login page.
func RequireSession(next http.Handler) http.Handler {
	return RequireSessionOr(authentication.LoginErrorUnknown)(next)
}

// RequireSessionOr sends anonymous requests to the login page carrying the given error code.
func RequireSessionOr(loginError authentication.LoginError) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			appCtx := GetAppContext(r)
			if appCtx == nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			if appCtx.Session == nil || appCtx.Session.IsExpired(time.Now()) {
				appCtx.Redirect(loginError.LoginURL(), http.StatusFound)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RedirectIfAuthenticated keeps signed-in users away from the login and signup pages.
func RedirectIfAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		appCtx := GetAppContext(r)
		if appCtx == nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if appCtx.IsAuthenticated() {
			appCtx.Redirect(authentication.DefaultNextPath, http.StatusFound)
			return
		}

		next.ServeHTTP(w, r)
	})
}

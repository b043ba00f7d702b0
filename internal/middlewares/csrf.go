package middlewares

import (
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"
)

const CSRFFormField = "csrf_token"

const CSRFHeader = "X-CSRF-Token"

// CSRF binds a token to the server-side session. Safe methods get the token placed on the AppContext for
// templates; unsafe methods must echo it back as a form field or header.
func CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		appCtx := GetAppContext(r)
		if appCtx == nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		token := appCtx.SessionManager.GetCSRFToken(appCtx)

		if isSafeMethod(r.Method) {
			if token == "" {
				token = uuid.NewString()
				appCtx.SessionManager.SetCSRFToken(appCtx, token)
			}
			appCtx.CSRFToken = token
			next.ServeHTTP(w, r)
			return
		}

		submitted := r.Header.Get(CSRFHeader)
		if submitted == "" {
			submitted = r.PostFormValue(CSRFFormField)
		}

		if token == "" || submitted == "" || subtle.ConstantTimeCompare([]byte(token), []byte(submitted)) != 1 {
			appCtx.Logger.Warn("csrf validation failed",
				"method", r.Method,
				"path", r.URL.Path,
				"has_session_token", token != "",
				"has_submitted_token", submitted != "")
			http.Error(w, "CSRF token validation failed", http.StatusForbidden)
			return
		}

		appCtx.CSRFToken = token
		next.ServeHTTP(w, r)
	})
}

package middlewares

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"smartflow/internal/config"
	"smartflow/internal/models"
	"smartflow/internal/web"
)

// AppContext is the request-scoped object handed to every handler. The current Session travels on it
// explicitly; nothing reads the session from a global.
type AppContext struct {
	context.Context
	Config         *config.Config
	Logger         *slog.Logger
	SessionManager SessionProvider
	Identity       IdentityProvider
	OAuth          OAuthProviders
	Renderer       Renderer

	Session   *models.Session
	CSRFToken string

	Request  *http.Request
	Response http.ResponseWriter
}

type contextKey string

const appContextKey contextKey = "appContext"

func AppContextMiddleware(baseCtx *AppContext) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestCtx := &AppContext{
				Context:        r.Context(),
				Config:         baseCtx.Config,
				Logger:         baseCtx.Logger,
				SessionManager: baseCtx.SessionManager,
				Identity:       baseCtx.Identity,
				OAuth:          baseCtx.OAuth,
				Renderer:       baseCtx.Renderer,
				Request:        r,
				Response:       w,
			}

			next.ServeHTTP(w, WithAppContext(r, requestCtx))
		})
	}
}

// WithAppContext attaches appCtx to r and points appCtx at the resulting request.
func WithAppContext(r *http.Request, appCtx *AppContext) *http.Request {
	ctx := context.WithValue(r.Context(), appContextKey, appCtx)
	appCtx.Context = ctx
	appCtx.Request = r.WithContext(ctx)
	return appCtx.Request
}

type AppHandler func(*AppContext)

// Handler converts an AppHandler to an http.Handler
func (ctx *AppContext) Handler(h AppHandler) http.Handler {
	return ctx.HandlerFunc(h)
}

// HandlerFunc converts AppHandler to a http.HandlerFunc
func (ctx *AppContext) HandlerFunc(h AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appCtx := GetAppContext(r)
		if appCtx == nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		h(appCtx)
	}
}

func (ctx *AppContext) Redirect(url string, status int) {
	http.Redirect(ctx.Response, ctx.Request, url, status)
}

func NewAppContext(ctx context.Context, cfg *config.Config, logger *slog.Logger, sessionManager SessionProvider, identity IdentityProvider, oauth OAuthProviders, renderer Renderer) *AppContext {
	return &AppContext{
		Context:        ctx,
		Config:         cfg,
		Logger:         logger,
		SessionManager: sessionManager,
		Identity:       identity,
		OAuth:          oauth,
		Renderer:       renderer,
	}
}

func GetAppContext(r *http.Request) *AppContext {
	if ctx, ok := r.Context().Value(appContextKey).(*AppContext); ok {
		return ctx
	}

	return nil
}

func GetLogger(r *http.Request) *slog.Logger {
	if appCtx := GetAppContext(r); appCtx != nil {
		return appCtx.Logger
	}

	return nil
}

func GetConfig(r *http.Request) *config.Config {
	if appCtx := GetAppContext(r); appCtx != nil {
		return appCtx.Config
	}

	return nil
}

func (ctx *AppContext) IsAuthenticated() bool {
	return ctx.Session != nil
}

func (ctx *AppContext) WriteJSON(status int, data interface{}) {
	ctx.Response.Header().Set("Content-Type", "application/json")
	ctx.Response.WriteHeader(status)
	if err := json.NewEncoder(ctx.Response).Encode(data); err != nil {
		ctx.Logger.Error("failed to marshal json", "error", err)
	}
}

func (ctx *AppContext) WriteText(status int, text string) {
	ctx.Response.WriteHeader(status)
	if _, err := ctx.Response.Write([]byte(text)); err != nil {
		ctx.Logger.Error("failed to write response", "error", err)
	}
}

func (ctx *AppContext) SetJSONError(status int, message string) {
	ctx.WriteJSON(status, map[string]string{
		"error": message,
	})
}

func (ctx *AppContext) SetJSONStatus(status int, message string) {
	ctx.WriteJSON(status, map[string]string{
		"status": message,
	})
}

// Render executes the named page template wrapped in the shared layout. Any pending flash is consumed.
func (ctx *AppContext) Render(status int, name, title string, content any) {
	page := web.Page{
		Title:     title,
		Path:      ctx.Request.URL.Path,
		Session:   ctx.Session,
		CSRFToken: ctx.CSRFToken,
		Content:   content,
	}

	if ctx.SessionManager != nil {
		page.Flash = ctx.SessionManager.PopFlash(ctx)
	}

	var buf bytes.Buffer
	if err := ctx.Renderer.Render(&buf, name, page); err != nil {
		ctx.Logger.Error("failed to render template", "template", name, "error", err)
		http.Error(ctx.Response, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ctx.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
	ctx.Response.WriteHeader(status)
	if _, err := buf.WriteTo(ctx.Response); err != nil {
		ctx.Logger.Error("failed to write response", "template", name, "error", err)
	}
}

// Flash queues a notification for the next rendered page.
func (ctx *AppContext) Flash(flash *models.Flash) {
	if ctx.SessionManager != nil {
		ctx.SessionManager.SetFlash(ctx, flash)
	}
}

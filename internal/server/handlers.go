package server

import (
	"net/http"
	"time"

	"smartflow/internal/authentication"
	"smartflow/internal/config"
	"smartflow/internal/handlers"
	"smartflow/internal/middlewares"
	"smartflow/internal/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func setupRouter(ctx *middlewares.AppContext, rateLimiter *middlewares.RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middlewares.ClientIPMiddleware(ctx.Config.Server.TrustedProxyNetworks()))
	r.Use(middleware.Recoverer)
	r.Use(middlewares.MetricsMiddleware)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(web.StaticFS()))))

	r.Group(func(r chi.Router) {
		r.Use(ctx.SessionManager.LoadAndSave)
		r.Use(middlewares.AppContextMiddleware(ctx))
		r.Use(middlewares.LoadSession)

		r.Route("/api", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   ctx.Config.CORS.AllowedOrigins,
				AllowedMethods:   ctx.Config.CORS.AllowedMethods,
				AllowedHeaders:   ctx.Config.CORS.AllowedHeaders,
				ExposedHeaders:   ctx.Config.CORS.ExposedHeaders,
				AllowCredentials: ctx.Config.CORS.AllowCredentials,
				MaxAge:           ctx.Config.CORS.MaxAgeSeconds,
			}))

			r.Get("/auth/status", ctx.HandlerFunc(handlers.AuthStatusHandler))

			r.Route("/v1", func(r chi.Router) {
				r.Get("/health", ctx.HandlerFunc(handlers.HandlerHealth))
				r.Get("/ready", ctx.HandlerFunc(handlers.HandlerReady))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middlewares.CSRF)
			if rateLimiter != nil {
				r.Use(rateLimiter.Middleware)
			}

			r.Get("/", ctx.HandlerFunc(handlers.GETRootHandler))

			r.Group(func(r chi.Router) {
				r.Use(middlewares.RedirectIfAuthenticated)
				r.Get("/login", ctx.HandlerFunc(handlers.GETLoginHandler))
				r.Post("/login", ctx.HandlerFunc(handlers.POSTLoginHandler))
				r.Get("/signup", ctx.HandlerFunc(handlers.GETSignupHandler))
				r.Post("/signup", ctx.HandlerFunc(handlers.POSTSignupHandler))
				r.Get("/forgot-password", ctx.HandlerFunc(handlers.GETForgotPasswordHandler))
				r.Post("/forgot-password", ctx.HandlerFunc(handlers.POSTForgotPasswordHandler))
			})

			r.Group(func(r chi.Router) {
				r.Use(middlewares.RequireSessionOr(authentication.LoginErrorNoSession))
				r.Get(authentication.ResetPasswordPath, ctx.HandlerFunc(handlers.GETResetPasswordHandler))
				r.Post(authentication.ResetPasswordPath, ctx.HandlerFunc(handlers.POSTResetPasswordHandler))
			})

			r.Group(func(r chi.Router) {
				r.Use(middlewares.RequireSession)
				r.Get("/dashboard", ctx.HandlerFunc(handlers.GETDashboardHandler))
			})

			r.Route("/auth", func(r chi.Router) {
				r.Post("/oauth/{provider}", ctx.HandlerFunc(handlers.POSTOAuthLoginHandler))
				r.Get("/callback", ctx.HandlerFunc(handlers.GETCallbackHandler))
				r.Get("/confirm", ctx.HandlerFunc(handlers.GETConfirmHandler))
			})

			r.Post("/logout", ctx.HandlerFunc(handlers.POSTLogoutHandler))

			r.Get(web.StyleguidePath, ctx.HandlerFunc(handlers.GETStyleguideHandler))
			r.Get(web.StyleguidePath+"/components/{slug}", ctx.HandlerFunc(handlers.GETStyleguideComponentHandler))
		})
	})

	notFound := chi.Chain(
		ctx.SessionManager.LoadAndSave,
		middlewares.AppContextMiddleware(ctx),
		middlewares.LoadSession,
		middlewares.CSRF,
	).HandlerFunc(ctx.HandlerFunc(handlers.NotFoundHandler))
	r.NotFound(notFound.ServeHTTP)

	return r
}

func setupDebugRouter(cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middlewares.ClientIPMiddleware(cfg.Server.TrustedProxyNetworks()))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Mount("/debug", middleware.Profiler())

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

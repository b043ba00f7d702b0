package middlewares

import (
	"net/http"

	"smartflow/internal/models"
)

//go:generate mockgen -source=session_provider.go -destination=../mocks/session.go -package=mocks

type SessionProvider interface {
	CreateSession(ctx *AppContext, session *models.Session) error
	GetSession(ctx *AppContext) (session *models.Session, ok bool)
	UpdateSession(ctx *AppContext, session *models.Session)
	SetFlash(ctx *AppContext, flash *models.Flash)
	PopFlash(ctx *AppContext) *models.Flash
	SetRedirectAfterLogin(ctx *AppContext, redirectAfterLogin string)
	PopRedirectAfterLogin(ctx *AppContext) string
	SetOauthProvider(ctx *AppContext, provider string)
	GetOauthProvider(ctx *AppContext) string
	SetOauthState(ctx *AppContext, state string)
	GetOauthState(ctx *AppContext) string
	ClearOauthState(ctx *AppContext)
	SetOauthNonce(ctx *AppContext, nonce string)
	GetOauthNonce(ctx *AppContext) string
	ClearOauthNonce(ctx *AppContext)
	SetOauthCodeVerifier(ctx *AppContext, verifier string)
	GetOauthCodeVerifier(ctx *AppContext) string
	ClearOauthCodeVerifier(ctx *AppContext)
	GetCSRFToken(ctx *AppContext) string
	SetCSRFToken(ctx *AppContext, token string)
	Logout(ctx *AppContext) error

	LoadAndSave(next http.Handler) http.Handler
}

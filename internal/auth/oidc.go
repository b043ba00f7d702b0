package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"smartflow/internal/authentication"
	"smartflow/internal/config"
	"smartflow/internal/middlewares"
	"smartflow/internal/models"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// NewOAuthProviders discovers every configured OIDC issuer. Discovery failures are fatal at startup.
func NewOAuthProviders(ctx context.Context, logger *slog.Logger, cfg *config.Config) (middlewares.OAuthProviders, error) {
	providers := make(middlewares.OAuthProviders, len(cfg.OAuth.Providers))

	for _, providerCfg := range cfg.OAuth.Providers {
		provider, err := NewOIDCProvider(ctx, providerCfg, cfg.CallbackURL())
		if err != nil {
			return nil, fmt.Errorf("oauth provider %s: %w", providerCfg.Name, err)
		}

		logger.Info("oauth provider configured", "provider", providerCfg.Name, "issuer", providerCfg.IssuerURL)
		providers[providerCfg.Name] = provider
	}

	return providers, nil
}

// NewOIDCProvider creates a provider with an initialized oauth2 config.
func NewOIDCProvider(ctx context.Context, cfg config.OAuthProviderConfig, redirectURL string) (*OIDCProvider, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     provider.Endpoint(),
		Scopes:       cfg.Scopes,
		RedirectURL:  redirectURL,
	}

	return &OIDCProvider{
		name:         cfg.Name,
		provider:     provider,
		oauth2Config: oauth2Config,
		verifier:     provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

type OIDCProvider struct {
	name         string
	provider     *oidc.Provider
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
}

func (p *OIDCProvider) Name() string {
	return p.name
}

func generateRandString(bytes int) string {
	if bytes <= 0 {
		bytes = 32
	}

	b := make([]byte, bytes)
	_, _ = rand.Read(b)

	return base64.URLEncoding.EncodeToString(b)
}

func generateCodeVerifier() (string, string) {
	b := make([]byte, 56)
	_, _ = rand.Read(b)

	codeVerifier := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(b)
	hash := sha256.Sum256([]byte(codeVerifier))
	codeChallenge := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(hash[:])
	return codeVerifier, codeChallenge
}

// StartLogin records state, nonce and PKCE verifier in the session and returns the authorization URL.
func (p *OIDCProvider) StartLogin(ctx *middlewares.AppContext) (string, error) {
	state := generateRandString(32)
	nonce := generateRandString(32)
	codeVerifier, codeChallenge := generateCodeVerifier()

	ctx.SessionManager.SetOauthNonce(ctx, nonce)
	ctx.SessionManager.SetOauthState(ctx, state)
	ctx.SessionManager.SetOauthCodeVerifier(ctx, codeVerifier)

	authURL := p.oauth2Config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("response_type", "code"),
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)

	return authURL, nil
}

// HandleCallback exchanges the authorization code and verifies the returned ID token.
func (p *OIDCProvider) HandleCallback(ctx *middlewares.AppContext) (*models.Session, error) {
	query := ctx.Request.URL.Query()

	if errorParam := query.Get("error"); errorParam != "" {
		return nil, &authentication.OAuthError{Reason: errorParam, Message: query.Get("error_description")}
	}

	storedState := ctx.SessionManager.GetOauthState(ctx)
	if storedState == "" {
		return nil, &authentication.OAuthError{Reason: "invalid_request", Message: "no oauth state found in session"}
	}

	if query.Get("state") != storedState {
		return nil, &authentication.OAuthError{Reason: "invalid_request", Message: "invalid state parameter"}
	}

	ctx.SessionManager.ClearOauthState(ctx)

	code := query.Get("code")
	if code == "" {
		return nil, &authentication.OAuthError{Reason: "invalid_request", Message: "no authorization code received"}
	}

	verifierCode := ctx.SessionManager.GetOauthCodeVerifier(ctx)
	ctx.SessionManager.ClearOauthCodeVerifier(ctx)

	token, err := p.oauth2Config.Exchange(ctx, code, oauth2.VerifierOption(verifierCode))
	if err != nil {
		return nil, &authentication.OAuthError{Reason: "invalid_grant", Message: fmt.Sprintf("failed to exchange code for token: %v", err)}
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, &authentication.OAuthError{Reason: "invalid_token", Message: "no id_token found in oauth2 token"}
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, &authentication.OAuthError{Reason: "invalid_token", Message: fmt.Sprintf("failed to verify ID Token: %v", err)}
	}

	var claims idTokenClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, &authentication.OAuthError{Reason: "server_error", Message: fmt.Sprintf("failed to extract claims from ID Token: %v", err)}
	}

	if claims.Nonce != ctx.SessionManager.GetOauthNonce(ctx) {
		return nil, &authentication.OAuthError{Reason: "server_error", Message: "nonce in ID Token is invalid"}
	}

	ctx.SessionManager.ClearOauthNonce(ctx)

	session := &models.Session{
		UserID:    idToken.Subject,
		Email:     claims.Email,
		Name:      getPreferredValue(claims.Name, claims.Username),
		Provider:  p.name,
		IssuedAt:  time.Now(),
		ExpiresAt: idToken.Expiry,
	}

	if err := p.fetchUserInfo(ctx, token, session); err != nil {
		ctx.Logger.Warn("failed to fetch user info, using ID token data only", "provider", p.name, "error", err)
	}

	return session, nil
}

type idTokenClaims struct {
	Nonce    string `json:"nonce"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"preferred_username"`
}

// fetchUserInfo fills gaps in the session from the UserInfo endpoint.
func (p *OIDCProvider) fetchUserInfo(ctx context.Context, token *oauth2.Token, session *models.Session) error {
	userInfo, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(token))
	if err != nil {
		return fmt.Errorf("failed to get user info: %w", err)
	}

	var claims struct {
		Username string `json:"preferred_username"`
		Name     string `json:"name"`
		Email    string `json:"email"`
	}

	if err := userInfo.Claims(&claims); err != nil {
		return fmt.Errorf("failed to parse user info claims: %w", err)
	}

	session.Email = getPreferredValue(claims.Email, userInfo.Email, session.Email)
	session.Name = getPreferredValue(claims.Name, session.Name, claims.Username)

	return nil
}

// getPreferredValue returns the first non-empty string from the provided values
func getPreferredValue(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

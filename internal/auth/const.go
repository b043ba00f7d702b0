package auth

import "smartflow/internal/authentication"

const (
	SessionKeySession            authentication.SessionKey = "session"
	SessionKeyFlash              authentication.SessionKey = "flash"
	SessionKeyRedirectAfterLogin authentication.SessionKey = "redirect_after_login"
	SessionKeyOauthProvider      authentication.SessionKey = "oauth_provider"
	SessionKeyOauthState         authentication.SessionKey = "oauth_state"
	SessionKeyOauthNonce         authentication.SessionKey = "oauth_nonce"
	SessionKeyOauthCodeVerifier  authentication.SessionKey = "oauth_code_verifier"
	SessionKeyCSRFToken          authentication.SessionKey = "csrf_token"
)

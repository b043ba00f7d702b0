package authentication

import "net/url"

// LoginError is the closed set of error codes the login page understands.
type LoginError int

const (
	LoginErrorUnknown LoginError = iota
	LoginErrorConfirmationFailed
	LoginErrorNoSession
	LoginErrorOAuth
	LoginErrorNoCode
)

const genericLoginErrorMessage = "Something went wrong. Please try again."

// ParseLoginError maps a query value onto a LoginError. Unrecognised values become LoginErrorUnknown.
func ParseLoginError(code string) LoginError {
	switch code {
	case "confirmation_failed":
		return LoginErrorConfirmationFailed
	case "no_session":
		return LoginErrorNoSession
	case "oauth_error":
		return LoginErrorOAuth
	case "no_code":
		return LoginErrorNoCode
	default:
		return LoginErrorUnknown
	}
}

// Code is the query string value, empty for LoginErrorUnknown.
func (e LoginError) Code() string {
	switch e {
	case LoginErrorConfirmationFailed:
		return "confirmation_failed"
	case LoginErrorNoSession:
		return "no_session"
	case LoginErrorOAuth:
		return "oauth_error"
	case LoginErrorNoCode:
		return "no_code"
	default:
		return ""
	}
}

func (e LoginError) Message() string {
	switch e {
	case LoginErrorConfirmationFailed:
		return "Email confirmation failed. Please try again or request a new link."
	case LoginErrorNoSession:
		return "Your session has expired. Please sign in again."
	case LoginErrorOAuth:
		return "Authentication with the provider failed. Please try again."
	case LoginErrorNoCode:
		return "Invalid authentication response. Please try again."
	default:
		return genericLoginErrorMessage
	}
}

func (e LoginError) String() string {
	if code := e.Code(); code != "" {
		return code
	}
	return "unknown"
}

// LoginURL builds /login?error=<code>.
func (e LoginError) LoginURL() string {
	code := e.Code()
	if code == "" {
		return LoginPath
	}

	return LoginPath + "?" + url.Values{"error": {code}}.Encode()
}

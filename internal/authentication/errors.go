package authentication

import (
	"errors"
	"fmt"
)

var (
	ErrNoSession          = errors.New("no active session")
	ErrUnsupportedOTPType = errors.New("unsupported otp type")
	ErrInvalidTokenHash   = errors.New("invalid token hash")
)

// ProviderError carries the opaque message returned by the identity provider.
type ProviderError struct {
	Op      string
	Message string
	Status  int
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
	}

	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// UserMessage returns the text safe to show to the end user.
func UserMessage(err error) string {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) && providerErr.Message != "" {
		return providerErr.Message
	}

	return genericLoginErrorMessage
}

// OAuthError is returned by OAuth callbacks. Reason is an OAuth style error code for logs.
type OAuthError struct {
	Reason  string
	Message string
}

func (e *OAuthError) Error() string {
	return e.Reason + ": " + e.Message
}

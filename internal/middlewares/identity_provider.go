package middlewares

import (
	"context"

	"smartflow/internal/models"
)

//go:generate mockgen -source=identity_provider.go -destination=../mocks/identity.go -package=mocks

// IdentityProvider is the password-based half of the session gateway.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, name, email, password string) (*models.SignUpResult, error)
	SignOut(ctx context.Context, token string) error
	GetSession(ctx context.Context, token string) (*models.Session, error)
	SendRecoveryEmail(ctx context.Context, email, redirectTo string) error
	VerifyOTP(ctx context.Context, tokenHash string, otpType models.OTPType) (*models.Session, error)
	UpdatePassword(ctx context.Context, token, password string) error
	Ping(ctx context.Context) error
}

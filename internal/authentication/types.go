package authentication

type SessionKey string

const (
	DefaultNextPath   = "/dashboard"
	LoginPath         = "/login"
	ResetPasswordPath = "/reset-password"
)

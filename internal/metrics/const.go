package metrics

const Namespace = "smartflow"

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

const (
	AuthEventSignIn        = "sign_in"
	AuthEventSignUp        = "sign_up"
	AuthEventSignOut       = "sign_out"
	AuthEventOAuthStart    = "oauth_start"
	AuthEventOAuthCallback = "oauth_callback"
	AuthEventConfirm       = "confirm"
	AuthEventRecovery      = "recovery"
	AuthEventPasswordReset = "password_reset"
)

const (
	IdentityOperationSignIn         = "sign_in"
	IdentityOperationSignUp         = "sign_up"
	IdentityOperationSignOut        = "sign_out"
	IdentityOperationGetSession     = "get_session"
	IdentityOperationRecovery       = "recovery"
	IdentityOperationVerifyOTP      = "verify_otp"
	IdentityOperationUpdatePassword = "update_password"
	IdentityOperationPing           = "ping"
)

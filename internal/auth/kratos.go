package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"smartflow/internal/authentication"
	"smartflow/internal/config"
	"smartflow/internal/metrics"
	"smartflow/internal/models"
	"smartflow/internal/version"

	kratos "github.com/ory/kratos-client-go"
)

const (
	methodPassword = "password"
	methodCode     = "code"
)

// KratosIdentity talks to the public API of an Ory Kratos instance using native (API) flows.
type KratosIdentity struct {
	public *kratos.APIClient
	admin  *kratos.APIClient
	logger *slog.Logger
}

func NewKratosIdentity(logger *slog.Logger, cfg config.IdentityConfig) (*KratosIdentity, error) {
	if cfg.PublicURL == "" {
		return nil, fmt.Errorf("identity public url is required")
	}

	identity := &KratosIdentity{
		public: newKratosClient(cfg.PublicURL, cfg.Timeout),
		logger: logger,
	}

	if cfg.AdminURL != "" {
		identity.admin = newKratosClient(cfg.AdminURL, cfg.Timeout)
	}

	logger.Info("kratos client initialized", "public_url", cfg.PublicURL, "admin_url", cfg.AdminURL)

	return identity, nil
}

func newKratosClient(url string, timeout time.Duration) *kratos.APIClient {
	configuration := kratos.NewConfiguration()
	configuration.Servers = []kratos.ServerConfiguration{{URL: url}}
	configuration.HTTPClient = &http.Client{Timeout: timeout}
	configuration.UserAgent = version.UserAgent()
	if configuration.DefaultHeader == nil {
		configuration.DefaultHeader = make(map[string]string)
	}
	configuration.DefaultHeader["Accept"] = "application/json"

	return kratos.NewAPIClient(configuration)
}

func observe(operation string, start time.Time, err error) {
	metrics.IdentityProviderDuration.WithLabelValues(operation, metrics.Outcome(err)).Observe(time.Since(start).Seconds())
}

func (k *KratosIdentity) SignIn(ctx context.Context, email, password string) (session *models.Session, err error) {
	defer func(start time.Time) { observe(metrics.IdentityOperationSignIn, start, err) }(time.Now())

	flow, resp, err := k.public.FrontendAPI.CreateNativeLoginFlow(ctx).Execute()
	if err != nil {
		return nil, providerError("create login flow", err, resp)
	}

	body := kratos.UpdateLoginFlowWithPasswordMethod{
		Identifier: email,
		Password:   password,
		Method:     methodPassword,
	}

	result, resp, err := k.public.FrontendAPI.UpdateLoginFlow(ctx).
		Flow(flow.Id).
		UpdateLoginFlowBody(kratos.UpdateLoginFlowWithPasswordMethodAsUpdateLoginFlowBody(&body)).
		Execute()
	if err != nil {
		return nil, providerError("sign in", err, resp)
	}

	kratosSession := result.GetSession()
	return toSession(&kratosSession, result.GetSessionToken()), nil
}

func (k *KratosIdentity) SignUp(ctx context.Context, name, email, password string) (result *models.SignUpResult, err error) {
	defer func(start time.Time) { observe(metrics.IdentityOperationSignUp, start, err) }(time.Now())

	flow, resp, err := k.public.FrontendAPI.CreateNativeRegistrationFlow(ctx).Execute()
	if err != nil {
		return nil, providerError("create registration flow", err, resp)
	}

	body := kratos.UpdateRegistrationFlowWithPasswordMethod{
		Traits: map[string]interface{}{
			"email": email,
			"name":  name,
		},
		Password: password,
		Method:   methodPassword,
	}

	registration, resp, err := k.public.FrontendAPI.UpdateRegistrationFlow(ctx).
		Flow(flow.Id).
		UpdateRegistrationFlowBody(kratos.UpdateRegistrationFlowWithPasswordMethodAsUpdateRegistrationFlowBody(&body)).
		Execute()
	if err != nil {
		return nil, providerError("sign up", err, resp)
	}

	identity := registration.GetIdentity()
	result = &models.SignUpResult{
		UserID: identity.Id,
		Email:  email,
	}

	if registration.HasSession() && registration.GetSessionToken() != "" {
		kratosSession := registration.GetSession()
		result.Session = toSession(&kratosSession, registration.GetSessionToken())
	}

	return result, nil
}

func (k *KratosIdentity) SignOut(ctx context.Context, token string) (err error) {
	defer func(start time.Time) { observe(metrics.IdentityOperationSignOut, start, err) }(time.Now())

	resp, err := k.public.FrontendAPI.PerformNativeLogout(ctx).
		PerformNativeLogoutBody(*kratos.NewPerformNativeLogoutBody(token)).
		Execute()
	if err != nil {
		return providerError("sign out", err, resp)
	}

	return nil
}

// GetSession resolves a session token. Unknown or revoked tokens yield authentication.ErrNoSession.
func (k *KratosIdentity) GetSession(ctx context.Context, token string) (session *models.Session, err error) {
	defer func(start time.Time) { observe(metrics.IdentityOperationGetSession, start, err) }(time.Now())

	kratosSession, resp, err := k.public.FrontendAPI.ToSession(ctx).XSessionToken(token).Execute()
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, authentication.ErrNoSession
		}
		return nil, providerError("get session", err, resp)
	}

	if !kratosSession.GetActive() {
		return nil, authentication.ErrNoSession
	}

	return toSession(kratosSession, token), nil
}

// SendRecoveryEmail starts a code based recovery flow. redirectTo is handed to the courier template through the
// transient payload.
func (k *KratosIdentity) SendRecoveryEmail(ctx context.Context, email, redirectTo string) (err error) {
	defer func(start time.Time) { observe(metrics.IdentityOperationRecovery, start, err) }(time.Now())

	flow, resp, err := k.public.FrontendAPI.CreateNativeRecoveryFlow(ctx).Execute()
	if err != nil {
		return providerError("create recovery flow", err, resp)
	}

	body := kratos.UpdateRecoveryFlowWithCodeMethod{
		Email:  &email,
		Method: methodCode,
		TransientPayload: map[string]interface{}{
			"redirect_to": redirectTo,
			"flow_id":     flow.Id,
		},
	}

	_, resp, err = k.public.FrontendAPI.UpdateRecoveryFlow(ctx).
		Flow(flow.Id).
		UpdateRecoveryFlowBody(kratos.UpdateRecoveryFlowWithCodeMethodAsUpdateRecoveryFlowBody(&body)).
		Execute()
	if err != nil {
		return providerError("send recovery email", err, resp)
	}

	return nil
}

// VerifyOTP consumes a token_hash of the form "<flow id>.<code>". A recovery code yields a session; email
// verification codes do not.
func (k *KratosIdentity) VerifyOTP(ctx context.Context, tokenHash string, otpType models.OTPType) (session *models.Session, err error) {
	defer func(start time.Time) { observe(metrics.IdentityOperationVerifyOTP, start, err) }(time.Now())

	flowID, code, err := splitTokenHash(tokenHash)
	if err != nil {
		return nil, err
	}

	switch otpType {
	case models.OTPTypeRecovery:
		return k.completeRecovery(ctx, flowID, code)
	case models.OTPTypeSignup, models.OTPTypeEmail, models.OTPTypeEmailChange, models.OTPTypeInvite:
		return nil, k.completeVerification(ctx, flowID, code)
	default:
		return nil, fmt.Errorf("%w: %s", authentication.ErrUnsupportedOTPType, otpType)
	}
}

func (k *KratosIdentity) completeRecovery(ctx context.Context, flowID, code string) (*models.Session, error) {
	body := kratos.UpdateRecoveryFlowWithCodeMethod{
		Code:   &code,
		Method: methodCode,
	}

	flow, resp, err := k.public.FrontendAPI.UpdateRecoveryFlow(ctx).
		Flow(flowID).
		UpdateRecoveryFlowBody(kratos.UpdateRecoveryFlowWithCodeMethodAsUpdateRecoveryFlowBody(&body)).
		Execute()
	if err != nil {
		return nil, providerError("verify recovery code", err, resp)
	}

	token := ""
	for _, next := range flow.ContinueWith {
		if next.ContinueWithSetOrySessionToken != nil {
			token = next.ContinueWithSetOrySessionToken.OrySessionToken
			break
		}
	}

	if token == "" {
		return nil, &authentication.ProviderError{Op: "verify recovery code", Message: flowMessage(flow.Ui)}
	}

	return k.GetSession(ctx, token)
}

func (k *KratosIdentity) completeVerification(ctx context.Context, flowID, code string) error {
	body := kratos.UpdateVerificationFlowWithCodeMethod{
		Code:   &code,
		Method: methodCode,
	}

	flow, resp, err := k.public.FrontendAPI.UpdateVerificationFlow(ctx).
		Flow(flowID).
		UpdateVerificationFlowBody(kratos.UpdateVerificationFlowWithCodeMethodAsUpdateVerificationFlowBody(&body)).
		Execute()
	if err != nil {
		return providerError("verify email", err, resp)
	}

	if state := fmt.Sprint(flow.State); state != "passed_challenge" {
		return &authentication.ProviderError{Op: "verify email", Message: flowMessage(flow.Ui)}
	}

	return nil
}

func (k *KratosIdentity) UpdatePassword(ctx context.Context, token, password string) (err error) {
	defer func(start time.Time) { observe(metrics.IdentityOperationUpdatePassword, start, err) }(time.Now())

	flow, resp, err := k.public.FrontendAPI.CreateNativeSettingsFlow(ctx).XSessionToken(token).Execute()
	if err != nil {
		return providerError("create settings flow", err, resp)
	}

	body := kratos.UpdateSettingsFlowWithPasswordMethod{
		Password: password,
		Method:   methodPassword,
	}

	_, resp, err = k.public.FrontendAPI.UpdateSettingsFlow(ctx).
		Flow(flow.Id).
		XSessionToken(token).
		UpdateSettingsFlowBody(kratos.UpdateSettingsFlowWithPasswordMethodAsUpdateSettingsFlowBody(&body)).
		Execute()
	if err != nil {
		return providerError("update password", err, resp)
	}

	return nil
}

// Ping checks that the public API (and the admin API when configured) answer.
func (k *KratosIdentity) Ping(ctx context.Context) (err error) {
	defer func(start time.Time) { observe(metrics.IdentityOperationPing, start, err) }(time.Now())

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, _, err := k.public.MetadataAPI.GetVersion(ctx).Execute(); err != nil {
		return fmt.Errorf("failed to connect to kratos public api: %w", err)
	}

	if k.admin != nil {
		if _, _, err := k.admin.MetadataAPI.GetVersion(ctx).Execute(); err != nil {
			return fmt.Errorf("failed to connect to kratos admin api: %w", err)
		}
	}

	return nil
}

func splitTokenHash(tokenHash string) (string, string, error) {
	flowID, code, ok := strings.Cut(tokenHash, ".")
	if !ok || flowID == "" || code == "" {
		return "", "", authentication.ErrInvalidTokenHash
	}
	return flowID, code, nil
}

func toSession(s *kratos.Session, token string) *models.Session {
	session := &models.Session{
		UserID:   s.Id,
		Provider: models.ProviderPassword,
		Token:    token,
	}

	if s.IssuedAt != nil {
		session.IssuedAt = *s.IssuedAt
	}
	if s.ExpiresAt != nil {
		session.ExpiresAt = *s.ExpiresAt
	}

	if s.Identity != nil {
		session.UserID = s.Identity.Id
		if traits, ok := s.Identity.Traits.(map[string]interface{}); ok {
			session.Email, _ = traits["email"].(string)
			session.Name = traitName(traits["name"])
		}
	}

	return session
}

// traitName accepts both a plain string and the {first, last} object used by the default identity schema.
func traitName(v interface{}) string {
	switch name := v.(type) {
	case string:
		return name
	case map[string]interface{}:
		first, _ := name["first"].(string)
		last, _ := name["last"].(string)
		return strings.TrimSpace(first + " " + last)
	default:
		return ""
	}
}

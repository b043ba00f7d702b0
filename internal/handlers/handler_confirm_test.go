package handlers

import (
	"log/slog"
	"net/http"
	"testing"

	"smartflow/internal/authentication"
	"smartflow/internal/models"
	"smartflow/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestGETConfirmHandler_RecoveryShouldRedirectToResetPassword(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/auth/confirm?token_hash=flow-1.123456&type=recovery")
	defer tc.Finish()

	session := testutil.TestSession()
	tc.MockIdentity.EXPECT().VerifyOTP(tc.AppContext, "flow-1.123456", models.OTPTypeRecovery).Return(session, nil)
	tc.ExpectCreateSession(session, nil)

	tc.CallHandler(GETConfirmHandler)

	tc.AssertRedirect(t, http.StatusFound, "/reset-password")
	assert.Same(t, session, tc.AppContext.Session)
}

func TestGETConfirmHandler_RecoveryIgnoresNext(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/auth/confirm?token_hash=flow-1.123456&type=recovery&next=/styleguide")
	defer tc.Finish()

	session := testutil.TestSession()
	tc.MockIdentity.EXPECT().VerifyOTP(gomock.Any(), gomock.Any(), gomock.Any()).Return(session, nil)
	tc.ExpectCreateSession(session, nil)

	tc.CallHandler(GETConfirmHandler)

	tc.AssertRedirect(t, http.StatusFound, "/reset-password")
}

func TestGETConfirmHandler_InvalidTokenShouldFail(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/auth/confirm?token_hash=abc&type=recovery")
	defer tc.Finish()

	tc.MockIdentity.EXPECT().VerifyOTP(tc.AppContext, "abc", models.OTPTypeRecovery).Return(nil, authentication.ErrInvalidTokenHash)

	tc.CallHandler(GETConfirmHandler)

	tc.AssertRedirect(t, http.StatusFound, "/login?error=confirmation_failed")
	tc.AssertLogsContainMessage(t, slog.LevelWarn, "otp verification failed")
	tc.AssertLogsNotContain(t, "abc")
}

func TestGETConfirmHandler_SignupShouldRedirectToSanitizedNext(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{name: "no next", query: "", want: "/dashboard"},
		{name: "relative next", query: "&next=/styleguide", want: "/styleguide"},
		{name: "absolute next", query: "&next=https://evil.example/x", want: "/dashboard"},
		{name: "protocol relative next", query: "&next=//evil.example", want: "/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewTestContextWithURL(t, "GET", "/auth/confirm?token_hash=flow-2.654321&type=signup"+tt.query)
			defer tc.Finish()

			session := testutil.TestSession()
			tc.MockIdentity.EXPECT().VerifyOTP(tc.AppContext, "flow-2.654321", models.OTPTypeSignup).Return(session, nil)
			tc.ExpectCreateSession(session, nil)

			tc.CallHandler(GETConfirmHandler)

			tc.AssertRedirect(t, http.StatusFound, tt.want)
		})
	}
}

func TestGETConfirmHandler_VerificationWithoutSessionShouldFlash(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/auth/confirm?token_hash=flow-3.111111&type=email")
	defer tc.Finish()

	tc.MockIdentity.EXPECT().VerifyOTP(tc.AppContext, "flow-3.111111", models.OTPTypeEmail).Return(nil, nil)

	var flash *models.Flash
	tc.ExpectFlash(&flash)

	tc.CallHandler(GETConfirmHandler)

	tc.AssertRedirect(t, http.StatusFound, "/dashboard")
	require.NotNil(t, flash)
	assert.Equal(t, models.FlashSuccess, flash.Kind)
	assert.Nil(t, tc.AppContext.Session)
}

func TestGETConfirmHandler_UnsupportedTypeShouldFail(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/auth/confirm?token_hash=flow-4.1&type=magiclink")
	defer tc.Finish()

	tc.MockIdentity.EXPECT().VerifyOTP(gomock.Any(), gomock.Any(), models.OTPTypeMagicLink).Return(nil, authentication.ErrUnsupportedOTPType)

	tc.CallHandler(GETConfirmHandler)

	tc.AssertRedirect(t, http.StatusFound, "/login?error=confirmation_failed")
}

func TestGETConfirmHandler_UnknownTypeShouldFailWithoutProviderCall(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/auth/confirm?token_hash=flow-4.1&type=bogus")
	defer tc.Finish()

	tc.CallHandler(GETConfirmHandler)

	tc.AssertRedirect(t, http.StatusFound, "/login?error=confirmation_failed")
}

func TestGETConfirmHandler_CodeShouldExchange(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/auth/confirm?code=abc&next=/styleguide")
	defer tc.Finish()

	session := testutil.TestSession()
	tc.MockSession.EXPECT().GetOauthProvider(tc.AppContext).Return("google")
	tc.MockOAuth.EXPECT().HandleCallback(tc.AppContext).Return(session, nil)
	tc.ExpectCreateSession(session, nil)

	tc.CallHandler(GETConfirmHandler)

	tc.AssertRedirect(t, http.StatusFound, "/styleguide")
}

func TestGETConfirmHandler_CodeExchangeFailureShouldFail(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/auth/confirm?code=abc")
	defer tc.Finish()

	tc.MockSession.EXPECT().GetOauthProvider(tc.AppContext).Return("google")
	tc.MockOAuth.EXPECT().HandleCallback(tc.AppContext).Return(nil, &authentication.OAuthError{Reason: "invalid_request", Message: "state mismatch"})

	tc.CallHandler(GETConfirmHandler)

	tc.AssertRedirect(t, http.StatusFound, "/login?error=confirmation_failed")
}

func TestGETConfirmHandler_MissingParametersShouldFail(t *testing.T) {
	targets := []string{
		"/auth/confirm",
		"/auth/confirm?token_hash=abc",
		"/auth/confirm?type=recovery",
		"/auth/confirm?next=/dashboard",
	}

	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			tc := testutil.NewTestContextWithURL(t, "GET", target)
			defer tc.Finish()

			tc.CallHandler(GETConfirmHandler)

			tc.AssertRedirect(t, http.StatusFound, "/login?error=confirmation_failed")
		})
	}
}

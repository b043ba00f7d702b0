package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"testing"

	"smartflow/internal/authentication"
	"smartflow/internal/models"
	"smartflow/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func loginValues(email, password string) url.Values {
	return url.Values{"email": {email}, "password": {password}, "csrf_token": {"test-csrf-token"}}
}

func TestGETLoginHandler_ShouldRenderProviders(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/login")
	defer tc.Finish()

	tc.CallHandler(GETLoginHandler)

	tc.AssertStatus(t, http.StatusOK)
	tc.AssertContentType(t, "text/html; charset=utf-8")
	tc.AssertBodyContains(t, `action="/login"`, `action="/auth/oauth/google"`, `value="test-csrf-token"`)
	tc.AssertBodyNotContains(t, `role="alert"`)
}

func TestGETLoginHandler_ShouldHideProvidersWhenNoneConfigured(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/login").WithoutOAuth()
	defer tc.Finish()

	tc.CallHandler(GETLoginHandler)

	tc.AssertStatus(t, http.StatusOK)
	tc.AssertBodyNotContains(t, "/auth/oauth/")
}

func TestGETLoginHandler_ShouldMapErrorCodes(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{code: "confirmation_failed", want: authentication.LoginErrorConfirmationFailed.Message()},
		{code: "no_session", want: authentication.LoginErrorNoSession.Message()},
		{code: "oauth_error", want: authentication.LoginErrorOAuth.Message()},
		{code: "no_code", want: authentication.LoginErrorNoCode.Message()},
		{code: "something_else", want: "Something went wrong. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			tc := testutil.NewTestContextWithURL(t, "GET", "/login?error="+tt.code)
			defer tc.Finish()

			tc.CallHandler(GETLoginHandler)

			tc.AssertStatus(t, http.StatusOK)
			tc.AssertBodyContains(t, `role="alert"`, tt.want)
		})
	}
}

func TestPOSTLoginHandler_ShouldRejectInvalidFormWithoutCallingProvider(t *testing.T) {
	tc := testutil.NewTestContextWithForm(t, "/login", loginValues("not-an-email", "123"))
	defer tc.Finish()

	tc.CallHandler(POSTLoginHandler)

	tc.AssertStatus(t, http.StatusUnprocessableEntity)
	tc.AssertBodyContains(t, "Invalid email address", "Password must be at least 6 characters", `value="not-an-email"`)
}

func TestPOSTLoginHandler_ShouldFlashProviderError(t *testing.T) {
	tc := testutil.NewTestContextWithForm(t, "/login", loginValues("ana@example.com", "secret-password"))
	tc.WithHeader("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15")
	defer tc.Finish()

	providerErr := &authentication.ProviderError{Op: "sign_in", Message: "The provided credentials are invalid, check for spelling mistakes in your password or username, email address, or phone number.", Status: 400}
	tc.MockIdentity.EXPECT().SignIn(tc.AppContext, "ana@example.com", "secret-password").Return(nil, providerErr)

	var flash *models.Flash
	tc.ExpectFlash(&flash)

	tc.CallHandler(POSTLoginHandler)

	tc.AssertRedirect(t, http.StatusSeeOther, "/login")
	require.NotNil(t, flash)
	assert.Equal(t, models.FlashError, flash.Kind)
	assert.Equal(t, providerErr.Message, flash.Description)

	tc.AssertLogsContainMessage(t, slog.LevelWarn, "sign in failed")
	tc.AssertLogsNotContain(t, "secret-password")
	tc.AssertLogsNotContain(t, "ana@example.com")

	browser, ok := tc.LogHandler.Attr("sign in failed", "browser")
	require.True(t, ok)
	assert.Equal(t, "Safari", browser)
}

func TestPOSTLoginHandler_ShouldStripMarkupFromProviderError(t *testing.T) {
	tc := testutil.NewTestContextWithForm(t, "/login", loginValues("ana@example.com", "secret-password"))
	defer tc.Finish()

	tc.MockIdentity.EXPECT().SignIn(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, &authentication.ProviderError{Op: "sign_in", Message: "<b>Account</b> <script>x()</script>locked"})

	var flash *models.Flash
	tc.ExpectFlash(&flash)

	tc.CallHandler(POSTLoginHandler)

	require.NotNil(t, flash)
	assert.Equal(t, "Account locked", flash.Description)
}

func TestPOSTLoginHandler_ShouldUseGenericMessageForUnknownErrors(t *testing.T) {
	tc := testutil.NewTestContextWithForm(t, "/login", loginValues("ana@example.com", "secret-password"))
	defer tc.Finish()

	tc.MockIdentity.EXPECT().SignIn(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("dial tcp: connection refused"))

	var flash *models.Flash
	tc.ExpectFlash(&flash)

	tc.CallHandler(POSTLoginHandler)

	tc.AssertRedirect(t, http.StatusSeeOther, "/login")
	require.NotNil(t, flash)
	assert.Equal(t, "Something went wrong. Please try again.", flash.Description)
}

func TestPOSTLoginHandler_ShouldEstablishSession(t *testing.T) {
	tc := testutil.NewTestContextWithForm(t, "/login", loginValues(" Ana@Example.com ", "secret-password"))
	defer tc.Finish()

	session := testutil.TestSession()
	tc.MockIdentity.EXPECT().SignIn(tc.AppContext, "ana@example.com", "secret-password").Return(session, nil)
	tc.ExpectCreateSession(session, nil)

	tc.CallHandler(POSTLoginHandler)

	tc.AssertRedirect(t, http.StatusSeeOther, "/dashboard")
	assert.Same(t, session, tc.AppContext.Session)
	tc.AssertLogsContainMessage(t, slog.LevelInfo, "user signed in")
	tc.AssertLogsNotContain(t, session.Token)
}

func TestPOSTLoginHandler_ShouldRedirectToLoginWhenSessionCannotBeStored(t *testing.T) {
	tc := testutil.NewTestContextWithForm(t, "/login", loginValues("ana@example.com", "secret-password"))
	defer tc.Finish()

	session := testutil.TestSession()
	tc.MockIdentity.EXPECT().SignIn(gomock.Any(), gomock.Any(), gomock.Any()).Return(session, nil)
	tc.ExpectCreateSession(session, errors.New("redis: connection refused"))
	tc.MockSession.EXPECT().SetFlash(tc.AppContext, gomock.Any())

	tc.CallHandler(POSTLoginHandler)

	tc.AssertRedirect(t, http.StatusSeeOther, "/login")
	assert.Nil(t, tc.AppContext.Session)
	tc.AssertLogsContainMessage(t, slog.LevelError, "failed to create session")
}

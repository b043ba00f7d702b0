package handlers

import (
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

func signupValues(name, email, password string) url.Values {
	return url.Values{"name": {name}, "email": {email}, "password": {password}}
}

func TestGETSignupHandler(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/signup")
	defer tc.Finish()

	tc.CallHandler(GETSignupHandler)

	tc.AssertStatus(t, http.StatusOK)
	tc.AssertBodyContains(t, `action="/signup"`, `name="name"`)
}

func TestPOSTSignupHandler_ShouldRejectInvalidForm(t *testing.T) {
	tc := testutil.NewTestContextWithForm(t, "/signup", signupValues("A", "ana@example.com", "short"))
	defer tc.Finish()

	tc.CallHandler(POSTSignupHandler)

	tc.AssertStatus(t, http.StatusUnprocessableEntity)
	tc.AssertBodyContains(t, "Name must be at least 2 characters", "Password must be at least 8 characters", `value="ana@example.com"`)
}

func TestPOSTSignupHandler_ShouldRenderPendingConfirmation(t *testing.T) {
	tc := testutil.NewTestContextWithForm(t, "/signup", signupValues("Ana Souza", "ana@example.com", "longenough"))
	defer tc.Finish()

	tc.MockIdentity.EXPECT().SignUp(tc.AppContext, "Ana Souza", "ana@example.com", "longenough").
		Return(&models.SignUpResult{UserID: "user-1", Email: "ana@example.com"}, nil)

	tc.CallHandler(POSTSignupHandler)

	tc.AssertStatus(t, http.StatusOK)
	tc.AssertBodyContains(t, "ana@example.com")
	assert.Nil(t, tc.AppContext.Session)
	tc.AssertLogsContainMessage(t, slog.LevelInfo, "user signed up, awaiting confirmation")
}

func TestPOSTSignupHandler_ShouldSignInWhenProviderIssuesSession(t *testing.T) {
	tc := testutil.NewTestContextWithForm(t, "/signup", signupValues("Ana Souza", "ana@example.com", "longenough"))
	defer tc.Finish()

	session := testutil.TestSession()
	tc.MockIdentity.EXPECT().SignUp(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&models.SignUpResult{UserID: session.UserID, Email: session.Email, Session: session}, nil)
	tc.ExpectCreateSession(session, nil)

	tc.CallHandler(POSTSignupHandler)

	tc.AssertRedirect(t, http.StatusSeeOther, "/dashboard")
	assert.Same(t, session, tc.AppContext.Session)
}

func TestPOSTSignupHandler_ShouldFlashProviderError(t *testing.T) {
	tc := testutil.NewTestContextWithForm(t, "/signup", signupValues("Ana Souza", "ana@example.com", "longenough"))
	defer tc.Finish()

	tc.MockIdentity.EXPECT().SignUp(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, &authentication.ProviderError{Op: "sign_up", Message: "An account with the same identifier already exists.", Status: 400})

	var flash *models.Flash
	tc.ExpectFlash(&flash)

	tc.CallHandler(POSTSignupHandler)

	tc.AssertRedirect(t, http.StatusSeeOther, "/signup")
	require.NotNil(t, flash)
	assert.Equal(t, "Sign up failed", flash.Title)
	assert.Equal(t, "An account with the same identifier already exists.", flash.Description)
	tc.AssertLogsNotContain(t, "longenough")
}

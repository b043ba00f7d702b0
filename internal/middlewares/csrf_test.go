package middlewares_test

import (
	"log/slog"
	"net/http"
	"net/url"
	"testing"

	"smartflow/internal/middlewares"
	"smartflow/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestCSRF_ShouldIssueTokenOnFirstPageLoad(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/login")
	tc.AppContext.CSRFToken = ""
	defer tc.Finish()

	var issued string
	tc.MockSession.EXPECT().GetCSRFToken(tc.AppContext).Return("")
	tc.MockSession.EXPECT().SetCSRFToken(tc.AppContext, gomock.Any()).Do(func(_ *middlewares.AppContext, token string) {
		issued = token
	})

	next := &recordingHandler{}
	tc.ServeMiddleware(middlewares.CSRF, next)

	assert.True(t, next.called)
	_, err := uuid.Parse(issued)
	assert.NoError(t, err)
	assert.Equal(t, issued, tc.AppContext.CSRFToken)
}

func TestCSRF_ShouldReuseSessionToken(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/login")
	defer tc.Finish()

	tc.MockSession.EXPECT().GetCSRFToken(tc.AppContext).Return("existing-token")

	next := &recordingHandler{}
	tc.ServeMiddleware(middlewares.CSRF, next)

	assert.True(t, next.called)
	assert.Equal(t, "existing-token", tc.AppContext.CSRFToken)
}

func TestCSRF_UnsafeMethods(t *testing.T) {
	tests := []struct {
		name       string
		form       url.Values
		header     string
		session    string
		wantStatus int
		wantCalled bool
	}{
		{name: "matching form field", form: url.Values{"csrf_token": {"tok"}}, session: "tok", wantStatus: http.StatusOK, wantCalled: true},
		{name: "matching header", form: url.Values{}, header: "tok", session: "tok", wantStatus: http.StatusOK, wantCalled: true},
		{name: "missing token", form: url.Values{}, session: "tok", wantStatus: http.StatusForbidden},
		{name: "wrong token", form: url.Values{"csrf_token": {"other"}}, session: "tok", wantStatus: http.StatusForbidden},
		{name: "no session token", form: url.Values{"csrf_token": {"tok"}}, session: "", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewTestContextWithForm(t, "/login", tt.form)
			if tt.header != "" {
				tc.WithHeader(middlewares.CSRFHeader, tt.header)
			}
			defer tc.Finish()

			tc.MockSession.EXPECT().GetCSRFToken(tc.AppContext).Return(tt.session)

			next := &recordingHandler{}
			tc.ServeMiddleware(middlewares.CSRF, next)

			assert.Equal(t, tt.wantCalled, next.called)
			tc.AssertStatus(t, tt.wantStatus)
			if !tt.wantCalled {
				tc.AssertLogsContainMessage(t, slog.LevelWarn, "csrf validation failed")
			}
		})
	}
}

package middlewares_test

import (
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"smartflow/internal/authentication"
	"smartflow/internal/middlewares"
	"smartflow/internal/models"
	"smartflow/internal/testutil"

	"github.com/stretchr/testify/assert"
)

type recordingHandler struct {
	called  bool
	session *models.Session
}

func (h *recordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	if appCtx := middlewares.GetAppContext(r); appCtx != nil {
		h.session = appCtx.Session
	}
	w.WriteHeader(http.StatusOK)
}

func TestRequireSession_ShouldRedirectAnonymousToLogin(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/dashboard")
	defer tc.Finish()

	next := &recordingHandler{}
	tc.ServeMiddleware(middlewares.RequireSession, next)

	assert.False(t, next.called)
	tc.AssertRedirect(t, http.StatusFound, "/login")
}

func TestRequireSession_ShouldRedirectExpiredSession(t *testing.T) {
	session := testutil.TestSession()
	session.ExpiresAt = time.Now().Add(-time.Minute)

	tc := testutil.NewTestContextWithURL(t, "GET", "/dashboard").WithSession(session)
	defer tc.Finish()

	next := &recordingHandler{}
	tc.ServeMiddleware(middlewares.RequireSession, next)

	assert.False(t, next.called)
	tc.AssertRedirect(t, http.StatusFound, "/login")
}

func TestRequireSession_ShouldAllowSignedInUser(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/dashboard").WithSession(testutil.TestSession())
	defer tc.Finish()

	next := &recordingHandler{}
	tc.ServeMiddleware(middlewares.RequireSession, next)

	assert.True(t, next.called)
	tc.AssertStatus(t, http.StatusOK)
}

func TestRequireSessionOr_ShouldCarryLoginError(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/reset-password")
	defer tc.Finish()

	next := &recordingHandler{}
	tc.ServeMiddleware(middlewares.RequireSessionOr(authentication.LoginErrorNoSession), next)

	assert.False(t, next.called)
	tc.AssertRedirect(t, http.StatusFound, "/login?error=no_session")
}

func TestRedirectIfAuthenticated(t *testing.T) {
	for _, path := range []string{"/login", "/signup", "/forgot-password"} {
		t.Run(path+" signed in", func(t *testing.T) {
			tc := testutil.NewTestContextWithURL(t, "GET", path).WithSession(testutil.TestSession())
			defer tc.Finish()

			next := &recordingHandler{}
			tc.ServeMiddleware(middlewares.RedirectIfAuthenticated, next)

			assert.False(t, next.called)
			tc.AssertRedirect(t, http.StatusFound, "/dashboard")
		})

		t.Run(path+" anonymous", func(t *testing.T) {
			tc := testutil.NewTestContextWithURL(t, "GET", path)
			defer tc.Finish()

			next := &recordingHandler{}
			tc.ServeMiddleware(middlewares.RedirectIfAuthenticated, next)

			assert.True(t, next.called)
		})
	}
}

func TestLoadSession_ShouldPlaceStoredSessionOnContext(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/dashboard")
	defer tc.Finish()

	session := testutil.TestSession()
	tc.MockSession.EXPECT().GetSession(tc.AppContext).Return(session, true)

	next := &recordingHandler{}
	tc.ServeMiddleware(middlewares.LoadSession, next)

	assert.True(t, next.called)
	assert.Same(t, session, next.session)
}

func TestLoadSession_ShouldLeaveAnonymousRequestsAlone(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/login")
	defer tc.Finish()

	tc.MockSession.EXPECT().GetSession(tc.AppContext).Return(nil, false)

	next := &recordingHandler{}
	tc.ServeMiddleware(middlewares.LoadSession, next)

	assert.True(t, next.called)
	assert.Nil(t, next.session)
}

func TestLoadSession_Revalidate(t *testing.T) {
	revalidating := func() *testutil.TestContext {
		tc := testutil.NewTestContextWithURL(t, "GET", "/dashboard")
		cfg := testutil.TestConfig()
		cfg.Sessions.Revalidate = true
		return tc.WithConfig(cfg)
	}

	t.Run("refreshes stored session", func(t *testing.T) {
		tc := revalidating()
		defer tc.Finish()

		stored := testutil.TestSession()
		fresh := &models.Session{UserID: stored.UserID, Email: "new@example.com", ExpiresAt: time.Now().Add(2 * time.Hour)}

		tc.MockSession.EXPECT().GetSession(tc.AppContext).Return(stored, true)
		tc.MockIdentity.EXPECT().GetSession(tc.AppContext, stored.Token).Return(fresh, nil)
		tc.MockSession.EXPECT().UpdateSession(tc.AppContext, fresh)

		next := &recordingHandler{}
		tc.ServeMiddleware(middlewares.LoadSession, next)

		assert.Same(t, fresh, next.session)
		assert.Equal(t, stored.Token, fresh.Token)
		assert.Equal(t, stored.Provider, fresh.Provider)
	})

	t.Run("revoked session logs out", func(t *testing.T) {
		tc := revalidating()
		defer tc.Finish()

		stored := testutil.TestSession()
		tc.MockSession.EXPECT().GetSession(tc.AppContext).Return(stored, true)
		tc.MockIdentity.EXPECT().GetSession(tc.AppContext, stored.Token).Return(nil, authentication.ErrNoSession)
		tc.MockSession.EXPECT().Logout(tc.AppContext).Return(nil)

		next := &recordingHandler{}
		tc.ServeMiddleware(middlewares.LoadSession, next)

		assert.True(t, next.called)
		assert.Nil(t, next.session)
		tc.AssertLogsContainMessage(t, slog.LevelInfo, "provider session no longer valid")
	})

	t.Run("provider outage keeps stored copy", func(t *testing.T) {
		tc := revalidating()
		defer tc.Finish()

		stored := testutil.TestSession()
		tc.MockSession.EXPECT().GetSession(tc.AppContext).Return(stored, true)
		tc.MockIdentity.EXPECT().GetSession(tc.AppContext, stored.Token).Return(nil, errors.New("connection refused"))

		next := &recordingHandler{}
		tc.ServeMiddleware(middlewares.LoadSession, next)

		assert.Same(t, stored, next.session)
		tc.AssertLogsContainMessage(t, slog.LevelWarn, "unable to revalidate session, using stored copy")
	})
}

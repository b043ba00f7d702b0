package testutil

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"smartflow/internal/config"
	"smartflow/internal/middlewares"
	"smartflow/internal/mocks"
	"smartflow/internal/models"
	"smartflow/internal/web"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"
)

// TestContext holds everything needed for testing
type TestContext struct {
	AppContext     *middlewares.AppContext
	Request        *http.Request
	Response       *httptest.ResponseRecorder
	MockController *gomock.Controller
	MockSession    *mocks.MockSessionProvider
	MockIdentity   *mocks.MockIdentityProvider
	MockOAuth      *mocks.MockOAuthProvider
	LogHandler     *TestLogHandler
}

const TestOAuthProvider = "google"

// TestConfig returns a config with the defaults LoadConfig would apply.
func TestConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Port: 3000, SiteURL: "http://localhost:3000"},
		Log:       config.DefaultLogConfig,
		Sessions:  config.DefaultSessionConfig,
		Identity:  config.DefaultIdentityConfig,
		RateLimit: config.DefaultRateLimitConfig,
	}
}

var renderer *web.Renderer

func testRenderer(t *testing.T) *web.Renderer {
	t.Helper()
	if renderer == nil {
		r, err := web.NewRenderer()
		if err != nil {
			t.Fatalf("failed to build renderer: %v", err)
		}
		renderer = r
	}
	return renderer
}

func NewTestContext(t *testing.T) *TestContext {
	return NewTestContextWithURL(t, http.MethodGet, "/")
}

// NewTestContextWithURL creates a complete test setup with sensible defaults
func NewTestContextWithURL(t *testing.T, method, target string) *TestContext {
	return newTestContext(t, httptest.NewRequest(method, target, nil))
}

// NewTestContextWithForm builds a urlencoded POST request carrying values.
func NewTestContextWithForm(t *testing.T, target string, values url.Values) *TestContext {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return newTestContext(t, req)
}

func newTestContext(t *testing.T, req *http.Request) *TestContext {
	logHandler := NewTestLogHandler()
	logger := slog.New(logHandler)

	// Create mock controller
	ctrl := gomock.NewController(t)

	// Create mocks
	mockSession := mocks.NewMockSessionProvider(ctrl)
	mockIdentity := mocks.NewMockIdentityProvider(ctrl)
	mockOAuth := mocks.NewMockOAuthProvider(ctrl)
	mockOAuth.EXPECT().Name().Return(TestOAuthProvider).AnyTimes()

	// Rendering consumes the pending flash.
	mockSession.EXPECT().PopFlash(gomock.Any()).Return(nil).AnyTimes()

	rr := httptest.NewRecorder()

	appCtx := &middlewares.AppContext{
		Context:        req.Context(),
		Config:         TestConfig(),
		Logger:         logger,
		SessionManager: mockSession,
		Identity:       mockIdentity,
		OAuth:          middlewares.OAuthProviders{TestOAuthProvider: mockOAuth},
		Renderer:       testRenderer(t),
		CSRFToken:      "test-csrf-token",
		Request:        req,
		Response:       rr,
	}

	return &TestContext{
		AppContext:     appCtx,
		Request:        req,
		Response:       rr,
		MockController: ctrl,
		MockSession:    mockSession,
		MockIdentity:   mockIdentity,
		MockOAuth:      mockOAuth,
		LogHandler:     logHandler,
	}
}

// Finish should be called at the end of tests to clean up mocks
func (tc *TestContext) Finish() {
	if tc.MockController != nil {
		tc.MockController.Finish()
	}
}

func (tc *TestContext) AssertLogContains(t *testing.T, level slog.Level, message string) {
	t.Helper()
	if !tc.LogHandler.ContainsMessage(level, message) {
		t.Errorf("Expected to find log entry with level %v containing message: %s", level, message)
	}
}

func (tc *TestContext) AssertLogsContainMessage(t *testing.T, level slog.Level, message string) {
	t.Helper()
	tc.AssertLogContains(t, level, message)
}

// AssertLogsNotContain fails when any record message or string attribute contains needle.
func (tc *TestContext) AssertLogsNotContain(t *testing.T, needle string) {
	t.Helper()
	if record, ok := tc.LogHandler.FindSubstring(needle); ok {
		t.Errorf("Expected logs not to contain %q, found in %q", needle, record.Message)
	}
}

func (tc *TestContext) AssertLogCount(t *testing.T, level slog.Level, expectedCount int) {
	t.Helper()
	count := tc.LogHandler.CountByLevel(level)
	if count != expectedCount {
		t.Errorf("Expected %d log entries at level %v, got %d", expectedCount, level, count)
	}
}

func (tc *TestContext) GetLogRecords() []TestLogRecord {
	return tc.LogHandler.GetRecords()
}

// CallHandler executes a handler with the test context
func (tc *TestContext) CallHandler(handler middlewares.AppHandler) {
	handler(tc.AppContext)
}

// ServeMiddleware runs a net/http middleware with the AppContext attached to the request, the way
// AppContextMiddleware does in the server.
func (tc *TestContext) ServeMiddleware(mw func(http.Handler) http.Handler, next http.Handler) {
	req := middlewares.WithAppContext(tc.Request, tc.AppContext)
	mw(next).ServeHTTP(tc.Response, req)
}

// AssertStatus checks the HTTP status code
func (tc *TestContext) AssertStatus(t *testing.T, expectedStatus int) {
	t.Helper()
	if tc.Response.Code != expectedStatus {
		t.Errorf("Expected status %d, got %d", expectedStatus, tc.Response.Code)
	}
}

// AssertLocationHeader checks the redirect target.
func (tc *TestContext) AssertLocationHeader(t *testing.T, expected string) {
	t.Helper()
	if location := tc.Response.Header().Get("Location"); location != expected {
		t.Errorf("Expected Location %q, got %q", expected, location)
	}
}

// AssertRedirect checks both the status and the Location header.
func (tc *TestContext) AssertRedirect(t *testing.T, status int, location string) {
	t.Helper()
	tc.AssertStatus(t, status)
	tc.AssertLocationHeader(t, location)
}

// AssertContentType checks the content type header
func (tc *TestContext) AssertContentType(t *testing.T, expectedType string) {
	t.Helper()
	if ct := tc.Response.Header().Get("Content-Type"); ct != expectedType {
		t.Errorf("Expected content type %s, got %s", expectedType, ct)
	}
}

func (tc *TestContext) AssertBodyContains(t *testing.T, substrings ...string) {
	t.Helper()
	body := tc.Response.Body.String()
	for _, s := range substrings {
		if !strings.Contains(body, s) {
			t.Errorf("Expected body to contain %q", s)
		}
	}
}

func (tc *TestContext) AssertBodyNotContains(t *testing.T, substrings ...string) {
	t.Helper()
	body := tc.Response.Body.String()
	for _, s := range substrings {
		if strings.Contains(body, s) {
			t.Errorf("Expected body not to contain %q", s)
		}
	}
}

// GetJSONResponse parses the response body as JSON
func (tc *TestContext) GetJSONResponse(t *testing.T) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(tc.Response.Body.Bytes(), &response); err != nil {
		t.Fatalf("Could not parse JSON response: %v", err)
	}
	return response
}

// AssertJSONField checks a specific field in a JSON response
func (tc *TestContext) AssertJSONField(t *testing.T, field string, expected any) {
	t.Helper()
	response := tc.GetJSONResponse(t)
	if actual, ok := response[field]; !ok || actual != expected {
		t.Errorf("Expected %s to be %v, got %v", field, expected, response[field])
	}
}

func (tc *TestContext) AssertJSONBool(t *testing.T, field string, expected bool) {
	t.Helper()
	response := tc.GetJSONResponse(t)
	actual, exists := response[field]

	if !exists {
		t.Errorf("Field %s not found in response", field)
		return
	}

	actualBool, ok := actual.(bool)
	if !ok {
		t.Errorf("Expected %s to be a boolean, got %T", field, actual)
		return
	}

	if actualBool != expected {
		t.Errorf("Expected %s to be %v, got %v", field, expected, actualBool)
	}
}

// AssertJSONString checks a specific string field in a JSON response
func (tc *TestContext) AssertJSONString(t *testing.T, field string, expected string) {
	t.Helper()
	response := tc.GetJSONResponse(t)
	actual, exists := response[field]

	if !exists {
		t.Errorf("Field %s not found in response", field)
		return
	}

	actualString, ok := actual.(string)
	if !ok {
		t.Errorf("Expected %s to be a string, got %T", field, actual)
		return
	}

	if actualString != expected {
		t.Errorf("Expected %s to be %q, got %q", field, expected, actualString)
	}
}

// AssertJSONObject validates an object field with expected key-value pairs
func (tc *TestContext) AssertJSONObject(t *testing.T, field string, expectedFields map[string]interface{}) {
	t.Helper()
	response := tc.GetJSONResponse(t)
	actual, exists := response[field]

	if !exists {
		t.Errorf("Field %s not found in response", field)
		return
	}

	actualObj, ok := actual.(map[string]interface{})
	if !ok {
		t.Errorf("Expected %s to be an object, got %T", field, actual)
		return
	}

	for key, expectedValue := range expectedFields {
		if actualValue, keyExists := actualObj[key]; !keyExists {
			t.Errorf("Expected field %s.%s to exist", field, key)
		} else if actualValue != expectedValue {
			t.Errorf("Expected %s.%s to be %v, got %v", field, key, expectedValue, actualValue)
		}
	}
}

// WithConfig allows you to override the default config for specific tests
func (tc *TestContext) WithConfig(cfg *config.Config) *TestContext {
	tc.AppContext.Config = cfg
	return tc
}

// WithSession marks the request as signed in.
func (tc *TestContext) WithSession(session *models.Session) *TestContext {
	tc.AppContext.Session = session
	return tc
}

// WithoutOAuth removes every configured OAuth provider.
func (tc *TestContext) WithoutOAuth() *TestContext {
	tc.AppContext.OAuth = nil
	return tc
}

// Helper to add query parameters to the request
func (tc *TestContext) WithQueryParam(key, value string) *TestContext {
	q := tc.Request.URL.Query()
	q.Add(key, value)
	tc.Request.URL.RawQuery = q.Encode()
	return tc
}

// WithURLParam sets a chi route parameter as the router would.
func (tc *TestContext) WithURLParam(key, value string) *TestContext {
	rctx := chi.RouteContext(tc.Request.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		tc.Request = tc.Request.WithContext(context.WithValue(tc.Request.Context(), chi.RouteCtxKey, rctx))
		tc.AppContext.Request = tc.Request
		tc.AppContext.Context = tc.Request.Context()
	}
	rctx.URLParams.Add(key, value)
	return tc
}

// Helper to add headers
func (tc *TestContext) WithHeader(key, value string) *TestContext {
	tc.Request.Header.Set(key, value)
	return tc
}

// ExpectCreateSession sets up an expectation for session.CreateSession()
func (tc *TestContext) ExpectCreateSession(session *models.Session, err error) *gomock.Call {
	return tc.MockSession.EXPECT().CreateSession(tc.AppContext, session).Return(err)
}

// ExpectFlash captures the flash handed to the session so the test can inspect it.
func (tc *TestContext) ExpectFlash(flash **models.Flash) *gomock.Call {
	return tc.MockSession.EXPECT().SetFlash(tc.AppContext, gomock.Any()).Do(func(_ *middlewares.AppContext, f *models.Flash) {
		*flash = f
	})
}

// TestSession returns a password session that expires in an hour.
func TestSession() *models.Session {
	return &models.Session{
		UserID:    "user-1",
		Email:     "ana@example.com",
		Name:      "Ana Souza",
		Provider:  models.ProviderPassword,
		Token:     "session-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

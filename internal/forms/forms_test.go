package forms

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_LoginForm(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name       string
		form       LoginForm
		wantFields map[string]string
	}{
		{
			name: "valid",
			form: LoginForm{Email: "nutri@example.com", Password: "secret1"},
		},
		{
			name:       "invalid email",
			form:       LoginForm{Email: "not-an-email", Password: "secret1"},
			wantFields: map[string]string{"email": "Invalid email address"},
		},
		{
			name:       "short password",
			form:       LoginForm{Email: "nutri@example.com", Password: "12345"},
			wantFields: map[string]string{"password": "Password must be at least 6 characters"},
		},
		{
			name: "empty",
			form: LoginForm{},
			wantFields: map[string]string{
				"email":    "This field is required",
				"password": "This field is required",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.Validate(&tt.form)
			if len(tt.wantFields) == 0 {
				assert.Nil(t, errs)
				return
			}
			assert.Equal(t, Errors(tt.wantFields), errs)
		})
	}
}

func TestValidator_SignupForm(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	assert.Nil(t, v.Validate(&SignupForm{Name: "Ana", Email: "ana@example.com", Password: "longenough"}))

	errs := v.Validate(&SignupForm{Name: "A", Email: "ana@example.com", Password: "short"})
	require.NotNil(t, errs)
	assert.Equal(t, "Name must be at least 2 characters", errs.Get("name"))
	assert.Equal(t, "Password must be at least 8 characters", errs.Get("password"))
	assert.False(t, errs.Has("email"))
}

func TestValidator_ResetPasswordForm(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name      string
		form      ResetPasswordForm
		field     string
		wantError string
	}{
		{
			name: "valid",
			form: ResetPasswordForm{Password: "Abcdefg1", ConfirmPassword: "Abcdefg1"},
		},
		{
			name:      "mismatch",
			form:      ResetPasswordForm{Password: "Abcdefg1", ConfirmPassword: "Abcdefg2"},
			field:     "confirmPassword",
			wantError: "Passwords do not match",
		},
		{
			name:      "missing uppercase",
			form:      ResetPasswordForm{Password: "abcdefg1", ConfirmPassword: "abcdefg1"},
			field:     "password",
			wantError: "Password must contain at least one uppercase letter",
		},
		{
			name:      "missing lowercase",
			form:      ResetPasswordForm{Password: "ABCDEFG1", ConfirmPassword: "ABCDEFG1"},
			field:     "password",
			wantError: "Password must contain at least one lowercase letter",
		},
		{
			name:      "missing digit",
			form:      ResetPasswordForm{Password: "Abcdefgh", ConfirmPassword: "Abcdefgh"},
			field:     "password",
			wantError: "Password must contain at least one number",
		},
		{
			name:      "too short",
			form:      ResetPasswordForm{Password: "Ab1", ConfirmPassword: "Ab1"},
			field:     "password",
			wantError: "Password must be at least 8 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.Validate(&tt.form)
			if tt.wantError == "" {
				assert.Nil(t, errs)
				return
			}
			require.NotNil(t, errs)
			assert.Equal(t, tt.wantError, errs.Get(tt.field))
		})
	}
}

func TestParse(t *testing.T) {
	body := url.Values{
		"name":     {"  Ana Souza "},
		"email":    {" Ana@Example.COM "},
		"password": {"Secret123"},
	}
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(body.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var form SignupForm
	require.NoError(t, Parse(req, &form))

	assert.Equal(t, "Ana Souza", form.Name)
	assert.Equal(t, "ana@example.com", form.Email)
	assert.Equal(t, "Secret123", form.Password)
}

func TestRegisterRules_ReportsFailures(t *testing.T) {
	err := registerRules(validator.New(), map[string]*regexp.Regexp{"": reUpper})
	assert.Error(t, err)

	assert.NoError(t, registerRules(validator.New(), passwordRules))
	assert.NotPanics(t, func() { MustNewValidator() })
}

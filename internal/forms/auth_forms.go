package forms

import (
	"net/url"
	"strings"
)

type Form interface {
	bind(values url.Values)
}

type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
}

func (f *LoginForm) bind(values url.Values) {
	f.Email = normalizeEmail(values.Get("email"))
	f.Password = values.Get("password")
}

type SignupForm struct {
	Name     string `form:"name" validate:"required,min=2"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=8"`
}

func (f *SignupForm) bind(values url.Values) {
	f.Name = strings.TrimSpace(values.Get("name"))
	f.Email = normalizeEmail(values.Get("email"))
	f.Password = values.Get("password")
}

type ForgotPasswordForm struct {
	Email string `form:"email" validate:"required,email"`
}

func (f *ForgotPasswordForm) bind(values url.Values) {
	f.Email = normalizeEmail(values.Get("email"))
}

type ResetPasswordForm struct {
	Password        string `form:"password" validate:"required,min=8,has_upper,has_lower,has_digit"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=Password"`
}

func (f *ResetPasswordForm) bind(values url.Values) {
	f.Password = values.Get("password")
	f.ConfirmPassword = values.Get("confirmPassword")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

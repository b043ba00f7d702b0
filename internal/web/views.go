package web

import "smartflow/internal/forms"

// FormView backs the auth form pages.
type FormView struct {
	Values         map[string]string
	Errors         forms.Errors
	Notice         string
	OAuthProviders []string
	Sent           bool
}

func (v FormView) Value(field string) string {
	return v.Values[field]
}

type SignupPendingView struct {
	Email string
}

type DashboardView struct {
	PatientCount  int
	MealPlanCount int
}

type NotFoundView struct {
	Message string
}

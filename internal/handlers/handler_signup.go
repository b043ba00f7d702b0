package handlers

import (
	"net/http"

	"smartflow/internal/authentication"
	"smartflow/internal/forms"
	"smartflow/internal/metrics"
	"smartflow/internal/middlewares"
	"smartflow/internal/web"
)

func GETSignupHandler(ctx *middlewares.AppContext) {
	ctx.Render(http.StatusOK, web.PageSignup, "Create account", web.FormView{})
}

// POSTSignupHandler registers the user. Providers that require email confirmation return no session,
// in which case the "check your email" page is shown instead of signing the user in.
func POSTSignupHandler(ctx *middlewares.AppContext) {
	var form forms.SignupForm
	if err := forms.Parse(ctx.Request, &form); err != nil {
		ctx.Logger.Warn("failed to parse signup form", "error", err)
		ctx.WriteText(http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
		return
	}

	if errs := validate.Validate(&form); errs != nil {
		ctx.Render(http.StatusUnprocessableEntity, web.PageSignup, "Create account", web.FormView{
			Values: map[string]string{"name": form.Name, "email": form.Email},
			Errors: errs,
		})
		return
	}

	result, err := ctx.Identity.SignUp(ctx, form.Name, form.Email, form.Password)
	metrics.RecordAuthEvent(metrics.AuthEventSignUp, err)
	if err != nil {
		ctx.Logger.Warn("sign up failed", requestAttrs(ctx, "email", RedactEmail(form.Email), "error", err)...)
		flashProviderError(ctx, "Sign up failed", err)
		ctx.Redirect("/signup", http.StatusSeeOther)
		return
	}

	if result.PendingConfirmation() {
		ctx.Logger.Info("user signed up, awaiting confirmation", requestAttrs(ctx, "user_id", result.UserID, "email", RedactEmail(result.Email))...)
		ctx.Render(http.StatusOK, web.PageSignupPending, "Check your email", web.SignupPendingView{Email: form.Email})
		return
	}

	if !establishSession(ctx, result.Session) {
		ctx.Redirect(authentication.LoginPath, http.StatusSeeOther)
		return
	}

	ctx.Logger.Info("user signed up", requestAttrs(ctx, "user_id", result.Session.UserID)...)
	ctx.Redirect(authentication.DefaultNextPath, http.StatusSeeOther)
}

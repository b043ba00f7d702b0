package handlers

import (
	"net/http"

	"smartflow/internal/authentication"
	"smartflow/internal/forms"
	"smartflow/internal/metrics"
	"smartflow/internal/middlewares"
	"smartflow/internal/models"
	"smartflow/internal/web"
)

func GETLoginHandler(ctx *middlewares.AppContext) {
	view := web.FormView{OAuthProviders: oauthProviderNames(ctx)}

	if code := ctx.Request.URL.Query().Get("error"); code != "" {
		loginErr := authentication.ParseLoginError(code)
		ctx.Logger.Debug("rendering login error", "code", loginErr.String())
		view.Notice = loginErr.Message()
	}

	ctx.Render(http.StatusOK, web.PageLogin, "Sign in", view)
}

func POSTLoginHandler(ctx *middlewares.AppContext) {
	var form forms.LoginForm
	if err := forms.Parse(ctx.Request, &form); err != nil {
		ctx.Logger.Warn("failed to parse login form", "error", err)
		ctx.WriteText(http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
		return
	}

	if errs := validate.Validate(&form); errs != nil {
		ctx.Render(http.StatusUnprocessableEntity, web.PageLogin, "Sign in", web.FormView{
			Values:         map[string]string{"email": form.Email},
			Errors:         errs,
			OAuthProviders: oauthProviderNames(ctx),
		})
		return
	}

	session, err := ctx.Identity.SignIn(ctx, form.Email, form.Password)
	metrics.RecordAuthEvent(metrics.AuthEventSignIn, err)
	if err != nil {
		ctx.Logger.Warn("sign in failed", requestAttrs(ctx, "email", RedactEmail(form.Email), "error", err)...)
		flashProviderError(ctx, "Sign in failed", err)
		ctx.Redirect(authentication.LoginPath, http.StatusSeeOther)
		return
	}

	if !establishSession(ctx, session) {
		ctx.Flash(models.NewErrorFlash("Sign in failed", authentication.LoginErrorUnknown.Message()))
		ctx.Redirect(authentication.LoginPath, http.StatusSeeOther)
		return
	}

	ctx.Logger.Info("user signed in", requestAttrs(ctx, "user_id", session.UserID, "email", RedactEmail(session.Email))...)
	ctx.Redirect(authentication.DefaultNextPath, http.StatusSeeOther)
}

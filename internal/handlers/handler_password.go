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

func GETForgotPasswordHandler(ctx *middlewares.AppContext) {
	ctx.Render(http.StatusOK, web.PageForgotPassword, "Forgot password", web.FormView{})
}

// POSTForgotPasswordHandler starts a recovery flow. The emailed link lands on /auth/confirm with
// type=recovery, which signs the user in and forwards to the reset form.
func POSTForgotPasswordHandler(ctx *middlewares.AppContext) {
	var form forms.ForgotPasswordForm
	if err := forms.Parse(ctx.Request, &form); err != nil {
		ctx.Logger.Warn("failed to parse forgot password form", "error", err)
		ctx.WriteText(http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
		return
	}

	if errs := validate.Validate(&form); errs != nil {
		ctx.Render(http.StatusUnprocessableEntity, web.PageForgotPassword, "Forgot password", web.FormView{
			Values: map[string]string{"email": form.Email},
			Errors: errs,
		})
		return
	}

	err := ctx.Identity.SendRecoveryEmail(ctx, form.Email, ctx.Config.RecoveryRedirectURL())
	metrics.RecordAuthEvent(metrics.AuthEventRecovery, err)
	if err != nil {
		ctx.Logger.Warn("failed to send recovery email", requestAttrs(ctx, "email", RedactEmail(form.Email), "error", err)...)
		flashProviderError(ctx, "Could not send recovery email", err)
		ctx.Redirect("/forgot-password", http.StatusSeeOther)
		return
	}

	ctx.Logger.Info("recovery email requested", requestAttrs(ctx, "email", RedactEmail(form.Email))...)
	ctx.Render(http.StatusOK, web.PageForgotPassword, "Forgot password", web.FormView{
		Values: map[string]string{"email": form.Email},
		Sent:   true,
	})
}

func GETResetPasswordHandler(ctx *middlewares.AppContext) {
	ctx.Render(http.StatusOK, web.PageResetPassword, "Reset password", web.FormView{})
}

func POSTResetPasswordHandler(ctx *middlewares.AppContext) {
	var form forms.ResetPasswordForm
	if err := forms.Parse(ctx.Request, &form); err != nil {
		ctx.Logger.Warn("failed to parse reset password form", "error", err)
		ctx.WriteText(http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
		return
	}

	if errs := validate.Validate(&form); errs != nil {
		ctx.Render(http.StatusUnprocessableEntity, web.PageResetPassword, "Reset password", web.FormView{Errors: errs})
		return
	}

	err := ctx.Identity.UpdatePassword(ctx, ctx.Session.Token, form.Password)
	metrics.RecordAuthEvent(metrics.AuthEventPasswordReset, err)
	if err != nil {
		ctx.Logger.Warn("password update failed", requestAttrs(ctx, "user_id", ctx.Session.UserID, "error", err)...)
		flashProviderError(ctx, "Password update failed", err)
		ctx.Redirect(authentication.ResetPasswordPath, http.StatusSeeOther)
		return
	}

	ctx.Logger.Info("password updated", requestAttrs(ctx, "user_id", ctx.Session.UserID)...)
	ctx.Flash(models.NewSuccessFlash("Password updated", "Your new password is now active."))
	ctx.Redirect(authentication.DefaultNextPath, http.StatusSeeOther)
}

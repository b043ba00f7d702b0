package handlers

import (
	"net/http"

	"smartflow/internal/authentication"
	"smartflow/internal/metrics"
	"smartflow/internal/middlewares"
	"smartflow/internal/models"
)

// GETConfirmHandler consumes the links sent by email. A token_hash/type pair is verified with the
// identity provider; a bare code is exchanged with the OAuth provider recorded at initiation.
func GETConfirmHandler(ctx *middlewares.AppContext) {
	query := ctx.Request.URL.Query()
	tokenHash := query.Get("token_hash")
	otpParam := query.Get("type")

	switch {
	case tokenHash != "" && otpParam != "":
		otpType, err := models.ParseOTPType(otpParam)
		if err != nil {
			ctx.Logger.Warn("confirmation link has unknown type", "type", otpParam)
			confirmationFailed(ctx)
			return
		}

		session, err := ctx.Identity.VerifyOTP(ctx, tokenHash, otpType)
		metrics.RecordAuthEvent(metrics.AuthEventConfirm, err)
		if err != nil {
			ctx.Logger.Warn("otp verification failed", requestAttrs(ctx, "type", otpType, "error", err)...)
			confirmationFailed(ctx)
			return
		}

		if session != nil && !establishSession(ctx, session) {
			confirmationFailed(ctx)
			return
		}

		if otpType.IsRecovery() {
			ctx.Redirect(authentication.ResetPasswordPath, http.StatusFound)
			return
		}

		if session == nil {
			ctx.Flash(models.NewSuccessFlash("Email confirmed", "You can now sign in."))
		}

		ctx.Logger.Info("email link confirmed", requestAttrs(ctx, "type", otpType)...)
		ctx.Redirect(authentication.SanitizeNext(query.Get("next"), authentication.DefaultNextPath), http.StatusFound)

	case query.Get("code") != "":
		if !exchangeCode(ctx, metrics.AuthEventConfirm) {
			confirmationFailed(ctx)
			return
		}

		ctx.Redirect(authentication.SanitizeNext(query.Get("next"), authentication.DefaultNextPath), http.StatusFound)

	default:
		ctx.Logger.Debug("confirmation link without token or code")
		confirmationFailed(ctx)
	}
}

func confirmationFailed(ctx *middlewares.AppContext) {
	ctx.Redirect(authentication.LoginErrorConfirmationFailed.LoginURL(), http.StatusFound)
}

package handlers

import (
	"fmt"
	"net"
	"strings"

	"smartflow/internal/authentication"
	"smartflow/internal/forms"
	"smartflow/internal/middlewares"
	"smartflow/internal/models"
	"smartflow/internal/web"

	"github.com/avct/uasurfer"
)

var validate = forms.MustNewValidator()

// RedactEmail is used to redact emails (mostly for logs)
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}

	localRunes := []rune(parts[0])
	domain := parts[1]

	if len(localRunes) <= 2 {
		return strings.Repeat("*", len(localRunes)) + "@" + domain
	}

	first := string(localRunes[0])
	last := string(localRunes[len(localRunes)-1])
	middle := strings.Repeat("*", len(localRunes)-2)

	return first + middle + last + "@" + domain
}

// requestAttrs describes the client of an auth event.
func requestAttrs(ctx *middlewares.AppContext, attrs ...any) []any {
	clientIP, _, err := net.SplitHostPort(ctx.Request.RemoteAddr)
	if err != nil {
		clientIP = ctx.Request.RemoteAddr
	}

	ua := uasurfer.Parse(ctx.Request.UserAgent())

	return append([]any{
		"client_ip", clientIP,
		"browser", ua.Browser.Name.StringTrimPrefix(),
		"browser_version", browserVersion(ua.Browser.Version),
		"os", ua.OS.Name.StringTrimPrefix(),
		"device", ua.DeviceType.StringTrimPrefix(),
	}, attrs...)
}

// browserVersion drops trailing zero components, so 17.0.0 logs as "17" and 17.4.0 as "17.4".
func browserVersion(v uasurfer.Version) string {
	switch {
	case v.Major == 0 && v.Minor == 0 && v.Patch == 0:
		return ""
	case v.Patch != 0:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	case v.Minor != 0:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return fmt.Sprintf("%d", v.Major)
	}
}

// flashProviderError queues the provider's message, stripped of markup, for the next page.
func flashProviderError(ctx *middlewares.AppContext, title string, err error) {
	ctx.Flash(models.NewErrorFlash(title, web.PlainText(authentication.UserMessage(err))))
}

// establishSession stores a provider-issued session under a renewed cookie.
func establishSession(ctx *middlewares.AppContext, session *models.Session) bool {
	if err := ctx.SessionManager.CreateSession(ctx, session); err != nil {
		ctx.Logger.Error("failed to create session", requestAttrs(ctx, "user_id", session.UserID, "error", err)...)
		return false
	}

	ctx.Session = session
	return true
}

func oauthProviderNames(ctx *middlewares.AppContext) []string {
	return ctx.OAuth.Names()
}

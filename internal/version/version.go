package version

// Set at build time with -ldflags "-X smartflow/internal/version.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func GetVersion() string {
	return Version
}

func GetFullVersion() string {
	return Version + " (commit: " + GitCommit + ", built: " + BuildTime + ")"
}

// UserAgent identifies this service on outbound calls to the identity provider.
func UserAgent() string {
	return "smartflow/" + Version
}

// Package buildinfo holds build-time metadata injected via -ldflags.
package buildinfo

// Version is the semantic version or tag for this build.
// Inject via: -X github.com/zokybot/zoky-messenger-go/internal/buildinfo.Version=...
var Version = ""

// Commit is the git commit SHA for this build.
// Inject via: -X github.com/zokybot/zoky-messenger-go/internal/buildinfo.Commit=...
var Commit = ""

// Release returns the release name reported to Sentry and /livez.
func Release() string {
	switch {
	case Version != "":
		return "zoky-messenger@" + Version
	case Commit != "":
		return "zoky-messenger@" + Commit
	default:
		return "zoky-messenger@dev"
	}
}

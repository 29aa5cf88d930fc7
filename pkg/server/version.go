package server

// Version is the HearthMUSH version string.
// Override at build time with: go build -ldflags "-X github.com/hearthmush/tinymush/pkg/server.Version=0.2.0"
var Version = "0.2.0"

// VersionString returns the full version display string.
func VersionString() string {
	return "HearthMUSH " + Version
}

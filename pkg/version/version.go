// Package version provides build version information.
// Version is set at build time via ldflags:
// go build -ldflags "-X github.com/hollowroad/pwdrive/pkg/version.Version=1.0.0"
package version

import "runtime"

// Version is the driver client's own version, set at build time.
var Version = "dev"

// DriverVersion is the expected version of the bundled engine driver
// bundle. A launch-server descriptor recorded under a different
// DriverVersion is considered stale by the session broker.
var DriverVersion = "dev"

// UserAgent is a default user agent string, settable at build time.
// Nothing in this module passes it to a launched browser or context.
var UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Full returns the full version string.
func Full() string {
	return Version
}

// GoVersion returns the Go runtime version.
func GoVersion() string {
	return runtime.Version()
}

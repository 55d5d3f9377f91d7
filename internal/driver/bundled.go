package driver

// BundledDriverPath and BundledNodePath are set at build time via
// ldflags, mirroring pkg/version.Version:
//
//	go build -ldflags "-X github.com/hollowroad/pwdrive/internal/driver.BundledDriverPath=/opt/pwdrive/driver.js"
//
// Left empty in a plain `go build`, which falls through Locate's
// remaining lookup steps.
var (
	BundledDriverPath = ""
	BundledNodePath   = ""
)

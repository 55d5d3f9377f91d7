package driver

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// ErrDriverNotFound is returned when no node/driver.js pair can be
// resolved by any of Locate's lookup steps.
var ErrDriverNotFound = errors.New("driver: engine driver not found")

// Override carries caller-supplied paths (typically read from
// config.Config) that take precedence over the bundled path and
// $PATH lookup.
type Override struct {
	NodePath   string
	DriverPath string
}

// Locate resolves the node executable and driver.js bundle to run,
// trying in order: the override, the build-time bundled path, and
// finally exec.LookPath("node") plus a driver.js found alongside it.
func Locate(override Override) (nodePath, driverPath string, err error) {
	nodePath = override.NodePath
	driverPath = override.DriverPath

	if nodePath == "" {
		nodePath = BundledNodePath
	}
	if driverPath == "" {
		driverPath = BundledDriverPath
	}

	if nodePath == "" {
		nodePath, err = exec.LookPath("node")
		if err != nil {
			return "", "", fmt.Errorf("%w: node not on PATH: %v", ErrDriverNotFound, err)
		}
	}

	if driverPath == "" {
		driverPath = filepath.Join(filepath.Dir(nodePath), "driver.js")
	}

	if _, statErr := os.Stat(driverPath); statErr != nil {
		return "", "", fmt.Errorf("%w: %v", ErrDriverNotFound, statErr)
	}

	return nodePath, driverPath, nil
}

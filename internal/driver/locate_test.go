package driver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLocateUsesOverride(t *testing.T) {
	dir := t.TempDir()
	driverPath := filepath.Join(dir, "driver.js")
	if err := os.WriteFile(driverPath, []byte("// stub"), 0o644); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	node, drv, err := Locate(Override{NodePath: "/usr/bin/env", DriverPath: driverPath})
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if node != "/usr/bin/env" {
		t.Fatalf("node path = %q", node)
	}
	if drv != driverPath {
		t.Fatalf("driver path = %q", drv)
	}
}

func TestLocateMissingDriverIsNotFound(t *testing.T) {
	_, _, err := Locate(Override{NodePath: "/usr/bin/env", DriverPath: filepath.Join(t.TempDir(), "missing.js")})
	if !errors.Is(err, ErrDriverNotFound) {
		t.Fatalf("expected ErrDriverNotFound, got %v", err)
	}
}

func TestLocateNoDriverConfigured(t *testing.T) {
	_, _, err := Locate(Override{NodePath: "/usr/bin/env"})
	if !errors.Is(err, ErrDriverNotFound) {
		t.Fatalf("expected ErrDriverNotFound, got %v", err)
	}
}

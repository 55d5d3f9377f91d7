package authstate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathYieldsNil(t *testing.T) {
	v, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if !v.Nil() {
		t.Fatal("expected Nil value for empty path")
	}
}

func TestLoadMissingFileIsAuthLoadError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	var loadErr *AuthLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected *AuthLoadError, got %v", err)
	}
}

func TestLoadParsesStoredJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	if err := os.WriteFile(path, []byte(`{"cookies":[{"name":"sid","value":"abc"}]}`), 0600); err != nil {
		t.Fatal(err)
	}

	v, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := v.Get("cookies").Arr()[0].Get("name").Str(); got != "sid" {
		t.Fatalf("cookies.0.name = %q, want sid", got)
	}
}

func TestAtomicWriteFileProducesRestrictivePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	if err := atomicWriteFile(path, []byte(`{"cookies":[]}`)); err != nil {
		t.Fatalf("atomicWriteFile: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != fileMode {
		t.Fatalf("mode = %v, want %v", perm, os.FileMode(fileMode))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"cookies":[]}` {
		t.Fatalf("contents = %q", raw)
	}
}

func TestAtomicWriteFileLeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	if err := atomicWriteFile(path, []byte(`{}`)); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "state.json" {
		t.Fatalf("expected only state.json in dir, got %v", entries)
	}
}

func TestFingerprintEmptyPath(t *testing.T) {
	fp, err := Fingerprint("")
	if err != nil {
		t.Fatalf("Fingerprint(\"\"): %v", err)
	}
	if fp != "" {
		t.Fatalf("fingerprint = %q, want empty", fp)
	}
}

func TestFingerprintIsStableAndSensitiveToContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	os.WriteFile(path, []byte(`{"a":1}`), 0600)
	fp1, err := Fingerprint(path)
	if err != nil {
		t.Fatal(err)
	}
	fp2, err := Fingerprint(path)
	if err != nil {
		t.Fatal(err)
	}
	if fp1 != fp2 {
		t.Fatal("fingerprint should be stable across calls for unchanged content")
	}

	os.WriteFile(path, []byte(`{"a":2}`), 0600)
	fp3, err := Fingerprint(path)
	if err != nil {
		t.Fatal(err)
	}
	if fp3 == fp1 {
		t.Fatal("fingerprint should change when content changes")
	}
}

func TestLoadProfilesMissingFileYieldsEmptySet(t *testing.T) {
	profiles, err := LoadProfiles(filepath.Join(t.TempDir(), "profiles.yaml"))
	if err != nil {
		t.Fatalf("LoadProfiles: %v", err)
	}
	if len(profiles) != 0 {
		t.Fatalf("expected empty profile set, got %v", profiles)
	}
}

func TestLoadProfilesResolvesNamedEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	doc := "work:\n  browser_kind: firefox\n  headless: false\n  auth_file: /tmp/work-auth.json\n"
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatal(err)
	}

	profiles, err := LoadProfiles(path)
	if err != nil {
		t.Fatalf("LoadProfiles: %v", err)
	}
	entry, ok := profiles.Resolve("work")
	if !ok {
		t.Fatal("expected profile \"work\" to resolve")
	}
	if entry.BrowserKind != "firefox" || entry.Headless || entry.AuthFile != "/tmp/work-auth.json" {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	if _, ok := profiles.Resolve("missing"); ok {
		t.Fatal("expected unknown profile to not resolve")
	}
}

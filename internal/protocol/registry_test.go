package protocol

import (
	"testing"

	"github.com/hollowroad/pwdrive/internal/wire"
)

func newTestRegistry() *Registry {
	return NewRegistry(nil)
}

func TestRegistryCreateUnknownTypeIsTracked(t *testing.T) {
	reg := newTestRegistry()

	obj, err := reg.Create("", "SomeFutureType", "guid-1", wire.Nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if obj.Type() != "SomeFutureType" {
		t.Fatalf("type = %q", obj.Type())
	}

	got, ok := reg.Lookup("guid-1")
	if !ok || got != obj {
		t.Fatal("expected unknown-typed object to be registered and retrievable")
	}
}

func TestRegistryCreateDuplicateGUIDFails(t *testing.T) {
	reg := newTestRegistry()
	if _, err := reg.Create("", "Page", "guid-1", wire.Nil); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := reg.Create("", "Page", "guid-1", wire.Nil); err == nil {
		t.Fatal("expected duplicate guid to fail")
	}
}

func TestRegistryDisposeRemovesDescendants(t *testing.T) {
	reg := newTestRegistry()
	if _, err := reg.Create("", "Browser", "browser-1", wire.Nil); err != nil {
		t.Fatalf("create browser: %v", err)
	}
	if _, err := reg.Create("browser-1", "BrowserContext", "ctx-1", wire.Nil); err != nil {
		t.Fatalf("create context: %v", err)
	}
	if _, err := reg.Create("ctx-1", "Page", "page-1", wire.Nil); err != nil {
		t.Fatalf("create page: %v", err)
	}

	reg.Dispose("browser-1")

	for _, guid := range []string{"browser-1", "ctx-1", "page-1"} {
		if _, ok := reg.Lookup(guid); ok {
			t.Fatalf("expected %s to be removed", guid)
		}
	}
}

func TestRegistryDisposeLeafOnly(t *testing.T) {
	reg := newTestRegistry()
	if _, err := reg.Create("", "Browser", "browser-1", wire.Nil); err != nil {
		t.Fatalf("create browser: %v", err)
	}
	if _, err := reg.Create("browser-1", "BrowserContext", "ctx-1", wire.Nil); err != nil {
		t.Fatalf("create context: %v", err)
	}

	reg.Dispose("ctx-1")

	if _, ok := reg.Lookup("ctx-1"); ok {
		t.Fatal("expected ctx-1 removed")
	}
	if _, ok := reg.Lookup("browser-1"); !ok {
		t.Fatal("expected browser-1 to survive child dispose")
	}
}

func TestRegistryAdoptReparents(t *testing.T) {
	reg := newTestRegistry()
	reg.Create("", "Browser", "browser-1", wire.Nil)
	reg.Create("", "Browser", "browser-2", wire.Nil)
	reg.Create("browser-1", "BrowserContext", "ctx-1", wire.Nil)

	reg.Adopt("ctx-1", "browser-2")

	reg.mu.RLock()
	_, stillUnderOld := reg.objects["browser-1"].Children["ctx-1"]
	_, underNew := reg.objects["browser-2"].Children["ctx-1"]
	newParent := reg.objects["ctx-1"].ParentGUID
	reg.mu.RUnlock()

	if stillUnderOld {
		t.Fatal("expected ctx-1 removed from browser-1's children")
	}
	if !underNew {
		t.Fatal("expected ctx-1 added to browser-2's children")
	}
	if newParent != "browser-2" {
		t.Fatalf("parent guid = %q", newParent)
	}
}

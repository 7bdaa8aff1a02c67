package sources

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skelly-dev/doxsearch/internal/searchdata"
)

func TestManifestResolve(t *testing.T) {
	manifest, err := LoadManifest(filepath.Join("testdata", "std.yaml"))
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}
	symbols, err := manifest.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(symbols) != 5 {
		t.Fatalf("expected 5 symbols, got %d", len(symbols))
	}

	want := []searchdata.Symbol{
		{Name: "vector", Scope: "std", Section: "classes", URL: "https://en.cppreference.com/w/cpp/container/vector.html", External: true},
		{Name: "vector", Scope: "std::pmr", Section: "classes", URL: "https://en.cppreference.com/w/cpp/container/vector.html", External: true},
		{Name: "va_list", Section: "typedefs", URL: "https://en.cppreference.com/w/cpp/utility/variadic/va_list.html", External: true},
		{Name: "value_compare", Scope: "std::map< K, T >", Section: "classes", URL: "https://en.cppreference.com/w/cpp/container/map/value_compare.html", External: true},
		{Name: "hkmpc", Section: "classes", URL: "https://en.cppreference.com/local/classhkmpc.html"},
	}
	for i := range want {
		if symbols[i] != want[i] {
			t.Fatalf("symbol %d: expected %#v, got %#v", i, want[i], symbols[i])
		}
	}
}

func TestDecodeManifestRejectsUnknownFieldsAndKinds(t *testing.T) {
	if _, err := DecodeManifest([]byte("symbols:\n  - name: x\n    href: x.html\n")); err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}

	manifest, err := DecodeManifest([]byte("symbols:\n  - name: x\n    kind: widget\n    url: x.html\n"))
	if err != nil {
		t.Fatalf("DecodeManifest failed: %v", err)
	}
	if _, err := manifest.Resolve(); err == nil || !strings.Contains(err.Error(), "widget") {
		t.Fatalf("expected unknown kind error, got %v", err)
	}

	empty, err := DecodeManifest(nil)
	if err != nil || len(empty.Symbols) != 0 {
		t.Fatalf("expected an empty manifest, got %#v, %v", empty, err)
	}
}

func TestManifestEmptyURLFailsInBuilder(t *testing.T) {
	manifest, err := DecodeManifest([]byte("base: https://example.com/\nsymbols:\n  - name: x\n    kind: class\n"))
	if err != nil {
		t.Fatalf("DecodeManifest failed: %v", err)
	}
	symbols, err := manifest.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if err := searchdata.NewBuilder().AddAll(symbols); !errors.Is(err, searchdata.ErrEmptyTarget) {
		t.Fatalf("expected ErrEmptyTarget, got %v", err)
	}
}

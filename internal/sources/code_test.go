package sources

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/skelly-dev/doxsearch/internal/languages"
	"github.com/skelly-dev/doxsearch/internal/searchdata"
)

func findSymbol(t *testing.T, symbols []searchdata.Symbol, section, scope, name string) []searchdata.Symbol {
	t.Helper()
	var out []searchdata.Symbol
	for _, sym := range symbols {
		if sym.Section == section && sym.Scope == scope && sym.Name == name {
			out = append(out, sym)
		}
	}
	if len(out) == 0 {
		t.Fatalf("no %s symbol %q in scope %q", section, name, scope)
	}
	return out
}

func TestFromCodeLinksMembersToTheirCompound(t *testing.T) {
	registry := languages.NewDefaultRegistry()
	parsed, err := registry.ParseDirectory(filepath.Join("..", "..", "fixtures", "cpp"), nil)
	if err != nil {
		t.Fatalf("ParseDirectory failed: %v", err)
	}
	urls, _ := NewURLScheme("", "", true)

	symbols, err := FromCode(parsed, urls)
	if err != nil {
		t.Fatalf("FromCode failed: %v", err)
	}

	header := findSymbol(t, symbols, "files", "", "controller.h")
	if header[0].URL != "controller_8h.html" {
		t.Fatalf("unexpected file target %q", header[0].URL)
	}

	class := findSymbol(t, symbols, "classes", "control", "Controller")
	if class[0].URL != "classcontrol_1_1Controller.html" {
		t.Fatalf("unexpected class target %q", class[0].URL)
	}

	solve := findSymbol(t, symbols, "functions", "control::Controller", "solve")
	if len(solve) != 2 {
		t.Fatalf("expected declaration and definition, got %#v", solve)
	}
	if solve[0].URL != solve[1].URL {
		t.Fatalf("expected declaration and definition to share a target, got %q and %q", solve[0].URL, solve[1].URL)
	}
	if !strings.HasPrefix(solve[0].URL, "classcontrol_1_1Controller.html#a") {
		t.Fatalf("expected a member anchor on the class page, got %q", solve[0].URL)
	}

	macro := findSymbol(t, symbols, "defines", "", "NX")
	if !strings.HasPrefix(macro[0].URL, "controller_8h.html#a") {
		t.Fatalf("expected macros to link into the file page, got %q", macro[0].URL)
	}

	b := searchdata.NewBuilder()
	if err := b.AddAll(symbols); err != nil {
		t.Fatalf("AddAll failed: %v", err)
	}
	idx, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	entry, ok := idx.All().Get("solve")
	if !ok || len(entry.Matches) != 1 {
		t.Fatalf("expected one merged solve match, got %#v", entry)
	}
	if results := idx.Lookup("contr"); len(results) < 3 {
		t.Fatalf("expected the namespace, class and constructor under contr, got %#v", results)
	}
}

func TestFromCodeGoUsesDotScopes(t *testing.T) {
	registry := languages.NewDefaultRegistry()
	parsed, err := registry.ParseDirectory(filepath.Join("..", "..", "fixtures", "go"), nil)
	if err != nil {
		t.Fatalf("ParseDirectory failed: %v", err)
	}
	urls, _ := NewURLScheme("", "", true)
	symbols, err := FromCode(parsed, urls)
	if err != nil {
		t.Fatalf("FromCode failed: %v", err)
	}

	find := findSymbol(t, symbols, "functions", "fixtures.Catalog", "Find")
	if !strings.HasPrefix(find[0].URL, "structfixtures_8Catalog.html#a") {
		t.Fatalf("unexpected method target %q", find[0].URL)
	}
	ns := findSymbol(t, symbols, "namespaces", "", "fixtures")
	if ns[0].URL != "namespacefixtures.html" {
		t.Fatalf("unexpected package target %q", ns[0].URL)
	}
}

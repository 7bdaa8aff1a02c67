package sources

import (
	"path/filepath"
	"testing"

	"github.com/skelly-dev/doxsearch/internal/searchdata"
)

func TestHarvestHTML(t *testing.T) {
	symbols, err := HarvestHTML(filepath.Join("testdata", "pages"), "pages/")
	if err != nil {
		t.Fatalf("HarvestHTML failed: %v", err)
	}

	want := []searchdata.Symbol{
		{Name: "HKMPC Controller", Section: "pages", URL: "pages/index.html"},
		{Name: "Introduction", Scope: "HKMPC Controller", Section: "pages", URL: "pages/index.html#intro"},
		{Name: "Building the library", Scope: "HKMPC Controller", Section: "pages", URL: "pages/index.html#build"},
		{Name: "MPC parameters", Scope: "HKMPC Controller", Section: "pages", URL: "pages/index.html#params"},
		{Name: "Release notes", Section: "pages", URL: "pages/notes.htm"},
		{Name: "Version 1", Scope: "Release notes", Section: "pages", URL: "pages/notes.htm#v1"},
	}
	if len(symbols) != len(want) {
		t.Fatalf("expected %d symbols, got %d: %#v", len(want), len(symbols), symbols)
	}
	for i := range want {
		if symbols[i] != want[i] {
			t.Fatalf("symbol %d: expected %#v, got %#v", i, want[i], symbols[i])
		}
	}
}

package languages

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/skelly-dev/doxsearch/internal/parser"
)

func findSymbol(t *testing.T, symbols []parser.Symbol, scope, name string) parser.Symbol {
	t.Helper()
	for _, sym := range symbols {
		if sym.Scope == scope && sym.Name == name {
			return sym
		}
	}
	t.Fatalf("symbol %q in scope %q not found among %d symbols", name, scope, len(symbols))
	return parser.Symbol{}
}

func TestGoParserScopesSymbols(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("..", "..", "fixtures", "go", "edge_cases.go"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	file, err := NewGoParser().Parse("edge_cases.go", content)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	cases := []struct {
		scope string
		name  string
		kind  parser.SymbolKind
	}{
		{scope: "", name: "fixtures", kind: parser.SymbolNamespace},
		{scope: "fixtures", name: "DefaultLimit", kind: parser.SymbolConstant},
		{scope: "fixtures", name: "ErrClosed", kind: parser.SymbolVariable},
		{scope: "fixtures", name: "misses", kind: parser.SymbolVariable},
		{scope: "fixtures", name: "Finder", kind: parser.SymbolInterface},
		{scope: "fixtures", name: "Catalog", kind: parser.SymbolStruct},
		{scope: "fixtures", name: "Names", kind: parser.SymbolTypedef},
		{scope: "fixtures", name: "Handler", kind: parser.SymbolTypedef},
		{scope: "fixtures.Catalog", name: "Find", kind: parser.SymbolMethod},
		{scope: "fixtures.Catalog", name: "Len", kind: parser.SymbolMethod},
		{scope: "fixtures.Page", name: "First", kind: parser.SymbolMethod},
		{scope: "fixtures", name: "filter", kind: parser.SymbolFunction},
	}
	for _, tc := range cases {
		sym := findSymbol(t, file.Symbols, tc.scope, tc.name)
		if sym.Kind != tc.kind {
			t.Fatalf("%s.%s: expected kind %s, got %s", tc.scope, tc.name, tc.kind, sym.Kind)
		}
		if sym.Line <= 0 {
			t.Fatalf("%s.%s: expected a line number", tc.scope, tc.name)
		}
	}

	for _, sym := range file.Symbols {
		if sym.Name == "inner" {
			t.Fatalf("did not expect function locals, got %#v", sym)
		}
	}
}

func TestGoParserSignatures(t *testing.T) {
	file, err := NewGoParser().Parse("x.go", []byte(`package x

func Lookup(prefix string) []string { return nil }

type Table struct{}
`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := findSymbol(t, file.Symbols, "x", "Lookup").Signature; got != "func Lookup(prefix string) []string" {
		t.Fatalf("unexpected function signature %q", got)
	}
	if got := findSymbol(t, file.Symbols, "x", "Table").Signature; got != "type Table struct" {
		t.Fatalf("unexpected type signature %q", got)
	}
}

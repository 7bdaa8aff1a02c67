package fileutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteIfChangedTrackedSkipsIdenticalContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "all_0.js")

	changed, err := WriteIfChangedTracked(path, []byte("var searchData=[];\n"))
	if err != nil || !changed {
		t.Fatalf("first write: changed=%t err=%v", changed, err)
	}
	changed, err = WriteIfChangedTracked(path, []byte("var searchData=[];\n"))
	if err != nil || changed {
		t.Fatalf("identical write: changed=%t err=%v", changed, err)
	}
	changed, err = WriteIfChangedTracked(path, []byte("var searchData=[\n];\n"))
	if err != nil || !changed {
		t.Fatalf("changed write: changed=%t err=%v", changed, err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected no temp files left behind, got %d entries", len(entries))
	}
}

func TestWriteIfMissingKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doxsearch.toml")

	created, err := WriteIfMissing(path, []byte("first"), 0644)
	if err != nil || !created {
		t.Fatalf("first write: created=%t err=%v", created, err)
	}
	created, err = WriteIfMissing(path, []byte("second"), 0644)
	if err != nil || created {
		t.Fatalf("second write: created=%t err=%v", created, err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "first" {
		t.Fatalf("expected original content, got %q", data)
	}
}

func TestHashTreeIgnoresNameOrder(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{"a.js": "a", "b.js": "b"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	first, err := HashTree(dir, []string{"a.js", "b.js"})
	if err != nil {
		t.Fatalf("HashTree: %v", err)
	}
	second, err := HashTree(dir, []string{"b.js", "a.js"})
	if err != nil {
		t.Fatalf("HashTree: %v", err)
	}
	if first != second || len(first) != 16 {
		t.Fatalf("expected stable 16-char digest, got %q and %q", first, second)
	}

	if err := os.WriteFile(filepath.Join(dir, "b.js"), []byte("B"), 0644); err != nil {
		t.Fatalf("rewrite b.js: %v", err)
	}
	third, err := HashTree(dir, []string{"a.js", "b.js"})
	if err != nil {
		t.Fatalf("HashTree: %v", err)
	}
	if third == first {
		t.Fatalf("expected digest to change with content")
	}

	if _, err := HashTree(dir, []string{"missing.js"}); err == nil {
		t.Fatalf("expected error for a missing file")
	}
}

func TestPrintJSONDoesNotEscapeHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSON(&buf, map[string]string{"label": "vector<T>&"}); err != nil {
		t.Fatalf("PrintJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"vector<T>&"`) {
		t.Fatalf("expected raw angle brackets, got %s", buf.String())
	}
}

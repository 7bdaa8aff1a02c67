package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMatcherDefaultsAndUserOverrides(t *testing.T) {
	m := NewMatcher([]string{
		"vendor/**",
		"!vendor/keep/hkmpc.h",
		"*.tmp",
		"/generated.h",
	})

	cases := []struct {
		path    string
		isDir   bool
		ignored bool
	}{
		{path: ".git/config", ignored: true},
		{path: "docs/html/search/all_0.js", ignored: true},
		{path: "html", isDir: true, ignored: true},
		{path: "src/html.h", ignored: false},
		{path: "node_modules/pkg/index.js", ignored: true},
		{path: "vendor/lib/a.go", ignored: true},
		{path: "vendor/keep/hkmpc.h", ignored: false},
		{path: "nested/cache.tmp", ignored: true},
		{path: "generated.h", ignored: true},
		{path: "src/generated.h", ignored: false},
		{path: "src/hkmpc.h", ignored: false},
		{path: ".", isDir: true, ignored: false},
	}

	for _, tc := range cases {
		if got := m.ShouldIgnore(tc.path, tc.isDir); got != tc.ignored {
			t.Fatalf("path %s: expected ignored=%v, got %v", tc.path, tc.ignored, got)
		}
	}
}

func TestMatcherNegatedDirectoryRule(t *testing.T) {
	m := NewMatcher([]string{
		"build/",
		"!build/include/",
	})

	if !m.ShouldIgnore("build/out/file.h", false) {
		t.Fatalf("expected build/out/file.h to be ignored")
	}
	if m.ShouldIgnore("build/include/file.h", false) {
		t.Fatalf("expected build/include/file.h to be included")
	}
}

func TestMatcherDirectoryRuleSkipsPlainFiles(t *testing.T) {
	m := NewMatcher([]string{"docs/"})
	if m.ShouldIgnore("docs", false) {
		t.Fatalf("expected a file named docs not to match a directory rule")
	}
	if !m.ShouldIgnore("docs", true) {
		t.Fatalf("expected the docs directory to be ignored")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	rules, err := LoadFile(path)
	if err != nil || rules != nil {
		t.Fatalf("expected no rules for a missing file, got %v, %v", rules, err)
	}

	if err := os.WriteFile(path, []byte("# comment\n\nexamples/\n!examples/keep.h\n"), 0644); err != nil {
		t.Fatalf("write ignore file: %v", err)
	}
	rules, err = LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(rules) != 2 || rules[0] != "examples/" || rules[1] != "!examples/keep.h" {
		t.Fatalf("unexpected rules %v", rules)
	}
}

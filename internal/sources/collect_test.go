package sources

import (
	"context"
	"reflect"
	"testing"

	"github.com/skelly-dev/doxsearch/internal/config"
	"github.com/skelly-dev/doxsearch/internal/languages"
	"github.com/skelly-dev/doxsearch/internal/searchdata"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	urls, err := NewURLScheme("", "", true)
	if err != nil {
		t.Fatalf("NewURLScheme failed: %v", err)
	}
	return &Collector{Registry: languages.NewDefaultRegistry(), URLs: urls}
}

func TestCollectMergesSourcesInFixedOrder(t *testing.T) {
	cfg := config.SourcesConfig{
		Paths:     []string{"../../fixtures/cpp"},
		Manifests: []string{"testdata/std.yaml"},
		Tagfiles:  []config.TagfileConfig{{Path: "testdata/cppreference.tag.xml", Base: "https://en.cppreference.com/w/"}},
		HTML:      []config.HTMLConfig{{Dir: "testdata/pages", Prefix: "pages/"}},
	}

	first, err := newTestCollector(t).Collect(context.Background(), ".", cfg)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if first.Files != 2 {
		t.Fatalf("expected two parsed files, got %d", first.Files)
	}
	if first.Counts["manifest"] != 5 || first.Counts["tagfile"] != 7 || first.Counts["html"] != 6 || first.Counts["code"] == 0 {
		t.Fatalf("unexpected per-source counts %v", first.Counts)
	}
	if first.Symbols[0].Section != "files" {
		t.Fatalf("expected code symbols first, got %#v", first.Symbols[0])
	}
	last := first.Symbols[len(first.Symbols)-1]
	if last.URL != "pages/notes.htm#v1" {
		t.Fatalf("expected html symbols last, got %#v", last)
	}

	second, err := newTestCollector(t).Collect(context.Background(), ".", cfg)
	if err != nil {
		t.Fatalf("second Collect failed: %v", err)
	}
	if !reflect.DeepEqual(first.Symbols, second.Symbols) {
		t.Fatalf("expected identical symbol order across runs")
	}

	b := searchdata.NewBuilder()
	if err := b.AddAll(first.Symbols); err != nil {
		t.Fatalf("AddAll failed: %v", err)
	}
	idx, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	vector, ok := idx.All().Get("vector")
	if !ok || len(vector.Matches) != 3 {
		t.Fatalf("expected std::vector, std::pmr::vector and the vector header, got %#v", vector)
	}
}

func TestCollectFailsOnBrokenSource(t *testing.T) {
	cfg := config.SourcesConfig{
		Manifests: []string{"testdata/missing.yaml"},
	}
	if _, err := newTestCollector(t).Collect(context.Background(), ".", cfg); err == nil {
		t.Fatalf("expected a missing manifest to fail the run")
	}
}

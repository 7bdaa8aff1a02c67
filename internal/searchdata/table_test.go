package searchdata

import (
	"errors"
	"reflect"
	"sync"
	"testing"
)

const cppref = "https://en.cppreference.com/w/cpp/"

func mustTable(t *testing.T, entries []Entry) *Table {
	t.Helper()
	table, err := NewTable(entries)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	return table
}

func entry(key, label string, targets ...string) Entry {
	e := Entry{Key: key}
	for _, target := range targets {
		e.Matches = append(e.Matches, Match{Label: label, TargetURL: target, Scope: "std", External: true})
	}
	return e
}

func TestNewTableRejectsBrokenInvariants(t *testing.T) {
	cases := []struct {
		name    string
		entries []Entry
		want    error
	}{
		{name: "duplicate key", entries: []Entry{entry("vector", "vector", cppref+"vector.html"), entry("vector", "vector", cppref+"other.html")}, want: ErrDuplicateKey},
		{name: "no matches", entries: []Entry{{Key: "vector"}}, want: ErrNoMatches},
		{name: "empty key", entries: []Entry{entry("", "vector", cppref+"vector.html")}, want: ErrEmptyKey},
		{name: "unescaped key", entries: []Entry{entry("Vector<T>", "vector", cppref+"vector.html")}, want: ErrInvalidKey},
		{name: "empty target", entries: []Entry{entry("vector", "vector", "")}, want: ErrEmptyTarget},
		{name: "target with spaces", entries: []Entry{entry("vector", "vector", "vector page.html")}, want: ErrInvalidTarget},
		{name: "http without host", entries: []Entry{entry("vector", "vector", "https:///vector.html")}, want: ErrInvalidTarget},
		{name: "empty label", entries: []Entry{entry("vector", " ", cppref+"vector.html")}, want: ErrEmptyLabel},
		{name: "label mismatch", entries: []Entry{{Key: "vector", Matches: []Match{
			{Label: "vector", TargetURL: cppref + "vector.html"},
			{Label: "Vector", TargetURL: "Vector.html"},
		}}}, want: ErrLabelMismatch},
	}

	for _, tc := range cases {
		_, err := NewTable(tc.entries)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		var verr *ValidationError
		if !errors.As(err, &verr) || len(verr.Issues) == 0 {
			t.Fatalf("%s: expected a ValidationError with issues, got %#v", tc.name, err)
		}
	}
}

func TestNewTableReportsEveryIssue(t *testing.T) {
	_, err := NewTable([]Entry{
		{Key: "a"},
		entry("b", "b", ""),
		entry("c", "c", "c.html#anchor"),
	})
	issues := IssuesOf(err)
	if len(issues) != 2 {
		t.Fatalf("expected two issues, got %#v", issues)
	}
	if issues[0].Key != "a" || issues[1].Key != "b" {
		t.Fatalf("expected issues for a and b, got %#v", issues)
	}
}

func TestValidateTargetAcceptsRelativeAndFragmentTargets(t *testing.T) {
	for _, target := range []string{
		"classhkmpc.html",
		"classhkmpc.html#a1b2c3",
		"#anchor",
		"../ref/vector.html",
		cppref + "container/vector.html",
	} {
		if err := ValidateTarget(target); err != nil {
			t.Fatalf("ValidateTarget(%q): unexpected error %v", target, err)
		}
	}
}

func TestLookupOrdersByKeyThenMatchOrder(t *testing.T) {
	table := mustTable(t, []Entry{
		entry("vector", "vector", cppref+"vector.html", cppref+"pmr/vector.html"),
		entry("valarray", "valarray", cppref+"valarray.html"),
		entry("va_5flist", "va_list", cppref+"va_list.html"),
		entry("map", "map", cppref+"map.html"),
	})

	results := table.Lookup("v")
	var got []string
	for _, result := range results {
		got = append(got, result.Key+" "+result.TargetURL)
	}
	want := []string{
		"va_5flist " + cppref + "va_list.html",
		"valarray " + cppref + "valarray.html",
		"vector " + cppref + "vector.html",
		"vector " + cppref + "pmr/vector.html",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected lookup order:\n got %v\nwant %v", got, want)
	}

	if results := table.Lookup("VA_"); len(results) != 1 || results[0].Label != "va_list" {
		t.Fatalf("expected prefix to be normalized before matching, got %#v", results)
	}
	if results := table.Lookup("   "); results != nil {
		t.Fatalf("expected blank lookup to return nothing, got %#v", results)
	}
	if results := table.Lookup("zzz"); len(results) != 0 {
		t.Fatalf("expected no results, got %#v", results)
	}
}

func TestLookupSubstring(t *testing.T) {
	table := mustTable(t, []Entry{
		entry("value_5fcompare", "value_compare", cppref+"map/value_compare.html"),
		entry("variant_5fsize", "variant_size", cppref+"variant/variant_size.html"),
		entry("vector", "vector", cppref+"vector.html"),
	})

	results := table.LookupSubstring("compare")
	if len(results) != 1 || results[0].Key != "value_5fcompare" {
		t.Fatalf("expected value_compare, got %#v", results)
	}
	if results := table.LookupSubstring("_"); len(results) != 2 {
		t.Fatalf("expected both underscored names, got %#v", results)
	}
}

func TestTableIsNotMutatedThroughAccessors(t *testing.T) {
	table := mustTable(t, []Entry{entry("vector", "vector", cppref+"vector.html")})

	entries := table.Entries()
	entries[0].Matches[0].TargetURL = "changed.html"
	got, ok := table.Get("vector")
	if !ok {
		t.Fatalf("expected vector to be present")
	}
	if got.Matches[0].TargetURL != cppref+"vector.html" {
		t.Fatalf("expected table to be unaffected by caller edits, got %q", got.Matches[0].TargetURL)
	}
}

func TestLookupIsSafeForConcurrentReaders(t *testing.T) {
	table := mustTable(t, []Entry{
		entry("valarray", "valarray", cppref+"valarray.html"),
		entry("vector", "vector", cppref+"vector.html"),
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if len(table.Lookup("v")) != 2 {
					t.Errorf("expected two results")
					return
				}
			}
		}()
	}
	wg.Wait()
}

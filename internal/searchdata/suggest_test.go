package searchdata

import "testing"

func TestSuggestFindsNearMisses(t *testing.T) {
	table := mustTable(t, []Entry{
		entry("valarray", "valarray", cppref+"numeric/valarray.html"),
		entry("variant", "variant", cppref+"utility/variant.html"),
		entry("vector", "vector", cppref+"container/vector.html"),
		entry("map", "map", cppref+"container/map.html"),
	})

	suggestions := table.Suggest("vectro", 0)
	if len(suggestions) == 0 || suggestions[0].Label != "vector" || suggestions[0].Distance != 2 {
		t.Fatalf("expected vector first, got %#v", suggestions)
	}
	for _, s := range suggestions {
		if s.Key == "map" {
			t.Fatalf("did not expect map among %#v", suggestions)
		}
	}

	if got := table.Suggest("Variants", 1); len(got) != 1 || got[0].Key != "variant" {
		t.Fatalf("expected variant, got %#v", got)
	}
	if got := table.Suggest("", 3); got != nil {
		t.Fatalf("expected nothing for an empty term, got %#v", got)
	}
}

func TestLevenshteinDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"vector", "vector", 0},
		{"é", "e", 1},
	}
	for _, tc := range cases {
		if got := levenshteinDistance(tc.a, tc.b); got != tc.want {
			t.Fatalf("levenshteinDistance(%q, %q): expected %d, got %d", tc.a, tc.b, tc.want, got)
		}
	}
}

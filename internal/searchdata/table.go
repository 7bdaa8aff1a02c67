package searchdata

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode"
)

// Table is an immutable, validated search index. It is safe for concurrent
// use once built.
type Table struct {
	entries []Entry
	byKey   map[string]int
	// sorted holds entry positions ordered by key for prefix scans.
	sorted []int
}

// NewTable validates entries and returns a table preserving their order.
// Every problem found is reported in a single *ValidationError.
func NewTable(entries []Entry) (*Table, error) {
	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		byKey:   make(map[string]int, len(entries)),
	}

	var issues []Issue
	for i, entry := range entries {
		entryIssues := validateEntry(i, entry)
		if _, dup := t.byKey[entry.Key]; dup && entry.Key != "" {
			entryIssues = append(entryIssues, errorIssue(entry.Key, ErrDuplicateKey, "%q appears more than once", entry.Key))
		}
		if len(entryIssues) > 0 {
			issues = append(issues, entryIssues...)
			continue
		}

		t.byKey[entry.Key] = len(t.entries)
		t.entries = append(t.entries, cloneEntry(entry))
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	t.sorted = make([]int, len(t.entries))
	for i := range t.sorted {
		t.sorted[i] = i
	}
	sort.SliceStable(t.sorted, func(i, j int) bool {
		return t.entries[t.sorted[i]].Key < t.entries[t.sorted[j]].Key
	})
	return t, nil
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns a copy of the entries in table order.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, len(t.entries))
	for i, entry := range t.entries {
		out[i] = cloneEntry(entry)
	}
	return out
}

// Get returns the entry stored under key.
func (t *Table) Get(key string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	idx, ok := t.byKey[key]
	if !ok {
		return Entry{}, false
	}
	return cloneEntry(t.entries[idx]), true
}

// Lookup normalizes prefix with EncodeKey and returns the matches of every
// key starting with it, ordered by key and then by match order. Blank input
// yields no results.
func (t *Table) Lookup(prefix string) []Result {
	if t == nil {
		return nil
	}
	needle := EncodeKey(prefix)
	if needle == "" {
		return nil
	}

	start := sort.Search(len(t.sorted), func(i int) bool {
		return t.entries[t.sorted[i]].Key >= needle
	})
	var results []Result
	for _, idx := range t.sorted[start:] {
		entry := t.entries[idx]
		if !strings.HasPrefix(entry.Key, needle) {
			break
		}
		results = appendResults(results, entry)
	}
	return results
}

// LookupSubstring is Lookup with substring instead of prefix matching on keys.
func (t *Table) LookupSubstring(term string) []Result {
	if t == nil {
		return nil
	}
	needle := EncodeKey(term)
	if needle == "" {
		return nil
	}

	var results []Result
	for _, idx := range t.sorted {
		entry := t.entries[idx]
		if strings.Contains(entry.Key, needle) {
			results = appendResults(results, entry)
		}
	}
	return results
}

func appendResults(results []Result, entry Entry) []Result {
	for _, match := range entry.Matches {
		results = append(results, Result{Key: entry.Key, Match: match})
	}
	return results
}

func validateEntry(pos int, entry Entry) []Issue {
	var issues []Issue
	switch {
	case entry.Key == "":
		issues = append(issues, errorIssue("", ErrEmptyKey, "entry %d", pos))
	case !ValidKey(entry.Key):
		issues = append(issues, errorIssue(entry.Key, ErrInvalidKey, "%q is not an escaped key", entry.Key))
	}
	if len(entry.Matches) == 0 {
		issues = append(issues, errorIssue(entry.Key, ErrNoMatches, "%q", entry.Key))
		return issues
	}

	label := entry.Matches[0].Label
	for i, match := range entry.Matches {
		if strings.TrimSpace(match.Label) == "" {
			issues = append(issues, errorIssue(entry.Key, ErrEmptyLabel, "%q match %d", entry.Key, i))
		} else if match.Label != label {
			issues = append(issues, errorIssue(entry.Key, ErrLabelMismatch, "%q match %d has %q, want %q", entry.Key, i, match.Label, label))
		}
		if err := ValidateTarget(match.TargetURL); err != nil {
			issues = append(issues, Issue{
				Key:      entry.Key,
				Severity: SeverityError,
				Message:  fmt.Sprintf("%q match %d: %v", entry.Key, i, err),
				Err:      errSentinel(err),
			})
		}
	}
	return issues
}

// ValidateTarget checks that target is a non-empty URL, optionally carrying a
// fragment.
func ValidateTarget(target string) error {
	if target == "" {
		return ErrEmptyTarget
	}
	if strings.IndexFunc(target, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w %q: contains whitespace", ErrInvalidTarget, target)
	}
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidTarget, target, err)
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host == "" {
		return fmt.Errorf("%w %q: missing host", ErrInvalidTarget, target)
	}
	if u.Scheme == "" && u.Host == "" && u.Path == "" && u.Fragment == "" && u.RawQuery == "" {
		return fmt.Errorf("%w %q: no path or fragment", ErrInvalidTarget, target)
	}
	return nil
}

func errSentinel(err error) error {
	if errors.Is(err, ErrEmptyTarget) {
		return ErrEmptyTarget
	}
	return ErrInvalidTarget
}

func cloneEntry(entry Entry) Entry {
	matches := make([]Match, len(entry.Matches))
	copy(matches, entry.Matches)
	return Entry{Key: entry.Key, Matches: matches}
}

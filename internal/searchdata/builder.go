package searchdata

import (
	"fmt"
	"sort"
	"strings"
)

// Builder accumulates documented symbols and produces an Index. Symbols whose
// names fold to the same key share one entry; the first label wins and any
// later conflicting label is reported as a warning.
type Builder struct {
	sections   map[string]*sectionBuilder
	issues     []Issue
	symbols    int
	duplicates int
}

type sectionBuilder struct {
	entries map[string]*Entry
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{sections: make(map[string]*sectionBuilder)}
}

// Add records sym in the "all" section and in its own section. A symbol
// without a name or with an empty or invalid target is a fatal error.
func (b *Builder) Add(sym Symbol) error {
	name := strings.TrimSpace(sym.Name)
	if name == "" {
		return fmt.Errorf("%w: symbol targeting %q has no name", ErrEmptyKey, sym.URL)
	}
	if err := ValidateTarget(sym.URL); err != nil {
		return fmt.Errorf("symbol %q: %w", name, err)
	}
	if sym.Section == SectionAll {
		return fmt.Errorf("symbol %q: %w %q (the all section is implicit)", name, ErrUnknownSection, sym.Section)
	}
	if _, ok := LookupSection(sym.Section); !ok {
		return fmt.Errorf("symbol %q: %w %q", name, ErrUnknownSection, sym.Section)
	}

	key := EncodeKey(name)
	match := Match{
		Label:     name,
		TargetURL: sym.URL,
		Scope:     strings.TrimSpace(sym.Scope),
		External:  sym.External,
	}
	b.symbols++
	if !b.add(SectionAll, key, match) {
		b.duplicates++
	}
	b.add(sym.Section, key, match)
	return nil
}

// AddAll adds every symbol, stopping at the first fatal error.
func (b *Builder) AddAll(symbols []Symbol) error {
	for _, sym := range symbols {
		if err := b.Add(sym); err != nil {
			return err
		}
	}
	return nil
}

// add reports whether match was new for the key.
func (b *Builder) add(section, key string, match Match) bool {
	sb, ok := b.sections[section]
	if !ok {
		sb = &sectionBuilder{entries: make(map[string]*Entry)}
		b.sections[section] = sb
	}

	entry, ok := sb.entries[key]
	if !ok {
		sb.entries[key] = &Entry{Key: key, Matches: []Match{match}}
		return true
	}

	if label := entry.Label(); match.Label != label {
		if section == SectionAll {
			b.issues = append(b.issues, Issue{
				Key:      key,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("%s: %q also used by %q; listed under %q", ErrDuplicateKey, key, match.Label, label),
				Err:      ErrDuplicateKey,
			})
		}
		match.Label = label
	}
	for _, existing := range entry.Matches {
		if existing == match {
			return false
		}
	}
	entry.Matches = append(entry.Matches, match)
	return true
}

// Issues returns the warnings collected so far.
func (b *Builder) Issues() []Issue {
	out := make([]Issue, len(b.issues))
	copy(out, b.issues)
	return out
}

// Stats returns the number of symbols added and how many of them repeated an
// existing match exactly.
func (b *Builder) Stats() (symbols, duplicates int) {
	return b.symbols, b.duplicates
}

// Build returns the index. Entries are ordered by key inside every section so
// identical input always produces identical output.
func (b *Builder) Build() (*Index, error) {
	tables := make(map[string]*Table, len(b.sections))
	sections := make([]Section, 0, len(b.sections))
	for _, section := range Sections {
		sb, ok := b.sections[section.Name]
		if !ok || len(sb.entries) == 0 {
			continue
		}

		keys := make([]string, 0, len(sb.entries))
		for key := range sb.entries {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		entries := make([]Entry, 0, len(keys))
		for _, key := range keys {
			entries = append(entries, *sb.entries[key])
		}
		table, err := NewTable(entries)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", section.Name, err)
		}
		tables[section.Name] = table
		sections = append(sections, section)
	}
	return &Index{sections: sections, tables: tables}, nil
}

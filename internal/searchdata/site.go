package searchdata

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	"github.com/skelly-dev/doxsearch/internal/fileutil"
)

const (
	// SearchDir is the directory under the documentation root holding the index.
	SearchDir = "search"
	// MetaFile lists the sections and their letters.
	MetaFile = "searchdata.js"

	SectionAll = "all"
)

// Section is one tab of the search box.
type Section struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Sections lists the known sections in the order they are written.
var Sections = []Section{
	{Name: SectionAll, Label: "All"},
	{Name: "classes", Label: "Classes"},
	{Name: "namespaces", Label: "Namespaces"},
	{Name: "files", Label: "Files"},
	{Name: "functions", Label: "Functions"},
	{Name: "variables", Label: "Variables"},
	{Name: "typedefs", Label: "Typedefs"},
	{Name: "enums", Label: "Enumerations"},
	{Name: "defines", Label: "Macros"},
	{Name: "pages", Label: "Pages"},
}

// LookupSection finds a known section by name.
func LookupSection(name string) (Section, bool) {
	for _, section := range Sections {
		if section.Name == name {
			return section, true
		}
	}
	return Section{}, false
}

var (
	shardFilePattern   = regexp.MustCompile(`^[a-z]+_[0-9a-f]+\.js$`)
	sectionNamePattern = regexp.MustCompile(`^[a-z]+$`)
)

// Index is a complete search site: one table per section with content.
// It is immutable and safe for concurrent use.
type Index struct {
	sections []Section
	tables   map[string]*Table
}

// NewSingleIndex wraps one table as the "all" section.
func NewSingleIndex(t *Table) *Index {
	return &Index{
		sections: []Section{{Name: SectionAll, Label: "All"}},
		tables:   map[string]*Table{SectionAll: t},
	}
}

// Sections returns the sections that have content, in site order.
func (idx *Index) Sections() []Section {
	out := make([]Section, len(idx.sections))
	copy(out, idx.sections)
	return out
}

// Table returns the table of a section.
func (idx *Index) Table(section string) (*Table, bool) {
	t, ok := idx.tables[section]
	return t, ok
}

// All returns the "all" table, or nil when the site has none.
func (idx *Index) All() *Table {
	return idx.tables[SectionAll]
}

// Lookup runs a prefix lookup against the "all" section.
func (idx *Index) Lookup(prefix string) []Result {
	return idx.All().Lookup(prefix)
}

// LookupSubstring runs a substring lookup against the "all" section.
func (idx *Index) LookupSubstring(term string) []Result {
	return idx.All().LookupSubstring(term)
}

// Letters returns the distinct first letters of a section's keys in file
// order. The position of a letter names its shard file.
func (idx *Index) Letters(section string) []string {
	t, ok := idx.tables[section]
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var letters []string
	for _, entry := range t.entries {
		letter := KeyLetter(entry.Key)
		if !seen[letter] {
			seen[letter] = true
			letters = append(letters, letter)
		}
	}
	sort.Strings(letters)
	return letters
}

// Shard returns the entries of the file a browser would load for input typed
// into the given section, i.e. every entry sharing the input's first letter.
// Unlike Lookup it does not filter on the rest of the input: Shard("all", "va")
// holds vector and valarray, while Lookup("va") only returns keys starting
// with "va".
func (idx *Index) Shard(section, input string) []Entry {
	t, ok := idx.tables[section]
	if !ok {
		return nil
	}
	letter := KeyLetter(EncodeKey(input))
	if letter == "" {
		return nil
	}
	var out []Entry
	for _, entry := range t.entries {
		if KeyLetter(entry.Key) == letter {
			out = append(out, cloneEntry(entry))
		}
	}
	return out
}

// ShardFileName names the file holding the n-th letter of a section.
func ShardFileName(section string, n int) string {
	return fmt.Sprintf("%s_%x.js", section, n)
}

// WriteReport describes a WriteSite run.
type WriteReport struct {
	Files     []string `json:"files"`
	Rewritten int      `json:"rewritten"`
	Removed   []string `json:"removed,omitempty"`
	// Digest hashes the written files, so two runs can be compared without
	// reading the site.
	Digest string `json:"digest"`
}

// WriteSite writes idx into dir as one file per section and letter plus the
// searchdata.js section table. Files left over from an earlier run that are
// not part of idx are removed, since a site is always regenerated whole.
func WriteSite(dir string, idx *Index) (*WriteReport, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	report := &WriteReport{}
	written := make(map[string]bool)
	write := func(name string, data []byte) error {
		changed, err := fileutil.WriteIfChangedTracked(filepath.Join(dir, name), data)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		if changed {
			report.Rewritten++
		}
		written[name] = true
		report.Files = append(report.Files, name)
		return nil
	}

	letters := make([]string, len(idx.sections))
	for i, section := range idx.sections {
		table := idx.tables[section.Name]
		sectionLetters := idx.Letters(section.Name)
		letters[i] = strings.Join(sectionLetters, "")

		shards := make(map[string][]Entry, len(sectionLetters))
		for _, entry := range table.entries {
			letter := KeyLetter(entry.Key)
			shards[letter] = append(shards[letter], entry)
		}
		for n, letter := range sectionLetters {
			shard, err := NewTable(shards[letter])
			if err != nil {
				return nil, fmt.Errorf("section %s letter %q: %w", section.Name, letter, err)
			}
			data, err := Marshal(shard)
			if err != nil {
				return nil, err
			}
			if err := write(ShardFileName(section.Name, n), data); err != nil {
				return nil, err
			}
		}
	}

	if err := write(MetaFile, encodeMeta(idx.sections, letters)); err != nil {
		return nil, err
	}

	existing, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	for _, item := range existing {
		name := item.Name()
		if item.IsDir() || written[name] || !shardFilePattern.MatchString(name) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return nil, fmt.Errorf("failed to remove stale %s: %w", name, err)
		}
		report.Removed = append(report.Removed, name)
	}

	digest, err := fileutil.HashTree(dir, report.Files)
	if err != nil {
		return nil, fmt.Errorf("failed to hash %s: %w", dir, err)
	}
	report.Digest = digest
	return report, nil
}

func encodeMeta(sections []Section, letters []string) []byte {
	var buf bytes.Buffer
	writeObject := func(name string, value func(i int, section Section) string) {
		buf.WriteString("var " + name + " =\n{\n")
		for i, section := range sections {
			fmt.Fprintf(&buf, "  %d: %s", i, jsQuoteWith(value(i, section), '"'))
			if i < len(sections)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		buf.WriteString("};\n\n")
	}
	writeObject("indexSectionsWithContent", func(i int, _ Section) string { return letters[i] })
	writeObject("indexSectionNames", func(_ int, section Section) string { return section.Name })
	writeObject("indexSectionLabels", func(_ int, section Section) string { return section.Label })
	return buf.Bytes()
}

// ResolveSiteDir accepts either a documentation root containing search/ or
// the search directory itself.
func ResolveSiteDir(path string) string {
	nested := filepath.Join(path, SearchDir)
	if _, err := os.Stat(filepath.Join(nested, MetaFile)); err == nil {
		return nested
	}
	return path
}

// Open loads a search site directory, or a single searchData file as an index
// with only the "all" section.
func Open(ctx context.Context, path string) (*Index, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access search index %s: %w", path, err)
	}
	if info.IsDir() {
		return LoadSite(ctx, path)
	}
	table, err := ParseFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewSingleIndex(table), nil
}

// ParseFile reads and parses one searchData file.
func ParseFile(ctx context.Context, path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	table, err := Parse(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return table, nil
}

// LoadSite reads a site written by WriteSite (or by Doxygen). Shard files are
// parsed concurrently; any unreadable or invalid file fails the whole load.
func LoadSite(ctx context.Context, path string) (*Index, error) {
	dir := ResolveSiteDir(path)
	meta, err := os.ReadFile(filepath.Join(dir, MetaFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", MetaFile, err)
	}
	sections, letters, err := decodeMeta(ctx, meta)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MetaFile, err)
	}

	shards := make([][][]Entry, len(sections))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, section := range sections {
		count := utf8.RuneCountInString(letters[i])
		shards[i] = make([][]Entry, count)
		for n := 0; n < count; n++ {
			name := ShardFileName(section.Name, n)
			slot := &shards[i][n]
			g.Go(func() error {
				data, err := os.ReadFile(filepath.Join(dir, name))
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", name, err)
				}
				entries, err := Decode(gctx, data)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				*slot = entries
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx := &Index{sections: sections, tables: make(map[string]*Table, len(sections))}
	for i, section := range sections {
		var entries []Entry
		for _, shard := range shards[i] {
			entries = append(entries, shard...)
		}
		sort.SliceStable(entries, func(a, b int) bool { return entries[a].Key < entries[b].Key })
		table, err := NewTable(entries)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", section.Name, err)
		}
		idx.tables[section.Name] = table
	}
	return idx, nil
}

func decodeMeta(ctx context.Context, content []byte) ([]Section, []string, error) {
	tree, err := parseScript(ctx, content)
	if err != nil {
		return nil, nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	read := func(name string) (map[int]string, error) {
		node := findAssignment(root, content, name)
		if node == nil {
			return nil, fmt.Errorf("%w: no %s assignment", ErrMalformed, name)
		}
		return decodeIntStringObject(node, content)
	}

	withContent, err := read("indexSectionsWithContent")
	if err != nil {
		return nil, nil, err
	}
	names, err := read("indexSectionNames")
	if err != nil {
		return nil, nil, err
	}
	labels, err := read("indexSectionLabels")
	if err != nil {
		return nil, nil, err
	}

	positions := make([]int, 0, len(names))
	for pos := range names {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	sections := make([]Section, 0, len(positions))
	letters := make([]string, 0, len(positions))
	for _, pos := range positions {
		name := names[pos]
		if !sectionNamePattern.MatchString(name) {
			return nil, nil, fmt.Errorf("%w: section name %q", ErrMalformed, name)
		}
		label := labels[pos]
		if label == "" {
			label = name
		}
		sections = append(sections, Section{Name: name, Label: label})
		letters = append(letters, withContent[pos])
	}
	return sections, letters, nil
}

func decodeIntStringObject(node *sitter.Node, content []byte) (map[int]string, error) {
	if node.Type() != "object" {
		return nil, malformedAt(node, "got a %s, want an object", node.Type())
	}
	out := make(map[int]string)
	for _, pair := range namedElements(node) {
		if pair.Type() != "pair" {
			return nil, malformedAt(pair, "got a %s, want a key/value pair", pair.Type())
		}
		keyNode := pair.ChildByFieldName("key")
		valueNode := pair.ChildByFieldName("value")
		if keyNode == nil || valueNode == nil {
			return nil, malformedAt(pair, "incomplete pair")
		}

		rawKey := keyNode.Content(content)
		if keyNode.Type() == "string" {
			unquoted, err := unquoteJS(rawKey)
			if err != nil {
				return nil, malformedAt(keyNode, "%v", err)
			}
			rawKey = unquoted
		}
		pos, err := strconv.Atoi(strings.TrimSpace(rawKey))
		if err != nil {
			return nil, malformedAt(keyNode, "section position %q is not a number", rawKey)
		}
		value, err := stringValue(valueNode, content)
		if err != nil {
			return nil, err
		}
		out[pos] = value
	}
	return out, nil
}

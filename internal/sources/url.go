// Package sources turns code trees, symbol manifests, Doxygen tag files and
// HTML pages into symbols for the search index builder.
package sources

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"path"
	"strings"
	"text/template"

	"github.com/skelly-dev/doxsearch/internal/parser"
)

// Target describes one documented thing for URL rendering.
type Target struct {
	Kind      string
	Name      string
	Scope     string
	Qualified string
	File      string
	Line      int
	// Page and Anchor are the Doxygen-style defaults.
	Page   string
	Anchor string
}

// URLScheme renders documentation targets. Without a template targets follow
// Doxygen's naming: classfoo.html, namespacens.html, file_8h.html and
// "#a<hash>" anchors for members.
type URLScheme struct {
	base           *url.URL
	tmpl           *template.Template
	caseSenseNames bool
}

// NewURLScheme builds a scheme. base may be empty; tmpl may be empty.
func NewURLScheme(base, tmpl string, caseSenseNames bool) (*URLScheme, error) {
	s := &URLScheme{caseSenseNames: caseSenseNames}
	if base != "" {
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid url base %q: %w", base, err)
		}
		s.base = u
	}
	if tmpl != "" {
		t, err := template.New("url").Option("missingkey=error").Parse(tmpl)
		if err != nil {
			return nil, fmt.Errorf("invalid url template: %w", err)
		}
		s.tmpl = t
	}
	return s, nil
}

// Render returns the target URL, resolved against the base when one is set.
func (s *URLScheme) Render(t Target) (string, error) {
	raw := t.Page
	if t.Anchor != "" {
		raw += "#" + t.Anchor
	}
	if s.tmpl != nil {
		var buf bytes.Buffer
		if err := s.tmpl.Execute(&buf, t); err != nil {
			return "", fmt.Errorf("url template for %s: %w", t.Qualified, err)
		}
		raw = strings.TrimSpace(buf.String())
	}
	return resolve(s.base, raw)
}

func resolve(base *url.URL, raw string) (string, error) {
	if base == nil {
		return raw, nil
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid target %q: %w", raw, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// CompoundPage returns Doxygen's page name for a compound such as a class or
// namespace, e.g. "classcontrol_1_1_controller.html".
func (s *URLScheme) CompoundPage(kind parser.SymbolKind, qualified string) string {
	prefix := "class"
	switch kind {
	case parser.SymbolStruct:
		prefix = "struct"
	case parser.SymbolUnion:
		prefix = "union"
	case parser.SymbolInterface:
		prefix = "interface"
	case parser.SymbolNamespace:
		prefix = "namespace"
	}
	return prefix + s.EscapeName(qualified) + ".html"
}

// FilePage returns Doxygen's page name for a source file, e.g.
// "controller_8h.html".
func (s *URLScheme) FilePage(file string) string {
	return s.EscapeName(path.Base(file)) + ".html"
}

// EscapeName maps a qualified name onto Doxygen's file name alphabet.
func (s *URLScheme) EscapeName(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		ch := name[i]
		if replacement, ok := doxygenEscapes[ch]; ok {
			b.WriteString(replacement)
			continue
		}
		if ch >= 'A' && ch <= 'Z' && !s.caseSenseNames {
			b.WriteByte('_')
			b.WriteByte(ch + ('a' - 'A'))
			continue
		}
		if ch >= 0x80 {
			fmt.Fprintf(&b, "_x%02x", ch)
			continue
		}
		b.WriteByte(ch)
	}
	return b.String()
}

var doxygenEscapes = map[byte]string{
	'_': "__", ':': "_1", '/': "_2", '<': "_3", '>': "_4", '*': "_5",
	'&': "_6", '|': "_7", '.': "_8", '!': "_9", ',': "_00", ' ': "_01",
	'{': "_02", '}': "_03", '?': "_04", '^': "_05", '%': "_06", '(': "_07",
	')': "_08", '+': "_09", '=': "_0a", '$': "_0b", '\\': "_0c", '@': "_0d",
	']': "_0e", '[': "_0f", '#': "_0g", '"': "_0h", '~': "_0i", '\'': "_0j",
	';': "_0k", '`': "_0l",
}

// MemberAnchor returns a stable "a<md5>" anchor for a member, like the
// anchors Doxygen puts on member documentation.
func MemberAnchor(qualified, signature string) string {
	sum := md5.Sum([]byte(qualified + "|" + signature))
	return "a" + hex.EncodeToString(sum[:])
}

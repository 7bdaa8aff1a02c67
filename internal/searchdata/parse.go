package searchdata

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// Parse decodes a searchData file and validates the entries. A file that does
// not parse, or whose records break an invariant, is rejected as a whole.
func Parse(ctx context.Context, content []byte) (*Table, error) {
	entries, err := Decode(ctx, content)
	if err != nil {
		return nil, err
	}
	return NewTable(entries)
}

// Decode reads the entries of a searchData file without validating them.
func Decode(ctx context.Context, content []byte) ([]Entry, error) {
	tree, err := parseScript(ctx, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	array := findAssignment(tree.RootNode(), content, VarName)
	if array == nil {
		return nil, fmt.Errorf("%w: no %s assignment", ErrMalformed, VarName)
	}
	if array.Type() != "array" {
		return nil, malformedAt(array, "%s is a %s, want an array", VarName, array.Type())
	}

	elements := namedElements(array)
	entries := make([]Entry, 0, len(elements))
	for _, element := range elements {
		entry, err := decodeEntry(element, content)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// decodeEntry reads ['key',['label',['url',flag,'scope'],...]].
func decodeEntry(node *sitter.Node, content []byte) (Entry, error) {
	parts, err := arrayElements(node, "entry")
	if err != nil {
		return Entry{}, err
	}
	if len(parts) != 2 {
		return Entry{}, malformedAt(node, "entry has %d elements, want 2", len(parts))
	}
	key, err := stringValue(parts[0], content)
	if err != nil {
		return Entry{}, err
	}

	body, err := arrayElements(parts[1], "entry body")
	if err != nil {
		return Entry{}, err
	}
	if len(body) == 0 {
		return Entry{}, malformedAt(parts[1], "entry %q has no label", key)
	}
	rawLabel, err := stringValue(body[0], content)
	if err != nil {
		return Entry{}, err
	}
	label := html.UnescapeString(rawLabel)

	entry := Entry{Key: key, Matches: make([]Match, 0, len(body)-1)}
	for _, tupleNode := range body[1:] {
		match, err := decodeMatch(tupleNode, content)
		if err != nil {
			return Entry{}, fmt.Errorf("entry %q: %w", key, err)
		}
		match.Label = label
		entry.Matches = append(entry.Matches, match)
	}
	return entry, nil
}

func decodeMatch(node *sitter.Node, content []byte) (Match, error) {
	fields, err := arrayElements(node, "match")
	if err != nil {
		return Match{}, err
	}
	if len(fields) < 2 || len(fields) > 3 {
		return Match{}, malformedAt(node, "match has %d elements, want 2 or 3", len(fields))
	}

	target, err := stringValue(fields[0], content)
	if err != nil {
		return Match{}, err
	}
	if fields[1].Type() != "number" {
		return Match{}, malformedAt(fields[1], "external flag is a %s, want a number", fields[1].Type())
	}
	flag, err := strconv.Atoi(strings.TrimSpace(fields[1].Content(content)))
	if err != nil {
		return Match{}, malformedAt(fields[1], "external flag: %v", err)
	}

	match := Match{TargetURL: target, External: flag != 0}
	if len(fields) == 3 {
		scope, err := stringValue(fields[2], content)
		if err != nil {
			return Match{}, err
		}
		match.Scope = html.UnescapeString(scope)
	}
	return match, nil
}

func parseScript(ctx context.Context, content []byte) (*sitter.Tree, error) {
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(javascript.GetLanguage())

	tree, err := p.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	root := tree.RootNode()
	if root.HasError() {
		err := fmt.Errorf("%w: syntax error", ErrMalformed)
		if bad := firstErrorNode(root); bad != nil {
			err = malformedAt(bad, "syntax error")
		}
		tree.Close()
		return nil, err
	}
	return tree, nil
}

// findAssignment returns the value assigned to name by a top-level
// `var name = ...` or `name = ...` statement.
func findAssignment(root *sitter.Node, content []byte, name string) *sitter.Node {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		switch stmt.Type() {
		case "variable_declaration", "lexical_declaration":
			for j := 0; j < int(stmt.NamedChildCount()); j++ {
				decl := stmt.NamedChild(j)
				if decl.Type() != "variable_declarator" {
					continue
				}
				nameNode := decl.ChildByFieldName("name")
				if nameNode != nil && nameNode.Content(content) == name {
					return decl.ChildByFieldName("value")
				}
			}
		case "expression_statement":
			for j := 0; j < int(stmt.NamedChildCount()); j++ {
				expr := stmt.NamedChild(j)
				if expr.Type() != "assignment_expression" {
					continue
				}
				left := expr.ChildByFieldName("left")
				if left != nil && left.Content(content) == name {
					return expr.ChildByFieldName("right")
				}
			}
		}
	}
	return nil
}

func arrayElements(node *sitter.Node, what string) ([]*sitter.Node, error) {
	if node.Type() != "array" {
		return nil, malformedAt(node, "%s is a %s, want an array", what, node.Type())
	}
	return namedElements(node), nil
}

func namedElements(node *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

func stringValue(node *sitter.Node, content []byte) (string, error) {
	if node.Type() != "string" {
		return "", malformedAt(node, "got a %s, want a string", node.Type())
	}
	value, err := unquoteJS(node.Content(content))
	if err != nil {
		return "", malformedAt(node, "%v", err)
	}
	return value, nil
}

// unquoteJS decodes a single- or double-quoted JavaScript string literal.
func unquoteJS(raw string) (string, error) {
	if len(raw) < 2 || (raw[0] != '\'' && raw[0] != '"') || raw[len(raw)-1] != raw[0] {
		return "", fmt.Errorf("not a quoted string: %s", raw)
	}
	body := raw[1 : len(raw)-1]
	if !strings.Contains(body, `\`) {
		return body, nil
	}

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch != '\\' {
			b.WriteByte(ch)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("dangling escape in %s", raw)
		}
		switch esc := body[i]; esc {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
			// line continuation
		case 'x':
			if i+3 > len(body) {
				return "", fmt.Errorf("short \\x escape in %s", raw)
			}
			value, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
			if err != nil {
				return "", fmt.Errorf("bad \\x escape in %s", raw)
			}
			b.WriteRune(rune(value))
			i += 2
		case 'u':
			r, width, err := readUnicodeEscape(body[i+1:])
			if err != nil {
				return "", fmt.Errorf("%v in %s", err, raw)
			}
			i += width
			if utf16.IsSurrogate(r) && strings.HasPrefix(body[i+1:], `\u`) {
				if low, lowWidth, err := readUnicodeEscape(body[i+3:]); err == nil {
					if pair := utf16.DecodeRune(r, low); pair != utf8.RuneError {
						r = pair
						i += 2 + lowWidth
					}
				}
			}
			b.WriteRune(r)
		default:
			b.WriteByte(esc)
		}
	}
	return b.String(), nil
}

func readUnicodeEscape(s string) (rune, int, error) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, fmt.Errorf("bad \\u{} escape")
		}
		value, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil || !utf8.ValidRune(rune(value)) {
			return 0, 0, fmt.Errorf("bad \\u{} escape")
		}
		return rune(value), end + 1, nil
	}
	if len(s) < 4 {
		return 0, 0, fmt.Errorf("short \\u escape")
	}
	value, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("bad \\u escape")
	}
	return rune(value), 4, nil
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if bad := firstErrorNode(node.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}

func malformedAt(node *sitter.Node, format string, args ...any) error {
	pos := node.StartPoint()
	return fmt.Errorf("%w at %d:%d: %s", ErrMalformed, pos.Row+1, pos.Column+1, fmt.Sprintf(format, args...))
}

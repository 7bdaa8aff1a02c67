package languages

import (
	"context"
	"strings"

	"github.com/skelly-dev/doxsearch/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
)

// CppParser extracts namespaces, records, enums, typedefs, functions,
// variables and macros from C and C++ sources. Scopes are nested with "::"
// the way Doxygen qualifies them.
type CppParser struct {
	parser *sitter.Parser
}

// NewCppParser creates a new C/C++ parser
func NewCppParser() *CppParser {
	p := sitter.NewParser()
	p.SetLanguage(cpp.GetLanguage())
	return &CppParser{parser: p}
}

func (c *CppParser) Language() string {
	return "cpp"
}

func (c *CppParser) Extensions() []string {
	return []string{".h", ".hh", ".hpp", ".hxx", ".c", ".cc", ".cpp", ".cxx"}
}

func (c *CppParser) Separator() string {
	return "::"
}

func (c *CppParser) Parse(filename string, content []byte) (*parser.FileSymbols, error) {
	tree, err := c.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	result := &parser.FileSymbols{
		Path:     filename,
		Language: "cpp",
		Symbols:  make([]parser.Symbol, 0),
	}
	w := cppWalker{content: content, result: result}
	w.walk(tree.RootNode(), nil, false)
	return result, nil
}

type cppWalker struct {
	content []byte
	result  *parser.FileSymbols
}

func (w *cppWalker) text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return node.Content(w.content)
}

func (w *cppWalker) add(node *sitter.Node, name string, kind parser.SymbolKind, scope []string, signature string) {
	w.result.Symbols = append(w.result.Symbols, parser.Symbol{
		Name:      name,
		Kind:      kind,
		Scope:     joinScope(scope, "::"),
		Signature: collapseSpace(signature),
		Line:      int(node.StartPoint().Row) + 1,
	})
}

// walk visits the declarations directly under node. Function bodies are
// never entered, so locals are not reported.
func (w *cppWalker) walk(node *sitter.Node, scope []string, inRecord bool) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "namespace_definition":
			w.namespace(child, scope)

		case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
			w.record(child, scope)

		case "function_definition":
			w.function(child, child.ChildByFieldName("declarator"), scope, inRecord)

		case "declaration", "field_declaration":
			w.declaration(child, scope, inRecord)

		case "type_definition":
			w.typedef(child, scope)

		case "alias_declaration":
			if name := child.ChildByFieldName("name"); name != nil {
				w.add(child, w.text(name), parser.SymbolTypedef, scope, w.text(child))
			}

		case "preproc_def", "preproc_function_def":
			if name := child.ChildByFieldName("name"); name != nil {
				w.add(child, w.text(name), parser.SymbolMacro, nil, "#define "+w.text(name))
			}

		case "template_declaration", "linkage_specification", "declaration_list",
			"preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif":
			w.walk(child, scope, inRecord)
		}
	}
}

func (w *cppWalker) namespace(node *sitter.Node, scope []string) {
	body := node.ChildByFieldName("body")
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		// anonymous namespace
		if body != nil {
			w.walk(body, scope, false)
		}
		return
	}

	inner := scope
	for _, part := range strings.Split(w.text(nameNode), "::") {
		part = strings.TrimSpace(part)
		if part == "" || part == "inline" {
			continue
		}
		w.add(node, part, parser.SymbolNamespace, inner, "namespace "+part)
		inner = appendScope(inner, part)
	}
	if body != nil {
		w.walk(body, inner, false)
	}
}

// record handles class, struct, union and enum specifiers. Forward
// declarations and anonymous records are skipped; members of anonymous
// records still belong to the enclosing scope.
func (w *cppWalker) record(node *sitter.Node, scope []string) {
	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}

	kind := parser.SymbolClass
	keyword := "class"
	switch node.Type() {
	case "struct_specifier":
		kind, keyword = parser.SymbolStruct, "struct"
	case "union_specifier":
		kind, keyword = parser.SymbolUnion, "union"
	case "enum_specifier":
		kind, keyword = parser.SymbolEnum, "enum"
	}

	qualifier, name := w.recordName(node.ChildByFieldName("name"))
	if name == "" {
		if kind != parser.SymbolEnum {
			w.walk(body, scope, true)
		}
		return
	}

	outer := scope
	if qualifier != "" {
		outer = appendScope(scope, strings.Split(qualifier, "::")...)
	}
	w.add(node, name, kind, outer, keyword+" "+name)
	if kind != parser.SymbolEnum {
		w.walk(body, appendScope(outer, name), true)
	}
}

func (w *cppWalker) recordName(nameNode *sitter.Node) (qualifier, name string) {
	if nameNode == nil {
		return "", ""
	}
	if nameNode.Type() == "template_type" {
		if inner := nameNode.ChildByFieldName("name"); inner != nil {
			return "", w.text(inner)
		}
	}
	return SplitQualifiedName(w.text(nameNode), "::")
}

func (w *cppWalker) function(node, declarator *sitter.Node, scope []string, inRecord bool) {
	fn := findFunctionDeclarator(declarator)
	if fn == nil {
		return
	}
	qualifier, name := SplitQualifiedName(w.text(fn.ChildByFieldName("declarator")), "::")
	if name == "" {
		return
	}

	kind := parser.SymbolFunction
	if inRecord || qualifier != "" {
		kind = parser.SymbolMethod
	}
	outer := scope
	if qualifier != "" {
		outer = appendScope(scope, strings.Split(qualifier, "::")...)
	}

	signature := w.text(fn)
	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		signature = w.text(typeNode) + " " + signature
	}
	w.add(node, name, kind, outer, signature)
}

// declaration covers plain and member declarations: function prototypes,
// variables and data members, and records defined inline in the type.
func (w *cppWalker) declaration(node *sitter.Node, scope []string, inRecord bool) {
	typeNode := node.ChildByFieldName("type")
	if typeNode != nil {
		switch typeNode.Type() {
		case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
			w.record(typeNode, scope)
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		if node.FieldNameForChild(i) != "declarator" {
			continue
		}
		declarator := node.Child(i)
		if findFunctionDeclarator(declarator) != nil {
			w.function(node, declarator, scope, inRecord)
			continue
		}

		qualifier, name := SplitQualifiedName(w.text(declaratorName(declarator)), "::")
		if name == "" {
			continue
		}
		if qualifier != "" {
			// out-of-class definition of a member already declared elsewhere
			continue
		}
		signature := name
		if typeNode != nil {
			signature = w.text(typeNode) + " " + name
		}
		w.add(declarator, name, parser.SymbolVariable, scope, signature)
	}
}

func (w *cppWalker) typedef(node *sitter.Node, scope []string) {
	typeNode := node.ChildByFieldName("type")
	if typeNode != nil {
		switch typeNode.Type() {
		case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
			w.record(typeNode, scope)
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		if node.FieldNameForChild(i) != "declarator" {
			continue
		}
		declarator := node.Child(i)
		if fn := findFunctionDeclarator(declarator); fn != nil {
			declarator = fn.ChildByFieldName("declarator")
		}
		name := w.text(declaratorName(declarator))
		if name == "" {
			continue
		}
		w.add(node, name, parser.SymbolTypedef, scope, w.text(node))
	}
}

// findFunctionDeclarator unwraps pointer, reference and parenthesized
// declarators down to a function declarator, if there is one.
func findFunctionDeclarator(node *sitter.Node) *sitter.Node {
	for node != nil {
		switch node.Type() {
		case "function_declarator":
			inner := node.ChildByFieldName("declarator")
			if inner != nil && inner.Type() == "parenthesized_declarator" {
				// function pointer such as void (*cb)(int)
				return nil
			}
			return node
		case "pointer_declarator", "reference_declarator", "init_declarator", "attributed_declarator":
			node = innerDeclarator(node)
		default:
			return nil
		}
	}
	return nil
}

// declaratorName returns the node naming what a declarator declares.
func declaratorName(node *sitter.Node) *sitter.Node {
	for node != nil {
		switch node.Type() {
		case "identifier", "field_identifier", "type_identifier", "qualified_identifier",
			"destructor_name", "operator_name", "primitive_type":
			return node
		case "function_declarator":
			inner := node.ChildByFieldName("declarator")
			if inner != nil && inner.Type() == "parenthesized_declarator" {
				node = inner
				continue
			}
			node = inner
		case "parenthesized_declarator":
			node = node.NamedChild(0)
		default:
			node = innerDeclarator(node)
		}
	}
	return nil
}

func innerDeclarator(node *sitter.Node) *sitter.Node {
	if inner := node.ChildByFieldName("declarator"); inner != nil {
		return inner
	}
	count := int(node.NamedChildCount())
	if count == 0 {
		return nil
	}
	return node.NamedChild(count - 1)
}

package languages

import (
	"context"
	"strings"

	"github.com/skelly-dev/doxsearch/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// GoParser implements parsing for Go source files. Packages are reported as
// namespaces; functions, types and package-level values are scoped to their
// package and methods to their receiver type.
type GoParser struct {
	parser *sitter.Parser
}

// NewGoParser creates a new Go parser
func NewGoParser() *GoParser {
	p := sitter.NewParser()
	p.SetLanguage(golang.GetLanguage())
	return &GoParser{parser: p}
}

func (g *GoParser) Language() string {
	return "go"
}

func (g *GoParser) Extensions() []string {
	return []string{".go"}
}

func (g *GoParser) Separator() string {
	return "."
}

func (g *GoParser) Parse(filename string, content []byte) (*parser.FileSymbols, error) {
	tree, err := g.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	result := &parser.FileSymbols{
		Path:     filename,
		Language: "go",
		Symbols:  make([]parser.Symbol, 0),
	}

	root := tree.RootNode()
	pkg := g.packageName(root, content)
	if pkg != "" {
		result.Symbols = append(result.Symbols, parser.Symbol{
			Name:      pkg,
			Kind:      parser.SymbolNamespace,
			Signature: "package " + pkg,
			Line:      1,
		})
	}

	// Only top-level declarations are documented.
	for i := 0; i < int(root.NamedChildCount()); i++ {
		g.extractDeclaration(root.NamedChild(i), content, pkg, result)
	}

	return result, nil
}

func (g *GoParser) packageName(root *sitter.Node, content []byte) string {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() != "package_clause" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			if ident := child.NamedChild(j); ident.Type() == "package_identifier" {
				return ident.Content(content)
			}
		}
	}
	return ""
}

func (g *GoParser) extractDeclaration(node *sitter.Node, content []byte, pkg string, result *parser.FileSymbols) {
	switch node.Type() {
	case "function_declaration":
		if sym := g.extractFunction(node, content, pkg); sym != nil {
			result.Symbols = append(result.Symbols, *sym)
		}

	case "method_declaration":
		if sym := g.extractMethod(node, content, pkg); sym != nil {
			result.Symbols = append(result.Symbols, *sym)
		}

	case "type_declaration":
		result.Symbols = append(result.Symbols, g.extractTypeDecl(node, content, pkg)...)

	case "const_declaration":
		result.Symbols = append(result.Symbols, g.extractValues(node, content, pkg, "const_spec", parser.SymbolConstant)...)

	case "var_declaration":
		result.Symbols = append(result.Symbols, g.extractValues(node, content, pkg, "var_spec", parser.SymbolVariable)...)
	}
}

func (g *GoParser) extractFunction(node *sitter.Node, content []byte, pkg string) *parser.Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	return &parser.Symbol{
		Name:      nameNode.Content(content),
		Kind:      parser.SymbolFunction,
		Scope:     pkg,
		Signature: g.buildFunctionSignature(node, content),
		Line:      int(node.StartPoint().Row) + 1,
	}
}

func (g *GoParser) extractMethod(node *sitter.Node, content []byte, pkg string) *parser.Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	receiver := ""
	scope := pkg
	if receiverNode := node.ChildByFieldName("receiver"); receiverNode != nil {
		receiver = receiverNode.Content(content)
		if typeName := receiverTypeName(receiverNode, content); typeName != "" {
			scope = joinScope([]string{pkg, typeName}, ".")
		}
	}

	return &parser.Symbol{
		Name:      nameNode.Content(content),
		Kind:      parser.SymbolMethod,
		Scope:     scope,
		Signature: strings.TrimSpace(receiver + " " + g.buildFunctionSignature(node, content)),
		Line:      int(node.StartPoint().Row) + 1,
	}
}

// receiverTypeName returns the bare type of a receiver list such as
// "(c *Catalog)" or "(p *Page[T])".
func receiverTypeName(receiver *sitter.Node, content []byte) string {
	for i := 0; i < int(receiver.NamedChildCount()); i++ {
		param := receiver.NamedChild(i)
		if param.Type() != "parameter_declaration" {
			continue
		}
		typeNode := param.ChildByFieldName("type")
		for typeNode != nil {
			switch typeNode.Type() {
			case "type_identifier":
				return typeNode.Content(content)
			case "pointer_type":
				typeNode = typeNode.NamedChild(0)
			case "generic_type":
				typeNode = typeNode.ChildByFieldName("type")
			default:
				return strings.TrimLeft(typeNode.Content(content), "*")
			}
		}
	}
	return ""
}

func (g *GoParser) extractTypeDecl(node *sitter.Node, content []byte, pkg string) []parser.Symbol {
	symbols := make([]parser.Symbol, 0)

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "type_spec" && child.Type() != "type_alias" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}

		kind := parser.SymbolTypedef
		if typeNode := child.ChildByFieldName("type"); typeNode != nil && child.Type() == "type_spec" {
			switch typeNode.Type() {
			case "struct_type":
				kind = parser.SymbolStruct
			case "interface_type":
				kind = parser.SymbolInterface
			}
		}

		symbols = append(symbols, parser.Symbol{
			Name:      nameNode.Content(content),
			Kind:      kind,
			Scope:     pkg,
			Signature: g.buildTypeSignature(child, content),
			Line:      int(child.StartPoint().Row) + 1,
		})
	}

	return symbols
}

// extractValues reads const and var specs, grouped or not. A spec may name
// several identifiers.
func (g *GoParser) extractValues(node *sitter.Node, content []byte, pkg, specType string, kind parser.SymbolKind) []parser.Symbol {
	symbols := make([]parser.Symbol, 0)
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == specType+"_list" {
			symbols = append(symbols, g.extractValues(child, content, pkg, specType, kind)...)
			continue
		}
		if child.Type() != specType {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			if child.FieldNameForChild(j) != "name" {
				continue
			}
			ident := child.Child(j)
			name := ident.Content(content)
			if name == "_" {
				continue
			}
			symbols = append(symbols, parser.Symbol{
				Name:      name,
				Kind:      kind,
				Scope:     pkg,
				Signature: collapseSpace(child.Content(content)),
				Line:      int(ident.StartPoint().Row) + 1,
			})
		}
	}
	return symbols
}

func (g *GoParser) buildFunctionSignature(node *sitter.Node, content []byte) string {
	nameNode := node.ChildByFieldName("name")
	paramsNode := node.ChildByFieldName("parameters")
	resultNode := node.ChildByFieldName("result")

	sig := "func"
	if nameNode != nil {
		sig += " " + nameNode.Content(content)
	}
	if paramsNode != nil {
		sig += paramsNode.Content(content)
	}
	if resultNode != nil {
		sig += " " + resultNode.Content(content)
	}

	return sig
}

func (g *GoParser) buildTypeSignature(node *sitter.Node, content []byte) string {
	nameNode := node.ChildByFieldName("name")
	typeNode := node.ChildByFieldName("type")

	if nameNode == nil {
		return ""
	}

	sig := "type " + nameNode.Content(content)
	if node.Type() == "type_alias" {
		sig += " ="
	}
	if typeNode != nil {
		switch typeNode.Type() {
		case "struct_type":
			sig += " struct"
		case "interface_type":
			sig += " interface"
		default:
			sig += " " + collapseSpace(typeNode.Content(content))
		}
	}

	return sig
}

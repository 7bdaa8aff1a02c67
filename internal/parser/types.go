package parser

// SymbolKind represents the type of code symbol
type SymbolKind int

const (
	SymbolFunction SymbolKind = iota
	SymbolMethod
	SymbolClass
	SymbolStruct
	SymbolUnion
	SymbolInterface
	SymbolNamespace
	SymbolEnum
	SymbolTypedef
	SymbolMacro
	SymbolConstant
	SymbolVariable
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolFunction:
		return "func"
	case SymbolMethod:
		return "method"
	case SymbolClass:
		return "class"
	case SymbolStruct:
		return "struct"
	case SymbolUnion:
		return "union"
	case SymbolInterface:
		return "interface"
	case SymbolNamespace:
		return "namespace"
	case SymbolEnum:
		return "enum"
	case SymbolTypedef:
		return "typedef"
	case SymbolMacro:
		return "define"
	case SymbolConstant:
		return "const"
	case SymbolVariable:
		return "var"
	default:
		return "unknown"
	}
}

// Section returns the search section a symbol of this kind is listed under.
func (k SymbolKind) Section() string {
	switch k {
	case SymbolFunction, SymbolMethod:
		return "functions"
	case SymbolClass, SymbolStruct, SymbolUnion, SymbolInterface:
		return "classes"
	case SymbolNamespace:
		return "namespaces"
	case SymbolEnum:
		return "enums"
	case SymbolTypedef:
		return "typedefs"
	case SymbolMacro:
		return "defines"
	default:
		return "variables"
	}
}

// ParseKind maps a kind name (as printed by String, plus a few common
// aliases) back to a SymbolKind.
func ParseKind(name string) (SymbolKind, bool) {
	switch name {
	case "func", "function":
		return SymbolFunction, true
	case "method":
		return SymbolMethod, true
	case "class":
		return SymbolClass, true
	case "struct":
		return SymbolStruct, true
	case "union":
		return SymbolUnion, true
	case "interface":
		return SymbolInterface, true
	case "namespace", "package":
		return SymbolNamespace, true
	case "enum", "enumeration":
		return SymbolEnum, true
	case "typedef", "type":
		return SymbolTypedef, true
	case "define", "macro":
		return SymbolMacro, true
	case "const", "constant":
		return SymbolConstant, true
	case "var", "variable":
		return SymbolVariable, true
	}
	return 0, false
}

// Symbol represents a code symbol (function, class, etc.)
type Symbol struct {
	Name      string
	Kind      SymbolKind
	Scope     string // enclosing scope, e.g. "hkmpc::MPCParam" or a Go package name
	Signature string // e.g., "func(ctx context.Context, id string) (*User, error)"
	File      string // relative file path
	Line      int    // line number
}

// QualifiedName joins the scope and name with the given separator.
func (s Symbol) QualifiedName(sep string) string {
	if s.Scope == "" {
		return s.Name
	}
	return s.Scope + sep + s.Name
}

// FileSymbols holds all symbols extracted from a single file
type FileSymbols struct {
	Path      string
	Language  string
	Separator string // scope separator of the language
	Symbols   []Symbol
	Hash      string // file content hash
}

// ParseIssue captures non-fatal parser warnings/errors encountered while scanning files.
type ParseIssue struct {
	File     string `json:"file"`
	Language string `json:"language,omitempty"`
	Severity string `json:"severity"` // warning | error
	Message  string `json:"message"`
}

// ParseResult holds the complete parse result for a codebase
type ParseResult struct {
	Files    []FileSymbols
	RootPath string
	Issues   []ParseIssue
}

package sources

import (
	"path"
	"strings"

	"github.com/skelly-dev/doxsearch/internal/parser"
	"github.com/skelly-dev/doxsearch/internal/searchdata"
)

// FromCode converts parsed source files into index symbols. Every file gets a
// "files" entry; compounds link to their own page and members to the page of
// their enclosing compound, or to their file's page when there is none.
func FromCode(result *parser.ParseResult, urls *URLScheme) ([]searchdata.Symbol, error) {
	if result == nil {
		return nil, nil
	}

	compounds := make(map[string]parser.SymbolKind)
	for _, file := range result.Files {
		for _, sym := range file.Symbols {
			if isCompound(sym.Kind) {
				compounds[sym.QualifiedName(file.Separator)] = sym.Kind
			}
		}
	}

	symbols := make([]searchdata.Symbol, 0)
	for _, file := range result.Files {
		fileURL, err := urls.Render(Target{
			Kind:      "file",
			Name:      path.Base(file.Path),
			Qualified: file.Path,
			File:      file.Path,
			Line:      1,
			Page:      urls.FilePage(file.Path),
		})
		if err != nil {
			return nil, err
		}
		dir := path.Dir(file.Path)
		if dir == "." {
			dir = ""
		}
		symbols = append(symbols, searchdata.Symbol{
			Name:    path.Base(file.Path),
			Scope:   dir,
			Section: "files",
			URL:     fileURL,
		})

		for _, sym := range file.Symbols {
			qualified := sym.QualifiedName(file.Separator)
			target := Target{
				Kind:      sym.Kind.String(),
				Name:      sym.Name,
				Scope:     sym.Scope,
				Qualified: qualified,
				File:      file.Path,
				Line:      sym.Line,
			}
			if isCompound(sym.Kind) {
				target.Page = urls.CompoundPage(sym.Kind, qualified)
			} else {
				if kind, ok := compounds[sym.Scope]; ok {
					target.Page = urls.CompoundPage(kind, sym.Scope)
				} else {
					target.Page = urls.FilePage(file.Path)
				}
				target.Anchor = MemberAnchor(qualified, parameterList(sym.Signature))
			}

			url, err := urls.Render(target)
			if err != nil {
				return nil, err
			}
			symbols = append(symbols, searchdata.Symbol{
				Name:    sym.Name,
				Scope:   sym.Scope,
				Section: sym.Kind.Section(),
				URL:     url,
			})
		}
	}
	return symbols, nil
}

func isCompound(kind parser.SymbolKind) bool {
	switch kind {
	case parser.SymbolClass, parser.SymbolStruct, parser.SymbolUnion, parser.SymbolInterface, parser.SymbolNamespace:
		return true
	}
	return false
}

// parameterList keeps the part of a signature from the opening parenthesis,
// so a declaration and its out-of-class definition share an anchor.
func parameterList(signature string) string {
	if i := strings.Index(signature, "("); i >= 0 {
		return signature[i:]
	}
	return ""
}

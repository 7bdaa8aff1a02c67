package sources

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/skelly-dev/doxsearch/internal/languages"
	"github.com/skelly-dev/doxsearch/internal/searchdata"
)

type tagFile struct {
	XMLName   xml.Name      `xml:"tagfile"`
	Compounds []tagCompound `xml:"compound"`
}

type tagCompound struct {
	Kind     string      `xml:"kind,attr"`
	Name     string      `xml:"name"`
	Title    string      `xml:"title"`
	Filename string      `xml:"filename"`
	Members  []tagMember `xml:"member"`
}

type tagMember struct {
	Kind       string `xml:"kind,attr"`
	Type       string `xml:"type"`
	Name       string `xml:"name"`
	Anchorfile string `xml:"anchorfile"`
	Anchor     string `xml:"anchor"`
	Arglist    string `xml:"arglist"`
}

var compoundSections = map[string]string{
	"class":     "classes",
	"struct":    "classes",
	"union":     "classes",
	"interface": "classes",
	"protocol":  "classes",
	"exception": "classes",
	"concept":   "classes",
	"namespace": "namespaces",
	"file":      "files",
	"page":      "pages",
	"group":     "pages",
}

var memberSections = map[string]string{
	"function":    "functions",
	"slot":        "functions",
	"signal":      "functions",
	"variable":    "variables",
	"property":    "variables",
	"typedef":     "typedefs",
	"enumeration": "enums",
	"define":      "defines",
}

// LoadTagfile reads a Doxygen tag file and returns its compounds and members
// as external symbols linking into base.
func LoadTagfile(tagPath, base string) ([]searchdata.Symbol, error) {
	data, err := os.ReadFile(tagPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read tag file %s: %w", tagPath, err)
	}
	symbols, err := DecodeTagfile(data, base)
	if err != nil {
		return nil, fmt.Errorf("tag file %s: %w", tagPath, err)
	}
	return symbols, nil
}

// DecodeTagfile converts tag file XML. Compound and member kinds without a
// search section (directories, examples, enum values) are skipped.
func DecodeTagfile(data []byte, base string) ([]searchdata.Symbol, error) {
	var baseURL *url.URL
	if base != "" {
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid base %q: %w", base, err)
		}
		baseURL = u
	}

	var doc tagFile
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid tag file: %w", err)
	}

	symbols := make([]searchdata.Symbol, 0, len(doc.Compounds))
	for _, compound := range doc.Compounds {
		name := strings.TrimSpace(compound.Name)
		section, ok := compoundSections[compound.Kind]
		if ok && name != "" {
			scope, short := languages.SplitQualifiedName(name, "::")
			if section == "pages" {
				scope = ""
				short = firstNonEmpty(compound.Title, name)
			}
			if section == "files" {
				scope = ""
			}
			target, err := tagTarget(baseURL, compound.Filename, "")
			if err != nil {
				return nil, err
			}
			symbols = append(symbols, searchdata.Symbol{
				Name:     short,
				Scope:    scope,
				Section:  section,
				URL:      target,
				External: true,
			})
		}

		memberScope := name
		if compound.Kind == "file" || compound.Kind == "page" || compound.Kind == "group" {
			memberScope = ""
		}
		for _, member := range compound.Members {
			section, ok := memberSections[member.Kind]
			memberName := strings.TrimSpace(member.Name)
			if !ok || memberName == "" {
				continue
			}
			file := firstNonEmpty(member.Anchorfile, compound.Filename)
			target, err := tagTarget(baseURL, file, strings.TrimSpace(member.Anchor))
			if err != nil {
				return nil, err
			}
			symbols = append(symbols, searchdata.Symbol{
				Name:     memberName,
				Scope:    memberScope,
				Section:  section,
				URL:      target,
				External: true,
			})
		}
	}
	return symbols, nil
}

// tagTarget builds the link for a tag file entry. File names without an
// extension get ".html", as Doxygen does when it resolves tag files.
func tagTarget(base *url.URL, file, anchor string) (string, error) {
	file = strings.TrimSpace(file)
	if file == "" {
		return "", nil
	}
	if path.Ext(file) == "" {
		file += ".html"
	}
	if anchor != "" {
		file += "#" + anchor
	}
	return resolve(base, file)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}

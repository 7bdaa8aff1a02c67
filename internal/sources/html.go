package sources

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/skelly-dev/doxsearch/internal/searchdata"
)

// HarvestHTML indexes the HTML pages under dir for the "pages" section: one
// symbol per page (its title) and one per heading that carries an id, either
// on the heading itself or on an anchor inside it. Targets are the page path
// relative to dir with prefix prepended.
func HarvestHTML(dir, prefix string) ([]searchdata.Symbol, error) {
	symbols := make([]searchdata.Symbol, 0)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == searchdata.SearchDir && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".html" && ext != ".htm" {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		pageSymbols, err := harvestPage(content, prefix+filepath.ToSlash(rel))
		if err != nil {
			return fmt.Errorf("%s: %w", rel, err)
		}
		symbols = append(symbols, pageSymbols...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return symbols, nil
}

func harvestPage(content []byte, page string) ([]searchdata.Symbol, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("invalid html: %w", err)
	}

	title := collapseText(doc.Find("title").First().Text())
	if title == "" {
		title = collapseText(doc.Find("h1").First().Text())
	}

	symbols := make([]searchdata.Symbol, 0)
	if title != "" {
		symbols = append(symbols, searchdata.Symbol{Name: title, Section: "pages", URL: page})
	}

	doc.Find("h1, h2, h3, h4").Each(func(_ int, heading *goquery.Selection) {
		id, ok := heading.Attr("id")
		if !ok || strings.TrimSpace(id) == "" {
			id, ok = heading.Find("a[id]").First().Attr("id")
		}
		id = strings.TrimSpace(id)
		text := collapseText(heading.Text())
		if !ok || id == "" || text == "" {
			return
		}
		symbols = append(symbols, searchdata.Symbol{
			Name:    text,
			Scope:   title,
			Section: "pages",
			URL:     page + "#" + id,
		})
	})
	return symbols, nil
}

func collapseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

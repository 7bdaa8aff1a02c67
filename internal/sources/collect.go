package sources

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/skelly-dev/doxsearch/internal/config"
	"github.com/skelly-dev/doxsearch/internal/ignore"
	"github.com/skelly-dev/doxsearch/internal/parser"
	"github.com/skelly-dev/doxsearch/internal/searchdata"
)

// Collector gathers symbols from every configured source.
type Collector struct {
	Registry *parser.Registry
	URLs     *URLScheme
	Logger   *slog.Logger
}

// Result is everything a collection run found.
type Result struct {
	Symbols []searchdata.Symbol
	Issues  []parser.ParseIssue
	Files   int
	// Counts holds the number of symbols per source, keyed "code",
	// "manifest", "tagfile" and "html".
	Counts map[string]int
}

type batch struct {
	source  string
	symbols []searchdata.Symbol
}

// Collect reads all sources of cfg, resolving relative paths against root.
// Manifests, tag files and HTML directories are read concurrently; code paths
// are parsed in order on one goroutine because parsers are not safe for
// concurrent use. Symbols are returned in a fixed order (code, manifests,
// tag files, HTML) so output does not depend on scheduling.
func (c *Collector) Collect(ctx context.Context, root string, cfg config.SourcesConfig) (*Result, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	abs := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(root, p)
	}

	ignoreRules, err := ignore.LoadFile(filepath.Join(root, ignore.FileName))
	if err != nil {
		return nil, err
	}
	ignoreRules = append(append([]string{}, cfg.Ignore...), ignoreRules...)

	batches := make([]batch, 1+len(cfg.Manifests)+len(cfg.Tagfiles)+len(cfg.HTML))
	result := &Result{Counts: make(map[string]int)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var symbols []searchdata.Symbol
		for _, p := range cfg.Paths {
			if err := gctx.Err(); err != nil {
				return err
			}
			parsed, err := c.Registry.ParseDirectory(abs(p), ignoreRules)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", p, err)
			}
			code, err := FromCode(parsed, c.URLs)
			if err != nil {
				return err
			}
			logger.Debug("parsed source tree", "path", p, "files", len(parsed.Files), "symbols", len(code))
			symbols = append(symbols, code...)
			result.Files += len(parsed.Files)
			result.Issues = append(result.Issues, parsed.Issues...)
		}
		batches[0] = batch{source: "code", symbols: symbols}
		return nil
	})

	slot := 1
	for _, p := range cfg.Manifests {
		i := slot
		g.Go(func() error {
			manifest, err := LoadManifest(abs(p))
			if err != nil {
				return err
			}
			symbols, err := manifest.Resolve()
			if err != nil {
				return fmt.Errorf("manifest %s: %w", p, err)
			}
			batches[i] = batch{source: "manifest", symbols: symbols}
			return nil
		})
		slot++
	}
	for _, tag := range cfg.Tagfiles {
		i := slot
		g.Go(func() error {
			symbols, err := LoadTagfile(abs(tag.Path), tag.Base)
			if err != nil {
				return err
			}
			batches[i] = batch{source: "tagfile", symbols: symbols}
			return nil
		})
		slot++
	}
	for _, html := range cfg.HTML {
		i := slot
		g.Go(func() error {
			symbols, err := HarvestHTML(abs(html.Dir), html.Prefix)
			if err != nil {
				return fmt.Errorf("html %s: %w", html.Dir, err)
			}
			batches[i] = batch{source: "html", symbols: symbols}
			return nil
		})
		slot++
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, b := range batches {
		result.Symbols = append(result.Symbols, b.symbols...)
		if b.source != "" {
			result.Counts[b.source] += len(b.symbols)
		}
	}
	logger.Info("collected symbols", "symbols", len(result.Symbols), "files", result.Files, "issues", len(result.Issues))
	return result, nil
}

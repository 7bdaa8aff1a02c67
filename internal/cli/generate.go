package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/skelly-dev/doxsearch/internal/config"
	"github.com/skelly-dev/doxsearch/internal/fileutil"
	"github.com/skelly-dev/doxsearch/internal/languages"
	"github.com/skelly-dev/doxsearch/internal/logger"
	"github.com/skelly-dev/doxsearch/internal/parser"
	"github.com/skelly-dev/doxsearch/internal/searchdata"
	"github.com/skelly-dev/doxsearch/internal/sources"
)

func RunGenerate(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	rootPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path %q: %w", path, err)
	}
	info, err := os.Stat(rootPath)
	if err != nil {
		return fmt.Errorf("failed to access path %q: %w", rootPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path %q is not a directory", rootPath)
	}

	cfg, err := loadConfig(cmd, rootPath)
	if err != nil {
		return err
	}
	langs, err := ParseLanguageFilter(cmd)
	if err != nil {
		return err
	}
	if len(langs) > 0 {
		cfg.Sources.Languages = langs
	}
	format, err := ParseOutputFormat(cmd)
	if err != nil {
		return err
	}
	if format != "" {
		cfg.Output.Format = format
	}
	out, err := OptionalStringFlag(cmd, "out")
	if err != nil {
		return err
	}
	if out != "" {
		cfg.Output.Dir = out
	}
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}

	summary, err := GenerateIndex(commandContext(cmd), rootPath, cfg, asJSON)
	if err != nil {
		return err
	}
	return PrintRunSummary(stdout(cmd), *summary, asJSON)
}

// GenerateIndex collects symbols from the sources of cfg, builds the index
// and writes it in the configured format.
func GenerateIndex(ctx context.Context, rootPath string, cfg *config.Config, quiet bool) (*RunSummary, error) {
	start := time.Now()
	log := logger.WithComponent("generate")

	registry, err := languages.NewDefaultRegistry().Restrict(cfg.Sources.Languages)
	if err != nil {
		return nil, err
	}
	progress := newParseProgressReporter("generate", quiet)
	registry.OnParsed = progress.Update

	urls, err := sources.NewURLScheme(cfg.URL.Base, cfg.URL.Template, cfg.URL.CaseSenseNames)
	if err != nil {
		return nil, err
	}

	collector := &sources.Collector{Registry: registry, URLs: urls, Logger: log}
	collected, err := collector.Collect(ctx, rootPath, cfg.Sources)
	progress.Done()
	if err != nil {
		return nil, err
	}
	ReportParseIssues(collected.Issues)

	builder := searchdata.NewBuilder()
	if err := builder.AddAll(collected.Symbols); err != nil {
		return nil, err
	}
	warnings := builder.Issues()
	if len(warnings) > 0 {
		log.Debug("builder reported issues", "count", len(warnings))
		ReportIndexIssues(os.Stderr, warnings)
	}
	idx, err := builder.Build()
	if err != nil {
		return nil, err
	}
	if idx.All() == nil {
		return nil, fmt.Errorf("no symbols found under %s", rootPath)
	}

	outPath := resolveAgainst(rootPath, cfg.Output.Dir)
	report, outPath, err := writeIndex(outPath, cfg.Output.Format, idx)
	if err != nil {
		return nil, err
	}

	symbols, duplicates := builder.Stats()
	summary := &RunSummary{
		Mode:       "generate",
		Format:     cfg.Output.Format,
		RootPath:   rootPath,
		Output:     outPath,
		Files:      collected.Files,
		Symbols:    symbols,
		Duplicates: duplicates,
		Keys:       idx.All().Len(),
		Sources:    collected.Counts,
		Written:    len(report.Files),
		Rewritten:  report.Rewritten,
		Removed:    report.Removed,
		Digest:     report.Digest,
		Warnings:   len(warnings),
		ParseErrs:  countParseErrors(collected.Issues),
		DurationMS: time.Since(start).Milliseconds(),
	}
	for _, section := range idx.Sections() {
		summary.Sections = append(summary.Sections, section.Name)
	}
	log.Info("index written", "output", outPath, "keys", summary.Keys, "rewritten", report.Rewritten)
	return summary, nil
}

// writeIndex writes idx to outPath. The file and json formats accept either a
// file path or a directory, in which case the file is named all.js or
// all.json.
func writeIndex(outPath, format string, idx *searchdata.Index) (*searchdata.WriteReport, string, error) {
	switch format {
	case "site":
		report, err := searchdata.WriteSite(outPath, idx)
		return report, outPath, err
	case "file", "json":
		ext := ".js"
		if format == "json" {
			ext = ".json"
		}
		if filepath.Ext(outPath) == "" {
			outPath = filepath.Join(outPath, "all"+ext)
		}
		var buf bytes.Buffer
		var err error
		if format == "json" {
			err = searchdata.EncodeJSON(&buf, idx.All())
		} else {
			err = searchdata.Encode(&buf, idx.All())
		}
		if err != nil {
			return nil, "", err
		}
		changed, err := fileutil.WriteIfChangedTracked(outPath, buf.Bytes())
		if err != nil {
			return nil, "", fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		digest, err := fileutil.HashFile(outPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to hash %s: %w", outPath, err)
		}
		report := &searchdata.WriteReport{Files: []string{filepath.Base(outPath)}, Digest: digest}
		if changed {
			report.Rewritten = 1
		}
		return report, outPath, nil
	default:
		return nil, "", fmt.Errorf("unsupported format %q", format)
	}
}

func countParseErrors(issues []parser.ParseIssue) int {
	count := 0
	for _, issue := range issues {
		if issue.Severity == "error" {
			count++
		}
	}
	return count
}

package cli

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skelly-dev/doxsearch/internal/config"
	"github.com/skelly-dev/doxsearch/internal/fileutil"
	"github.com/skelly-dev/doxsearch/internal/ignore"
	"github.com/skelly-dev/doxsearch/internal/languages"
)

const ignoreTemplate = `# Paths doxsearch skips when extracting symbols, one gitignore-style rule
# per line. Build trees and generated documentation are skipped already.
`

func RunInit(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}
	force, err := OptionalBoolFlag(cmd, "force", false)
	if err != nil {
		return err
	}
	out := stdout(cmd)
	printf := func(format string, args ...any) { fmt.Fprintf(out, format, args...) }

	configPath := filepath.Join(rootPath, config.FileName)
	if force {
		if err := fileutil.WriteIfChanged(configPath, []byte(config.Template)); err != nil {
			return fmt.Errorf("failed to write %s: %w", config.FileName, err)
		}
		printf("Wrote %s\n", configPath)
	} else {
		created, err := fileutil.WriteIfMissing(configPath, []byte(config.Template), 0644)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", config.FileName, err)
		}
		if created {
			printf("Wrote %s\n", configPath)
		} else {
			printf("Kept existing %s\n", configPath)
		}
	}

	if _, err := fileutil.WriteIfMissing(filepath.Join(rootPath, ignore.FileName), []byte(ignoreTemplate), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ignore.FileName, err)
	}

	noGenerate, err := OptionalBoolFlag(cmd, "no-generate", false)
	if err != nil {
		return err
	}
	if noGenerate || !hasSourceFiles(rootPath) {
		return nil
	}

	cfg, err := loadConfig(cmd, rootPath)
	if err != nil {
		return err
	}
	printf("Running initial generate...\n")
	summary, err := GenerateIndex(commandContext(cmd), rootPath, cfg, false)
	if err != nil {
		return err
	}
	return PrintRunSummary(out, *summary, false)
}

func hasSourceFiles(rootPath string) bool {
	extensions := languages.NewDefaultRegistry().SupportedExtensions()
	matcher := ignore.NewMatcher(nil)
	found := false
	_ = filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || found {
			return filepath.SkipDir
		}
		rel, relErr := filepath.Rel(rootPath, path)
		if relErr != nil {
			return nil
		}
		if matcher.ShouldIgnore(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		for _, supported := range extensions {
			if ext == supported {
				found = true
				return filepath.SkipAll
			}
		}
		return nil
	})
	return found
}

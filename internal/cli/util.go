package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skelly-dev/doxsearch/internal/config"
	"github.com/skelly-dev/doxsearch/internal/logger"
	"github.com/skelly-dev/doxsearch/internal/parser"
	"github.com/skelly-dev/doxsearch/internal/searchdata"
)

func resolveWorkingDirectory() (string, error) {
	rootPath, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return rootPath, nil
}

// loadConfig reads --config (or <root>/doxsearch.toml when present) and
// installs the logger it describes. --log-level and --log-format win over
// the file.
func loadConfig(cmd *cobra.Command, rootPath string) (*config.Config, error) {
	path, err := inheritedString(cmd, "config")
	if err != nil {
		return nil, err
	}

	var cfg *config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOptional(filepath.Join(rootPath, config.FileName))
	}
	if err != nil {
		return nil, err
	}

	if level, err := inheritedString(cmd, "log-level"); err != nil {
		return nil, err
	} else if level != "" {
		cfg.Log.Level = level
	}
	if format, err := inheritedString(cmd, "log-format"); err != nil {
		return nil, err
	} else if format != "" {
		cfg.Log.Format = format
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

// inheritedString reads a persistent root flag from any subcommand.
func inheritedString(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil {
		return "", nil
	}
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		flag = cmd.InheritedFlags().Lookup(name)
	}
	if flag == nil {
		return "", nil
	}
	return strings.TrimSpace(flag.Value.String()), nil
}

func stdout(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

func resolveAgainst(rootPath, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rootPath, path)
}

// loadTable reads one table from a searchData file, a JSON export or a
// section of a search site.
func loadTable(ctx context.Context, path, section string) (*searchdata.Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s: %w", path, err)
	}
	if info.IsDir() {
		idx, err := searchdata.LoadSite(ctx, path)
		if err != nil {
			return nil, err
		}
		if section == "" {
			section = searchdata.SectionAll
		}
		table, ok := idx.Table(section)
		if !ok {
			return nil, fmt.Errorf("%w %q: the site has no entries for it", searchdata.ErrUnknownSection, section)
		}
		return table, nil
	}
	if isJSONPath(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		table, err := searchdata.DecodeJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		return table, nil
	}
	return searchdata.ParseFile(ctx, path)
}

func isJSONPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

var errIssuesFound = errors.New("validation found errors")

func ReportParseIssues(issues []parser.ParseIssue) {
	for _, issue := range issues {
		if issue.Language != "" {
			fmt.Fprintf(os.Stderr, "[%s] %s (%s): %s\n", issue.Severity, issue.File, issue.Language, issue.Message)
			continue
		}
		fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", issue.Severity, issue.File, issue.Message)
	}
}

// ReportIndexIssues prints index issues one per line, keyed when possible.
func ReportIndexIssues(w io.Writer, issues []searchdata.Issue) {
	for _, issue := range issues {
		if issue.Key != "" {
			fmt.Fprintf(w, "[%s] %s: %s\n", issue.Severity, issue.Key, issue.Message)
			continue
		}
		fmt.Fprintf(w, "[%s] %s\n", issue.Severity, issue.Message)
	}
}

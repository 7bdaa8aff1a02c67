package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/skelly-dev/doxsearch/internal/fileutil"
	"github.com/skelly-dev/doxsearch/internal/searchdata"
)

type RunSummary struct {
	Mode       string         `json:"mode"`
	Format     string         `json:"format"`
	RootPath   string         `json:"root_path"`
	Output     string         `json:"output"`
	Files      int            `json:"files"`
	Symbols    int            `json:"symbols"`
	Duplicates int            `json:"duplicates"`
	Keys       int            `json:"keys"`
	Sections   []string       `json:"sections"`
	Sources    map[string]int `json:"sources,omitempty"`
	Written    int            `json:"written"`
	Rewritten  int            `json:"rewritten"`
	Removed    []string       `json:"removed,omitempty"`
	Digest     string         `json:"digest"`
	Warnings   int            `json:"warnings"`
	ParseErrs  int            `json:"parse_errors"`
	DurationMS int64          `json:"duration_ms"`
}

type ValidateSummary struct {
	Mode     string             `json:"mode"`
	Path     string             `json:"path"`
	Kind     string             `json:"kind"`
	Valid    bool               `json:"valid"`
	Sections map[string]int     `json:"sections,omitempty"`
	Keys     int                `json:"keys"`
	Matches  int                `json:"matches"`
	Issues   []searchdata.Issue `json:"issues,omitempty"`
}

type LookupSummary struct {
	Mode        string                  `json:"mode"`
	Query       string                  `json:"query"`
	Section     string                  `json:"section"`
	Substring   bool                    `json:"substring"`
	Total       int                     `json:"total"`
	Results     []searchdata.Result     `json:"results"`
	Suggestions []searchdata.Suggestion `json:"suggestions,omitempty"`
}

var (
	okMarker    = color.New(color.FgGreen).SprintFunc()
	warnMarker  = color.New(color.FgYellow).SprintFunc()
	errorMarker = color.New(color.FgRed, color.Bold).SprintFunc()
	dimText     = color.New(color.Faint).SprintFunc()
)

func PrintRunSummary(w io.Writer, summary RunSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}

	fmt.Fprintf(w, "%s generate complete in %dms\n", okMarker("ok"), summary.DurationMS)
	fmt.Fprintf(w, "output: %s (%s)\n", summary.Output, summary.Format)
	fmt.Fprintf(w, "symbols: files=%d symbols=%d duplicates=%d keys=%d\n", summary.Files, summary.Symbols, summary.Duplicates, summary.Keys)
	if len(summary.Sources) > 0 {
		names := make([]string, 0, len(summary.Sources))
		for name := range summary.Sources {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%d", name, summary.Sources[name]))
		}
		fmt.Fprintf(w, "sources: %s\n", strings.Join(parts, " "))
	}
	fmt.Fprintf(w, "sections (%d): %s\n", len(summary.Sections), strings.Join(summary.Sections, ", "))
	fmt.Fprintf(w, "files: written=%d rewritten=%d removed=%d digest=%s\n", summary.Written, summary.Rewritten, len(summary.Removed), summary.Digest)
	if len(summary.Removed) > 0 {
		fmt.Fprintf(w, "removed files (%d): %s\n", len(summary.Removed), SummarizePaths(summary.Removed, 8))
	}
	if summary.Warnings > 0 || summary.ParseErrs > 0 {
		fmt.Fprintf(w, "%s warnings=%d parse_errors=%d\n", warnMarker("note"), summary.Warnings, summary.ParseErrs)
	}
	return nil
}

func PrintValidateSummary(w io.Writer, summary ValidateSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}

	status := okMarker("ok")
	if !summary.Valid {
		status = errorMarker("invalid")
	}
	fmt.Fprintf(w, "validate: %s %s (%s)\n", status, summary.Path, summary.Kind)
	if summary.Valid {
		fmt.Fprintf(w, "keys=%d matches=%d\n", summary.Keys, summary.Matches)
		if len(summary.Sections) > 1 {
			names := make([]string, 0, len(summary.Sections))
			for name := range summary.Sections {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(w, "  %-12s %d\n", name, summary.Sections[name])
			}
		}
	}
	for _, issue := range summary.Issues {
		marker := warnMarker(issue.Severity)
		if issue.Severity == searchdata.SeverityError {
			marker = errorMarker(issue.Severity)
		}
		fmt.Fprintf(w, "  %s %s\n", marker, issue.Message)
	}
	return nil
}

func PrintLookupSummary(w io.Writer, summary LookupSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}

	if summary.Total == 0 {
		fmt.Fprintf(w, "no matches for %q\n", summary.Query)
		if len(summary.Suggestions) > 0 {
			labels := make([]string, 0, len(summary.Suggestions))
			for _, suggestion := range summary.Suggestions {
				labels = append(labels, suggestion.Label)
			}
			fmt.Fprintf(w, "did you mean: %s\n", strings.Join(labels, ", "))
		}
		return nil
	}

	for _, result := range summary.Results {
		label := result.Label
		if result.Scope != "" {
			label += " " + dimText("("+result.Scope+")")
		}
		fmt.Fprintf(w, "%s\t%s\n", label, result.TargetURL)
	}
	if len(summary.Results) < summary.Total {
		fmt.Fprintf(w, "%s\n", dimText(fmt.Sprintf("... %d of %d matches shown", len(summary.Results), summary.Total)))
	}
	return nil
}

func SummarizePaths(paths []string, max int) string {
	if len(paths) <= max {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(paths[:max], ", "), len(paths)-max)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skelly-dev/doxsearch/internal/searchdata"
)

const lookupSuggestions = 5

func RunLookup(cmd *cobra.Command, args []string) error {
	query := args[0]
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, rootPath)
	if err != nil {
		return err
	}

	indexPath, err := OptionalStringFlag(cmd, "index")
	if err != nil {
		return err
	}
	if indexPath == "" {
		indexPath = resolveAgainst(rootPath, cfg.Output.Dir)
	}
	section, err := OptionalStringFlag(cmd, "section")
	if err != nil {
		return err
	}
	if section == "" {
		section = searchdata.SectionAll
	}
	substring, err := OptionalBoolFlag(cmd, "substring", false)
	if err != nil {
		return err
	}
	limit, err := OptionalIntFlag(cmd, "limit", 20)
	if err != nil {
		return err
	}
	if limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}

	idx, err := searchdata.Open(commandContext(cmd), indexPath)
	if err != nil {
		return err
	}
	table, ok := idx.Table(section)
	if !ok {
		return fmt.Errorf("%w %q: the index has no entries for it", searchdata.ErrUnknownSection, section)
	}

	var results []searchdata.Result
	if substring {
		results = table.LookupSubstring(query)
	} else {
		results = table.Lookup(query)
	}

	summary := LookupSummary{
		Mode:      "lookup",
		Query:     query,
		Section:   section,
		Substring: substring,
		Total:     len(results),
		Results:   results,
	}
	if limit > 0 && len(summary.Results) > limit {
		summary.Results = summary.Results[:limit]
	}
	if summary.Results == nil {
		summary.Results = []searchdata.Result{}
	}
	if summary.Total == 0 {
		summary.Suggestions = table.Suggest(query, lookupSuggestions)
	}
	return PrintLookupSummary(stdout(cmd), summary, asJSON)
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skelly-dev/doxsearch/internal/searchdata"
)

// RunValidate checks a searchData file, a JSON export or a whole search site
// and reports every integrity issue. It fails when any issue is an error.
func RunValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to access %s: %w", path, err)
	}

	summary := ValidateSummary{Mode: "validate", Path: path, Valid: true}
	var loadErr error
	switch {
	case info.IsDir():
		summary.Kind = "site"
		var idx *searchdata.Index
		idx, loadErr = searchdata.LoadSite(ctx, path)
		if loadErr == nil {
			summary.Sections = make(map[string]int)
			for _, section := range idx.Sections() {
				table, _ := idx.Table(section.Name)
				summary.Sections[section.Name] = table.Len()
			}
			countTable(&summary, idx.All())
			if idx.All() == nil {
				summary.Issues = append(summary.Issues, searchdata.Issue{
					Severity: searchdata.SeverityWarning,
					Message:  `site has no "all" section`,
				})
			}
		}
	case isJSONPath(path):
		summary.Kind = "json"
		var table *searchdata.Table
		table, loadErr = loadTable(ctx, path, "")
		countTable(&summary, table)
	default:
		summary.Kind = "file"
		var table *searchdata.Table
		table, loadErr = searchdata.ParseFile(ctx, path)
		countTable(&summary, table)
	}

	if loadErr != nil {
		summary.Valid = false
		summary.Issues = append(summary.Issues, searchdata.IssuesOf(loadErr)...)
	}
	if err := PrintValidateSummary(stdout(cmd), summary, asJSON); err != nil {
		return err
	}
	if !summary.Valid {
		return errIssuesFound
	}
	return nil
}

func countTable(summary *ValidateSummary, table *searchdata.Table) {
	if table == nil {
		return
	}
	summary.Keys = table.Len()
	for _, entry := range table.Entries() {
		summary.Matches += len(entry.Matches)
	}
}

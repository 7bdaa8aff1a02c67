package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skelly-dev/doxsearch/internal/config"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "doxsearch",
		Short: "Build, check and serve Doxygen-style search indexes",
		Long: `doxsearch extracts documented symbols from source trees, tag files,
symbol manifests and HTML pages, and writes the search/ directory a
documentation site loads to drive its search box.

It can also validate an existing searchData index, look names up in it,
convert it to and from JSON, and serve lookups over HTTP.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to "+config.FileName+" (default: <root>/"+config.FileName+")")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug|info|warn|error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text|json")

	// Build Commands
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default " + config.FileName + " and " + ".doxsearchignore",
		RunE:  RunInit,
	}
	initCmd.Flags().Bool("no-generate", false, "Write configuration only, skip the initial generate")
	initCmd.Flags().Bool("force", false, "Overwrite an existing "+config.FileName)

	generateCmd := &cobra.Command{
		Use:   "generate [path]",
		Short: "Extract symbols and write the search index",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunGenerate,
	}
	generateCmd.Flags().StringSliceP("lang", "l", []string{}, "Languages to parse (default: all supported)")
	generateCmd.Flags().StringP("out", "o", "", "Output directory or file (default: output.dir)")
	generateCmd.Flags().String("format", "", "Output format: site|file|json (default: output.format)")
	generateCmd.Flags().Bool("json", false, "Print machine-readable run summary")

	// Inspect Commands
	validateCmd := &cobra.Command{
		Use:   "validate <file|dir>",
		Short: "Check a searchData file, JSON export or search site",
		Args:  cobra.ExactArgs(1),
		RunE:  RunValidate,
	}
	validateCmd.Flags().Bool("json", false, "Print machine-readable validation report")

	lookupCmd := &cobra.Command{
		Use:   "lookup <prefix>",
		Short: "Look a name up in a search index",
		Args:  cobra.ExactArgs(1),
		RunE:  RunLookup,
	}
	lookupCmd.Flags().String("index", "", "Search site directory or searchData file (default: output.dir)")
	lookupCmd.Flags().String("section", "all", "Section to search")
	lookupCmd.Flags().Bool("substring", false, "Match anywhere in the key instead of at the start")
	lookupCmd.Flags().Int("limit", 20, "Maximum number of matches to print (0 for all)")
	lookupCmd.Flags().Bool("json", false, "Print machine-readable matches")

	convertCmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert between searchData (.js) and the JSON export (.json)",
		Args:  cobra.ExactArgs(2),
		RunE:  RunConvert,
	}
	convertCmd.Flags().String("section", "all", "Section to export when <in> is a search site")

	// Serve Commands
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lookups over HTTP",
		Args:  cobra.NoArgs,
		RunE:  RunServe,
	}
	serveCmd.Flags().Int("port", 0, "Port to listen on (default: server.port)")
	serveCmd.Flags().String("index", "", "Search site directory or searchData file (default: server.index, then output.dir)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "doxsearch %s\n", version)
		},
	}

	rootCmd.AddCommand(
		initCmd,
		generateCmd,
		validateCmd,
		lookupCmd,
		convertCmd,
		serveCmd,
		versionCmd,
	)

	return rootCmd
}

package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skelly-dev/doxsearch/internal/fileutil"
	"github.com/skelly-dev/doxsearch/internal/searchdata"
)

// RunConvert reads a searchData file, JSON export or site section and writes
// it in the format named by the output extension (.json for the export,
// anything else for searchData).
func RunConvert(cmd *cobra.Command, args []string) error {
	in, out := args[0], args[1]
	section, err := OptionalStringFlag(cmd, "section")
	if err != nil {
		return err
	}

	table, err := loadTable(commandContext(cmd), in, section)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if isJSONPath(out) {
		err = searchdata.EncodeJSON(&buf, table)
	} else {
		err = searchdata.Encode(&buf, table)
	}
	if err != nil {
		return err
	}
	if err := fileutil.WriteIfChanged(out, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Fprintf(stdout(cmd), "converted %d keys: %s -> %s\n", table.Len(), in, out)
	return nil
}

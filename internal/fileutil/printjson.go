package fileutil

import (
	"encoding/json"
	"io"
)

// PrintJSON writes value as indented JSON without HTML escaping.
func PrintJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(value)
}

package searchdata

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// JSONVersion tags the JSON export format.
const JSONVersion = "searchdata-v1"

const schemaID = "https://doxsearch.dev/schema/searchdata-v1.json"

// ErrSchema marks a JSON export that does not satisfy the export schema.
var ErrSchema = errors.New("schema violation")

//go:embed searchdata.schema.json
var schemaJSON []byte

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to decode export schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaID, doc); err != nil {
		return nil, fmt.Errorf("failed to add export schema: %w", err)
	}
	return compiler.Compile(schemaID)
})

type jsonDocument struct {
	Version string  `json:"version"`
	Entries []Entry `json:"entries"`
}

// EncodeJSON writes t as the JSON export.
func EncodeJSON(w io.Writer, t *Table) error {
	doc := jsonDocument{Version: JSONVersion, Entries: t.Entries()}
	if doc.Entries == nil {
		doc.Entries = []Entry{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(doc)
}

// ValidateJSON checks data against the export schema.
func ValidateJSON(data []byte) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := schema.Validate(instance); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return fmt.Errorf("%w: %v", ErrSchema, err)
		}
		var issues []Issue
		collectSchemaIssues(verr, &issues)
		if len(issues) == 0 {
			issues = append(issues, Issue{Severity: SeverityError, Message: fmt.Sprintf("%s: %v", ErrSchema, err), Err: ErrSchema})
		}
		return &ValidationError{Issues: issues}
	}
	return nil
}

func collectSchemaIssues(verr *jsonschema.ValidationError, issues *[]Issue) {
	if len(verr.Causes) == 0 {
		*issues = append(*issues, Issue{
			Severity: SeverityError,
			Message:  fmt.Sprintf("%s at /%s", ErrSchema, strings.Join(verr.InstanceLocation, "/")),
			Err:      ErrSchema,
		})
		return
	}
	for _, cause := range verr.Causes {
		collectSchemaIssues(cause, issues)
	}
}

// DecodeJSON validates data against the export schema and builds a table.
func DecodeJSON(data []byte) (*Table, error) {
	if err := ValidateJSON(data); err != nil {
		return nil, err
	}
	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return NewTable(doc.Entries)
}

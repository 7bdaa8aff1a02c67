// Package searchdata models the Doxygen-style client-side search index: the
// searchData tables a documentation site loads to drive its search box.
package searchdata

// Match is one candidate documentation target for a search key.
type Match struct {
	Label     string `json:"label"`
	TargetURL string `json:"url"`
	Scope     string `json:"scope,omitempty"`
	// External marks links that leave the documented project (the numeric
	// flag in the wire tuple).
	External bool `json:"external,omitempty"`
}

// Entry maps one normalized search key to its matches.
type Entry struct {
	Key     string  `json:"key"`
	Matches []Match `json:"matches"`
}

// Label returns the display label shared by the entry's matches.
func (e Entry) Label() string {
	if len(e.Matches) == 0 {
		return ""
	}
	return e.Matches[0].Label
}

// Result is a match returned by a lookup together with the key it was found under.
type Result struct {
	Key string `json:"key"`
	Match
}

// Symbol is a documented symbol handed to the Builder.
type Symbol struct {
	Name     string `json:"name" yaml:"name"`
	Scope    string `json:"scope,omitempty" yaml:"scope,omitempty"`
	Section  string `json:"section" yaml:"section"`
	URL      string `json:"url" yaml:"url"`
	External bool   `json:"external,omitempty" yaml:"external,omitempty"`
}

const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Issue is a single integrity finding. It mirrors the parser's issue shape so
// the CLI can print both the same way.
type Issue struct {
	Key      string `json:"key,omitempty"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Err      error  `json:"-"`
}

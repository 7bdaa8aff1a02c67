package searchdata

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyKey       = errors.New("empty search key")
	ErrInvalidKey     = errors.New("invalid search key")
	ErrDuplicateKey   = errors.New("duplicate search key")
	ErrNoMatches      = errors.New("entry has no matches")
	ErrEmptyLabel     = errors.New("empty label")
	ErrLabelMismatch  = errors.New("matches disagree on label")
	ErrEmptyTarget    = errors.New("empty target url")
	ErrInvalidTarget  = errors.New("invalid target url")
	ErrUnknownSection = errors.New("unknown section")
	ErrMalformed      = errors.New("malformed search data")
)

// ValidationError aggregates every error-severity issue found while
// validating a table.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	switch len(e.Issues) {
	case 0:
		return "search data validation failed"
	case 1:
		return "search data validation failed: " + e.Issues[0].Message
	}
	messages := make([]string, 0, 3)
	for i, issue := range e.Issues {
		if i == 3 {
			break
		}
		messages = append(messages, issue.Message)
	}
	more := ""
	if len(e.Issues) > 3 {
		more = fmt.Sprintf(" (+%d more)", len(e.Issues)-3)
	}
	return fmt.Sprintf("search data validation failed with %d issues: %s%s", len(e.Issues), strings.Join(messages, "; "), more)
}

// Unwrap exposes the sentinel of every issue to errors.Is.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Err != nil {
			errs = append(errs, issue.Err)
		}
	}
	return errs
}

// IssuesOf returns the issues carried by err, or a single error issue when err
// is not a ValidationError.
func IssuesOf(err error) []Issue {
	if err == nil {
		return nil
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Issues
	}
	return []Issue{{Severity: SeverityError, Message: err.Error(), Err: err}}
}

func errorIssue(key string, sentinel error, format string, args ...any) Issue {
	return Issue{
		Key:      key,
		Severity: SeverityError,
		Message:  fmt.Sprintf("%s: %s", sentinel, fmt.Sprintf(format, args...)),
		Err:      sentinel,
	}
}

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

type parseProgressReporter struct {
	enabled bool
	out     io.Writer
	label   string
	start   time.Time
	spinner int
	lastLen int
	count   int
}

// newParseProgressReporter draws a spinner on stderr while files are parsed.
// It stays silent when stderr is not a terminal or a JSON summary was asked
// for.
func newParseProgressReporter(label string, asJSON bool) *parseProgressReporter {
	stat, err := os.Stderr.Stat()
	enabled := err == nil && (stat.Mode()&os.ModeCharDevice) != 0 && !asJSON
	return &parseProgressReporter{
		enabled: enabled,
		out:     os.Stderr,
		label:   label,
		start:   time.Now(),
	}
}

func (r *parseProgressReporter) Update(file string, count int) {
	r.count = count
	if !r.enabled {
		return
	}
	frames := [4]string{"-", "\\", "|", "/"}
	frame := frames[r.spinner%len(frames)]
	r.spinner++
	file = strings.TrimSpace(file)
	if len(file) > 88 {
		file = "..." + file[len(file)-85:]
	}
	r.printStatus(fmt.Sprintf("%s %s %d parsing %s", frame, r.label, count, file))
}

func (r *parseProgressReporter) Done() {
	if !r.enabled || r.count == 0 {
		return
	}
	elapsed := time.Since(r.start).Round(time.Millisecond)
	r.printStatus(fmt.Sprintf("%s complete (%d files in %s)", r.label, r.count, elapsed))
	fmt.Fprintln(r.out)
}

func (r *parseProgressReporter) printStatus(status string) {
	if r.lastLen > len(status) {
		status = status + strings.Repeat(" ", r.lastLen-len(status))
	}
	r.lastLen = len(status)
	fmt.Fprintf(r.out, "\r%s", status)
}

package searchdata

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// VarName is the JavaScript variable a search file assigns its array to.
const VarName = "searchData"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&#39;",
	`"`, "&quot;",
)

// Encode writes t as a searchData file:
//
//	var searchData=
//	[
//	  ['key',['label',['url',1,'scope'],...]],
//	  ...
//	];
//
// Entries are written in table order. Labels and scopes are HTML-escaped and
// every string is a single-quoted JavaScript literal.
func Encode(w io.Writer, t *Table) error {
	var buf bytes.Buffer
	buf.WriteString("var " + VarName + "=\n[\n")

	entries := t.Entries()
	for i, entry := range entries {
		buf.WriteString("  [")
		buf.WriteString(jsQuote(entry.Key))
		buf.WriteString(",[")
		buf.WriteString(jsQuote(htmlEscaper.Replace(entry.Label())))
		for _, match := range entry.Matches {
			external := "0"
			if match.External {
				external = "1"
			}
			fmt.Fprintf(&buf, ",[%s,%s,%s]",
				jsQuote(match.TargetURL),
				external,
				jsQuote(htmlEscaper.Replace(match.Scope)),
			)
		}
		buf.WriteString("]]")
		if i < len(entries)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("];\n")

	_, err := w.Write(buf.Bytes())
	return err
}

// Marshal returns the encoded form of t.
func Marshal(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func jsQuote(s string) string {
	return jsQuoteWith(s, '\'')
}

func jsQuoteWith(s string, quote byte) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(quote)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == quote || ch == '\\':
			b.WriteByte('\\')
			b.WriteByte(ch)
		case ch == '\n':
			b.WriteString(`\n`)
		case ch == '\r':
			b.WriteString(`\r`)
		case ch == '\t':
			b.WriteString(`\t`)
		case ch < 0x20:
			fmt.Fprintf(&b, `\x%02x`, ch)
		default:
			b.WriteByte(ch)
		}
	}
	b.WriteByte(quote)
	return b.String()
}

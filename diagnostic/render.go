package diagnostic

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dhamidi/cstkit/text"
)

// Render writes d as a report with the offending source line and a caret
// marker under the reported range.
func Render(w io.Writer, filename string, lines *text.Lines, d Diagnostic) error {
	r := d.Range()
	start := lines.Position(r.Start)
	end := lines.Position(r.End)

	line := lines.Line(start.Line)
	width := 1
	if end.Line == start.Line && end.Column > start.Column {
		width = end.Column - start.Column
	} else if end.Line > start.Line {
		width = max(1, utf8.RuneCountInString(line)-start.Column+1)
	}

	gutter := strconv.Itoa(start.Line)
	pad := strings.Repeat(" ", len(gutter))

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s[%s]: %s\n", d.Severity(), d.Code(), d.Message())
	fmt.Fprintf(&sb, "%s--> %s:%s\n", pad, filename, start)
	fmt.Fprintf(&sb, "%s |\n", pad)
	fmt.Fprintf(&sb, "%s | %s\n", gutter, line)
	fmt.Fprintf(&sb, "%s | %s%s\n", pad, strings.Repeat(" ", start.Column-1), strings.Repeat("^", width))

	_, err := io.WriteString(w, sb.String())
	return err
}

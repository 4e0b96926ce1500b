package export

import (
	"bufio"
	"io"
	"strings"
)

// WriteText writes the document as plain text with a form feed between pages.
func WriteText(w io.Writer, doc Document) error {
	bw := bufio.NewWriter(w)
	for i, p := range doc.Pages {
		if i > 0 {
			bw.WriteString("\f\n")
		}
		for _, l := range p.Lines {
			if l.Indent > 0 && l.Text != "" {
				bw.WriteString(strings.Repeat(" ", l.Indent))
			}
			bw.WriteString(l.Text)
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}

package output

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
)

var (
	captionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
)

// ConsoleSink prints tables in aligned columns.
type ConsoleSink struct {
	w     io.Writer
	color bool
}

// NewConsoleSink prints to w. Styling is applied only when color is set,
// so piped output stays plain text.
func NewConsoleSink(w io.Writer, color bool) *ConsoleSink {
	return &ConsoleSink{w: w, color: color}
}

func (s *ConsoleSink) Write(ctx context.Context, r Result) (string, error) {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	for _, record := range r.Table.Records() {
		if _, err := fmt.Fprintln(tw, strings.Join(record, "\t")); err != nil {
			return "", err
		}
	}
	if err := tw.Flush(); err != nil {
		return "", err
	}

	caption := fmt.Sprintf("%s | %s | %d rows", r.Location.SiteID, r.Query.Product, r.Table.Len())
	lines := strings.SplitAfterN(buf.String(), "\n", 2)
	if s.color {
		caption = captionStyle.Render(caption)
		lines[0] = headerStyle.Render(strings.TrimSuffix(lines[0], "\n")) + "\n"
	}

	if _, err := fmt.Fprintln(s.w, caption); err != nil {
		return "", err
	}
	for _, line := range lines {
		if _, err := io.WriteString(s.w, line); err != nil {
			return "", err
		}
	}

	return "stdout", nil
}

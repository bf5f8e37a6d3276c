package probe

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type summaryRow struct {
	label string
	value string
}

// WriteArrivalSummary renders receiver totals to w.
func WriteArrivalSummary(w io.Writer, s ArrivalStats) error {
	return writeSummary(w, "rx summary", []summaryRow{
		{"packets", fmt.Sprint(s.Packets)},
		{"bytes", fmt.Sprint(s.Bytes)},
		{"elapsed", s.Last.Round(time.Microsecond).String()},
		{"min diff", s.MinDiff.String()},
		{"mean diff", s.MeanDiff().String()},
		{"max diff", s.MaxDiff.String()},
		{"jitter", s.Jitter().String()},
	})
}

// WriteSendSummary renders transmitter totals to w.
func WriteSendSummary(w io.Writer, s SendStats) error {
	return writeSummary(w, "tx summary", []summaryRow{
		{"packets", fmt.Sprint(s.Packets)},
		{"bytes", fmt.Sprint(s.Bytes)},
		{"errors", fmt.Sprint(s.Errors)},
		{"elapsed", s.Elapsed().Round(time.Microsecond).String()},
	})
}

func writeSummary(w io.Writer, title string, rows []summaryRow) error {
	r := lipgloss.NewRenderer(w)
	titleStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle := r.NewStyle().Width(11).Foreground(lipgloss.Color("8"))
	boxStyle := r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	lines := []string{titleStyle.Render(title)}
	for _, row := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(row.label), row.value))
	}

	_, err := fmt.Fprintln(w, boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	return err
}

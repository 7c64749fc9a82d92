package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/rtuscope/internal/framing"
)

// Summary is the box printed when a monitor run ends
type Summary struct {
	Title     string         // e.g., "Monitor stopped"
	Stats     framing.Stats  // Counters reported by the synchronizer
	BytesRead int            // Bytes read from the transport
	Elapsed   time.Duration  // Wall (or replay) time covered
	Colors    *ColorRegistry // Optional, paints per-device lines
	Err       error          // Transport error that ended the run
	Width     int            // Terminal width
}

// NewSummary creates a summary box for stats
func NewSummary(title string, stats framing.Stats) *Summary {
	return &Summary{
		Title: title,
		Stats: stats,
		Width: GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (s *Summary) SetWidth(width int) *Summary {
	s.Width = width
	return s
}

// Render returns the styled summary box as a string
func (s *Summary) Render() string {
	width := s.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	border := SuccessColor
	title := SummaryTitleStyle
	switch {
	case s.Err != nil:
		border = ErrorColor
		title = title.Foreground(ErrorColor)
	case s.Stats.Overflows > 0 || s.Stats.Timeouts > 0:
		border = WarningColor
		title = title.Foreground(WarningColor)
	}

	lines := []string{"", title.Render(s.Title), ""}
	if s.Err != nil {
		lines = append(lines, ErrorMessageStyle.Render("Error: "+s.Err.Error()), "")
	}

	for _, row := range s.rows() {
		lines = append(lines, SummaryKeyStyle.Render(row.Key+":")+" "+SummaryValueStyle.Render(row.Value))
	}

	if addrs := s.Stats.Addresses(); len(addrs) > 0 {
		lines = append(lines, "")
		for _, a := range addrs {
			line := fmt.Sprintf("device %3d  %d frames", a, s.Stats.ByAddress[a])
			if s.Colors != nil {
				if c, ok := s.Colors.Lookup(a); ok {
					line = lipgloss.NewStyle().Foreground(c).Render(line)
				}
			}
			lines = append(lines, line)
		}
	}
	lines = append(lines, "")

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(border).
		Width(width-2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))
}

func (s *Summary) rows() []Param {
	rows := []Param{
		{"Frames", fmt.Sprintf("%d (%d bytes)", s.Stats.Frames, s.Stats.FrameBytes)},
		{"Exceptions", fmt.Sprintf("%d", s.Stats.Exceptions)},
		{"Noise bytes", fmt.Sprintf("%d", s.Stats.NoiseBytes)},
		{"Overflows", fmt.Sprintf("%d", s.Stats.Overflows)},
		{"Timeouts", fmt.Sprintf("%d", s.Stats.Timeouts)},
	}
	if s.BytesRead > 0 {
		rows = append(rows, Param{"Bytes read", fmt.Sprintf("%d", s.BytesRead)})
	}
	if s.Elapsed > 0 {
		rows = append(rows, Param{"Elapsed", s.Elapsed.Round(time.Millisecond).String()})
	}
	return rows
}

// String implements fmt.Stringer
func (s *Summary) String() string {
	return s.Render()
}

package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette for monitor output
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - summary
	ErrorColor   = lipgloss.Color("#FF5555") // Red - errors
	WarningColor = lipgloss.Color("#FFA500") // Orange - overflow and timeout notes
	MutedColor   = lipgloss.Color("#626262") // Gray - noise, secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content

	// OutboundColor marks frames rtuscope writes itself (ANSI red)
	OutboundColor = lipgloss.Color("1")
)

// Layout constants
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
)

// Shared styles
var (
	// HeaderTitleStyle is for the banner title (e.g., "MODBUS RTU MONITOR")
	HeaderTitleStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Bold(true).
				PaddingLeft(2)

	// HeaderCommandStyle is for the command path (e.g., "rtuscope monitor")
	HeaderCommandStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				PaddingLeft(2)

	// HeaderParamKeyStyle is for parameter keys (e.g., "Port:")
	HeaderParamKeyStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				PaddingLeft(2).
				Width(14)

	// HeaderParamValueStyle is for parameter values (e.g., "/dev/ttyUSB0")
	HeaderParamValueStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	// NoiseStyle renders discarded bytes
	NoiseStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// OutboundStyle renders frames written by rtuscope
	OutboundStyle = lipgloss.NewStyle().
			Foreground(OutboundColor)

	// AnnotationStyle renders the trailing frame description
	AnnotationStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	// TimestampStyle renders the leading timestamp column
	TimestampStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// SummaryTitleStyle is for the run summary title
	SummaryTitleStyle = lipgloss.NewStyle().
				Foreground(SuccessColor).
				Bold(true)

	// SummaryKeyStyle is for summary keys
	SummaryKeyStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(18)

	// SummaryValueStyle is for summary values
	SummaryValueStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	// ErrorMessageStyle is for error message text
	ErrorMessageStyle = lipgloss.NewStyle().
				Foreground(ErrorColor)
)

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/rtuscope/internal/framing"
	"github.com/muurk/rtuscope/internal/protocol"
)

// TimestampLayout is the layout of the optional timestamp column
const TimestampLayout = "15:04:05.000"

// HexPrinter renders segments as lines of lowercase hex pairs. Frames are
// drawn in their device color, noise muted and outbound frames red. With
// color disabled the output is plain text, suitable for pipes and files.
type HexPrinter struct {
	w          io.Writer
	renderer   *lipgloss.Renderer
	color      bool
	timestamps bool
	annotate   bool
}

// PrinterOption configures a HexPrinter
type PrinterOption func(*HexPrinter)

// WithColor enables or disables ANSI styling
func WithColor(enabled bool) PrinterOption {
	return func(p *HexPrinter) { p.color = enabled }
}

// WithTimestamps prefixes every line with the segment time
func WithTimestamps(enabled bool) PrinterOption {
	return func(p *HexPrinter) { p.timestamps = enabled }
}

// WithAnnotations appends a short description of each segment
func WithAnnotations(enabled bool) PrinterOption {
	return func(p *HexPrinter) { p.annotate = enabled }
}

// NewHexPrinter creates a printer writing to w. Color is on by default.
func NewHexPrinter(w io.Writer, opts ...PrinterOption) *HexPrinter {
	p := &HexPrinter{
		w:        w,
		renderer: lipgloss.NewRenderer(w),
		color:    true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit implements framing.Sink
func (p *HexPrinter) Emit(seg framing.Segment) {
	_, _ = io.WriteString(p.w, p.Format(seg)+"\n")
}

// Format renders one segment without the trailing newline
func (p *HexPrinter) Format(seg framing.Segment) string {
	var b strings.Builder

	if p.timestamps && !seg.At.IsZero() {
		b.WriteString(p.paint(TimestampStyle, seg.At.Format(TimestampLayout)))
		b.WriteByte(' ')
	}

	b.WriteString(p.paint(p.styleFor(seg), hexPairs(seg.Data)))

	if p.annotate {
		b.WriteString(p.paint(AnnotationStyle, "# "+Annotation(seg)))
	}

	return b.String()
}

func (p *HexPrinter) paint(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Renderer(p.renderer).Render(text)
}

func (p *HexPrinter) styleFor(seg framing.Segment) lipgloss.Style {
	switch seg.Role {
	case framing.RoleFrame:
		return lipgloss.NewStyle().Foreground(seg.Color)
	case framing.RoleOutbound:
		return OutboundStyle
	default:
		return NoiseStyle
	}
}

// hexPairs formats data as "%02x " pairs, trailing space included
func hexPairs(data []byte) string {
	var b strings.Builder
	b.Grow(len(data) * 3)
	for _, v := range data {
		fmt.Fprintf(&b, "%02x ", v)
	}
	return b.String()
}

// Annotation describes a segment in a few words
func Annotation(seg framing.Segment) string {
	switch seg.Role {
	case framing.RoleFrame, framing.RoleOutbound:
		desc := fmt.Sprintf("addr=%d %s", seg.Address, protocol.FunctionName(seg.Function))
		if seg.Exception {
			desc += " exception"
		}
		if seg.Role == framing.RoleOutbound {
			desc = "sent " + desc
		}
		return fmt.Sprintf("%s len=%d", desc, len(seg.Data))
	default:
		reason := string(seg.Reason)
		if reason == "" {
			reason = "unknown"
		}
		return fmt.Sprintf("noise (%s) len=%d", reason, len(seg.Data))
	}
}

// OutboundSegment builds the segment for a frame rtuscope writes itself
func OutboundSegment(frame []byte, at time.Time) framing.Segment {
	seg := framing.Segment{
		Role: framing.RoleOutbound,
		Data: frame,
		At:   at,
	}
	if len(frame) >= 2 {
		seg.Address = frame[0]
		seg.Function = protocol.FunctionCode(frame[1])
		seg.Exception = protocol.IsException(frame[1])
	}
	return seg
}

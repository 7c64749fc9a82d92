package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DefaultPalette lists device colors in assignment order: green, yellow,
// blue, purple, purple, cyan, white. Purple appearing twice is intentional.
var DefaultPalette = []lipgloss.Color{
	lipgloss.Color("2"),
	lipgloss.Color("3"),
	lipgloss.Color("4"),
	lipgloss.Color("5"),
	lipgloss.Color("5"),
	lipgloss.Color("6"),
	lipgloss.Color("7"),
}

// ColorRegistry assigns display colors to slave addresses in first-seen
// order, cycling through a fixed palette. Assignments last for the lifetime
// of the registry.
type ColorRegistry struct {
	palette  []lipgloss.Color
	assigned map[byte]lipgloss.Color
	order    []byte
	next     int
}

// NewColorRegistry creates a registry over palette, or DefaultPalette when
// palette is empty.
func NewColorRegistry(palette []lipgloss.Color) *ColorRegistry {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	p := make([]lipgloss.Color, len(palette))
	copy(p, palette)

	return &ColorRegistry{
		palette:  p,
		assigned: make(map[byte]lipgloss.Color),
	}
}

// ColorFor returns the color of address, assigning the next palette entry on
// first sight.
func (r *ColorRegistry) ColorFor(address byte) lipgloss.Color {
	if c, ok := r.assigned[address]; ok {
		return c
	}

	c := r.palette[r.next]
	r.next = (r.next + 1) % len(r.palette)
	r.assigned[address] = c
	r.order = append(r.order, address)
	return c
}

// Lookup returns the color of address without assigning one
func (r *ColorRegistry) Lookup(address byte) (lipgloss.Color, bool) {
	c, ok := r.assigned[address]
	return c, ok
}

// Len returns the number of addresses seen
func (r *ColorRegistry) Len() int {
	return len(r.order)
}

// Addresses returns the addresses seen, in first-seen order
func (r *ColorRegistry) Addresses() []byte {
	out := make([]byte, len(r.order))
	copy(out, r.order)
	return out
}

// ParsePalette converts configured color names into lipgloss colors.
// Accepted forms are ANSI numbers ("2"), hex ("#43BF6D") and the basic
// ANSI names ("green").
func ParsePalette(names []string) ([]lipgloss.Color, error) {
	var out []lipgloss.Color
	for _, name := range names {
		c, err := parseColor(name)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

var ansiNames = map[string]string{
	"black":   "0",
	"red":     "1",
	"green":   "2",
	"yellow":  "3",
	"blue":    "4",
	"purple":  "5",
	"magenta": "5",
	"cyan":    "6",
	"white":   "7",
}

func parseColor(name string) (lipgloss.Color, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if code, ok := ansiNames[name]; ok {
		return lipgloss.Color(code), nil
	}
	if strings.HasPrefix(name, "#") && (len(name) == 7 || len(name) == 4) {
		if _, err := strconv.ParseUint(name[1:], 16, 32); err == nil {
			return lipgloss.Color(name), nil
		}
	}
	if n, err := strconv.Atoi(name); err == nil && n >= 0 && n <= 255 {
		return lipgloss.Color(name), nil
	}
	return "", fmt.Errorf("invalid color %q (use an ANSI number, #rrggbb or a basic color name)", name)
}

package ui

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/rtuscope/internal/serialport"
)

// ErrPickerCancelled is returned when the user leaves the picker without
// choosing a port
var ErrPickerCancelled = errors.New("port selection cancelled")

// portItem wraps a PortInfo for use with bubbles/list
type portItem struct {
	port serialport.PortInfo
}

// Implement list.Item interface
func (p portItem) FilterValue() string {
	return p.port.Name + " " + p.port.Product
}

// portDelegate renders one port per line with its USB description below
type portDelegate struct{}

func (d portDelegate) Height() int                               { return 2 }
func (d portDelegate) Spacing() int                              { return 0 }
func (d portDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d portDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	pi, ok := item.(portItem)
	if !ok {
		return
	}

	name := lipgloss.NewStyle().PaddingLeft(2).Foreground(TextColor)
	desc := lipgloss.NewStyle().PaddingLeft(4).Foreground(MutedColor)
	if index == m.Index() {
		name = name.Foreground(PrimaryColor).Bold(true).SetString("▸")
	}

	fmt.Fprintf(w, "%s\n%s", name.Render(pi.port.Name), desc.Render(pi.port.Description()))
}

// pickerKeyMap defines key bindings for the port picker
type pickerKeyMap struct {
	Select key.Binding
	Quit   key.Binding
}

// portPickerModel is a bubbletea model choosing one serial port
type portPickerModel struct {
	list   list.Model
	keys   pickerKeyMap
	choice string
	done   bool
}

func newPortPickerModel(ports []serialport.PortInfo) portPickerModel {
	items := make([]list.Item, len(ports))
	for i, p := range ports {
		items[i] = portItem{port: p}
	}

	l := list.New(items, portDelegate{}, MinTerminalWidth, 14)
	l.Title = "Select a serial port"
	l.Styles.Title = HeaderTitleStyle.Foreground(PrimaryColor)
	l.SetShowStatusBar(false)

	return portPickerModel{
		list: l,
		keys: pickerKeyMap{
			Select: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "monitor port"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q", "esc", "ctrl+c"),
				key.WithHelp("q", "quit"),
			),
		},
	}
}

func (m portPickerModel) Init() tea.Cmd {
	return nil
}

func (m portPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-1)
		return m, nil

	case tea.KeyMsg:
		// Keys belong to the filter input while it is open
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Select):
			if item, ok := m.list.SelectedItem().(portItem); ok {
				m.choice = item.port.Name
			}
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Quit):
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m portPickerModel) View() string {
	if m.done {
		return ""
	}
	return m.list.View()
}

// PickPort shows an interactive list of ports on stderr and returns the
// chosen device name. A single port is returned without asking.
func PickPort(ports []serialport.PortInfo) (string, error) {
	switch len(ports) {
	case 0:
		return "", serialport.ErrNoPorts
	case 1:
		return ports[0].Name, nil
	}

	final, err := tea.NewProgram(newPortPickerModel(ports), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return "", fmt.Errorf("port picker failed: %w", err)
	}

	m, ok := final.(portPickerModel)
	if !ok || m.choice == "" {
		return "", ErrPickerCancelled
	}
	return m.choice, nil
}

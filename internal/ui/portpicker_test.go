package ui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muurk/rtuscope/internal/serialport"
)

var testPorts = []serialport.PortInfo{
	{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001", Product: "FT232R"},
	{Name: "/dev/ttyUSB1", IsUSB: true, VID: "1a86", PID: "7523"},
}

func TestPickPort_NoPromptNeeded(t *testing.T) {
	if _, err := PickPort(nil); !errors.Is(err, serialport.ErrNoPorts) {
		t.Errorf("PickPort(nil) error = %v, want ErrNoPorts", err)
	}

	got, err := PickPort(testPorts[:1])
	if err != nil || got != "/dev/ttyUSB0" {
		t.Errorf("PickPort(one) = %q, %v; want /dev/ttyUSB0", got, err)
	}
}

func TestPortPicker_Select(t *testing.T) {
	var m tea.Model = newPortPickerModel(testPorts)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	pm := m.(portPickerModel)
	if pm.choice != "/dev/ttyUSB1" {
		t.Errorf("choice = %q, want /dev/ttyUSB1", pm.choice)
	}
	if !pm.done || cmd == nil {
		t.Error("enter should finish the picker")
	}
	if pm.View() != "" {
		t.Error("View() should be empty once done")
	}
}

func TestPortPicker_Quit(t *testing.T) {
	var m tea.Model = newPortPickerModel(testPorts)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	pm := m.(portPickerModel)
	if pm.choice != "" || !pm.done || cmd == nil {
		t.Errorf("quit: choice = %q, done = %v", pm.choice, pm.done)
	}
}

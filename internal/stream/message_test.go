package stream

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/muurk/rtuscope/internal/framing"
)

var testTime = time.Date(2026, 5, 1, 12, 0, 0, 123000000, time.UTC)

func TestMessage_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		seg  framing.Segment
	}{
		{
			name: "frame",
			seg: framing.Segment{
				Role:     framing.RoleFrame,
				Data:     []byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x01, 0x84, 0x0a},
				Address:  1,
				Function: 3,
				At:       testTime,
			},
		},
		{
			name: "exception frame",
			seg: framing.Segment{
				Role:      framing.RoleFrame,
				Data:      []byte{0x11, 0x83, 0x02, 0xc1, 0x34},
				Address:   0x11,
				Function:  3,
				Exception: true,
				At:        testTime,
			},
		},
		{
			name: "outbound",
			seg: framing.Segment{
				Role:     framing.RoleOutbound,
				Data:     []byte{0x01, 0x06, 0x00, 0x01, 0x00, 0x03, 0x98, 0x0b},
				Address:  1,
				Function: 6,
				At:       testTime,
			},
		},
		{
			name: "noise",
			seg: framing.Segment{
				Role:   framing.RoleNoise,
				Data:   []byte{0xff, 0x00},
				Reason: framing.ReasonResync,
				At:     testTime,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(NewMessage(tt.seg))
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			var msg Message
			if err := json.Unmarshal(raw, &msg); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			got, err := msg.Segment()
			if err != nil {
				t.Fatalf("Segment() error = %v", err)
			}

			if got.Role != tt.seg.Role {
				t.Errorf("Role = %v, want %v", got.Role, tt.seg.Role)
			}
			if !bytes.Equal(got.Data, tt.seg.Data) {
				t.Errorf("Data = %x, want %x", got.Data, tt.seg.Data)
			}
			if got.Address != tt.seg.Address || got.Function != tt.seg.Function || got.Exception != tt.seg.Exception {
				t.Errorf("frame fields = (%d, %d, %v), want (%d, %d, %v)",
					got.Address, got.Function, got.Exception,
					tt.seg.Address, tt.seg.Function, tt.seg.Exception)
			}
			if got.Reason != tt.seg.Reason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.seg.Reason)
			}
			if !got.At.Equal(tt.seg.At) {
				t.Errorf("At = %v, want %v", got.At, tt.seg.At)
			}
		})
	}
}

func TestNewMessage_Fields(t *testing.T) {
	msg := NewMessage(framing.Segment{
		Role:   framing.RoleNoise,
		Data:   []byte{0xab, 0xcd, 0xef},
		Reason: framing.ReasonTimeout,
		At:     testTime,
	})

	if msg.Role != "noise" || msg.Data != "abcdef" || msg.Length != 3 || msg.Reason != "timeout" {
		t.Errorf("NewMessage() = %+v", msg)
	}
}

func TestMessage_SegmentErrors(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{"bad hex", Message{Role: "frame", Data: "zz", Length: 1}},
		{"length mismatch", Message{Role: "frame", Data: "0102", Length: 3}},
		{"unknown role", Message{Role: "bogus", Data: "01", Length: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.msg.Segment(); err == nil {
				t.Error("Segment() expected error")
			}
		})
	}
}

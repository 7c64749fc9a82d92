package stream

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/muurk/rtuscope/internal/framing"
)

// Message is the JSON form of a segment on the wire
type Message struct {
	Role      string    `json:"role"`
	Data      string    `json:"data"`
	Length    int       `json:"length"`
	Address   byte      `json:"address,omitempty"`
	Function  byte      `json:"function,omitempty"`
	Exception bool      `json:"exception,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	At        time.Time `json:"at"`
}

// NewMessage converts a segment for transmission. Colors are not sent;
// each watcher assigns its own.
func NewMessage(seg framing.Segment) Message {
	msg := Message{
		Role:   seg.Role.String(),
		Data:   hex.EncodeToString(seg.Data),
		Length: len(seg.Data),
		At:     seg.At,
	}
	switch seg.Role {
	case framing.RoleFrame, framing.RoleOutbound:
		msg.Address = seg.Address
		msg.Function = seg.Function
		msg.Exception = seg.Exception
	default:
		msg.Reason = string(seg.Reason)
	}
	return msg
}

// Segment converts a received message back into a segment
func (m Message) Segment() (framing.Segment, error) {
	data, err := hex.DecodeString(m.Data)
	if err != nil {
		return framing.Segment{}, fmt.Errorf("invalid segment data: %w", err)
	}
	if len(data) != m.Length {
		return framing.Segment{}, fmt.Errorf("segment length %d does not match %d data bytes", m.Length, len(data))
	}

	seg := framing.Segment{Data: data, At: m.At}
	switch m.Role {
	case "frame", "outbound":
		seg.Role = framing.RoleFrame
		if m.Role == "outbound" {
			seg.Role = framing.RoleOutbound
		}
		seg.Address = m.Address
		seg.Function = m.Function
		seg.Exception = m.Exception
	case "noise":
		seg.Role = framing.RoleNoise
		seg.Reason = framing.Reason(m.Reason)
	default:
		return framing.Segment{}, fmt.Errorf("unknown segment role %q", m.Role)
	}
	return seg, nil
}

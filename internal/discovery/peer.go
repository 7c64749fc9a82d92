package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Peer is an rtuscope monitor advertising its live stream on the network
type Peer struct {
	// Instance is the mDNS instance name (e.g., "rtuscope on plc-gw")
	Instance string

	// Hostname is the mDNS hostname (e.g., "plc-gw.local.")
	Hostname string

	// IP is the address to connect to (IPv4 preferred)
	IP string

	// Port is the stream server port
	Port int

	// Metadata contains the TXT record data: "device", "line", "path"
	Metadata map[string]string

	// DiscoveredAt is when the peer was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable description of the peer
func (p *Peer) String() string {
	desc := fmt.Sprintf("%s at %s", p.Instance, net.JoinHostPort(p.IP, strconv.Itoa(p.Port)))
	if dev := p.GetMetadata("device"); dev != "" {
		desc += " (" + dev
		if line := p.GetMetadata("line"); line != "" {
			desc += " " + line
		}
		desc += ")"
	}
	return desc
}

// StreamURL returns the WebSocket URL of the peer's segment stream
func (p *Peer) StreamURL() string {
	path := p.GetMetadata("path")
	if path == "" {
		path = DefaultPath
	}
	return "ws://" + net.JoinHostPort(p.IP, strconv.Itoa(p.Port)) + path
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (p *Peer) GetMetadata(key string) string {
	if p.Metadata == nil {
		return ""
	}
	return p.Metadata[key]
}

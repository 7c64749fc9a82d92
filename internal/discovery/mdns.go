package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/muurk/rtuscope/internal/logging"
	"go.uber.org/zap"
)

const (
	// ServiceType is the mDNS service type rtuscope streams advertise as
	ServiceType = "_rtuscope._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for peer discovery
	DefaultScanTimeout = 3 * time.Second

	// DefaultPath is the stream endpoint when a peer does not advertise one
	DefaultPath = "/ws"
)

// Scanner handles mDNS peer discovery
type Scanner struct {
	// Timeout is the maximum time to wait for peers
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan browses for rtuscope streams until the timeout expires or ctx is
// cancelled, and returns every peer seen.
func (s *Scanner) Scan(ctx context.Context) ([]*Peer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var (
		mu    sync.Mutex
		peers []*Peer
		seen  = make(map[string]bool)
		done  = make(chan struct{})
	)

	go func() {
		defer close(done)
		for entry := range entries {
			peer := parseServiceEntry(entry)
			if peer == nil {
				continue
			}
			key := peer.StreamURL()
			mu.Lock()
			if !seen[key] {
				seen[key] = true
				peers = append(peers, peer)
			}
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()

	// The resolver closes entries once browsing stops
	select {
	case <-done:
	case <-time.After(time.Second):
		logging.Debug("mDNS resolver did not close its channel in time")
	}

	mu.Lock()
	defer mu.Unlock()
	return append([]*Peer(nil), peers...), nil
}

// parseServiceEntry converts a zeroconf service entry to a Peer.
// Returns nil if the entry has no usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Peer {
	if entry == nil || entry.Port == 0 {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	// TXT records are in "key=value" format
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	return &Peer{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         entry.Port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// Advertisement is a registered mDNS service
type Advertisement struct {
	server *zeroconf.Server
}

// Advertise announces a stream server on port. The TXT record carries the
// monitored device, its line settings and the stream path.
func Advertise(instance string, port int, device, line string) (*Advertisement, error) {
	txt := []string{"path=" + DefaultPath}
	if device != "" {
		txt = append(txt, "device="+device)
	}
	if line != "" {
		txt = append(txt, "line="+line)
	}

	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Advertising stream over mDNS",
		zap.String("instance", instance),
		zap.String("service", ServiceType),
		zap.Int("port", port),
	)
	return &Advertisement{server: server}, nil
}

// Shutdown withdraws the advertisement
func (a *Advertisement) Shutdown() {
	if a != nil && a.server != nil {
		a.server.Shutdown()
	}
}

package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/rtuscope/internal/logging"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Path is the WebSocket endpoint
	Path = "/ws"
)

// Server publishes a hub over WebSocket
type Server struct {
	hub      *Hub
	listener net.Listener
	http     *http.Server
	upgrader websocket.Upgrader
	wg       sync.WaitGroup
}

// Listen binds addr and prepares a server for hub. Use port 0 to pick a
// free port.
func Listen(addr string, hub *Hub) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s := &Server{
		hub:      hub,
		listener: listener,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The stream is read-only, so any origin may watch it
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc(Path, s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	s.http = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: writeWait,
	}

	logging.Info("Stream server listening",
		zap.String("addr", listener.Addr().String()),
	)
	return s, nil
}

// Addr returns the bound address
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Port returns the bound TCP port
func (s *Server) Port() int {
	if tcp, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}

// Serve accepts connections until Shutdown is called
func (s *Server) Serve() error {
	if err := s.http.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("stream server: %w", err)
	}
	return nil
}

// Shutdown disconnects all clients and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down stream server...")

	// Hijacked connections are not tracked by http.Server
	s.hub.Close()
	err := s.http.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All stream clients closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": s.hub.Clients(),
		"sent":    s.hub.Sent(),
		"dropped": s.hub.Dropped(),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	remoteAddr := conn.RemoteAddr().String()
	logging.LogConnection(remoteAddr, "websocket_upgraded")

	c := s.hub.register(remoteAddr)
	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.writePump(conn, c)
	}()
	go func() {
		defer s.wg.Done()
		s.readPump(conn, c)
	}()
}

// writePump sends queued segments and keepalive pings. It owns all writes
// to conn.
func (s *Server) writePump(conn *websocket.Conn, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
		logging.LogConnection(c.remoteAddr, "websocket_closed")
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "monitor stopped"))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logging.Debug("Write to stream client failed",
					zap.String("remote_addr", c.remoteAddr),
					zap.Error(err),
				)
				s.hub.unregister(c)
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.hub.unregister(c)
				return
			}
		}
	}
}

// readPump discards client messages and handles pongs until the peer goes
// away.
func (s *Server) readPump(conn *websocket.Conn, c *client) {
	defer s.hub.unregister(c)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Info("Stream client closed unexpectedly",
					zap.String("remote_addr", c.remoteAddr),
					zap.Error(err),
				)
			}
			return
		}
	}
}

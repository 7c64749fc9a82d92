package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/rtuscope/internal/framing"
	"github.com/muurk/rtuscope/internal/logging"
	"go.uber.org/zap"
)

// Watch connects to a stream server at url and forwards every received
// segment to sink until the server closes the stream or ctx is cancelled.
func Watch(ctx context.Context, url string, sink framing.Sink) error {
	dialer := websocket.Dialer{HandshakeTimeout: writeWait}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer func() { _ = conn.Close() }()

	logging.Info("Connected to stream", zap.String("url", url))

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("stream read: %w", err)
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logging.Warn("Ignoring malformed stream message", zap.Error(err))
			continue
		}
		seg, err := msg.Segment()
		if err != nil {
			logging.Warn("Ignoring invalid stream message", zap.Error(err))
			continue
		}
		sink.Emit(seg)
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/rtuscope/internal/config"
	"github.com/muurk/rtuscope/internal/discovery"
	"github.com/muurk/rtuscope/internal/framing"
	"github.com/muurk/rtuscope/internal/influx"
	"github.com/muurk/rtuscope/internal/logging"
	"github.com/muurk/rtuscope/internal/monitor"
	"github.com/muurk/rtuscope/internal/stream"
	"github.com/muurk/rtuscope/internal/ui"
)

const streamShutdownTimeout = 5 * time.Second

// session wires a transport to the synchronizer and every output sink
type session struct {
	cfg     *config.Config
	colors  *ui.ColorRegistry
	printer *ui.HexPrinter
	metrics *influx.Sink
	hub     *stream.Hub
	server  *stream.Server
	advert  *discovery.Advertisement
	sinks   framing.MultiSink
	sync    *framing.Synchronizer
}

// newSession builds the output side of a monitor run. Hex lines go to out.
// line describes the monitored port for stream announcements.
func newSession(ctx context.Context, cfg *config.Config, out io.Writer, color bool, line string) (*session, error) {
	palette, err := ui.ParsePalette(cfg.Display.Palette)
	if err != nil {
		return nil, fmt.Errorf("display.palette: %w", err)
	}

	s := &session{
		cfg:    cfg,
		colors: ui.NewColorRegistry(palette),
		printer: ui.NewHexPrinter(out,
			ui.WithColor(color),
			ui.WithTimestamps(cfg.Display.Timestamps),
			ui.WithAnnotations(cfg.Display.Annotate),
		),
	}

	s.sinks = framing.MultiSink{s.printer}
	if cfg.Influx.Enabled() {
		s.metrics, err = influx.NewSink(ctx, cfg.InfluxConfig())
		if err != nil {
			return nil, err
		}
		s.sinks = append(s.sinks, s.metrics)
	}
	if cfg.Stream.Enabled() {
		if err := s.startStream(line); err != nil {
			s.close()
			return nil, err
		}
		s.sinks = append(s.sinks, s.hub)
	}

	fc, err := cfg.FramingSettings()
	if err != nil {
		s.close()
		return nil, err
	}
	s.sync = framing.NewSynchronizer(fc, s.colors, s.sinks)
	return s, nil
}

// startStream serves the segment stream and optionally announces it
func (s *session) startStream(line string) error {
	s.hub = stream.NewHub()
	srv, err := stream.Listen(s.cfg.Stream.Listen, s.hub)
	if err != nil {
		return err
	}
	s.server = srv

	go func() {
		if err := srv.Serve(); err != nil {
			logging.Error("Stream server stopped", zap.Error(err))
		}
	}()

	if !s.cfg.Stream.Advertise {
		return nil
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	s.advert, err = discovery.Advertise("rtuscope on "+host, srv.Port(), s.cfg.Serial.Device, line)
	if err != nil {
		// The stream still works by address
		logging.Warn("mDNS advertisement failed", zap.Error(err))
	}
	return nil
}

// emitOutbound reports a frame rtuscope wrote to the line
func (s *session) emitOutbound(frame []byte, at time.Time) {
	s.sinks.Emit(ui.OutboundSegment(frame, at))
}

// run drives the monitor over transport until ctx ends or the transport
// does, then prints the summary.
func (s *session) run(ctx context.Context, transport io.Reader, now func() time.Time) error {
	mon := monitor.New(transport, s.sync,
		monitor.WithTimeout(s.cfg.Timeout()),
		monitor.WithClock(now),
	)

	runErr := mon.Run(ctx)
	s.close()

	stats := mon.Stats()
	logging.Info("Monitor finished",
		zap.Int("frames", stats.Frames),
		zap.Int("noise_bytes", stats.NoiseBytes),
		zap.Int("overflows", stats.Overflows),
		zap.Int("timeouts", stats.Timeouts),
		zap.Int("bytes_read", stats.BytesRead),
	)

	if !quiet && s.cfg.Display.Summary {
		summary := ui.NewSummary("Monitor stopped", stats.Stats)
		summary.BytesRead = stats.BytesRead
		summary.Elapsed = stats.Elapsed
		summary.Colors = s.colors
		summary.Err = runErr
		fmt.Fprintln(os.Stderr, summary.Render())
	}

	return runErr
}

// close releases every output. It is safe to call more than once.
func (s *session) close() {
	if s.advert != nil {
		s.advert.Shutdown()
		s.advert = nil
	}
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), streamShutdownTimeout)
		if err := s.server.Shutdown(ctx); err != nil {
			logging.Warn("Failed to stop stream server", zap.Error(err))
		}
		cancel()
		logging.Info("Stream closed",
			zap.Uint64("sent", s.hub.Sent()),
			zap.Uint64("dropped", s.hub.Dropped()),
		)
		s.server = nil
	}
	if s.metrics != nil {
		if err := s.metrics.Close(); err != nil {
			logging.Warn("Failed to close InfluxDB sink", zap.Error(err))
		}
		s.metrics = nil
	}
}

// colorEnabled reports whether hex output should be styled
func colorEnabled(cfg *config.Config) bool {
	return cfg.Display.Color && os.Getenv("NO_COLOR") == "" && ui.IsTerminal(os.Stdout)
}

// printHeader writes the banner to stderr unless --quiet is set
func printHeader(title, command string, params ...ui.Param) {
	if quiet {
		return
	}
	fmt.Fprintln(os.Stderr, ui.NewHeader(title, command, params...).Render())
}

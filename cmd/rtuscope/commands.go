package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/rtuscope/internal/capture"
	"github.com/muurk/rtuscope/internal/config"
	"github.com/muurk/rtuscope/internal/logging"
	"github.com/muurk/rtuscope/internal/protocol"
	"github.com/muurk/rtuscope/internal/serialport"
	"github.com/muurk/rtuscope/internal/stream"
	"github.com/muurk/rtuscope/internal/ui"
)

// Command flags
var (
	sendListen  time.Duration
	crcCheck    bool
	configForce bool
	replayStep  time.Duration
)

func init() {
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(crcCmd)
	rootCmd.AddCommand(configCmd)
}

// monitorCmd listens on a serial line
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Monitor a Modbus RTU line (default command)",
	Long: `Open a serial port and print every Modbus RTU frame seen on the line.

Frames are located by CRC, so the monitor can start in the middle of a
conversation. Bytes that cannot be part of a frame are printed as noise:
bytes before a frame, a buffer that filled up without a frame, and bytes
left over when the line goes quiet for --timeout.

Stop with Ctrl+C; a summary is printed on exit.`,
	Example: `  # Pick the port interactively, 19200 8E1
  rtuscope

  # Explicit port and line settings
  rtuscope monitor --port /dev/ttyUSB0 --baud 9600 --parity none

  # Also accept function 16 (write multiple registers)
  rtuscope monitor -p /dev/ttyUSB0 --functions 3,6,16,22

  # Record the session for later replay
  rtuscope monitor -p /dev/ttyUSB0 --capture line.cbor

  # Plain output for a file
  rtuscope monitor -p COM3 --no-color -q > frames.txt`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd.Flags())
	if err != nil {
		return err
	}

	if cfg.Serial.Device == "" {
		device, err := choosePort()
		if err != nil {
			return err
		}
		cfg.Serial.Device = device
	}

	port, sc, err := openPort(cfg)
	if err != nil {
		return err
	}

	var transport serialport.Port = port
	if cfg.Capture.Path != "" {
		rec, err := capture.Create(cfg.Capture.Path, port, capture.Header{
			Device: sc.Device,
			Line:   sc.LineSettings(),
		})
		if err != nil {
			port.Close()
			return err
		}
		transport = rec
	}
	defer transport.Close()

	params := []ui.Param{
		{Key: "Port", Value: sc.Device},
		{Key: "Line", Value: sc.LineSettings()},
		{Key: "Functions", Value: functionList(cfg)},
		{Key: "Timeout", Value: cfg.Timeout().String()},
	}
	if cfg.Capture.Path != "" {
		params = append(params, ui.Param{Key: "Capture", Value: cfg.Capture.Path})
	}
	if cfg.Stream.Enabled() {
		params = append(params, ui.Param{Key: "Stream", Value: cfg.Stream.Listen + stream.Path})
	}
	printHeader("Modbus RTU monitor", "rtuscope monitor", params...)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession(ctx, cfg, cmd.OutOrStdout(), colorEnabled(cfg), sc.LineSettings())
	if err != nil {
		return err
	}
	return s.run(ctx, transport, time.Now)
}

// replayCmd feeds a capture file through the monitor
var replayCmd = &cobra.Command{
	Use:   "replay <capture.cbor>",
	Short: "Replay a recorded capture",
	Long: `Run the monitor over a capture recorded with --capture.

The capture holds the raw reads exactly as the port returned them, with
their arrival times. Replay uses those times for timestamps and for the idle
timeout, so the output matches what a live session would have printed, with
any framing settings you choose.`,
	Example: `  rtuscope replay line.cbor
  rtuscope replay line.cbor --functions 3,16 --timestamps`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().DurationVar(&replayStep, "step", capture.DefaultStep, "Virtual read timeout used to walk through recorded silences")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd.Flags())
	if err != nil {
		return err
	}

	player, err := capture.Open(args[0])
	if err != nil {
		return err
	}
	defer player.Close()
	player.SetStep(replayStep)

	hdr := player.Header()
	printHeader("Capture replay", "rtuscope replay",
		ui.Param{Key: "File", Value: args[0]},
		ui.Param{Key: "Device", Value: orDash(hdr.Device)},
		ui.Param{Key: "Line", Value: orDash(hdr.Line)},
		ui.Param{Key: "Recorded", Value: time.Unix(0, hdr.Started).Format(time.RFC3339)},
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession(ctx, cfg, cmd.OutOrStdout(), colorEnabled(cfg), hdr.Line)
	if err != nil {
		return err
	}
	return s.run(ctx, player, player.Now)
}

// portsCmd lists serial ports
var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := serialport.ListPorts()
		if errors.Is(err, serialport.ErrNoPorts) {
			fmt.Fprintln(cmd.OutOrStdout(), "No serial ports found.")
			return nil
		}
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PORT\tDESCRIPTION")
		for _, p := range ports {
			fmt.Fprintf(w, "%s\t%s\n", p.Name, p.Description())
		}
		return w.Flush()
	},
}

// sendCmd writes one frame to the line
var sendCmd = &cobra.Command{
	Use:   "send <hex bytes...>",
	Short: "Append a CRC and write a frame to the line",
	Long: `Build a frame from address, function code and payload bytes, append the
Modbus CRC and write it to the port. The frame is printed in red.

This is the only command that transmits. With --listen the monitor keeps
running for the given time so the reply is shown too.`,
	Example: `  # Read 10 holding registers from slave 1
  rtuscope send -p /dev/ttyUSB0 01 03 00 00 00 0a

  # Same, written as one argument, and wait for the reply
  rtuscope send -p /dev/ttyUSB0 --listen 2s 01030000000a`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().DurationVar(&sendListen, "listen", 0, "Keep monitoring for this long after sending")
}

func runSend(cmd *cobra.Command, args []string) error {
	body, err := protocol.ParseHex(args...)
	if err != nil {
		return err
	}
	if len(body) < 2 {
		return fmt.Errorf("a frame needs at least an address and a function code, got %d byte(s)", len(body))
	}
	frame, err := protocol.BuildFrame(body[0], body[1], body[2:])
	if err != nil {
		return err
	}

	cfg, err := loadSettings(cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.Serial.Device == "" {
		device, err := choosePort()
		if err != nil {
			return err
		}
		cfg.Serial.Device = device
	}

	port, sc, err := openPort(cfg)
	if err != nil {
		return err
	}
	defer port.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession(ctx, cfg, cmd.OutOrStdout(), colorEnabled(cfg), sc.LineSettings())
	if err != nil {
		return err
	}

	if _, err := port.Write(frame); err != nil {
		s.close()
		return fmt.Errorf("failed to write frame: %w", err)
	}
	logging.LogRawBytes("Frame sent", frame)
	s.emitOutbound(frame, time.Now())

	if sendListen <= 0 {
		s.close()
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, sendListen)
	defer cancel()
	return s.run(ctx, port, time.Now)
}

// crcCmd computes the Modbus CRC
var crcCmd = &cobra.Command{
	Use:   "crc <hex bytes...>",
	Short: "Compute the Modbus CRC of some bytes",
	Example: `  rtuscope crc 01 03 00 00 00 0a
  rtuscope crc --check 01 03 00 00 00 0a c5 cd`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := protocol.ParseHex(args...)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if crcCheck {
			if protocol.ValidCRC(data) {
				fmt.Fprintf(out, "valid: %s\n", protocol.HexString(data))
				return nil
			}
			return fmt.Errorf("invalid CRC: %s", protocol.HexString(data))
		}

		crc := protocol.CRC16(data)
		fmt.Fprintf(out, "crc:   0x%04x (low %02x, high %02x)\n", crc, byte(crc), byte(crc>>8))
		fmt.Fprintf(out, "frame: %s\n", protocol.HexString(protocol.AppendCRC(data)))
		return nil
	},
}

func init() {
	crcCmd.Flags().BoolVar(&crcCheck, "check", false, "Verify that the bytes end with a valid CRC")
}

// configCmd manages the config file
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		cfg := config.Default()
		if err := line.apply(cmd.Flags(), cfg); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration (file, environment and flags)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings(cmd.Flags())
		if err != nil {
			return err
		}
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configShowCmd, configPathCmd)
}

// choosePort asks the user for a port when stdin is a terminal
func choosePort() (string, error) {
	if !ui.IsTerminal(os.Stdin) {
		return "", fmt.Errorf("no serial port given (use --port or %s)", config.EnvPort)
	}
	ports, err := serialport.ListPorts()
	if err != nil {
		return "", err
	}
	return ui.PickPort(ports)
}

// openPort opens the configured serial port
func openPort(cfg *config.Config) (serialport.Port, *serialport.Config, error) {
	sc, err := cfg.SerialPortConfig()
	if err != nil {
		return nil, nil, err
	}

	port, err := serialport.Open(sc)
	if err != nil {
		return nil, nil, err
	}

	driver := sc.Driver
	if driver == "" {
		driver = serialport.DriverBugst
	}
	logging.LogPortOpened(sc.Device, driver, sc.Baud, sc.DataBits, sc.Parity.String(), sc.StopBits)
	return port, sc, nil
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}

func functionList(cfg *config.Config) string {
	fc, err := cfg.FramingSettings()
	if err != nil {
		return "?"
	}
	return strings.ReplaceAll(fc.FunctionCodes.String(), ",", ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/rtuscope/internal/discovery"
	"github.com/muurk/rtuscope/internal/framing"
	"github.com/muurk/rtuscope/internal/logging"
	"github.com/muurk/rtuscope/internal/stream"
	"github.com/muurk/rtuscope/internal/ui"
)

var scanTimeout time.Duration

// errNoPeers is returned when mDNS finds no stream to watch
var errNoPeers = errors.New("no rtuscope streams found on the network")

func init() {
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(peersCmd)

	watchCmd.Flags().DurationVar(&scanTimeout, "scan-timeout", discovery.DefaultScanTimeout, "How long to browse for streams when no URL is given")
	peersCmd.Flags().DurationVar(&scanTimeout, "scan-timeout", discovery.DefaultScanTimeout, "How long to browse for streams")
}

// watchCmd prints a remote monitor's stream
var watchCmd = &cobra.Command{
	Use:   "watch [ws://host:port/ws]",
	Short: "Watch a remote monitor started with --serve",
	Long: `Connect to another rtuscope monitor's segment stream and print it as if
the line were attached locally.

Without a URL the local network is browsed over mDNS for monitors started
with --advertise. Device colors are assigned locally from the palette.`,
	Example: `  rtuscope watch ws://plc-gw.local:8020/ws
  rtuscope watch --annotate --timestamps`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd.Flags())
	if err != nil {
		return err
	}
	palette, err := ui.ParsePalette(cfg.Display.Palette)
	if err != nil {
		return fmt.Errorf("display.palette: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var url string
	if len(args) == 1 {
		url = args[0]
	} else {
		scanner := discovery.NewScanner()
		scanner.Timeout = scanTimeout
		peers, err := scanner.Scan(ctx)
		if err != nil {
			return err
		}
		url, err = choosePeer(peers)
		if err != nil {
			return err
		}
	}

	printHeader("Remote stream", "rtuscope watch", ui.Param{Key: "URL", Value: url})

	colors := ui.NewColorRegistry(palette)
	printer := ui.NewHexPrinter(cmd.OutOrStdout(),
		ui.WithColor(colorEnabled(cfg)),
		ui.WithTimestamps(cfg.Display.Timestamps),
		ui.WithAnnotations(cfg.Display.Annotate),
	)

	received := 0
	err = stream.Watch(ctx, url, framing.SinkFunc(func(seg framing.Segment) {
		if seg.Role == framing.RoleFrame {
			seg.Color = colors.ColorFor(seg.Address)
		}
		received++
		printer.Emit(seg)
	}))
	logging.Info("Watch finished", zap.String("url", url), zap.Int("segments", received))
	return err
}

// choosePeer picks the only advertised stream, or explains the choice
func choosePeer(peers []*discovery.Peer) (string, error) {
	switch len(peers) {
	case 0:
		return "", errNoPeers
	case 1:
		return peers[0].StreamURL(), nil
	}

	urls := make([]string, 0, len(peers))
	for _, p := range peers {
		urls = append(urls, "  "+p.String()+"  "+p.StreamURL())
	}
	sort.Strings(urls)
	return "", fmt.Errorf("%d streams found, pass one URL:\n%s", len(peers), strings.Join(urls, "\n"))
}

// peersCmd lists advertised streams
var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "List rtuscope streams advertised on the local network",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		scanner := discovery.NewScanner()
		scanner.Timeout = scanTimeout
		peers, err := scanner.Scan(cmd.Context())
		if err != nil {
			return err
		}
		if len(peers) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No rtuscope streams found.")
			return nil
		}

		sort.Slice(peers, func(i, j int) bool { return peers[i].Instance < peers[j].Instance })
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "INSTANCE\tURL\tDEVICE\tLINE")
		for _, p := range peers {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Instance, p.StreamURL(),
				orDash(p.GetMetadata("device")), orDash(p.GetMetadata("line")))
		}
		return w.Flush()
	},
}

// Rtuscope is a passive Modbus RTU line monitor.
//
// It listens on an RS-485 serial port, recovers frame boundaries from the raw
// byte stream using the Modbus CRC, and prints every frame in hex, colored by
// slave address. Bytes that do not belong to a valid frame are shown as
// noise.
//
// Usage:
//
//	rtuscope [command] [flags]
//
// Running without a command starts the monitor.
// See 'rtuscope --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/rtuscope/internal/logging"
	"github.com/muurk/rtuscope/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	configPath string
	envFile    string
	logLevel   string
	quiet      bool
	line       lineFlags
)

var rootCmd = &cobra.Command{
	Use:   "rtuscope",
	Short: "Passive Modbus RTU line monitor",
	Long: `Listen on a Modbus RTU serial line and print every frame.

rtuscope never talks on the bus unless asked to with 'send'. It finds frame
boundaries by scanning the byte stream for a valid CRC, so it can join a
busy line at any moment. Frames are printed as hex, one color per slave
address; anything that is not part of a valid frame is printed as noise.

If no command is specified, the monitor starts.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: runMonitor,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default: OS config dir/rtuscope/config.yaml)")
	pf.StringVar(&envFile, "env-file", "", "Load environment variables from this file (default: ./.env if present)")
	pf.StringVar(&logLevel, "log-level", "", "Log level on stderr (debug, info, warn, error; default: $"+logging.LogLevelEnvVar+" or silent)")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Print only the hex stream (no banner or summary)")
	line.register(pf)

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "rtuscope %s (commit: %s) %s\n", version.Version, version.Commit, version.Platform())
	},
}

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twobackfromtheend/rlbot-overlay-script/internal/config"
)

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Run: func(cmd *cobra.Command, args []string) {
			printConfig(cmd.OutOrStdout(), cfg)
		},
	}
}

// printConfig writes one "key: value" line per setting, using the same keys
// as the config file.
func printConfig(w io.Writer, c *config.Config) {
	fmt.Fprintf(w, "server.host: %q\n", c.Server.Host)
	fmt.Fprintf(w, "server.port: %d\n", c.Server.Port)
	fmt.Fprintf(w, "server.cors_allowed_origins: [%s]\n", strings.Join(c.Server.CORSAllowedOrigins, ", "))
	fmt.Fprintf(w, "server.shutdown_timeout: %s\n", c.Server.ShutdownTimeout)
	fmt.Fprintf(w, "broadcast.rate_hz: %d\n", c.Broadcast.RateHz)
	fmt.Fprintf(w, "relay.url: %s\n", c.Relay.URL)
	fmt.Fprintf(w, "relay.reconnect_interval: %s\n", c.Relay.ReconnectInterval)
	fmt.Fprintf(w, "relay.handshake_timeout: %s\n", c.Relay.HandshakeTimeout)
	fmt.Fprintf(w, "logging.level: %s\n", c.Logging.Level)
	fmt.Fprintf(w, "logging.file: %q\n", c.Logging.File)
	fmt.Fprintf(w, "logging.max_size_mb: %d\n", c.Logging.MaxSizeMB)
	fmt.Fprintf(w, "logging.max_backups: %d\n", c.Logging.MaxBackups)
	fmt.Fprintf(w, "logging.max_age_days: %d\n", c.Logging.MaxAgeDays)
}

// Package cli holds the meet command tree.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "meet",
	Short: "Join multi-party meetings from the terminal",
	Long:  "meet connects to a signaling server, negotiates direct media links with every other participant, and tracks the room roster and chat.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		level := zerolog.WarnLevel
		if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
			if parsed, err := zerolog.ParseLevel(v); err == nil {
				level = parsed
			}
		}
		zerolog.SetGlobalLevel(level)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "ws://localhost:8080/api/ws/signal", "signaling server websocket URL")
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(joinCmd)
}

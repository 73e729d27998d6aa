package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/BioHazard786/roomlink/internal/config"
	"github.com/BioHazard786/roomlink/internal/logging"
	"github.com/BioHazard786/roomlink/internal/server"
	"github.com/BioHazard786/roomlink/internal/version"
)

var (
	flagConfig   string
	flagAddr     string
	flagIDFormat string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:     "roomlink-server",
	Short:   "Rendezvous and signaling relay for peer-to-peer rooms",
	Long:    `roomlink-server lets peers create and join rooms and relays WebRTC offers, answers and ICE candidates between them. It never sees media; all state is in memory.`,
	Version: version.Version,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadServer(config.ServerOptions{
			ConfigFile: flagConfig,
			Addr:       flagAddr,
			IDFormat:   flagIDFormat,
			LogLevel:   flagLogLevel,
		})
		if err != nil {
			return err
		}
		logging.Init(slog.LevelInfo, cfg.LogLevel)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.Run(ctx, cfg)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "YAML config file")
	rootCmd.Flags().StringVarP(&flagAddr, "addr", "a", "", "Listen address (default \":8080\")")
	rootCmd.Flags().StringVar(&flagIDFormat, "id-format", "", "Peer id format: uuid or words")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error")
}

func main() {
	rootCmd.SilenceUsage = true

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

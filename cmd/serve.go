package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/comet/internal/config"
	"github.com/papapumpkin/comet/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the steppers and playback engine as MCP tools over SSE/HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	port := cfg.Serve.Port
	if p, _ := cmd.Flags().GetInt("port"); p != 0 {
		port = p
	}

	tel, err := openTelemetry(cfg)
	if err != nil {
		return err
	}
	defer tel.Close()

	srv := server.NewServer(port)
	srv.SetTelemetry(tel)

	if err := os.MkdirAll(cfg.TraceDir, 0o755); err != nil {
		return fmt.Errorf("creating trace dir %s: %w", cfg.TraceDir, err)
	}
	if err := srv.WatchTraces(cfg.TraceDir); err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "comet MCP server listening on %s, watching %s\n",
		srv.Addr(), cfg.TraceDir)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}

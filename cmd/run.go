package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/comet/internal/config"
	"github.com/papapumpkin/comet/internal/problem"
	"github.com/papapumpkin/comet/internal/stepper"
	"github.com/papapumpkin/comet/internal/store"
	"github.com/papapumpkin/comet/internal/telemetry"
)

var runCmd = &cobra.Command{
	Use:   "run <problem.toml>",
	Short: "Run an instrumented algorithm and record its trace",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().String("out", "", "write the trace JSON to this file")
	runCmd.Flags().Bool("archive", false, "save the run to the trace archive")
	runCmd.Flags().String("name", "", "archive name for the run (default: problem file name)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	p, err := problem.Load(args[0])
	if err != nil {
		return err
	}

	tel, err := openTelemetry(cfg)
	if err != nil {
		return err
	}
	defer tel.Close()

	started := time.Now()
	_ = tel.Emit(telemetry.Record{Kind: telemetry.KindRunStart, Algorithm: p.Algorithm})

	t, err := stepper.Run(p.Algorithm, p.Input())
	if err != nil {
		return err
	}
	_ = tel.Emit(telemetry.Record{
		Kind:      telemetry.KindRunDone,
		Algorithm: p.Algorithm,
		Data: map[string]any{
			"events":      t.Len(),
			"duration_ms": time.Since(started).Milliseconds(),
		},
	})

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d events, terminal %q\n",
		p.Algorithm, t.Len(), t.At(t.Len()-1).Type)

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := store.SaveTrace(out, t); err != nil {
			return err
		}
		_ = tel.Emit(telemetry.Record{Kind: telemetry.KindTraceSaved, Algorithm: p.Algorithm,
			Data: map[string]any{"path": out}})
		fmt.Fprintf(cmd.OutOrStdout(), "trace written to %s\n", out)
	}

	if archive, _ := cmd.Flags().GetBool("archive"); archive {
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}
		a, err := store.OpenArchive(context.Background(), cfg.ArchivePath)
		if err != nil {
			return err
		}
		defer a.Close()
		id, err := a.SaveRun(context.Background(), name, p.Algorithm, t)
		if err != nil {
			return err
		}
		_ = tel.Emit(telemetry.Record{Kind: telemetry.KindRunArchived, Algorithm: p.Algorithm,
			Data: map[string]any{"run_id": id, "name": name}})
		fmt.Fprintf(cmd.OutOrStdout(), "archived as run %d (%s)\n", id, name)
	}

	return nil
}

// openTelemetry returns the configured emitter, or a no-op nil emitter
// when telemetry is disabled.
func openTelemetry(cfg config.Config) (*telemetry.Emitter, error) {
	if cfg.TelemetryPath == "" {
		return nil, nil
	}
	return telemetry.NewEmitter(cfg.TelemetryPath)
}

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/comet/internal/config"
	"github.com/papapumpkin/comet/internal/playback"
	"github.com/papapumpkin/comet/internal/store"
	"github.com/papapumpkin/comet/internal/telemetry"
)

var playCmd = &cobra.Command{
	Use:   "play <trace.json>",
	Short: "Navigate an exported trace and print snapshots",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().Int("seek", 0, "event index to seek to")
	playCmd.Flags().Bool("end", false, "seek to the terminal event")
	playCmd.Flags().Bool("walk", false, "print one line per event instead of a snapshot")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	tel, err := openTelemetry(cfg)
	if err != nil {
		return err
	}
	defer tel.Close()

	t, err := store.LoadTrace(args[0])
	if err != nil {
		return err
	}
	engine, err := playback.NewEngine(t)
	if err != nil {
		return err
	}
	_ = tel.Emit(telemetry.Record{Kind: telemetry.KindTraceLoaded,
		Data: map[string]any{"path": args[0], "events": t.Len()}})

	if walk, _ := cmd.Flags().GetBool("walk"); walk {
		for {
			e := engine.Current()
			fmt.Fprintf(cmd.OutOrStdout(), "%4d  %-14s %s\n", e.Step, e.Type, e.Details)
			if _, ok := engine.Next(); !ok {
				return nil
			}
		}
	}

	if end, _ := cmd.Flags().GetBool("end"); end {
		engine.SeekEnd()
	} else if idx, _ := cmd.Flags().GetInt("seek"); idx != 0 {
		if _, err := engine.Seek(idx); err != nil {
			return err
		}
	}

	snap := engine.Snapshot()
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "event %d of %d\n%s\n", engine.Index()+1, engine.Len(), raw)
	return nil
}

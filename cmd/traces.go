package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/comet/internal/config"
	"github.com/papapumpkin/comet/internal/store"
)

var tracesCmd = &cobra.Command{
	Use:   "traces",
	Short: "Manage the trace archive",
}

var tracesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs",
	Args:  cobra.NoArgs,
	RunE:  runTracesList,
}

var tracesExportCmd = &cobra.Command{
	Use:   "export <run-id> <out.json>",
	Short: "Export an archived run's trace to a JSON file",
	Args:  cobra.ExactArgs(2),
	RunE:  runTracesExport,
}

var tracesDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete an archived run",
	Args:  cobra.ExactArgs(1),
	RunE:  runTracesDelete,
}

func init() {
	tracesCmd.AddCommand(tracesListCmd, tracesExportCmd, tracesDeleteCmd)
	rootCmd.AddCommand(tracesCmd)
}

func openArchive(ctx context.Context) (*store.Archive, error) {
	cfg := config.Load()
	return store.OpenArchive(ctx, cfg.ArchivePath)
}

func runTracesList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openArchive(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	runs, err := a.ListRuns(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no archived runs")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(cmd.OutOrStdout(), "%4d  %-14s %-24s %5d events  %s\n",
			r.ID, r.Algorithm, r.Name, r.Events, r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runTracesExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", args[0], err)
	}
	a, err := openArchive(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.LoadRun(ctx, id)
	if err != nil {
		return err
	}
	if err := store.SaveTrace(args[1], t); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "run %d exported to %s\n", id, args[1])
	return nil
}

func runTracesDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", args[0], err)
	}
	a, err := openArchive(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.DeleteRun(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "run %d deleted\n", id)
	return nil
}

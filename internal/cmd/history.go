package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/logolens/logolens/internal/core/store"
	"github.com/logolens/logolens/internal/output"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded acquisition runs",
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the per-entity outcomes of a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete recorded outcomes older than a cutoff",
	RunE:  runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyPruneCmd)

	historyShowCmd.Flags().String("output", "table", "Output format: table, json")
	historyPruneCmd.Flags().Duration("older-than", 30*24*time.Hour, "Delete outcomes older than this age")
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	formatValue, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(formatValue)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	st, err := openHistoryStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() // nolint:errcheck // best-effort cleanup; errors logged internally

	outcomes, err := st.RunOutcomes(ctx, args[0])
	if err != nil {
		return err
	}
	if len(outcomes) == 0 {
		return fmt.Errorf("no outcomes recorded for run %s", args[0])
	}

	rendered, err := output.FormatOutcomes(format, outcomes)
	if err != nil {
		return err
	}
	if strings.TrimSpace(rendered) != "" {
		fmt.Println(rendered)
	}
	return nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	olderThan, err := cmd.Flags().GetDuration("older-than")
	if err != nil {
		return err
	}
	if olderThan <= 0 {
		return errors.New("older-than must be positive")
	}

	ctx := cmd.Context()
	st, err := openHistoryStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() // nolint:errcheck // best-effort cleanup; errors logged internally

	pruned, err := st.PruneRuns(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return err
	}

	fmt.Printf("pruned %d outcomes older than %s\n", pruned, olderThan)
	return nil
}

func openHistoryStore(ctx context.Context) (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

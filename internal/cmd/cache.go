package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/logolens/logolens/internal/core/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or reset the resumable run state",
	Long:  "Inspect or reset the progress file and the failed-domain cache used to resume interrupted runs.",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show progress and failed-domain cache counts",
	RunE:  runCacheStats,
}

var cacheResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear run state so the next run starts fresh",
	RunE:  runCacheReset,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheResetCmd)

	cacheResetCmd.Flags().Bool("progress", false, "Reset only the progress file")
	cacheResetCmd.Flags().Bool("failed-domains", false, "Reset only the failed-domain cache")
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	progress := store.LoadProgress(cfg.State.ProgressFile)
	failed := store.LoadFailedDomains(cfg.State.FailedDomainsFile)

	fmt.Printf("progress: %d completed, %d failed (%s)\n",
		progress.CompletedCount(), progress.FailedCount(), cfg.State.ProgressFile)
	fmt.Printf("failed domains: %d (%s)\n", failed.Len(), cfg.State.FailedDomainsFile)
	return nil
}

func runCacheReset(cmd *cobra.Command, args []string) error {
	progressOnly, err := cmd.Flags().GetBool("progress")
	if err != nil {
		return err
	}
	failedOnly, err := cmd.Flags().GetBool("failed-domains")
	if err != nil {
		return err
	}

	// No selector flags means reset both.
	resetProgress := progressOnly || !failedOnly
	resetFailed := failedOnly || !progressOnly

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var errs []error
	if resetProgress {
		if err := store.LoadProgress(cfg.State.ProgressFile).Reset(); err != nil {
			errs = append(errs, fmt.Errorf("reset progress: %w", err))
		} else {
			fmt.Printf("progress reset (%s)\n", cfg.State.ProgressFile)
		}
	}
	if resetFailed {
		if err := store.LoadFailedDomains(cfg.State.FailedDomainsFile).Reset(); err != nil {
			errs = append(errs, fmt.Errorf("reset failed domains: %w", err))
		} else {
			fmt.Printf("failed-domain cache reset (%s)\n", cfg.State.FailedDomainsFile)
		}
	}

	return errors.Join(errs...)
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/logolens/logolens/internal/config"
	"github.com/logolens/logolens/internal/core"
	"github.com/logolens/logolens/internal/core/engine"
	"github.com/logolens/logolens/internal/core/fetch"
	"github.com/logolens/logolens/internal/core/imaging"
	"github.com/logolens/logolens/internal/core/render"
	"github.com/logolens/logolens/internal/core/store"
	"github.com/logolens/logolens/internal/input"
	"github.com/logolens/logolens/internal/observability"
	"github.com/logolens/logolens/internal/output"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <input.csv>",
	Short: "Acquire logos for all entities in a CSV dataset",
	Long: `Read entity records from a CSV file, acquire a logo for each from
the source chain, and write standardized PNGs to the output folder.
Interrupted runs resume where they left off.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().String("output", "table", "Summary format: table, json")
	fetchCmd.Flags().StringSlice("ids", nil, "Process only the listed entity ids")
	fetchCmd.Flags().Int("top-n", 0, "Process only the first N entities")
	fetchCmd.Flags().Bool("no-history", false, "Skip recording outcomes in the history store")
}

func runFetch(cmd *cobra.Command, args []string) error {
	formatValue, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(formatValue)
	if err != nil {
		return err
	}

	ids, err := cmd.Flags().GetStringSlice("ids")
	if err != nil {
		return err
	}
	topN, err := cmd.Flags().GetInt("top-n")
	if err != nil {
		return err
	}
	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Invalid configuration", err)
	}

	entities, err := input.Load(args[0], input.Options{IDs: ids, TopN: topN})
	if err != nil {
		return err
	}
	if len(entities) == 0 {
		return errors.New("no entities found in input file")
	}

	// An interrupt becomes context cancellation so the coordinator can
	// flush its progress state before the process exits.
	ctx, stop := interruptContext(cmd.Context())
	defer stop()

	startedAt := time.Now()

	observability.CLILogger.Info("starting acquisition run",
		zap.Int("entities", len(entities)),
		zap.String("output_folder", cfg.Output.Folder),
		zap.Int("workers", cfg.Batch.Workers),
	)

	coordinator := buildCoordinator(cfg)
	summary, runErr := coordinator.Run(ctx, entities)

	if summary != nil && !noHistory {
		recordHistory(ctx, cfg, summary)
	}

	if summary != nil {
		rendered, err := output.FormatSummary(format, summary)
		if err != nil {
			return err
		}
		if strings.TrimSpace(rendered) != "" {
			fmt.Println(rendered)
		}
		logThroughput(summary.Successful+summary.Failed, startedAt)
	}

	return runErr
}

// interruptContext derives a context that is cancelled on SIGINT or
// SIGTERM.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// buildCoordinator assembles the batch coordinator from configuration.
// The chain factory runs once per worker, so every worker gets its own
// HTTP clients and rate limiters.
func buildCoordinator(cfg *config.Config) *engine.Coordinator {
	progress := store.LoadProgress(cfg.State.ProgressFile)
	failed := store.LoadFailedDomains(cfg.State.FailedDomainsFile)

	newChain := func() *engine.Chain {
		clearbitClient := &fetch.Client{
			HTTPClient: &http.Client{Timeout: cfg.HTTP.Timeout},
			Limiter:    fetch.NewLimiter(cfg.Sources.Clearbit.RateLimit),
			MaxRetries: cfg.HTTP.MaxRetries,
			RetryDelay: cfg.HTTP.RetryDelay,
			UserAgent:  cfg.HTTP.UserAgent,
		}
		faviconClient := &fetch.Client{
			HTTPClient: &http.Client{Timeout: cfg.HTTP.Timeout},
			Limiter:    fetch.NewLimiter(cfg.Sources.Favicon.RateLimit),
			MaxRetries: cfg.HTTP.MaxRetries,
			RetryDelay: cfg.HTTP.RetryDelay,
			UserAgent:  cfg.HTTP.UserAgent,
		}

		return &engine.Chain{
			Network: []fetch.Fetcher{
				&fetch.ClearbitFetcher{
					Client:  clearbitClient,
					BaseURL: cfg.Sources.Clearbit.BaseURL,
					Size:    cfg.Output.Size,
				},
				&fetch.FaviconFetcher{
					Client:        faviconClient,
					DuckDuckGoURL: cfg.Sources.Favicon.DuckDuckGoURL,
					GoogleURL:     cfg.Sources.Favicon.GoogleURL,
				},
			},
			Synthetic: &fetch.SyntheticFetcher{
				Renderer: &render.Renderer{Size: cfg.Output.Size},
			},
			Standardizer: &imaging.Standardizer{
				OutputSize:    cfg.Output.Size,
				MinSourceSize: cfg.Output.MinSourceSize,
				MaxUpscale:    cfg.Output.MaxUpscale,
			},
			OutputFolder: cfg.Output.Folder,
			Failed:       failed,
			Logger:       observability.CLILogger,
		}
	}

	return &engine.Coordinator{
		Workers:      cfg.Batch.Workers,
		BatchSize:    cfg.Batch.Size,
		OutputFolder: cfg.Output.Folder,
		Progress:     progress,
		Failed:       failed,
		NewChain:     newChain,
		Logger:       observability.CLILogger,
	}
}

// recordHistory persists run outcomes to the history store. Store
// failures are logged, not fatal; the PNGs on disk are the artifact
// that matters.
func recordHistory(ctx context.Context, cfg *config.Config, summary *core.RunSummary) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		observability.CLILogger.Warn("history store unavailable", zap.Error(err))
		return
	}
	defer st.Close() // nolint:errcheck // best-effort cleanup; errors logged internally

	if err := st.Migrate(ctx); err != nil {
		observability.CLILogger.Warn("history store migration failed", zap.Error(err))
		return
	}
	if err := st.SaveOutcomes(ctx, summary.RunID, summary.Outcomes); err != nil {
		observability.CLILogger.Warn("history save failed", zap.Error(err))
		return
	}

	observability.CLILogger.Debug("run recorded",
		zap.String("run_id", summary.RunID),
		zap.Int("outcomes", len(summary.Outcomes)))
}

func logThroughput(processed int, startedAt time.Time) {
	elapsed := time.Since(startedAt)
	if processed == 0 || elapsed <= 0 {
		return
	}
	rate := float64(processed) / elapsed.Seconds()
	observability.CLILogger.Info("run complete",
		zap.Int("processed", processed),
		zap.Duration("elapsed", elapsed.Round(time.Millisecond)),
		zap.Float64("entities_per_second", rate),
	)
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/logolens/logolens/internal/core"
	"github.com/logolens/logolens/internal/core/store"
)

// Coordinator partitions entities into batches and drives a bounded
// worker pool over each batch. It is the only writer of progress state
// and the failed-domain cache; workers communicate results back over a
// channel, never through shared memory.
type Coordinator struct {
	Workers      int
	BatchSize    int
	OutputFolder string
	Progress     *store.Progress
	Failed       *store.FailedDomains
	// NewChain builds a fresh chain per worker so each worker owns its
	// HTTP clients and rate limiters. The rate ceiling is therefore a
	// per-worker budget, not a global one.
	NewChain func() *Chain
	Logger   *logging.Logger
}

type chainJob struct {
	index  int
	entity core.EntityRecord
}

// Run processes all entities and returns the aggregated summary.
// Entities already completed or failed in a prior run, or whose output
// file already exists, are skipped before batching. Cancellation stops
// scheduling but still flushes progress and the failed-domain cache.
func (c *Coordinator) Run(ctx context.Context, entities []core.EntityRecord) (*core.RunSummary, error) {
	if c == nil || c.NewChain == nil {
		return nil, errors.New("coordinator is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if c.OutputFolder != "" {
		if err := os.MkdirAll(c.OutputFolder, 0755); err != nil {
			return nil, fmt.Errorf("create output folder: %w", err)
		}
	}

	startedAt := time.Now()
	summary := &core.RunSummary{
		RunID:    uuid.New().String(),
		Total:    len(entities),
		BySource: map[core.Source]int{},
	}

	pending := c.filterPending(entities)
	summary.Skipped = len(entities) - len(pending)
	if summary.Skipped > 0 {
		c.info("skipping already processed entities", zap.Int("skipped", summary.Skipped))
	}

	// State reaches disk even when the run is cancelled mid-batch.
	defer func() {
		if c.Progress != nil {
			_ = c.Progress.Save()
		}
		if c.Failed != nil {
			_ = c.Failed.Save()
		}
	}()

	batches := partition(pending, c.batchSize())
	var batchDurations []time.Duration

	for i, batch := range batches {
		if ctx.Err() != nil {
			break
		}

		batchStart := time.Now()
		result := c.runBatch(ctx, batch, i)
		batchDurations = append(batchDurations, time.Since(batchStart))

		for _, outcome := range result.Outcomes {
			if outcome == nil {
				continue
			}
			summary.Outcomes = append(summary.Outcomes, outcome)
			if outcome.Success {
				summary.Successful++
				summary.BySource[outcome.Source]++
			} else {
				summary.Failed++
				summary.BySource[core.SourceFailed]++
			}
		}

		c.mergeFailedDomains(result.Outcomes)
		c.logBatchDone(i, len(batches), result, batchDurations)
	}

	summary.Elapsed = time.Since(startedAt)
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// runBatch runs one batch under the worker pool. Progress marks happen
// on this goroutine only, immediately as each result arrives.
func (c *Coordinator) runBatch(ctx context.Context, batch []core.EntityRecord, index int) *core.BatchResult {
	started := time.Now()
	result := &core.BatchResult{
		Index:    index,
		Outcomes: make([]*core.AcquisitionOutcome, 0, len(batch)),
	}

	workers := c.workerCount(len(batch))
	jobs := make(chan chainJob)
	outcomes := make(chan *core.AcquisitionOutcome)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			chain := c.NewChain()
			for job := range jobs {
				if ctx.Err() != nil {
					return
				}
				outcomes <- chain.Acquire(ctx, job.entity)
			}
		}()
	}

	go func() {
	sendLoop:
		for i, entity := range batch {
			select {
			case <-ctx.Done():
				break sendLoop
			case jobs <- chainJob{index: i, entity: entity}:
			}
		}
		close(jobs)
		wg.Wait()
		close(outcomes)
	}()

	for outcome := range outcomes {
		if outcome == nil {
			// Cancelled mid-entity; no terminal state was reached, so
			// the entity stays unprocessed for the next run.
			continue
		}
		result.Outcomes = append(result.Outcomes, outcome)
		if outcome.Success {
			result.Successful++
			c.markProgress(outcome.EntityID, true)
		} else {
			result.Failed++
			c.markProgress(outcome.EntityID, false)
		}
	}

	result.Duration = time.Since(started)
	return result
}

// filterPending drops entities that reached a terminal state in a prior
// run or already have an output artifact on disk.
func (c *Coordinator) filterPending(entities []core.EntityRecord) []core.EntityRecord {
	pending := make([]core.EntityRecord, 0, len(entities))
	for _, entity := range entities {
		if c.Progress.IsProcessed(entity.ID) {
			continue
		}
		if c.OutputFolder != "" {
			if _, err := os.Stat(filepath.Join(c.OutputFolder, entity.ID+".png")); err == nil {
				continue
			}
		}
		pending = append(pending, entity)
	}
	return pending
}

func (c *Coordinator) mergeFailedDomains(outcomes []*core.AcquisitionOutcome) {
	if c.Failed == nil {
		return
	}
	var domains []string
	for _, outcome := range outcomes {
		if outcome != nil && outcome.DomainFailed && outcome.Domain != "" {
			domains = append(domains, outcome.Domain)
		}
	}
	if len(domains) == 0 {
		return
	}
	c.Failed.Merge(domains)
	if err := c.Failed.Save(); err != nil {
		c.info("failed-domain cache save failed", zap.Error(err))
	}
}

func (c *Coordinator) markProgress(id string, completed bool) {
	if c.Progress == nil {
		return
	}
	var err error
	if completed {
		err = c.Progress.MarkCompleted(id)
	} else {
		err = c.Progress.MarkFailed(id)
	}
	if err != nil {
		c.info("progress save failed", zap.String("entity", id), zap.Error(err))
	}
}

// logBatchDone reports batch totals and an ETA. Early batches run with
// cold caches and connection pools, so the first two estimates are
// inflated before averaging settles.
func (c *Coordinator) logBatchDone(index, total int, result *core.BatchResult, durations []time.Duration) {
	remaining := total - index - 1

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}
	avg := sum / time.Duration(len(durations))

	eta := avg * time.Duration(remaining)
	switch index {
	case 0:
		eta = time.Duration(float64(eta) * 1.5)
	case 1:
		eta = time.Duration(float64(eta) * 1.2)
	}

	c.info("batch complete",
		zap.Int("batch", index+1),
		zap.Int("batches", total),
		zap.Int("successful", result.Successful),
		zap.Int("failed", result.Failed),
		zap.Duration("eta", eta.Round(time.Second)),
	)
}

func (c *Coordinator) batchSize() int {
	if c.BatchSize > 0 {
		return c.BatchSize
	}
	return 300
}

// workerCount bounds the pool at the configured ceiling, the machine's
// spare cores, and the batch size.
func (c *Coordinator) workerCount(batchLen int) int {
	workers := c.Workers
	if workers <= 0 {
		workers = 4
	}
	if cores := runtime.NumCPU() - 1; cores >= 1 && workers > cores {
		workers = cores
	}
	if workers > batchLen {
		workers = batchLen
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

func partition(entities []core.EntityRecord, size int) [][]core.EntityRecord {
	var batches [][]core.EntityRecord
	for start := 0; start < len(entities); start += size {
		end := start + size
		if end > len(entities) {
			end = len(entities)
		}
		batches = append(batches, entities[start:end])
	}
	return batches
}

func (c *Coordinator) info(msg string, fields ...zap.Field) {
	if c == nil || c.Logger == nil {
		return
	}
	c.Logger.Info(msg, fields...)
}

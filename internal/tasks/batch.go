package tasks

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

const (
	defaultBatchWorkers = 4
	maxBatchWorkers     = 10
	defaultBatchRate    = 5.0
)

// BatchOpts contains configuration for analyzing several playlists at once.
type BatchOpts struct {
	Analyze    AnalyzeOpts // Applied to every playlist
	NumWorkers int         // Concurrent workers (default: 4, max: 10)
	RateLimit  float64     // Lookups started per second (default: 5)
}

// BatchItem is the outcome for one input of [PlaylistEngine.AnalyzeMany].
type BatchItem struct {
	Input  string
	Result *AnalysisResult
	Err    error
}

// BatchResult collects per-playlist outcomes in input order.
type BatchResult struct {
	Items     []BatchItem
	Succeeded int
	Failed    int
}

type batchJob struct {
	index int
	input string
}

type batchOutcome struct {
	index int
	item  BatchItem
}

// AnalyzeMany runs [PlaylistEngine.Analyze] for each input using a worker pool.
//
// Lookups are started no faster than opts.RateLimit per second so a batch cannot exhaust the shared
// credential's quota. A failed playlist is recorded in its [BatchItem] and does not stop the batch; only
// context cancellation ends it early, in which case unprocessed items carry the context error.
func (e *PlaylistEngine) AnalyzeMany(ctx context.Context, inputs []string, opts BatchOpts, progress chan<- ProgressUpdate) (*BatchResult, error) {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultBatchWorkers
	}
	opts.NumWorkers = min(opts.NumWorkers, maxBatchWorkers, max(len(inputs), 1))
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultBatchRate
	}

	result := &BatchResult{Items: make([]BatchItem, len(inputs))}
	for i, in := range inputs {
		result.Items[i] = BatchItem{Input: in}
	}
	if len(inputs) == 0 {
		return result, nil
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan batchJob)
	done := make(chan batchOutcome, len(inputs))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.batchWorker(ctx, &wg, jobs, done, opts.Analyze)
	}

	go func() {
		defer close(jobs)
		e.sendProgress(progress, batchQueuedUpdate(len(inputs)))
		for i, in := range inputs {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			select {
			case jobs <- batchJob{index: i, input: in}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(done)
	}()

	completed := 0
	processed := make([]bool, len(inputs))
	for out := range done {
		item := out.item
		processed[out.index] = true
		result.Items[out.index] = item
		completed++

		if item.Err == nil {
			result.Succeeded++
			e.sendProgress(progress, batchCompletedUpdate(completed, len(inputs), item.Result))
		} else {
			result.Failed++
			e.sendProgress(progress, batchFailedUpdate(completed, len(inputs), item.Input, item.Err))
		}
	}

	if err := ctx.Err(); err != nil && completed < len(inputs) {
		for i := range result.Items {
			if !processed[i] {
				result.Items[i].Err = err
				result.Failed++
			}
		}
		return result, fmt.Errorf("batch interrupted after %d of %d playlists: %w", completed, len(inputs), err)
	}
	return result, nil
}

// batchWorker analyzes playlists from the jobs channel.
func (e *PlaylistEngine) batchWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan batchJob,
	done chan<- batchOutcome,
	opts AnalyzeOpts,
) {
	defer wg.Done()

	for job := range jobs {
		res, err := e.Analyze(ctx, job.input, opts, nil)
		done <- batchOutcome{index: job.index, item: BatchItem{Input: job.input, Result: res, Err: err}}
	}
}

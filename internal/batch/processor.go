// Package batch runs the pipeline over many albedo files with a worker pool.
package batch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"pbr-texgen/internal/pipeline"
)

// Config holds all shared resources for a batch run.
type Config struct {
	Generator *pipeline.Generator
	Workers   int
	// Report is called from the progress ticker with processed and total
	// counts. Nil disables reporting.
	Report func(done, total int, rate float64)
	// Interval is the ticker period; zero means two seconds.
	Interval time.Duration
}

// Run processes all sources using a worker pool. Results are in source
// order. Cancelling ctx stops workers from taking new files; files already
// started finish their current stage and report the cancellation.
func Run(ctx context.Context, cfg Config, sources []string) []pipeline.Result {
	total := len(sources)
	results := make([]pipeline.Result, total)
	var processed atomic.Int64

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	var reporter sync.WaitGroup
	if cfg.Report != nil {
		reporter.Add(1)
		go func() {
			defer reporter.Done()
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						rate := float64(p) / time.Since(start).Seconds()
						cfg.Report(int(p), total, rate)
					}
				}
			}
		}()
	}

	// Worker pool
	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = process(ctx, cfg.Generator, sources[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range sources {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(done)
	reporter.Wait()

	pipeline.Logger().Info("batch finished", "files", total, "elapsed", time.Since(start))
	return results
}

func process(ctx context.Context, g *pipeline.Generator, src string) pipeline.Result {
	if err := ctx.Err(); err != nil {
		return pipeline.Result{Source: src, Error: fmt.Sprintf("not started: %v", err)}
	}
	res := g.Run(ctx, src, nil)
	if !res.Success {
		pipeline.Logger().Warn("texture failed", "source", src, "error", res.Error)
	}
	return res
}

// Summary counts successes and failures.
func Summary(results []pipeline.Result) (ok, failed int) {
	for _, r := range results {
		if r.Success {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

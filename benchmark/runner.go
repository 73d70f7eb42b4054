package benchmark

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"putgetbench/report"
	"putgetbench/stats"
	"putgetbench/storage"
	"putgetbench/telemetry"
)

// Options carries the optional collaborators of a run.
type Options struct {
	Logger  *zap.Logger
	Metrics *telemetry.Metrics
	// Progress is called after every finished attempt. Must be safe for
	// concurrent use.
	Progress func()
	// Sleep replaces the empty-listing backoff wait.
	Sleep SleepFunc
}

// RunBenchmark spawns the put and get workers described by params against
// store, waits for all of them and aggregates their records.
//
// Bounded runs end when every worker spent its iterations. Continuous runs
// end when ctx is cancelled or params.Duration elapses. Cancelling a bounded
// run stops its workers after their current attempt.
func RunBenchmark(ctx context.Context, params BenchmarkParams, store storage.Storage, opts Options) (report.Summary, error) {
	if err := params.Validate(); err != nil {
		return report.Summary{}, err
	}
	params = params.withDefaults()

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var runCtx context.Context
	var cancel context.CancelFunc
	if params.Mode == Continuous && params.Duration > 0 {
		runCtx, cancel = context.WithTimeout(ctx, params.Duration)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	seed := params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	log.Info("starting benchmark",
		zap.String("endpoint", params.Endpoint),
		zap.String("bucket", params.BucketName),
		zap.String("prefix", params.Prefix),
		zap.Stringer("mode", params.Mode),
		zap.Stringer("get_strategy", params.GetStrategy),
		zap.Int("put_workers", params.PutWorkers),
		zap.Int("put_per_worker", params.PutPerWorker),
		zap.Int("get_workers", params.GetWorkers),
		zap.Int("get_per_worker", params.GetPerWorker),
		zap.Int64("seed", seed),
	)

	collector := stats.NewCollector()
	exec := NewExecutor(store, params, opts.Metrics, opts.Sleep)

	var wg sync.WaitGroup
	spawn := func(id int, kind stats.Kind, iterations int) {
		// each worker owns its random source, seeded apart from the others
		rng := rand.New(rand.NewSource(seed + int64(id)))
		gen := NewGenerator(rng, params.MinSize, params.MaxSize)
		w := newWorker(id, kind, iterations, params.Mode, gen, exec, collector, opts.Metrics, log, opts.Progress)

		wg.Add(1)
		go func() {
			defer wg.Done()
			w.run(runCtx)
		}()
	}

	startTime := time.Now()
	id := 0
	for i := 0; i < params.PutWorkers; i++ {
		spawn(id, stats.Put, params.PutPerWorker)
		id++
	}
	for i := 0; i < params.GetWorkers; i++ {
		spawn(id, stats.Get, params.GetPerWorker)
		id++
	}

	wg.Wait()
	elapsed := time.Since(startTime)

	summary := report.Aggregate(collector.Drain())
	summary.Elapsed = elapsed

	log.Info("benchmark finished",
		zap.Duration("elapsed", elapsed),
		zap.Int("put_count", summary.Put.Count),
		zap.Int("get_count", summary.Get.Count),
	)
	return summary, nil
}

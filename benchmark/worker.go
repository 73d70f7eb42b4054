package benchmark

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"putgetbench/stats"
	"putgetbench/telemetry"
)

type worker struct {
	id         int
	kind       stats.Kind
	mode       Mode
	iterations int

	gen       *Generator
	exec      *Executor
	collector *stats.Collector
	metrics   *telemetry.Metrics
	log       *zap.Logger
	tick      func()

	// dispatch errors tend to come in bursts, log only a few of them
	skipLog rate.Sometimes
}

func newWorker(id int, kind stats.Kind, iterations int, mode Mode, gen *Generator, exec *Executor,
	collector *stats.Collector, metrics *telemetry.Metrics, log *zap.Logger, tick func()) *worker {
	return &worker{
		id:         id,
		kind:       kind,
		mode:       mode,
		iterations: iterations,
		gen:        gen,
		exec:       exec,
		collector:  collector,
		metrics:    metrics,
		log:        log.With(zap.String("op", kind.String()), zap.Int("worker", id)),
		tick:       tick,
		skipLog:    rate.Sometimes{First: 3, Interval: 10 * time.Second},
	}
}

// run loops until the iteration budget is spent or ctx is cancelled.
// Cancellation is only observed between iterations.
func (w *worker) run(ctx context.Context) {
	w.metrics.WorkerStarted(w.kind.String())
	defer w.metrics.WorkerStopped(w.kind.String())

	done := 0
	for w.mode == Continuous || done < w.iterations {
		if ctx.Err() != nil {
			w.log.Debug("worker cancelled", zap.Int("iterations", done))
			return
		}
		w.handle(w.iterate(ctx))
		done++
	}
	w.log.Debug("worker done", zap.Int("iterations", done))
}

func (w *worker) iterate(ctx context.Context) Outcome {
	if w.kind == stats.Put {
		size, body := w.gen.Payload()
		defer PutBuffer(body)
		return w.exec.Put(ctx, SizeKey(w.exec.prefix, size), body)
	}

	key, ok, out := w.exec.ResolveKey(ctx, w.gen)
	if !ok {
		return out
	}
	return w.exec.Get(ctx, key)
}

func (w *worker) handle(out Outcome) {
	switch out.Status {
	case Success:
		w.collector.Append(out.Record)
		w.metrics.Observe(w.kind.String(), out.Status.String(), out.Record.Duration(), out.Record.Size)
	case Skip:
		w.metrics.Observe(w.kind.String(), out.Status.String(), 0, 0)
		w.skipLog.Do(func() {
			w.log.Debug("attempt skipped", zap.Error(out.Err))
		})
	default:
		w.metrics.Observe(w.kind.String(), out.Status.String(), 0, 0)
		w.log.Warn("attempt failed", zap.Error(out.Err))
	}
	if w.tick != nil {
		w.tick()
	}
}

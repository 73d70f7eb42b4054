package benchmark

import (
	"context"
	"errors"
	"fmt"
	"time"

	"putgetbench/stats"
	"putgetbench/storage"
	"putgetbench/telemetry"
)

// Status classifies one attempt.
type Status int

const (
	// Success attempts produce a Record.
	Success Status = iota
	// Skip attempts failed at the transport level and are not counted.
	Skip
	// Failure attempts got an error from the service.
	Failure
)

func (s Status) String() string {
	switch s {
	case Success:
		return telemetry.OutcomeSuccess
	case Skip:
		return telemetry.OutcomeSkip
	default:
		return telemetry.OutcomeFailure
	}
}

// Outcome is the result of one attempt. Record is only set on Success.
type Outcome struct {
	Status Status
	Record stats.Record
	Err    error
}

func outcomeOf(err error) Outcome {
	if storage.IsDispatch(err) {
		return Outcome{Status: Skip, Err: err}
	}
	return Outcome{Status: Failure, Err: err}
}

// errEmptyListing marks a get attempt that found nothing to read.
var errEmptyListing = errors.New("no objects under prefix")

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Executor performs single measured attempts against a store.
type Executor struct {
	store            storage.Storage
	bucket           string
	prefix           string
	strategy         GetStrategy
	backoff          time.Duration
	maxEmptyListings int
	retryEmpty       bool
	timeout          time.Duration
	metrics          *telemetry.Metrics
	sleep            SleepFunc
}

// NewExecutor creates an executor for the bucket and prefix of params.
func NewExecutor(store storage.Storage, params BenchmarkParams, metrics *telemetry.Metrics, sleep SleepFunc) *Executor {
	params = params.withDefaults()
	if sleep == nil {
		sleep = sleepCtx
	}
	return &Executor{
		store:            store,
		bucket:           params.BucketName,
		prefix:           params.Prefix,
		strategy:         params.GetStrategy,
		backoff:          params.Backoff,
		maxEmptyListings: params.MaxEmptyListings,
		retryEmpty:       params.Mode == Continuous,
		timeout:          params.RequestTimeout,
		metrics:          metrics,
		sleep:            sleep,
	}
}

// callContext detaches storage calls from run cancellation so an attempt in
// flight always completes, then applies the per request timeout.
func (e *Executor) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if e.timeout > 0 {
		return context.WithTimeout(ctx, e.timeout)
	}
	return ctx, func() {}
}

// Put uploads body under key.
func (e *Executor) Put(ctx context.Context, key string, body []byte) Outcome {
	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	start := time.Now()
	if err := e.store.PutObject(callCtx, e.bucket, key, body); err != nil {
		return outcomeOf(fmt.Errorf("put %s: %w", key, err))
	}
	end := time.Now()

	return Outcome{
		Status: Success,
		Record: stats.Record{Kind: stats.Put, Start: start, End: end, Size: int64(len(body))},
	}
}

// ResolveKey chooses the key a get attempt reads. ok is false when no key
// could be chosen; out then explains why.
//
// An empty listing is followed by one backoff wait. Bounded runs then give
// up the attempt so it is charged to the iteration budget, continuous runs
// list again until MaxEmptyListings (0 = no limit) is reached.
func (e *Executor) ResolveKey(ctx context.Context, g *Generator) (key string, ok bool, out Outcome) {
	if e.strategy == Blind {
		return SizeKey(e.prefix, g.Size()), true, Outcome{}
	}

	for empty := 0; ; {
		callCtx, cancel := e.callContext(ctx)
		keys, err := storage.ListAll(callCtx, e.store, e.bucket, e.prefix)
		cancel()
		if err != nil {
			return "", false, outcomeOf(fmt.Errorf("list %s: %w", e.prefix, err))
		}
		if len(keys) > 0 {
			return keys[g.Pick(len(keys))], true, Outcome{}
		}

		empty++
		if e.maxEmptyListings > 0 && empty >= e.maxEmptyListings {
			return "", false, Outcome{Status: Skip, Err: errEmptyListing}
		}
		e.metrics.Backoff()
		if err := e.sleep(ctx, e.backoff); err != nil {
			return "", false, Outcome{Status: Skip, Err: err}
		}
		if !e.retryEmpty {
			return "", false, Outcome{Status: Skip, Err: errEmptyListing}
		}
	}
}

// Get downloads key completely into memory.
func (e *Executor) Get(ctx context.Context, key string) Outcome {
	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	start := time.Now()
	body, err := e.store.GetObject(callCtx, e.bucket, key)
	if err != nil {
		return outcomeOf(fmt.Errorf("get %s: %w", key, err))
	}
	data, err := storage.ReadAll("get object", body)
	if err != nil {
		return outcomeOf(fmt.Errorf("get %s: %w", key, err))
	}
	end := time.Now()

	return Outcome{
		Status: Success,
		Record: stats.Record{Kind: stats.Get, Start: start, End: end, Size: int64(len(data))},
	}
}

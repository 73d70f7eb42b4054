package main

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"putgetbench/benchmark"
)

// flagValues holds the command line flags.
type flagValues struct {
	backend       string
	region        string
	accessKey     string
	secretKey     string
	ociConfig     string
	ociProfile    string
	ociNamespace  string
	memoryLatency time.Duration

	getMode          string
	minSize          string
	maxSize          string
	backoff          time.Duration
	maxEmptyListings int
	requestTimeout   time.Duration
	duration         time.Duration
	seed             int64

	json        bool
	quiet       bool
	logFile     string
	verbose     bool
	metricsAddr string
}

// defaultEndpoint keeps the endpoint the SDK resolves on its own.
const defaultEndpoint = "-"

// parseParams turns the positional arguments and flags into run parameters.
// Seven arguments select a bounded run, five a continuous one.
func parseParams(args []string, fv *flagValues) (benchmark.BenchmarkParams, error) {
	var p benchmark.BenchmarkParams
	var counts []int

	switch len(args) {
	case 7:
		p.Mode = benchmark.Bounded
	case 5:
		p.Mode = benchmark.Continuous
	default:
		return p, &benchmark.ConfigError{
			Field:  "arguments",
			Reason: fmt.Sprintf("expected 7 (bounded) or 5 (continuous) arguments, got %d", len(args)),
		}
	}

	for i, a := range args[3:] {
		n, err := strconv.Atoi(a)
		if err != nil || n < 0 {
			return p, &benchmark.ConfigError{
				Field:  fmt.Sprintf("argument %d", i+4),
				Reason: fmt.Sprintf("%q is not a non-negative integer", a),
			}
		}
		counts = append(counts, n)
	}

	p.Endpoint, p.BucketName, p.Prefix = args[0], args[1], args[2]
	if p.Endpoint == defaultEndpoint {
		p.Endpoint = ""
	}
	if p.Mode == benchmark.Bounded {
		p.PutWorkers, p.PutPerWorker, p.GetWorkers, p.GetPerWorker = counts[0], counts[1], counts[2], counts[3]
	} else {
		p.PutWorkers, p.GetWorkers = counts[0], counts[1]
	}

	strategy, err := benchmark.ParseGetStrategy(fv.getMode)
	if err != nil {
		return p, err
	}
	p.GetStrategy = strategy

	if p.MinSize, err = parseSize("min-size", fv.minSize); err != nil {
		return p, err
	}
	if p.MaxSize, err = parseSize("max-size", fv.maxSize); err != nil {
		return p, err
	}

	p.Backoff = fv.backoff
	p.MaxEmptyListings = fv.maxEmptyListings
	p.RequestTimeout = fv.requestTimeout
	p.Duration = fv.duration
	p.Seed = fv.seed

	return p, p.Validate()
}

const maxSize = 1 << 40

func parseSize(field, s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, &benchmark.ConfigError{Field: field, Reason: err.Error()}
	}
	if n > maxSize {
		return 0, &benchmark.ConfigError{Field: field, Reason: "larger than 1TiB"}
	}
	if n > math.MaxInt {
		return 0, &benchmark.ConfigError{Field: field, Reason: "too large for this platform"}
	}
	return int(n), nil
}

package benchmark

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects how workers terminate.
type Mode int

const (
	// Bounded workers run a fixed number of iterations.
	Bounded Mode = iota
	// Continuous workers run until the run context is cancelled.
	Continuous
)

func (m Mode) String() string {
	if m == Continuous {
		return "continuous"
	}
	return "bounded"
}

// GetStrategy selects how get workers choose the key to read.
type GetStrategy int

const (
	// Listing reads a random key out of a full listing of the prefix.
	Listing GetStrategy = iota
	// Blind derives the key from a random size, following the put naming
	// convention, without listing. Keys may not exist.
	Blind
)

func (s GetStrategy) String() string {
	if s == Blind {
		return "blind"
	}
	return "listing"
}

// ParseGetStrategy parses "listing" or "blind".
func ParseGetStrategy(s string) (GetStrategy, error) {
	switch strings.ToLower(s) {
	case "listing", "list":
		return Listing, nil
	case "blind":
		return Blind, nil
	}
	return Listing, &ConfigError{Field: "get-mode", Reason: fmt.Sprintf("unknown strategy %q", s)}
}

// Payload size bounds, half-open.
const (
	DefaultMinSize = 1024
	DefaultMaxSize = 1024 * 1024 * 100

	DefaultBackoff = time.Second
)

// BenchmarkParams holds the parameters of one run
type BenchmarkParams struct {
	Endpoint   string // informational, the storage is built by the caller
	BucketName string
	Prefix     string // key prefix objects are written under and read from

	Mode         Mode
	PutWorkers   int
	PutPerWorker int // Bounded mode only
	GetWorkers   int
	GetPerWorker int // Bounded mode only

	GetStrategy GetStrategy

	MinSize int // inclusive
	MaxSize int // exclusive

	Backoff          time.Duration // sleep after an empty listing
	MaxEmptyListings int           // consecutive empty listings before giving up an attempt, 0 means never
	RequestTimeout   time.Duration // per storage call, 0 means none
	Duration         time.Duration // Continuous mode deadline, 0 means none
	Seed             int64         // 0 picks a time based seed
}

// ConfigError reports an invalid run configuration.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (p BenchmarkParams) withDefaults() BenchmarkParams {
	if p.MinSize == 0 {
		p.MinSize = DefaultMinSize
	}
	if p.MaxSize == 0 {
		p.MaxSize = DefaultMaxSize
	}
	if p.Backoff == 0 {
		p.Backoff = DefaultBackoff
	}
	return p
}

// Validate checks the parameters after defaults are applied.
func (p BenchmarkParams) Validate() error {
	p = p.withDefaults()
	switch {
	case p.BucketName == "":
		return &ConfigError{Field: "bucket", Reason: "must not be empty"}
	case p.PutWorkers < 0:
		return &ConfigError{Field: "put workers", Reason: "must not be negative"}
	case p.GetWorkers < 0:
		return &ConfigError{Field: "get workers", Reason: "must not be negative"}
	case p.PutPerWorker < 0:
		return &ConfigError{Field: "put per worker", Reason: "must not be negative"}
	case p.GetPerWorker < 0:
		return &ConfigError{Field: "get per worker", Reason: "must not be negative"}
	case p.MinSize <= 0:
		return &ConfigError{Field: "min size", Reason: "must be positive"}
	case p.MaxSize <= p.MinSize:
		return &ConfigError{Field: "max size", Reason: fmt.Sprintf("must be greater than min size %d", p.MinSize)}
	case p.Backoff < 0:
		return &ConfigError{Field: "backoff", Reason: "must not be negative"}
	case p.MaxEmptyListings < 0:
		return &ConfigError{Field: "max empty listings", Reason: "must not be negative"}
	case p.RequestTimeout < 0:
		return &ConfigError{Field: "request timeout", Reason: "must not be negative"}
	case p.Duration < 0:
		return &ConfigError{Field: "duration", Reason: "must not be negative"}
	case p.Mode != Bounded && p.Mode != Continuous:
		return &ConfigError{Field: "mode", Reason: fmt.Sprintf("unknown mode %d", p.Mode)}
	case p.Mode == Bounded && p.Duration > 0:
		return &ConfigError{Field: "duration", Reason: "only applies to continuous runs"}
	}
	return nil
}

// TotalIterations is the number of attempts a bounded run makes, 0 for
// continuous runs.
func (p BenchmarkParams) TotalIterations() int64 {
	if p.Mode == Continuous {
		return 0
	}
	return int64(p.PutWorkers)*int64(p.PutPerWorker) + int64(p.GetWorkers)*int64(p.GetPerWorker)
}

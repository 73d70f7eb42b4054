package stats

import "time"

// Kind identifies the storage operation a Record measures.
type Kind int

const (
	Put Kind = iota
	Get
)

func (k Kind) String() string {
	switch k {
	case Put:
		return "put"
	case Get:
		return "get"
	default:
		return "unknown"
	}
}

// Record is the measurement of one successful operation.
type Record struct {
	Kind  Kind
	Start time.Time
	End   time.Time
	Size  int64 // payload bytes for Put, bytes read for Get
}

// Duration returns the wall-clock time spent in the operation.
func (r Record) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

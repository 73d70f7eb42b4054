package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"putgetbench/stats"
)

// OpSummary holds the aggregated figures of one operation type.
type OpSummary struct {
	Count       int     `json:"count"`
	TotalTimeMs int64   `json:"total_time_ms"`
	AvgTimeMs   float64 `json:"avg_time_ms"`
	// AvgDefined is false when Count is zero and AvgTimeMs carries no meaning.
	AvgDefined bool  `json:"avg_defined"`
	TotalBytes int64 `json:"total_bytes"`
}

// Summary is the result of a run, one OpSummary per operation type.
type Summary struct {
	Put OpSummary `json:"put"`
	Get OpSummary `json:"get"`

	// Elapsed is the wall-clock length of the run. Zero when unknown.
	Elapsed time.Duration `json:"elapsed_ns,omitempty"`
}

// Aggregate partitions records by kind and computes their summaries.
// It does not modify records.
func Aggregate(records []stats.Record) Summary {
	var s Summary
	for _, r := range records {
		var op *OpSummary
		switch r.Kind {
		case stats.Put:
			op = &s.Put
		case stats.Get:
			op = &s.Get
		default:
			continue
		}
		op.Count++
		op.TotalTimeMs += r.Duration().Milliseconds()
		op.TotalBytes += r.Size
	}
	s.Put.finish()
	s.Get.finish()
	return s
}

func (o *OpSummary) finish() {
	if o.Count == 0 {
		o.AvgTimeMs = 0
		o.AvgDefined = false
		return
	}
	o.AvgTimeMs = float64(o.TotalTimeMs) / float64(o.Count)
	o.AvgDefined = true
}

func (o OpSummary) avg() string {
	if !o.AvgDefined {
		return "n/a"
	}
	return fmt.Sprintf("%.2fms", o.AvgTimeMs)
}

// Render writes the fixed-format text report. Both operation types are
// always present.
func Render(w io.Writer, s Summary) {
	header := color.New(color.FgBlue, color.Bold)
	for _, op := range []struct {
		name string
		sum  OpSummary
	}{
		{"PUT", s.Put},
		{"GET", s.Get},
	} {
		header.Fprintf(w, "%s stats:", op.name)
		fmt.Fprintf(w, " count=%d, total_time=%dms, avg_time=%s, total_size=%d MB (%s)\n",
			op.sum.Count,
			op.sum.TotalTimeMs,
			op.sum.avg(),
			op.sum.TotalBytes/1024/1024,
			humanize.IBytes(uint64(op.sum.TotalBytes)))
	}

	if s.Elapsed > 0 {
		secs := s.Elapsed.Seconds()
		total := s.Put.TotalBytes + s.Get.TotalBytes
		ops := s.Put.Count + s.Get.Count
		fmt.Fprintf(w, "Duration: %v\n", s.Elapsed.Round(time.Millisecond))
		fmt.Fprintf(w, "Data Throughput: %.2f MiB/s\n", float64(total)/secs/(1024*1024))
		fmt.Fprintf(w, "Object Throughput: %.2f objects/s\n", float64(ops)/secs)
	}
}

// RenderJSON writes the summary as a single JSON document.
func RenderJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

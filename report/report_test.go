package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"putgetbench/stats"
)

func rec(kind stats.Kind, ms int, size int64) stats.Record {
	start := time.Unix(1700000000, 0)
	return stats.Record{Kind: kind, Start: start, End: start.Add(time.Duration(ms) * time.Millisecond), Size: size}
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil)

	for _, op := range []OpSummary{s.Put, s.Get} {
		assert.Equal(t, 0, op.Count)
		assert.Equal(t, int64(0), op.TotalTimeMs)
		assert.Equal(t, float64(0), op.AvgTimeMs)
		assert.False(t, op.AvgDefined)
		assert.Equal(t, int64(0), op.TotalBytes)
	}
}

func TestAggregatePartitions(t *testing.T) {
	records := []stats.Record{
		rec(stats.Put, 10, 1024),
		rec(stats.Get, 7, 300),
		rec(stats.Put, 20, 2048),
		rec(stats.Put, 30, 4096),
		rec(stats.Get, 3, 200),
	}

	s := Aggregate(records)

	assert.Equal(t, OpSummary{Count: 3, TotalTimeMs: 60, AvgTimeMs: 20, AvgDefined: true, TotalBytes: 7168}, s.Put)
	assert.Equal(t, OpSummary{Count: 2, TotalTimeMs: 10, AvgTimeMs: 5, AvgDefined: true, TotalBytes: 500}, s.Get)
}

func TestAggregateTruncatesPerRecord(t *testing.T) {
	start := time.Unix(0, 0)
	records := []stats.Record{
		{Kind: stats.Put, Start: start, End: start.Add(1900 * time.Microsecond)},
		{Kind: stats.Put, Start: start, End: start.Add(1900 * time.Microsecond)},
	}
	assert.Equal(t, int64(2), Aggregate(records).Put.TotalTimeMs)
}

func TestAggregateIsPure(t *testing.T) {
	records := []stats.Record{rec(stats.Put, 5, 10), rec(stats.Get, 9, 11)}
	before := append([]stats.Record(nil), records...)

	first := Aggregate(records)
	second := Aggregate(records)

	assert.Equal(t, first, second)
	assert.Equal(t, before, records)
}

func TestRenderBothPartitions(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	Render(&buf, Aggregate([]stats.Record{rec(stats.Put, 10, 3*1024*1024)}))

	out := buf.String()
	assert.Contains(t, out, "PUT stats: count=1, total_time=10ms, avg_time=10.00ms, total_size=3 MB (3.0 MiB)")
	assert.Contains(t, out, "GET stats: count=0, total_time=0ms, avg_time=n/a, total_size=0 MB (0 B)")
	assert.NotContains(t, out, "Throughput")
}

func TestRenderThroughput(t *testing.T) {
	color.NoColor = true

	s := Aggregate([]stats.Record{rec(stats.Put, 10, 2*1024*1024), rec(stats.Get, 10, 2*1024*1024)})
	s.Elapsed = 2 * time.Second

	var buf bytes.Buffer
	Render(&buf, s)

	assert.Contains(t, buf.String(), "Data Throughput: 2.00 MiB/s")
	assert.Contains(t, buf.String(), "Object Throughput: 1.00 objects/s")
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, Aggregate([]stats.Record{rec(stats.Get, 4, 8)})))

	var got Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 1, got.Get.Count)
	assert.Equal(t, int64(8), got.Get.TotalBytes)
	assert.False(t, got.Put.AvgDefined)
}

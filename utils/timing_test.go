package utils

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDurationUS(t *testing.T) {
	d := 1234*time.Microsecond + 567*time.Nanosecond
	got := DurationUS(d)
	if math.Abs(got-1234.567) > 0.001 {
		t.Fatalf("want 1234.567µs, got %.3f", got)
	}
}

func TestTimingStatsAdd(t *testing.T) {
	var s TimingStats
	s.Add(TimingStats{ForwardPassTime: time.Second, UpdateTime: 2 * time.Millisecond})
	s.Add(TimingStats{ForwardPassTime: time.Second, EvaluationTime: time.Minute})

	assert.Equal(t, 2*time.Second, s.ForwardPassTime)
	assert.Equal(t, 2*time.Millisecond, s.UpdateTime)
	assert.Equal(t, time.Minute, s.EvaluationTime)
}

func TestPrintTimingStats(t *testing.T) {
	var buf bytes.Buffer
	prevOut, prevVerbose := Output, Verbose
	t.Cleanup(func() { Output, Verbose = prevOut, prevVerbose })
	Output = &buf

	stats := &TimingStats{
		TotalTime:        10 * time.Second,
		ForwardPassTime:  5 * time.Second,
		BackwardPassTime: 2 * time.Second,
		UpdateTime:       time.Second,
	}
	PrintTimingStats(stats, 4)
	out := buf.String()
	assert.Contains(t, out, "TIMING STATISTICS")
	assert.Contains(t, out, "Forward pass: 5s (50.0%)")
	assert.Contains(t, out, "Average backward pass time: 750ms")

	buf.Reset()
	Verbose = false
	PrintTimingStats(stats, 4)
	assert.Empty(t, buf.String())
}

func TestPrintTimingStatsZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	prevOut := Output
	t.Cleanup(func() { Output = prevOut })
	Output = &buf

	PrintTimingStats(&TimingStats{}, 0)
	assert.Contains(t, buf.String(), "Evaluation: 0s (0.0%)")
	assert.NotContains(t, buf.String(), "Average")
}

package voxslam

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogOddsRoundTrip(t *testing.T) {
	for _, p := range []float32{0.1, 0.3, 0.5, 0.7, 0.9} {
		got := LogOddsToProbability(LogOdds(p))
		if math.Abs(float64(got-p)) > 1e-5 {
			t.Errorf("round trip of %v gave %v", p, got)
		}
	}
}

func TestLogOddsBaseline(t *testing.T) {
	assert.InDelta(t, 0.5, LogOddsToProbability(0), 1e-6)
	assert.InDelta(t, 0, LogOdds(0.5), 1e-6)
}

func TestLogOddsClampsDegenerateInputs(t *testing.T) {
	for _, p := range []float32{0, 1, -0.5, 1.5} {
		l := LogOdds(p)
		if math.IsInf(float64(l), 0) || math.IsNaN(float64(l)) {
			t.Errorf("LogOdds(%v) = %v, want finite", p, l)
		}
	}
}

func TestGaussianHalfLookup(t *testing.T) {
	table := GaussianHalfLookup(10)
	assert.Len(t, table, 10)
	assert.InDelta(t, 1.0, table[0], 1e-6)

	for i := 1; i < len(table); i++ {
		if table[i] > table[i-1] {
			t.Fatalf("table not non-increasing at %d: %v > %v", i, table[i], table[i-1])
		}
		tv := float64(i) / 10
		assert.InDelta(t, math.Exp(-tv*tv), float64(table[i]), 1e-5, "sample %d", i)
	}
}

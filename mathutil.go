package voxslam

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Probabilities are clamped away from 0 and 1 before the log-odds transform
// so degenerate sensor values stay finite.
const (
	minProbability = 1e-6
	maxProbability = 1 - 1e-6
)

// LogOdds converts a probability to log-odds, ln(p/(1-p)).
func LogOdds(p float32) float32 {
	if p < minProbability {
		p = minProbability
	}
	if p > maxProbability {
		p = maxProbability
	}
	return float32(math.Log(float64(p) / (1 - float64(p))))
}

// LogOddsToProbability is the inverse sigmoid transform, 1/(1+exp(-l)).
func LogOddsToProbability(l float32) float32 {
	return float32(1 / (1 + math.Exp(-float64(l))))
}

// GaussianHalfLookup samples the positive half of exp(-t^2) at t = i/n.
// With sigma = 1/sqrt(2) the renormalised Normal pdf is exactly exp(-t^2),
// so the table is non-increasing from 1.
func GaussianHalfLookup(n int) []float32 {
	norm := distuv.Normal{Mu: 0, Sigma: 1 / math.Sqrt2}
	peak := norm.Prob(0)
	table := make([]float32, n)
	for i := range table {
		t := float64(i) / float64(n)
		table[i] = float32(norm.Prob(t) / peak)
	}
	return table
}

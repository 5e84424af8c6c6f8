package voxslam

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// SensorModelLookup is the pre-tabulated stereo sensor model: one row per
// half-pixel of disparity, one column per traversal step along the occupied
// region, values in [-1, 1]. Lookups outside the table resolve to zero so a
// missing row degrades to a zero evidence contribution rather than an error.
type SensorModelLookup struct {
	probability [][]float32
}

// NewSensorModelLookup wraps an externally tabulated model.
func NewSensorModelLookup(rows [][]float32) *SensorModelLookup {
	return &SensorModelLookup{probability: rows}
}

// Rows returns the number of disparity rows, 0 for a nil lookup.
func (m *SensorModelLookup) Rows() int {
	if m == nil {
		return 0
	}
	return len(m.probability)
}

// At returns the evidence value for a disparity row and traversal step, or 0
// outside the table.
func (m *SensorModelLookup) At(dispIdx, step int) float32 {
	if m == nil || dispIdx < 0 || dispIdx >= len(m.probability) {
		return 0
	}
	row := m.probability[dispIdx]
	if step < 0 || step >= len(row) {
		return 0
	}
	return row[step]
}

// NewStereoSensorModel tabulates a synthetic stereo model for simulation and
// testing: each disparity row is a Normal bump over the traversal steps,
// peaking mid-region and widening as disparity shrinks, since range
// uncertainty grows quadratically with inverse disparity. Values are
// normalised to peak at 1.
func NewStereoSensorModel(rows, steps int) *SensorModelLookup {
	table := make([][]float32, rows)
	for d := range table {
		row := make([]float32, steps)
		// Row 0/1 are never addressed (sub-pixel disparities are promoted
		// to row 2) but are tabulated anyway to keep indexing plain.
		disp := float64(d)
		if disp < 2 {
			disp = 2
		}
		sigma := float64(steps) / disp
		if sigma < 1 {
			sigma = 1
		}
		norm := distuv.Normal{Mu: float64(steps) / 2, Sigma: sigma}
		peak := norm.Prob(norm.Mu)
		for s := range row {
			row[s] = float32(norm.Prob(float64(s)) / peak)
		}
		table[d] = row
	}
	return &SensorModelLookup{probability: table}
}

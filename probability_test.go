package voxslam_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlsen/voxslam/particle"
)

func TestProbabilityNoEvidenceOnEmptyVoxel(t *testing.T) {
	g := testGrid(t, 32, 32, 50, 100, 10000)
	pose := particle.NewPose(1)

	_, ok := g.Probability(pose, 10, 10, 0, false)
	assert.False(t, ok)
	_, ok = g.Probability(pose, 10, 10, -1, false)
	assert.False(t, ok)
	_, ok = g.Probability(pose, 10, 10, 32, false)
	assert.False(t, ok)
}

func TestProbabilityBaselineWithoutAncestry(t *testing.T) {
	g := testGrid(t, 32, 32, 50, 100, 10000)

	p1 := particle.NewPose(1)
	g.Insert(wallRay(), p1, strongModel(), camOrigin, camOrigin)

	// A pose with no previous paths sees the 0.5 baseline everywhere, even
	// over populated cells.
	fresh := particle.NewPose(5)
	require.Empty(t, fresh.PreviousPaths())
	assert.Equal(t, float32(0.5), g.ProbabilityXY(fresh, 28, 16))
}

func TestProbabilityTemporalGate(t *testing.T) {
	g := testGrid(t, 32, 32, 50, 100, 10000)
	model := strongModel()

	p1 := particle.NewPose(3)
	g.Insert(wallRay(), p1, model, camOrigin, camOrigin)

	// The writing pose never sees its own fresh evidence.
	_, ok := g.Probability(p1, 28, 16, 0, false)
	assert.False(t, ok, "a pose must not reinforce itself")

	// Nor does a descendant at the same time step.
	same := p1.Child(3)
	_, ok = g.Probability(same, 28, 16, 0, false)
	assert.False(t, ok, "equal time steps are gated out")

	// A strictly newer descendant sees it.
	later := p1.Child(4)
	p, ok := g.Probability(later, 28, 16, 0, false)
	require.True(t, ok)
	assert.Greater(t, p, float32(0.5))
}

func TestProbabilityColumnSumsLogOdds(t *testing.T) {
	g := testGrid(t, 32, 32, 50, 100, 10000)
	model := strongModel()

	p1 := particle.NewPose(1)
	g.Insert(wallRay(), p1, model, camOrigin, camOrigin)
	p2 := p1.Child(2)

	// The column value matches the per-voxel value when only one slot holds
	// evidence.
	voxel, ok := g.Probability(p2, 28, 16, 0, false)
	require.True(t, ok)
	assert.InDelta(t, float64(voxel), float64(g.ProbabilityXY(p2, 28, 16)), 1e-5)
}

package voxslam_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlsen/voxslam"
	"github.com/mkarlsen/voxslam/particle"
)

func TestNewGridRejectsInvalidConfiguration(t *testing.T) {
	cases := []struct {
		name string
		cfg  voxslam.GridConfig
	}{
		{"zero width", voxslam.GridConfig{Width: 0, Height: 16, CellSizeMM: 50}},
		{"negative height", voxslam.GridConfig{Width: 32, Height: -1, CellSizeMM: 50}},
		{"zero cell size", voxslam.GridConfig{Width: 32, Height: 16, CellSizeMM: 0}},
		{"negative loc radius", voxslam.GridConfig{Width: 32, Height: 16, CellSizeMM: 50, LocalisationRadiusMM: -1}},
		{"negative max range", voxslam.GridConfig{Width: 32, Height: 16, CellSizeMM: 50, MaxMappingRangeMM: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := voxslam.NewGrid(tc.cfg, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, voxslam.ErrInvalidConfiguration)
		})
	}
}

func TestNewGridDerivesCellRadii(t *testing.T) {
	g := testGrid(t, 32, 32, 50, 100, 10000)
	assert.Equal(t, 2, g.LocalisationSearchCells())
}

func TestRemoveTombstonesImmediately(t *testing.T) {
	g := testGrid(t, 32, 32, 50, 100, 10000)
	model := strongModel()

	p1 := particle.NewPose(1)
	g.Insert(wallRay(), p1, model, camOrigin, camOrigin)
	g.Insert(wallRay(), p1, model, camOrigin, camOrigin)

	p2 := p1.Child(2)
	before, ok := g.Probability(p2, 28, 16, 0, true)
	require.True(t, ok)

	ids := p1.Path().HypothesesAt(28, 16, 0)
	require.Len(t, ids, 2)
	h, ok := g.HypothesisAt(ids[0])
	require.True(t, ok)

	valid := g.ValidHypotheses()
	g.Remove(ids[0])

	// Linearisable with respect to queries: exactly the removed entry's
	// contribution disappears, before any sweep runs.
	after, ok := g.Probability(p2, 28, 16, 0, true)
	require.True(t, ok)
	assert.InDelta(t, float64(before-h.LogOdds), float64(after), 1e-5)

	assert.Equal(t, valid-1, g.ValidHypotheses())
	assert.Equal(t, 1, g.GarbageHypotheses())
}

func TestRemoveOfDeadHypothesisIsNoOp(t *testing.T) {
	g := testGrid(t, 32, 32, 50, 100, 10000)
	p1 := particle.NewPose(1)
	g.Insert(wallRay(), p1, strongModel(), camOrigin, camOrigin)

	id := p1.Path().IDs()[0]
	g.Remove(id)
	garbage := g.GarbageHypotheses()
	valid := g.ValidHypotheses()

	g.Remove(id)
	assert.Equal(t, garbage, g.GarbageHypotheses())
	assert.Equal(t, valid, g.ValidHypotheses())
}

// assertNoDisabledResident walks every slot checking that no tombstoned
// hypothesis survived the sweep.
func assertNoDisabledResident(t *testing.T, g *voxslam.Grid, width, height int) {
	t.Helper()
	for x := 0; x < width; x++ {
		for y := 0; y < width; y++ {
			for z := 0; z < height; z++ {
				for _, id := range g.CellHypotheses(x, y, z) {
					h, ok := g.HypothesisAt(id)
					require.True(t, ok)
					assert.True(t, h.Enabled, "disabled hypothesis resident at (%d,%d,%d)", x, y, z)
				}
			}
		}
	}
}

func TestTombstoneThenSweep(t *testing.T) {
	g := testGrid(t, 32, 32, 50, 100, 10000)
	model := strongModel()

	p1 := particle.NewPose(1)
	g.Insert(wallRay(), p1, model, camOrigin, camOrigin)
	p2 := p1.Child(2)
	g.Insert(wallRay(), p2, model, camOrigin, camOrigin)

	// Resampling drops the ancestor: its whole write set is retracted.
	p1.Retire(g)

	// Queries observe the retraction before any sweep.
	assert.Equal(t, float32(0.5), g.ProbabilityXY(p2, 28, 16))
	_, ok := g.Probability(p2, 28, 16, 0, false)
	assert.False(t, ok)

	g.GarbageCollect(100)
	assert.Equal(t, 0, g.GarbageHypotheses())
	assert.Equal(t, p2.Path().Len(), g.ValidHypotheses())
	assertNoDisabledResident(t, g, 32, 32)

	// Idempotent: a second sweep reclaims nothing.
	assert.Equal(t, 0, g.GarbageCollect(100))
}

func TestGarbageCollectHonoursBudget(t *testing.T) {
	g := testGrid(t, 64, 16, 50, 100, 10000)
	model := strongModel()

	p1 := particle.NewPose(1)
	g.Insert(wallRay(), p1, model, camOrigin, camOrigin)
	p1.Retire(g)
	require.Greater(t, g.GarbageHypotheses(), 0)

	// A small budget still makes progress; repeated calls drain the rest.
	for i := 0; i < 100 && g.GarbageHypotheses() > 0; i++ {
		g.GarbageCollect(10)
	}
	assert.Equal(t, 0, g.GarbageHypotheses())
	assert.Equal(t, 0, g.ValidHypotheses())
}

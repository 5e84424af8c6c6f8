package voxslam

// Probability projects the hypotheses at voxel (x, y, z) through the pose's
// ancestry. Each ancestor path replays only its own contributions, and a
// temporal gate admits a hypothesis only when the querying pose is strictly
// newer than the pose that wrote it, so a pose never reinforces itself with
// rays it just deposited.
//
// The second return value is false when the voxel carries no evidence under
// this pose: the slot has never been written, or no resident hypothesis
// passes the gate. When returnLogOdds is set the raw log-odds sum is
// returned instead of its sigmoid conversion.
func (g *Grid) Probability(pose Pose, x, y, z int, returnLogOdds bool) (float32, bool) {
	c := g.cellAt(x, y)
	if c == nil || z < 0 || z >= g.Height || c.slots[z] == nil {
		return 0, false
	}

	sum := float32(0)
	hits := 0
	for _, path := range pose.PreviousPaths() {
		for _, id := range path.HypothesesAt(x, y, z) {
			h := g.arena.get(id)
			if h == nil || !h.Enabled {
				continue
			}
			if pose.TimeStep() <= h.PoseTime {
				continue
			}
			sum += h.LogOdds
			hits++
		}
	}
	if hits == 0 {
		return 0, false
	}
	if returnLogOdds {
		return sum, true
	}
	return LogOddsToProbability(sum), true
}

// ProbabilityXY collapses the whole column at (x, y) into one occupancy
// value: per-slot log-odds sums are added across every slot with evidence and
// converted once at the end, treating the vertical observations as
// independent. A column without contributing evidence is the 0.5 baseline.
func (g *Grid) ProbabilityXY(pose Pose, x, y int) float32 {
	c := g.cellAt(x, y)
	if c == nil {
		return LogOddsToProbability(0)
	}
	total := float32(0)
	for z := range c.slots {
		if c.slots[z] == nil {
			continue
		}
		if l, ok := g.Probability(pose, x, y, z, true); ok {
			total += l
		}
	}
	return LogOddsToProbability(total)
}

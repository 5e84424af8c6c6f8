package voxslam

// HypothesisID is an integer handle into the grid's hypothesis arena. Cells
// and poses both store handles rather than pointers, so retraction is a
// single store and the two reachability paths never form a cycle.
type HypothesisID uint32

// Hypothesis is a single probabilistic observation of one voxel. Everything
// but Enabled is immutable after creation; Enabled flips to false when the
// owning pose retracts the observation.
type Hypothesis struct {
	X, Y, Z  int32
	LogOdds  float32
	PoseTime uint32
	Enabled  bool
}

// hypothesisArena backs all hypotheses of one grid. Freed slots are recycled
// through a freelist.
type hypothesisArena struct {
	entries []Hypothesis
	free    []HypothesisID
}

func (a *hypothesisArena) alloc(h Hypothesis) HypothesisID {
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		a.entries[id] = h
		return id
	}
	a.entries = append(a.entries, h)
	return HypothesisID(len(a.entries) - 1)
}

// get returns the live entry for id, or nil for an out-of-range handle.
func (a *hypothesisArena) get(id HypothesisID) *Hypothesis {
	if int(id) >= len(a.entries) {
		return nil
	}
	return &a.entries[id]
}

func (a *hypothesisArena) release(id HypothesisID) {
	a.free = append(a.free, id)
}

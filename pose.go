package voxslam

// Pose is one robot trajectory hypothesis in the particle filter that owns
// this grid. The grid reads a pose's ancestry during probability queries and
// hands it ownership of every hypothesis written on its behalf, so the filter
// can retract them when the pose is resampled away.
type Pose interface {
	// TimeStep is the filter tick at which this pose was created. Probability
	// queries only admit hypotheses written at a strictly earlier time step,
	// which stops a pose reinforcing itself with rays it just deposited.
	TimeStep() uint32

	// PreviousPaths returns the ancestry chain of path segments whose
	// hypotheses this pose inherits. A freshly spawned root pose has none.
	PreviousPaths() []Path

	// AddHypothesis records ownership of a hypothesis the grid just wrote at
	// voxel (x, y, z). The grid dimensions let the pose index its write set
	// by flattened voxel coordinate.
	AddHypothesis(id HypothesisID, x, y, z, gridWidth, gridHeight int)
}

// Path is one segment of a particle trajectory: the set of hypotheses a
// single ancestor pose wrote, indexed by voxel.
type Path interface {
	HypothesesAt(x, y, z int) []HypothesisID
}

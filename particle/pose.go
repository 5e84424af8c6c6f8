// Package particle provides a concrete pose/path implementation for the
// occupancy grid's particle contracts: poses carry a time step and an
// ancestry chain of path segments, own the hypotheses written on their
// behalf, and retract them when the filter resamples them away.
package particle

import (
	"github.com/google/uuid"

	"github.com/mkarlsen/voxslam"
)

// Path is one segment of a particle trajectory: the write set of a single
// pose, indexed by flattened voxel coordinate.
type Path struct {
	gridW, gridH int
	byVoxel      map[int][]voxslam.HypothesisID
	ids          []voxslam.HypothesisID
}

func NewPath() *Path {
	return &Path{byVoxel: make(map[int][]voxslam.HypothesisID)}
}

func (p *Path) key(x, y, z int) int {
	return (x*p.gridW+y)*p.gridH + z
}

func (p *Path) add(id voxslam.HypothesisID, x, y, z, gridW, gridH int) {
	if p.gridW == 0 {
		p.gridW, p.gridH = gridW, gridH
	}
	k := p.key(x, y, z)
	p.byVoxel[k] = append(p.byVoxel[k], id)
	p.ids = append(p.ids, id)
}

// HypothesesAt returns the hypotheses this segment wrote at one voxel.
func (p *Path) HypothesesAt(x, y, z int) []voxslam.HypothesisID {
	if p.gridW == 0 {
		return nil
	}
	return p.byVoxel[p.key(x, y, z)]
}

// Len is the total number of hypotheses in the segment.
func (p *Path) Len() int { return len(p.ids) }

// IDs returns the segment's hypotheses in insertion order.
func (p *Path) IDs() []voxslam.HypothesisID { return p.ids }

// Pose is one particle in the filter. Its ancestry is the ordered list of
// path segments written by its ancestor poses; its own segment receives the
// hypotheses the grid writes during Insert.
type Pose struct {
	id        uuid.UUID
	timeStep  uint32
	ancestors []voxslam.Path
	path      *Path
}

func NewPose(timeStep uint32) *Pose {
	return &Pose{
		id:       uuid.New(),
		timeStep: timeStep,
		path:     NewPath(),
	}
}

func (p *Pose) ID() uuid.UUID    { return p.id }
func (p *Pose) TimeStep() uint32 { return p.timeStep }

// Path exposes the pose's own write segment.
func (p *Pose) Path() *Path { return p.path }

func (p *Pose) PreviousPaths() []voxslam.Path { return p.ancestors }

func (p *Pose) AddHypothesis(id voxslam.HypothesisID, x, y, z, gridW, gridH int) {
	p.path.add(id, x, y, z, gridW, gridH)
}

// Child derives a descendant pose at a later time step. The child inherits
// the parent's ancestry plus the parent's own segment, so the parent's
// observations contribute to the child's probability queries.
func (p *Pose) Child(timeStep uint32) *Pose {
	ancestors := make([]voxslam.Path, 0, len(p.ancestors)+1)
	ancestors = append(ancestors, p.ancestors...)
	ancestors = append(ancestors, p.path)
	return &Pose{
		id:        uuid.New(),
		timeStep:  timeStep,
		ancestors: ancestors,
		path:      NewPath(),
	}
}

// Retire tombstones every hypothesis this pose wrote. Called by the filter
// when the pose loses resampling; the grid reclaims the entries on its next
// sweep. Only the pose's own segment is retracted, ancestors stay live for
// sibling particles.
func (p *Pose) Retire(g *voxslam.Grid) {
	for _, id := range p.path.ids {
		g.Remove(id)
	}
}

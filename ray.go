package voxslam

import (
	"github.com/go-gl/mathgl/mgl32"
)

// EvidenceRay is one stereo range measurement handed to the grid by the ray
// producer. Vertices bound the occupied region along the ray; ObservedFrom is
// the observing camera head position. All positions are world millimetres.
type EvidenceRay struct {
	Vertices     [2]mgl32.Vec3
	ObservedFrom mgl32.Vec3

	// Cross-section width of the occupied region, mm.
	Width float32

	// Full ray length, mm.
	Length float32

	// Stereo pixel offset of the feature; proxy for inverse depth.
	Disparity float32

	// Fractional position along the occupied region where the diamond
	// cross-section peaks, in [0, 1].
	FattestPoint float32
}

// The three sensor-model components of one ray, processed in this order.
type rayComponent int

const (
	occupiedComponent rayComponent = iota
	vacantLeftComponent
	vacantRightComponent
)

func (c rayComponent) String() string {
	switch c {
	case occupiedComponent:
		return "occupied"
	case vacantLeftComponent:
		return "vacant-left"
	default:
		return "vacant-right"
	}
}

package voxslam

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Insert walks one evidence ray through the grid, writing hypotheses for the
// pose along all three sensor-model components and accumulating a
// localisation match score against the evidence already present. The score is
// the sum of log-odds agreement terms and is returned so the filter can
// reweight the pose.
//
// The traversal leaves the grid untouched outside the mappable band: a step
// whose centre cell falls outside [locWidth, Width-locWidth) in x or y, or
// outside the z column, ends the whole ray early with the score accumulated
// so far.
func (g *Grid) Insert(ray *EvidenceRay, pose Pose, model *SensorModelLookup, leftCam, rightCam mgl32.Vec3) float32 {
	idx := int(math.Round(float64(ray.Disparity) * 2))

	// Disparities that index rows 0 or 1 (under 0.75 pixel) are near-degenerate
	// range measurements. They are promoted to the minimum model row and
	// flagged so the width
	// profile keeps its tail open instead of tapering.
	smallDisparity := false
	if idx < 2 {
		idx = 2
		smallDisparity = true
	}
	if last := model.Rows() - 1; last >= 0 && idx > last {
		idx = last
	}

	halfWidthMM := float32(g.Width) * g.CellSizeMM / 2
	originX := g.X - halfWidthMM
	originY := g.Y - halfWidthMM

	// Widest point of the occupied region; the vacancy components converge
	// on it from each camera.
	intersect := ray.Vertices[0].Add(ray.Vertices[1].Sub(ray.Vertices[0]).Mul(ray.FattestPoint))

	rayWidthCells := int(math.Round(float64(ray.Width / (2 * g.CellSizeMM))))

	score := float32(0)

	for comp := occupiedComponent; comp <= vacantRightComponent; comp++ {
		var start, end mgl32.Vec3
		switch comp {
		case occupiedComponent:
			start, end = ray.Vertices[0], ray.Vertices[1]
		case vacantLeftComponent:
			start, end = leftCam, intersect
		case vacantRightComponent:
			start, end = rightCam, intersect
		}

		if comp != occupiedComponent {
			// Pull the vacancy endpoint back by the ray width so the vacancy
			// region stops short of the occupied region.
			dir := end.Sub(start)
			dist := dir.Len()
			if dist <= ray.Width {
				continue
			}
			end = start.Add(dir.Mul((dist - ray.Width) / dist))
		}

		dx := end.X() - start.X()
		dy := end.Y() - start.Y()
		dz := end.Z() - start.Z()

		longestX := abs32(dx) >= abs32(dy)
		longest := abs32(dy)
		if longestX {
			longest = abs32(dx)
		}
		steps := int(longest / g.CellSizeMM)
		if steps < 1 {
			steps = 1
		}

		stepX := dx / float32(steps)
		stepY := dy / float32(steps)
		stepZ := dz / float32(steps)

		// Cells between the camera and the front of the occupied region;
		// gates insertion against the maximum mapping range. Vacancy
		// components start at the camera itself.
		startingRange := float32(0)
		if comp == occupiedComponent {
			if longestX {
				startingRange = abs32(ray.Vertices[0].X()-ray.ObservedFrom.X()) / g.CellSizeMM
			} else {
				startingRange = abs32(ray.Vertices[0].Y()-ray.ObservedFrom.Y()) / g.CellSizeMM
			}
		}

		// The diamond profile peaks at the fattest point of the occupied
		// region; vacancy regions are front-loaded and peak at their end.
		widest := float32(steps)
		if comp == occupiedComponent {
			widest = ray.FattestPoint * float32(steps)
		}

		xx, yy, zz := start.X(), start.Y(), start.Z()

		for s := 0; s < steps; s++ {
			xx += stepX
			yy += stepY
			zz += stepZ

			var w int
			switch {
			case float32(s) < widest:
				w = int(float32(s) * float32(rayWidthCells) / widest)
			case smallDisparity:
				w = rayWidthCells
			default:
				w = int((float32(steps-s) + widest) * float32(rayWidthCells) / (float32(steps) - widest))
			}
			locW := w + g.locSearchCells

			cx := int(math.Floor(float64((xx - originX) / g.CellSizeMM)))
			cy := int(math.Floor(float64((yy - originY) / g.CellSizeMM)))
			cz := int(math.Floor(float64((zz - g.Z) / g.CellSizeMM)))

			if cx < locW || cx >= g.Width-locW || cy < locW || cy >= g.Width-locW ||
				cz < 0 || cz >= g.Height {
				return score
			}

			withinMappingRange := float32(s)+startingRange <= float32(g.maxMappingRangeCells)

			var centre float32
			if comp == occupiedComponent {
				centre = 0.5 + model.At(idx, s)/2
			} else {
				t := float64(s) / float64(steps)
				v := 0.1 + 0.9*float32(math.Exp(-t*t))
				centre = 0.5 - v/float32(steps)
			}

			// Lateral spread runs along the axis perpendicular to the
			// dominant one.
			for off := -locW; off <= locW; off++ {
				x2, y2 := cx, cy
				if longestX {
					y2 = cy + off
				} else {
					x2 = cx + off
				}

				aoff := off
				if aoff < 0 {
					aoff = -aoff
				}
				insideMapping := aoff <= w

				prob := centre
				if off != 0 && insideMapping {
					prob = centre * g.gauss[aoff*(gaussianSamples-1)/w]
				}
				probLoc := centre
				if off != 0 {
					probLoc = centre * g.gauss[aoff*(gaussianSamples-1)/locW]
				}

				c := g.cellAt(x2, y2)
				if comp == occupiedComponent && c != nil {
					score += g.matchContribution(pose, x2, y2, cz, probLoc)
				}

				if insideMapping && withinMappingRange {
					if c == nil {
						c = g.cellOrCreate(x2, y2)
					}
					id := g.arena.alloc(Hypothesis{
						X:        int32(x2),
						Y:        int32(y2),
						Z:        int32(cz),
						LogOdds:  LogOdds(prob),
						PoseTime: pose.TimeStep(),
						Enabled:  true,
					})
					c.add(id, cz)
					pose.AddHypothesis(id, x2, y2, cz, g.Width, g.Height)
					g.totalValid++
				}
			}
		}
	}
	return score
}

// matchContribution grades how well a single ray probability agrees with the
// map at one voxel under the queried pose. Voxels without evidence contribute
// nothing; otherwise the term is the log-odds of the two observations
// agreeing (both occupied or both vacant).
func (g *Grid) matchContribution(pose Pose, x, y, z int, pRay float32) float32 {
	pMap, ok := g.Probability(pose, x, y, z, false)
	if !ok {
		return 0
	}
	return LogOdds(pRay*pMap + (1-pRay)*(1-pMap))
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

package voxslam

import (
	"image"

	"golang.org/x/image/draw"
)

// Shades for the top-down probability view. Unexplored cells render white;
// everything else maps through the column occupancy under the queried pose.
const (
	shadeUnknown   = 255
	shadeOccupied  = 0
	shadeProbable  = 100
	shadeUncertain = 200
	shadeVacant    = 230
)

func probabilityShade(p float32) uint8 {
	switch {
	case p > 0.7:
		return shadeOccupied
	case p > 0.5:
		return shadeProbable
	case p >= 0.3:
		return shadeUncertain
	default:
		return shadeVacant
	}
}

// RenderProbability paints the grid at native resolution, one pixel per
// column, shaded by the pose-conditioned column occupancy.
func (g *Grid) RenderProbability(pose Pose) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Width))
	for y := 0; y < g.Width; y++ {
		for x := 0; x < g.Width; x++ {
			shade := uint8(shadeUnknown)
			if g.HasCell(x, y) {
				shade = probabilityShade(g.ProbabilityXY(pose, x, y))
			}
			i := img.PixOffset(x, y)
			img.Pix[i] = shade
			img.Pix[i+1] = shade
			img.Pix[i+2] = shade
			img.Pix[i+3] = 0xff
		}
	}
	return img
}

// ProbabilityImage fills a caller-owned RGB byte buffer of widthPx*heightPx
// pixels with the top-down probability view, sampled by nearest neighbour.
// A display helper only; it never feeds back into grid state. Buffers that
// are too small are left untouched.
func (g *Grid) ProbabilityImage(buf []byte, widthPx, heightPx int, pose Pose) {
	if widthPx <= 0 || heightPx <= 0 || len(buf) < widthPx*heightPx*3 {
		g.log.Warnf("probability image buffer too small: %d bytes for %dx%d", len(buf), widthPx, heightPx)
		return
	}
	src := g.RenderProbability(pose)
	dst := image.NewRGBA(image.Rect(0, 0, widthPx, heightPx))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	for p := 0; p < widthPx*heightPx; p++ {
		buf[p*3] = dst.Pix[p*4]
		buf[p*3+1] = dst.Pix[p*4+1]
		buf[p*3+2] = dst.Pix[p*4+2]
	}
}

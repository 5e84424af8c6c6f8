package voxslam

import (
	"fmt"
)

// Grid is a fixed-size multi-hypothesis occupancy grid. The horizontal extent
// is Width x Width cells, the vertical extent Height cells, and cells are
// created lazily on first write. X and Y name the grid's horizontal centre in
// world millimetres; Z is the height of the bottom of the lowest slot.
//
// A grid is owned by a single particle filter; insertions and sweeps are
// serialised by the owner.
type Grid struct {
	X, Y, Z    float32
	Width      int
	Height     int
	CellSizeMM float32

	cells []*Cell
	arena hypothesisArena

	// Cells currently holding disabled entries, each listed at most once.
	worklist []*Cell

	totalValid   int
	totalGarbage int

	gauss                []float32
	locSearchCells       int
	maxMappingRangeCells int

	log Logger
}

const gaussianSamples = 10

// NewGrid allocates a grid from the validated configuration. A nil logger is
// replaced with a no-op one.
func NewGrid(cfg GridConfig, log Logger) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = NewNopLogger()
	}
	g := &Grid{
		X:                    cfg.CentreXMM,
		Y:                    cfg.CentreYMM,
		Z:                    cfg.CentreZMM,
		Width:                cfg.Width,
		Height:               cfg.Height,
		CellSizeMM:           cfg.CellSizeMM,
		cells:                make([]*Cell, cfg.Width*cfg.Width),
		gauss:                GaussianHalfLookup(gaussianSamples),
		locSearchCells:       int(cfg.LocalisationRadiusMM / cfg.CellSizeMM),
		maxMappingRangeCells: int(cfg.MaxMappingRangeMM / cfg.CellSizeMM),
		log:                  log,
	}
	log.Debugf("grid %dx%dx%d cells, cell %.0fmm, loc search %d cells, max range %d cells",
		g.Width, g.Width, g.Height, g.CellSizeMM, g.locSearchCells, g.maxMappingRangeCells)
	return g, nil
}

func (g *Grid) cellAt(x, y int) *Cell {
	if x < 0 || x >= g.Width || y < 0 || y >= g.Width {
		return nil
	}
	return g.cells[y*g.Width+x]
}

func (g *Grid) cellOrCreate(x, y int) *Cell {
	idx := y*g.Width + x
	c := g.cells[idx]
	if c == nil {
		c = newCell(x, y, g.Height)
		g.cells[idx] = c
	}
	return c
}

// HasCell reports whether (x, y) has ever been written.
func (g *Grid) HasCell(x, y int) bool {
	return g.cellAt(x, y) != nil
}

// CellHypotheses returns a copy of the hypothesis handles resident in the
// slot at (x, y, z), disabled entries included.
func (g *Grid) CellHypotheses(x, y, z int) []HypothesisID {
	c := g.cellAt(x, y)
	if c == nil || z < 0 || z >= g.Height || c.slots[z] == nil {
		return nil
	}
	out := make([]HypothesisID, len(c.slots[z]))
	copy(out, c.slots[z])
	return out
}

// HypothesisAt resolves a handle to a snapshot of its entry.
func (g *Grid) HypothesisAt(id HypothesisID) (Hypothesis, bool) {
	h := g.arena.get(id)
	if h == nil {
		return Hypothesis{}, false
	}
	return *h, true
}

// ValidHypotheses is the count of enabled hypotheses across all cells.
func (g *Grid) ValidHypotheses() int { return g.totalValid }

// GarbageHypotheses is the count of disabled hypotheses still resident.
func (g *Grid) GarbageHypotheses() int { return g.totalGarbage }

// LocalisationSearchCells is the lateral search radius in cells.
func (g *Grid) LocalisationSearchCells() int { return g.locSearchCells }

// Remove tombstones a hypothesis: the entry is flipped to disabled, the
// owning cell's slot is marked dirty, and the cell joins the garbage
// worklist if it was clean. Queries observe the hypothesis as absent from
// this point on; the memory is reclaimed by GarbageCollect. Removing an
// already-disabled or unknown handle is a logged no-op.
func (g *Grid) Remove(id HypothesisID) {
	h := g.arena.get(id)
	if h == nil || !h.Enabled {
		g.log.Warnf("remove of dead hypothesis %d ignored", id)
		return
	}
	h.Enabled = false

	c := g.cellAt(int(h.X), int(h.Y))
	if c == nil {
		// Cannot happen for handles minted by Insert.
		g.log.Errorf("hypothesis %d at (%d,%d) has no cell", id, h.X, h.Y)
		return
	}
	c.dirty[h.Z] = true
	if c.garbageEntries == 0 {
		g.worklist = append(g.worklist, c)
	}
	c.garbageEntries++
	g.totalGarbage++
	g.totalValid--
}

// GarbageCollect sweeps the worklist tail to head, compacting each visited
// cell's dirty slots. budgetPercent caps the fraction of the worklist
// processed in this call (at least one cell when any is pending); repeated
// calls drain the remainder. Purely a memory operation: queries are
// unaffected before and after. Returns the number of entries reclaimed.
func (g *Grid) GarbageCollect(budgetPercent int) int {
	if len(g.worklist) == 0 {
		return 0
	}
	if budgetPercent > 100 {
		budgetPercent = 100
	}
	limit := len(g.worklist) * budgetPercent / 100
	if limit < 1 {
		limit = 1
	}

	removed := 0
	processed := 0
	for i := len(g.worklist) - 1; i >= 0 && processed < limit; i-- {
		c := g.worklist[i]
		removed += c.collectAll(&g.arena)
		processed++
		if c.garbageEntries == 0 {
			g.worklist = append(g.worklist[:i], g.worklist[i+1:]...)
		}
	}
	g.totalGarbage -= removed
	if removed > 0 {
		g.log.Debugf("swept %d hypotheses, %d still garbage", removed, g.totalGarbage)
	}
	return removed
}

func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%dx%d @ %.0f,%.0f,%.0f, %d live, %d garbage)",
		g.Width, g.Width, g.Height, g.X, g.Y, g.Z, g.totalValid, g.totalGarbage)
}

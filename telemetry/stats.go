// Package telemetry accumulates per-insert mapping statistics and writes
// them out as CSV for offline analysis.
package telemetry

import (
	"gonum.org/v1/gonum/stat"
)

// InsertStats is one row of the telemetry output: the outcome of a single
// ray insertion plus the grid counters after it.
type InsertStats struct {
	Step              int     `csv:"step"`
	MatchScore        float64 `csv:"match_score"`
	HypothesesAdded   int     `csv:"hypotheses_added"`
	ValidHypotheses   int     `csv:"valid_hypotheses"`
	GarbageHypotheses int     `csv:"garbage_hypotheses"`
}

// Summary aggregates a run's insertions.
type Summary struct {
	Inserts       int
	TotalAdded    int
	MeanScore     float64
	StdDevScore   float64
	MinScore      float64
	MaxScore      float64
}

// Collector buffers insert records for a run.
type Collector struct {
	records []InsertStats
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Record(r InsertStats) {
	c.records = append(c.records, r)
}

// Records returns the buffered rows in insertion order.
func (c *Collector) Records() []InsertStats {
	return c.records
}

// Summarise reduces the buffered records. An empty collector yields the zero
// summary.
func (c *Collector) Summarise() Summary {
	if len(c.records) == 0 {
		return Summary{}
	}
	scores := make([]float64, len(c.records))
	s := Summary{
		Inserts:  len(c.records),
		MinScore: c.records[0].MatchScore,
		MaxScore: c.records[0].MatchScore,
	}
	for i, r := range c.records {
		scores[i] = r.MatchScore
		s.TotalAdded += r.HypothesesAdded
		if r.MatchScore < s.MinScore {
			s.MinScore = r.MatchScore
		}
		if r.MatchScore > s.MaxScore {
			s.MaxScore = r.MatchScore
		}
	}
	s.MeanScore = stat.Mean(scores, nil)
	s.StdDevScore = stat.StdDev(scores, nil)
	return s
}

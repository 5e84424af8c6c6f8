// Command voxslam-sim runs a headless synthetic mapping session: a robot in
// the middle of a circular room sweeps stereo rays across the walls, two
// candidate pose lineages compete on localisation score, the loser is retired
// each tick, and the resulting occupancy map and telemetry are written out.
package main

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mkarlsen/voxslam"
	"github.com/mkarlsen/voxslam/particle"
	"github.com/mkarlsen/voxslam/telemetry"
)

var (
	configPath  = flag.String("config", "", "YAML config file (defaults used when empty)")
	ticks       = flag.Int("ticks", 20, "Number of mapping ticks")
	raysPerTick = flag.Int("rays", 36, "Rays swept per tick")
	roomRadius  = flag.Float64("room-mm", 1200, "Room radius in mm")
	outDir      = flag.String("out", "out", "Output directory ('' disables)")
	imageSize   = flag.Int("image-px", 256, "Probability image size in pixels")
	debug       = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()
	log := voxslam.NewDefaultLogger("voxslam-sim", *debug)

	cfg := voxslam.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = voxslam.LoadConfig(*configPath)
		if err != nil {
			log.Errorf("loading config: %v", err)
			os.Exit(1)
		}
	}

	if err := run(cfg, log); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(cfg voxslam.Config, log voxslam.Logger) error {
	grid, err := voxslam.NewGrid(cfg.Grid, log)
	if err != nil {
		return err
	}
	model := voxslam.NewStereoSensorModel(cfg.Sensor.DisparityRows, cfg.Sensor.Steps)

	om, err := telemetry.NewOutputManager(*outDir)
	if err != nil {
		return err
	}
	defer om.Close()

	collector := telemetry.NewCollector()

	// Two lineages compete; each tick the lower-scoring child is retired and
	// the winner carries the map forward.
	current := particle.NewPose(0)

	for tick := 1; tick <= *ticks; tick++ {
		a := current.Child(uint32(tick))
		b := current.Child(uint32(tick))

		before := grid.ValidHypotheses()
		scoreA := sweep(grid, model, a, cfg)
		scoreB := sweep(grid, model, b, cfg)

		winner, loser, score := a, b, scoreA
		if scoreB > scoreA {
			winner, loser, score = b, a, scoreB
		}
		loser.Retire(grid)
		grid.GarbageCollect(50)
		current = winner

		collector.Record(telemetry.InsertStats{
			Step:              tick,
			MatchScore:        float64(score),
			HypothesesAdded:   grid.ValidHypotheses() - before,
			ValidHypotheses:   grid.ValidHypotheses(),
			GarbageHypotheses: grid.GarbageHypotheses(),
		})
	}
	// Drain whatever the budgeted sweeps left behind.
	grid.GarbageCollect(100)

	summary := collector.Summarise()
	log.Infof("%d ticks, %d hypotheses live, score mean %.2f stddev %.2f (min %.2f max %.2f)",
		*ticks, grid.ValidHypotheses(), summary.MeanScore, summary.StdDevScore, summary.MinScore, summary.MaxScore)

	if err := om.WriteStats(collector.Records()); err != nil {
		return err
	}
	if om.Dir() != "" {
		if err := cfg.WriteYAML(filepath.Join(om.Dir(), "config.yaml")); err != nil {
			return err
		}
		// Query the map under a pose newer than every writer so all
		// contributions pass the temporal gate.
		view := current.Child(uint32(*ticks + 1))
		if err := writeImage(grid, view, filepath.Join(om.Dir(), "map.png")); err != nil {
			return err
		}
		log.Infof("outputs written to %s", om.Dir())
	}
	return nil
}

// sweep inserts one full circle of synthetic wall rays under the pose and
// returns the summed localisation score.
func sweep(grid *voxslam.Grid, model *voxslam.SensorModelLookup, pose *particle.Pose, cfg voxslam.Config) float32 {
	const focalPx = 300
	rangeMM := float32(*roomRadius)
	disparity := focalPx * cfg.Camera.BaselineMM / rangeMM
	// Depth uncertainty of the occupied region, one cell on either side of
	// the wall at minimum.
	u := rangeMM * rangeMM / (focalPx * cfg.Camera.BaselineMM) * 2
	if u < cfg.Grid.CellSizeMM {
		u = cfg.Grid.CellSizeMM
	}

	total := float32(0)
	for i := 0; i < *raysPerTick; i++ {
		theta := 2 * math.Pi * float64(i) / float64(*raysPerTick)
		dir := mgl32.Vec3{float32(math.Cos(theta)), float32(math.Sin(theta)), 0}
		perp := mgl32.Vec3{-dir.Y(), dir.X(), 0}

		origin := mgl32.Vec3{cfg.Grid.CentreXMM, cfg.Grid.CentreYMM, cfg.Camera.HeightMM}
		ray := &voxslam.EvidenceRay{
			Vertices: [2]mgl32.Vec3{
				origin.Add(dir.Mul(rangeMM - u)),
				origin.Add(dir.Mul(rangeMM + u)),
			},
			ObservedFrom: origin,
			Width:        cfg.Grid.CellSizeMM,
			Length:       rangeMM + u,
			Disparity:    disparity,
			FattestPoint: 0.5,
		}
		leftCam := origin.Add(perp.Mul(cfg.Camera.BaselineMM / 2))
		rightCam := origin.Sub(perp.Mul(cfg.Camera.BaselineMM / 2))

		total += grid.Insert(ray, pose, model, leftCam, rightCam)
	}
	return total
}

func writeImage(grid *voxslam.Grid, pose voxslam.Pose, path string) error {
	px := *imageSize
	buf := make([]byte, px*px*3)
	grid.ProbabilityImage(buf, px, px, pose)

	img := image.NewRGBA(image.Rect(0, 0, px, px))
	for p := 0; p < px*px; p++ {
		img.Pix[p*4] = buf[p*3]
		img.Pix[p*4+1] = buf[p*3+1]
		img.Pix[p*4+2] = buf[p*3+2]
		img.Pix[p*4+3] = 0xff
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}

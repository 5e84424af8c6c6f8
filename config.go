package voxslam

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfiguration wraps every construction-time validation failure.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Config holds everything a mapping run needs: the grid itself, the stereo
// camera geometry, and the synthetic sensor-model shape.
type Config struct {
	Grid   GridConfig   `yaml:"grid"`
	Camera CameraConfig `yaml:"camera"`
	Sensor SensorConfig `yaml:"sensor"`
}

// GridConfig fixes the grid dimensions at construction; there is no dynamic
// resizing.
type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	CellSizeMM           float32 `yaml:"cell_size_mm"`
	LocalisationRadiusMM float32 `yaml:"localisation_radius_mm"`
	MaxMappingRangeMM    float32 `yaml:"max_mapping_range_mm"`

	// Grid position in world millimetres: X and Y are the horizontal centre,
	// Z is the height of the bottom of the lowest slot.
	CentreXMM float32 `yaml:"centre_x_mm"`
	CentreYMM float32 `yaml:"centre_y_mm"`
	CentreZMM float32 `yaml:"centre_z_mm"`
}

// CameraConfig places the two stereo cameras relative to the robot origin.
type CameraConfig struct {
	BaselineMM float32 `yaml:"baseline_mm"`
	HeightMM   float32 `yaml:"height_mm"`
}

// SensorConfig sizes the tabulated sensor model.
type SensorConfig struct {
	DisparityRows int `yaml:"disparity_rows"`
	Steps         int `yaml:"steps"`
}

// DefaultConfig is a 3.2m square room at 50mm resolution.
func DefaultConfig() Config {
	return Config{
		Grid: GridConfig{
			Width:                64,
			Height:               16,
			CellSizeMM:           50,
			LocalisationRadiusMM: 100,
			MaxMappingRangeMM:    10000,
		},
		Camera: CameraConfig{
			BaselineMM: 100,
			HeightMM:   0,
		},
		Sensor: SensorConfig{
			DisparityRows: 40,
			Steps:         64,
		},
	}
}

// LoadConfig reads a YAML config, starting from the defaults so partial
// files only override what they name.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// WriteYAML saves the configuration alongside a run's outputs.
func (c Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	if err := c.Grid.Validate(); err != nil {
		return err
	}
	if c.Camera.BaselineMM <= 0 {
		return fmt.Errorf("%w: camera baseline must be positive, got %v", ErrInvalidConfiguration, c.Camera.BaselineMM)
	}
	if c.Sensor.DisparityRows <= 0 || c.Sensor.Steps <= 0 {
		return fmt.Errorf("%w: sensor model must have positive dimensions, got %dx%d",
			ErrInvalidConfiguration, c.Sensor.DisparityRows, c.Sensor.Steps)
	}
	return nil
}

func (c GridConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: grid dimensions must be positive, got %dx%d", ErrInvalidConfiguration, c.Width, c.Height)
	}
	if c.CellSizeMM <= 0 {
		return fmt.Errorf("%w: cell size must be positive, got %v", ErrInvalidConfiguration, c.CellSizeMM)
	}
	if c.LocalisationRadiusMM < 0 {
		return fmt.Errorf("%w: localisation radius must not be negative, got %v", ErrInvalidConfiguration, c.LocalisationRadiusMM)
	}
	if c.MaxMappingRangeMM < 0 {
		return fmt.Errorf("%w: max mapping range must not be negative, got %v", ErrInvalidConfiguration, c.MaxMappingRangeMM)
	}
	return nil
}

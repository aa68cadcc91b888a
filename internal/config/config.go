// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap/zapcore"
)

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	View    ViewConfig    `yaml:"view"`
	Catalog CatalogConfig `yaml:"catalog"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// ViewerConfig holds scene and camera settings.
type ViewerConfig struct {
	Model          string        `yaml:"model"`     // initial model source
	FitSize        float32       `yaml:"fit_size"`  // largest model dimension after normalization
	FOV            float32       `yaml:"fov"`       // degrees
	Near           float32       `yaml:"near"`
	Far            float32       `yaml:"far"`
	CameraPosition [3]float32    `yaml:"camera_position"`
	DampingFactor  float32       `yaml:"damping_factor"`
	GridSize       float32       `yaml:"grid_size"`
	GridDivisions  int           `yaml:"grid_divisions"`
	FlattenColor   uint32        `yaml:"flatten_color"`
	ShadowMapSize  int32         `yaml:"shadow_map_size"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
	Watch          bool          `yaml:"watch"`          // reload local models when the file changes
	ScreenshotDir  string        `yaml:"screenshot_dir"` // "~" expands to the home directory
}

// ViewConfig holds the initial view-mode flags.
type ViewConfig struct {
	Wireframe    bool `yaml:"wireframe"`
	Textured     bool `yaml:"textured"`
	ShowSkeleton bool `yaml:"show_skeleton"`
}

// CatalogConfig holds the asset manifest location.
type CatalogConfig struct {
	Manifest string   `yaml:"manifest"`
	Roots    []string `yaml:"roots"` // directories searched for relative model paths
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "AssetDeck",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Viewer: ViewerConfig{
			Model:          "/model.glb",
			FitSize:        4,
			FOV:            45,
			Near:           0.1,
			Far:            1000,
			CameraPosition: [3]float32{6, 4, 6},
			DampingFactor:  0.05,
			GridSize:       30,
			GridDivisions:  60,
			FlattenColor:   0x333333,
			ShadowMapSize:  2048,
			FetchTimeout:   30 * time.Second,
			ScreenshotDir:  "~/Pictures/AssetDeck",
		},
		View: ViewConfig{
			Textured: true,
		},
		Catalog: CatalogConfig{
			Roots: []string{"."},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every setting the viewer cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Viewer.FitSize <= 0 {
		errs = append(errs, fmt.Errorf("fit_size %v must be positive", c.Viewer.FitSize))
	}
	if c.Viewer.FOV <= 0 || c.Viewer.FOV >= 180 {
		errs = append(errs, fmt.Errorf("fov %v must be between 0 and 180", c.Viewer.FOV))
	}
	if c.Viewer.Near <= 0 || c.Viewer.Far <= c.Viewer.Near {
		errs = append(errs, fmt.Errorf("clip planes near=%v far=%v must satisfy 0 < near < far", c.Viewer.Near, c.Viewer.Far))
	}
	if c.Viewer.DampingFactor < 0 || c.Viewer.DampingFactor > 1 {
		errs = append(errs, fmt.Errorf("damping_factor %v must be within [0, 1]", c.Viewer.DampingFactor))
	}
	if c.Viewer.GridDivisions <= 0 {
		errs = append(errs, fmt.Errorf("grid_divisions %d must be positive", c.Viewer.GridDivisions))
	}
	if c.Viewer.ShadowMapSize <= 0 {
		errs = append(errs, fmt.Errorf("shadow_map_size %d must be positive", c.Viewer.ShadowMapSize))
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging level: %w", err))
	}
	return errors.Join(errs...)
}

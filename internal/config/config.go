// Package config handles viewer configuration loading and management.
package config

import "time"

// Config holds all viewer settings.
type Config struct {
	Window     WindowConfig     `yaml:"window"`
	Menu       MenuConfig       `yaml:"menu"`
	Camera     CameraConfig     `yaml:"camera"`
	Screenshot ScreenshotConfig `yaml:"screenshot"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// MenuConfig controls the mesh folder and its preview tiles.
type MenuConfig struct {
	Folder      string        `yaml:"folder"`       // Folder scanned for meshes
	Pattern     string        `yaml:"pattern"`      // Glob matched against file names
	PreviewSize int           `yaml:"preview_size"` // Tile edge in pixels
	Gap         int           `yaml:"gap"`          // Spacing between tiles
	Watch       bool          `yaml:"watch"`        // Rescan when the folder changes
	RescanDelay time.Duration `yaml:"rescan_delay"` // Debounce for watch events
}

// CameraConfig holds the per-session camera constants.
type CameraConfig struct {
	Position   [3]float32 `yaml:"position"`
	Target     [3]float32 `yaml:"target"`
	Up         [3]float32 `yaml:"up"`
	FOVDegrees float32    `yaml:"fov_degrees"`
	Near       float32    `yaml:"near"`
	Far        float32    `yaml:"far"`
	Fit        bool       `yaml:"fit"` // Frame each mesh by its bounds
}

// ScreenshotConfig controls F12 captures of the main scene.
type ScreenshotConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
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
			Title:  "meshview",
			Width:  1280,
			Height: 800,
			VSync:  true,
		},
		Menu: MenuConfig{
			Folder:      "models",
			Pattern:     "*.obj",
			PreviewSize: 128,
			Gap:         8,
			Watch:       true,
			RescanDelay: 250 * time.Millisecond,
		},
		Camera: CameraConfig{
			Position:   [3]float32{0, 2, 5},
			Target:     [3]float32{0, 2, 0},
			Up:         [3]float32{0, 1, 0},
			FOVDegrees: 60,
			Near:       0.1,
			Far:        50,
			Fit:        true,
		},
		Screenshot: ScreenshotConfig{
			Dir:    "screenshots",
			Prefix: "meshview",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 800, cfg.Window.Height)
	assert.False(t, cfg.Window.Fullscreen)
	assert.True(t, cfg.Window.VSync)

	assert.Equal(t, "*.obj", cfg.Menu.Pattern)
	assert.Equal(t, 128, cfg.Menu.PreviewSize)
	assert.True(t, cfg.Menu.Watch)
	assert.Equal(t, 250*time.Millisecond, cfg.Menu.RescanDelay)

	assert.Equal(t, [3]float32{0, 2, 5}, cfg.Camera.Position)
	assert.Equal(t, [3]float32{0, 2, 0}, cfg.Camera.Target)
	assert.Equal(t, [3]float32{0, 1, 0}, cfg.Camera.Up)
	assert.Equal(t, float32(60), cfg.Camera.FOVDegrees)
	assert.True(t, cfg.Camera.Fit)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Logging.LogFile)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
window:
  title: "previews"
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

menu:
  folder: "/srv/meshes"
  pattern: "*.{obj,OBJ}"
  preview_size: 96
  watch: false
  rescan_delay: 1s

camera:
  position: [0, 2, 8]
  fov_degrees: 45
  far: 200
  fit: false

logging:
  level: "debug"
  log_file: "meshview.log"
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	cfg := Default()
	require.NoError(t, loadFromFile(cfg, configPath))

	assert.Equal(t, "previews", cfg.Window.Title)
	assert.Equal(t, 1920, cfg.Window.Width)
	assert.Equal(t, 1080, cfg.Window.Height)
	assert.True(t, cfg.Window.Fullscreen)
	assert.False(t, cfg.Window.VSync)

	assert.Equal(t, "/srv/meshes", cfg.Menu.Folder)
	assert.Equal(t, "*.{obj,OBJ}", cfg.Menu.Pattern)
	assert.Equal(t, 96, cfg.Menu.PreviewSize)
	assert.False(t, cfg.Menu.Watch)
	assert.Equal(t, time.Second, cfg.Menu.RescanDelay)

	assert.Equal(t, [3]float32{0, 2, 8}, cfg.Camera.Position)
	assert.Equal(t, float32(45), cfg.Camera.FOVDegrees)
	assert.Equal(t, float32(200), cfg.Camera.Far)
	assert.False(t, cfg.Camera.Fit)

	// Values missing from the file keep their defaults
	assert.Equal(t, float32(0.1), cfg.Camera.Near)
	assert.Equal(t, 8, cfg.Menu.Gap)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "meshview.log", cfg.Logging.LogFile)
}

func TestLoadFromFileMissing(t *testing.T) {
	err := loadFromFile(Default(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromFileRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("menu:\n  paterns: \"*.obj\"\n"), 0644))

	err := loadFromFile(Default(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paterns")
}

func TestLoadFromEmptyFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	cfg := Default()
	require.NoError(t, loadFromFile(cfg, path))
	assert.Equal(t, Default(), cfg)
}

func TestSaveUsesConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	*flagConfig = path
	defer func() { *flagConfig = "" }()

	cfg := Default()
	cfg.Menu.Folder = "/data/obj"
	require.NoError(t, cfg.Save())
	assert.Equal(t, path, locate())

	loaded := Default()
	require.NoError(t, loadFromFile(loaded, path))
	assert.Equal(t, "/data/obj", loaded.Menu.Folder)
}

func TestDirFollowsXDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on linux")
	}
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "meshview"), Dir())
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Menu.Folder = "/data/obj"
	cfg.Camera.FOVDegrees = 70
	require.NoError(t, cfg.SaveTo(path))

	loaded := Default()
	require.NoError(t, loadFromFile(loaded, path))
	assert.Equal(t, cfg, loaded)
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Window.Width = 0
	cfg.Menu.PreviewSize = -1
	cfg.Menu.Pattern = "[unterminated"
	cfg.Camera.Near = 5
	cfg.Camera.Far = 1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 4)
	assert.Contains(t, err.Error(), "menu.pattern")
}

func TestApplyFlags(t *testing.T) {
	cfg := Default()

	*flagDebug = true
	*flagFolder = "/tmp/meshes"
	*flagWidth = 640
	defer func() {
		*flagDebug = false
		*flagFolder = ""
		*flagWidth = 0
	}()

	applyFlags(cfg)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/tmp/meshes", cfg.Menu.Folder)
	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 800, cfg.Window.Height)
}

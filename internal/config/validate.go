package config

import (
	"fmt"

	"github.com/gobwas/glob"
	"go.uber.org/multierr"
)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Menu.PreviewSize <= 0 {
		err = multierr.Append(err, fmt.Errorf("menu.preview_size must be positive, got %d", c.Menu.PreviewSize))
	}
	if c.Menu.Gap < 0 {
		err = multierr.Append(err, fmt.Errorf("menu.gap must not be negative, got %d", c.Menu.Gap))
	}
	if c.Menu.RescanDelay < 0 {
		err = multierr.Append(err, fmt.Errorf("menu.rescan_delay must not be negative, got %s", c.Menu.RescanDelay))
	}
	if _, gerr := glob.Compile(c.Menu.Pattern); c.Menu.Pattern == "" || gerr != nil {
		err = multierr.Append(err, fmt.Errorf("menu.pattern %q is not a valid glob", c.Menu.Pattern))
	}
	if c.Camera.FOVDegrees <= 0 || c.Camera.FOVDegrees >= 180 {
		err = multierr.Append(err, fmt.Errorf("camera.fov_degrees must be in (0, 180), got %g", c.Camera.FOVDegrees))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		err = multierr.Append(err, fmt.Errorf("camera clip planes must satisfy 0 < near < far, got near=%g far=%g", c.Camera.Near, c.Camera.Far))
	}
	if c.Camera.Position == c.Camera.Target {
		err = multierr.Append(err, fmt.Errorf("camera.position and camera.target must differ"))
	}

	return err
}

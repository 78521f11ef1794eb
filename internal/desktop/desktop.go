// Package desktop drives the X11 session with the usual command line
// tools: xdotool for synthetic keys, wmctrl for window focus, xdg-open for
// applications and URLs.
package desktop

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	log "log/slog"
)

// keymap translates spoken media keys into xdotool key names.
var keymap = map[string]string{
	"playpause":  "XF86AudioPlay",
	"next":       "XF86AudioNext",
	"previous":   "XF86AudioPrev",
	"mute":       "XF86AudioMute",
	"fullscreen": "f",
	"space":      "space",
	"k":          "k",
}

// Controller shells out to the session tools. runner is swapped in tests.
type Controller struct {
	runner func(name string, args ...string) error
}

func New() *Controller {
	return &Controller{runner: runCommand}
}

func runCommand(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// TapKey sends one synthetic key press to the focused window.
func (c *Controller) TapKey(key string) error {
	name, ok := keymap[strings.ToLower(key)]
	if !ok {
		name = key
	}
	return c.runner("xdotool", "key", name)
}

// OpenApp launches an application, focusing an existing window first when
// one is already open.
func (c *Controller) OpenApp(name string) error {
	app := strings.TrimSpace(strings.ToLower(name))
	if app == "" {
		return fmt.Errorf("no application name")
	}

	if err := c.runner("wmctrl", "-a", app); err == nil {
		return nil
	}

	if err := c.runner("gtk-launch", app); err == nil {
		return nil
	}
	// fall back to treating the spoken name as the binary
	if err := c.runner(app); err != nil {
		return fmt.Errorf("open %s: %w", app, err)
	}
	return nil
}

func (c *Controller) OpenURL(url string) error {
	if err := c.runner("xdg-open", url); err != nil {
		return fmt.Errorf("open url: %w", err)
	}
	return nil
}

// SetBrightness sets the backlight to percent via brightnessctl.
func (c *Controller) SetBrightness(percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("brightness %d out of range", percent)
	}
	return c.runner("brightnessctl", "set", strconv.Itoa(percent)+"%")
}

// SetVolume sets the default sink volume to percent via pactl.
func (c *Controller) SetVolume(percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("volume %d out of range", percent)
	}
	return c.runner("pactl", "set-sink-volume", "@DEFAULT_SINK@", strconv.Itoa(percent)+"%")
}

func (c *Controller) Notify(title, message string) error {
	if err := c.runner("notify-send", title, message); err != nil {
		log.Warn("Desktop notification failed", "err", err)
		return err
	}
	return nil
}

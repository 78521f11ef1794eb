// Package camera captures photos, short video clips and screenshots into
// the user's Pictures and Videos folders.
package camera

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	log "log/slog"
)

type Capture struct {
	device   string
	pictures string
	videos   string
	runner   func(name string, args ...string) error
	now      func() time.Time
}

// New builds a Capture using /dev/video0 and the standard folders under
// home. An empty home falls back to the current user's home directory.
func New(home string) *Capture {
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return &Capture{
		device:   "/dev/video0",
		pictures: filepath.Join(home, "Pictures"),
		videos:   filepath.Join(home, "Videos"),
		runner:   runCommand,
		now:      time.Now,
	}
}

func runCommand(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, string(out))
	}
	return nil
}

func (c *Capture) stamp(dir, prefix, ext string) string {
	return filepath.Join(dir, prefix+"_"+c.now().Format("20060102_150405")+ext)
}

// CapturePhoto grabs a single webcam frame with ffmpeg.
func (c *Capture) CapturePhoto() string {
	path := c.stamp(c.pictures, "photo", ".jpg")
	err := c.runner("ffmpeg",
		"-f", "v4l2", "-i", c.device,
		"-frames:v", "1", "-y", path)
	if err != nil {
		log.Error("Photo capture failed", "err", err)
		return "Sorry, I couldn't access the camera."
	}
	return "Photo captured and saved to your Pictures folder."
}

// RecordVideo records the webcam for the given number of seconds.
func (c *Capture) RecordVideo(seconds int) string {
	if seconds <= 0 {
		seconds = 10
	}
	path := c.stamp(c.videos, "video", ".mp4")
	err := c.runner("ffmpeg",
		"-f", "v4l2", "-i", c.device,
		"-t", strconv.Itoa(seconds), "-y", path)
	if err != nil {
		log.Error("Video recording failed", "err", err)
		return "Sorry, I couldn't record a video."
	}
	return fmt.Sprintf("Recorded a %d second video to your Videos folder.", seconds)
}

// Screenshot captures the whole screen with scrot.
func (c *Capture) Screenshot() string {
	path := c.stamp(c.pictures, "screenshot", ".png")
	if err := c.runner("scrot", path); err != nil {
		log.Error("Screenshot failed", "err", err)
		return "Sorry, I couldn't take a screenshot."
	}
	return "Screenshot saved to your Pictures folder."
}

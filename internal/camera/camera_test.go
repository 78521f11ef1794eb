package camera

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCapture(fail bool) (*Capture, *[]string) {
	var calls []string
	c := New("/home/test")
	c.now = func() time.Time { return time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC) }
	c.runner = func(name string, args ...string) error {
		calls = append(calls, strings.Join(append([]string{name}, args...), " "))
		if fail {
			return fmt.Errorf("%s: exit status 1", name)
		}
		return nil
	}
	return c, &calls
}

func TestCapturePhoto(t *testing.T) {
	c, calls := newTestCapture(false)

	msg := c.CapturePhoto()

	assert.Equal(t, "Photo captured and saved to your Pictures folder.", msg)
	require.Len(t, *calls, 1)
	assert.Contains(t, (*calls)[0], "ffmpeg -f v4l2 -i /dev/video0")
	assert.Contains(t, (*calls)[0], "/home/test/Pictures/photo_20260314_150926.jpg")
}

func TestRecordVideoDefaultsDuration(t *testing.T) {
	c, calls := newTestCapture(false)

	msg := c.RecordVideo(0)

	assert.Equal(t, "Recorded a 10 second video to your Videos folder.", msg)
	assert.Contains(t, (*calls)[0], "-t 10")
	assert.Contains(t, (*calls)[0], "/home/test/Videos/video_20260314_150926.mp4")
}

func TestScreenshot(t *testing.T) {
	c, calls := newTestCapture(false)

	msg := c.Screenshot()

	assert.Equal(t, "Screenshot saved to your Pictures folder.", msg)
	assert.Equal(t, "scrot /home/test/Pictures/screenshot_20260314_150926.png", (*calls)[0])
}

func TestFailuresAreSpoken(t *testing.T) {
	c, _ := newTestCapture(true)

	assert.Equal(t, "Sorry, I couldn't access the camera.", c.CapturePhoto())
	assert.Equal(t, "Sorry, I couldn't record a video.", c.RecordVideo(5))
	assert.Equal(t, "Sorry, I couldn't take a screenshot.", c.Screenshot())
}

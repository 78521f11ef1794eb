package assistant

import (
	"context"

	"synbi/internal/procs"
)

// Actuator interfaces. Everything outside the task store is an external
// collaborator invoked best-effort; each actuator returns a spoken outcome
// string or an error that the dispatcher turns into a short apology. Any
// field left nil disables the matching commands with an "is not available"
// response.

type FileActuator interface {
	Move(item, fromFolder, toFolder string) string
	Copy(item, fromFolder, toFolder string) string
	Delete(item, fromFolder string) string
}

type ProcessActuator interface {
	List(limit int, sortBy string) (string, error)
	FindByName(pattern string) ([]procs.Process, error)
	Kill(name string, force bool) (procs.KillResult, error)
}

// Desktop performs synthetic keystrokes, window and session actions.
type Desktop interface {
	TapKey(key string) error
	OpenApp(name string) error
	OpenURL(url string) error
	SetBrightness(level int) error
	SetVolume(level int) error
	Notify(title, message string) error
}

type SpotifyPlayer interface {
	PlaySong(ctx context.Context, song string) string
	Pause(ctx context.Context) string
	Resume(ctx context.Context) string
	NextTrack(ctx context.Context) string
	PreviousTrack(ctx context.Context) string
	Shuffle(ctx context.Context, on bool) string
	Repeat(ctx context.Context, mode string) string
	CurrentPlaying(ctx context.Context) string
}

type Camera interface {
	CapturePhoto() string
	RecordVideo(seconds int) string
	Screenshot() string
}

type WeatherService interface {
	Current(ctx context.Context, city string) (string, error)
}

type SpeedTester interface {
	Measure(ctx context.Context) (string, error)
}

type SystemReporter interface {
	BatteryStatus() string
	SystemStatus() string
}

// Messenger is the best-effort GUI messaging capability. Send composes
// launch, focus, contact search and text entry sequentially and reports
// false on the first failed step; it is fundamentally non-atomic.
type Messenger interface {
	EnsureOpen() bool
	Send(contact, body string) bool
}

type Answerer interface {
	Ask(ctx context.Context, question string) (string, error)
}

type WikiLookup interface {
	Summary(ctx context.Context, topic string) (string, error)
}

type GestureControl interface {
	Start() error
	Stop() error
	Running() bool
}

// Actuators bundles every external collaborator handed to the session.
type Actuators struct {
	Files    FileActuator
	Procs    ProcessActuator
	Desktop  Desktop
	Spotify  SpotifyPlayer
	Camera   Camera
	Weather  WeatherService
	Speed    SpeedTester
	System   SystemReporter
	WhatsApp Messenger
	Chat     Answerer
	Wiki     WikiLookup
	Gesture  GestureControl
}

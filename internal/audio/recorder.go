// Package audio captures microphone input and keeps other playback out of
// the way while the assistant is speaking.
package audio

import (
	"errors"
	"math"
	"time"

	"github.com/gordonklaus/portaudio"
)

// ErrNoAudio reports that the capture window closed without any speech.
var ErrNoAudio = errors.New("no audio recorded")

const (
	sampleRate = 16000
	frameSize  = 320 // 20ms at 16kHz
)

// Recorder captures mono 16kHz PCM from the default input device.
// Init must be called once before capturing and Close once at shutdown.
type Recorder struct {
	silenceRMS   float64
	hangover     time.Duration
	maxUtterance time.Duration
	leadIn       time.Duration
}

func NewRecorder() *Recorder {
	return &Recorder{
		silenceRMS:   0.015, // tune if needed
		hangover:     600 * time.Millisecond,
		maxUtterance: 10 * time.Second,
		leadIn:       5 * time.Second,
	}
}

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// CaptureUtterance records until the speaker goes quiet for the hangover
// window, or the utterance cap is hit. Waiting for speech to begin is
// bounded by leadIn; ErrNoAudio means nobody spoke.
func (r *Recorder) CaptureUtterance() ([]float32, error) {
	buf := make([]float32, frameSize)
	out := make([]float32, 0, sampleRate*3)

	stream, err := portaudio.OpenDefaultStream(1, 0, sampleRate, len(buf), buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	const frameDur = 20 * time.Millisecond
	maxFrames := int(r.maxUtterance / frameDur)
	leadFrames := int(r.leadIn / frameDur)
	hangFrames := int(r.hangover / frameDur)

	var (
		speaking bool
		quiet    int
	)

	for i := 0; i < maxFrames; i++ {
		if err := stream.Read(); err != nil {
			return nil, err
		}

		if frameRMS(buf) > r.silenceRMS {
			speaking = true
			quiet = 0
			out = append(out, buf...)
			continue
		}

		if !speaking {
			if i >= leadFrames {
				return nil, ErrNoAudio
			}
			continue
		}

		quiet++
		if quiet >= hangFrames {
			break
		}
		out = append(out, buf...)
	}

	if len(out) == 0 {
		return nil, ErrNoAudio
	}
	return out, nil
}

func frameRMS(f []float32) float64 {
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}

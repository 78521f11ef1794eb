// Package voice is the microphone-backed utterance source: capture with
// the recorder, transcribe with whisper, and translate the failure modes
// into the session's capture errors.
package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "log/slog"

	"synbi/internal/assistant"
	"synbi/internal/audio"
	"synbi/internal/notify"
	"synbi/pkg/stt"
)

type Source struct {
	recorder   *audio.Recorder
	stt        *stt.Transcriber
	earconPath string
	language   string
}

// New wires a Source. earconPath may be empty to skip the listening beep.
func New(recorder *audio.Recorder, transcriber *stt.Transcriber, earconPath, language string) *Source {
	if language == "" {
		language = "en"
	}
	return &Source{
		recorder:   recorder,
		stt:        transcriber,
		earconPath: earconPath,
		language:   language,
	}
}

// Capture records one utterance and returns its transcript.
func (s *Source) Capture(ctx context.Context) (string, error) {
	if s.earconPath != "" {
		if err := notify.Beep(s.earconPath); err != nil {
			log.Debug("Earcon playback failed", "err", err)
		}
	}

	pcm, err := s.recorder.CaptureUtterance()
	if errors.Is(err, audio.ErrNoAudio) {
		return "", assistant.ErrNoSpeech
	}
	if err != nil {
		log.Error("Microphone capture failed", "err", err)
		return "", fmt.Errorf("%w: %s", assistant.ErrChannelDown, err)
	}

	tctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	res, err := s.stt.TranscribePCM(tctx, pcm, stt.Options{Language: s.language})
	if err != nil {
		log.Error("Transcription failed", "err", err)
		return "", fmt.Errorf("%w: %s", assistant.ErrChannelDown, err)
	}

	text := strings.TrimSpace(res.Text)
	if text == "" || isNonSpeech(text) {
		return "", assistant.ErrUnintelligible
	}

	log.Debug("Transcribed", "text", text, "lang", res.Language)
	return text, nil
}

// isNonSpeech filters whisper's annotations for music and silence, which
// come back wrapped in brackets or parens.
func isNonSpeech(text string) bool {
	t := strings.TrimSpace(text)
	return (strings.HasPrefix(t, "[") && strings.HasSuffix(t, "]")) ||
		(strings.HasPrefix(t, "(") && strings.HasSuffix(t, ")"))
}

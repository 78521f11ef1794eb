// Package tts voices responses through espeak-ng, ducking other audio
// streams for the duration of each sentence.
package tts

/*
#cgo LDFLAGS: -lespeak-ng
#include <stdlib.h>
#include <espeak-ng/speak_lib.h>

int
espeak_say(const char *text)
{
	if (!text)
	{ return -1; }

	espeak_Initialize(AUDIO_OUTPUT_SYNCH_PLAYBACK, 500, NULL, 0);
	espeak_VOICE specs = { .languages = "en" };
	espeak_SetVoiceByProperties(&specs);

	espeak_Synth(text, 500, 0, 0, 0, espeakCHARS_AUTO, NULL, NULL);
	espeak_Synchronize();
	espeak_Terminate();

	return 0;
}
*/
import "C"

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unsafe"

	log "log/slog"

	"synbi/internal/audio"
)

// Speaker serializes espeak calls; the engine is not reentrant.
type Speaker struct {
	mu     sync.Mutex
	ducker *audio.Ducker
}

// NewSpeaker builds a Speaker. A nil ducker disables ducking.
func NewSpeaker(ducker *audio.Ducker) *Speaker {
	return &Speaker{ducker: ducker}
}

// Say voices text and blocks until playback finishes.
func (s *Speaker) Say(text string) error {
	if text == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ducker != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := s.ducker.Duck(ctx, 0.3); err != nil {
			log.Debug("Ducking failed", "err", err)
		}
		cancel()

		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := s.ducker.Unduck(ctx); err != nil {
				log.Debug("Unducking failed", "err", err)
			}
		}()
	}

	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))

	if rc := C.espeak_say(ctext); rc != 0 {
		return fmt.Errorf("espeak_say failed: %d", int(rc))
	}
	return nil
}

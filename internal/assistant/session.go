package assistant

import (
	"context"
	"errors"
	log "log/slog"
	"strings"

	"synbi/internal/intent"
	"synbi/internal/tasks"
)

type State int

const (
	StateIdle State = iota
	StateListening
	StateAwaitingParameter
	StateAwaitingConfirmation
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateAwaitingParameter:
		return "awaiting parameter"
	case StateAwaitingConfirmation:
		return "awaiting confirmation"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

const captureRetries = 3

// Session owns the listen, match, dispatch, respond cycle. It holds only
// ephemeral state; the task store is the single durable collaborator and
// is injected, never global.
type Session struct {
	source  UtteranceSource
	sink    ResponseSink
	matcher *intent.Matcher
	store   *tasks.Store
	act     Actuators

	state State
}

func NewSession(source UtteranceSource, sink ResponseSink, store *tasks.Store, act Actuators) *Session {
	return &Session{
		source:  source,
		sink:    sink,
		matcher: intent.NewMatcher(),
		store:   store,
		act:     act,
		state:   StateListening,
	}
}

func (s *Session) State() State { return s.state }

func (s *Session) setState(st State) { s.state = st }

// Run drives the command loop until an exit intent, a sleep intent, or the
// utterance source closing. A sleep intent parks the session in the idle
// state; the caller decides when to run it again (the wake trigger lives
// outside this loop).
func (s *Session) Run(ctx context.Context) error {
	s.setState(StateListening)
	s.say("Synbi is now active.")

	for {
		if ctx.Err() != nil {
			s.setState(StateStopped)
			return ctx.Err()
		}

		utterance, err := s.capture(ctx)
		if errors.Is(err, ErrSourceClosed) {
			s.setState(StateStopped)
			return nil
		}
		if utterance == "" {
			continue
		}

		in := s.matcher.Match(utterance)

		switch in.Kind {
		case intent.Sleep:
			s.say("Okay, going to sleep. Say 'Hey Synbi' to wake me up.")
			s.setState(StateIdle)
			return nil
		case intent.Exit:
			s.say("Goodbye! See you later.")
			s.setState(StateStopped)
			return nil
		}

		s.dispatch(ctx, in)
	}
}

// HandleUtterance matches and dispatches a single utterance. Used by the
// one-shot trigger path and the bridge, where the loop lives elsewhere.
// Reports whether the session should keep going.
func (s *Session) HandleUtterance(ctx context.Context, utterance string) bool {
	in := s.matcher.Match(utterance)

	switch in.Kind {
	case intent.Sleep:
		s.say("Okay, going to sleep. Say 'Hey Synbi' to wake me up.")
		s.setState(StateIdle)
		return false
	case intent.Exit:
		s.say("Goodbye! See you later.")
		s.setState(StateStopped)
		return false
	}

	s.dispatch(ctx, in)
	return true
}

// WaitForWake consumes utterances until a wake phrase arrives, so a parked
// session is not restarted by ordinary chatter. Returns false when the
// source closes or the context ends first.
func WaitForWake(ctx context.Context, source UtteranceSource) bool {
	for {
		if ctx.Err() != nil {
			return false
		}
		text, err := source.Capture(ctx)
		switch {
		case errors.Is(err, ErrSourceClosed):
			return false
		case err != nil:
			continue
		case intent.IsWake(text):
			return true
		}
	}
}

// capture reads the next utterance, retrying transient failures a bounded
// number of times. A dead channel ends the attempt with an empty result;
// the loop keeps running.
func (s *Session) capture(ctx context.Context) (string, error) {
	for attempt := 0; attempt < captureRetries; attempt++ {
		text, err := s.source.Capture(ctx)
		switch {
		case err == nil:
			return strings.TrimSpace(strings.ToLower(text)), nil
		case errors.Is(err, ErrNoSpeech):
			log.Debug("Listening timed out")
		case errors.Is(err, ErrUnintelligible):
			s.say("Sorry, I didn't catch that. Please say again.")
		case errors.Is(err, ErrChannelDown):
			s.say("Sorry, I am unable to connect to the speech service.")
			return "", nil
		case errors.Is(err, ErrSourceClosed):
			return "", err
		default:
			log.Error("Capture failed", "err", err)
			s.say("Sorry, something went wrong. Please try again.")
		}
	}
	return "", nil
}

// followUp asks for a missing parameter and captures exactly one reply.
// If that also yields nothing the intent is abandoned by the caller; there
// is no unbounded re-prompt loop.
func (s *Session) followUp(ctx context.Context, prompt string) string {
	s.setState(StateAwaitingParameter)
	defer s.setState(StateListening)

	s.say(prompt)
	text, err := s.capture(ctx)
	if err != nil {
		return ""
	}
	return text
}

func (s *Session) say(text string) {
	if text == "" {
		return
	}
	if err := s.sink.Say(text); err != nil {
		log.Error("Failed to voice out", "err", err)
	}
}

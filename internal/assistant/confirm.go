package assistant

import (
	"context"
	"strings"
)

// Destructive operations must hear an explicit affirmative before running.
// Anything that is neither a yes nor a no token counts against a small
// clarification budget, after which the answer defaults to no.

var affirmativeTokens = map[string]struct{}{
	"yes": {}, "yeah": {}, "yep": {}, "sure": {}, "okay": {}, "ok": {}, "confirm": {},
}

var negativeTokens = map[string]struct{}{
	"no": {}, "nope": {}, "nah": {}, "cancel": {}, "stop": {},
}

const confirmAttempts = 3

// confirm asks the question and listens for a yes/no token. The fail-safe
// default is always false.
func (s *Session) confirm(ctx context.Context, question string) bool {
	s.setState(StateAwaitingConfirmation)
	defer s.setState(StateListening)

	s.say(question)

	for attempt := 0; attempt < confirmAttempts; attempt++ {
		reply, err := s.source.Capture(ctx)
		if err != nil {
			continue
		}

		reply = strings.TrimSpace(strings.ToLower(reply))
		if _, ok := affirmativeTokens[reply]; ok {
			return true
		}
		if _, ok := negativeTokens[reply]; ok {
			return false
		}

		s.say("Please say 'yes' or 'no'.")
	}

	s.say("No valid confirmation received. Cancelling operation.")
	return false
}

package intent

import (
	"regexp"
	"strings"
)

var (
	moveRe      = regexp.MustCompile(`move (.+?) from (.+?) to (.+)`)
	copyRe      = regexp.MustCompile(`copy (.+?) from (.+?) to (.+)`)
	deleteRe    = regexp.MustCompile(`delete (.+?) from (.+)`)
	weatherRe   = regexp.MustCompile(`(?:weather|temperature|forecast) in ([a-z\s]+)`)
	isRunningRe = regexp.MustCompile(`is (.+?) running`)
)

type rule struct {
	kind  Kind
	match func(u string) bool
	build func(u string) Intent
}

// Matcher holds the ordered trigger table. Rules are evaluated top to
// bottom and the first hit wins; specific phrases are declared before the
// generic ones that would otherwise starve them ("open whatsapp" before
// "open", "new task" before anything matching bare "task").
type Matcher struct {
	rules []rule
}

func NewMatcher() *Matcher {
	return &Matcher{rules: buildRules()}
}

// Match resolves an utterance to an Intent. Unmatched utterances yield
// Unknown; a matched trigger with an unparseable parameter template yields
// Malformed with a clarification sentence.
func (m *Matcher) Match(utterance string) Intent {
	u := strings.ToLower(strings.TrimSpace(utterance))
	if u == "" {
		return Intent{Kind: Unknown}
	}

	for _, r := range m.rules {
		if r.match(u) {
			if r.build != nil {
				return r.build(u)
			}
			return Intent{Kind: r.kind}
		}
	}
	return Intent{Kind: Unknown}
}

func buildRules() []rule {
	return []rule{
		{kind: Sleep, match: anyOf("go to sleep", "wait")},
		{kind: Greeting, match: anyOf("hello")},

		// Spotify first so "play spotify" never falls through to the
		// generic media rule.
		{kind: SpotifyPlay, match: anyOf("play spotify"), build: func(u string) Intent {
			return withParams(SpotifyPlay, "song", after(u, "play spotify"))
		}},
		{kind: SpotifyPause, match: anyOf("pause spotify", "stop spotify")},
		{kind: SpotifyResume, match: anyOf("resume spotify")},
		{kind: SpotifyNext, match: anyOf("next song")},
		{kind: SpotifyPrevious, match: anyOf("previous song")},
		{kind: SpotifyShuffle, match: anyOf("shuffle on"), build: constParam(SpotifyShuffle, "state", "on")},
		{kind: SpotifyShuffle, match: anyOf("shuffle off"), build: constParam(SpotifyShuffle, "state", "off")},
		{kind: SpotifyRepeat, match: anyOf("repeat song"), build: constParam(SpotifyRepeat, "mode", "track")},
		{kind: SpotifyRepeat, match: anyOf("repeat playlist"), build: constParam(SpotifyRepeat, "mode", "context")},
		{kind: SpotifyRepeat, match: anyOf("repeat off"), build: constParam(SpotifyRepeat, "mode", "off")},
		{kind: SpotifyStatus, match: anyOf("spotify status")},

		// Video transport controls before the generic play rule.
		{kind: VideoPause, match: anyOf("pause youtube", "pause video")},
		{kind: VideoResume, match: anyOf("resume youtube", "resume video")},
		{kind: VideoNext, match: anyOf("next youtube", "next video")},
		{kind: VideoPrevious, match: anyOf("previous youtube", "previous video")},
		{kind: VideoMute, match: anyOf("mute youtube", "mute video")},
		{kind: VideoFullscreen, match: anyOf("fullscreen youtube", "fullscreen video")},
		{kind: MediaPlay, match: func(u string) bool {
			return strings.Contains(u, "play") && anyOf("youtube", "video", "song", "music")(u)
		}, build: func(u string) Intent {
			return withParams(MediaPlay, "query", strip(u, "play", "youtube", "video", "song", "music"))
		}},

		{kind: CameraPhoto, match: anyOf("take picture", "take a photo")},
		{kind: CameraVideo, match: anyOf("record video")},
		{kind: Screenshot, match: anyOf("take screenshot", "screenshot")},

		{kind: NetSpeed, match: anyOf("internet speed", "network speed", "check internet")},
		{kind: Battery, match: anyOf("battery status", "battery level", "check battery")},
		{kind: SystemInfo, match: anyOf("system info", "system status", "check system")},

		{kind: Weather, match: anyOf("weather", "temperature", "forecast"), build: func(u string) Intent {
			if m := weatherRe.FindStringSubmatch(u); m != nil {
				return withParams(Weather, "city", strings.TrimSpace(m[1]))
			}
			return Intent{Kind: Weather, Params: map[string]string{}}
		}},

		{kind: Brightness, match: anyOf("set brightness")},
		{kind: Volume, match: anyOf("set volume")},
		{kind: SayTime, match: anyOf("say time")},
		{kind: SayDate, match: anyOf("say date")},

		// Task rules. "new task"/"add task" are declared before every other
		// phrase containing "task" so the add verb is never shadowed.
		{kind: TaskAdd, match: anyOf("new task", "add task"), build: func(u string) Intent {
			in := withParams(TaskAdd, "text", after(u, "new task", "add task"))
			in.Params["priority"] = priorityOf(u)
			return in
		}},
		{kind: TaskDelete, match: anyOf("delete task", "remove task"), build: func(u string) Intent {
			return withParams(TaskDelete, "identifier", after(u, "delete task", "remove task"))
		}},
		{kind: TaskComplete, match: anyOf("complete task", "mark task complete", "finish task"), build: func(u string) Intent {
			return withParams(TaskComplete, "identifier", after(u, "mark task complete", "complete task", "finish task"))
		}},
		{kind: TaskList, match: anyOf("speak task", "read tasks", "list tasks")},
		{kind: TaskSummary, match: anyOf("task summary", "task status")},
		{kind: TaskShow, match: anyOf("show work", "show tasks")},
		{kind: TaskClear, match: anyOf("clear completed", "clear finished tasks")},
		{kind: TaskSearch, match: anyOf("search task", "find task"), build: func(u string) Intent {
			return withParams(TaskSearch, "term", after(u, "search task", "find task"))
		}},

		{kind: FileMove, match: allOf("move", "from", "to"), build: templated(FileMove, moveRe,
			[]string{"item", "source", "destination"},
			"I didn't understand your move request. Please say 'move filename from folder to folder'.")},
		{kind: FileCopy, match: allOf("copy", "from", "to"), build: templated(FileCopy, copyRe,
			[]string{"item", "source", "destination"},
			"I couldn't understand your copy request. Please say 'copy filename from folder to folder'.")},
		{kind: FileDelete, match: allOf("delete", "from"), build: templated(FileDelete, deleteRe,
			[]string{"item", "source"},
			"Could not understand which item to delete. Please say 'delete filename from folder'.")},

		// WhatsApp before the bare "open" rule, which would starve it.
		{kind: WhatsAppOpen, match: anyOf("open whatsapp", "launch whatsapp", "start whatsapp")},
		{kind: WhatsAppSend, match: anyOf("send whatsapp", "whatsapp message", "send message")},

		{kind: GestureStart, match: anyOf("start gesture control", "enable gesture control", "begin gesture control")},
		{kind: GestureStop, match: anyOf("stop gesture control", "disable gesture control", "end gesture control")},

		{kind: ProcList, match: anyOf("list processes", "show processes", "running processes")},

		// "is X running" must sit below ProcList so "running processes"
		// keeps going to the table.
		{kind: ProcFind, match: func(u string) bool {
			return strings.Contains(u, "find process") || isRunningRe.MatchString(u)
		}, build: func(u string) Intent {
			if m := isRunningRe.FindStringSubmatch(u); m != nil {
				return withParams(ProcFind, "name", strings.TrimSpace(m[1]))
			}
			return withParams(ProcFind, "name", after(u, "find process"))
		}},

		{kind: WikiSearch, match: anyOf("wikipedia"), build: func(u string) Intent {
			return withParams(WikiSearch, "query", strip(u, "search wikipedia", "wikipedia", "synbi"))
		}},
		{kind: GoogleSearch, match: anyOf("search google"), build: func(u string) Intent {
			return withParams(GoogleSearch, "query", strip(u, "search google", "synbi"))
		}},
		{kind: YouTubeSearch, match: anyOf("search youtube"), build: func(u string) Intent {
			return withParams(YouTubeSearch, "query", strip(u, "search youtube", "synbi"))
		}},

		{kind: OpenApp, match: anyOf("open"), build: func(u string) Intent {
			return withParams(OpenApp, "name", after(u, "open"))
		}},

		// "close"/"kill" are single words that occur inside longer phrases,
		// so this rule stays below everything that could contain them.
		{kind: ProcKill, match: anyOf("close", "kill"), build: func(u string) Intent {
			return withParams(ProcKill, "name", after(u, "close", "kill"))
		}},

		// Late, like the original chain, so a filename such as "exit.txt"
		// in a file command is not swallowed.
		{kind: Exit, match: anyOf("exit", "quit")},

		// Bare "ask" is a substring of "task"; every task rule above wins
		// first, as it must.
		{kind: Ask, match: anyOf("ask"), build: func(u string) Intent {
			return withParams(Ask, "question", after(u, "ask"))
		}},
	}
}

var wakePhrases = []string{"hey synbi", "wake up", "synbi wake"}

// IsWake reports whether the utterance is a wake phrase. Wake sits outside
// the rule table because it only matters while a session is parked idle.
func IsWake(utterance string) bool {
	u := strings.ToLower(strings.TrimSpace(utterance))
	for _, p := range wakePhrases {
		if strings.Contains(u, p) {
			return true
		}
	}
	return false
}

// priorityOf picks a priority from qualifier words left in the utterance.
func priorityOf(u string) string {
	switch {
	// "not urgent" contains "urgent", so the low branch goes first.
	case anyOf("low priority", "not urgent")(u):
		return "low"
	case anyOf("high priority", "urgent", "important")(u):
		return "high"
	default:
		return "medium"
	}
}

func anyOf(phrases ...string) func(string) bool {
	return func(u string) bool {
		for _, p := range phrases {
			if strings.Contains(u, p) {
				return true
			}
		}
		return false
	}
}

func allOf(phrases ...string) func(string) bool {
	return func(u string) bool {
		for _, p := range phrases {
			if !strings.Contains(u, p) {
				return false
			}
		}
		return true
	}
}

// strip removes every occurrence of the given phrases and trims the rest.
func strip(u string, phrases ...string) string {
	for _, p := range phrases {
		u = strings.ReplaceAll(u, p, "")
	}
	return strings.Join(strings.Fields(u), " ")
}

// after returns what follows the earliest trigger occurrence, with any
// further trigger occurrences removed. "add a new task buy milk" with
// triggers ("new task", "add task") yields "buy milk".
func after(u string, phrases ...string) string {
	start, end := -1, 0
	for _, p := range phrases {
		if i := strings.Index(u, p); i >= 0 && (start == -1 || i < start) {
			start, end = i, i+len(p)
		}
	}
	if start < 0 {
		return ""
	}
	rest := u[end:]
	for _, p := range phrases {
		rest = strings.ReplaceAll(rest, p, "")
	}
	return strings.Join(strings.Fields(rest), " ")
}

func withParams(k Kind, pairs ...string) Intent {
	params := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		params[pairs[i]] = pairs[i+1]
	}
	return Intent{Kind: k, Params: params}
}

func constParam(k Kind, name, value string) func(string) Intent {
	return func(string) Intent { return withParams(k, name, value) }
}

// templated extracts capture groups into named slots, or reports a
// malformed request when the trigger matched but the template did not.
func templated(k Kind, re *regexp.Regexp, names []string, clarify string) func(string) Intent {
	return func(u string) Intent {
		m := re.FindStringSubmatch(u)
		if m == nil {
			return Intent{Kind: Malformed, Clarify: clarify}
		}
		in := Intent{Kind: k, Params: make(map[string]string, len(names))}
		for i, name := range names {
			in.Params[name] = strings.TrimSpace(m[i+1])
		}
		return in
	}
}

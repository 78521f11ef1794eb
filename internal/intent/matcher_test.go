package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchTable(t *testing.T) {
	m := NewMatcher()

	cases := []struct {
		utterance string
		kind      Kind
		params    map[string]string
	}{
		{"hello there", Greeting, nil},
		{"exit", Exit, nil},
		{"quit now", Exit, nil},
		{"okay wait for me", Sleep, nil},

		{"play spotify blinding lights", SpotifyPlay, map[string]string{"song": "blinding lights"}},
		{"pause spotify", SpotifyPause, nil},
		{"stop spotify", SpotifyPause, nil},
		{"next song please", SpotifyNext, nil},
		{"shuffle on", SpotifyShuffle, map[string]string{"state": "on"}},
		{"repeat playlist", SpotifyRepeat, map[string]string{"mode": "context"}},
		{"spotify status", SpotifyStatus, nil},

		{"pause video", VideoPause, nil},
		{"fullscreen youtube", VideoFullscreen, nil},
		{"play despacito on youtube", MediaPlay, map[string]string{"query": "despacito on"}},

		{"take a photo", CameraPhoto, nil},
		{"record video", CameraVideo, nil},
		{"take screenshot", Screenshot, nil},

		{"check internet", NetSpeed, nil},
		{"battery level", Battery, nil},
		{"system status", SystemInfo, nil},
		{"say time", SayTime, nil},
		{"say date", SayDate, nil},

		{"weather in new delhi please", Weather, map[string]string{"city": "new delhi please"}},

		{"delete task 2", TaskDelete, map[string]string{"identifier": "2"}},
		{"remove task call mom", TaskDelete, map[string]string{"identifier": "call mom"}},
		{"finish task 1", TaskComplete, map[string]string{"identifier": "1"}},
		{"list tasks", TaskList, nil},
		{"task summary", TaskSummary, nil},
		{"show tasks", TaskShow, nil},
		{"clear completed tasks", TaskClear, nil},
		{"search task milk", TaskSearch, map[string]string{"term": "milk"}},

		{"move report.docx from downloads to documents", FileMove,
			map[string]string{"item": "report.docx", "source": "downloads", "destination": "documents"}},
		{"copy notes.txt from desktop to documents", FileCopy,
			map[string]string{"item": "notes.txt", "source": "desktop", "destination": "documents"}},
		{"delete report.docx from downloads", FileDelete,
			map[string]string{"item": "report.docx", "source": "downloads"}},

		{"send whatsapp", WhatsAppSend, nil},
		{"list processes", ProcList, nil},
		{"close chrome", ProcKill, map[string]string{"name": "chrome"}},
		{"kill spotify", ProcKill, map[string]string{"name": "spotify"}},
		{"start gesture control", GestureStart, nil},
		{"stop gesture control", GestureStop, nil},

		{"search wikipedia alan turing", WikiSearch, map[string]string{"query": "alan turing"}},
		{"search google best pizza", GoogleSearch, map[string]string{"query": "best pizza"}},
		{"search youtube lo-fi beats", YouTubeSearch, map[string]string{"query": "lo-fi beats"}},
		{"open calculator", OpenApp, map[string]string{"name": "calculator"}},

		{"ask what is the tallest mountain", Ask, map[string]string{"question": "what is the tallest mountain"}},

		{"blorp fizzle", Unknown, nil},
		{"", Unknown, nil},
	}

	for _, tc := range cases {
		got := m.Match(tc.utterance)
		assert.Equal(t, tc.kind, got.Kind, "utterance: %q", tc.utterance)
		for name, want := range tc.params {
			assert.Equal(t, want, got.Param(name), "utterance: %q param %q", tc.utterance, name)
		}
	}
}

// Trigger order is part of the contract: "new task" must win over anything
// else a task-flavoured utterance could drift into, and the remainder after
// stripping the trigger is the task text.
func TestAddTaskTriggerOrder(t *testing.T) {
	m := NewMatcher()

	got := m.Match("add a new task buy milk")
	assert.Equal(t, TaskAdd, got.Kind)
	assert.Equal(t, "buy milk", got.Param("text"))
	assert.Equal(t, "medium", got.Param("priority"))
}

func TestAddTaskPriorityWords(t *testing.T) {
	m := NewMatcher()

	assert.Equal(t, "high", m.Match("add task pay rent urgent").Param("priority"))
	assert.Equal(t, "high", m.Match("new task call the bank high priority").Param("priority"))
	assert.Equal(t, "low", m.Match("add task water plants not urgent").Param("priority"))
	assert.Equal(t, "low", m.Match("add task tidy desk low priority").Param("priority"))
	assert.Equal(t, "medium", m.Match("add task buy milk").Param("priority"))
}

func TestProcFind(t *testing.T) {
	m := NewMatcher()

	in := m.Match("is chrome running")
	assert.Equal(t, ProcFind, in.Kind)
	assert.Equal(t, "chrome", in.Param("name"))

	in = m.Match("find process telegram")
	assert.Equal(t, ProcFind, in.Kind)
	assert.Equal(t, "telegram", in.Param("name"))

	// the table request keeps winning over the lookup phrasing
	assert.Equal(t, ProcList, m.Match("show me the running processes").Kind)
}

// Regression pairs for overlapping triggers: the narrower phrase must not
// be starved by the generic one declared later.
func TestOverlappingTriggerPairs(t *testing.T) {
	m := NewMatcher()

	// "open whatsapp" contains "open".
	assert.Equal(t, WhatsAppOpen, m.Match("open whatsapp").Kind)
	assert.Equal(t, OpenApp, m.Match("open notepad").Kind)

	// "play spotify" contains "play" + "music"-ish words.
	assert.Equal(t, SpotifyPlay, m.Match("play spotify some song").Kind)
	assert.Equal(t, MediaPlay, m.Match("play some music").Kind)

	// "delete task" contains "delete"; the file rule needs "from" too.
	assert.Equal(t, TaskDelete, m.Match("delete task 3").Kind)
	assert.Equal(t, FileDelete, m.Match("delete old.zip from downloads").Kind)

	// "next song" vs the generic media play rule.
	assert.Equal(t, SpotifyNext, m.Match("next song").Kind)

	// "ask" is a substring of "task"; task rules are declared first.
	assert.Equal(t, TaskAdd, m.Match("add task buy milk").Kind)
	assert.Equal(t, TaskSummary, m.Match("task status").Kind)
	assert.Equal(t, Ask, m.Match("ask how tall is everest").Kind)

	// "stop gesture control" contains "stop"; gesture rules come before
	// the close/kill rule would ever see them.
	assert.Equal(t, GestureStop, m.Match("stop gesture control").Kind)
}

func TestMalformedTemplates(t *testing.T) {
	m := NewMatcher()

	got := m.Match("move from to")
	assert.Equal(t, Malformed, got.Kind)
	assert.NotEmpty(t, got.Clarify)

	got = m.Match("copy from desktop to documents") // nothing between the verb and "from"
	assert.Equal(t, Malformed, got.Kind)
}

func TestWeatherWithoutCity(t *testing.T) {
	m := NewMatcher()

	got := m.Match("what is the weather like")
	assert.Equal(t, Weather, got.Kind)
	assert.Empty(t, got.Param("city"))

	got = m.Match("temperature in tokyo")
	assert.Equal(t, Weather, got.Kind)
	assert.Equal(t, "tokyo", got.Param("city"))
}

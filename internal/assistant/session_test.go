package assistant

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synbi/internal/procs"
	"synbi/internal/tasks"
)

type step struct {
	text string
	err  error
}

type scriptedSource struct {
	steps []step
}

func (s *scriptedSource) Capture(context.Context) (string, error) {
	if len(s.steps) == 0 {
		return "", ErrSourceClosed
	}
	next := s.steps[0]
	s.steps = s.steps[1:]
	return next.text, next.err
}

type recordingSink struct {
	lines []string
}

func (r *recordingSink) Say(text string) error {
	r.lines = append(r.lines, text)
	return nil
}

func (r *recordingSink) contains(substr string) bool {
	for _, l := range r.lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

type fakeFiles struct {
	deletes []string
	moves   []string
}

func (f *fakeFiles) Move(item, from, to string) string {
	f.moves = append(f.moves, item+"|"+from+"|"+to)
	return "Successfully moved '" + item + "'."
}

func (f *fakeFiles) Copy(item, from, to string) string {
	return "Successfully copied '" + item + "'."
}

func (f *fakeFiles) Delete(item, from string) string {
	f.deletes = append(f.deletes, item+"|"+from)
	return "Successfully deleted '" + item + "' from '" + from + "'."
}

type fakeDesktop struct {
	opened  []string
	openErr error
}

func (f *fakeDesktop) TapKey(key string) error { return nil }

func (f *fakeDesktop) OpenApp(name string) error {
	f.opened = append(f.opened, name)
	return f.openErr
}

func (f *fakeDesktop) OpenURL(url string) error { return nil }

func (f *fakeDesktop) SetBrightness(level int) error { return nil }

func (f *fakeDesktop) SetVolume(level int) error { return nil }

func (f *fakeDesktop) Notify(title, message string) error { return nil }

type fakeProcs struct {
	kills  []string
	result procs.KillResult
	found  []procs.Process
}

func (f *fakeProcs) List(limit int, sortBy string) (string, error) {
	return "PID NAME\n", nil
}

func (f *fakeProcs) FindByName(pattern string) ([]procs.Process, error) {
	return f.found, nil
}

func (f *fakeProcs) Kill(name string, force bool) (procs.KillResult, error) {
	f.kills = append(f.kills, name)
	return f.result, nil
}

func newTestSession(t *testing.T, utterances []step, act Actuators) (*Session, *recordingSink, *tasks.Store) {
	t.Helper()
	store, err := tasks.Open(filepath.Join(t.TempDir(), "tasks.json"), tasks.Fail)
	require.NoError(t, err)
	sink := &recordingSink{}
	s := NewSession(&scriptedSource{steps: utterances}, sink, store, act)
	return s, sink, store
}

func say(texts ...string) []step {
	steps := make([]step, 0, len(texts))
	for _, t := range texts {
		steps = append(steps, step{text: t})
	}
	return steps
}

func TestRunAddTaskAndList(t *testing.T) {
	s, sink, store := newTestSession(t, say(
		"add a new task buy milk",
		"list tasks",
		"exit",
	), Actuators{})

	require.NoError(t, s.Run(context.Background()))

	assert.True(t, sink.contains("Task added successfully: buy milk"), "said: %v", sink.lines)
	assert.True(t, sink.contains("Your pending tasks are: 1. buy milk"))
	assert.Equal(t, StateStopped, s.State())

	pending := store.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "buy milk", pending[0].Text)
	assert.Equal(t, tasks.PriorityMedium, pending[0].Priority)
}

func TestAddTaskFollowUpAbandonedWhenSilent(t *testing.T) {
	s, sink, store := newTestSession(t, say(
		"add task",
		"", // follow-up yields nothing: abandon, no retry loop
		"exit",
	), Actuators{})

	require.NoError(t, s.Run(context.Background()))

	assert.True(t, sink.contains("What task would you like to add?"))
	assert.True(t, sink.contains("No task specified."))
	assert.Empty(t, store.Pending())
}

func TestDeleteIdentifierFollowUp(t *testing.T) {
	s, sink, store := newTestSession(t, say(
		"new task call mom",
		"delete task",
		"call",
		"exit",
	), Actuators{})

	require.NoError(t, s.Run(context.Background()))

	assert.True(t, sink.contains("Which task would you like to delete?"))
	assert.True(t, sink.contains("Task deleted: call mom"))
	assert.Empty(t, store.Pending())
}

func TestNotFoundMessages(t *testing.T) {
	s, sink, _ := newTestSession(t, say(
		"new task buy milk",
		"delete task 42",
		"complete task laundry",
		"exit",
	), Actuators{})

	require.NoError(t, s.Run(context.Background()))

	assert.True(t, sink.contains("Task not found with that ID."))
	assert.True(t, sink.contains("Task not found with that text."))
}

func TestFileDeleteConfirmationDeclined(t *testing.T) {
	files := &fakeFiles{}
	s, sink, _ := newTestSession(t, say(
		"delete report.docx from downloads",
		"no",
		"exit",
	), Actuators{Files: files})

	require.NoError(t, s.Run(context.Background()))

	assert.Empty(t, files.deletes, "declined delete must never reach the actuator")
	assert.True(t, sink.contains("Delete operation cancelled."))
}

func TestFileDeleteConfirmationAccepted(t *testing.T) {
	files := &fakeFiles{}
	s, sink, _ := newTestSession(t, say(
		"delete report.docx from downloads",
		"yes",
		"exit",
	), Actuators{Files: files})

	require.NoError(t, s.Run(context.Background()))

	require.Len(t, files.deletes, 1, "confirmed delete reaches the actuator exactly once")
	assert.Equal(t, "report.docx|downloads", files.deletes[0])
	assert.True(t, sink.contains("Successfully deleted"))
}

func TestConfirmationDefaultsToDecline(t *testing.T) {
	files := &fakeFiles{}
	s, sink, _ := newTestSession(t, say(
		"delete report.docx from downloads",
		"maybe",
		"hmm",
		"perhaps",
		"exit",
	), Actuators{Files: files})

	require.NoError(t, s.Run(context.Background()))

	assert.Empty(t, files.deletes)
	assert.True(t, sink.contains("No valid confirmation received. Cancelling operation."))
	assert.True(t, sink.contains("Delete operation cancelled."))
}

func TestMoveDispatchesToFileActuator(t *testing.T) {
	files := &fakeFiles{}
	s, sink, _ := newTestSession(t, say(
		"move report.docx from downloads to documents",
		"exit",
	), Actuators{Files: files})

	require.NoError(t, s.Run(context.Background()))

	require.Len(t, files.moves, 1)
	assert.Equal(t, "report.docx|downloads|documents", files.moves[0])
	assert.True(t, sink.contains("Moving report.docx from downloads to documents"))
}

func TestMalformedMoveSpeaksClarification(t *testing.T) {
	files := &fakeFiles{}
	s, sink, _ := newTestSession(t, say(
		"move from to",
		"exit",
	), Actuators{Files: files})

	require.NoError(t, s.Run(context.Background()))

	assert.Empty(t, files.moves)
	assert.True(t, sink.contains("didn't understand your move request"))
}

func TestOpenAppSpeaksOutcome(t *testing.T) {
	desk := &fakeDesktop{}
	s, sink, _ := newTestSession(t, say(
		"open notepad",
		"exit",
	), Actuators{Desktop: desk})

	require.NoError(t, s.Run(context.Background()))
	require.Equal(t, []string{"notepad"}, desk.opened)
	assert.True(t, sink.contains("Opening notepad."))

	desk = &fakeDesktop{openErr: errors.New("launch failed")}
	s, sink, _ = newTestSession(t, say(
		"open notepad",
		"exit",
	), Actuators{Desktop: desk})

	require.NoError(t, s.Run(context.Background()))
	assert.True(t, sink.contains("Sorry, I couldn't open notepad."))
}

func TestOpenAppWithoutNameAsksForOne(t *testing.T) {
	desk := &fakeDesktop{}
	s, sink, _ := newTestSession(t, say(
		"open",
		"exit",
	), Actuators{Desktop: desk})

	require.NoError(t, s.Run(context.Background()))
	assert.Empty(t, desk.opened)
	assert.True(t, sink.contains("Please tell me which application to open."))
}

func TestWaitForWakeIgnoresChatter(t *testing.T) {
	src := &scriptedSource{steps: []step{
		{text: "what time is it"},
		{err: ErrUnintelligible},
		{text: "hey synbi"},
	}}

	assert.True(t, WaitForWake(context.Background(), src))
}

func TestWaitForWakeStopsOnClosedSource(t *testing.T) {
	src := &scriptedSource{steps: []step{
		{text: "still not a wake phrase"},
	}}

	assert.False(t, WaitForWake(context.Background(), src))
}

func TestKillSpeaksPartialFailure(t *testing.T) {
	pm := &fakeProcs{result: procs.KillResult{
		Matched:  3,
		Killed:   2,
		Failures: []string{"chrome (pid 9): operation not permitted"},
	}}
	s, sink, _ := newTestSession(t, say(
		"close chrome",
		"exit",
	), Actuators{Procs: pm})

	require.NoError(t, s.Run(context.Background()))

	require.Equal(t, []string{"chrome"}, pm.kills)
	assert.True(t, sink.contains("chrome is closed. (Some processes couldn't be closed)"))
}

func TestFindProcessSpeaksStatus(t *testing.T) {
	pm := &fakeProcs{found: []procs.Process{
		{PID: 101, Name: "chrome"},
		{PID: 102, Name: "chrome"},
	}}
	s, sink, _ := newTestSession(t, say(
		"is chrome running",
		"exit",
	), Actuators{Procs: pm})

	require.NoError(t, s.Run(context.Background()))
	assert.True(t, sink.contains("Yes, chrome is running with 2 processes."))

	pm.found = nil
	s, sink, _ = newTestSession(t, say(
		"is gimp running",
		"exit",
	), Actuators{Procs: pm})

	require.NoError(t, s.Run(context.Background()))
	assert.True(t, sink.contains("gimp is not running."))
}

func TestUnknownUtteranceFallback(t *testing.T) {
	s, sink, _ := newTestSession(t, say("blorp fizzle", "exit"), Actuators{})

	require.NoError(t, s.Run(context.Background()))
	assert.True(t, sink.contains("I didn't understand that. Please try again."))
}

func TestRetryOnUnintelligibleThenSucceed(t *testing.T) {
	steps := []step{
		{err: ErrUnintelligible},
		{err: ErrUnintelligible},
		{text: "hello"},
		{text: "exit"},
	}
	s, sink, _ := newTestSession(t, steps, Actuators{})

	require.NoError(t, s.Run(context.Background()))

	assert.True(t, sink.contains("Sorry, I didn't catch that. Please say again."))
	assert.True(t, sink.contains("Hello, I am Synbi, your personal assistant."))
}

func TestChannelDownEndsAttemptButLoopContinues(t *testing.T) {
	steps := []step{
		{err: ErrChannelDown},
		{text: "hello"},
		{text: "exit"},
	}
	s, sink, _ := newTestSession(t, steps, Actuators{})

	require.NoError(t, s.Run(context.Background()))

	assert.True(t, sink.contains("Sorry, I am unable to connect to the speech service."))
	assert.True(t, sink.contains("Hello, I am Synbi, your personal assistant."))
}

func TestSleepParksSessionIdle(t *testing.T) {
	s, sink, _ := newTestSession(t, say("okay wait"), Actuators{})

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, StateIdle, s.State())
	assert.True(t, sink.contains("going to sleep"))
}

func TestNilActuatorDisablesCommand(t *testing.T) {
	s, sink, _ := newTestSession(t, say("pause spotify", "exit"), Actuators{})

	require.NoError(t, s.Run(context.Background()))
	assert.True(t, sink.contains("Spotify is not available."))
}

func TestThrottledSinkSuppressesRapidMessages(t *testing.T) {
	inner := &recordingSink{}
	throttled := NewThrottledSink(inner, 2*time.Second)

	now := time.Unix(1000, 0)
	throttled.now = func() time.Time { return now }

	require.NoError(t, throttled.Say("first"))
	now = now.Add(500 * time.Millisecond)
	require.NoError(t, throttled.Say("too soon"))
	now = now.Add(2 * time.Second)
	require.NoError(t, throttled.Say("second"))

	assert.Equal(t, []string{"first", "second"}, inner.lines)
}

package procs

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Chrome":        "chrome",
		"google chrome": "chrome",
		"VS Code":       "code",
		"media player":  "vlc",
		"  Telegram  ":  "telegram-desktop",
		"htop":          "htop", // unknown names pass through
	}
	for spoken, want := range cases {
		assert.Equal(t, want, Normalize(spoken), "spoken=%q", spoken)
	}
}

func TestListFormatsTable(t *testing.T) {
	m := New()
	m.snapshot = []Process{
		{PID: 101, Name: "chrome", CPU: 42.5, Mem: 12.3},
		{PID: 202, Name: "idle-daemon", CPU: 0.1, Mem: 30.0},
	}
	m.taken = time.Now()

	out, err := m.List(10, "cpu")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "PID")
	assert.Contains(t, lines[1], "chrome", "cpu sort puts the hot process first")
	assert.Contains(t, lines[2], "idle-daemon")
}

func TestListSortsByMemory(t *testing.T) {
	m := New()
	m.snapshot = []Process{
		{PID: 101, Name: "chrome", CPU: 42.5, Mem: 12.3},
		{PID: 202, Name: "idle-daemon", CPU: 0.1, Mem: 30.0},
	}
	m.taken = time.Now()

	out, err := m.List(1, "memory")
	require.NoError(t, err)

	assert.Contains(t, out, "idle-daemon")
	assert.NotContains(t, out, "chrome")
}

func TestListSortsByName(t *testing.T) {
	m := New()
	m.snapshot = []Process{
		{PID: 101, Name: "zsh"},
		{PID: 202, Name: "Chrome"},
	}
	m.taken = time.Now()

	out, err := m.List(10, "name")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Contains(t, lines[1], "Chrome")
	assert.Contains(t, lines[2], "zsh")
}

func TestSnapshotExpires(t *testing.T) {
	m := New()
	now := time.Unix(5000, 0)
	m.now = func() time.Time { return now }
	m.snapshot = []Process{{PID: 1, Name: "stale"}}
	m.taken = now

	entries, err := m.processes()
	require.NoError(t, err)
	assert.Equal(t, "stale", entries[0].Name, "fresh snapshot is served from cache")

	now = now.Add(snapshotTTL + time.Second)
	entries, err = m.processes()
	require.NoError(t, err)
	if len(entries) > 0 {
		assert.NotEqual(t, "stale", entries[0].Name)
	}
}

func TestFindByName(t *testing.T) {
	m := New()
	m.snapshot = []Process{
		{PID: 101, Name: "chrome"},
		{PID: 102, Name: "chrome"},
		{PID: 202, Name: "Telegram-Desktop"},
	}
	m.taken = time.Now()

	matches, err := m.FindByName("google chrome")
	require.NoError(t, err)
	require.Len(t, matches, 2, "alias resolves and matches every instance")

	matches, err = m.FindByName("telegram")
	require.NoError(t, err)
	require.Len(t, matches, 1, "matching ignores case")
	assert.Equal(t, int32(202), matches[0].PID)

	_, err = m.FindByName("   ")
	assert.Error(t, err)
}

func TestKillWithoutTarget(t *testing.T) {
	m := New()
	_, err := m.Kill("   ", false)
	assert.Error(t, err)
}

func TestKillNotRunning(t *testing.T) {
	m := New()
	m.snapshot = []Process{{PID: 101, Name: "chrome"}}
	m.taken = time.Now()

	res, err := m.Kill("no-such-app-zzz", false)
	require.NoError(t, err)
	assert.Zero(t, res.Matched)
	assert.Equal(t, "no-such-app-zzz is not running.", res.Spoken("no-such-app-zzz"))
}

func TestKillResultSpoken(t *testing.T) {
	assert.Equal(t, "chrome is not running.",
		KillResult{}.Spoken("chrome"))
	assert.Equal(t, "Could not close chrome.",
		KillResult{Matched: 2, Failures: []string{"chrome (pid 9): permission denied"}}.Spoken("chrome"))
	assert.Equal(t, "chrome is closed. (Some processes couldn't be closed)",
		KillResult{Matched: 2, Killed: 1, Failures: []string{"chrome (pid 9): permission denied"}}.Spoken("chrome"))
	assert.Equal(t, "chrome is closed.",
		KillResult{Matched: 2, Killed: 2}.Spoken("chrome"))
}

func TestTrim(t *testing.T) {
	assert.Equal(t, "short", trim("short", 10))
	long := strings.Repeat("x", 40)
	assert.Len(t, []rune(trim(long, 28)), 28)
}

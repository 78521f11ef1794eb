package fileops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	home := t.TempDir()
	for _, d := range []string{"Desktop", "Documents", "Downloads"} {
		require.NoError(t, os.Mkdir(filepath.Join(home, d), 0o755))
	}
	return New(home), home
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))
}

func TestMove(t *testing.T) {
	m, home := newTestManager(t)
	writeFile(t, filepath.Join(home, "Downloads", "report.docx"))

	msg := m.Move("report.docx", "downloads", "documents")

	assert.Equal(t, "Successfully moved 'report.docx' from downloads to documents.", msg)
	assert.NoFileExists(t, filepath.Join(home, "Downloads", "report.docx"))
	assert.FileExists(t, filepath.Join(home, "Documents", "report.docx"))
}

func TestCopyKeepsSource(t *testing.T) {
	m, home := newTestManager(t)
	writeFile(t, filepath.Join(home, "Desktop", "notes.txt"))

	msg := m.Copy("notes.txt", "desktop", "documents")

	assert.Equal(t, "Successfully copied 'notes.txt' from desktop to documents.", msg)
	assert.FileExists(t, filepath.Join(home, "Desktop", "notes.txt"))

	copied, err := os.ReadFile(filepath.Join(home, "Documents", "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(copied))
}

func TestDelete(t *testing.T) {
	m, home := newTestManager(t)
	writeFile(t, filepath.Join(home, "Downloads", "junk.tmp"))

	msg := m.Delete("junk.tmp", "downloads")

	assert.Equal(t, "Successfully deleted 'junk.tmp' from 'downloads'.", msg)
	assert.NoFileExists(t, filepath.Join(home, "Downloads", "junk.tmp"))
}

func TestMissingSource(t *testing.T) {
	m, _ := newTestManager(t)

	assert.Equal(t, "Sorry, I couldn't find 'ghost.txt' in downloads.",
		m.Move("ghost.txt", "downloads", "documents"))
	assert.Equal(t, "Sorry, I couldn't find 'ghost.txt' in desktop.",
		m.Delete("ghost.txt", "desktop"))
}

func TestUnknownFolder(t *testing.T) {
	m, _ := newTestManager(t)

	assert.Equal(t, "Sorry, I don't know the folder 'attic'.",
		m.Move("a.txt", "attic", "documents"))
	assert.Equal(t, "Sorry, I don't know the folder 'attic'.",
		m.Copy("a.txt", "desktop", "attic"))
	assert.Equal(t, "Sorry, I don't know the folder 'attic'.",
		m.Delete("a.txt", "attic"))
}

func TestRefusesOverwrite(t *testing.T) {
	m, home := newTestManager(t)
	writeFile(t, filepath.Join(home, "Downloads", "dup.txt"))
	writeFile(t, filepath.Join(home, "Documents", "dup.txt"))

	msg := m.Move("dup.txt", "downloads", "documents")

	assert.Equal(t, "A file named 'dup.txt' already exists in documents.", msg)
	assert.FileExists(t, filepath.Join(home, "Downloads", "dup.txt"))
}

func TestFolderAliasesAreCaseInsensitive(t *testing.T) {
	m, home := newTestManager(t)
	writeFile(t, filepath.Join(home, "Downloads", "cv.pdf"))

	msg := m.Move("cv.pdf", "Downloads", "DOCUMENTS")

	assert.Contains(t, msg, "Successfully moved")
}

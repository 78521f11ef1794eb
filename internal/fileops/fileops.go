// Package fileops moves, copies and deletes files in the well-known user
// directories. Results are spoken sentences rather than errors, since the
// caller relays them to the user verbatim.
package fileops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "log/slog"
)

// folderAliases maps spoken folder names to directories relative to the
// user's home.
var folderAliases = map[string]string{
	"desktop":   "Desktop",
	"documents": "Documents",
	"downloads": "Downloads",
	"download":  "Downloads",
	"pictures":  "Pictures",
	"photos":    "Pictures",
	"music":     "Music",
	"videos":    "Videos",
	"home":      "",
}

type Manager struct {
	home string
}

// New returns a Manager rooted at home. An empty home falls back to the
// current user's home directory.
func New(home string) *Manager {
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return &Manager{home: home}
}

// resolve turns a spoken folder name into an absolute path, or "" when the
// name is not a known folder.
func (m *Manager) resolve(folder string) string {
	alias, ok := folderAliases[strings.ToLower(strings.TrimSpace(folder))]
	if !ok {
		return ""
	}
	return filepath.Join(m.home, alias)
}

func (m *Manager) Move(item, from, to string) string {
	src, dst, msg := m.endpoints(item, from, to)
	if msg != "" {
		return msg
	}
	if err := os.Rename(src, dst); err != nil {
		log.Error("Move failed", "src", src, "dst", dst, "err", err)
		if errors.Is(err, os.ErrPermission) {
			return fmt.Sprintf("I don't have permission to move '%s'.", item)
		}
		return fmt.Sprintf("Sorry, I couldn't move '%s'.", item)
	}
	return fmt.Sprintf("Successfully moved '%s' from %s to %s.", item, from, to)
}

func (m *Manager) Copy(item, from, to string) string {
	src, dst, msg := m.endpoints(item, from, to)
	if msg != "" {
		return msg
	}
	if err := copyFile(src, dst); err != nil {
		log.Error("Copy failed", "src", src, "dst", dst, "err", err)
		return fmt.Sprintf("Sorry, I couldn't copy '%s'.", item)
	}
	return fmt.Sprintf("Successfully copied '%s' from %s to %s.", item, from, to)
}

func (m *Manager) Delete(item, from string) string {
	dir := m.resolve(from)
	if dir == "" {
		return fmt.Sprintf("Sorry, I don't know the folder '%s'.", from)
	}
	path := filepath.Join(dir, item)
	if _, err := os.Stat(path); err != nil {
		return fmt.Sprintf("Sorry, I couldn't find '%s' in %s.", item, from)
	}
	if err := os.Remove(path); err != nil {
		log.Error("Delete failed", "path", path, "err", err)
		if errors.Is(err, os.ErrPermission) {
			return fmt.Sprintf("I don't have permission to delete '%s'.", item)
		}
		return fmt.Sprintf("Sorry, I couldn't delete '%s'.", item)
	}
	return fmt.Sprintf("Successfully deleted '%s' from '%s'.", item, from)
}

// endpoints validates both folders and the source file, and refuses to
// overwrite an existing destination.
func (m *Manager) endpoints(item, from, to string) (src, dst, msg string) {
	srcDir := m.resolve(from)
	if srcDir == "" {
		return "", "", fmt.Sprintf("Sorry, I don't know the folder '%s'.", from)
	}
	dstDir := m.resolve(to)
	if dstDir == "" {
		return "", "", fmt.Sprintf("Sorry, I don't know the folder '%s'.", to)
	}

	src = filepath.Join(srcDir, item)
	dst = filepath.Join(dstDir, item)

	if _, err := os.Stat(src); err != nil {
		return "", "", fmt.Sprintf("Sorry, I couldn't find '%s' in %s.", item, from)
	}
	if _, err := os.Stat(dst); err == nil {
		return "", "", fmt.Sprintf("A file named '%s' already exists in %s.", item, to)
	}
	return src, dst, ""
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy contents: %w", err)
	}
	return out.Close()
}

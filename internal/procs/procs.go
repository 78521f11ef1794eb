// Package procs lists and terminates desktop processes. Spoken application
// names are normalized to process names before matching.
package procs

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	log "log/slog"

	"github.com/shirou/gopsutil/v3/process"
)

// appAliases maps how users refer to applications to the process names the
// OS reports.
var appAliases = map[string]string{
	"chrome":         "chrome",
	"google chrome":  "chrome",
	"firefox":        "firefox",
	"mozilla":        "firefox",
	"code":           "code",
	"vs code":        "code",
	"visual studio":  "code",
	"spotify":        "spotify",
	"telegram":       "telegram-desktop",
	"discord":        "discord",
	"terminal":       "gnome-terminal",
	"files":          "nautilus",
	"file manager":   "nautilus",
	"vlc":            "vlc",
	"media player":   "vlc",
	"text editor":    "gedit",
	"calculator":     "gnome-calculator",
	"whatsapp":       "whatsapp",
	"libreoffice":    "soffice.bin",
	"office":         "soffice.bin",
	"system monitor": "gnome-system-monitor",
}

const snapshotTTL = 5 * time.Second

// Process is one row of the process table snapshot.
type Process struct {
	PID  int32
	Name string
	CPU  float64
	Mem  float32
}

// Manager enumerates running processes, caching the snapshot briefly so a
// list immediately followed by a kill doesn't rescan the process table.
type Manager struct {
	mu       sync.Mutex
	snapshot []Process
	taken    time.Time
	now      func() time.Time
}

func New() *Manager {
	return &Manager{now: time.Now}
}

func (m *Manager) processes() ([]Process, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snapshot != nil && m.now().Sub(m.taken) < snapshotTTL {
		return m.snapshot, nil
	}

	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	entries := make([]Process, 0, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil || name == "" {
			continue
		}
		cpu, _ := p.CPUPercent()
		mem, _ := p.MemoryPercent()
		entries = append(entries, Process{PID: p.Pid, Name: name, CPU: cpu, Mem: mem})
	}

	m.snapshot = entries
	m.taken = m.now()
	return entries, nil
}

// List formats the top processes as a table. sortBy is "cpu", "memory" or
// "name"; anything else sorts by CPU.
func (m *Manager) List(limit int, sortBy string) (string, error) {
	entries, err := m.processes()
	if err != nil {
		return "", err
	}
	if limit <= 0 {
		limit = 10
	}

	sorted := make([]Process, len(entries))
	copy(sorted, entries)
	switch strings.ToLower(sortBy) {
	case "memory":
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Mem > sorted[j].Mem })
	case "name":
		sort.Slice(sorted, func(i, j int) bool {
			return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
		})
	default:
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].CPU > sorted[j].CPU })
	}
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-8s %-28s %8s %8s\n", "PID", "NAME", "CPU%", "MEM%")
	for _, e := range sorted {
		fmt.Fprintf(&b, "%-8d %-28s %8.1f %8.1f\n", e.PID, trim(e.Name, 28), e.CPU, e.Mem)
	}
	return b.String(), nil
}

// FindByName returns the snapshot rows whose process name contains the
// normalized pattern, case-insensitively.
func (m *Manager) FindByName(pattern string) ([]Process, error) {
	target := Normalize(pattern)
	if target == "" {
		return nil, fmt.Errorf("empty process pattern")
	}

	entries, err := m.processes()
	if err != nil {
		return nil, err
	}

	var matches []Process
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Name), target) {
			matches = append(matches, e)
		}
	}
	return matches, nil
}

// KillResult reports a kill sweep over the matching processes.
type KillResult struct {
	Matched  int
	Killed   int
	Failures []string
}

// Spoken renders the result as a sentence ready to be spoken back.
func (r KillResult) Spoken(name string) string {
	switch {
	case r.Matched == 0:
		return fmt.Sprintf("%s is not running.", name)
	case r.Killed == 0:
		return fmt.Sprintf("Could not close %s.", name)
	case len(r.Failures) > 0:
		return fmt.Sprintf("%s is closed. (Some processes couldn't be closed)", name)
	default:
		return fmt.Sprintf("%s is closed.", name)
	}
}

// Kill terminates every process matching the spoken application name and
// reports how many went down, with a reason for each one that did not.
func (m *Manager) Kill(name string, force bool) (KillResult, error) {
	matches, err := m.FindByName(name)
	if err != nil {
		return KillResult{}, err
	}

	res := KillResult{Matched: len(matches)}
	for _, e := range matches {
		p, err := process.NewProcess(e.PID)
		if err != nil {
			res.Failures = append(res.Failures, fmt.Sprintf("%s (pid %d): %v", e.Name, e.PID, err))
			continue
		}
		if force {
			err = p.Kill()
		} else {
			err = p.Terminate()
		}
		if err != nil {
			log.Warn("Failed to terminate", "pid", e.PID, "name", e.Name, "err", err)
			res.Failures = append(res.Failures, fmt.Sprintf("%s (pid %d): %v", e.Name, e.PID, err))
			continue
		}
		res.Killed++
	}

	// the table is stale once anything got killed
	if res.Killed > 0 {
		m.mu.Lock()
		m.snapshot = nil
		m.mu.Unlock()
	}
	return res, nil
}

// Normalize maps a spoken application name to the process name to match
// against, lowercased.
func Normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := appAliases[n]; ok {
		return alias
	}
	return n
}

func trim(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

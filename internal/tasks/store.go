package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	ErrEmptyText = errors.New("task text is empty")
	ErrNotFound  = errors.New("no matching pending task")
)

// CorruptPolicy decides what Open does with an unreadable tasks file.
type CorruptPolicy int

const (
	// ResetToEmpty starts over with an empty store, logging the parse error.
	ResetToEmpty CorruptPolicy = iota
	// Fail refuses to open the store.
	Fail
)

type document struct {
	Tasks        []Task    `json:"tasks"`
	Completed    []Task    `json:"completed"`
	CreatedDate  time.Time `json:"created_date"`
	LastModified time.Time `json:"last_modified"`
	NextID       int       `json:"next_id"`
}

// Store keeps the pending and completed task lists and persists them to a
// JSON file after every mutation. A task lives in exactly one of the two
// lists at any time.
type Store struct {
	mu        sync.Mutex
	path      string
	onCorrupt CorruptPolicy
	doc       document
}

// Open loads the store from path, creating an empty one if the file does
// not exist yet.
func Open(path string, onCorrupt CorruptPolicy) (*Store, error) {
	s := &Store{path: path, onCorrupt: onCorrupt}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s.doc = freshDocument()
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tasks file: %w", err)
	}

	if err := json.Unmarshal(data, &s.doc); err != nil {
		if onCorrupt == Fail {
			return nil, fmt.Errorf("parse tasks file %s: %w", path, err)
		}
		log.Error("Tasks file is corrupt, starting empty", "path", path, "err", err)
		s.doc = freshDocument()
		return s, nil
	}

	// Files written before the counter existed derived ids from list
	// length; seed the counter past anything already assigned.
	if s.doc.NextID == 0 {
		max := 0
		for _, t := range append(append([]Task(nil), s.doc.Tasks...), s.doc.Completed...) {
			if t.ID > max {
				max = t.ID
			}
		}
		s.doc.NextID = max + 1
	}

	return s, nil
}

func freshDocument() document {
	now := time.Now()
	return document{
		Tasks:        []Task{},
		Completed:    []Task{},
		CreatedDate:  now,
		LastModified: now,
		NextID:       1,
	}
}

// Add appends a pending task. The returned error is either ErrEmptyText or
// a save failure; on save failure the task is still in memory and the next
// successful save will pick it up.
func (s *Store) Add(text string, priority Priority, dueDate string) (Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, ErrEmptyText
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := Task{
		ID:       s.doc.NextID,
		Text:     text,
		Priority: priority,
		Status:   StatusPending,
		Created:  time.Now(),
		DueDate:  dueDate,
	}
	s.doc.NextID++
	s.doc.Tasks = append(s.doc.Tasks, t)

	return t, s.save()
}

// Delete removes the first pending task matching identifier (numeric id,
// falling back to case-insensitive substring on the text).
func (s *Store) Delete(identifier string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findPending(identifier)
	if i < 0 {
		return Task{}, ErrNotFound
	}

	t := s.doc.Tasks[i]
	s.doc.Tasks = append(s.doc.Tasks[:i], s.doc.Tasks[i+1:]...)

	return t, s.save()
}

// Complete moves the first matching pending task to the completed list and
// stamps its completion time. The move is irreversible.
func (s *Store) Complete(identifier string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findPending(identifier)
	if i < 0 {
		return Task{}, ErrNotFound
	}

	t := s.doc.Tasks[i]
	now := time.Now()
	t.Status = StatusCompleted
	t.Completed = &now

	s.doc.Tasks = append(s.doc.Tasks[:i], s.doc.Tasks[i+1:]...)
	s.doc.Completed = append(s.doc.Completed, t)

	return t, s.save()
}

// findPending resolves an identifier to an index in the pending list, or -1.
// Numeric identifiers match on id; anything else is a case-insensitive
// substring match on the text, first match in insertion order.
func (s *Store) findPending(identifier string) int {
	identifier = strings.TrimSpace(identifier)

	if id, err := strconv.Atoi(identifier); err == nil {
		for i, t := range s.doc.Tasks {
			if t.ID == id {
				return i
			}
		}
		return -1
	}

	needle := strings.ToLower(identifier)
	for i, t := range s.doc.Tasks {
		if strings.Contains(strings.ToLower(t.Text), needle) {
			return i
		}
	}
	return -1
}

// Pending returns the pending tasks in insertion order.
func (s *Store) Pending() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Task(nil), s.doc.Tasks...)
}

// CompletedTasks returns the completed tasks in completion order.
func (s *Store) CompletedTasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Task(nil), s.doc.Completed...)
}

// Search returns the pending tasks whose text contains term,
// case-insensitively, in insertion order.
func (s *Store) Search(term string) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(term))
	var out []Task
	for _, t := range s.doc.Tasks {
		if strings.Contains(strings.ToLower(t.Text), needle) {
			out = append(out, t)
		}
	}
	return out
}

// ByPriority returns the pending tasks with the given priority.
func (s *Store) ByPriority(p Priority) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Task
	for _, t := range s.doc.Tasks {
		if t.Priority == p {
			out = append(out, t)
		}
	}
	return out
}

// Summary returns a short spoken count of pending and completed tasks.
func (s *Store) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := len(s.doc.Tasks)
	completed := len(s.doc.Completed)

	if pending == 0 && completed == 0 {
		return "You have no tasks."
	}

	out := fmt.Sprintf("You have %d pending task%s", pending, plural(pending))
	if completed > 0 {
		out += fmt.Sprintf(" and %d completed task%s", completed, plural(completed))
	}
	return out
}

// SpokenList formats the pending tasks as a numbered sentence for speech.
func (s *Store) SpokenList() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.doc.Tasks) == 0 {
		return "You have no pending tasks."
	}

	parts := make([]string, 0, len(s.doc.Tasks))
	for i, t := range s.doc.Tasks {
		parts = append(parts, fmt.Sprintf("%d. %s", i+1, t.Text))
	}
	return "Your pending tasks are: " + strings.Join(parts, ". ")
}

// ClearCompleted empties the completed list and reports how many were
// removed.
func (s *Store) ClearCompleted() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.doc.Completed)
	s.doc.Completed = []Task{}
	return n, s.save()
}

func (s *Store) save() error {
	s.doc.LastModified = time.Now()

	data, err := json.MarshalIndent(&s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create tasks dir: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write tasks file: %w", err)
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

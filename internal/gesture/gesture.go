// Package gesture runs the hand-gesture mouse control worker. Recognition
// itself happens in an external helper process that prints one gesture name
// per line; this package supervises it and acts on what it reports.
package gesture

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	log "log/slog"
)

// Recognizer produces a stream of gesture names. Next blocks until a
// gesture is seen or the stream ends.
type Recognizer interface {
	Next(ctx context.Context) (string, error)
	Close() error
}

// Actions is what a recognized gesture can do to the session.
type Actions interface {
	TapKey(key string) error
	Notify(title, message string) error
}

// Feedback speaks short acknowledgements. Callers wrap it in a throttle so
// a held gesture doesn't chatter.
type Feedback interface {
	Say(text string) error
}

// gestureKeys maps recognizer output to the key each gesture taps.
var gestureKeys = map[string]string{
	"palm":        "playpause",
	"fist":        "playpause",
	"swipe_left":  "previous",
	"swipe_right": "next",
	"thumbs_up":   "XF86AudioRaiseVolume",
	"thumbs_down": "XF86AudioLowerVolume",
}

// Worker owns the recognition loop goroutine.
type Worker struct {
	mu       sync.Mutex
	open     func() (Recognizer, error)
	actions  Actions
	feedback Feedback
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewWorker(open func() (Recognizer, error), actions Actions, feedback Feedback) *Worker {
	return &Worker{open: open, actions: actions, feedback: feedback}
}

// Start launches the recognition loop. Starting a running worker is a
// no-op.
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return nil
	}

	rec, err := w.open()
	if err != nil {
		return fmt.Errorf("open gesture recognizer: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	go w.loop(ctx, rec, w.done)
	return nil
}

// Stop ends the loop and waits for it to exit.
func (w *Worker) Stop() error {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

func (w *Worker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cancel != nil
}

func (w *Worker) loop(ctx context.Context, rec Recognizer, done chan struct{}) {
	defer close(done)
	defer rec.Close()

	for {
		name, err := rec.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Error("Gesture stream ended", "err", err)
			}
			w.mu.Lock()
			w.cancel = nil
			w.mu.Unlock()
			return
		}
		w.act(name)
	}
}

func (w *Worker) act(name string) {
	key, ok := gestureKeys[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		log.Debug("Unrecognized gesture", "name", name)
		return
	}
	if err := w.actions.TapKey(key); err != nil {
		log.Warn("Gesture action failed", "gesture", name, "err", err)
		return
	}
	if w.feedback != nil {
		_ = w.feedback.Say("Gesture " + name + " recognized.")
	}
}

// commandRecognizer reads gesture names from a helper process's stdout.
type commandRecognizer struct {
	cmd     *exec.Cmd
	scanner *bufio.Scanner
	stdout  io.ReadCloser
}

// OpenCommand starts the helper and returns a Recognizer over its output.
func OpenCommand(name string, args ...string) (Recognizer, error) {
	cmd := exec.Command(name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("pipe gesture helper: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start gesture helper: %w", err)
	}
	return &commandRecognizer{cmd: cmd, scanner: bufio.NewScanner(stdout), stdout: stdout}, nil
}

func (r *commandRecognizer) Next(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		if r.scanner.Scan() {
			ch <- result{line: r.scanner.Text()}
			return
		}
		err := r.scanner.Err()
		if err == nil {
			err = io.EOF
		}
		ch <- result{err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.line, res.err
	}
}

func (r *commandRecognizer) Close() error {
	r.stdout.Close()
	if r.cmd.Process != nil {
		_ = r.cmd.Process.Kill()
	}
	return r.cmd.Wait()
}

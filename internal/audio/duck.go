package audio

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

var percentRe = regexp.MustCompile(`(\d+)\s*%`)

type sinkInput struct {
	id      int
	volume  int
	appName string
}

// Ducker lowers every other PulseAudio stream while the assistant speaks
// and restores the original volumes afterwards. Streams whose
// application.name matches selfNames are left alone.
type Ducker struct {
	mu        sync.Mutex
	active    bool
	selfNames []string
	restore   map[int]int
	floor     int
}

func NewDucker(selfNames []string, floor int) *Ducker {
	if floor < 0 {
		floor = 0
	}
	return &Ducker{
		selfNames: append([]string(nil), selfNames...),
		restore:   make(map[int]int),
		floor:     floor,
	}
}

// Duck scales foreign streams down to volume*factor, clamped to the floor.
func (d *Ducker) Duck(ctx context.Context, factor float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active {
		return nil
	}

	streams, err := listSinkInputs(ctx)
	if err != nil {
		return fmt.Errorf("list sink inputs: %w", err)
	}

	d.restore = make(map[int]int)
	for _, s := range streams {
		if d.isSelf(s) {
			continue
		}
		target := int(float64(s.volume) * factor)
		if target < d.floor {
			target = d.floor
		}
		if err := setSinkInputVolume(ctx, s.id, target); err != nil {
			return fmt.Errorf("duck stream %d: %w", s.id, err)
		}
		d.restore[s.id] = s.volume
	}

	d.active = true
	return nil
}

// Unduck puts every stream ducked earlier back where it was. Streams that
// appeared mid-speech are untouched.
func (d *Ducker) Unduck(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return nil
	}

	streams, err := listSinkInputs(ctx)
	if err != nil {
		return fmt.Errorf("list sink inputs: %w", err)
	}

	for _, s := range streams {
		orig, ok := d.restore[s.id]
		if !ok {
			continue
		}
		if err := setSinkInputVolume(ctx, s.id, orig); err != nil {
			return fmt.Errorf("restore stream %d: %w", s.id, err)
		}
	}

	d.restore = make(map[int]int)
	d.active = false
	return nil
}

func (d *Ducker) isSelf(s sinkInput) bool {
	for _, name := range d.selfNames {
		if s.appName == name {
			return true
		}
	}
	return false
}

func listSinkInputs(ctx context.Context) ([]sinkInput, error) {
	out, err := exec.CommandContext(ctx, "pactl", "list", "sink-inputs").Output()
	if err != nil {
		return nil, fmt.Errorf("pactl list sink-inputs: %w", err)
	}
	return parseSinkInputs(string(out)), nil
}

func parseSinkInputs(text string) []sinkInput {
	blocks := strings.Split(text, "Sink Input #")
	var res []sinkInput

	for _, block := range blocks[1:] {
		newline := strings.IndexByte(block, '\n')
		if newline <= 0 {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(block[:newline]))
		if err != nil {
			continue
		}

		s := sinkInput{id: id}
		for _, line := range strings.Split(block[newline+1:], "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "Volume:") && s.volume == 0 {
				if m := percentRe.FindStringSubmatch(line); len(m) >= 2 {
					s.volume, _ = strconv.Atoi(m[1])
				}
			}
			if strings.HasPrefix(line, "application.name =") && s.appName == "" {
				if parts := strings.SplitN(line, "\"", 3); len(parts) >= 2 {
					s.appName = parts[1]
				}
			}
		}

		if s.volume == 0 && s.appName == "" {
			continue
		}
		res = append(res, s)
	}
	return res
}

func setSinkInputVolume(ctx context.Context, id, percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 150 {
		percent = 150
	}
	arg := fmt.Sprintf("%d%%", percent)
	return exec.CommandContext(ctx, "pactl", "set-sink-input-volume", strconv.Itoa(id), arg).Run()
}

// Package progress renders a single-line spinner on stderr while a request
// is in flight.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/jongio/httpio/cliout"
	"golang.org/x/term"
)

// TaskStatus represents the status of the tracked task.
type TaskStatus string

const (
	TaskStatusRunning TaskStatus = "running"
	TaskStatusSuccess TaskStatus = "success"
	TaskStatusFailed  TaskStatus = "failed"
)

const refreshInterval = 100 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// getSpinnerFrame picks a frame from the wall clock so every spinner ticks in step.
func getSpinnerFrame(t time.Time) string {
	return spinnerFrames[(t.UnixMilli()/refreshInterval.Milliseconds())%int64(len(spinnerFrames))]
}

// Spinner tracks one task on one terminal line.
type Spinner struct {
	w           io.Writer
	description string
	status      TaskStatus
	detail      string
	startTime   time.Time
	mu          sync.Mutex
	stopChan    chan struct{}
	done        chan struct{}
	started     bool
	stopped     bool
}

// Enabled reports whether a spinner should be drawn: stderr must be a
// terminal and output must not be JSON.
func Enabled() bool {
	return !cliout.IsJSON() && term.IsTerminal(int(os.Stderr.Fd()))
}

// New creates a spinner that draws to w.
func New(w io.Writer, description string) *Spinner {
	return &Spinner{
		w:           w,
		description: description,
		status:      TaskStatusRunning,
		stopChan:    make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start begins animating. It is a no-op after the first call.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.startTime = time.Now()
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopChan:
				return
			case now := <-ticker.C:
				s.mu.Lock()
				s.render(now)
				s.mu.Unlock()
			}
		}
	}()
}

// Complete stops the spinner and marks the task successful.
func (s *Spinner) Complete(detail string) {
	s.finish(TaskStatusSuccess, detail)
}

// Fail stops the spinner and marks the task failed.
func (s *Spinner) Fail(errMsg string) {
	s.finish(TaskStatusFailed, errMsg)
}

func (s *Spinner) finish(status TaskStatus, detail string) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	started := s.started
	s.mu.Unlock()

	if started {
		close(s.stopChan)
		<-s.done
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.detail = detail
	s.render(time.Now())
	fmt.Fprintln(s.w)
}

// Status returns the current task status.
func (s *Spinner) Status() TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// render draws the current line. Callers hold s.mu.
func (s *Spinner) render(now time.Time) {
	var icon string
	switch s.status {
	case TaskStatusSuccess:
		icon = cliout.Colorize(cliout.SymbolCheck, cliout.Green)
	case TaskStatusFailed:
		icon = cliout.Colorize(cliout.SymbolCross, cliout.Red)
	default:
		icon = cliout.Colorize(getSpinnerFrame(now), cliout.Cyan)
	}

	line := icon + " " + s.description
	if !s.startTime.IsZero() {
		line += " " + cliout.Colorize(fmt.Sprintf("%.1fs", now.Sub(s.startTime).Seconds()), cliout.Dim)
	}
	if s.detail != "" {
		line += " " + s.detail
	}
	fmt.Fprint(s.w, "\r\033[2K"+line)
}

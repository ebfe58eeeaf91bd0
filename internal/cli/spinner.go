package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner draws a progress indicator on stderr until stopped or until its
// context is cancelled.
type spinner struct {
	w       io.Writer
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
	halted  atomic.Bool

	mu      sync.Mutex
	message string
	width   int // widest line drawn, for clearing
}

func newSpinnerWithContext(ctx context.Context, message string) *spinner {
	return newSpinnerTo(ctx, os.Stderr, message)
}

func newSpinnerTo(ctx context.Context, w io.Writer, message string) *spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &spinner{
		w:       w,
		ctx:     sctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
		message: message,
	}
}

// Start begins the animation in a goroutine.
func (s *spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

// Update replaces the message shown next to the spinner.
func (s *spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop halts the animation and clears the line. It is safe to call more
// than once.
func (s *spinner) Stop() {
	s.once.Do(func() {
		s.halted.Store(true)
		s.cancel()
		<-s.stopped
	})
}

// Cancelled reports whether the parent context ended before Stop.
func (s *spinner) Cancelled() bool {
	return s.ctx.Err() != nil && !s.halted.Load()
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := fmt.Sprintf("%s %s", frame, s.message)
	if n := len([]rune(line)); n > s.width {
		s.width = n
	}
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), styleDim.Render(s.message))
}

func (s *spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
}

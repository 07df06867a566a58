// Package progress draws a same-line progress bar for the digest phase.
// It implements the engine's Progress interface; the engine itself
// never writes text.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

type Bar struct {
	label      string
	total      int64
	current    int64
	width      int
	writer     io.Writer
	mu         sync.Mutex
	enabled    bool
	lastUpdate time.Time
}

// New returns a bar writing to stderr. The bar stays silent when
// stderr is not a terminal, so piped output is never polluted.
func New(label string) *Bar {
	return &Bar{
		label:   label,
		width:   50,
		writer:  os.Stderr,
		enabled: isatty.IsTerminal(os.Stderr.Fd()),
	}
}

// Start resets the bar for a phase of total steps.
func (b *Bar) Start(total int) {
	if !b.enabled {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.total = int64(total)
	b.current = 0
	b.lastUpdate = time.Now()
	b.render()
}

// Step advances the bar by one. Safe for concurrent use by the digest
// workers.
func (b *Bar) Step() {
	if !b.enabled {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current++

	// Update at most every 100ms to reduce flickering
	now := time.Now()
	if now.Sub(b.lastUpdate) > 100*time.Millisecond || b.current == b.total {
		b.lastUpdate = now
		b.render()
	}
}

// render must be called with mu already locked
func (b *Bar) render() {
	if b.total == 0 {
		return
	}

	percent := float64(b.current) / float64(b.total) * 100
	filledWidth := int(float64(b.width) * float64(b.current) / float64(b.total))

	if filledWidth > b.width {
		filledWidth = b.width
	}

	bar := strings.Repeat("█", filledWidth) + strings.Repeat("░", b.width-filledWidth)

	// Clear the line and write progress
	fmt.Fprintf(b.writer, "\r\033[K%s [%s] %3d%% (%d/%d)",
		b.label, bar, int(percent), b.current, b.total)
}

func (b *Bar) Done() {
	if !b.enabled {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.total == 0 {
		return
	}
	b.current = b.total
	b.render()
	fmt.Fprintf(b.writer, "\n")
}

// Package progress implements a terminal progress bar for long runs that
// emit tables periodically.
//
// A bar expects a total number of ticks and renders incrementally:
//
//	msg: [########              ]
//
// Tick advances relatively, Complete absolutely, Finish completes the bar
// early. Output is plain ASCII: Start draws the empty frame, returns to the
// line start with a carriage return and redraws the message; cells are then
// appended left to right.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Bar is a terminal progress bar. Not safe for concurrent use.
type Bar struct {
	w       io.Writer
	message string
	width   uint64

	total    uint64 // expected ticks
	ticks    uint64 // ticks so far
	nextMark uint64 // tick count at which the next cell fills
	cells    uint64 // cells printed so far
	finished bool
}

// New creates a bar of the given cell width writing to w. When w is a
// terminal the width is clamped so the bar fits on one line.
func New(w io.Writer, width int, message string) *Bar {
	if width <= 0 {
		width = 40
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil {
			// message, ": [", bar, "]"
			if max := cols - len(message) - 4; max > 0 && width > max {
				width = max
			}
		}
	}

	return &Bar{w: w, message: message, width: uint64(width)}
}

// Start begins a run of n expected ticks and draws the empty bar.
func (b *Bar) Start(n uint64) {
	b.total = n
	b.ticks = 0
	b.cells = 0
	b.finished = false
	b.nextMark = b.markAt(1)

	pad := strings.Repeat(" ", int(b.width))
	if b.message != "" {
		fmt.Fprintf(b.w, "%s: [%s]\r%s: [", b.message, pad, b.message)
	} else {
		fmt.Fprintf(b.w, "[%s]\r[", pad)
	}
	b.Tick(0)
}

// markAt returns the tick count at which cell number cell fills.
func (b *Bar) markAt(cell uint64) uint64 {
	return (b.total*cell + b.width - 1) / b.width
}

// Tick advances the bar by n ticks.
func (b *Bar) Tick(n uint64) {
	if b.finished {
		return
	}
	b.ticks += n
	if b.ticks < b.nextMark {
		return
	}
	if b.ticks > b.total {
		b.ticks = b.total
	}
	for b.ticks >= b.nextMark {
		b.cells++
		b.nextMark = b.markAt(b.cells + 1)
		if b.cells <= b.width {
			fmt.Fprint(b.w, "#")
		}
		if b.cells == b.width {
			fmt.Fprint(b.w, "]\n")
			b.finished = true

			return
		}
	}
}

// Complete sets the absolute tick count when it exceeds the current one.
func (b *Bar) Complete(ticks uint64) {
	if b.finished || ticks <= b.ticks {
		return
	}
	b.Tick(ticks - b.ticks)
}

// Finish completes the bar immediately.
func (b *Bar) Finish() {
	if b.finished {
		return
	}
	if b.ticks < b.total {
		b.Tick(b.total - b.ticks)
	}
}

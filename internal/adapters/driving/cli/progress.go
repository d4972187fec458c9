package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// ProgressPrinter reports embedding progress. On a terminal it rewrites a
// single line in place; otherwise it prints one line per update so logs
// and pipes stay readable.
type ProgressPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	inPlace bool
	dirty   bool
}

// NewProgressPrinter creates a printer writing to w. In-place mode is used
// only when w is a terminal.
func NewProgressPrinter(w io.Writer) *ProgressPrinter {
	inPlace := false
	if f, ok := w.(*os.File); ok {
		inPlace = term.IsTerminal(int(f.Fd()))
	}
	return &ProgressPrinter{w: w, inPlace: inPlace}
}

// Update reports that done of total vectors have been upserted.
//
//nolint:errcheck // Progress output is best effort.
func (p *ProgressPrinter) Update(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pct := 0
	if total > 0 {
		pct = done * 100 / total
	}
	if p.inPlace {
		fmt.Fprintf(p.w, "\rUpserted %d/%d vectors (%d%%)", done, total, pct)
		p.dirty = true
		return
	}
	fmt.Fprintf(p.w, "Upserted %d/%d vectors (%d%%)\n", done, total, pct)
}

// Finish terminates an in-place progress line.
//
//nolint:errcheck // Progress output is best effort.
func (p *ProgressPrinter) Finish() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dirty {
		fmt.Fprintln(p.w)
		p.dirty = false
	}
}

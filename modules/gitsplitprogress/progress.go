// Package gitsplitprogress shows an optional progress indicator while a
// filter run streams a large history, gated off under --quiet or when
// stderr isn't a terminal.
package gitsplitprogress

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// IsTerminal reports whether fd refers to an interactive terminal.
func IsTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Bar wraps a single mpb progress bar counting objects processed by the
// filter engine. The *Bar returned when quiet has a nil inner bar, which
// makes every method a no-op, so callers never need to branch on whether
// progress is enabled.
type Bar struct {
	progress *mpb.Progress
	bar      *mpb.Bar
}

// New starts a bar labeled description, counting up from zero with no known
// total (the filter engine doesn't know object counts ahead of time; it
// only knows the export stream's own "progress K objects" markers).
// Quiet, or a non-terminal stderr, disables the bar entirely.
func New(description string, quiet bool) *Bar {
	if quiet || !IsTerminal(os.Stderr.Fd()) {
		return &Bar{}
	}
	p := mpb.New(
		mpb.WithOutput(os.Stderr),
		mpb.WithAutoRefresh(),
	)
	bar := p.New(-1,
		mpb.BarStyle().Filler("#").Padding(" "),
		mpb.PrependDecorators(
			decor.Name(description, decor.WC{W: len(description) + 1, C: decor.DindentRight}),
			decor.CurrentNoUnit("%d objects"),
		),
		mpb.AppendDecorators(decor.EwmaSpeed(0, "% .1f/s", 30)),
	)
	return &Bar{progress: p, bar: bar}
}

// Increment advances the bar by n objects.
func (b *Bar) Increment(n int) {
	if b.bar != nil {
		b.bar.IncrBy(n)
	}
}

// Done marks the bar complete and blocks until its goroutine has flushed.
func (b *Bar) Done() {
	if b.bar == nil {
		return
	}
	b.bar.SetTotal(b.bar.Current(), true)
	b.progress.Wait()
}

// Printf writes a line to stderr. Safe to call whether or not the bar is
// enabled.
func (b *Bar) Printf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

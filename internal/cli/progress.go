package cli

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

// extractProgress reports per-segment progress. On a terminal it draws a
// progress bar; otherwise it prints one line per segment.
type extractProgress struct {
	w   io.Writer
	tty bool
	bar *progressbar.ProgressBar
}

func newExtractProgress(w io.Writer, tty bool) *extractProgress {
	return &extractProgress{w: w, tty: tty}
}

// Update records that done of total intervals have been handled.
func (p *extractProgress) Update(done, total int) {
	if !p.tty {
		_, _ = fmt.Fprintf(p.w, "  Segment %d/%d\n", done, total)
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetDescription("  Cutting"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set(done)
}

// Finish clears the bar, if any. Safe to call repeatedly.
func (p *extractProgress) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}

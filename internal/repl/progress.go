package repl

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Progress renders best-guess scans as a terminal progress bar. Its Update
// method is a solver.ProgressFunc.
type Progress struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func NewProgress(out io.Writer) *Progress {
	return &Progress{out: out}
}

// Update starts a bar on (0, total), advances it, and clears it when the scan
// completes. Calls must be serialized, which the solver guarantees.
func (p *Progress) Update(done, total int) {
	if done == 0 || p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription("scoring guesses"),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set(done)
	if done >= total {
		_ = p.bar.Finish()
		p.bar = nil
	}
}

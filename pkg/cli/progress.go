package cli

import (
	"time"

	"github.com/briandowns/spinner"
)

// progress renders the pipeline's step labels as a terminal spinner.
// Only the most recent label is shown; an empty label stops the spinner.
type progress struct {
	sp *spinner.Spinner
}

func newProgress() *progress {
	return &progress{
		sp: spinner.New(spinner.CharSets[14], 120*time.Millisecond),
	}
}

func (p *progress) Update(label string) {
	if label == "" {
		p.sp.Stop()
		return
	}

	p.sp.Suffix = " " + label
	if !p.sp.Active() {
		p.sp.Start()
	}
}

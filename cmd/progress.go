package cmd

import (
	"github.com/creativeprojects/mailsync/archive"
	"github.com/creativeprojects/mailsync/mailbox"
	"github.com/pterm/pterm"
)

// progresser moves the progress bar along the archive snapshots
type progresser struct {
	pbar *pterm.ProgressbarPrinter
	done int
}

var _ archive.Sink = &progresser{}

func newProgresser(pbar *pterm.ProgressbarPrinter) *progresser {
	return &progresser{
		pbar: pbar,
	}
}

func (p *progresser) Progress(progress mailbox.Progress) {
	if p.pbar == nil {
		return
	}
	current := progress.Completed + progress.Errors
	if current > p.done {
		p.pbar.Add(current - p.done)
		p.done = current
	}
	if progress.Errors > 0 {
		p.pbar.UpdateTitle(pterm.Sprintf("archiving (%d errors)", progress.Errors))
	}
}

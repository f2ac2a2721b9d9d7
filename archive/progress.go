package archive

import (
	"sync"
	"sync/atomic"

	"github.com/creativeprojects/mailsync/mailbox"
)

// Sink receives the progress snapshots of a run. Snapshots arrive in order.
type Sink interface {
	Progress(progress mailbox.Progress)
}

// SinkFunc adapts a function to a Sink
type SinkFunc func(progress mailbox.Progress)

func (f SinkFunc) Progress(progress mailbox.Progress) {
	f(progress)
}

type noSink struct{}

func (noSink) Progress(mailbox.Progress) {}

// Canceller is the shared cancellation flag of a run. A nil Canceller is never cancelled.
type Canceller struct {
	cancelled atomic.Bool
}

func NewCanceller() *Canceller {
	return &Canceller{}
}

// Cancel prevents new messages from being archived. Messages in flight finish normally.
func (c *Canceller) Cancel() {
	if c == nil {
		return
	}
	c.cancelled.Store(true)
}

func (c *Canceller) Cancelled() bool {
	if c == nil {
		return false
	}
	return c.cancelled.Load()
}

type tracker struct {
	mu        sync.Mutex
	progress  mailbox.Progress
	sink      Sink
	canceller *Canceller
}

func newTracker(total int, sink Sink, canceller *Canceller) *tracker {
	return &tracker{
		progress: mailbox.Progress{
			Total:  total,
			Active: total > 0 && !canceller.Cancelled(),
		},
		sink:      sink,
		canceller: canceller,
	}
}

func (t *tracker) start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sink.Progress(t.progress)
}

func (t *tracker) done(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.progress.Errors++
		t.progress.LastError = err.Error()
	} else {
		t.progress.Completed++
	}
	// the run stays active while messages are left and nobody cancelled it
	t.progress.Active = !t.canceller.Cancelled() && t.progress.Completed+t.progress.Errors < t.progress.Total
	t.sink.Progress(t.progress)
}

func (t *tracker) finish() mailbox.Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress.Active = false
	t.sink.Progress(t.progress)
	return t.progress
}

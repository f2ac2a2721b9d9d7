package archive

import (
	"context"
	"fmt"
	"sync"

	"github.com/creativeprojects/mailsync/cfg"
	"github.com/creativeprojects/mailsync/lib"
	"github.com/creativeprojects/mailsync/mailbox"
	"github.com/creativeprojects/mailsync/mdir"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Fetcher downloads a complete message. A nil message means the uid no longer exists.
type Fetcher interface {
	FetchMessage(ctx context.Context, account cfg.Account, mailboxName string, uid uint32) (*mailbox.FullMessage, error)
}

// Store receives the archived messages of one mailbox
type Store interface {
	PutIfAbsent(uid uint32, flags []string, raw []byte) (bool, error)
}

var (
	_ Store = &mdir.Folder{}

	archivedFlags = []string{mdir.FlagArchived, mdir.FlagSeen}
)

type Config struct {
	// Workers is the number of messages archived at the same time
	Workers int
	// Rate limits the number of messages started per second. Zero means no limit.
	Rate float64
	Sink Sink
	// DebugLogger receives a line per message
	DebugLogger lib.Logger
}

type Pipeline struct {
	fetcher Fetcher
	workers int64
	limiter *rate.Limiter
	sink    Sink
	log     lib.Logger
}

func NewPipeline(fetcher Fetcher, config Config) *Pipeline {
	workers := config.Workers
	if workers <= 0 {
		workers = cfg.DefaultArchiveWorkers
	}
	var limiter *rate.Limiter
	if config.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.Rate), workers)
	}
	sink := config.Sink
	if sink == nil {
		sink = noSink{}
	}
	return &Pipeline{
		fetcher: fetcher,
		workers: int64(workers),
		limiter: limiter,
		sink:    sink,
		log:     lib.OrNoLog(config.DebugLogger),
	}
}

// Run archives the messages into the store and returns the final progress.
// Failures are counted in the progress, they never stop the run.
// Run returns once every started message is done.
func (p *Pipeline) Run(ctx context.Context, account cfg.Account, mailboxName string, store Store, uids []uint32, canceller *Canceller) mailbox.Progress {
	progress := newTracker(len(uids), p.sink, canceller)
	progress.start()

	sem := semaphore.NewWeighted(p.workers)
	wg := sync.WaitGroup{}
	for _, uid := range uids {
		if canceller.Cancelled() || ctx.Err() != nil {
			p.log.Printf("archive of %q cancelled", mailboxName)
			break
		}
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				break
			}
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		if canceller.Cancelled() {
			sem.Release(1)
			p.log.Printf("archive of %q cancelled", mailboxName)
			break
		}
		wg.Add(1)
		go func(uid uint32) {
			defer wg.Done()
			defer sem.Release(1)
			if canceller.Cancelled() {
				return
			}
			err := p.archive(ctx, account, mailboxName, store, uid)
			if err != nil {
				p.log.Printf("cannot archive message uid=%d: %s", uid, err)
			}
			progress.done(err)
		}(uid)
	}
	wg.Wait()
	return progress.finish()
}

func (p *Pipeline) archive(ctx context.Context, account cfg.Account, mailboxName string, store Store, uid uint32) error {
	msg, err := p.fetcher.FetchMessage(ctx, account, mailboxName, uid)
	if err != nil {
		return fmt.Errorf("uid %d: %w", uid, err)
	}
	if msg == nil {
		return fmt.Errorf("uid %d: %w", uid, lib.ErrMessageNotFound)
	}
	saved, err := store.PutIfAbsent(uid, archivedFlags, msg.RawSource)
	if err != nil {
		return err
	}
	if !saved {
		p.log.Printf("message uid=%d was already archived", uid)
	}
	return nil
}

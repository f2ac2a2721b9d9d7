package cache

import (
	"context"
	"fmt"

	"github.com/creativeprojects/mailsync/cfg"
	"github.com/creativeprojects/mailsync/mailbox"
	"github.com/creativeprojects/mailsync/mdir"
)

// DeltaSource is the server side of a delta synchronization
type DeltaSource interface {
	Status(ctx context.Context, account cfg.Account, mailboxName string) (mailbox.Status, error)
	AllUIDs(ctx context.Context, account cfg.Account, mailboxName string) ([]uint32, error)
	HeadersByUIDs(ctx context.Context, account cfg.Account, mailboxName string, uids []uint32) ([]mailbox.Header, error)
}

type SyncResult struct {
	Added   int
	Removed int
	// Reset is true when the cached headers were dropped after a uid validity change
	Reset  bool
	Status mailbox.Status
}

// Sync brings the cached headers of the mailbox up to date with the server
func (c *Cache) Sync(ctx context.Context, source DeltaSource, account cfg.Account, mailboxName string) (SyncResult, error) {
	result := SyncResult{}
	tag := mdir.AccountID(account)

	status, err := source.Status(ctx, account, mailboxName)
	if err != nil {
		return result, err
	}
	result.Status = status

	previous, err := c.LoadStatus(tag, mailboxName)
	if err != nil {
		return result, err
	}
	if previous != nil && previous.UidValidity != status.UidValidity {
		c.log.Printf("uid validity of %q changed from %d to %d: clearing cache", mailboxName, previous.UidValidity, status.UidValidity)
		if err := c.Clear(tag, mailboxName); err != nil {
			return result, err
		}
		result.Reset = true
	}

	remote, err := source.AllUIDs(ctx, account, mailboxName)
	if err != nil {
		return result, err
	}
	local, err := c.UIDs(tag, mailboxName)
	if err != nil {
		return result, err
	}
	added, removed := diffUIDs(local, remote)

	if len(added) > 0 {
		headers, err := source.HeadersByUIDs(ctx, account, mailboxName, added)
		if err != nil {
			return result, fmt.Errorf("cannot fetch new headers: %w", err)
		}
		if err := c.SaveHeaders(tag, mailboxName, headers); err != nil {
			return result, err
		}
		result.Added = len(headers)
	}
	if err := c.RemoveHeaders(tag, mailboxName, removed); err != nil {
		return result, err
	}
	result.Removed = len(removed)

	if err := c.SaveStatus(tag, mailboxName, status); err != nil {
		return result, err
	}
	return result, nil
}

// diffUIDs takes two ascending lists
func diffUIDs(local, remote []uint32) (added, removed []uint32) {
	added = make([]uint32, 0)
	removed = make([]uint32, 0)
	i, j := 0, 0
	for i < len(local) || j < len(remote) {
		switch {
		case j == len(remote) || (i < len(local) && local[i] < remote[j]):
			removed = append(removed, local[i])
			i++
		case i == len(local) || remote[j] < local[i]:
			added = append(added, remote[j])
			j++
		default:
			i++
			j++
		}
	}
	return added, removed
}

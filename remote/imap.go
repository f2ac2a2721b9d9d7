package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/creativeprojects/mailsync/cfg"
	"github.com/creativeprojects/mailsync/classify"
	"github.com/creativeprojects/mailsync/lib"
	"github.com/creativeprojects/mailsync/mailbox"
	"github.com/creativeprojects/mailsync/pool"
	"github.com/emersion/go-imap"
	message "github.com/emersion/go-message/mail"
)

// TrashCandidates are tried in order when moving a message to the trash
var TrashCandidates = []string{"Trash", "[Gmail]/Trash", "Deleted Items", "Deleted"}

const testConnectionTimeout = 20 * time.Second

type Config struct {
	ConnectTimeout time.Duration
	DebugLogger    lib.Logger
}

// Imap runs mailbox operations on pooled sessions
type Imap struct {
	dialer *Dialer
	pool   *pool.Pool[*Session]
	log    lib.Logger
}

func NewImap(config Config) *Imap {
	log := lib.OrNoLog(config.DebugLogger)
	dialer := NewDialer(config.ConnectTimeout, log)
	return &Imap{
		dialer: dialer,
		pool:   pool.NewWithLogger(dialer.Dial, log),
		log:    log,
	}
}

func (i *Imap) Pool() *pool.Pool[*Session] {
	return i.pool
}

// Close logs out every idle session
func (i *Imap) Close() {
	i.pool.EvictAll()
}

// withSession borrows a session for one exchange. The session goes back to the pool
// on success and is dropped on any error.
func withSession[T any](ctx context.Context, i *Imap, kind pool.Kind, account cfg.Account, exchange func(*Session) (T, error)) (T, error) {
	session, err := i.pool.Acquire(ctx, kind, account)
	if err != nil {
		var empty T
		return empty, err
	}
	result, err := exchange(session)
	if err != nil {
		i.pool.Discard(session)
		return result, fmt.Errorf("%s: %w", account.Address, err)
	}
	i.pool.Release(kind, account, session)
	return result, nil
}

func (s *Session) selectMailbox(name string) (*imap.MailboxStatus, error) {
	status, err := s.Select(name, false)
	if err != nil {
		return nil, fmt.Errorf("cannot select mailbox %q: %w", name, err)
	}
	return status, nil
}

func (s *Session) fetch(byUID bool, seqset *imap.SeqSet, items []imap.FetchItem) ([]*imap.Message, error) {
	receiver := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	// fetch messages in the background
	go func() {
		if byUID {
			done <- s.UidFetch(seqset, items, receiver)
		} else {
			done <- s.Fetch(seqset, items, receiver)
		}
	}()

	messages := make([]*imap.Message, 0)
	for msg := range receiver {
		messages = append(messages, msg)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("cannot fetch messages %s: %w", seqset, err)
	}
	return messages, nil
}

// headers converts the messages, collecting the UIDs of those that cannot be parsed
func (s *Session) headers(messages []*imap.Message) ([]mailbox.Header, []uint32) {
	headers := make([]mailbox.Header, 0, len(messages))
	skipped := make([]uint32, 0)
	for _, msg := range messages {
		header, err := newHeader(msg)
		if err != nil {
			s.log.Printf("skipping message: %s", err)
			if msg != nil && msg.Uid > 0 {
				skipped = append(skipped, msg.Uid)
			}
			continue
		}
		headers = append(headers, header)
	}
	return headers, skipped
}

func (i *Imap) ListMailboxes(ctx context.Context, account cfg.Account) ([]*mailbox.Node, error) {
	return withSession(ctx, i, pool.Background, account, func(s *Session) ([]*mailbox.Node, error) {
		mailboxes := make(chan *imap.MailboxInfo, 10)
		done := make(chan error, 1)
		go func() {
			done <- s.List("", "*", mailboxes)
		}()

		nodes := make([]*mailbox.Node, 0, 10)
		for m := range mailboxes {
			s.log.Printf("* %q: %+v (delimiter = %q)", m.Name, m.Attributes, m.Delimiter)
			nodes = append(nodes, mailbox.NewNode(m.Name, m.Delimiter, m.Attributes))
		}
		if err := <-done; err != nil {
			return nil, fmt.Errorf("cannot list mailboxes: %w", err)
		}
		return mailbox.BuildTree(nodes), nil
	})
}

// FetchPage returns a page of headers, newest first
func (i *Imap) FetchPage(ctx context.Context, account cfg.Account, mailboxName string, page, limit uint32) (mailbox.Page, error) {
	return withSession(ctx, i, pool.Background, account, func(s *Session) (mailbox.Page, error) {
		status, err := s.selectMailbox(mailboxName)
		if err != nil {
			return mailbox.Page{}, err
		}
		total := status.Messages
		start, end, ok := PageRange(total, page, limit)
		if !ok {
			return mailbox.EmptyPage(total), nil
		}
		seqset := new(imap.SeqSet)
		seqset.AddRange(start, end)
		messages, err := s.fetch(false, seqset, headerItems)
		if err != nil {
			return mailbox.Page{}, err
		}
		headers, skipped := s.headers(messages)
		sort.Slice(headers, func(a, b int) bool {
			return headers[a].SeqNum > headers[b].SeqNum
		})
		return mailbox.Page{
			Headers:     headers,
			Total:       total,
			HasMore:     start > 1,
			SkippedUIDs: skipped,
		}, nil
	})
}

// FetchRange returns the headers between two display indices, 0 being the newest message
func (i *Imap) FetchRange(ctx context.Context, account cfg.Account, mailboxName string, startIndex, endIndex uint32) (mailbox.Page, error) {
	return withSession(ctx, i, pool.Background, account, func(s *Session) (mailbox.Page, error) {
		status, err := s.selectMailbox(mailboxName)
		if err != nil {
			return mailbox.Page{}, err
		}
		total := status.Messages
		start, end, ok := DisplayRange(total, startIndex, endIndex)
		if !ok {
			return mailbox.EmptyPage(total), nil
		}
		seqset := new(imap.SeqSet)
		seqset.AddRange(start, end)
		messages, err := s.fetch(false, seqset, headerItems)
		if err != nil {
			return mailbox.Page{}, err
		}
		headers, skipped := s.headers(messages)
		for index := range headers {
			displayIndex := DisplayIndex(total, headers[index].SeqNum)
			headers[index].DisplayIndex = &displayIndex
		}
		sort.Slice(headers, func(a, b int) bool {
			return *headers[a].DisplayIndex < *headers[b].DisplayIndex
		})
		return mailbox.Page{
			Headers:     headers,
			Total:       total,
			HasMore:     start > 1,
			SkippedUIDs: skipped,
		}, nil
	})
}

func (i *Imap) Status(ctx context.Context, account cfg.Account, mailboxName string) (mailbox.Status, error) {
	return withSession(ctx, i, pool.Background, account, func(s *Session) (mailbox.Status, error) {
		status, err := s.selectMailbox(mailboxName)
		if err != nil {
			return mailbox.Status{}, err
		}
		return mailbox.Status{
			Messages:    status.Messages,
			UidValidity: status.UidValidity,
			UidNext:     status.UidNext,
		}, nil
	})
}

// AllUIDs returns every UID of the mailbox in ascending order
func (i *Imap) AllUIDs(ctx context.Context, account cfg.Account, mailboxName string) ([]uint32, error) {
	return withSession(ctx, i, pool.Background, account, func(s *Session) ([]uint32, error) {
		if _, err := s.selectMailbox(mailboxName); err != nil {
			return nil, err
		}
		uids, err := s.UidSearch(imap.NewSearchCriteria())
		if err != nil {
			return nil, fmt.Errorf("cannot search mailbox %q: %w", mailboxName, err)
		}
		slices.Sort(uids)
		return uids, nil
	})
}

// HeadersByUIDs returns the headers of the messages still present, highest UID first
func (i *Imap) HeadersByUIDs(ctx context.Context, account cfg.Account, mailboxName string, uids []uint32) ([]mailbox.Header, error) {
	if len(uids) == 0 {
		return make([]mailbox.Header, 0), nil
	}
	return withSession(ctx, i, pool.Background, account, func(s *Session) ([]mailbox.Header, error) {
		if _, err := s.selectMailbox(mailboxName); err != nil {
			return nil, err
		}
		seqset := new(imap.SeqSet)
		seqset.AddNum(uids...)
		messages, err := s.fetch(true, seqset, headerItems)
		if err != nil {
			return nil, err
		}
		headers, _ := s.headers(messages)
		sort.Slice(headers, func(a, b int) bool {
			return headers[a].UID > headers[b].UID
		})
		return headers, nil
	})
}

// FetchMessage downloads and decodes a message. It returns nil when the UID no longer exists.
func (i *Imap) FetchMessage(ctx context.Context, account cfg.Account, mailboxName string, uid uint32) (*mailbox.FullMessage, error) {
	return withSession(ctx, i, pool.Interactive, account, func(s *Session) (*mailbox.FullMessage, error) {
		return s.fetchFull(mailboxName, uid)
	})
}

// FetchLight is FetchMessage without the attachment payloads in the JSON projection
func (i *Imap) FetchLight(ctx context.Context, account cfg.Account, mailboxName string, uid uint32) (*mailbox.LightMessage, error) {
	return withSession(ctx, i, pool.Interactive, account, func(s *Session) (*mailbox.LightMessage, error) {
		full, err := s.fetchFull(mailboxName, uid)
		if err != nil || full == nil {
			return nil, err
		}
		return full.Light(), nil
	})
}

func (s *Session) fetchFull(mailboxName string, uid uint32) (*mailbox.FullMessage, error) {
	if _, err := s.selectMailbox(mailboxName); err != nil {
		return nil, err
	}
	seqset := new(imap.SeqSet)
	seqset.AddNum(uid)
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{
		imap.FetchUid,
		imap.FetchFlags,
		imap.FetchEnvelope,
		imap.FetchInternalDate,
		imap.FetchRFC822Size,
		section.FetchItem(),
	}
	messages, err := s.fetch(true, seqset, items)
	if err != nil {
		return nil, err
	}
	var msg *imap.Message
	for _, candidate := range messages {
		if candidate.Uid == uid {
			msg = candidate
			break
		}
	}
	if msg == nil {
		return nil, nil
	}
	body := msg.GetBody(section)
	if body == nil {
		return nil, fmt.Errorf("no body in message uid=%d", uid)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("cannot read message uid=%d: %w", uid, err)
	}
	return buildFullMessage(msg, raw, s.log)
}

func buildFullMessage(msg *imap.Message, raw []byte, log lib.Logger) (*mailbox.FullMessage, error) {
	header, err := newHeader(msg)
	if err != nil {
		return nil, err
	}
	root, err := classify.ParseWithLogger(bytes.NewReader(raw), log)
	if err != nil {
		return nil, fmt.Errorf("message uid=%d: %w", msg.Uid, err)
	}
	replyTo := applyMessageHeader(&header, message.Header{Header: root.Header})
	content := classify.Refine(classify.Fold(root))
	header.HasAttachments = classify.HasRealAttachments(content.Attachments)

	return &mailbox.FullMessage{
		Header:      header,
		ReplyTo:     replyTo,
		Text:        content.Text,
		HTML:        content.HTML,
		Attachments: content.Attachments,
		RawSource:   raw,
	}, nil
}

// SetFlags adds or removes flags on a message
func (i *Imap) SetFlags(ctx context.Context, account cfg.Account, mailboxName string, uid uint32, flags []string, add bool) error {
	_, err := withSession(ctx, i, pool.Interactive, account, func(s *Session) (struct{}, error) {
		if _, err := s.selectMailbox(mailboxName); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, s.storeFlags(uid, lib.NormalizeFlags(flags), add)
	})
	return err
}

func (s *Session) storeFlags(uid uint32, flags []string, add bool) error {
	var op imap.FlagsOp = imap.RemoveFlags
	if add {
		op = imap.AddFlags
	}
	seqset := new(imap.SeqSet)
	seqset.AddNum(uid)
	values := make([]interface{}, len(flags))
	for index, flag := range flags {
		values[index] = flag
	}
	s.log.Printf("uid=%d %s %v", uid, op, flags)
	if err := s.UidStore(seqset, imap.FormatFlagsOp(op, true), values, nil); err != nil {
		return fmt.Errorf("cannot store flags on uid=%d: %w", uid, err)
	}
	return nil
}

// Delete expunges the message when permanent, otherwise moves it to the first trash
// mailbox that accepts it. Without trash mailbox the message is only flagged as deleted.
func (i *Imap) Delete(ctx context.Context, account cfg.Account, mailboxName string, uid uint32, permanent bool) error {
	_, err := withSession(ctx, i, pool.Interactive, account, func(s *Session) (struct{}, error) {
		if _, err := s.selectMailbox(mailboxName); err != nil {
			return struct{}{}, err
		}
		if permanent {
			return struct{}{}, s.expunge(uid)
		}
		moved, err := moveToTrash(mailboxName, func(trash string) (bool, error) {
			return s.move(uid, trash)
		}, s.log)
		if err != nil {
			return struct{}{}, fmt.Errorf("uid=%d: %w", uid, err)
		}
		if moved {
			return struct{}{}, nil
		}
		return struct{}{}, s.storeFlags(uid, []string{imap.DeletedFlag}, true)
	})
	return err
}

// moveToTrash tries the trash candidates in order. Once a copy landed in a trash folder
// the next candidates are never tried: a failure after the copy is returned as is.
func moveToTrash(source string, move func(trash string) (copied bool, err error), log lib.Logger) (bool, error) {
	log = lib.OrNoLog(log)
	for _, trash := range TrashCandidates {
		if trash == source {
			continue
		}
		copied, err := move(trash)
		if err == nil {
			log.Printf("moved to %q", trash)
			return true, nil
		}
		if copied {
			return false, fmt.Errorf("copied to %q but the source was not removed: %w", trash, err)
		}
		log.Printf("cannot move to %q: %s", trash, err)
	}
	return false, nil
}

// expunge removes only this UID, never the other messages flagged as deleted
func (s *Session) expunge(uid uint32) error {
	if err := s.storeFlags(uid, []string{imap.DeletedFlag}, true); err != nil {
		return err
	}
	if s.uidplusClient == nil {
		return fmt.Errorf("cannot expunge uid=%d: %w", uid, lib.ErrNoUidExpunge)
	}
	seqset := new(imap.SeqSet)
	seqset.AddNum(uid)
	if err := s.uidplusClient.UidExpunge(seqset, nil); err != nil {
		return fmt.Errorf("cannot expunge uid=%d: %w", uid, err)
	}
	return nil
}

// move uses MOVE when the server accepts it, otherwise COPY then flag the source as deleted.
// copied reports whether the message already sits in the destination.
func (s *Session) move(uid uint32, destination string) (copied bool, err error) {
	seqset := new(imap.SeqSet)
	seqset.AddNum(uid)
	if ok, _ := s.Support("MOVE"); ok {
		err := s.UidMove(seqset, destination)
		if err == nil {
			return true, nil
		}
		s.log.Printf("MOVE to %q refused: %s", destination, err)
	}
	if err := s.UidCopy(seqset, destination); err != nil {
		return false, err
	}
	if err := s.storeFlags(uid, []string{imap.DeletedFlag}, true); err != nil {
		return true, err
	}
	if s.uidplusClient != nil {
		return true, s.uidplusClient.UidExpunge(seqset, nil)
	}
	return true, nil
}

// Query is a conjunction of search criteria. Dates use the YYYY-MM-DD format.
type Query struct {
	Text    string
	From    string
	Subject string
	Since   string
	Before  string
}

// Criteria returns nil when the query has no usable criterion. Malformed dates are ignored.
func (q Query) Criteria() *imap.SearchCriteria {
	criteria := imap.NewSearchCriteria()
	empty := true
	if text := strings.TrimSpace(q.Text); text != "" {
		criteria.Text = append(criteria.Text, text)
		empty = false
	}
	if from := strings.TrimSpace(q.From); from != "" {
		criteria.Header.Add("From", from)
		empty = false
	}
	if subject := strings.TrimSpace(q.Subject); subject != "" {
		criteria.Header.Add("Subject", subject)
		empty = false
	}
	if since, err := time.Parse(time.DateOnly, strings.TrimSpace(q.Since)); err == nil {
		criteria.Since = since
		empty = false
	}
	if before, err := time.Parse(time.DateOnly, strings.TrimSpace(q.Before)); err == nil {
		criteria.Before = before
		empty = false
	}
	if empty {
		return nil
	}
	return criteria
}

// Search runs a server side search. Only the most recent matches are fetched.
func (i *Imap) Search(ctx context.Context, account cfg.Account, mailboxName string, query Query) (mailbox.Page, error) {
	criteria := query.Criteria()
	if criteria == nil {
		return mailbox.EmptyPage(0), nil
	}
	return withSession(ctx, i, pool.Background, account, func(s *Session) (mailbox.Page, error) {
		if _, err := s.selectMailbox(mailboxName); err != nil {
			return mailbox.Page{}, err
		}
		uids, err := s.UidSearch(criteria)
		if err != nil {
			return mailbox.Page{}, fmt.Errorf("cannot search mailbox %q: %w", mailboxName, err)
		}
		total := uint32(len(uids))
		if total == 0 {
			return mailbox.EmptyPage(0), nil
		}
		slices.Sort(uids)
		if len(uids) > SearchLimit {
			uids = uids[len(uids)-SearchLimit:]
		}
		seqset := new(imap.SeqSet)
		seqset.AddNum(uids...)
		messages, err := s.fetch(true, seqset, headerItems)
		if err != nil {
			return mailbox.Page{}, err
		}
		headers, skipped := s.headers(messages)
		for index := range headers {
			headers[index].Source = mailbox.SourceServerSearch
		}
		sort.SliceStable(headers, func(a, b int) bool {
			return headers[a].SortKey() > headers[b].SortKey()
		})
		return mailbox.Page{
			Headers:     headers,
			Total:       total,
			HasMore:     total > SearchLimit,
			SkippedUIDs: skipped,
		}, nil
	})
}

// TestConnection opens and closes a session outside of the pool
func (i *Imap) TestConnection(ctx context.Context, account cfg.Account) error {
	ctx, cancel := context.WithTimeout(ctx, testConnectionTimeout)
	defer cancel()

	result := make(chan error, 1)
	go func() {
		session, err := i.dialer.Dial(ctx, account)
		if err != nil {
			result <- err
			return
		}
		result <- session.Logout()
	}()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return fmt.Errorf("connection test for %s: %w", account.Address, ctx.Err())
	}
}

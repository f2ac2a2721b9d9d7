package cache

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"github.com/creativeprojects/mailsync/cfg"
	"github.com/creativeprojects/mailsync/lib"
	"github.com/creativeprojects/mailsync/mailbox"
	"github.com/creativeprojects/mailsync/mdir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTag = "0123456789abcdef0123456789abcdef"

func openCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := OpenWithLogger(filepath.Join(t.TempDir(), "cache", "headers.db"), lib.NewTestLogger(t, "cache"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = cache.Close()
	})
	return cache
}

func headers(uids ...uint32) []mailbox.Header {
	output := make([]mailbox.Header, len(uids))
	for i, uid := range uids {
		output[i] = mailbox.Header{UID: uid, Subject: "subject", Flags: []string{}}
	}
	return output
}

func uidsOf(headers []mailbox.Header) []uint32 {
	uids := make([]uint32, len(headers))
	for i, header := range headers {
		uids[i] = header.UID
	}
	return uids
}

func TestSaveLoadClear(t *testing.T) {
	cache := openCache(t)

	list, err := cache.LoadHeaders(testTag, "INBOX")
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, cache.SaveHeaders(testTag, "INBOX", headers(3, 300, 1)))
	require.NoError(t, cache.SaveHeaders(testTag, "Sent", headers(8)))

	list, err = cache.LoadHeaders(testTag, "INBOX")
	require.NoError(t, err)
	assert.Equal(t, []uint32{300, 3, 1}, uidsOf(list))

	uids, err := cache.UIDs(testTag, "INBOX")
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 3, 300}, uids)

	require.NoError(t, cache.RemoveHeaders(testTag, "INBOX", []uint32{3}))
	list, err = cache.LoadHeaders(testTag, "INBOX")
	require.NoError(t, err)
	assert.Equal(t, []uint32{300, 1}, uidsOf(list))

	require.NoError(t, cache.Clear(testTag, "INBOX"))
	list, err = cache.LoadHeaders(testTag, "INBOX")
	require.NoError(t, err)
	assert.Empty(t, list)

	// other mailboxes are untouched
	list, err = cache.LoadHeaders(testTag, "Sent")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, cache.ClearAccount(testTag))
	list, err = cache.LoadHeaders(testTag, "Sent")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, cache.Clear(testTag, "Sent"))
}

func TestSaveReplacesHeader(t *testing.T) {
	cache := openCache(t)
	require.NoError(t, cache.SaveHeaders(testTag, "INBOX", headers(5)))

	updated := headers(5)
	updated[0].Flags = []string{"\\Seen"}
	require.NoError(t, cache.SaveHeaders(testTag, "INBOX", updated))

	list, err := cache.LoadHeaders(testTag, "INBOX")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"\\Seen"}, list[0].Flags)
}

func TestStatus(t *testing.T) {
	cache := openCache(t)

	status, err := cache.LoadStatus(testTag, "INBOX")
	require.NoError(t, err)
	assert.Nil(t, status)

	require.NoError(t, cache.SaveStatus(testTag, "INBOX", mailbox.Status{Messages: 2, UidValidity: 7, UidNext: 10}))
	status, err = cache.LoadStatus(testTag, "INBOX")
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, uint32(7), status.UidValidity)
}

func TestReopen(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "headers.db")
	cache, err := Open(filename)
	require.NoError(t, err)
	require.NoError(t, cache.SaveHeaders(testTag, "INBOX", headers(1, 2)))
	require.NoError(t, cache.Close())

	cache, err = Open(filename)
	require.NoError(t, err)
	defer cache.Close()
	list, err := cache.LoadHeaders(testTag, "INBOX")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestBackup(t *testing.T) {
	cache := openCache(t)
	require.NoError(t, cache.SaveHeaders(testTag, "INBOX", headers(1)))

	filename := filepath.Join(t.TempDir(), "backup.db")
	require.NoError(t, cache.Backup(filename))

	backup, err := Open(filename)
	require.NoError(t, err)
	defer backup.Close()
	list, err := backup.LoadHeaders(testTag, "INBOX")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDiffUIDs(t *testing.T) {
	testData := []struct {
		local   []uint32
		remote  []uint32
		added   []uint32
		removed []uint32
	}{
		{nil, nil, []uint32{}, []uint32{}},
		{nil, []uint32{1, 2}, []uint32{1, 2}, []uint32{}},
		{[]uint32{1, 2}, nil, []uint32{}, []uint32{1, 2}},
		{[]uint32{1, 2, 3}, []uint32{1, 2, 3}, []uint32{}, []uint32{}},
		{[]uint32{1, 3, 5}, []uint32{2, 3, 6, 7}, []uint32{2, 6, 7}, []uint32{1, 5}},
	}

	for _, testItem := range testData {
		added, removed := diffUIDs(testItem.local, testItem.remote)
		assert.Equal(t, testItem.added, added)
		assert.Equal(t, testItem.removed, removed)
	}
}

type fakeSource struct {
	status  mailbox.Status
	uids    []uint32
	fetched [][]uint32
	err     error
}

func (s *fakeSource) Status(ctx context.Context, account cfg.Account, mailboxName string) (mailbox.Status, error) {
	return s.status, s.err
}

func (s *fakeSource) AllUIDs(ctx context.Context, account cfg.Account, mailboxName string) ([]uint32, error) {
	return s.uids, nil
}

func (s *fakeSource) HeadersByUIDs(ctx context.Context, account cfg.Account, mailboxName string, uids []uint32) ([]mailbox.Header, error) {
	s.fetched = append(s.fetched, uids)
	list := headers(uids...)
	sort.Slice(list, func(i, j int) bool { return list[i].UID > list[j].UID })
	return list, nil
}

func TestSync(t *testing.T) {
	cache := openCache(t)
	account := cfg.Account{Address: "me@example.com", IMAP: cfg.Server{Host: "imap.example.com"}}
	tag := mdir.AccountID(account)
	ctx := context.Background()

	source := &fakeSource{
		status: mailbox.Status{Messages: 3, UidValidity: 1, UidNext: 4},
		uids:   []uint32{1, 2, 3},
	}
	result, err := cache.Sync(ctx, source, account, "INBOX")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Added)
	assert.Zero(t, result.Removed)
	assert.False(t, result.Reset)

	// one message deleted, two new ones
	source.uids = []uint32{1, 3, 4, 5}
	source.status = mailbox.Status{Messages: 4, UidValidity: 1, UidNext: 6}
	result, err = cache.Sync(ctx, source, account, "INBOX")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 1, result.Removed)
	assert.Equal(t, []uint32{4, 5}, source.fetched[1])

	list, err := cache.LoadHeaders(tag, "INBOX")
	require.NoError(t, err)
	assert.Equal(t, []uint32{5, 4, 3, 1}, uidsOf(list))

	// nothing changed: no fetch
	result, err = cache.Sync(ctx, source, account, "INBOX")
	require.NoError(t, err)
	assert.Zero(t, result.Added)
	assert.Zero(t, result.Removed)
	assert.Len(t, source.fetched, 2)

	// the server renumbered the mailbox
	source.uids = []uint32{1, 2}
	source.status = mailbox.Status{Messages: 2, UidValidity: 2, UidNext: 3}
	result, err = cache.Sync(ctx, source, account, "INBOX")
	require.NoError(t, err)
	assert.True(t, result.Reset)
	assert.Equal(t, 2, result.Added)
	assert.Zero(t, result.Removed)

	list, err = cache.LoadHeaders(tag, "INBOX")
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 1}, uidsOf(list))
	status, err := cache.LoadStatus(tag, "INBOX")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), status.UidValidity)
}

func TestSyncError(t *testing.T) {
	cache := openCache(t)
	source := &fakeSource{err: errors.New("connection refused")}

	_, err := cache.Sync(context.Background(), source, cfg.Account{}, "INBOX")
	assert.Error(t, err)
}

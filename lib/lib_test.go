package lib

import (
	"testing"

	"github.com/emersion/go-imap"
	"github.com/stretchr/testify/assert"
)

func TestMailboxPath(t *testing.T) {
	fixtures := []struct {
		path      string
		delimiter string
		leaf      string
		parent    string
	}{
		{"INBOX", "/", "INBOX", ""},
		{"INBOX/Work", "/", "Work", "INBOX"},
		{"INBOX/Work/2024", "/", "2024", "INBOX/Work"},
		{"[Gmail].Sent Mail", ".", "Sent Mail", "[Gmail]"},
		{"Archive", "", "Archive", ""},
	}

	for _, fixture := range fixtures {
		t.Run(fixture.path, func(t *testing.T) {
			assert.Equal(t, fixture.leaf, LeafName(fixture.path, fixture.delimiter))
			assert.Equal(t, fixture.parent, ParentPath(fixture.path, fixture.delimiter))
		})
	}
}

func TestNormalizeFlag(t *testing.T) {
	fixtures := []struct {
		input    string
		expected string
	}{
		{imap.SeenFlag, imap.SeenFlag},
		{imap.DeletedFlag, imap.DeletedFlag},
		{"Seen", "\\Seen"},
		{"\\Important", "\\Important"},
		{"Junk", "\\Junk"},
	}

	for _, fixture := range fixtures {
		assert.Equal(t, fixture.expected, NormalizeFlag(fixture.input))
	}
	assert.Equal(t, []string{"\\Seen", "\\Flagged"}, NormalizeFlags([]string{"Seen", "", "\\Flagged"}))
}

func TestStripRecentFlag(t *testing.T) {
	assert.Equal(t, []string{imap.SeenFlag}, StripRecentFlag([]string{imap.RecentFlag, imap.SeenFlag}))
}

func TestAccountTag(t *testing.T) {
	tag := AccountTag("imap.example.com", "me@example.com")
	assert.Len(t, tag, 32)
	assert.Equal(t, tag, AccountTag("imap.example.com", "me@example.com"))
	assert.NotEqual(t, tag, AccountTag("imap.example.com", "you@example.com"))
}

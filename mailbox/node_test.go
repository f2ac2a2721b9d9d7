package mailbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectSpecialUse(t *testing.T) {
	fixtures := []struct {
		path       string
		attributes []string
		expected   SpecialUse
	}{
		{"INBOX", nil, SpecialInbox},
		{"inbox", nil, SpecialInbox},
		{"INBOX/Sent", nil, SpecialSent},
		{"Whatever", []string{"\\Sent"}, SpecialSent},
		{"[Gmail]/Bin", []string{"\\HasNoChildren", "\\Trash"}, SpecialTrash},
		{"Deleted Items", nil, SpecialTrash},
		{"Drafts", nil, SpecialDrafts},
		{"Spam", nil, SpecialJunk},
		{"Old", []string{"\\Archive"}, SpecialArchive},
		{"Archives 2020", nil, SpecialArchive},
		{"Work", []string{"\\HasNoChildren"}, SpecialNone},
		// attributes win over the name
		{"Sent", []string{"\\Junk"}, SpecialJunk},
	}

	for _, fixture := range fixtures {
		t.Run(fixture.path, func(t *testing.T) {
			assert.Equal(t, fixture.expected, DetectSpecialUse(fixture.path, fixture.attributes))
		})
	}
}

func TestNewNode(t *testing.T) {
	node := NewNode("[Gmail]/All Mail", "/", []string{"\\All"})
	assert.Equal(t, "All Mail", node.Name)
	assert.True(t, node.Selectable)

	node = NewNode("[Gmail]", "/", []string{"\\Noselect", "\\HasChildren"})
	assert.False(t, node.Selectable)

	node = NewNode("Ghost", "/", []string{"\\NonExistent"})
	assert.False(t, node.Selectable)
}

func TestBuildTree(t *testing.T) {
	nodes := []*Node{
		NewNode("INBOX", "/", nil),
		NewNode("INBOX/Work", "/", nil),
		NewNode("Orphan/Child", "/", nil),
		NewNode("[Gmail]", "/", []string{"\\Noselect"}),
		NewNode("[Gmail]/Sent Mail", "/", []string{"\\Sent"}),
		NewNode("INBOX/Work/Deep", "/", nil),
	}
	tree := BuildTree(nodes)
	require.Len(t, tree, 4)
	assert.Equal(t, "INBOX", tree[0].Path)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "INBOX/Work", tree[0].Children[0].Path)
	assert.Equal(t, "Orphan/Child", tree[1].Path)
	assert.Equal(t, "[Gmail]", tree[2].Path)
	require.Len(t, tree[2].Children, 1)
	assert.Equal(t, SpecialSent, tree[2].Children[0].SpecialUse)
	// parent is not a top-level node
	assert.Equal(t, "INBOX/Work/Deep", tree[3].Path)

	assert.NotNil(t, Find(tree, "[Gmail]/Sent Mail"))
	assert.Nil(t, Find(tree, "Nowhere"))
}

func TestBuildTreeChildBeforeParent(t *testing.T) {
	nodes := []*Node{
		NewNode("INBOX/Work", "/", nil),
		NewNode("INBOX", "/", nil),
		NewNode("INBOX/Later", "/", nil),
	}
	tree := BuildTree(nodes)
	require.Len(t, tree, 2)
	// listed before its parent: promoted to the top level
	assert.Equal(t, "INBOX/Work", tree[0].Path)
	assert.Empty(t, tree[0].Children)
	assert.Equal(t, "INBOX", tree[1].Path)
	require.Len(t, tree[1].Children, 1)
	assert.Equal(t, "INBOX/Later", tree[1].Children[0].Path)
}

func TestBuildTreeKeepsListingOrder(t *testing.T) {
	nodes := []*Node{
		NewNode("Trash", "/", nil),
		NewNode("INBOX", "/", nil),
		NewNode("INBOX/B", "/", nil),
		NewNode("Archive", "/", nil),
		NewNode("INBOX/A", "/", nil),
	}
	tree := BuildTree(nodes)
	paths := make([]string, len(tree))
	for index, node := range tree {
		paths[index] = node.Path
	}
	assert.Equal(t, []string{"Trash", "INBOX", "Archive"}, paths)
	require.Len(t, tree[1].Children, 2)
	assert.Equal(t, "INBOX/B", tree[1].Children[0].Path)
	assert.Equal(t, "INBOX/A", tree[1].Children[1].Path)
}

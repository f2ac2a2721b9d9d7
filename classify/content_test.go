package classify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/creativeprojects/mailsync/lib"
	"github.com/creativeprojects/mailsync/mailbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classifyMessage(t *testing.T, html string, parts ...lib.EmailPart) Content {
	t.Helper()
	raw := lib.GenerateMultipart(lib.EmailSpec{
		From:    "sender@example.com",
		To:      "me@example.com",
		Subject: "test",
		Text:    "plain body",
		HTML:    html,
		Parts:   parts,
	})
	content, err := Classify(bytes.NewReader(raw))
	require.NoError(t, err)
	return content
}

func TestBodyExtraction(t *testing.T) {
	content := classifyMessage(t, "<p>html body</p>")
	assert.Equal(t, "plain body", strings.TrimSpace(content.Text))
	assert.Equal(t, "<p>html body</p>", strings.TrimSpace(content.HTML))
	assert.Empty(t, content.Attachments)
	assert.False(t, HasRealAttachments(content.Attachments))
}

func TestFirstBodyPartWins(t *testing.T) {
	root := &Part{Kind: Container, Children: []*Part{
		{Kind: Leaf, ContentType: "text/plain", Body: []byte("first")},
		{Kind: Container, Children: []*Part{
			{Kind: Leaf, ContentType: "text/plain", Body: []byte("second")},
			{Kind: Leaf, ContentType: "text/html", Body: []byte("<b>first</b>")},
		}},
		{Kind: Leaf, ContentType: "text/html", Body: []byte("<b>second</b>")},
		{Kind: Leaf, ContentType: "text/plain", Disposition: "attachment", Filename: "notes.txt", Body: []byte("notes")},
	}}
	content := Fold(root)
	assert.Equal(t, "first", content.Text)
	assert.Equal(t, "<b>first</b>", content.HTML)
	require.Len(t, content.Attachments, 1)
	assert.Equal(t, "notes.txt", content.Attachments[0].Filename)
	assert.False(t, content.Attachments[0].Inline)
}

func TestEmbeddedImageIsNotReal(t *testing.T) {
	content := classifyMessage(t, `<img src="cid:logo@example">`, lib.EmailPart{
		ContentType: "image/png",
		Disposition: "inline",
		ContentID:   "logo@example",
		Body:        lib.RandomBytes(20000),
	})
	require.Len(t, content.Attachments, 1)
	attachment := content.Attachments[0]
	assert.Equal(t, "logo@example", attachment.ContentID)
	assert.True(t, attachment.Inline)
	assert.False(t, attachment.Real)
	assert.False(t, HasRealAttachments(content.Attachments))
}

func TestUnreferencedImageIsReal(t *testing.T) {
	content := classifyMessage(t, `<p>no image here</p>`, lib.EmailPart{
		ContentType: "image/png",
		Disposition: "inline",
		ContentID:   "photo@example",
		Filename:    "photo.png",
		Body:        lib.RandomBytes(100),
	})
	require.Len(t, content.Attachments, 1)
	assert.True(t, content.Attachments[0].Real)
	assert.True(t, HasRealAttachments(content.Attachments))
}

func TestTrackingPixel(t *testing.T) {
	fixtures := []struct {
		size     int
		expected bool
	}{
		{43, false},
		{TrackingPixelSize - 1, false},
		{TrackingPixelSize, true},
		{TrackingPixelSize + 1, true},
	}

	for _, fixture := range fixtures {
		content := classifyMessage(t, "<p>hi</p>", lib.EmailPart{
			ContentType: "image/gif",
			Body:        lib.RandomBytes(fixture.size),
		})
		require.Len(t, content.Attachments, 1)
		assert.Equal(t, fixture.size, content.Attachments[0].Size)
		assert.Equalf(t, fixture.expected, content.Attachments[0].Real, "image of %d bytes", fixture.size)
	}
}

func TestNonImageAttachmentIsAlwaysReal(t *testing.T) {
	content := classifyMessage(t, `<img src="cid:doc@example">`, lib.EmailPart{
		ContentType: "application/pdf",
		Disposition: "attachment",
		ContentID:   "doc@example",
		Body:        []byte("%PDF"),
	})
	require.Len(t, content.Attachments, 1)
	assert.Equal(t, "application/pdf", content.Attachments[0].ContentType)
	assert.True(t, content.Attachments[0].Real)
}

func TestFilenameFromContentType(t *testing.T) {
	content := classifyMessage(t, "", lib.EmailPart{
		ContentType: "application/zip",
		Filename:    "archive.zip",
		Body:        []byte("PK"),
	})
	require.Len(t, content.Attachments, 1)
	assert.Equal(t, "archive.zip", content.Attachments[0].Filename)
}

func TestIsReal(t *testing.T) {
	html := `<img src="cid:a">`
	assert.False(t, IsReal(mailbox.AttachmentInfo{ContentType: "image/png", ContentID: "a", Filename: "a.png", Size: 90000}, html))
	assert.True(t, IsReal(mailbox.AttachmentInfo{ContentType: "image/png", ContentID: "b", Filename: "b.png"}, html))
	assert.True(t, IsReal(mailbox.AttachmentInfo{ContentType: "text/calendar"}, html))
}

func TestStripContentID(t *testing.T) {
	assert.Equal(t, "abc@x", StripContentID("<abc@x>"))
	assert.Equal(t, "abc@x", StripContentID(" abc@x "))
	assert.Equal(t, "", StripContentID(""))
}

func TestParsePlainMessage(t *testing.T) {
	content, err := Classify(bytes.NewReader(lib.GenerateEmail("a@b.c", "d@e.f", 1)))
	require.NoError(t, err)
	assert.Empty(t, content.Attachments)
	assert.Empty(t, content.HTML)
}

func TestTruncatedAttachmentKeepsBody(t *testing.T) {
	raw := lib.GenerateMultipart(lib.EmailSpec{
		From:    "sender@example.com",
		To:      "me@example.com",
		Subject: "truncated",
		Text:    "plain body",
		HTML:    "<p>html body</p>",
		Parts: []lib.EmailPart{
			{ContentType: "application/pdf", Disposition: "attachment", Filename: "report.pdf", Body: lib.RandomBytes(3000)},
		},
	})
	cut := bytes.Index(raw, []byte("Content-Transfer-Encoding: base64"))
	require.Positive(t, cut)
	raw = raw[:cut+200]

	root, err := ParseWithLogger(bytes.NewReader(raw), lib.NewTestLogger(t, "classify"))
	require.NoError(t, err)
	require.NotNil(t, root)
	content := Refine(Fold(root))
	assert.Equal(t, "plain body", strings.TrimSpace(content.Text))
	assert.Equal(t, "<p>html body</p>", strings.TrimSpace(content.HTML))
	assert.Empty(t, content.Attachments)

	content, err = Classify(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "plain body", strings.TrimSpace(content.Text))
}

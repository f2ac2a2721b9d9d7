package classify

import (
	"io"
	"strings"

	"github.com/creativeprojects/mailsync/mailbox"
)

// TrackingPixelSize is the size under which an unnamed image is considered a tracking pixel
const TrackingPixelSize = 5000

// Content is the user visible content of a message
type Content struct {
	Text        string
	HTML        string
	Attachments []mailbox.Attachment

	hasText bool
	hasHTML bool
}

// Fold walks the tree depth first: the first text/plain and the first text/html
// leaves become the body, attachments and inline non-text leaves are collected.
func Fold(root *Part) Content {
	return fold(root, Content{Attachments: make([]mailbox.Attachment, 0)})
}

func fold(part *Part, acc Content) Content {
	if part == nil {
		return acc
	}
	if part.Kind == Container {
		for _, child := range part.Children {
			acc = fold(child, acc)
		}
		return acc
	}

	isText := strings.HasPrefix(part.ContentType, "text/")
	// a missing disposition means inline
	isInline := part.Disposition == "" || part.Disposition == "inline"
	if part.Disposition == "attachment" || (isInline && !isText) {
		acc.Attachments = append(acc.Attachments, mailbox.Attachment{
			AttachmentInfo: mailbox.AttachmentInfo{
				Filename:    part.Filename,
				ContentType: part.ContentType,
				ContentID:   part.ContentID,
				Size:        len(part.Body),
				Inline:      part.Disposition != "attachment",
			},
			Content: part.Body,
		})
		return acc
	}
	switch {
	case part.ContentType == "text/plain" && !acc.hasText:
		acc.Text = string(part.Body)
		acc.hasText = true
	case part.ContentType == "text/html" && !acc.hasHTML:
		acc.HTML = string(part.Body)
		acc.hasHTML = true
	}
	return acc
}

// IsReal tells whether an attachment is something the user would want to see listed.
// Images referenced from the html body and small unnamed images are not.
func IsReal(info mailbox.AttachmentInfo, html string) bool {
	if !strings.HasPrefix(strings.ToLower(info.ContentType), "image/") {
		return true
	}
	if info.ContentID != "" && strings.Contains(html, "cid:"+info.ContentID) {
		return false
	}
	if info.Filename == "" && info.Size < TrackingPixelSize {
		return false
	}
	return true
}

// Refine sets the Real indicator on every attachment
func Refine(content Content) Content {
	for i := range content.Attachments {
		content.Attachments[i].Real = IsReal(content.Attachments[i].AttachmentInfo, content.HTML)
	}
	return content
}

func HasRealAttachments(attachments []mailbox.Attachment) bool {
	for _, attachment := range attachments {
		if attachment.Real {
			return true
		}
	}
	return false
}

// Classify parses, folds and refines a raw message
func Classify(r io.Reader) (Content, error) {
	root, err := Parse(r)
	if err != nil {
		return Content{}, err
	}
	return Refine(Fold(root)), nil
}

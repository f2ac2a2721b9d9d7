package mailbox

import "strings"

const (
	DefaultSubject     = "(No Subject)"
	UnknownName        = "Unknown"
	UnknownAddress     = "unknown@unknown.com"
	SourceServerSearch = "server-search"
)

type Address struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (a Address) String() string {
	if a.Name == "" {
		return a.Address
	}
	return a.Name + " <" + a.Address + ">"
}

func UnknownSender() Address {
	return Address{Name: UnknownName, Address: UnknownAddress}
}

// Header is the summary of a message used in listings
type Header struct {
	UID            uint32    `json:"uid"`
	SeqNum         uint32    `json:"seq"`
	DisplayIndex   *uint32   `json:"displayIndex,omitempty"`
	MessageID      string    `json:"messageId,omitempty"`
	Subject        string    `json:"subject"`
	From           Address   `json:"from"`
	To             []Address `json:"to"`
	Cc             []Address `json:"cc"`
	Bcc            []Address `json:"bcc"`
	Date           string    `json:"date"`
	InternalDate   string    `json:"internalDate,omitempty"`
	Flags          []string  `json:"flags"`
	Size           uint32    `json:"size"`
	HasAttachments bool      `json:"hasAttachments"`
	Source         string    `json:"source,omitempty"`
}

func (h Header) HasFlag(flag string) bool {
	for _, f := range h.Flags {
		if strings.EqualFold(f, flag) {
			return true
		}
	}
	return false
}

// SortKey is the internal date when known, the header date otherwise.
// Both are RFC3339 so they compare as strings.
func (h Header) SortKey() string {
	if h.InternalDate != "" {
		return h.InternalDate
	}
	return h.Date
}

// AttachmentInfo is the metadata of an attachment
type AttachmentInfo struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	ContentID   string `json:"contentId,omitempty"`
	Size        int    `json:"size"`
	Inline      bool   `json:"inline"`
	// Real is false for embedded images and tracking pixels
	Real bool `json:"real"`
}

type Attachment struct {
	AttachmentInfo
	Content []byte `json:"content"`
}

// FullMessage carries the attachment payloads and the raw source
type FullMessage struct {
	Header
	ReplyTo     []Address    `json:"replyTo"`
	Text        string       `json:"text,omitempty"`
	HTML        string       `json:"html,omitempty"`
	Attachments []Attachment `json:"attachments"`
	// RawSource is encoded in base64 by encoding/json
	RawSource []byte `json:"rawSource"`
}

// LightMessage has attachment metadata only. Raw is kept out of the JSON projection
// so it can be persisted without fetching the message again.
type LightMessage struct {
	Header
	ReplyTo     []Address        `json:"replyTo"`
	Text        string           `json:"text,omitempty"`
	HTML        string           `json:"html,omitempty"`
	Attachments []AttachmentInfo `json:"attachments"`
	Raw         []byte           `json:"-"`
}

func (m *FullMessage) Light() *LightMessage {
	infos := make([]AttachmentInfo, len(m.Attachments))
	for i, attachment := range m.Attachments {
		infos[i] = attachment.AttachmentInfo
	}
	return &LightMessage{
		Header:      m.Header,
		ReplyTo:     m.ReplyTo,
		Text:        m.Text,
		HTML:        m.HTML,
		Attachments: infos,
		Raw:         m.RawSource,
	}
}

package remote

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/creativeprojects/mailsync/classify"
	"github.com/creativeprojects/mailsync/lib"
	"github.com/creativeprojects/mailsync/mailbox"
	"github.com/emersion/go-imap"
	message "github.com/emersion/go-message/mail"
)

var headerItems = []imap.FetchItem{
	imap.FetchUid,
	imap.FetchFlags,
	imap.FetchEnvelope,
	imap.FetchInternalDate,
	imap.FetchRFC822Size,
	imap.FetchBodyStructure,
}

// newHeader converts a FETCH response. UID and ENVELOPE are required,
// any other missing field gets a default value.
func newHeader(msg *imap.Message) (mailbox.Header, error) {
	if msg == nil {
		return mailbox.Header{}, lib.ErrParseHeader
	}
	if msg.Uid == 0 {
		return mailbox.Header{}, fmt.Errorf("%w: no UID in message seq=%d", lib.ErrParseHeader, msg.SeqNum)
	}
	envelope := msg.Envelope
	if envelope == nil {
		return mailbox.Header{}, fmt.Errorf("%w: no envelope in message uid=%d", lib.ErrParseHeader, msg.Uid)
	}

	header := mailbox.Header{
		UID:            msg.Uid,
		SeqNum:         msg.SeqNum,
		MessageID:      strings.Trim(envelope.MessageId, "<> "),
		Subject:        envelope.Subject,
		From:           mailbox.UnknownSender(),
		To:             convertAddresses(envelope.To),
		Cc:             convertAddresses(envelope.Cc),
		Bcc:            convertAddresses(envelope.Bcc),
		Date:           formatDate(envelope.Date),
		InternalDate:   formatDate(msg.InternalDate),
		Flags:          lib.StripRecentFlag(msg.Flags),
		Size:           msg.Size,
		HasAttachments: classify.HasAttachments(msg.BodyStructure),
	}
	if strings.TrimSpace(header.Subject) == "" {
		header.Subject = mailbox.DefaultSubject
	}
	if from := convertAddresses(envelope.From); len(from) > 0 {
		header.From = from[0]
	}
	return header, nil
}

func convertAddresses(source []*imap.Address) []mailbox.Address {
	addresses := make([]mailbox.Address, 0, len(source))
	for _, address := range source {
		if address == nil || address.MailboxName == "" {
			// group syntax markers
			continue
		}
		addresses = append(addresses, mailbox.Address{
			Name:    address.PersonalName,
			Address: address.Address(),
		})
	}
	return addresses
}

func convertMailAddresses(source []*mail.Address) []mailbox.Address {
	addresses := make([]mailbox.Address, 0, len(source))
	for _, address := range source {
		addresses = append(addresses, mailbox.Address{
			Name:    address.Name,
			Address: address.Address,
		})
	}
	return addresses
}

func formatDate(date time.Time) string {
	if date.IsZero() {
		return ""
	}
	return date.Format(time.RFC3339)
}

// applyMessageHeader overrides the envelope fields with the decoded message header
func applyMessageHeader(header *mailbox.Header, source message.Header) []mailbox.Address {
	if subject, err := source.Subject(); err == nil && strings.TrimSpace(subject) != "" {
		header.Subject = subject
	}
	if id, err := source.MessageID(); err == nil && id != "" {
		header.MessageID = id
	}
	if date, err := source.Date(); err == nil && !date.IsZero() {
		header.Date = formatDate(date)
	}
	if from, err := source.AddressList("From"); err == nil && len(from) > 0 {
		header.From = convertMailAddresses(from)[0]
	}
	if to, err := source.AddressList("To"); err == nil && len(to) > 0 {
		header.To = convertMailAddresses(to)
	}
	if cc, err := source.AddressList("Cc"); err == nil && len(cc) > 0 {
		header.Cc = convertMailAddresses(cc)
	}
	if bcc, err := source.AddressList("Bcc"); err == nil && len(bcc) > 0 {
		header.Bcc = convertMailAddresses(bcc)
	}
	replyTo, err := source.AddressList("Reply-To")
	if err != nil {
		return make([]mailbox.Address, 0)
	}
	return convertMailAddresses(replyTo)
}

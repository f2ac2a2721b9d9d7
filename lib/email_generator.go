package lib

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const charset = "abcdefghijklmnopqrstuvwxyz " +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 " +
	",./;'\\ \" []{}<>?:|!@$%^&*()_+-= " +
	"\r\n\r\n\r\n "

const template = "From: %s\r\n" +
	"To: %s\r\n" +
	"Subject: A little message, just for you\r\n" +
	"Date: Wed, 11 May 2016 14:31:59 +0000\r\n" +
	"Message-ID: <%d@localhost>\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n%s"

const boundary = "mailsync-boundary-42"

var seededRand *rand.Rand = rand.New(
	rand.NewSource(time.Now().UnixMilli()))

func stringWithCharset(length int, charset string) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[seededRand.Intn(len(charset))]
	}
	return string(b)
}

// GenerateEmail returns a plain text message with a random body
func GenerateEmail(from, to string, uid uint32) []byte {
	length := seededRand.Intn(3000)
	msg := fmt.Sprintf(template, from, to, uid, stringWithCharset(length, charset))
	return []byte(msg)
}

// EmailPart describes a leaf part of a generated multipart message
type EmailPart struct {
	ContentType string
	Disposition string
	Filename    string
	ContentID   string
	Body        []byte
}

// EmailSpec describes a generated multipart/mixed message
type EmailSpec struct {
	From    string
	To      string
	Subject string
	Date    time.Time
	Text    string
	HTML    string
	Parts   []EmailPart
}

// GenerateMultipart builds a multipart/mixed message: a multipart/alternative body
// with the text and html versions, followed by the extra parts encoded in base64.
func GenerateMultipart(spec EmailSpec) []byte {
	date := spec.Date
	if date.IsZero() {
		date = time.Date(2016, 5, 11, 14, 31, 59, 0, time.UTC)
	}
	buffer := &bytes.Buffer{}
	fmt.Fprintf(buffer, "From: %s\r\n", spec.From)
	fmt.Fprintf(buffer, "To: %s\r\n", spec.To)
	fmt.Fprintf(buffer, "Subject: %s\r\n", spec.Subject)
	fmt.Fprintf(buffer, "Date: %s\r\n", date.Format(time.RFC1123Z))
	fmt.Fprintf(buffer, "Message-ID: <%d@localhost>\r\n", seededRand.Uint32())
	buffer.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(buffer, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", boundary)

	inner := "alt-" + boundary
	fmt.Fprintf(buffer, "--%s\r\n", boundary)
	fmt.Fprintf(buffer, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", inner)
	if spec.Text != "" {
		fmt.Fprintf(buffer, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", inner, spec.Text)
	}
	if spec.HTML != "" {
		fmt.Fprintf(buffer, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", inner, spec.HTML)
	}
	fmt.Fprintf(buffer, "--%s--\r\n", inner)

	for _, part := range spec.Parts {
		fmt.Fprintf(buffer, "--%s\r\n", boundary)
		contentType := part.ContentType
		if part.Filename != "" && part.Disposition == "" {
			contentType += fmt.Sprintf("; name=%q", part.Filename)
		}
		fmt.Fprintf(buffer, "Content-Type: %s\r\n", contentType)
		if part.Disposition != "" {
			disposition := part.Disposition
			if part.Filename != "" {
				disposition += fmt.Sprintf("; filename=%q", part.Filename)
			}
			fmt.Fprintf(buffer, "Content-Disposition: %s\r\n", disposition)
		}
		if part.ContentID != "" {
			fmt.Fprintf(buffer, "Content-ID: <%s>\r\n", part.ContentID)
		}
		buffer.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
		buffer.WriteString(wrap(base64.StdEncoding.EncodeToString(part.Body), 76))
		buffer.WriteString("\r\n")
	}
	fmt.Fprintf(buffer, "--%s--\r\n", boundary)
	return buffer.Bytes()
}

// RandomBytes returns size bytes of random content
func RandomBytes(size int) []byte {
	data := make([]byte, size)
	_, _ = seededRand.Read(data)
	return data
}

func wrap(input string, width int) string {
	var builder strings.Builder
	for len(input) > width {
		builder.WriteString(input[:width])
		builder.WriteString("\r\n")
		input = input[width:]
	}
	builder.WriteString(input)
	return builder.String()
}

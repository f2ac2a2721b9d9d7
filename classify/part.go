package classify

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/creativeprojects/mailsync/lib"
	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
)

type Kind int

const (
	Leaf Kind = iota
	Container
)

// Part is a node of a parsed MIME tree: either a container with children,
// or a leaf with a decoded body.
type Part struct {
	Kind        Kind
	Header      message.Header
	ContentType string
	Disposition string
	Filename    string
	ContentID   string
	Body        []byte
	Children    []*Part
}

// Parse reads a full message into a MIME tree
func Parse(r io.Reader) (*Part, error) {
	return ParseWithLogger(r, nil)
}

// ParseWithLogger reads a full message into a MIME tree. Only an unreadable message
// header is an error: when a part cannot be read, the walk stops and the tree holds
// the parts decoded before it.
func ParseWithLogger(r io.Reader, logger lib.Logger) (*Part, error) {
	entity, err := message.Read(r)
	if err != nil && !tolerable(err) {
		return nil, fmt.Errorf("cannot parse message: %w", err)
	}
	root, err := parseEntity(entity)
	if err != nil {
		lib.OrNoLog(logger).Printf("incomplete message structure: %s", err)
	}
	return root, nil
}

// parseEntity returns the part decoded so far along with the error that stopped it
func parseEntity(entity *message.Entity) (*Part, error) {
	contentType, params, err := entity.Header.ContentType()
	if err != nil || contentType == "" {
		contentType = "text/plain"
	}
	part := &Part{
		Header:      entity.Header,
		ContentType: strings.ToLower(contentType),
		ContentID:   StripContentID(entity.Header.Get("Content-Id")),
	}

	if reader := entity.MultipartReader(); reader != nil {
		part.Kind = Container
		for {
			child, err := reader.NextPart()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil && !tolerable(err) {
				return part, fmt.Errorf("cannot read part of %s: %w", part.ContentType, err)
			}
			if child == nil {
				break
			}
			childPart, err := parseEntity(child)
			if err != nil {
				// a broken leaf is dropped, a container keeps its readable children
				if childPart.Kind == Container {
					part.Children = append(part.Children, childPart)
				}
				return part, err
			}
			part.Children = append(part.Children, childPart)
		}
		return part, nil
	}

	part.Kind = Leaf
	if entity.Header.Get("Content-Disposition") != "" {
		disposition, dispositionParams, err := entity.Header.ContentDisposition()
		if err == nil {
			part.Disposition = strings.ToLower(disposition)
			part.Filename = dispositionParams["filename"]
		}
	}
	if part.Filename == "" {
		part.Filename = params["name"]
	}
	body := &bytes.Buffer{}
	_, err = io.Copy(body, entity.Body)
	part.Body = body.Bytes()
	if err != nil && !tolerable(err) {
		return part, fmt.Errorf("cannot read body of %s: %w", part.ContentType, err)
	}
	return part, nil
}

// StripContentID removes the angle brackets around a Content-ID
func StripContentID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "<")
	return strings.TrimSuffix(id, ">")
}

func tolerable(err error) bool {
	return message.IsUnknownCharset(err) || message.IsUnknownEncoding(err)
}

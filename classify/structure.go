package classify

import (
	"strings"

	"github.com/emersion/go-imap"
)

// HasAttachments decides from a BODYSTRUCTURE whether a message carries attachments,
// without downloading the body.
func HasAttachments(bs *imap.BodyStructure) bool {
	if bs == nil {
		return false
	}
	mimeType := strings.ToLower(bs.MIMEType)
	subType := strings.ToLower(bs.MIMESubType)

	if mimeType == "multipart" {
		for _, part := range bs.Parts {
			if HasAttachments(part) {
				return true
			}
		}
		return false
	}

	disposition := strings.ToLower(bs.Disposition)
	if disposition == "attachment" {
		return true
	}

	if mimeType == "message" && subType == "rfc822" {
		return HasAttachments(bs.BodyStructure)
	}
	if mimeType == "text" {
		return false
	}

	if disposition == "inline" {
		// embedded reference or tracking pixel, unless the sender named it
		return hasParam(bs.DispositionParams, "filename")
	}
	return true
}

func hasParam(params map[string]string, key string) bool {
	for k, v := range params {
		if strings.EqualFold(k, key) && v != "" {
			return true
		}
	}
	return false
}

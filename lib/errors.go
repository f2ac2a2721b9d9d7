package lib

import "errors"

var (
	ErrMailboxNotFound = errors.New("mailbox not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrNoUidExpunge    = errors.New("server does not support UID EXPUNGE")
	ErrTokenMissing    = errors.New("OAuth2 access token missing")
	ErrPasswordMissing = errors.New("password missing")
	ErrInvalidToken    = errors.New("OAuth2 access token is invalid or expired")
	ErrParseHeader     = errors.New("cannot parse message header")
	ErrNotSupported    = errors.New("not supported on this platform")
)

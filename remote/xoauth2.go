package remote

import (
	"github.com/emersion/go-sasl"
)

const XOAuth2 = "XOAUTH2"

// xoauth2Client implements the XOAUTH2 mechanism used by Gmail and Outlook
type xoauth2Client struct {
	username string
	token    string
	// failure holds the error details sent by the server, if any
	failure string
}

var _ sasl.Client = (*xoauth2Client)(nil)

func newXOAuth2Client(username, token string) *xoauth2Client {
	return &xoauth2Client{
		username: username,
		token:    token,
	}
}

func (a *xoauth2Client) Start() (mech string, ir []byte, err error) {
	ir = []byte("user=" + a.username + "\x01auth=Bearer " + a.token + "\x01\x01")
	return XOAuth2, ir, nil
}

// Next answers the error challenge with an empty response so the server can finish with NO
func (a *xoauth2Client) Next(challenge []byte) ([]byte, error) {
	a.failure = string(challenge)
	return []byte{}, nil
}

package remote

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/creativeprojects/mailsync/cfg"
	"github.com/creativeprojects/mailsync/lib"
	"github.com/emersion/go-imap"
	compress "github.com/emersion/go-imap-compress"
	uidplus "github.com/emersion/go-imap-uidplus"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/charset"
)

func init() {
	// decode non utf-8 envelopes
	imap.CharsetReader = charset.Reader
}

// Session is an authenticated connection to an IMAP server
type Session struct {
	*client.Client
	uidplusClient *uidplus.Client
	address       string
	log           lib.Logger
}

// Logout ends the session, or simply closes the connection when the server is gone
func (s *Session) Logout() error {
	if s.Client.State() == imap.LogoutState {
		return nil
	}
	err := s.Client.Logout()
	if err != nil {
		_ = s.Client.Terminate()
	}
	return err
}

func (s *Session) SupportUidPlus() bool {
	return s.uidplusClient != nil
}

// Dialer opens sessions. Its Dial method is the factory of the connection pool.
type Dialer struct {
	// Timeout bounds the connection, the greeting and the authentication
	Timeout time.Duration
	log     lib.Logger
}

func NewDialer(timeout time.Duration, logger lib.Logger) *Dialer {
	if timeout <= 0 {
		timeout = cfg.DefaultConnectTimeout
	}
	return &Dialer{
		Timeout: timeout,
		log:     lib.OrNoLog(logger),
	}
}

func (d *Dialer) Dial(ctx context.Context, account cfg.Account) (*Session, error) {
	log := lib.NewPrefixLogger(d.log, account.Address)
	addr := account.Addr()
	server := account.IMAP

	netDialer := &net.Dialer{Timeout: d.Timeout}
	if deadline, ok := ctx.Deadline(); ok {
		netDialer.Deadline = deadline
	}
	tlsConfig := &tls.Config{
		ServerName:         server.Host,
		InsecureSkipVerify: server.SkipTLSVerification,
	}

	var imapClient *client.Client
	var err error
	log.Printf("connecting to server %s...", addr)
	if server.NoTLS || server.StartTLS {
		imapClient, err = client.DialWithDialer(netDialer, addr)
	} else {
		imapClient, err = client.DialWithDialerTLS(netDialer, addr, tlsConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot connect to %s: %w", addr, err)
	}
	imapClient.ErrorLog = log
	// bounded handshake; no timeout on later commands
	imapClient.Timeout = d.Timeout
	log.Print("connected")

	session := &Session{
		Client:  imapClient,
		address: account.Address,
		log:     log,
	}

	if server.StartTLS && !server.NoTLS {
		if err := imapClient.StartTLS(tlsConfig); err != nil {
			_ = imapClient.Terminate()
			return nil, fmt.Errorf("cannot start TLS with %s: %w", addr, err)
		}
	}

	if err := authenticate(imapClient, account); err != nil {
		_ = imapClient.Terminate()
		return nil, err
	}
	log.Printf("logged in as %s", account.Address)

	// try to enable UIDPLUS extension
	uidExt := uidplus.NewClient(imapClient)
	supported, err := uidExt.SupportUidPlus()
	if err != nil || !supported {
		log.Print("IMAP server does NOT support UIDPLUS extension")
		uidExt = nil
	}
	session.uidplusClient = uidExt

	if account.Compress {
		compressClient := compress.NewClient(imapClient)
		if ok, _ := compressClient.SupportCompress(compress.Deflate); ok {
			if err := compressClient.Compress(compress.Deflate); err != nil {
				log.Printf("cannot enable compression: %s", err)
			} else {
				log.Print("compression enabled")
			}
		}
	}

	imapClient.Timeout = 0
	return session, nil
}

// authenticate runs after the greeting was received by the client
func authenticate(imapClient *client.Client, account cfg.Account) error {
	if account.AuthType == cfg.AuthOAuth2 {
		token, err := account.Token()
		if err != nil {
			return fmt.Errorf("XOAUTH2 auth failed for %s: %w", account.Address, err)
		}
		if token == nil || token.AccessToken == "" {
			return fmt.Errorf("XOAUTH2 auth failed for %s: %w", account.Address, lib.ErrTokenMissing)
		}
		if !token.Valid() {
			return fmt.Errorf("XOAUTH2 auth failed for %s: %w", account.Address, lib.ErrInvalidToken)
		}
		auth := newXOAuth2Client(account.Address, token.AccessToken)
		if err := imapClient.Authenticate(auth); err != nil {
			if auth.failure != "" {
				return fmt.Errorf("XOAUTH2 auth failed for %s: %w (%s)", account.Address, err, auth.failure)
			}
			return fmt.Errorf("XOAUTH2 auth failed for %s: %w", account.Address, err)
		}
		return nil
	}

	if account.Password == "" {
		return fmt.Errorf("login failed for %s: %w", account.Address, lib.ErrPasswordMissing)
	}
	if err := imapClient.Login(account.Address, account.Password); err != nil {
		return fmt.Errorf("login failed for %s: %w", account.Address, err)
	}
	return nil
}

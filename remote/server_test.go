package remote

import (
	"bytes"
	"errors"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creativeprojects/mailsync/cfg"
	"github.com/emersion/go-imap"
	compress "github.com/emersion/go-imap-compress"
	"github.com/emersion/go-imap/backend"
	"github.com/emersion/go-imap/backend/memory"
	"github.com/emersion/go-imap/server"
	"github.com/emersion/go-sasl"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/nettest"
)

const validToken = "valid-token"

type testServer struct {
	backend *memory.Backend
	server  *server.Server
	addr    string
	wg      sync.WaitGroup
}

// startServer runs an in-memory IMAP server for the duration of the test
func startServer(t *testing.T) *testServer {
	t.Helper()
	be := memory.New()

	srv := server.New(be)
	// Since we will use this server for testing only, we can allow plain text
	// authentication over non-encrypted connections
	srv.AllowInsecureAuth = true
	srv.Enable(compress.NewExtension())
	srv.EnableAuth(XOAuth2, func(conn server.Conn) sasl.Server {
		return &xoauth2Server{conn: conn, backend: be}
	})

	listener, err := nettest.NewLocalListener("tcp")
	require.NoError(t, err)

	ts := &testServer{
		backend: be,
		server:  srv,
		addr:    listener.Addr().String(),
	}
	t.Logf("Starting IMAP server at %s", ts.addr)
	ts.wg.Add(1)
	go func() {
		defer ts.wg.Done()
		_ = srv.Serve(listener)
	}()

	t.Cleanup(func() {
		_ = srv.Close()
		ts.wg.Wait()
	})
	return ts
}

func (ts *testServer) account() cfg.Account {
	host, port := splitAddr(ts.addr)
	return cfg.Account{
		Name:     "test",
		Address:  "username",
		AuthType: cfg.AuthPassword,
		Password: "password",
		Compress: true,
		IMAP: cfg.Server{
			Host:  host,
			Port:  port,
			NoTLS: true,
		},
	}
}

func (ts *testServer) user(t *testing.T) backend.User {
	t.Helper()
	user, err := ts.backend.Login(nil, "username", "password")
	require.NoError(t, err)
	return user
}

// createMailbox creates a mailbox holding the messages; their UIDs start at 1
func (ts *testServer) createMailbox(t *testing.T, name string, messages ...[]byte) {
	t.Helper()
	user := ts.user(t)
	require.NoError(t, user.CreateMailbox(name))
	mbox, err := user.GetMailbox(name)
	require.NoError(t, err)
	date := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	for index, raw := range messages {
		err = mbox.CreateMessage(nil, date.Add(time.Duration(index)*time.Hour), bytes.NewBuffer(raw))
		require.NoError(t, err)
	}
}

func splitAddr(addr string) (string, int) {
	host, portNumber, _ := net.SplitHostPort(addr)
	port, _ := strconv.Atoi(portNumber)
	return host, port
}

// xoauth2Server accepts the validToken for the default user of the memory backend
type xoauth2Server struct {
	conn    server.Conn
	backend *memory.Backend
}

func (s *xoauth2Server) Next(response []byte) ([]byte, bool, error) {
	if response == nil {
		return []byte{}, false, nil
	}
	fields := strings.Split(string(response), "\x01")
	if len(fields) < 2 || fields[0] != "user=username" || fields[1] != "auth=Bearer "+validToken {
		return nil, true, errors.New("invalid credentials")
	}
	user, err := s.backend.Login(s.conn.Info(), "username", "password")
	if err != nil {
		return nil, true, err
	}
	ctx := s.conn.Context()
	ctx.State = imap.AuthenticatedState
	ctx.User = user
	return nil, true, nil
}

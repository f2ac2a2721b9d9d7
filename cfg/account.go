package cfg

import (
	"net"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

type AuthType string

const (
	AuthPassword AuthType = "password"
	AuthOAuth2   AuthType = "oauth2"
)

const (
	DefaultTLSPort   = 993
	DefaultPlainPort = 143
)

// Account is an immutable description of one mail account
type Account struct {
	Name        string    `yaml:"-"`
	Address     string    `yaml:"address"`
	AuthType    AuthType  `yaml:"auth"`
	Password    string    `yaml:"password"`
	AccessToken string    `yaml:"accessToken"`
	TokenExpiry time.Time `yaml:"tokenExpiry"`
	IMAP        Server    `yaml:"imap"`
	SMTP        Server    `yaml:"smtp"`
	Compress    bool      `yaml:"compress"`
	// TokenSource is set by the OAuth2 collaborator; it takes precedence over AccessToken
	TokenSource oauth2.TokenSource `yaml:"-"`
}

type Server struct {
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	NoTLS               bool   `yaml:"noTLS"`
	StartTLS            bool   `yaml:"startTLS"`
	SkipTLSVerification bool   `yaml:"skipTLSVerification"`
}

// Key identifies the account in the connection pool
func (a Account) Key() string {
	return a.Address + "-" + a.IMAP.Host
}

// Addr is the host:port of the IMAP server
func (a Account) Addr() string {
	return a.IMAP.Addr()
}

// Token returns the bearer token for XOAUTH2 authentication
func (a Account) Token() (*oauth2.Token, error) {
	if a.TokenSource != nil {
		return a.TokenSource.Token()
	}
	return &oauth2.Token{
		AccessToken: a.AccessToken,
		TokenType:   "Bearer",
		Expiry:      a.TokenExpiry,
	}, nil
}

func (s Server) Addr() string {
	port := s.Port
	if port == 0 {
		port = DefaultTLSPort
		if s.NoTLS || s.StartTLS {
			port = DefaultPlainPort
		}
	}
	return net.JoinHostPort(s.Host, strconv.Itoa(port))
}

package cmd

import (
	"fmt"

	"github.com/creativeprojects/mailsync/cfg"
	"github.com/creativeprojects/mailsync/lib"
	"github.com/creativeprojects/mailsync/mdir"
	"github.com/creativeprojects/mailsync/remote"
	"github.com/creativeprojects/mailsync/term"
)

type GlobalFlags struct {
	configFile string
	quiet      bool
	verbose    bool
	json       bool
}

var (
	global  GlobalFlags
	config  *cfg.Config
	backend *remote.Imap
)

func debugLogger(prefix string) lib.Logger {
	if !global.verbose {
		return nil
	}
	return term.NewLogger(prefix)
}

// getBackend returns the IMAP backend shared by the command, with its connection pool
func getBackend() *remote.Imap {
	if backend == nil {
		backend = remote.NewImap(remote.Config{
			ConnectTimeout: config.ConnectTimeout,
			DebugLogger:    debugLogger("imap"),
		})
	}
	return backend
}

func closeBackend() {
	if backend != nil {
		backend.Close()
		backend = nil
	}
}

func getAccount(args []string) (cfg.Account, error) {
	if len(args) < 1 {
		return cfg.Account{}, fmt.Errorf("missing account name")
	}
	account, ok := config.Accounts[args[0]]
	if !ok {
		return cfg.Account{}, fmt.Errorf("%w: %s", lib.ErrAccountNotFound, args[0])
	}
	return account, nil
}

// mailboxArg is the optional second argument of most commands
func mailboxArg(args []string) string {
	if len(args) > 1 && args[1] != "" {
		return args[1]
	}
	return remote.DefaultMailbox
}

func getFolder(account cfg.Account, mailboxName string) (*mdir.Folder, error) {
	store, err := mdir.NewWithLogger(config.Storage.Root, debugLogger("maildir"))
	if err != nil {
		return nil, fmt.Errorf("cannot open local store: %w", err)
	}
	return store.Folder(mdir.AccountID(account), mailboxName)
}

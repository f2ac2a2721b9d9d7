package cmd

import (
	"context"

	"github.com/creativeprojects/mailsync/cache"
	"github.com/creativeprojects/mailsync/mdir"
	"github.com/creativeprojects/mailsync/term"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync <account> [mailbox]",
	Short: "Update the local header cache of a mailbox",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runSync,
}

var syncFlags struct {
	show  bool
	clear bool
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVarP(&syncFlags.show, "show", "s", false, "display the cached headers after the update")
	syncCmd.Flags().BoolVar(&syncFlags.clear, "clear", false, "drop the cached headers before the update")
}

func runSync(cmd *cobra.Command, args []string) error {
	account, err := getAccount(args)
	if err != nil {
		return err
	}
	mailboxName := mailboxArg(args)

	headerCache, err := cache.OpenWithLogger(config.Storage.Cache, debugLogger("cache"))
	if err != nil {
		return err
	}
	defer headerCache.Close()

	tag := mdir.AccountID(account)
	if syncFlags.clear {
		if err := headerCache.Clear(tag, mailboxName); err != nil {
			return err
		}
	}
	result, err := headerCache.Sync(context.Background(), getBackend(), account, mailboxName)
	if err != nil {
		return err
	}
	if result.Reset {
		term.Warnf("the server renumbered mailbox %q: the cache was rebuilt", mailboxName)
	}
	if !syncFlags.show {
		if global.json {
			return term.JSON(result)
		}
		term.Infof("%d new message(s), %d removed", result.Added, result.Removed)
		return nil
	}
	headers, err := headerCache.LoadHeaders(tag, mailboxName)
	if err != nil {
		return err
	}
	if global.json {
		return term.JSON(headers)
	}
	term.Infof("%d new message(s), %d removed", result.Added, result.Removed)
	return displayHeaders(headers)
}

package cmd

import (
	"context"

	"github.com/creativeprojects/mailsync/remote"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <account> [mailbox]",
	Short: "Search messages on the server",
	Long:  "\nSearch messages on the server. Dates are YYYY-MM-DD; invalid dates are ignored.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runSearch,
}

var searchFlags remote.Query

func init() {
	rootCmd.AddCommand(searchCmd)
	flag := searchCmd.Flags()
	flag.StringVarP(&searchFlags.Text, "text", "t", "", "text anywhere in the message")
	flag.StringVarP(&searchFlags.From, "from", "f", "", "sender")
	flag.StringVarP(&searchFlags.Subject, "subject", "s", "", "subject")
	flag.StringVar(&searchFlags.Since, "since", "", "messages received on or after this date")
	flag.StringVar(&searchFlags.Before, "before", "", "messages received before this date")
}

func runSearch(cmd *cobra.Command, args []string) error {
	account, err := getAccount(args)
	if err != nil {
		return err
	}
	mailboxName := mailboxArg(args)
	page, err := getBackend().Search(context.Background(), account, mailboxName, searchFlags)
	if err != nil {
		return err
	}
	return displayPage(page)
}

package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/creativeprojects/mailsync/mailbox"
	"github.com/creativeprojects/mailsync/remote"
	"github.com/creativeprojects/mailsync/term"
	"github.com/spf13/cobra"
)

var pageCmd = &cobra.Command{
	Use:   "page <account> [mailbox]",
	Short: "Display a page of message headers, most recent first",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runPage,
}

var rangeCmd = &cobra.Command{
	Use:   "range <account> [mailbox]",
	Short: "Display message headers by display index (0 is the most recent message)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runRange,
}

var pageFlags struct {
	page  uint32
	limit uint32
	start uint32
	end   uint32
}

func init() {
	rootCmd.AddCommand(pageCmd)
	pageCmd.Flags().Uint32VarP(&pageFlags.page, "page", "p", remote.DefaultPage, "page number, starting at 1")
	pageCmd.Flags().Uint32VarP(&pageFlags.limit, "limit", "l", remote.DefaultLimit, "number of messages per page")

	rootCmd.AddCommand(rangeCmd)
	rangeCmd.Flags().Uint32Var(&pageFlags.start, "start", 0, "first display index (inclusive)")
	rangeCmd.Flags().Uint32Var(&pageFlags.end, "end", remote.DefaultLimit, "last display index (exclusive)")
}

func runPage(cmd *cobra.Command, args []string) error {
	account, err := getAccount(args)
	if err != nil {
		return err
	}
	mailboxName := mailboxArg(args)
	page, err := getBackend().FetchPage(context.Background(), account, mailboxName, pageFlags.page, pageFlags.limit)
	if err != nil {
		return err
	}
	return displayPage(page)
}

func runRange(cmd *cobra.Command, args []string) error {
	account, err := getAccount(args)
	if err != nil {
		return err
	}
	mailboxName := mailboxArg(args)
	page, err := getBackend().FetchRange(context.Background(), account, mailboxName, pageFlags.start, pageFlags.end)
	if err != nil {
		return err
	}
	return displayPage(page)
}

func displayPage(page mailbox.Page) error {
	if global.json {
		return term.JSON(page)
	}
	err := displayHeaders(page.Headers)
	if err != nil {
		return err
	}
	term.Infof("%d message(s) displayed out of %d", len(page.Headers), page.Total)
	if page.HasMore {
		term.Info("more messages are available")
	}
	if len(page.SkippedUIDs) > 0 {
		term.Warnf("cannot read the headers of message(s) %v", page.SkippedUIDs)
	}
	return nil
}

func displayHeaders(headers []mailbox.Header) error {
	rows := [][]string{{"#", "UID", "Date", "From", "Subject", "Flags", "Att"}}
	for _, header := range headers {
		index := strconv.FormatUint(uint64(header.SeqNum), 10)
		if header.DisplayIndex != nil {
			index = strconv.FormatUint(uint64(*header.DisplayIndex), 10)
		}
		attachment := ""
		if header.HasAttachments {
			attachment = "*"
		}
		rows = append(rows, []string{
			index,
			strconv.FormatUint(uint64(header.UID), 10),
			header.Date,
			header.From.String(),
			truncate(header.Subject, 60),
			displayFlags(header.Flags),
			attachment,
		})
	}
	return term.Table(rows)
}

func truncate(input string, length int) string {
	runes := []rune(input)
	if len(runes) <= length {
		return input
	}
	return fmt.Sprintf("%s...", string(runes[:length-3]))
}

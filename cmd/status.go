package cmd

import (
	"context"
	"strconv"

	"github.com/creativeprojects/mailsync/term"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <account> [mailbox]",
	Short: "Display the status of a mailbox",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runStatus,
}

var statusFlags struct {
	uids bool
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusFlags.uids, "uids", false, "also display the UIDs of all the messages")
}

func runStatus(cmd *cobra.Command, args []string) error {
	account, err := getAccount(args)
	if err != nil {
		return err
	}
	mailboxName := mailboxArg(args)
	ctx := context.Background()
	status, err := getBackend().Status(ctx, account, mailboxName)
	if err != nil {
		return err
	}
	var uids []uint32
	if statusFlags.uids {
		uids, err = getBackend().AllUIDs(ctx, account, mailboxName)
		if err != nil {
			return err
		}
	}
	if global.json {
		return term.JSON(struct {
			Status any      `json:"status"`
			UIDs   []uint32 `json:"uids,omitempty"`
		}{status, uids})
	}
	err = term.Table([][]string{
		{"Mailbox", "Messages", "UID validity", "UID next"},
		{
			mailboxName,
			strconv.FormatUint(uint64(status.Messages), 10),
			strconv.FormatUint(uint64(status.UidValidity), 10),
			strconv.FormatUint(uint64(status.UidNext), 10),
		},
	})
	if err != nil {
		return err
	}
	if statusFlags.uids {
		term.Infof("UIDs: %v", uids)
	}
	return nil
}

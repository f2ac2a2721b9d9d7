package cmd

import (
	"context"
	"errors"

	"github.com/creativeprojects/mailsync/lib"
	"github.com/creativeprojects/mailsync/mdir"
	"github.com/creativeprojects/mailsync/term"
	"github.com/spf13/cobra"
)

var flagCmd = &cobra.Command{
	Use:   "flag <account> <mailbox> <uid> <flag>...",
	Short: "Add or remove flags on a message",
	Long:  "\nAdd or remove flags on a message. Standard flags can be written without the backslash (Seen, Flagged, Answered, Deleted, Draft).",
	Args:  cobra.MinimumNArgs(4),
	RunE:  runFlag,
}

var flagFlags struct {
	remove bool
}

func init() {
	rootCmd.AddCommand(flagCmd)
	flagCmd.Flags().BoolVarP(&flagFlags.remove, "remove", "r", false, "remove the flags instead of adding them")
}

func runFlag(cmd *cobra.Command, args []string) error {
	account, err := getAccount(args)
	if err != nil {
		return err
	}
	mailboxName := args[1]
	uid, err := parseUID(args[2])
	if err != nil {
		return err
	}
	ctx := context.Background()
	err = getBackend().SetFlags(ctx, account, mailboxName, uid, args[3:], !flagFlags.remove)
	if err != nil {
		return err
	}

	// keep a local copy named after the new flags
	folder, err := getFolder(account, mailboxName)
	if err != nil {
		return err
	}
	localFlags, err := folder.Flags(uid)
	if errors.Is(err, lib.ErrMessageNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	headers, err := getBackend().HeadersByUIDs(ctx, account, mailboxName, []uint32{uid})
	if err != nil || len(headers) == 0 {
		return err
	}
	flags := mdir.FromIMAP(headers[0].Flags)
	for _, flag := range localFlags {
		if flag == mdir.FlagArchived {
			flags = append(flags, flag)
		}
	}
	if err := folder.SetFlags(uid, flags); err != nil {
		return err
	}
	term.Debugf("local copy of message %d renamed with flags %q", uid, mdir.EncodeFlags(flags))
	return nil
}

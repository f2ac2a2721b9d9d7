package cmd

import (
	"context"

	"github.com/creativeprojects/mailsync/term"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <account> <mailbox> <uid>",
	Short: "Move a message to the trash, or delete it permanently",
	Args:  cobra.ExactArgs(3),
	RunE:  runDelete,
}

var deleteFlags struct {
	permanent bool
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVar(&deleteFlags.permanent, "permanent", false, "expunge the message instead of moving it to the trash")
}

func runDelete(cmd *cobra.Command, args []string) error {
	account, err := getAccount(args)
	if err != nil {
		return err
	}
	uid, err := parseUID(args[2])
	if err != nil {
		return err
	}
	err = getBackend().Delete(context.Background(), account, args[1], uid, deleteFlags.permanent)
	if err != nil {
		return err
	}
	term.Infof("message %d deleted", uid)
	return nil
}

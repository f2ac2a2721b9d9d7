package cmd

import (
	"context"

	"github.com/creativeprojects/mailsync/term"
	"github.com/spf13/cobra"
)

var testCmd = &cobra.Command{
	Use:   "test <account>",
	Short: "Check the connection and the credentials of an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	account, err := getAccount(args)
	if err != nil {
		return err
	}
	term.Infof("connecting to %s...", account.Addr())
	err = getBackend().TestConnection(context.Background(), account)
	if err != nil {
		return err
	}
	term.Infof("successfully logged in as %s", account.Address)
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/creativeprojects/mailsync/cfg"
	"github.com/creativeprojects/mailsync/lib"
	"github.com/creativeprojects/mailsync/mailbox"
	"github.com/creativeprojects/mailsync/term"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <account> <mailbox> <uid>",
	Short: "Display a message",
	Args:  cobra.ExactArgs(3),
	RunE:  runShow,
}

var showFlags struct {
	save    bool
	extract string
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showFlags.save, "save", false, "save the message into the local store")
	showCmd.Flags().StringVar(&showFlags.extract, "extract", "", "save the attachments into this directory")
}

func parseUID(input string) (uint32, error) {
	uid, err := strconv.ParseUint(input, 10, 32)
	if err != nil || uid == 0 {
		return 0, fmt.Errorf("invalid message UID %q", input)
	}
	return uint32(uid), nil
}

func runShow(cmd *cobra.Command, args []string) error {
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

	if showFlags.extract != "" {
		return extractAttachments(ctx, account, mailboxName, uid)
	}

	msg, err := getBackend().FetchLight(ctx, account, mailboxName, uid)
	if err != nil {
		return err
	}
	if msg == nil {
		return fmt.Errorf("uid %d in %q: %w", uid, mailboxName, lib.ErrMessageNotFound)
	}
	if showFlags.save {
		folder, err := getFolder(account, mailboxName)
		if err != nil {
			return err
		}
		if err := folder.Put(uid, nil, msg.Raw); err != nil {
			return fmt.Errorf("cannot save message: %w", err)
		}
		term.Infof("message %d saved into the local store", uid)
	}
	if global.json {
		return term.JSON(msg)
	}
	return displayMessage(msg)
}

func displayMessage(msg *mailbox.LightMessage) error {
	rows := [][]string{
		{"Field", "Value"},
		{"From", msg.From.String()},
		{"To", joinAddresses(msg.To)},
	}
	if len(msg.Cc) > 0 {
		rows = append(rows, []string{"Cc", joinAddresses(msg.Cc)})
	}
	if len(msg.ReplyTo) > 0 {
		rows = append(rows, []string{"Reply-To", joinAddresses(msg.ReplyTo)})
	}
	rows = append(rows,
		[]string{"Date", msg.Date},
		[]string{"Subject", msg.Subject},
		[]string{"Flags", displayFlags(msg.Flags)},
	)
	if err := term.Table(rows); err != nil {
		return err
	}

	switch {
	case msg.Text != "":
		term.Text(msg.Text)
	case msg.HTML != "":
		term.Warn("this message only has an HTML version")
		term.Text(msg.HTML)
	}

	if len(msg.Attachments) == 0 {
		return nil
	}
	attachments := [][]string{{"Filename", "Type", "Size", "Inline", "Real"}}
	for _, attachment := range msg.Attachments {
		attachments = append(attachments, []string{
			attachment.Filename,
			attachment.ContentType,
			strconv.Itoa(attachment.Size),
			strconv.FormatBool(attachment.Inline),
			strconv.FormatBool(attachment.Real),
		})
	}
	return term.Table(attachments)
}

func extractAttachments(ctx context.Context, account cfg.Account, mailboxName string, uid uint32) error {
	msg, err := getBackend().FetchMessage(ctx, account, mailboxName, uid)
	if err != nil {
		return err
	}
	if msg == nil {
		return fmt.Errorf("uid %d in %q: %w", uid, mailboxName, lib.ErrMessageNotFound)
	}
	if err := os.MkdirAll(showFlags.extract, 0700); err != nil {
		return err
	}
	count := 0
	for index, attachment := range msg.Attachments {
		if !attachment.Real {
			continue
		}
		name := filepath.Base(attachment.Filename)
		if attachment.Filename == "" {
			name = "attachment-" + strconv.Itoa(index+1)
		}
		filename := filepath.Join(showFlags.extract, name)
		if err := os.WriteFile(filename, attachment.Content, 0600); err != nil {
			return fmt.Errorf("cannot save attachment: %w", err)
		}
		term.Debugf("saved %q (%d bytes)", filename, len(attachment.Content))
		count++
	}
	term.Infof("%d attachment(s) saved into %s", count, showFlags.extract)
	return nil
}

func joinAddresses(addresses []mailbox.Address) string {
	output := make([]string, len(addresses))
	for i, address := range addresses {
		output[i] = address.String()
	}
	return strings.Join(output, ", ")
}

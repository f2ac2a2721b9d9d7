package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/creativeprojects/mailsync/mailbox"
	"github.com/creativeprojects/mailsync/term"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <account>",
	Short: "Display the tree of mailboxes",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

var listFlags struct {
	status bool
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVarP(&listFlags.status, "status", "s", false, "display a table with the number of messages of each mailbox")
}

func runList(cmd *cobra.Command, args []string) error {
	account, err := getAccount(args)
	if err != nil {
		return err
	}
	ctx := context.Background()
	tree, err := getBackend().ListMailboxes(ctx, account)
	if err != nil {
		return fmt.Errorf("cannot list account mailbox: %w", err)
	}
	if global.json {
		return term.JSON(tree)
	}
	if !listFlags.status {
		return term.Tree(leveledList(tree, 0, nil))
	}

	rows := [][]string{{"Mailbox", "Special", "Messages", "Flags"}}
	walk(tree, func(node *mailbox.Node) {
		var messages string
		if node.Selectable {
			status, err := getBackend().Status(ctx, account, node.Path)
			if err == nil {
				messages = strconv.FormatUint(uint64(status.Messages), 10)
			}
		}
		rows = append(rows, []string{node.Path, string(node.SpecialUse), messages, displayFlags(node.Attributes)})
	})
	return term.Table(rows)
}

func leveledList(nodes []*mailbox.Node, level int, list pterm.LeveledList) pterm.LeveledList {
	for _, node := range nodes {
		text := node.Name
		if node.SpecialUse != mailbox.SpecialNone {
			text += pterm.FgGray.Sprintf(" (%s)", node.SpecialUse)
		}
		list = append(list, pterm.LeveledListItem{Level: level, Text: text})
		list = leveledList(node.Children, level+1, list)
	}
	return list
}

func walk(nodes []*mailbox.Node, visit func(node *mailbox.Node)) {
	for _, node := range nodes {
		visit(node)
		walk(node.Children, visit)
	}
}

func displayFlags(source []string) string {
	flags := make([]string, len(source))
	for i, flag := range source {
		flags[i] = strings.TrimPrefix(flag, "\\")
	}
	return strings.Join(flags, ", ")
}

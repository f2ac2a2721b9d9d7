package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/creativeprojects/mailsync/archive"
	"github.com/creativeprojects/mailsync/term"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive <account> [mailbox]",
	Short: "Download messages into the local store",
	Long:  "\nDownload messages into the local store. Messages already stored are skipped. Press Ctrl-C to stop after the messages in progress.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runArchive,
}

var archiveFlags struct {
	uids    []uint
	workers int
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.Flags().UintSliceVar(&archiveFlags.uids, "uid", nil, "archive only these message UIDs (default all)")
	archiveCmd.Flags().IntVarP(&archiveFlags.workers, "workers", "w", 0, "number of messages downloaded at the same time (default from configuration)")
}

func runArchive(cmd *cobra.Command, args []string) error {
	account, err := getAccount(args)
	if err != nil {
		return err
	}
	mailboxName := mailboxArg(args)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	uids := make([]uint32, len(archiveFlags.uids))
	for i, uid := range archiveFlags.uids {
		uids[i] = uint32(uid)
	}
	if len(uids) == 0 {
		uids, err = getBackend().AllUIDs(ctx, account, mailboxName)
		if err != nil {
			return err
		}
	}
	if len(uids) == 0 {
		term.Infof("mailbox %q is empty", mailboxName)
		return nil
	}
	folder, err := getFolder(account, mailboxName)
	if err != nil {
		return err
	}

	workers := archiveFlags.workers
	if workers <= 0 {
		workers = config.Archive.Workers
	}
	var pbar *pterm.ProgressbarPrinter
	if !global.json && !global.quiet {
		pbar, _ = pterm.DefaultProgressbar.WithTotal(len(uids)).WithTitle("archiving").Start()
	}
	pipeline := archive.NewPipeline(getBackend(), archive.Config{
		Workers:     workers,
		Rate:        config.Archive.Rate,
		Sink:        newProgresser(pbar),
		DebugLogger: debugLogger("archive"),
	})

	canceller := archive.NewCanceller()
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)
	go func() {
		select {
		case <-interrupt:
			canceller.Cancel()
		case <-ctx.Done():
		}
	}()

	progress := pipeline.Run(ctx, account, mailboxName, folder, uids, canceller)
	cancel()
	if pbar != nil {
		_, _ = pbar.Stop()
	}
	if global.json {
		return term.JSON(progress)
	}
	if canceller.Cancelled() {
		term.Warn("archive cancelled")
	}
	term.Infof("%d message(s) archived, %d error(s)", progress.Completed, progress.Errors)
	if progress.Errors > 0 {
		return fmt.Errorf("last error: %s", progress.LastError)
	}
	return nil
}

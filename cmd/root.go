package cmd

import (
	"os"

	"github.com/creativeprojects/mailsync/cfg"
	"github.com/creativeprojects/mailsync/term"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "mailsync",
	Short:         "IMAP mailbox browser and archiver",
	Long:          "\nBrowse IMAP mailboxes, fetch and search messages, and archive them into a local maildir",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig, initLog)
	flag := rootCmd.PersistentFlags()
	flag.StringVarP(&global.configFile, "config", "c", "mailsync.yaml", "configuration file")
	flag.BoolVarP(&global.quiet, "quiet", "q", false, "only display warnings and errors")
	flag.BoolVarP(&global.verbose, "verbose", "v", false, "display debugging information")
	flag.BoolVar(&global.json, "json", false, "display results as JSON")
}

func initConfig() {
	var err error
	config, err = cfg.LoadFromFile(global.configFile)
	if err != nil {
		term.Errorf("cannot open or read configuration file: %s", err)
		os.Exit(1)
	}
}

func initLog() {
	switch {
	case global.verbose:
		term.SetLevel(term.LevelDebug)
	case global.quiet || global.json:
		term.SetLevel(term.LevelWarn)
	}
}

func Execute() {
	err := rootCmd.Execute()
	closeBackend()
	if err != nil {
		term.Error(err)
		os.Exit(1)
	}
}

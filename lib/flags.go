package lib

import (
	"strings"

	"github.com/emersion/go-imap"
)

var systemFlags = []string{
	imap.SeenFlag,
	imap.AnsweredFlag,
	imap.FlaggedFlag,
	imap.DeletedFlag,
	imap.DraftFlag,
}

func StripRecentFlag(source []string) []string {
	output := make([]string, 0, len(source))
	for _, flag := range source {
		if flag == imap.RecentFlag {
			continue
		}
		output = append(output, flag)
	}
	return output
}

// NormalizeFlag returns the backslash-prefixed form of a flag name.
// System flags and flags already starting with a backslash are returned as is.
func NormalizeFlag(flag string) string {
	for _, system := range systemFlags {
		if flag == system {
			return flag
		}
	}
	if strings.HasPrefix(flag, "\\") {
		return flag
	}
	return "\\" + flag
}

func NormalizeFlags(flags []string) []string {
	output := make([]string, 0, len(flags))
	for _, flag := range flags {
		if flag == "" {
			continue
		}
		output = append(output, NormalizeFlag(flag))
	}
	return output
}

func HasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if strings.EqualFold(f, flag) {
			return true
		}
	}
	return false
}

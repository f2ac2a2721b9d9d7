package mdir

import (
	"sort"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-maildir"
)

const (
	FlagArchived = "archived"
	FlagDraft    = "draft"
	FlagFlagged  = "flagged"
	FlagReplied  = "replied"
	FlagSeen     = "seen"
	FlagTrashed  = "trashed"
)

// maildir has no letter for archived messages
const flagArchivedLetter maildir.Flag = 'A'

var flagLetters = map[string]maildir.Flag{
	FlagArchived: flagArchivedLetter,
	FlagDraft:    maildir.FlagDraft,
	FlagFlagged:  maildir.FlagFlagged,
	FlagReplied:  maildir.FlagReplied,
	FlagSeen:     maildir.FlagSeen,
	FlagTrashed:  maildir.FlagTrashed,
}

// EncodeFlags returns the sorted and deduplicated flag letters. Unknown names are ignored.
func EncodeFlags(names []string) string {
	letters := make([]maildir.Flag, 0, len(names))
	seen := make(map[maildir.Flag]bool, len(names))
	for _, name := range names {
		letter, ok := flagLetters[strings.ToLower(name)]
		if !ok || seen[letter] {
			continue
		}
		seen[letter] = true
		letters = append(letters, letter)
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	output := make([]rune, len(letters))
	for i, letter := range letters {
		output[i] = rune(letter)
	}
	return string(output)
}

// DecodeFlags returns the flag names of the letters, in letter order
func DecodeFlags(letters string) []string {
	return decode(lettersOf(letters))
}

func lettersOf(letters string) []maildir.Flag {
	output := make([]maildir.Flag, 0, len(letters))
	for _, letter := range letters {
		output = append(output, maildir.Flag(letter))
	}
	return output
}

func decode(letters []maildir.Flag) []string {
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	names := make([]string, 0, len(letters))
	for _, letter := range letters {
		for name, flagLetter := range flagLetters {
			if flagLetter == letter {
				if len(names) == 0 || names[len(names)-1] != name {
					names = append(names, name)
				}
				break
			}
		}
	}
	return names
}

// FromIMAP converts server flags into local flag names
func FromIMAP(source []string) []string {
	names := make([]string, 0, len(source))
	for _, sourceFlag := range source {
		switch sourceFlag {
		case imap.SeenFlag:
			names = append(names, FlagSeen)

		case imap.AnsweredFlag:
			names = append(names, FlagReplied)

		case imap.FlaggedFlag:
			names = append(names, FlagFlagged)

		case imap.DeletedFlag:
			names = append(names, FlagTrashed)

		case imap.DraftFlag:
			names = append(names, FlagDraft)
		}
	}
	return names
}

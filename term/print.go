package term

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pterm/pterm"
)

type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

var (
	lvl    = LevelInfo
	mu     sync.Mutex
	output io.Writer = os.Stdout
)

func SetLevel(level Level) {
	lvl = level
}

func GetLevel() Level {
	return lvl
}

// SetOutput redirects everything printed by the package and returns the previous writer
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	previous := output
	output = w
	return previous
}

// write sends a line to the output; the archive workers log from many goroutines
func write(text string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(output, text)
}

func colored(level Level, color pterm.Color, text string) {
	if lvl > level {
		return
	}
	write(color.Sprint(text))
}

func Debug(a ...any) {
	colored(LevelDebug, pterm.FgLightCyan, fmt.Sprint(a...))
}

func Debugf(format string, a ...any) {
	colored(LevelDebug, pterm.FgLightCyan, fmt.Sprintf(format, a...))
}

func Info(a ...any) {
	colored(LevelInfo, pterm.FgLightGreen, fmt.Sprint(a...))
}

func Infof(format string, a ...any) {
	colored(LevelInfo, pterm.FgLightGreen, fmt.Sprintf(format, a...))
}

func Warn(a ...any) {
	colored(LevelWarn, pterm.FgYellow, fmt.Sprint(a...))
}

func Warnf(format string, a ...any) {
	colored(LevelWarn, pterm.FgYellow, fmt.Sprintf(format, a...))
}

func Error(a ...any) {
	colored(LevelError, pterm.FgLightRed, fmt.Sprint(a...))
}

func Errorf(format string, a ...any) {
	colored(LevelError, pterm.FgLightRed, fmt.Sprintf(format, a...))
}

// Text prints a message body as is, whatever the level
func Text(body string) {
	write(body)
}

// JSON prints the value indented, for scripts reading the output
func JSON(value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	write(string(encoded))
	return nil
}

// Table renders rows with the first one as header
func Table(rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	rendered, err := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData(rows)).Srender()
	if err != nil {
		return err
	}
	write(rendered)
	return nil
}

// Tree renders a mailbox hierarchy given as a leveled list
func Tree(list pterm.LeveledList) error {
	if len(list) == 0 {
		return nil
	}
	root := pterm.NewTreeFromLeveledList(list)
	rendered, err := pterm.DefaultTree.WithRoot(root).Srender()
	if err != nil {
		return err
	}
	write(rendered)
	return nil
}

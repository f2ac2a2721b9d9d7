package term

import (
	"fmt"

	"github.com/creativeprojects/mailsync/lib"
)

// Logger displays the debug lines of the libraries when the level is debug or lower
type Logger struct {
	prefix string
}

var _ lib.Logger = &Logger{}

func NewLogger(prefix string) *Logger {
	return &Logger{prefix: prefix}
}

func (l *Logger) Print(a ...any) {
	l.Printf("%s", fmt.Sprint(a...))
}

func (l *Logger) Println(a ...any) {
	l.Print(a...)
}

func (l *Logger) Printf(format string, a ...any) {
	if l.prefix != "" {
		format = l.prefix + ": " + format
	}
	Debugf(format, a...)
}

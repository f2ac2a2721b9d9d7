package lib

import "testing"

type Logger interface {
	Print(a ...any)
	Println(a ...any)
	Printf(format string, a ...any)
}

type NoLog struct{}

func (l *NoLog) Print(a ...any)                 {}
func (l *NoLog) Println(a ...any)               {}
func (l *NoLog) Printf(format string, a ...any) {}

// OrNoLog returns logger, or a NoLog when logger is nil
func OrNoLog(logger Logger) Logger {
	if logger == nil {
		return &NoLog{}
	}
	return logger
}

type TestLogger struct {
	t      *testing.T
	prefix string
}

func NewTestLogger(t *testing.T, prefix string) *TestLogger {
	return &TestLogger{
		t:      t,
		prefix: prefix,
	}
}

func (l *TestLogger) Print(a ...any) {
	l.t.Helper()
	if l.prefix == "" {
		l.t.Log(a...)
	} else {
		l.t.Log(append([]any{l.prefix + ":"}, a...)...)
	}
}

func (l *TestLogger) Println(a ...any) {
	l.t.Helper()
	l.Print(a...)
}

func (l *TestLogger) Printf(format string, a ...any) {
	l.t.Helper()
	if l.prefix != "" {
		format = l.prefix + ": " + format
	}
	l.t.Logf(format, a...)
}

// PrefixLogger tags every line with an account or component name
type PrefixLogger struct {
	log    Logger
	prefix string
}

func NewPrefixLogger(log Logger, prefix string) *PrefixLogger {
	return &PrefixLogger{
		log:    OrNoLog(log),
		prefix: prefix,
	}
}

func (l *PrefixLogger) Print(a ...any) {
	l.log.Print(append([]any{"[" + l.prefix + "] "}, a...)...)
}

func (l *PrefixLogger) Println(a ...any) {
	l.log.Println(append([]any{"[" + l.prefix + "]"}, a...)...)
}

func (l *PrefixLogger) Printf(format string, a ...any) {
	l.log.Printf("["+l.prefix+"] "+format, a...)
}

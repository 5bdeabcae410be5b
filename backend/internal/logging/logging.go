package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Logger - уровневый логгер, передаваемый во все компоненты явно
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// StdLogger пишет строки вида "[Prefix] LEVEL: message"
type StdLogger struct {
	mu     sync.Mutex
	debug  bool
	prefix string
	out    *log.Logger
	err    *log.Logger
}

// New создает логгер, пишущий в stdout и stderr
func New(prefix string, debug bool) *StdLogger {
	return NewWithWriters(prefix, debug, os.Stdout, os.Stderr)
}

// NewWithWriters создает логгер с заданными потоками вывода
func NewWithWriters(prefix string, debug bool, out, errOut io.Writer) *StdLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &StdLogger{
		debug:  debug,
		prefix: prefix,
		out:    log.New(out, "", flags),
		err:    log.New(errOut, "", flags),
	}
}

func (l *StdLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *StdLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	l.mu.Unlock()
}

func (l *StdLogger) format(level, format string, args ...any) string {
	if l.prefix != "" {
		return fmt.Sprintf("[%s] %s: %s", l.prefix, level, fmt.Sprintf(format, args...))
	}
	return fmt.Sprintf("%s: %s", level, fmt.Sprintf(format, args...))
}

func (l *StdLogger) Debugf(format string, args ...any) {
	if !l.DebugEnabled() {
		return
	}
	l.out.Print(l.format("DEBUG", format, args...))
}

func (l *StdLogger) Infof(format string, args ...any) {
	l.out.Print(l.format("INFO", format, args...))
}

func (l *StdLogger) Warnf(format string, args ...any) {
	l.err.Print(l.format("WARN", format, args...))
}

func (l *StdLogger) Errorf(format string, args ...any) {
	l.err.Print(l.format("ERROR", format, args...))
}

// With возвращает логгер с другим префиксом и тем же уровнем
func (l *StdLogger) With(prefix string) *StdLogger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &StdLogger{debug: l.debug, prefix: prefix, out: l.out, err: l.err}
}

type nopLogger struct{}

// Nop возвращает логгер, который ничего не пишет
func Nop() Logger { return nopLogger{} }

func (nopLogger) DebugEnabled() bool    { return false }
func (nopLogger) SetDebug(bool)         {}
func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// OrNop возвращает l или пустой логгер, если l == nil
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop()
	}
	return l
}

// Package logx is the library's cross-cutting logger: six levels,
// ANSI-colored, timestamped, grounded on the original source's log.h
// (llace_log / LLACE_LOG_TRACE..FATAL). Fatal aborts the process after
// printing file:line:function, mirroring the C macro's abort() call.
package logx

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

type Level int

const (
	Trace Level = iota
	Debug
	Info
	Warn
	Error
	Fatal
)

var levelNames = [...]string{
	Trace: "TRACE",
	Debug: "DEBUG",
	Info:  "INFO",
	Warn:  "WARN",
	Error: "ERROR",
	Fatal: "FATAL",
}

var levelColors = [...]string{
	Trace: "\x1b[90m", // bright black
	Debug: "\x1b[36m", // cyan
	Info:  "\x1b[32m", // green
	Warn:  "\x1b[33m", // yellow
	Error: "\x1b[31m", // red
	Fatal: "\x1b[35m", // magenta
}

const colorReset = "\x1b[0m"

// Logger writes leveled, optionally colored lines to an output stream.
// The zero value is not usable; construct with New.
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	minLevel Level
	color    bool
}

// New creates a Logger writing to w. Color is auto-detected via
// mattn/go-isatty when w is an *os.File; disabled otherwise (e.g. when
// redirected to a file or buffer), matching how terminal loggers in the
// pack gate ANSI output on a live TTY.
func New(w io.Writer, minLevel Level) *Logger {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Logger{out: w, minLevel: minLevel, color: color}
}

// Default is a convenience Logger writing to stderr at Info level.
var Default = New(os.Stderr, Info)

func (l *Logger) SetColor(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = enabled
}

func (l *Logger) log(level Level, skip int, format string, args ...interface{}) {
	if level < l.minLevel {
		return
	}

	_, file, line, ok := runtime.Caller(skip)
	funcName := "{No Function Information}"
	if pc, _, _, ok2 := runtime.Caller(skip); ok2 {
		if fn := runtime.FuncForPC(pc); fn != nil {
			funcName = fn.Name()
		}
	}
	if !ok {
		file, line = "?", 0
	}

	msg := fmt.Sprintf(format, args...)
	ts := time.Now().Format("2006-01-02 15:04:05.000")

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.color {
		fmt.Fprintf(l.out, "%s[%s] %s%-5s%s %s:%d (%s): %s\n",
			levelColors[level], ts, levelColors[level], levelNames[level], colorReset,
			file, line, funcName, msg)
	} else {
		fmt.Fprintf(l.out, "[%s] %-5s %s:%d (%s): %s\n", ts, levelNames[level], file, line, funcName, msg)
	}

	if level == Fatal {
		os.Exit(1)
	}
}

func (l *Logger) Tracef(format string, args ...interface{}) { l.log(Trace, 2, format, args...) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.log(Debug, 2, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.log(Info, 2, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.log(Warn, 2, format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.log(Error, 2, format, args...) }

// Fatalf logs at Fatal level and aborts the process, matching
// LLACE_LOG_FATAL(...); abort() in the original log.h.
func (l *Logger) Fatalf(format string, args ...interface{}) { l.log(Fatal, 2, format, args...) }

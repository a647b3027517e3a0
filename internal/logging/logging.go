// Package logging provides leveled, colorized stderr diagnostics for the
// HTIP daemons, degrading to plain text when stderr is not a color
// terminal.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) label() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

var styles = struct {
	debug lipgloss.Style
	info  lipgloss.Style
	warn  lipgloss.Style
	error lipgloss.Style
}{
	debug: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	info:  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
	error: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
}

func styleFor(l Level) lipgloss.Style {
	switch l {
	case LevelDebug:
		return styles.debug
	case LevelWarn:
		return styles.warn
	case LevelError:
		return styles.error
	default:
		return styles.info
	}
}

// Logger writes leveled, timestamped lines to an output stream, colorized
// when that stream is a terminal with color support.
type Logger struct {
	out      io.Writer
	colorize bool
	verbose  bool
}

// New returns a Logger writing to w. colorize is decided from w's
// terminal/color-profile status when w is *os.File, matching the
// teacher's termenv.TrueColor detection; verbose gates Debugf output.
func New(w io.Writer, verbose bool) *Logger {
	colorize := false
	if f, ok := w.(*os.File); ok {
		colorize = termenv.NewOutput(f).Profile != termenv.Ascii
	}
	return &Logger{out: w, colorize: colorize, verbose: verbose}
}

// Default returns a Logger writing to stderr.
func Default(verbose bool) *Logger {
	return New(os.Stderr, verbose)
}

func (l *Logger) log(level Level, format string, args ...any) {
	if level == LevelDebug && !l.verbose {
		return
	}
	msg := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("%s [%s] %s", time.Now().Format(time.RFC3339), level.label(), msg)
	if l.colorize {
		line = styleFor(level).Render(line)
	}
	fmt.Fprintln(l.out, line)
}

func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, format, args...) }

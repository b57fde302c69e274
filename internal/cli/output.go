package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// newLogger returns a console logger for diagnostics. verbose forces debug.
func newLogger(w io.Writer, level string, verbose bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("config: invalid log.level '%s': %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.WarnLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}

	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: color.NoColor || !isTerminal(w)}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newActivity shows a spinner on w while TVmaze is queried. Nothing is
// drawn when w is not a terminal.
func newActivity(w io.Writer) func(msg string) func() {
	if !isTerminal(w) {
		return nil
	}
	return func(msg string) func() {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
		_ = s.Color("cyan")
		s.Suffix = " " + msg
		s.Start()
		return s.Stop
	}
}

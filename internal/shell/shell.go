// Package shell implements the interactive read-dispatch-print loop over a
// session's virtual filesystem.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"zipsh/internal/config"
	"zipsh/internal/logging"
	"zipsh/internal/state"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var logger = logging.GetLogger().WithPrefix("shell")

// Shell reads commands line by line and runs them against a session.
type Shell struct {
	session  *state.Session
	in       io.Reader
	out      io.Writer
	hostname string
	farewell string

	userColor *color.Color
	pathColor *color.Color
}

// Option customizes a Shell.
type Option func(*Shell)

// WithHostname sets the host part of the prompt.
func WithHostname(hostname string) Option {
	return func(s *Shell) { s.hostname = hostname }
}

// WithFarewell sets the line printed when the loop ends.
func WithFarewell(farewell string) Option {
	return func(s *Shell) { s.farewell = farewell }
}

// WithColor enables or disables the coloured prompt.
func WithColor(enabled bool) Option {
	return func(s *Shell) {
		for _, c := range []*color.Color{s.userColor, s.pathColor} {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

// New creates a shell reading from in and writing to out. Defaults follow
// config.Default(); the prompt is uncoloured unless WithColor(true) is given.
func New(session *state.Session, in io.Reader, out io.Writer, opts ...Option) *Shell {
	defaults := config.Default()
	s := &Shell{
		session:   session,
		in:        in,
		out:       out,
		hostname:  defaults.Hostname,
		farewell:  defaults.Farewell,
		userColor: color.New(color.FgGreen, color.Bold),
		pathColor: color.New(color.FgBlue, color.Bold),
	}
	WithColor(false)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ColorEnabled resolves a config colour mode against the output writer.
// In auto mode colours are used only when w is a terminal and the
// environment does not disable them (NO_COLOR, TERM=dumb).
func ColorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return !color.NoColor && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// Prompt renders "{username}@{hostname}:{cwd}$ ".
func (s *Shell) Prompt() string {
	return fmt.Sprintf("%s:%s$ ",
		s.userColor.Sprintf("%s@%s", s.session.Whoami(), s.hostname),
		s.pathColor.Sprint(s.session.Cwd()))
}

// Run executes the loop until exit, end of input or cancellation of ctx.
// Cancellation is how an interrupt reaches the loop; it ends the session
// with the farewell line like exit does and is not an error.
func (s *Shell) Run(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go s.readLines(lines, readErr, done)

	for {
		fmt.Fprint(s.out, s.Prompt())

		select {
		case <-ctx.Done():
			logger.Debug("Interrupted: %v", context.Cause(ctx))
			s.goodbye(true)
			return nil

		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				logger.Debug("End of input")
				s.goodbye(true)
				return nil
			}
			if s.Execute(line) {
				return nil
			}
		}
	}
}

func (s *Shell) readLines(lines chan<- string, errc chan<- error, done <-chan struct{}) {
	defer close(lines)
	scanner := bufio.NewScanner(s.in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-done:
			return
		}
	}
	errc <- scanner.Err()
}

// Execute runs one input line and reports whether the loop must stop.
// Blank lines are ignored.
func (s *Shell) Execute(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	name, args := fields[0], fields[1:]
	logger.Debug("Executing %q with %d args", name, len(args))

	b, ok := builtinMap[name]
	if !ok {
		fmt.Fprintf(s.out, "%s: command not found\n", name)
		return false
	}
	return b.fn(s, args)
}

func (s *Shell) goodbye(newline bool) {
	if newline {
		fmt.Fprintln(s.out)
	}
	fmt.Fprintln(s.out, s.farewell)
}

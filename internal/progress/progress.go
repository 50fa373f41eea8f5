package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

const (
	spinnerDelay   = 100 * time.Millisecond
	spinnerCharSet = 14
	spinnerColor   = "green"
	ansiRed        = "\x1b[31m"
	ansiGreen      = "\x1b[32m"
	ansiReset      = "\x1b[0m"
)

// Progress renders CLI output with an optional spinner. Verbose mode prints
// every line, quiet mode prints only persistent lines.
type Progress struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
	quiet   bool
	spin    *spinner.Spinner
}

// New creates a Progress writing to stdout.
func New(verbose, quiet bool) *Progress {
	return NewWriter(os.Stdout, verbose, quiet, !verbose && !quiet)
}

// NewWriter creates a Progress writing to out; the spinner runs only when
// withSpinner is set.
func NewWriter(out io.Writer, verbose, quiet, withSpinner bool) *Progress {
	p := &Progress{
		out:     out,
		verbose: verbose,
		quiet:   quiet && !verbose,
	}
	if withSpinner {
		p.spin = spinner.New(spinner.CharSets[spinnerCharSet], spinnerDelay, spinner.WithWriter(out))
		_ = p.spin.Color(spinnerColor)
		p.spin.Start()
	}
	return p
}

// Printf updates the spinner line or prints a log line in verbose mode.
func (p *Progress) Printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spin != nil {
		p.spin.Suffix = fmt.Sprintf(" "+format, args...)
	}
	if p.verbose {
		_, _ = fmt.Fprintf(p.out, format+"\n", args...)
	}
}

// PersistentPrintf prints a line that survives spinner updates.
func (p *Progress) PersistentPrintf(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

// Okf prints a success message with a colored marker.
func (p *Progress) Okf(format string, args ...any) {
	p.PersistentPrintf("%s✔%s "+format, append([]any{ansiGreen, ansiReset}, args...)...)
}

// Errorf prints an error message with a colored marker.
func (p *Progress) Errorf(format string, args ...any) {
	p.PersistentPrintf("%s✗%s "+format, append([]any{ansiRed, ansiReset}, args...)...)
}

// Debugf prints a debug message when verbose mode is enabled.
func (p *Progress) Debugf(format string, args ...any) {
	if !p.verbose {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.out, "🚧 Debug: "+format+"\n", args...)
}

// DebugSincef prints a debug message with timing info.
func (p *Progress) DebugSincef(start time.Time, format string, args ...any) {
	if !p.verbose {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.out, "⏱️ Debug Timing ("+time.Since(start).Round(time.Millisecond).String()+"): "+format+"\n", args...)
}

// Write implements io.Writer for log output integration.
func (p *Progress) Write(payload []byte) (int, error) {
	message := strings.TrimRight(string(payload), "\n")
	if message != "" && !p.quiet {
		p.line(message)
	}
	return len(payload), nil
}

// Close stops the spinner if it is running.
func (p *Progress) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spin != nil {
		p.spin.Stop()
	}
}

func (p *Progress) line(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spin != nil {
		p.spin.Stop()
		_, _ = fmt.Fprintln(p.out, message)
		p.spin.Restart()
		return
	}
	_, _ = fmt.Fprintln(p.out, message)
}

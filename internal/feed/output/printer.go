package output

import "time"

// Printer defines the CLI output interface.
type Printer interface {
	Printf(format string, args ...any)
	PersistentPrintf(format string, args ...any)
	Okf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
	DebugSincef(startTime time.Time, format string, args ...any)
}

// Discard is a Printer that drops everything.
type Discard struct{}

func (Discard) Printf(string, ...any)                 {}
func (Discard) PersistentPrintf(string, ...any)       {}
func (Discard) Okf(string, ...any)                    {}
func (Discard) Errorf(string, ...any)                 {}
func (Discard) Debugf(string, ...any)                 {}
func (Discard) DebugSincef(time.Time, string, ...any) {}

// Package presenter provides consistent CLI output for user-facing
// messages: errors, warnings, and informational text with color support
// and a quiet mode. Catalog payloads go to stdout; presenter messages go
// to stderr so piped output stays machine-readable.
package presenter

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// ColorMode controls colored output.
type ColorMode int

const (
	// ColorAuto lets the color package detect terminal capabilities
	ColorAuto ColorMode = iota
	// ColorAlways forces colored output
	ColorAlways
	// ColorNever disables colored output
	ColorNever
)

// Presenter writes user-facing messages.
type Presenter struct {
	out   io.Writer
	quiet bool
}

// New creates a Presenter writing to stderr with color mode detected
// from the environment.
func New() *Presenter {
	return NewWithOptions(os.Stderr, detectColorMode())
}

// NewWithOptions creates a Presenter with explicit output and color mode.
func NewWithOptions(out io.Writer, mode ColorMode) *Presenter {
	switch mode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	}
	return &Presenter{out: out}
}

func detectColorMode() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ColorNever
	}
	switch os.Getenv("AGENTLENS_COLOR") {
	case "always", "force":
		return ColorAlways
	case "never", "off":
		return ColorNever
	}
	return ColorAuto
}

// SetQuiet suppresses everything except errors.
func (p *Presenter) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// Error reports an error with optional context. Errors are never
// suppressed by quiet mode.
func (p *Presenter) Error(err error, context string) {
	if err == nil {
		return
	}
	c := color.New(color.FgRed, color.Bold)
	if context != "" {
		c.Fprintf(p.out, "[ERROR] %s: %v\n", context, err)
		return
	}
	c.Fprintf(p.out, "[ERROR] %v\n", err)
}

// Warning reports a non-fatal problem.
func (p *Presenter) Warning(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgYellow, color.Bold).Fprintf(p.out, "⚠ %s\n", message)
}

// Success reports a completed step.
func (p *Presenter) Success(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgGreen, color.Bold).Fprintf(p.out, "✓ %s\n", message)
}

// Info prints a plain informational line.
func (p *Presenter) Info(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "%s\n", message)
}

// Package terminal renders the chat session on an interactive terminal.
package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const (
	promptLabel  = "Question: "
	thinkingText = " Thinking..."
	failedText   = "Error occurred!"
)

// Options controls console rendering.
type Options struct {
	Color   bool
	Animate bool
}

// DetectOptions enables color and animation when f is a terminal.
func DetectOptions(f *os.File, noColor bool) Options {
	tty := f != nil && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	return Options{Color: tty && !noColor, Animate: tty}
}

// Console writes prompts, progress and replies to out.
type Console struct {
	mu   sync.Mutex
	out  io.Writer
	spin *spinner.Spinner

	info    *color.Color
	errc    *color.Color
	success *color.Color
	user    *color.Color
	done    *color.Color
}

// NewConsole builds a Console.
func NewConsole(out io.Writer, opts Options) *Console {
	if out == nil {
		out = io.Discard
	}
	c := &Console{
		out:     out,
		info:    newColor(opts.Color, color.FgBlue),
		errc:    newColor(opts.Color, color.FgRed),
		success: newColor(opts.Color, color.FgGreen),
		user:    newColor(opts.Color, color.FgYellow),
		done:    newColor(opts.Color, color.FgGreen, color.Bold),
	}
	if opts.Animate {
		c.spin = spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(out))
		c.spin.Suffix = thinkingText
		if opts.Color {
			_ = c.spin.Color("magenta")
		}
	}
	return c
}

func newColor(enabled bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// Info prints a status line.
func (c *Console) Info(msg string) { c.line(c.info, msg) }

// OnPrompt implements session.Notifier.
func (c *Console) OnPrompt() { c.line(c.user, promptLabel) }

// OnTurnStart implements session.Notifier.
func (c *Console) OnTurnStart(string) {
	if c.spin != nil {
		c.spin.Start()
	}
}

// OnTurnSuccess implements session.Notifier.
func (c *Console) OnTurnSuccess(output string, elapsedSeconds float64) {
	c.stopSpinner()
	c.line(c.done, fmt.Sprintf("✔ %.2fs", elapsedSeconds))
	c.line(c.success, output)
}

// OnTurnError implements session.Notifier.
func (c *Console) OnTurnError(message string) {
	c.stopSpinner()
	c.line(c.errc, "✖ "+failedText)
	c.line(c.errc, message)
}

func (c *Console) stopSpinner() {
	if c.spin != nil {
		c.spin.Stop()
	}
}

func (c *Console) line(col *color.Color, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = col.Fprintln(c.out, msg)
}

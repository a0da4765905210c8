// Package output handles CLI output formatting including verbose mode,
// progress bars and styled reports.
package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// Config holds output configuration.
type Config struct {
	Verbose   bool      // Enable verbose output
	Writer    io.Writer // Output destination (default: os.Stdout)
	ErrWriter io.Writer // Error and progress destination (default: os.Stderr)
	IsTTY     bool      // Whether stderr is a terminal
}

// Output handles formatted output with verbose and progress support.
type Output struct {
	config     Config
	progress   *progressbar.ProgressBar
	progressMu sync.Mutex
}

// New creates a new Output instance with the given configuration.
func New(config Config) *Output {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}
	if config.ErrWriter == nil {
		config.ErrWriter = os.Stderr
	}
	return &Output{
		config: config,
	}
}

// DefaultConfig returns a Config with sensible defaults and TTY detection.
// Progress goes to stderr so piping the table from stdout stays clean.
func DefaultConfig() Config {
	return Config{
		Verbose:   false,
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		IsTTY:     term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// Verbose prints a message only when verbose mode is enabled.
func (o *Output) Verbose(format string, args ...interface{}) {
	if !o.config.Verbose {
		return
	}
	o.print(o.config.ErrWriter, format, args...)
}

// Info prints an informational message (always shown).
func (o *Output) Info(format string, args ...interface{}) {
	o.print(o.config.Writer, format, args...)
}

// Error prints an error message to stderr.
func (o *Output) Error(format string, args ...interface{}) {
	o.print(o.config.ErrWriter, format, args...)
}

func (o *Output) print(w io.Writer, format string, args ...interface{}) {
	o.clearProgress()
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(w, msg)
}

// Print writes s unchanged to the main writer.
func (o *Output) Print(s string) {
	fmt.Fprint(o.config.Writer, s)
}

// clearProgress hides the progress bar so a message can be printed.
func (o *Output) clearProgress() {
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if o.progress != nil {
		if err := o.progress.Clear(); err != nil {
			slog.Debug("failed to clear progress bar", "error", err)
		}
	}
}

// StartProgress begins a progress bar for total steps.
func (o *Output) StartProgress(total int, description string) {
	// Suppress progress when not TTY or when verbose mode is enabled
	if !o.config.IsTTY || o.config.Verbose {
		return
	}
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	o.progress = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(o.config.ErrWriter),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// UpdateProgress moves the progress bar to current.
func (o *Output) UpdateProgress(current int) {
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if o.progress == nil {
		return
	}
	if err := o.progress.Set(current); err != nil {
		slog.Debug("failed to update progress bar", "error", err)
	}
}

// EndProgress finishes and removes the progress bar.
func (o *Output) EndProgress() {
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if o.progress == nil {
		return
	}
	if err := o.progress.Finish(); err != nil {
		slog.Debug("failed to finish progress bar", "error", err)
	}
	o.progress = nil
}

// ProgressActive returns true while a progress bar is shown.
func (o *Output) ProgressActive() bool {
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	return o.progress != nil
}

// Progress returns a callback that drives a progress bar labelled
// description. The bar starts on the first call and ends once current
// reaches total.
func (o *Output) Progress(description string) func(current, total int) {
	started := false
	return func(current, total int) {
		if !started {
			o.StartProgress(total, description)
			started = true
		}
		o.UpdateProgress(current)
		if current >= total {
			o.EndProgress()
		}
	}
}

// IsVerbose returns whether verbose mode is enabled.
func (o *Output) IsVerbose() bool {
	return o.config.Verbose
}

// IsTTY returns whether the output is a terminal.
func (o *Output) IsTTY() bool {
	return o.config.IsTTY
}

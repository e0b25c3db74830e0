package app

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
)

// Context holds application-wide configuration and state
type Context struct {
	context.Context

	// Output preferences
	OutputFormat string
	Verbose      bool
	Quiet        bool
	NoColor      bool

	// Logger receives per-file events; it writes to stderr so reports on
	// stdout stay machine readable
	Logger zerolog.Logger

	// Progress reporting
	ProgressCallback func(message string, percent int)
}

// NewContext creates a new application context with an info-level logger
func NewContext() *Context {
	c := &Context{
		Context:      context.Background(),
		OutputFormat: "table",
	}
	c.ConfigureLogger(os.Stderr)
	return c
}

// ConfigureLogger rebuilds the logger for the current verbosity settings
func (c *Context) ConfigureLogger(w io.Writer) {
	level := zerolog.InfoLevel
	switch {
	case c.Quiet:
		level = zerolog.ErrorLevel
	case c.Verbose:
		level = zerolog.DebugLevel
	}

	c.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    c.NoColor,
		TimeFormat: time.TimeOnly,
	}).Level(level).With().Timestamp().Logger()
}

// WithTimeout creates a context with timeout
func (c *Context) WithTimeout(timeout time.Duration) (*Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(c.Context, timeout)
	newCtx := *c
	newCtx.Context = ctx
	return &newCtx, cancel
}

// WithSignals creates a context that is canceled when one of sigs arrives
func (c *Context) WithSignals(sigs ...os.Signal) (*Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(c.Context, sigs...)
	newCtx := *c
	newCtx.Context = ctx
	return &newCtx, stop
}

// Interrupted reports why the context ended before the work it carried
// finished, or nil while it is still live.
func (c *Context) Interrupted() error {
	switch err := c.Err(); {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(ErrCodeTimeout, "timed out before all cache files were processed", err)
	default:
		return NewError(ErrCodeCanceled, "interrupted before all cache files were processed", err)
	}
}

// SetProgress sets the progress callback function
func (c *Context) SetProgress(callback func(string, int)) {
	c.ProgressCallback = callback
}

// Progress reports progress if callback is set
func (c *Context) Progress(message string, percent int) {
	if c.ProgressCallback != nil {
		c.ProgressCallback(message, percent)
	}
}

// Log outputs a debug message
func (c *Context) Log(message string) {
	c.Logger.Debug().Msg(message)
}

// Error outputs an error message unless quiet
func (c *Context) Error(message string) {
	c.Logger.Error().Msg(message)
}

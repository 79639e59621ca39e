// console.go: Message channels used by the orchestrator
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ignite

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Console receives the messages of a Standalone on three channels. Verbose
// messages are only emitted when IsVerbose reports true.
type Console interface {
	Error(message string, args ...any)
	Info(message string, args ...any)
	Verbose(message string, args ...any)
	IsVerbose() bool
}

// Formatter renders a message template with its arguments.
type Formatter func(message string, args ...any) string

// DefaultFormat formats with fmt.Sprintf. Messages without arguments are
// returned verbatim, so help text containing '%' is never mangled.
func DefaultFormat(message string, args ...any) string {
	if len(args) == 0 {
		return message
	}
	return fmt.Sprintf(message, args...)
}

// BraceFormat replaces each "{}" placeholder with the next argument. Extra
// placeholders are kept, extra arguments are ignored.
func BraceFormat(message string, args ...any) string {
	if len(args) == 0 {
		return message
	}

	var b strings.Builder
	b.Grow(len(message) + 8*len(args))
	next := 0
	for {
		idx := strings.Index(message, "{}")
		if idx < 0 || next >= len(args) {
			b.WriteString(message)
			return b.String()
		}
		b.WriteString(message[:idx])
		fmt.Fprint(&b, args[next])
		next++
		message = message[idx+2:]
	}
}

// OutConsole writes every channel to its own writer, one message per line.
type OutConsole struct {
	errOut    io.Writer
	infoOut   io.Writer
	verbOut   io.Writer
	verbose   bool
	formatter Formatter
	mu        sync.Mutex
}

// NewConsole creates a console writing info and verbose messages to out and
// errors to errOut.
func NewConsole(out, errOut io.Writer, verbose bool) *OutConsole {
	return &OutConsole{
		errOut:    errOut,
		infoOut:   out,
		verbOut:   out,
		verbose:   verbose,
		formatter: DefaultFormat,
	}
}

// NewSingleConsole creates a console writing every channel to w.
func NewSingleConsole(w io.Writer, verbose bool) *OutConsole {
	return NewConsole(w, w, verbose)
}

// StdConsole writes to the process standard output and error.
func StdConsole(verbose bool) *OutConsole {
	return NewConsole(os.Stdout, os.Stderr, verbose)
}

// DiscardConsole drops every message.
func DiscardConsole() *OutConsole {
	return NewSingleConsole(io.Discard, false)
}

// WithFormatter replaces the message formatter.
func (c *OutConsole) WithFormatter(formatter Formatter) *OutConsole {
	if formatter != nil {
		c.formatter = formatter
	}
	return c
}

// WithVerbose enables or disables the verbose channel.
func (c *OutConsole) WithVerbose(verbose bool) *OutConsole {
	c.mu.Lock()
	c.verbose = verbose
	c.mu.Unlock()
	return c
}

// Error writes to the error channel.
func (c *OutConsole) Error(message string, args ...any) {
	c.write(c.errOut, message, args)
}

// Info writes to the info channel.
func (c *OutConsole) Info(message string, args ...any) {
	c.write(c.infoOut, message, args)
}

// Verbose writes to the verbose channel when enabled.
func (c *OutConsole) Verbose(message string, args ...any) {
	if c.IsVerbose() {
		c.write(c.verbOut, message, args)
	}
}

// IsVerbose reports whether verbose messages are emitted.
func (c *OutConsole) IsVerbose() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verbose
}

func (c *OutConsole) write(w io.Writer, message string, args []any) {
	if w == nil {
		return
	}
	text := c.formatter(message, args...)
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(w, text) // Console output is best effort
}

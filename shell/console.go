// console.go: Interactive console of a shell
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/agilira/ignite"
)

// Console is an ignite console that can also prompt and read lines.
type Console struct {
	*ignite.OutConsole

	out     io.Writer
	scanner *bufio.Scanner
	mu      sync.Mutex
}

// NewConsole creates a console reading commands from in and writing every
// channel to out.
func NewConsole(in io.Reader, out io.Writer, verbose bool) *Console {
	return &Console{
		OutConsole: ignite.NewSingleConsole(out, verbose),
		out:        out,
		scanner:    bufio.NewScanner(in),
	}
}

// StdConsole reads from standard input and writes to standard output.
func StdConsole(verbose bool) *Console {
	return NewConsole(os.Stdin, os.Stdout, verbose)
}

// Prompt writes text without a trailing newline.
func (c *Console) Prompt(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprint(c.out, text)
}

// ReadLine returns the next input line. It returns io.EOF once the input is
// exhausted.
func (c *Console) ReadLine() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.scanner.Scan() {
		return c.scanner.Text(), nil
	}
	if err := c.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

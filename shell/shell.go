// Package shell runs ignite applications as commands of a small interactive
// shell.
//
// Every command is a Standalone built on demand: the shell hands it the
// command tokens and its own console, ignites it and shuts it down before
// reading the next command. Commands are matched case-insensitively and
// several of them can be chained with ';'.
//
// Example Usage:
//
//	sh := shell.New(shell.StdConsole(false), map[string]shell.CommandFactory{
//	    "echo": func() *ignite.Builder {
//	        return ignite.NewBuilder(func() ignite.Ignitable { return &echo{} }).
//	            Name("echo").ParameterSets(echoParameters)
//	    },
//	})
//	if err := sh.Run(os.Args[1:]); err != nil {
//	    log.Fatal(err)
//	}
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package shell

import (
	goerrors "errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/agilira/go-errors"
	"github.com/agilira/ignite"
)

// Prompt is written before every interactive read.
const Prompt = ">> "

// Built-in commands
const (
	ExitCommand = "exit"
	HelpCommand = "help"
)

// CommandFactory returns a fresh builder for one execution of a command.
type CommandFactory func() *ignite.Builder

// Shell dispatches command lines to the registered commands. A Shell is also
// an Ignitable: driven by a Standalone it runs the commands found in the
// Standalone arguments.
type Shell struct {
	ignite.Adapter

	console  *Console
	commands map[string]CommandFactory
	stopped  atomic.Bool
}

// New creates a shell over commands, keyed by their case-insensitive name. A
// nil console selects the standard input and output.
func New(console *Console, commands map[string]CommandFactory) *Shell {
	if console == nil {
		console = StdConsole(false)
	}

	registered := make(map[string]CommandFactory, len(commands))
	for name, factory := range commands {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || factory == nil {
			continue
		}
		registered[name] = factory
	}

	return &Shell{
		console:  console,
		commands: registered,
	}
}

// Console returns the shell console.
func (sh *Shell) Console() ignite.Console {
	return sh.console
}

// Commands returns the registered command names in ascending order.
func (sh *Shell) Commands() []string {
	names := make([]string, 0, len(sh.commands))
	for name := range sh.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Startup implements ignite.StartupHook.
func (sh *Shell) Startup() error {
	var args []string
	if s := sh.Standalone(); s != nil {
		args = s.Arguments()
	}
	return sh.Run(args)
}

// Run executes the ';' separated commands found in args in order and stops
// at the first failure. Without commands it reads them interactively until
// exit or the end of the input.
func (sh *Shell) Run(args []string) error {
	sh.stopped.Store(false)

	commands := ignite.SplitCommands(strings.Join(args, " "))
	if len(commands) == 0 {
		return sh.interactive()
	}
	return sh.batch(commands)
}

// Execute runs one command line, which may chain several commands.
func (sh *Shell) Execute(line string) error {
	return sh.batch(ignite.SplitCommands(line))
}

// Stopped reports whether the exit command was executed.
func (sh *Shell) Stopped() bool {
	return sh.stopped.Load()
}

func (sh *Shell) batch(commands [][]string) error {
	for _, tokens := range commands {
		if sh.stopped.Load() {
			return nil
		}
		if err := sh.execute(tokens); err != nil {
			return err
		}
	}
	return nil
}

// interactive reports failed commands on the error channel and keeps reading.
func (sh *Shell) interactive() error {
	for !sh.stopped.Load() {
		sh.console.Prompt(Prompt)

		line, err := sh.console.ReadLine()
		if goerrors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, ignite.ErrCodeShellInput, "failed to read command")
		}

		if err := sh.Execute(line); err != nil {
			sh.console.Error(err.Error())
		}
	}
	return nil
}

// execute runs a single command whose first token is its name.
func (sh *Shell) execute(tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}

	name := strings.ToLower(tokens[0])
	switch name {
	case ExitCommand:
		sh.stopped.Store(true)
		return nil
	case HelpCommand:
		sh.console.Info(sh.helpText())
		return nil
	}

	factory, ok := sh.commands[name]
	if !ok {
		return errors.New(ignite.ErrCodeUnknownCommand,
			fmt.Sprintf("unknown command %s, available commands are %s", tokens[0], sh.commandList())).
			WithContext("command", tokens[0])
	}

	return sh.launch(name, factory, tokens[1:])
}

// launch builds the Standalone of a command, ignites it and shuts it down.
func (sh *Shell) launch(name string, factory CommandFactory, args []string) error {
	builder := factory()
	if builder == nil {
		return errors.New(ignite.ErrCodeInvalidBuilder, fmt.Sprintf("command %s has no builder", name))
	}

	standalone, err := builder.
		ShowBanner(false).
		ExitHook(false).
		RegisterLatest(false).
		Console(sh.console).
		Arguments(args...).
		Build()
	if err != nil {
		return err
	}

	if err := standalone.Ignite(); err != nil {
		return err
	}
	return standalone.Shutdown()
}

func (sh *Shell) commandList() string {
	return "[" + strings.Join(sh.Commands(), ", ") + "]"
}

func (sh *Shell) helpText() string {
	return "Available commands are: " + sh.commandList() + "\n" +
		"To exit from shell please use '" + ExitCommand + "' command\n" +
		"To get help with a certain command write: <command> -help"
}

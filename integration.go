// integration.go: Conventional flag support through FlashFlags
//
// Parameters are written as prefix:value tokens. The bridge below lets the same
// parameters be given as --name=value flags, where name is the first prefix
// without its leading dashes, and feeds them back to the resolver as tokens.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ignite

import (
	"strings"

	flashflags "github.com/agilira/flash-flags"
	"github.com/agilira/go-errors"
)

// FlagBridge translates --name=value flags into prefix:value tokens.
type FlagBridge struct {
	flags    *flashflags.FlagSet
	appName  string
	bindings map[string]string // flag name -> prefix
	order    []string
}

// NewFlagBridge registers one string flag per parameter of sets.
func NewFlagBridge(appName string, sets ...*ParameterSet) *FlagBridge {
	b := &FlagBridge{
		flags:    flashflags.New(appName),
		appName:  appName,
		bindings: make(map[string]string),
	}

	for _, set := range sets {
		if set == nil {
			continue
		}
		for _, p := range set.Parameters() {
			b.bind(p)
		}
	}
	return b
}

// WithEnvPrefix also reads bound flags from <PREFIX>_<FLAG> environment
// variables. Without it only the arguments are consulted.
func (b *FlagBridge) WithEnvPrefix(prefix string) *FlagBridge {
	b.flags.SetEnvPrefix(prefix)
	return b
}

// SetDescription sets the description shown by PrintUsage.
func (b *FlagBridge) SetDescription(description string) *FlagBridge {
	b.flags.SetDescription(description)
	return b
}

// SetVersion sets the version shown by PrintUsage.
func (b *FlagBridge) SetVersion(version string) *FlagBridge {
	b.flags.SetVersion(version)
	return b
}

func (b *FlagBridge) bind(p *Parameter) {
	prefixes := p.Prefixes()
	if len(prefixes) == 0 {
		return
	}
	name := FlagName(prefixes[0])
	if name == "" {
		return
	}
	if _, exists := b.bindings[name]; exists {
		return
	}

	b.bindings[name] = prefixes[0]
	b.order = append(b.order, name)
	b.flags.String(name, "", p.Help())
}

// FlagNames returns the registered flag names in registration order.
func (b *FlagBridge) FlagNames() []string {
	registered := make(map[string]bool, len(b.order))
	b.flags.VisitAll(func(flag *flashflags.Flag) {
		registered[flag.Name()] = true
	})

	names := make([]string, 0, len(b.order))
	for _, name := range b.order {
		if registered[name] {
			names = append(names, name)
		}
	}
	return names
}

// Translate parses the --name=value arguments bound to a parameter and returns
// one prefix:value token per flag that received a non-empty value. Every other
// argument is ignored.
func (b *FlagBridge) Translate(args []string) ([]string, error) {
	if len(b.order) == 0 {
		return nil, nil
	}

	selected := b.selectArgs(args)
	if err := b.flags.Parse(selected); err != nil {
		return nil, errors.Wrap(err, ErrCodeFlagTranslation, "failed to parse conventional flags").
			WithContext("arguments", strings.Join(selected, " "))
	}

	var tokens []string
	for _, name := range b.order {
		value := b.flags.GetString(name)
		if strings.TrimSpace(value) == "" {
			continue
		}
		tokens = append(tokens, b.bindings[name]+":"+value)
	}
	return tokens, nil
}

// selectArgs keeps the --name=value and -name=value arguments of bound flags,
// normalized to the double dash form.
func (b *FlagBridge) selectArgs(args []string) []string {
	var selected []string
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		name, value, ok := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !ok {
			continue
		}
		if _, bound := b.bindings[name]; bound {
			selected = append(selected, "--"+name+"="+value)
		}
	}
	return selected
}

// PrintUsage prints the FlashFlags help for the bound flags.
func (b *FlagBridge) PrintUsage() {
	b.flags.PrintHelp()
}

// FlagName derives a flag name from a prefix: "-port" becomes "port".
func FlagName(prefix string) string {
	return strings.TrimLeft(prefix, "-")
}

// TranslateFlags builds a bridge for sets and translates args in one call.
func TranslateFlags(appName string, args []string, sets ...*ParameterSet) ([]string, error) {
	return NewFlagBridge(appName, sets...).Translate(args)
}

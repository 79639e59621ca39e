// parameter_set.go: Named groups of parameters, resolution passes and help text
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ignite

import (
	"fmt"
	"strings"

	"github.com/agilira/go-errors"
)

// ParameterSet is an ordered, named group of parameters, conventionally one per
// configuration concern.
type ParameterSet struct {
	name       string
	parameters []*Parameter
}

// NewParameterSet groups parameters under name. Nil parameters are ignored.
func NewParameterSet(name string, parameters ...*Parameter) *ParameterSet {
	set := &ParameterSet{name: name}
	return set.Add(parameters...)
}

// Add appends parameters in declaration order.
func (s *ParameterSet) Add(parameters ...*Parameter) *ParameterSet {
	for _, p := range parameters {
		if p != nil {
			s.parameters = append(s.parameters, p)
		}
	}
	return s
}

// Name returns the name of the set.
func (s *ParameterSet) Name() string { return s.name }

// Parameters returns the parameters in declaration order.
func (s *ParameterSet) Parameters() []*Parameter {
	out := make([]*Parameter, len(s.parameters))
	copy(out, s.parameters)
	return out
}

// Lookup returns the parameter called name, or nil.
func (s *ParameterSet) Lookup(name string) *Parameter {
	for _, p := range s.parameters {
		if p.name == name {
			return p
		}
	}
	return nil
}

// Parse resolves every parameter in declaration order and stops at the first failure.
func (s *ParameterSet) Parse(tokens []string) error {
	for _, p := range s.parameters {
		if err := p.Resolve(tokens); err != nil {
			return err
		}
	}
	return nil
}

// Validate runs every validator in declaration order and stops at the first failure.
func (s *ParameterSet) Validate() error {
	for _, p := range s.parameters {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Reset restores every parameter to its default.
func (s *ParameterSet) Reset() {
	for _, p := range s.parameters {
		p.Reset()
	}
}

// HelpLines returns the usage line of every parameter.
func (s *ParameterSet) HelpLines() []string {
	lines := make([]string, len(s.parameters))
	for i, p := range s.parameters {
		lines[i] = p.Help()
	}
	return lines
}

// verify reports declarations that cannot be resolved unambiguously.
func (s *ParameterSet) verify() error {
	names := make(map[string]struct{}, len(s.parameters))
	for _, p := range s.parameters {
		if _, dup := names[p.name]; dup {
			return errors.New(ErrCodeDuplicateParameter,
				fmt.Sprintf("parameter %s declared twice in set %s", p.name, s.name)).
				WithContext("set", s.name).
				WithContext("parameter", p.name)
		}
		names[p.name] = struct{}{}
	}
	return nil
}

// ParseAll parses sets in registration order and returns the first failure.
func ParseAll(tokens []string, sets ...*ParameterSet) error {
	for _, set := range sets {
		if set == nil {
			continue
		}
		if err := set.Parse(tokens); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAll validates sets in registration order and returns the first failure.
func ValidateAll(sets ...*ParameterSet) error {
	for _, set := range sets {
		if set == nil {
			continue
		}
		if err := set.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Help renders the usage text of sets: an optional description line, a "Usage:"
// line and one tab-indented line per parameter.
func Help(description string, sets ...*ParameterSet) string {
	var b strings.Builder
	if description != "" {
		b.WriteString(description)
		b.WriteString("\n")
	}
	b.WriteString("Usage:\n")
	for _, set := range sets {
		if set == nil {
			continue
		}
		for _, line := range set.HelpLines() {
			b.WriteString("\t")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

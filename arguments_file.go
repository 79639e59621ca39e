// arguments_file.go: YAML arguments file
//
// An arguments file maps parameter names, or any of their prefixes, to raw
// values:
//
//	port: 8080
//	-mode: prod
//	peers: [a, b, c]   # sequences are joined with ","
//
// Entries become prefix:value tokens appended after the command line tokens,
// so values typed on the command line take precedence.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ignite

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/agilira/go-errors"
	"go.yaml.in/yaml/v3"
)

// LoadArgumentsFile reads path and converts its entries into tokens for the
// parameters of sets.
func LoadArgumentsFile(path string, sets ...*ParameterSet) ([]string, error) {
	if err := ValidateSecurePath(path); err != nil {
		return nil, errors.Wrap(err, ErrCodeArgumentsFile, "unsafe arguments file path")
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path validated above
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeArgumentsFile, "failed to read arguments file").
			WithContext("path", path)
	}

	return ParseArguments(data, sets...)
}

// ParseArguments converts a YAML document into tokens for the parameters of
// sets. Null entries are skipped so that defaults apply. Unknown keys and
// nested mappings are errors.
func ParseArguments(data []byte, sets ...*ParameterSet) ([]string, error) {
	entries := map[string]yaml.Node{}
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(err, ErrCodeArgumentsFile, "malformed arguments document")
	}

	consumed := make(map[string]bool, len(entries))
	var tokens []string
	for _, set := range sets {
		if set == nil {
			continue
		}
		for _, p := range set.Parameters() {
			key, prefix, ok := matchEntry(entries, p)
			if !ok {
				continue
			}
			consumed[key] = true

			node := entries[key]
			value, present, err := nodeValue(&node)
			if err != nil {
				return nil, errors.Wrap(err, ErrCodeArgumentsFile, "invalid value").WithContext("key", key)
			}
			if present {
				tokens = append(tokens, prefix+":"+value)
			}
		}
	}

	var unknown []string
	for key := range entries {
		if !consumed[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, errors.New(ErrCodeArgumentsFile,
			fmt.Sprintf("unknown parameters in arguments file: [%s]", strings.Join(unknown, ", ")))
	}

	return tokens, nil
}

// matchEntry finds the entry of p, by name first and then by prefix, and
// returns the prefix used to build its token.
func matchEntry(entries map[string]yaml.Node, p *Parameter) (string, string, bool) {
	prefixes := p.Prefixes()
	if _, ok := entries[p.Name()]; ok {
		return p.Name(), prefixes[0], true
	}
	for _, prefix := range prefixes {
		if _, ok := entries[prefix]; ok {
			return prefix, prefix, true
		}
	}
	return "", "", false
}

// nodeValue renders a YAML node as a raw parameter value.
func nodeValue(node *yaml.Node) (string, bool, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return "", false, nil
		}
		return node.Value, true, nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return "", false, fmt.Errorf("sequence items must be scalars")
			}
			items = append(items, item.Value)
		}
		return strings.Join(items, ","), true, nil
	case yaml.AliasNode:
		if node.Alias != nil {
			return nodeValue(node.Alias)
		}
		return "", false, fmt.Errorf("dangling alias")
	default:
		return "", false, fmt.Errorf("nested mappings are not supported")
	}
}

// tokenizer.go: Reconstruction of logical arguments from shell-split argv
//
// A shell splits `-path:"c:\tmp a\"` into two argv entries. The tokenizer joins
// the raw entries back with single spaces and scans them again so that every
// `prefix:value` pair becomes exactly one token.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ignite

import "strings"

// Tokenize rebuilds the logical arguments of a raw argument vector.
//
// All entries are joined with a single space and scanned left to right. A run of
// non-space characters that contains a double quote extends up to the next quote
// followed by a space or by the end of the input, spaces included. Any other run
// ends at the next space. A quoted run without such a closing quote is read as a
// plain run. Tokens are trimmed and empty tokens are dropped.
//
// An empty input produces an empty, non-nil slice.
func Tokenize(args []string) []string {
	tokens := make([]string, 0, len(args))
	if len(args) == 0 {
		return tokens
	}

	line := strings.Join(args, " ")
	for i := 0; i < len(line); {
		if line[i] == ' ' {
			i++
			continue
		}

		end := plainEnd(line, i)
		if quote := strings.IndexByte(line[i:end], '"'); quote >= 0 {
			if closing := closingQuote(line, i+quote+1); closing > 0 {
				end = closing + 1
			}
		}

		if token := strings.TrimSpace(line[i:end]); token != "" {
			tokens = append(tokens, token)
		}
		i = end
	}

	return tokens
}

// plainEnd returns the index of the first space at or after start, or len(line).
func plainEnd(line string, start int) int {
	if idx := strings.IndexByte(line[start:], ' '); idx >= 0 {
		return start + idx
	}
	return len(line)
}

// closingQuote finds the first quote at or after from that is followed by a space
// or by the end of line. It returns -1 when there is none.
func closingQuote(line string, from int) int {
	for j := from; j < len(line); j++ {
		if line[j] != '"' {
			continue
		}
		if j == len(line)-1 || line[j+1] == ' ' {
			return j
		}
	}
	return -1
}

// Unquote removes one pair of surrounding double quotes from a raw value.
// Values that are not fully quoted are returned unchanged.
func Unquote(raw string) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return raw[1 : len(raw)-1]
	}
	return raw
}

// SplitCommands splits a command line into groups of logical tokens, one group
// per `;` separated command. Separators inside quoted runs are kept. Empty
// commands are skipped.
func SplitCommands(line string) [][]string {
	var (
		commands [][]string
		current  strings.Builder
		quoted   bool
	)

	flush := func() {
		if tokens := Tokenize([]string{current.String()}); len(tokens) > 0 {
			commands = append(commands, tokens)
		}
		current.Reset()
	}

	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			current.WriteRune(r)
		case r == ';' && !quoted:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return commands
}

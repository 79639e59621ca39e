// integration_test.go: Tests for conventional flag translation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ignite

import (
	"reflect"
	"testing"
)

func newBridgeSet(t *testing.T) *ParameterSet {
	t.Helper()
	port := NewParameter[int]("port").Prefixes("-port", "--listen-port").Default("8080").MustBuild()
	host := NewParameter[string]("host").Default("localhost").MustBuild()
	mode := NewParameter[string]("mode").Prefixes("--mode").Default("dev").MustBuild()
	return NewParameterSet("server", port, host, mode)
}

func TestFlagName(t *testing.T) {
	tests := map[string]string{
		"-port":   "port",
		"--mode":  "mode",
		"db.url":  "db.url",
		"-":       "",
		"---deep": "deep",
	}
	for prefix, expected := range tests {
		if got := FlagName(prefix); got != expected {
			t.Errorf("FlagName(%q) = %q, expected %q", prefix, got, expected)
		}
	}
}

func TestFlagBridgeRegistersFirstPrefix(t *testing.T) {
	bridge := NewFlagBridge("demo", newBridgeSet(t))

	expected := []string{"port", "host", "mode"}
	if got := bridge.FlagNames(); !reflect.DeepEqual(got, expected) {
		t.Errorf("FlagNames = %v, expected %v", got, expected)
	}
}

func TestFlagBridgeTranslate(t *testing.T) {
	bridge := NewFlagBridge("demo", newBridgeSet(t))

	tokens, err := bridge.Translate([]string{"--port=9090", "-mode=prod", "positional", "--unknown=1", "-host:ignored"})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	expected := []string{"-port:9090", "--mode:prod"}
	if !reflect.DeepEqual(tokens, expected) {
		t.Errorf("tokens = %v, expected %v", tokens, expected)
	}
}

func TestFlagBridgeNoFlags(t *testing.T) {
	tokens, err := TranslateFlags("demo", []string{"-port:1"}, newBridgeSet(t))
	if err != nil {
		t.Fatalf("TranslateFlags failed: %v", err)
	}
	if len(tokens) != 0 {
		t.Errorf("expected no tokens, got %v", tokens)
	}

	tokens, err = TranslateFlags("demo", []string{"--port=1"})
	if err != nil || tokens != nil {
		t.Errorf("bridge without parameters should be inert, got %v, %v", tokens, err)
	}
}

func TestTranslatedFlagsResolve(t *testing.T) {
	set := newBridgeSet(t)

	args := []string{"--port=7000"}
	tokens := Tokenize(args)
	translated, err := TranslateFlags("demo", args, set)
	if err != nil {
		t.Fatalf("TranslateFlags failed: %v", err)
	}
	tokens = append(tokens, translated...)

	if err := set.Parse(tokens); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	port := Get[int](set.Lookup("port"))
	if port != 7000 {
		t.Errorf("port = %d, expected 7000", port)
	}
}

func TestFlagBridgeEnvironmentIsOptIn(t *testing.T) {
	t.Setenv("DEMO_HOST", "db.internal")

	tokens, err := NewFlagBridge("demo", newBridgeSet(t)).Translate(nil)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if len(tokens) != 0 {
		t.Errorf("environment should be ignored without a prefix, got %v", tokens)
	}

	tokens, err = NewFlagBridge("demo", newBridgeSet(t)).WithEnvPrefix("DEMO").Translate(nil)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	expected := []string{"-host:db.internal"}
	if !reflect.DeepEqual(tokens, expected) {
		t.Errorf("tokens = %v, expected %v", tokens, expected)
	}
}

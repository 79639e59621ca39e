// parameter_set_test.go: Tests for parameter sets and help generation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ignite

import (
	goerrors "errors"
	"testing"
)

// TestParameterSetParseStopsAtFirstFailure verifies later parameters stay unresolved.
func TestParameterSetParseStopsAtFirstFailure(t *testing.T) {
	first := NewParameter[int]("first").Default("1").MustBuild()
	missing := NewParameter[string]("missing").MustBuild()
	last := NewParameter[int]("last").Default("3").MustBuild()
	set := NewParameterSet("ordered", first, missing, last)

	err := set.Parse([]string{"-first:10", "-last:30"})
	var pe *ParameterError
	if !goerrors.As(err, &pe) || pe.Parameter != missing {
		t.Fatalf("expected failure on missing, got %v", err)
	}
	if Get[int](first) != 10 {
		t.Errorf("first = %d, expected 10", Get[int](first))
	}
	if Get[int](last) != 3 {
		t.Errorf("last = %d, expected untouched default 3", Get[int](last))
	}
}

// TestParseAllAcrossSets verifies sets are resolved in registration order.
func TestParseAllAcrossSets(t *testing.T) {
	host := NewParameter[string]("host").Default("localhost").MustBuild()
	user := NewParameter[string]("user").MustBuild()
	first := NewParameterSet("server", host)
	second := NewParameterSet("auth", user)

	err := ParseAll([]string{"-host:example.org"}, first, nil, second)
	if !IsMandatoryNotProvided(err) {
		t.Fatalf("expected missing user, got %v", err)
	}
	var pe *ParameterError
	if goerrors.As(err, &pe) && pe.Parameter != user {
		t.Errorf("error names %s, expected user", pe.Parameter.Name())
	}
	if Get[string](host) != "example.org" {
		t.Errorf("first set should be resolved before the failure")
	}
}

// TestValidateAll verifies validation runs in registration order.
func TestValidateAll(t *testing.T) {
	ok := NewParameter[int]("ok").Default("1").Validator(func(int) string { return "" }).MustBuild()
	bad := NewParameter[int]("bad").Default("2").Validator(func(int) string { return "always wrong" }).MustBuild()

	err := ValidateAll(NewParameterSet("a", ok), NewParameterSet("b", bad))
	var pe *ParameterError
	if !goerrors.As(err, &pe) || pe.Kind != InvalidParameter || pe.Parameter != bad {
		t.Fatalf("expected InvalidParameter on bad, got %v", err)
	}
	if ErrorCodeOf(err) != ErrCodeInvalidParameter {
		t.Errorf("unexpected code %q", ErrorCodeOf(err))
	}
}

// TestParameterSetLookupAndReset verifies name lookup and default restoration.
func TestParameterSetLookupAndReset(t *testing.T) {
	port := NewParameter[int]("port").Default("80").MustBuild()
	set := NewParameterSet("net", port, nil)

	if len(set.Parameters()) != 1 {
		t.Fatalf("nil parameters should be ignored, got %d", len(set.Parameters()))
	}
	if set.Lookup("port") != port || set.Lookup("missing") != nil {
		t.Error("Lookup returned unexpected parameter")
	}
	if err := set.Parse([]string{"-port:81"}); err != nil {
		t.Fatal(err)
	}
	set.Reset()
	if Get[int](port) != 80 {
		t.Errorf("port = %d after Reset, expected 80", Get[int](port))
	}
}

// TestParameterSetVerify verifies duplicate names are detected.
func TestParameterSetVerify(t *testing.T) {
	set := NewParameterSet("dup",
		NewParameter[int]("port").Default("1").MustBuild(),
		NewParameter[int]("port").Prefixes("-p").Default("2").MustBuild())

	if err := set.verify(); ErrorCodeOf(err) != ErrCodeDuplicateParameter {
		t.Errorf("expected duplicate error, got %v", err)
	}
	if err := NewParameterSet("fine", NewParameter[int]("a").MustBuild()).verify(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestHelp verifies the usage text layout for several sets.
func TestHelp(t *testing.T) {
	first := NewParameterSet("server",
		NewParameter[int]("port").Description("listening port").Default("8080").MustBuild(),
		NewParameter[string]("host").Prefixes("-host", "-h").Description("bind address").MustBuild())
	second := NewParameterSet("runtime",
		NewParameter[float64]("ratio").Description("sampling ratio").Default("3123.32").MustBuild())

	expected := "Echo server\n" +
		"Usage:\n" +
		"\t[-port]: listening port (Default: 8080)\n" +
		"\t[-host, -h]: bind address (Mandatory)\n" +
		"\t[-ratio]: sampling ratio (Default: 3123.32)\n"
	if got := Help("Echo server", first, second); got != expected {
		t.Errorf("Help() =\n%s\nexpected\n%s", got, expected)
	}

	if got := Help(""); got != "Usage:\n" {
		t.Errorf("Help() without sets = %q", got)
	}
}

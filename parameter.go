// parameter.go: Typed parameter descriptors
//
// A Parameter is a plain record: name, accepted prefixes, declared type, a parser,
// an optional validator and an optional default. Descriptors are declared once,
// usually as package-level variables grouped in a ParameterSet, and hold the
// value resolved from the command line.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ignite

import (
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/agilira/go-errors"
)

// Kind is the semantic type tag of a parameter.
type Kind int

const (
	KindBoolean Kind = iota + 1
	KindInteger
	KindFloat
	KindDecimal
	KindString
	KindPath
	KindDate
	KindTime
	KindDateTime
	KindDuration
	KindEnumeration
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindPath:
		return "path"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindDateTime:
		return "date-time"
	case KindDuration:
		return "duration"
	case KindEnumeration:
		return "enumeration"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Parameter is a declared configuration item bound from `prefix:value` tokens.
type Parameter struct {
	name          string
	description   string
	prefixes      []string
	kind          Kind
	typ           reflect.Type
	parser        func(string) (any, error)
	validator     func(any) string
	defaultRaw    string
	hasDefault    bool
	caseSensitive bool
	members       []string
	bind          func(any)

	initial *holder
	value   atomic.Pointer[holder]
}

// holder boxes a resolved value so that nil-free atomic swaps are possible.
type holder struct {
	v any
}

// Name returns the unique name of the parameter within its set.
func (p *Parameter) Name() string { return p.name }

// Description returns the help description.
func (p *Parameter) Description() string { return p.description }

// Prefixes returns a copy of the accepted prefixes, in declaration order.
func (p *Parameter) Prefixes() []string {
	out := make([]string, len(p.prefixes))
	copy(out, p.prefixes)
	return out
}

// Kind returns the semantic type tag.
func (p *Parameter) Kind() Kind { return p.kind }

// Type returns the declared Go type of the value.
func (p *Parameter) Type() reflect.Type { return p.typ }

// Default returns the raw default value and whether one is configured.
func (p *Parameter) Default() (string, bool) { return p.defaultRaw, p.hasDefault }

// IsMandatory reports whether the parameter has no default value.
func (p *Parameter) IsMandatory() bool { return !p.hasDefault }

// IsCaseSensitive reports whether enumeration members are matched case-sensitively.
func (p *Parameter) IsCaseSensitive() bool { return p.caseSensitive }

// Members returns the enumeration member names, or nil for other kinds.
func (p *Parameter) Members() []string {
	if len(p.members) == 0 {
		return nil
	}
	out := make([]string, len(p.members))
	copy(out, p.members)
	return out
}

// Value returns the current value, or nil when nothing has been resolved yet
// and no default was configured.
func (p *Parameter) Value() any {
	if h := p.value.Load(); h != nil {
		return h.v
	}
	return nil
}

// HasValue reports whether the parameter currently holds a value.
func (p *Parameter) HasValue() bool {
	return p.value.Load() != nil
}

// Reset restores the value parsed from the default, or clears it.
func (p *Parameter) Reset() {
	p.value.Store(p.initial)
}

// Help renders the usage line of the parameter:
//
//	[-port, -p]: listening port (Default: 8080)
func (p *Parameter) Help() string {
	suffix := "Mandatory"
	if p.hasDefault {
		suffix = "Default: " + p.defaultRaw
	}
	return fmt.Sprintf("[%s]: %s (%s)", strings.Join(p.prefixes, ", "), p.description, suffix)
}

// String implements fmt.Stringer.
func (p *Parameter) String() string {
	return fmt.Sprintf("%s[%s]=%v", p.name, p.kind, p.Value())
}

// Resolve binds the parameter from the tokenized arguments.
//
// The first token that starts with one of the prefixes followed by ':' wins.
// Its value is the text after the first ':', trimmed and unquoted. Without a
// match the default is used. The resolved value replaces the current one only
// when its type is assignable to the declared type.
func (p *Parameter) Resolve(tokens []string) error {
	raw, found := p.find(tokens)
	if !found {
		if !p.hasDefault {
			return &ParameterError{Kind: MandatoryParameterNotProvided, Parameter: p}
		}
		raw = p.defaultRaw
	}

	if raw == "" {
		return &ParameterError{Kind: NullOrEmptyMandatoryParameter, Parameter: p}
	}

	value, err := p.parse(raw)
	if err != nil {
		return &ParameterError{Kind: UnparseableParameter, Parameter: p, Value: raw, Cause: err}
	}

	p.setValue(value)
	return nil
}

// Validate runs the validator against the current value.
func (p *Parameter) Validate() error {
	if p.validator == nil {
		return nil
	}
	h := p.value.Load()
	if h == nil {
		return nil
	}
	if reason := p.check(h.v); reason != "" {
		return &ParameterError{Kind: InvalidParameter, Parameter: p, Value: fmt.Sprint(h.v), Reason: reason}
	}
	return nil
}

// find returns the raw value of the first matching token.
func (p *Parameter) find(tokens []string) (string, bool) {
	for _, token := range tokens {
		for _, prefix := range p.prefixes {
			if strings.HasPrefix(token, prefix+":") {
				raw := token[strings.IndexByte(token, ':')+1:]
				return Unquote(strings.TrimSpace(raw)), true
			}
		}
	}
	return "", false
}

// parse invokes the parser, turning a parser panic into an error.
func (p *Parameter) parse(raw string) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()
	return p.parser(raw)
}

// check invokes the validator, turning a validator panic into a reason.
func (p *Parameter) check(value any) (reason string) {
	defer func() {
		if r := recover(); r != nil {
			reason = fmt.Sprintf("validator panic: %v", r)
		}
	}()
	return p.validator(value)
}

// setValue stores value if it is assignable to the declared type and reports
// whether it did. Values of any other type leave the current value untouched.
func (p *Parameter) setValue(value any) bool {
	if value == nil || !reflect.TypeOf(value).AssignableTo(p.typ) {
		return false
	}
	p.value.Store(&holder{v: value})
	if p.bind != nil {
		p.bind(value)
	}
	return true
}

// Get returns the current value of p as T, or the zero value of T.
func Get[T any](p *Parameter) T {
	v, _ := Lookup[T](p)
	return v
}

// Lookup returns the current value of p as T and whether it was present with that type.
func Lookup[T any](p *Parameter) (T, bool) {
	var zero T
	if p == nil {
		return zero, false
	}
	v, ok := p.Value().(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// ParameterBuilder configures a Parameter of type T.
type ParameterBuilder[T any] struct {
	name          string
	description   string
	prefixes      []string
	kind          Kind
	parser        func(string) (T, error)
	validator     func(T) string
	defaultRaw    string
	hasDefault    bool
	caseSensitive bool
	members       []T
	target        *T
}

// NewParameter starts the declaration of a parameter named name whose values are of type T.
func NewParameter[T any](name string) *ParameterBuilder[T] {
	return &ParameterBuilder[T]{
		name:          name,
		caseSensitive: true,
	}
}

// Description sets the help description.
func (b *ParameterBuilder[T]) Description(description string) *ParameterBuilder[T] {
	b.description = description
	return b
}

// Prefixes sets the accepted prefixes, e.g. "-port", "-p".
// Without prefixes the parameter accepts "-" followed by its lowercased name.
func (b *ParameterBuilder[T]) Prefixes(prefixes ...string) *ParameterBuilder[T] {
	b.prefixes = append(b.prefixes, prefixes...)
	return b
}

// Default sets the raw default value. A parameter with a default is optional.
func (b *ParameterBuilder[T]) Default(raw string) *ParameterBuilder[T] {
	b.defaultRaw = raw
	b.hasDefault = true
	return b
}

// Kind overrides the derived semantic type: KindPath for strings, KindDate or
// KindTime for time.Time.
func (b *ParameterBuilder[T]) Kind(kind Kind) *ParameterBuilder[T] {
	b.kind = kind
	return b
}

// Parser replaces the built-in parser.
func (b *ParameterBuilder[T]) Parser(parser func(string) (T, error)) *ParameterBuilder[T] {
	b.parser = parser
	return b
}

// Validator sets a semantic check returning "" on success or the reason of the failure.
func (b *ParameterBuilder[T]) Validator(validator func(T) string) *ParameterBuilder[T] {
	b.validator = validator
	return b
}

// Check sets a semantic check returning an error whose message becomes the reason.
func (b *ParameterBuilder[T]) Check(check func(T) error) *ParameterBuilder[T] {
	if check == nil {
		b.validator = nil
		return b
	}
	b.validator = func(value T) string {
		if err := check(value); err != nil {
			return err.Error()
		}
		return ""
	}
	return b
}

// Enum restricts the values to members, matched by their fmt.Sprint name.
func (b *ParameterBuilder[T]) Enum(members ...T) *ParameterBuilder[T] {
	b.members = append(b.members, members...)
	if b.kind == 0 {
		b.kind = KindEnumeration
	}
	return b
}

// CaseSensitive sets whether enumeration members are matched case-sensitively (default true).
func (b *ParameterBuilder[T]) CaseSensitive(caseSensitive bool) *ParameterBuilder[T] {
	b.caseSensitive = caseSensitive
	return b
}

// CaseInsensitive is shorthand for CaseSensitive(false).
func (b *ParameterBuilder[T]) CaseInsensitive() *ParameterBuilder[T] {
	return b.CaseSensitive(false)
}

// Bind stores every resolved value into target as well.
func (b *ParameterBuilder[T]) Bind(target *T) *ParameterBuilder[T] {
	b.target = target
	return b
}

// Build validates the declaration and returns the parameter. A configured
// default is parsed immediately and becomes the initial value.
func (b *ParameterBuilder[T]) Build() (*Parameter, error) {
	name := strings.TrimSpace(b.name)
	if name == "" {
		return nil, errors.New(ErrCodeInvalidParameterDefinition, "parameter name cannot be empty")
	}

	prefixes, err := normalizePrefixes(name, b.prefixes)
	if err != nil {
		return nil, err
	}

	typ := reflect.TypeFor[T]()
	p := &Parameter{
		name:          name,
		description:   b.description,
		prefixes:      prefixes,
		typ:           typ,
		defaultRaw:    b.defaultRaw,
		hasDefault:    b.hasDefault,
		caseSensitive: b.caseSensitive,
	}

	if err := b.configureParser(p); err != nil {
		return nil, errors.Wrap(err, ErrCodeInvalidParameterDefinition,
			fmt.Sprintf("invalid definition of parameter %s", name)).
			WithContext("parameter", name).
			WithContext("type", typ.String())
	}

	if b.validator != nil {
		validator := b.validator
		p.validator = func(value any) string {
			typed, ok := value.(T)
			if !ok {
				return fmt.Sprintf("unexpected value type %T", value)
			}
			return validator(typed)
		}
	}

	if b.target != nil {
		target := b.target
		p.bind = func(value any) {
			if typed, ok := value.(T); ok {
				*target = typed
			}
		}
	}

	if p.hasDefault && p.defaultRaw != "" {
		value, err := p.parse(p.defaultRaw)
		if err != nil {
			return nil, errors.Wrap(err, ErrCodeInvalidParameterDefinition,
				fmt.Sprintf("default value %q of parameter %s is unparseable", p.defaultRaw, name)).
				WithContext("parameter", name)
		}
		if p.setValue(value) {
			p.initial = p.value.Load()
		}
	}

	return p, nil
}

// MustBuild is like Build but panics on an invalid declaration. It is meant for
// package-level parameter variables.
func (b *ParameterBuilder[T]) MustBuild() *Parameter {
	p, err := b.Build()
	if err != nil {
		panic(err)
	}
	return p
}

// configureParser selects the parser and the kind of p.
func (b *ParameterBuilder[T]) configureParser(p *Parameter) error {
	switch {
	case len(b.members) > 0:
		if b.kind != KindEnumeration {
			return fmt.Errorf("enumeration members cannot be used with kind %s", b.kind)
		}
		p.kind = KindEnumeration
		p.members = memberNames(b.members)
		members := b.members
		caseSensitive := b.caseSensitive
		names := p.members
		p.parser = func(raw string) (any, error) {
			for i, name := range names {
				if name == raw || (!caseSensitive && strings.EqualFold(name, raw)) {
					return members[i], nil
				}
			}
			return nil, fmt.Errorf("unable to parse value %s, valid values are [%s]", raw, strings.Join(names, " "))
		}
		return nil

	case b.kind == KindEnumeration:
		return fmt.Errorf("enumeration without members")

	case b.parser != nil:
		p.kind = KindCustom
		if b.kind != 0 {
			p.kind = b.kind
		}
		parser := b.parser
		p.parser = func(raw string) (any, error) {
			value, err := parser(raw)
			if err != nil {
				return nil, err
			}
			return value, nil
		}
		return nil
	}

	kind, parser, err := builtinParser(p.typ, b.kind)
	if err != nil {
		return err
	}
	p.kind = kind
	p.parser = parser
	return nil
}

// normalizePrefixes trims and deduplicates prefixes, deriving the default one when none is given.
func normalizePrefixes(name string, declared []string) ([]string, error) {
	if len(declared) == 0 {
		return []string{"-" + strings.ToLower(name)}, nil
	}

	prefixes := make([]string, 0, len(declared))
	seen := make(map[string]struct{}, len(declared))
	for _, prefix := range declared {
		prefix = strings.TrimSpace(prefix)
		if prefix == "" || strings.ContainsAny(prefix, ": \t") {
			return nil, errors.New(ErrCodeInvalidParameterDefinition,
				fmt.Sprintf("invalid prefix %q for parameter %s", prefix, name)).
				WithContext("parameter", name)
		}
		if _, dup := seen[prefix]; dup {
			continue
		}
		seen[prefix] = struct{}{}
		prefixes = append(prefixes, prefix)
	}
	return prefixes, nil
}

func memberNames[T any](members []T) []string {
	names := make([]string, len(members))
	for i, member := range members {
		names[i] = fmt.Sprint(member)
	}
	return names
}

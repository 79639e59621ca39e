// parsers.go: Built-in parsers for parameter values
//
// Parsers are selected from the declared Go type. Named types (type Port int,
// type Mode string) are supported through reflect conversion, so the stored value
// always has exactly the declared type.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ignite

import (
	"fmt"
	"math/big"
	"path/filepath"
	"reflect"
	"strconv"
	"time"

	"github.com/agilira/ignite/internal/timeutil"
)

// DecimalPrecision is the mantissa precision, in bits, of decimal parameters.
const DecimalPrecision = 256

// Layouts accepted by date and time parameters.
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02T15:04:05"
)

var (
	durationType = reflect.TypeFor[time.Duration]()
	timeType     = reflect.TypeFor[time.Time]()
	decimalType  = reflect.TypeFor[*big.Float]()
)

type parserFunc func(string) (any, error)

// builtinParser returns the kind and parser for typ. requested is the kind
// asked for by the declaration, or zero to derive it.
func builtinParser(typ reflect.Type, requested Kind) (Kind, parserFunc, error) {
	derived, parser := derivedParser(typ, requested)
	if parser == nil {
		return 0, nil, fmt.Errorf("no built-in parser for type %s, a custom parser is required", typ)
	}
	if requested != 0 && requested != derived {
		return 0, nil, fmt.Errorf("kind %s is not compatible with type %s", requested, typ)
	}
	return derived, parser, nil
}

// derivedParser maps typ, and for ambiguous types the requested kind, to a parser.
func derivedParser(typ reflect.Type, requested Kind) (Kind, parserFunc) {
	switch typ {
	case durationType:
		return KindDuration, parseDuration
	case decimalType:
		return KindDecimal, parseDecimal
	case timeType:
		switch requested {
		case KindDate:
			return KindDate, parseDate
		case KindTime:
			return KindTime, parseTimeOfDay
		default:
			return KindDateTime, parseDateTime
		}
	}

	switch typ.Kind() {
	case reflect.Bool:
		return KindBoolean, convertTo(typ, func(raw string) (any, error) {
			return strconv.ParseBool(raw)
		})
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		bits := typ.Bits()
		return KindInteger, convertTo(typ, func(raw string) (any, error) {
			return strconv.ParseInt(raw, 10, bits)
		})
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		bits := typ.Bits()
		return KindInteger, convertTo(typ, func(raw string) (any, error) {
			return strconv.ParseUint(raw, 10, bits)
		})
	case reflect.Float32, reflect.Float64:
		bits := typ.Bits()
		return KindFloat, convertTo(typ, func(raw string) (any, error) {
			return strconv.ParseFloat(raw, bits)
		})
	case reflect.String:
		if requested == KindPath {
			return KindPath, convertTo(typ, func(raw string) (any, error) {
				return filepath.Clean(raw), nil
			})
		}
		return KindString, convertTo(typ, func(raw string) (any, error) {
			return raw, nil
		})
	}

	return 0, nil
}

// convertTo adapts a parser producing a basic type to the declared type.
func convertTo(typ reflect.Type, parse parserFunc) parserFunc {
	return func(raw string) (any, error) {
		value, err := parse(raw)
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(value).Convert(typ).Interface(), nil
	}
}

func parseDuration(raw string) (any, error) {
	return timeutil.ParseDuration(raw)
}

func parseDecimal(raw string) (any, error) {
	value, _, err := big.ParseFloat(raw, 10, DecimalPrecision, big.ToNearestEven)
	if err != nil {
		return nil, err
	}
	return value, nil
}

func parseDate(raw string) (any, error) {
	return time.ParseInLocation(DateLayout, raw, time.Local)
}

// parseTimeOfDay accepts 15:04:05 with optional fraction, or 15:04.
func parseTimeOfDay(raw string) (any, error) {
	value, err := time.ParseInLocation(TimeLayout, raw, time.Local)
	if err == nil {
		return value, nil
	}
	if short, shortErr := time.ParseInLocation("15:04", raw, time.Local); shortErr == nil {
		return short, nil
	}
	return nil, err
}

// parseDateTime accepts a local date-time with optional fraction, or RFC 3339.
func parseDateTime(raw string) (any, error) {
	value, err := time.ParseInLocation(DateTimeLayout, raw, time.Local)
	if err == nil {
		return value, nil
	}
	if zoned, zonedErr := time.Parse(time.RFC3339Nano, raw); zonedErr == nil {
		return zoned, nil
	}
	return nil, err
}

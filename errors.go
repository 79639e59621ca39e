// errors.go: Parameter error taxonomy
//
// Every resolution or validation failure is reported as a *ParameterError that
// names the offending descriptor. The error exposes its go-errors code so callers
// can branch on ErrorCode() the same way they do for every other ignite error.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ignite

import (
	goerrors "errors"
	"fmt"
	"strings"

	"github.com/agilira/go-errors"
)

// ParameterErrorKind classifies a parameter failure.
type ParameterErrorKind int

const (
	// MandatoryParameterNotProvided: no token matched and no default exists.
	MandatoryParameterNotProvided ParameterErrorKind = iota
	// NullOrEmptyMandatoryParameter: the matched or default raw value was blank.
	NullOrEmptyMandatoryParameter
	// UnparseableParameter: the parser rejected the raw value.
	UnparseableParameter
	// InvalidParameter: the validator rejected a well-formed value.
	InvalidParameter
)

func (k ParameterErrorKind) String() string {
	switch k {
	case MandatoryParameterNotProvided:
		return "MandatoryParameterNotProvided"
	case NullOrEmptyMandatoryParameter:
		return "NullOrEmptyMandatoryParameter"
	case UnparseableParameter:
		return "UnparseableParameter"
	case InvalidParameter:
		return "InvalidParameter"
	default:
		return "Unknown"
	}
}

// code maps the kind to its stable error code.
func (k ParameterErrorKind) code() string {
	switch k {
	case MandatoryParameterNotProvided:
		return ErrCodeMandatoryParameterNotProvided
	case NullOrEmptyMandatoryParameter:
		return ErrCodeNullOrEmptyParameter
	case UnparseableParameter:
		return ErrCodeUnparseableParameter
	default:
		return ErrCodeInvalidParameter
	}
}

// ParameterError reports a failure to resolve or validate one parameter.
type ParameterError struct {
	Kind      ParameterErrorKind
	Parameter *Parameter // descriptor that failed
	Value     string     // raw value, or the rendered typed value for InvalidParameter
	Reason    string     // validator reason (InvalidParameter only)
	Cause     error      // parser failure (UnparseableParameter only)
}

// Error renders a message that names the parameter and, when relevant, its value.
func (e *ParameterError) Error() string {
	name := e.parameterName()
	switch e.Kind {
	case MandatoryParameterNotProvided:
		return fmt.Sprintf("mandatory parameter %s not provided with any of its available prefixes: [%s]",
			name, strings.Join(e.acceptedPrefixes(), ", "))
	case NullOrEmptyMandatoryParameter:
		return fmt.Sprintf("mandatory parameter %s is null or empty", name)
	case UnparseableParameter:
		return fmt.Sprintf("unparseable parameter %s with value %s: %v", name, e.Value, e.Cause)
	default:
		return fmt.Sprintf("invalid parameter %s with value %s: %s", name, e.Value, e.Reason)
	}
}

// Unwrap exposes the parser failure, if any.
func (e *ParameterError) Unwrap() error {
	return e.Cause
}

// ErrorCode returns the stable code for the error kind.
func (e *ParameterError) ErrorCode() errors.ErrorCode {
	return errors.ErrorCode(e.Kind.code())
}

func (e *ParameterError) parameterName() string {
	if e.Parameter == nil {
		return "<unknown>"
	}
	return e.Parameter.Name()
}

// acceptedPrefixes renders the prefixes the way they are typed on a command line.
func (e *ParameterError) acceptedPrefixes() []string {
	if e.Parameter == nil {
		return nil
	}
	prefixes := e.Parameter.Prefixes()
	rendered := make([]string, len(prefixes))
	for i, prefix := range prefixes {
		rendered[i] = prefix + ":"
	}
	return rendered
}

// IsParameterError reports whether err is, or wraps, a *ParameterError.
func IsParameterError(err error) bool {
	var pe *ParameterError
	return goerrors.As(err, &pe)
}

// IsMandatoryNotProvided reports whether err is, or wraps, a missing mandatory parameter.
func IsMandatoryNotProvided(err error) bool {
	var pe *ParameterError
	return goerrors.As(err, &pe) && pe.Kind == MandatoryParameterNotProvided
}

// ErrorCodeOf extracts the go-errors code of err, or "" when err carries none.
func ErrorCodeOf(err error) string {
	if err == nil {
		return ""
	}
	if coder, ok := err.(errors.ErrorCoder); ok {
		return string(coder.ErrorCode())
	}
	var pe *ParameterError
	if goerrors.As(err, &pe) {
		return string(pe.ErrorCode())
	}
	return ""
}

// ignite: typed command-line parameters and an ordered process lifecycle
//
// Philosophy:
// - Parameters are declared once, resolved from `prefix:value` tokens, typed and validated
// - The unit of work only implements the hooks it needs (capability interfaces)
// - Shutdown runs exactly once, no matter how many triggers race for it
// - Minimal dependencies (AGILira ecosystem first: go-errors, go-timecache)
//
// Example Usage:
//   port := ignite.NewParameter[int]("port").Description("listening port").Default("8080").MustBuild()
//   server := ignite.NewParameterSet("server", port)
//
//   standalone, err := ignite.NewBuilder(func() ignite.Ignitable { return &service{} }).
//       Name("echo").
//       Arguments(os.Args[1:]...).
//       ParameterSets(server).
//       Build()
//   if err != nil {
//       log.Fatal(err)
//   }
//   if err := standalone.Ignite(); err != nil {
//       log.Fatal(err)
//   }
//   if standalone.Started() {
//       <-standalone.Done()
//   }
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ignite

// Version of the ignite library, reported by the banner and the CLI.
const Version = "1.0.0"

// Error codes for ignite operations
const (
	ErrCodeMandatoryParameterNotProvided = "IGNITE_MANDATORY_PARAMETER_NOT_PROVIDED"
	ErrCodeNullOrEmptyParameter          = "IGNITE_NULL_OR_EMPTY_PARAMETER"
	ErrCodeUnparseableParameter          = "IGNITE_UNPARSEABLE_PARAMETER"
	ErrCodeInvalidParameter              = "IGNITE_INVALID_PARAMETER"
	ErrCodeInvalidParameterDefinition    = "IGNITE_INVALID_PARAMETER_DEFINITION"
	ErrCodeDuplicateParameter            = "IGNITE_DUPLICATE_PARAMETER"
	ErrCodeNoInstance                    = "IGNITE_NO_INSTANCE"
	ErrCodeInvalidBuilder                = "IGNITE_INVALID_BUILDER"
	ErrCodeAlreadyIgnited                = "IGNITE_ALREADY_IGNITED"
	ErrCodeHookPanic                     = "IGNITE_HOOK_PANIC"
	ErrCodeCloseFailure                  = "IGNITE_CLOSE_FAILURE"
	ErrCodeArgumentsFile                 = "IGNITE_ARGUMENTS_FILE"
	ErrCodeUnsafePath                    = "IGNITE_UNSAFE_PATH"
	ErrCodeFlagTranslation               = "IGNITE_FLAG_TRANSLATION"
	ErrCodeEnvConfig                     = "IGNITE_ENV_CONFIG"
	ErrCodeInvalidAuditConfig            = "IGNITE_INVALID_AUDIT_CONFIG"
	ErrCodeAuditQuery                    = "IGNITE_AUDIT_QUERY"
	ErrCodeAuditWrite                    = "IGNITE_AUDIT_WRITE"
	ErrCodeUnknownCommand                = "IGNITE_UNKNOWN_COMMAND"
	ErrCodeShellInput                    = "IGNITE_SHELL_INPUT"
	ErrCodeNoStandalone                  = "IGNITE_NO_STANDALONE"
)

// Package ignite turns a Go value into a command-line application with typed
// parameters and an ordered, exactly-once process lifecycle.
//
// # Philosophy: Declare Once, Start Once, Stop Once
//
// Parameters are declared once with their type, prefixes, default and checks.
// The unit of work only implements the lifecycle hooks it cares about, and the
// shutdown sequence runs exactly once no matter how many triggers race for it:
// a signal, a failing startup, an explicit Extinguish or a plain Shutdown call.
//
// # Architecture Overview
//
// ignite consists of five cooperating parts:
//  1. **Tokenizer**: rebuilds `prefix:value` arguments the shell split apart
//  2. **Parameters**: typed descriptors resolved, parsed and validated in sets
//  3. **Standalone**: the orchestrator driving an Ignitable through its hooks
//  4. **Audit trail**: lifecycle events stored in SQLite or JSON Lines
//  5. **Shell**: the `shell` package running Standalones as interactive commands
//
// # Arguments and Tokens
//
// Arguments use the `prefix:value` syntax. Quoted values may contain spaces even
// after the shell has split them:
//
//	myapp -port:9090 -path:"c:\program files\app" -mode:prod
//
// Tokenize joins the raw argv back together and returns one token per logical
// argument. SplitCommands does the same for `;` separated command lines.
//
// # Typed Parameters
//
// A parameter is declared through a generic builder. The parser is selected
// from the Go type: booleans, every integer and float width, strings, paths,
// durations (with the d and w units), decimals, dates, times and enumerations.
//
//	port := ignite.NewParameter[int]("port").
//		Description("listening port").
//		Prefixes("-port", "-p").
//		Default("8080").
//		Validator(func(v int) string {
//			if v < 1024 {
//				return "must not be a privileged port"
//			}
//			return ""
//		}).
//		MustBuild()
//
//	mode := ignite.NewParameter[string]("mode").Enum("dev", "prod").Default("dev").MustBuild()
//	server := ignite.NewParameterSet("server", port, mode)
//
// After ignition the values are read with Get or Lookup:
//
//	listen := fmt.Sprintf(":%d", ignite.Get[int](port))
//
// A parameter without a default is mandatory. Every failure is a *ParameterError
// whose Kind tells a missing, empty, unparseable or invalid value apart.
//
// # The Lifecycle
//
// An Ignitable is any value. The Standalone discovers its capabilities through
// small interfaces and runs, in order:
//
//	BeforeStartup -> Startup (default: Run) -> AfterStartup
//	BeforeShutdown -> Shutdown (default: Close) -> AfterShutdown
//
// Failures are routed to StartupExceptionHandler, ShutdownExceptionHandler and
// ParameterExceptionHandler when implemented; returning nil swallows them.
// Panics inside hooks are recovered and reported with ErrCodeHookPanic.
//
//	standalone, err := ignite.NewBuilder(func() ignite.Ignitable { return &server{} }).
//		Name("echo").
//		Arguments(os.Args[1:]...).
//		ParameterSets(serverParameters).
//		Build()
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := standalone.Ignite(); err != nil {
//		log.Fatal(err)
//	}
//	if standalone.Started() {
//		<-standalone.Done()
//	}
//
// When Ignite prints the usage instead of starting (a help flag or a missing
// mandatory parameter) nothing runs, Started reports false and Done is already
// closed.
//
// An interrupt or SIGTERM runs the shutdown sequence and exits with 128 plus
// the signal number. Extinguish(code) shuts down and exits with code.
//
// # Additional Argument Sources
//
// Conventional flags (`--port=9090`) are translated through flash-flags and an
// arguments file (YAML) can provide defaults per deployment. Tokens typed on
// the command line win over translated flags, which win over the file:
//
//	ignite.NewBuilder(factory).ArgumentsFile("/etc/echo/args.yaml")
//
// # Environment Overrides
//
// Builder.FromEnv reads the IGNITE_* variables: IGNITE_VERBOSE,
// IGNITE_SHOW_BANNER, IGNITE_EXIT_HOOK, IGNITE_ARGUMENTS_FILE and the
// IGNITE_AUDIT_* settings of the audit trail.
//
// # Audit Trail
//
// With an AuditLogger every lifecycle transition is recorded with a tamper
// checksum. SQLite is the default backend, a .jsonl output file selects JSON
// Lines:
//
//	logger, err := ignite.NewAuditLogger(ignite.DefaultAuditConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer logger.Close()
//	ignite.NewBuilder(factory).Audit(logger)
//
// QueryAuditLog, AuditLogStats and CleanupAuditLog inspect a store offline. The
// ignite command (cmd/ignite) exposes them as `audit query`, `audit stats` and
// `audit cleanup`.
//
// # Thread Safety and Concurrency
//
// Parameter values are stored atomically and may be read from any goroutine.
// Ignite, Shutdown and Extinguish are safe to call concurrently: Ignite runs
// once, Shutdown runs its hooks once and closes the resource at most once.
//
// # Error Handling
//
// Errors carry go-errors codes (IGNITE_*). ErrorCodeOf extracts the code of any
// error returned by the package.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package ignite

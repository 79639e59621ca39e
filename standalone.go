// standalone.go: Lifecycle orchestration of an Ignitable
//
// A Standalone instantiates the unit of work, resolves and validates its
// parameters, prints the banner and runs the startup hooks. Shutdown runs the
// shutdown hooks exactly once, whether it is requested explicitly, through
// Extinguish or by the exit hook reacting to SIGINT/SIGTERM.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ignite

import (
	goerrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"
)

// latest is the most recently built Standalone, used by SelfExtinguish and SelfHelp.
var latest atomic.Pointer[Standalone]

// Standalone drives one Ignitable through its lifecycle.
type Standalone struct {
	factory       func() Ignitable
	name          string
	description   string
	arguments     []string
	sets          []*ParameterSet
	console       Console
	showBanner    bool
	banner        BannerRenderer
	exitHook      bool
	exit          func(int)
	audit         *AuditLogger
	argumentsFile string
	conventional  bool
	envFlags      bool

	mu       sync.RWMutex
	instance Ignitable

	ignited   atomic.Bool
	started   atomic.Bool
	stopping  atomic.Bool
	closeOnce sync.Once
	doneOnce  sync.Once
	done      chan struct{}
	hook      *exitHook
}

// Builder configures a Standalone.
type Builder struct {
	factory       func() Ignitable
	name          string
	description   string
	arguments     []string
	sets          []*ParameterSet
	console       Console
	formatter     Formatter
	verbose       bool
	showBanner    bool
	banner        BannerRenderer
	exitHook      bool
	exit          func(int)
	audit         *AuditLogger
	argumentsFile string
	conventional  bool
	fromEnv       bool
	unregistered  bool
}

// NewBuilder starts the configuration of a Standalone whose Ignitable is
// created by factory when Ignite is called.
func NewBuilder(factory func() Ignitable) *Builder {
	return &Builder{
		factory:      factory,
		showBanner:   true,
		exitHook:     true,
		conventional: true,
	}
}

// Name sets the application name. The banner is only printed when a name is set.
func (b *Builder) Name(name string) *Builder {
	b.name = name
	return b
}

// Description sets the free text printed above the usage lines.
func (b *Builder) Description(description string) *Builder {
	b.description = description
	return b
}

// Arguments sets the raw command line arguments, usually os.Args[1:].
func (b *Builder) Arguments(args ...string) *Builder {
	b.arguments = append([]string(nil), args...)
	return b
}

// ParameterSets registers parameter sets, resolved in registration order.
func (b *Builder) ParameterSets(sets ...*ParameterSet) *Builder {
	for _, set := range sets {
		if set != nil {
			b.sets = append(b.sets, set)
		}
	}
	return b
}

// Console replaces the default console.
func (b *Builder) Console(console Console) *Builder {
	b.console = console
	return b
}

// Formatter sets the message formatter of the default console.
func (b *Builder) Formatter(formatter Formatter) *Builder {
	b.formatter = formatter
	return b
}

// Verbose enables the verbose channel of the default console.
func (b *Builder) Verbose(verbose bool) *Builder {
	b.verbose = verbose
	return b
}

// ShowBanner enables or disables the banner (default true).
func (b *Builder) ShowBanner(show bool) *Builder {
	b.showBanner = show
	return b
}

// Banner replaces the banner renderer.
func (b *Builder) Banner(render BannerRenderer) *Builder {
	b.banner = render
	return b
}

// ExitHook enables or disables shutdown on SIGINT/SIGTERM (default true).
func (b *Builder) ExitHook(enabled bool) *Builder {
	b.exitHook = enabled
	return b
}

// ExitFunc replaces os.Exit for Extinguish and the exit hook.
func (b *Builder) ExitFunc(exit func(int)) *Builder {
	b.exit = exit
	return b
}

// Audit records lifecycle events in the audit trail.
func (b *Builder) Audit(logger *AuditLogger) *Builder {
	b.audit = logger
	return b
}

// ArgumentsFile reads additional `name: value` pairs from a YAML file. Command
// line tokens take precedence over the file.
func (b *Builder) ArgumentsFile(path string) *Builder {
	b.argumentsFile = path
	return b
}

// ConventionalFlags enables or disables `--name=value` translation (default true).
func (b *Builder) ConventionalFlags(enabled bool) *Builder {
	b.conventional = enabled
	return b
}

// FromEnv applies IGNITE_* environment overrides at Build. Conventional flags
// are then also read from <NAME>_<FLAG> variables, where NAME is the upper
// cased application name.
func (b *Builder) FromEnv() *Builder {
	b.fromEnv = true
	return b
}

// RegisterLatest controls whether Build records the Standalone as the
// process-wide latest instance (default true).
func (b *Builder) RegisterLatest(enabled bool) *Builder {
	b.unregistered = !enabled
	return b
}

// Build validates the configuration and creates the Standalone. Unless
// disabled with RegisterLatest, the result becomes the process-wide latest
// instance.
func (b *Builder) Build() (*Standalone, error) {
	if b.factory == nil {
		return nil, errors.New(ErrCodeInvalidBuilder, "ignitable factory cannot be nil")
	}

	if b.fromEnv {
		cfg, err := LoadEnvConfig()
		if err != nil {
			return nil, err
		}
		if err := cfg.apply(b); err != nil {
			return nil, err
		}
	}

	for _, set := range b.sets {
		if err := set.verify(); err != nil {
			return nil, err
		}
	}

	s := &Standalone{
		factory:       b.factory,
		name:          b.name,
		description:   b.description,
		arguments:     b.arguments,
		sets:          append([]*ParameterSet(nil), b.sets...),
		console:       b.console,
		showBanner:    b.showBanner,
		banner:        b.banner,
		exitHook:      b.exitHook,
		exit:          b.exit,
		audit:         b.audit,
		argumentsFile: b.argumentsFile,
		conventional:  b.conventional,
		envFlags:      b.fromEnv,
		done:          make(chan struct{}),
	}
	s.withDefaults(b)

	if !b.unregistered {
		latest.Store(s)
	}
	return s, nil
}

// withDefaults fills in the collaborators that were not configured.
func (s *Standalone) withDefaults(b *Builder) {
	if s.console == nil {
		s.console = StdConsole(b.verbose).WithFormatter(b.formatter)
	}
	if s.banner == nil {
		s.banner = BoxBanner
	}
	if s.exit == nil {
		s.exit = os.Exit
	}
}

// Latest returns the most recently built Standalone, or nil.
func Latest() *Standalone {
	return latest.Load()
}

// SelfExtinguish extinguishes the latest Standalone with code.
func SelfExtinguish(code int) error {
	s := latest.Load()
	if s == nil {
		return errors.New(ErrCodeNoStandalone, "no standalone has been built")
	}
	s.Extinguish(code)
	return nil
}

// SelfHelp returns the help of the latest Standalone, or "".
func SelfHelp() string {
	if s := latest.Load(); s != nil {
		return s.Help()
	}
	return ""
}

// Name returns the application name.
func (s *Standalone) Name() string { return s.name }

// Description returns the application description.
func (s *Standalone) Description() string { return s.description }

// Console returns the console in use.
func (s *Standalone) Console() Console { return s.console }

// Arguments returns a copy of the raw arguments.
func (s *Standalone) Arguments() []string {
	return append([]string(nil), s.arguments...)
}

// ParameterSets returns the registered parameter sets.
func (s *Standalone) ParameterSets() []*ParameterSet {
	return append([]*ParameterSet(nil), s.sets...)
}

// Help renders the usage text of every registered parameter set.
func (s *Standalone) Help() string {
	return Help(s.description, s.sets...)
}

// Instance returns the Ignitable, or nil before Ignite.
func (s *Standalone) Instance() Ignitable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.instance
}

// Done is closed once the shutdown sequence has completed, or once Ignite has
// printed the usage instead of starting.
func (s *Standalone) Done() <-chan struct{} {
	return s.done
}

// Started reports whether the startup hooks completed successfully.
func (s *Standalone) Started() bool {
	return s.started.Load()
}

// Ignite runs the lifecycle up to the end of startup.
//
// A missing mandatory parameter is reported on the error channel together with
// the help text and Ignite returns nil; so does a help request. In both cases
// nothing is started, the exit hook is released and Done is closed, which
// Started tells apart from a successful start. Every other parameter, startup
// or configuration failure that the Ignitable does not swallow is returned.
// Ignite never exits the process.
func (s *Standalone) Ignite() error {
	if !s.ignited.CompareAndSwap(false, true) {
		return errors.New(ErrCodeAlreadyIgnited, "standalone already ignited")
	}

	if err := s.instantiate(); err != nil {
		return err
	}
	s.installExitHook()
	s.register()
	s.auditLog(AuditInfo, "ignite", map[string]interface{}{"arguments": len(s.arguments)})

	tokens := Tokenize(s.arguments)
	if helpRequested(tokens) {
		s.console.Info(s.Help())
		s.abandon()
		return nil
	}

	tokens, err := s.collectTokens(tokens)
	if err != nil {
		return err
	}

	if err := s.processParameters(tokens); err != nil {
		if IsMandatoryNotProvided(err) {
			s.console.Error(err.Error())
			s.console.Error(s.Help())
			s.abandon()
			return nil
		}
		return err
	}

	s.printBanner()
	return s.startup()
}

// instantiate creates the Ignitable through the factory.
func (s *Standalone) instantiate() error {
	var instance Ignitable
	if perr := invoke("factory", func() error {
		instance = s.factory()
		return nil
	}); perr != nil {
		return perr
	}
	if instance == nil {
		return errors.New(ErrCodeNoInstance, "ignitable factory returned no instance")
	}

	s.mu.Lock()
	s.instance = instance
	s.mu.Unlock()
	return nil
}

// register hands the Standalone to a StandaloneAware instance.
func (s *Standalone) register() {
	if aware, ok := s.Instance().(StandaloneAware); ok {
		aware.SetStandalone(s)
	}
}

// collectTokens appends translated conventional flags and the arguments file
// after the command line tokens, so that the command line wins.
func (s *Standalone) collectTokens(tokens []string) ([]string, error) {
	if s.conventional {
		bridge := NewFlagBridge(s.name, s.sets...)
		if s.envFlags && s.name != "" {
			bridge.WithEnvPrefix(strings.ToUpper(s.name))
		}
		translated, err := bridge.Translate(s.arguments)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, translated...)
	}

	if s.argumentsFile != "" {
		fileTokens, err := LoadArgumentsFile(s.argumentsFile, s.sets...)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, fileTokens...)
	}

	return tokens, nil
}

// processParameters runs the parse pass then the validation pass.
func (s *Standalone) processParameters(tokens []string) error {
	if err := s.routeParameters(ParseAll(tokens, s.sets...)); err != nil {
		return err
	}
	return s.routeParameters(ValidateAll(s.sets...))
}

// routeParameters delivers a parameter failure to the Ignitable.
func (s *Standalone) routeParameters(err error) error {
	if err == nil {
		return nil
	}
	var pe *ParameterError
	if !goerrors.As(err, &pe) {
		return err
	}
	s.auditLog(AuditWarn, "parameter_error", map[string]interface{}{
		"parameter": pe.parameterName(),
		"kind":      pe.Kind.String(),
	})
	return routeParameterFailure(s.Instance(), pe)
}

// printBanner prints the banner when a name is set and the banner is enabled.
func (s *Standalone) printBanner() {
	if !s.showBanner || s.name == "" {
		return
	}
	for _, line := range bannerLines(s.name, s.banner, s.Instance()) {
		s.console.Info(line)
	}
}

// startup runs beforeStartup, startup and afterStartup. On failure the error
// goes to the startup exception handler and the resource is closed.
func (s *Standalone) startup() error {
	instance := s.Instance()
	started := timecache.CachedTimeNano()

	err := runStages(startupStages(instance))
	if err == nil {
		elapsed := time.Duration(timecache.CachedTimeNano() - started)
		s.started.Store(true)
		s.console.Verbose(fmt.Sprintf("%s started in %s", s.displayName(), elapsed))
		s.auditLog(AuditInfo, "startup_completed", map[string]interface{}{"elapsed": elapsed.String()})
		return nil
	}

	s.auditLog(AuditCritical, "startup_failed", map[string]interface{}{"error": err.Error()})
	routed := routeStartupFailure(instance, err)
	if closeErr := s.closeResource(); closeErr != nil {
		if routed == nil {
			return closeErr
		}
		s.console.Verbose(fmt.Sprintf("close after startup failure: %v", closeErr))
	}
	return routed
}

// Shutdown runs beforeShutdown, shutdown and afterShutdown, then closes the
// resource. Only the first call after instantiation does anything; later calls
// return nil at once. Before Ignite there is nothing to stop and Shutdown
// returns nil without consuming the sequence.
func (s *Standalone) Shutdown() error {
	instance := s.Instance()
	if instance == nil {
		return nil
	}
	if !s.stopping.CompareAndSwap(false, true) {
		return nil
	}
	defer s.finish()

	err := runStages(shutdownStages(instance, s.closeResource))
	if err != nil {
		s.auditLog(AuditCritical, "shutdown_failed", map[string]interface{}{"error": err.Error()})
		err = routeShutdownFailure(instance, err)
	} else {
		s.auditLog(AuditInfo, "shutdown_completed", nil)
	}

	if closeErr := s.closeResource(); closeErr != nil {
		if err == nil {
			return closeErr
		}
		s.console.Verbose(fmt.Sprintf("close after shutdown failure: %v", closeErr))
	}
	return err
}

// Extinguish shuts down and terminates the process with code.
func (s *Standalone) Extinguish(code int) {
	s.auditLog(AuditWarn, "extinguish", map[string]interface{}{"exit_code": code})
	if err := s.Shutdown(); err != nil {
		s.console.Error(fmt.Sprintf("shutdown failed: %v", err))
	}
	s.flushAudit()
	s.exit(code)
}

// abandon ends a Standalone that printed its usage instead of starting. No
// shutdown hook runs and the resource is left untouched.
func (s *Standalone) abandon() {
	if s.stopping.CompareAndSwap(false, true) {
		s.finish()
	}
}

// closeResource closes an io.Closer instance at most once over its lifetime.
// It returns the close failure only to the caller that performed the close.
func (s *Standalone) closeResource() error {
	closer, ok := s.Instance().(io.Closer)
	if !ok {
		return nil
	}

	var err error
	s.closeOnce.Do(func() {
		if cerr := invoke("close", closer.Close); cerr != nil {
			err = errors.Wrap(cerr, ErrCodeCloseFailure, "failed to close ignitable")
		}
	})
	return err
}

// finish marks the shutdown as complete.
func (s *Standalone) finish() {
	s.doneOnce.Do(func() {
		if s.hook != nil {
			s.hook.close()
		}
		s.flushAudit()
		close(s.done)
	})
}

func (s *Standalone) displayName() string {
	if s.name != "" {
		return s.name
	}
	return fmt.Sprintf("%T", s.Instance())
}

func (s *Standalone) auditLog(level AuditLevel, event string, context map[string]interface{}) {
	if s.audit == nil {
		return
	}
	s.audit.LogLifecycle(level, event, s.name, context)
}

func (s *Standalone) flushAudit() {
	if s.audit == nil {
		return
	}
	if err := s.audit.Flush(); err != nil {
		s.console.Verbose(fmt.Sprintf("audit flush failed: %v", err))
	}
}

// helpRequested reports whether a bare help flag was given.
func helpRequested(tokens []string) bool {
	for _, token := range tokens {
		switch token {
		case "-help", "--help", "-h":
			return true
		}
	}
	return false
}

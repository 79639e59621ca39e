// standalone_test.go: Tests for the lifecycle orchestration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ignite

import (
	"bytes"
	goerrors "errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"
)

// recorder keeps the ordered list of hook invocations.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) record(name string) {
	r.mu.Lock()
	r.calls = append(r.calls, name)
	r.mu.Unlock()
}

func (r *recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) count(name string) int {
	n := 0
	for _, call := range r.Calls() {
		if call == name {
			n++
		}
	}
	return n
}

// lifecycleApp implements every hook.
type lifecycleApp struct {
	recorder
	failStartup    error
	failShutdown   error
	swallowStartup bool
	panicStartup   bool
}

func (a *lifecycleApp) BeforeStartup() error { a.record("beforeStartup"); return nil }
func (a *lifecycleApp) Startup() error {
	a.record("startup")
	if a.panicStartup {
		panic("startup exploded")
	}
	return a.failStartup
}
func (a *lifecycleApp) AfterStartup() error   { a.record("afterStartup"); return nil }
func (a *lifecycleApp) BeforeShutdown() error { a.record("beforeShutdown"); return nil }
func (a *lifecycleApp) Shutdown() error       { a.record("shutdown"); return a.failShutdown }
func (a *lifecycleApp) AfterShutdown() error  { a.record("afterShutdown"); return nil }
func (a *lifecycleApp) Close() error          { a.record("close"); return nil }

func (a *lifecycleApp) StartupException(err error) error {
	a.record("startupException")
	if a.swallowStartup {
		return nil
	}
	return err
}

func (a *lifecycleApp) ShutdownException(err error) error {
	a.record("shutdownException")
	return err
}

// runnerApp relies on the Runner and io.Closer defaults.
type runnerApp struct {
	recorder
	closeErr error
}

func (a *runnerApp) Run() error   { a.record("run"); return nil }
func (a *runnerApp) Close() error { a.record("close"); return a.closeErr }

// parameterApp swallows parameter failures.
type parameterApp struct {
	recorder
	Adapter
}

func (a *parameterApp) ParameterProcessingException(err *ParameterError) error {
	a.record("parameterException:" + err.Kind.String())
	return nil
}

func (a *parameterApp) Startup() error { a.record("startup"); return nil }

type testHarness struct {
	builder *Builder
	out     *bytes.Buffer
	errOut  *bytes.Buffer
}

func newHarness(instance Ignitable, args ...string) *testHarness {
	var out, errOut bytes.Buffer
	b := NewBuilder(func() Ignitable { return instance }).
		Arguments(args...).
		Console(NewConsole(&out, &errOut, false)).
		ShowBanner(false).
		ExitHook(false)
	return &testHarness{builder: b, out: &out, errOut: &errOut}
}

func (h *testHarness) build(t *testing.T) *Standalone {
	t.Helper()
	s, err := h.builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return s
}

func assertCalls(t *testing.T, r *recorder, expected ...string) {
	t.Helper()
	if got := r.Calls(); !reflect.DeepEqual(got, expected) {
		t.Errorf("calls = %v, expected %v", got, expected)
	}
}

// TestIgniteLifecycleOrder verifies hook order and idempotent shutdown.
func TestIgniteLifecycleOrder(t *testing.T) {
	app := &lifecycleApp{}
	s := newHarness(app).build(t)

	if err := s.Ignite(); err != nil {
		t.Fatalf("Ignite failed: %v", err)
	}
	assertCalls(t, &app.recorder, "beforeStartup", "startup", "afterStartup")

	if err := s.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if err := s.Shutdown(); err != nil {
		t.Fatalf("second Shutdown failed: %v", err)
	}
	assertCalls(t, &app.recorder,
		"beforeStartup", "startup", "afterStartup",
		"beforeShutdown", "shutdown", "afterShutdown", "close")

	select {
	case <-s.Done():
	default:
		t.Error("Done should be closed after shutdown")
	}
}

// TestConcurrentShutdown verifies concurrent callers run the sequence once.
func TestConcurrentShutdown(t *testing.T) {
	app := &lifecycleApp{}
	s := newHarness(app).build(t)
	if err := s.Ignite(); err != nil {
		t.Fatalf("Ignite failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Shutdown()
		}()
	}
	wg.Wait()
	<-s.Done()

	if n := app.count("shutdown"); n != 1 {
		t.Errorf("shutdown ran %d times", n)
	}
	if n := app.count("close"); n != 1 {
		t.Errorf("close ran %d times", n)
	}
}

// TestIgniteStartupFailure verifies routing and the guaranteed close.
func TestIgniteStartupFailure(t *testing.T) {
	boom := goerrors.New("boom")
	app := &lifecycleApp{failStartup: boom}
	s := newHarness(app).build(t)

	err := s.Ignite()
	if !goerrors.Is(err, boom) {
		t.Fatalf("expected the startup failure, got %v", err)
	}
	assertCalls(t, &app.recorder, "beforeStartup", "startup", "startupException", "close")

	if err := s.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if n := app.count("close"); n != 1 {
		t.Errorf("close ran %d times", n)
	}
}

// TestIgniteStartupFailureSwallowed verifies a handler can swallow the failure.
func TestIgniteStartupFailureSwallowed(t *testing.T) {
	app := &lifecycleApp{failStartup: goerrors.New("boom"), swallowStartup: true}
	s := newHarness(app).build(t)

	if err := s.Ignite(); err != nil {
		t.Fatalf("swallowed failure should not propagate: %v", err)
	}
	if app.count("afterStartup") != 0 {
		t.Error("afterStartup must not run after a failure")
	}
	if app.count("close") != 1 {
		t.Error("resource must be closed after a startup failure")
	}
}

// TestIgniteHookPanic verifies panics become coded errors.
func TestIgniteHookPanic(t *testing.T) {
	app := &lifecycleApp{panicStartup: true}
	s := newHarness(app).build(t)

	err := s.Ignite()
	if ErrorCodeOf(err) != ErrCodeHookPanic {
		t.Fatalf("expected %s, got %v", ErrCodeHookPanic, err)
	}
	if !strings.Contains(err.Error(), "startup exploded") {
		t.Errorf("panic value missing from %q", err.Error())
	}
}

// TestShutdownFailure verifies routing of shutdown failures.
func TestShutdownFailure(t *testing.T) {
	stuck := goerrors.New("stuck")
	app := &lifecycleApp{failShutdown: stuck}
	s := newHarness(app).build(t)
	if err := s.Ignite(); err != nil {
		t.Fatalf("Ignite failed: %v", err)
	}

	if err := s.Shutdown(); !goerrors.Is(err, stuck) {
		t.Fatalf("expected the shutdown failure, got %v", err)
	}
	if app.count("afterShutdown") != 0 {
		t.Error("afterShutdown must not run after a failure")
	}
	if app.count("shutdownException") != 1 || app.count("close") != 1 {
		t.Errorf("unexpected calls %v", app.Calls())
	}
}

// TestRunnerAndCloserDefaults verifies the default startup and shutdown.
func TestRunnerAndCloserDefaults(t *testing.T) {
	app := &runnerApp{}
	s := newHarness(app).build(t)

	if err := s.Ignite(); err != nil {
		t.Fatalf("Ignite failed: %v", err)
	}
	if err := s.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	assertCalls(t, &app.recorder, "run", "close")
}

// TestCloseFailure verifies a failing Close is reported once with its code.
func TestCloseFailure(t *testing.T) {
	app := &runnerApp{closeErr: goerrors.New("disk gone")}
	s := newHarness(app).build(t)
	if err := s.Ignite(); err != nil {
		t.Fatalf("Ignite failed: %v", err)
	}

	err := s.Shutdown()
	if ErrorCodeOf(err) != ErrCodeCloseFailure {
		t.Fatalf("expected %s, got %v", ErrCodeCloseFailure, err)
	}
	if app.count("close") != 1 {
		t.Errorf("close ran %d times", app.count("close"))
	}
}

// TestMissingMandatoryReportsHelp verifies the error and the help of every set.
func TestMissingMandatoryReportsHelp(t *testing.T) {
	first := NewParameterSet("first",
		NewParameter[int]("port").Description("listening port").Default("8080").MustBuild())
	second := NewParameterSet("second",
		NewParameter[string]("target").Description("deployment target").MustBuild())

	app := &lifecycleApp{}
	h := newHarness(app, "-port:9090")
	s, err := h.builder.ParameterSets(first, second).Description("Deploys things").Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if err := s.Ignite(); err != nil {
		t.Fatalf("missing mandatory parameter should not fail Ignite: %v", err)
	}

	report := h.errOut.String()
	for _, fragment := range []string{
		"mandatory parameter target not provided with any of its available prefixes: [-target:]",
		"Deploys things\nUsage:\n",
		"\t[-port]: listening port (Default: 8080)\n",
		"\t[-target]: deployment target (Mandatory)\n",
	} {
		if !strings.Contains(report, fragment) {
			t.Errorf("error output missing %q:\n%s", fragment, report)
		}
	}
	if strings.Count(report, "mandatory parameter") != 1 {
		t.Errorf("only the first failure should be reported:\n%s", report)
	}
	if len(app.Calls()) != 0 {
		t.Errorf("no hook should run, got %v", app.Calls())
	}
	assertUsageOnly(t, s, app)
}

// TestParameterErrorReturned verifies non-mandatory failures are returned.
func TestParameterErrorReturned(t *testing.T) {
	set := NewParameterSet("server", NewParameter[int]("port").Default("8080").MustBuild())
	app := &lifecycleApp{}
	h := newHarness(app, "-port:abc")
	h.builder.ParameterSets(set)
	s := h.build(t)

	err := s.Ignite()
	var pe *ParameterError
	if !goerrors.As(err, &pe) || pe.Kind != UnparseableParameter {
		t.Fatalf("expected an unparseable parameter error, got %v", err)
	}
	if h.errOut.Len() != 0 {
		t.Errorf("nothing should be printed, got %q", h.errOut.String())
	}
	if len(app.Calls()) != 0 {
		t.Errorf("no hook should run, got %v", app.Calls())
	}
}

// TestParameterExceptionSwallowed verifies the hook can let the lifecycle continue.
func TestParameterExceptionSwallowed(t *testing.T) {
	count := NewParameter[int]("count").Default("1").Validator(func(v int) string {
		if v < 10 {
			return "must be at least 10"
		}
		return ""
	}).MustBuild()

	app := &parameterApp{}
	h := newHarness(app, "-count:5")
	h.builder.ParameterSets(NewParameterSet("work", count))
	s := h.build(t)

	if err := s.Ignite(); err != nil {
		t.Fatalf("Ignite failed: %v", err)
	}
	assertCalls(t, &app.recorder, "parameterException:InvalidParameter", "startup")
	if app.Standalone() != s {
		t.Error("StandaloneAware instance should receive its Standalone")
	}
	if app.Console() != s.Console() {
		t.Error("Adapter console should be the Standalone console")
	}
}

// TestHelpToken verifies a bare help flag prints usage and skips the lifecycle.
func TestHelpToken(t *testing.T) {
	for _, flag := range []string{"-help", "--help", "-h"} {
		t.Run(flag, func(t *testing.T) {
			app := &lifecycleApp{}
			h := newHarness(app, flag)
			h.builder.ParameterSets(NewParameterSet("s", NewParameter[string]("target").MustBuild()))
			s := h.build(t)

			if err := s.Ignite(); err != nil {
				t.Fatalf("Ignite failed: %v", err)
			}
			if !strings.Contains(h.out.String(), "Usage:\n\t[-target]") {
				t.Errorf("help not printed: %q", h.out.String())
			}
			if len(app.Calls()) != 0 {
				t.Errorf("no hook should run, got %v", app.Calls())
			}
			assertUsageOnly(t, s, app)
		})
	}
}

// assertUsageOnly checks that a Standalone which printed its usage is finished
// without having started, and that a later Shutdown runs nothing.
func assertUsageOnly(t *testing.T, s *Standalone, app *lifecycleApp) {
	t.Helper()
	if s.Started() {
		t.Error("Started should be false after printing the usage")
	}
	select {
	case <-s.Done():
	default:
		t.Error("Done should be closed after printing the usage")
	}
	if err := s.Shutdown(); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
	if len(app.Calls()) != 0 {
		t.Errorf("no hook should run after the usage, got %v", app.Calls())
	}
}

// TestStartedAfterSuccessfulIgnite verifies Started tracks the startup outcome.
func TestStartedAfterSuccessfulIgnite(t *testing.T) {
	app := &lifecycleApp{}
	s := newHarness(app).build(t)
	if s.Started() {
		t.Error("Started should be false before Ignite")
	}
	if err := s.Ignite(); err != nil {
		t.Fatalf("Ignite failed: %v", err)
	}
	if !s.Started() {
		t.Error("Started should be true after a successful startup")
	}

	failed := newHarness(&lifecycleApp{failStartup: goerrors.New("boom"), swallowStartup: true}).build(t)
	if err := failed.Ignite(); err != nil {
		t.Fatalf("swallowed failure should not propagate: %v", err)
	}
	if failed.Started() {
		t.Error("Started should be false after a failed startup")
	}
}

// TestShutdownBeforeIgnite verifies an early Shutdown does not consume the sequence.
func TestShutdownBeforeIgnite(t *testing.T) {
	app := &lifecycleApp{}
	s := newHarness(app).build(t)

	if err := s.Shutdown(); err != nil {
		t.Fatalf("Shutdown before Ignite failed: %v", err)
	}
	select {
	case <-s.Done():
		t.Fatal("Done must stay open when nothing was started")
	default:
	}

	if err := s.Ignite(); err != nil {
		t.Fatalf("Ignite failed: %v", err)
	}
	if err := s.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if app.count("shutdown") != 1 || app.count("close") != 1 {
		t.Errorf("shutdown and close should run once, got %v", app.Calls())
	}
	<-s.Done()
}

// TestLifecycleMessagesUseFormatter verifies orchestrator messages are
// rendered before reaching the console formatter.
func TestLifecycleMessagesUseFormatter(t *testing.T) {
	var out bytes.Buffer
	console := NewSingleConsole(&out, true).WithFormatter(BraceFormat)
	s, err := NewBuilder(func() Ignitable { return &lifecycleApp{} }).
		Name("svc").
		Console(console).
		ShowBanner(false).
		ExitHook(false).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := s.Ignite(); err != nil {
		t.Fatalf("Ignite failed: %v", err)
	}

	if !strings.Contains(out.String(), "svc started in ") {
		t.Errorf("startup message missing:\n%s", out.String())
	}
	if strings.Contains(out.String(), "%") {
		t.Errorf("message printed with raw verbs:\n%s", out.String())
	}
}

// TestEnvironmentDoesNotFillMandatory verifies conventional flags ignore the
// environment unless FromEnv is set.
func TestEnvironmentDoesNotFillMandatory(t *testing.T) {
	t.Setenv("APP_PORT", "9999")

	port := NewParameter[int]("port").Description("listening port").MustBuild()
	app := &lifecycleApp{}
	h := newHarness(app)
	h.builder.Name("app").ParameterSets(NewParameterSet("server", port))
	s := h.build(t)

	if err := s.Ignite(); err != nil {
		t.Fatalf("missing mandatory parameter should not fail Ignite: %v", err)
	}
	if !strings.Contains(h.errOut.String(), "mandatory parameter port not provided") {
		t.Errorf("missing parameter should be reported, got %q", h.errOut.String())
	}
	assertUsageOnly(t, s, app)
}

// TestFromEnvFillsConventionalFlags verifies FromEnv opts into <NAME>_<FLAG> variables.
func TestFromEnvFillsConventionalFlags(t *testing.T) {
	t.Setenv("APP_PORT", "9999")

	port := NewParameter[int]("port").MustBuild()
	h := newHarness(&runnerApp{})
	h.builder.Name("app").ParameterSets(NewParameterSet("server", port)).FromEnv()
	s := h.build(t)

	if err := s.Ignite(); err != nil {
		t.Fatalf("Ignite failed: %v", err)
	}
	if got := Get[int](port); got != 9999 {
		t.Errorf("port = %d, expected 9999", got)
	}
}

// TestRegisterLatestDisabled verifies unregistered builds keep the latest instance.
func TestRegisterLatestDisabled(t *testing.T) {
	registered := newHarness(&runnerApp{}).build(t)

	h := newHarness(&runnerApp{})
	h.builder.RegisterLatest(false)
	unregistered := h.build(t)

	if Latest() != registered || Latest() == unregistered {
		t.Error("an unregistered build must not replace the latest Standalone")
	}
}

// TestBuilderBuildErrors verifies invalid builder configurations.
func TestBuilderBuildErrors(t *testing.T) {
	if _, err := NewBuilder(nil).Build(); ErrorCodeOf(err) != ErrCodeInvalidBuilder {
		t.Errorf("expected %s, got %v", ErrCodeInvalidBuilder, err)
	}

	dup := NewParameterSet("dup",
		NewParameter[int]("a").Default("1").MustBuild(),
		NewParameter[int]("a").Prefixes("-b").Default("1").MustBuild())
	_, err := NewBuilder(func() Ignitable { return &runnerApp{} }).ParameterSets(dup).Build()
	if ErrorCodeOf(err) != ErrCodeDuplicateParameter {
		t.Errorf("expected %s, got %v", ErrCodeDuplicateParameter, err)
	}
}

// TestFactoryReturnsNil verifies a nil instance is a construction error.
func TestFactoryReturnsNil(t *testing.T) {
	s, err := NewBuilder(func() Ignitable { return nil }).ExitHook(false).Console(DiscardConsole()).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := s.Ignite(); ErrorCodeOf(err) != ErrCodeNoInstance {
		t.Errorf("expected %s, got %v", ErrCodeNoInstance, err)
	}
	if err := s.Shutdown(); err != nil {
		t.Errorf("Shutdown without instance should be a no-op: %v", err)
	}
}

// TestAlreadyIgnited verifies Ignite runs once.
func TestAlreadyIgnited(t *testing.T) {
	s := newHarness(&runnerApp{}).build(t)
	if err := s.Ignite(); err != nil {
		t.Fatalf("Ignite failed: %v", err)
	}
	if err := s.Ignite(); ErrorCodeOf(err) != ErrCodeAlreadyIgnited {
		t.Errorf("expected %s, got %v", ErrCodeAlreadyIgnited, err)
	}
}

// TestBannerPrinting verifies the banner requires a name and the show flag.
func TestBannerPrinting(t *testing.T) {
	h := newHarness(&runnerApp{})
	s, err := h.builder.Name("echo").ShowBanner(true).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := s.Ignite(); err != nil {
		t.Fatalf("Ignite failed: %v", err)
	}
	for _, fragment := range []string{"| echo |\n", "\tCores: ", "\tMemory (bytes): ", "\tBase path: "} {
		if !strings.Contains(h.out.String(), fragment) {
			t.Errorf("banner missing %q:\n%s", fragment, h.out.String())
		}
	}

	unnamed := newHarness(&runnerApp{})
	s, err = unnamed.builder.ShowBanner(true).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := s.Ignite(); err != nil {
		t.Fatalf("Ignite failed: %v", err)
	}
	if unnamed.out.Len() != 0 {
		t.Errorf("no banner expected without a name, got %q", unnamed.out.String())
	}
}

// TestVerboseStartupTiming verifies the startup duration is logged.
func TestVerboseStartupTiming(t *testing.T) {
	var out bytes.Buffer
	s, err := NewBuilder(func() Ignitable { return &runnerApp{} }).
		Name("timed").
		ShowBanner(false).
		ExitHook(false).
		Console(NewSingleConsole(&out, true)).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := s.Ignite(); err != nil {
		t.Fatalf("Ignite failed: %v", err)
	}
	if !strings.Contains(out.String(), "timed started in ") {
		t.Errorf("timing not logged: %q", out.String())
	}
}

// TestExtinguish verifies shutdown precedes the exit call.
func TestExtinguish(t *testing.T) {
	app := &lifecycleApp{}
	h := newHarness(app)
	exitCode := -1
	s, err := h.builder.ExitFunc(func(code int) {
		if app.count("afterShutdown") != 1 {
			t.Error("shutdown must complete before exit")
		}
		exitCode = code
	}).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := s.Ignite(); err != nil {
		t.Fatalf("Ignite failed: %v", err)
	}

	s.Extinguish(3)
	if exitCode != 3 {
		t.Errorf("exit code = %d, expected 3", exitCode)
	}
	<-s.Done()
}

// TestLatestSelfHelpSelfExtinguish verifies the process-wide helpers.
func TestLatestSelfHelpSelfExtinguish(t *testing.T) {
	latest.Store(nil)
	if err := SelfExtinguish(1); ErrorCodeOf(err) != ErrCodeNoStandalone {
		t.Errorf("expected %s, got %v", ErrCodeNoStandalone, err)
	}
	if SelfHelp() != "" {
		t.Error("SelfHelp without a Standalone should be empty")
	}

	exitCode := -1
	h := newHarness(&runnerApp{})
	h.builder.
		ParameterSets(NewParameterSet("s", NewParameter[int]("n").Default("1").MustBuild())).
		ExitFunc(func(code int) { exitCode = code })
	s := h.build(t)

	if Latest() != s {
		t.Fatal("Build should record the latest Standalone")
	}
	if SelfHelp() != s.Help() || !strings.Contains(SelfHelp(), "[-n]") {
		t.Errorf("unexpected SelfHelp %q", SelfHelp())
	}
	if err := s.Ignite(); err != nil {
		t.Fatalf("Ignite failed: %v", err)
	}
	if err := SelfExtinguish(2); err != nil || exitCode != 2 {
		t.Errorf("SelfExtinguish = %v, exit code %d", err, exitCode)
	}
}

// TestExitHookSignal verifies a termination signal shuts down then exits.
func TestExitHookSignal(t *testing.T) {
	app := &lifecycleApp{}
	exited := make(chan int, 1)
	s, err := NewBuilder(func() Ignitable { return app }).
		Console(DiscardConsole()).
		ShowBanner(false).
		ExitFunc(func(code int) { exited <- code }).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := s.Ignite(); err != nil {
		t.Fatalf("Ignite failed: %v", err)
	}

	s.hook.signals <- syscall.SIGTERM

	select {
	case code := <-exited:
		if code != 128+int(syscall.SIGTERM) {
			t.Errorf("exit code = %d", code)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("exit hook did not fire")
	}
	if app.count("shutdown") != 1 || app.count("close") != 1 {
		t.Errorf("unexpected calls %v", app.Calls())
	}
}

// TestConventionalFlagsAndArgumentsFile verifies every token source reaches the parameters.
func TestConventionalFlagsAndArgumentsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "args.yaml")
	if err := os.WriteFile(path, []byte("port: 1000\nhost: file.local\nmode: file\n"), 0600); err != nil {
		t.Fatal(err)
	}

	var port int
	set := NewParameterSet("server",
		NewParameter[int]("port").Default("8080").Bind(&port).MustBuild(),
		NewParameter[string]("host").Default("localhost").MustBuild(),
		NewParameter[string]("mode").Default("dev").MustBuild(),
	)

	h := newHarness(&runnerApp{}, "--port=2000", "-mode:cli")
	h.builder.ParameterSets(set).ArgumentsFile(path)
	s := h.build(t)
	if err := s.Ignite(); err != nil {
		t.Fatalf("Ignite failed: %v", err)
	}

	if port != 2000 {
		t.Errorf("flag should beat the file, port = %d", port)
	}
	if host := Get[string](set.Lookup("host")); host != "file.local" {
		t.Errorf("host = %q", host)
	}
	if mode := Get[string](set.Lookup("mode")); mode != "cli" {
		t.Errorf("mode = %q", mode)
	}
}

// TestAuditLifecycleEvents verifies transitions are recorded.
func TestAuditLifecycleEvents(t *testing.T) {
	auditor, err := NewAuditLogger(AuditConfig{
		Enabled:    true,
		OutputFile: filepath.Join(t.TempDir(), "audit.jsonl"),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = auditor.Close() }()

	h := newHarness(&lifecycleApp{failStartup: goerrors.New("boom")})
	s, err := h.builder.Name("audited").Audit(auditor).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	_ = s.Ignite()
	_ = s.Shutdown()

	events, err := auditor.Query(AuditQuery{Application: "audited"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	seen := make(map[string]bool)
	for _, event := range events {
		seen[event.Event] = true
	}
	for _, name := range []string{"ignite", "startup_failed", "shutdown_completed"} {
		if !seen[name] {
			t.Errorf("missing audit event %q in %v", name, seen)
		}
	}
}

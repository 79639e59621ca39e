// ignitable.go: Capabilities of the unit of work driven by a Standalone
//
// An Ignitable is any value. The orchestrator discovers what it can do through
// the small interfaces below and only calls the hooks that are implemented.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ignite

import (
	"fmt"
	"io"
	"sync"

	"github.com/agilira/go-errors"
)

// Ignitable is the user-supplied unit of work.
type Ignitable any

// BeforeStartupHook runs first during startup.
type BeforeStartupHook interface {
	BeforeStartup() error
}

// StartupHook replaces the default startup, which calls Run on a Runner.
type StartupHook interface {
	Startup() error
}

// AfterStartupHook runs last during startup.
type AfterStartupHook interface {
	AfterStartup() error
}

// BeforeShutdownHook runs first during shutdown.
type BeforeShutdownHook interface {
	BeforeShutdown() error
}

// ShutdownHook replaces the default shutdown, which closes an io.Closer.
type ShutdownHook interface {
	Shutdown() error
}

// AfterShutdownHook runs last during shutdown.
type AfterShutdownHook interface {
	AfterShutdown() error
}

// Runner is started by the default startup.
type Runner interface {
	Run() error
}

// StartupExceptionHandler receives the first startup failure. Returning nil
// swallows it, returning an error propagates it from Ignite.
type StartupExceptionHandler interface {
	StartupException(err error) error
}

// ShutdownExceptionHandler receives the first shutdown failure. Returning nil
// swallows it, returning an error propagates it from Shutdown.
type ShutdownExceptionHandler interface {
	ShutdownException(err error) error
}

// ParameterExceptionHandler receives the first parameter failure of the parse
// or the validation pass. Returning nil lets the lifecycle continue.
type ParameterExceptionHandler interface {
	ParameterProcessingException(err *ParameterError) error
}

// StandaloneAware receives the Standalone driving it before parameters are parsed.
type StandaloneAware interface {
	SetStandalone(s *Standalone)
}

// Adapter can be embedded in an Ignitable to get access to its Standalone.
type Adapter struct {
	mu         sync.RWMutex
	standalone *Standalone
}

// SetStandalone implements StandaloneAware.
func (a *Adapter) SetStandalone(s *Standalone) {
	a.mu.Lock()
	a.standalone = s
	a.mu.Unlock()
}

// Standalone returns the driving Standalone, or nil before ignition.
func (a *Adapter) Standalone() *Standalone {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.standalone
}

// Console returns the console of the driving Standalone, or a discarding one.
func (a *Adapter) Console() Console {
	if s := a.Standalone(); s != nil {
		return s.Console()
	}
	return DiscardConsole()
}

// stage is one hook invocation of a lifecycle sequence.
type stage struct {
	name string
	run  func() error
}

// startupStages lists the startup hooks implemented by instance.
func startupStages(instance Ignitable) []stage {
	var stages []stage
	if h, ok := instance.(BeforeStartupHook); ok {
		stages = append(stages, stage{"beforeStartup", h.BeforeStartup})
	}
	switch h := instance.(type) {
	case StartupHook:
		stages = append(stages, stage{"startup", h.Startup})
	case Runner:
		stages = append(stages, stage{"startup", h.Run})
	}
	if h, ok := instance.(AfterStartupHook); ok {
		stages = append(stages, stage{"afterStartup", h.AfterStartup})
	}
	return stages
}

// shutdownStages lists the shutdown hooks implemented by instance. closer is
// the guarded close used when instance has no Shutdown of its own.
func shutdownStages(instance Ignitable, closer func() error) []stage {
	var stages []stage
	if h, ok := instance.(BeforeShutdownHook); ok {
		stages = append(stages, stage{"beforeShutdown", h.BeforeShutdown})
	}
	if h, ok := instance.(ShutdownHook); ok {
		stages = append(stages, stage{"shutdown", h.Shutdown})
	} else if _, ok := instance.(io.Closer); ok {
		stages = append(stages, stage{"shutdown", closer})
	}
	if h, ok := instance.(AfterShutdownHook); ok {
		stages = append(stages, stage{"afterShutdown", h.AfterShutdown})
	}
	return stages
}

// runStages invokes stages in order and stops at the first failure.
func runStages(stages []stage) error {
	for _, st := range stages {
		if err := invoke(st.name, st.run); err != nil {
			return err
		}
	}
	return nil
}

// invoke calls fn, converting a panic into an IGNITE_HOOK_PANIC error.
func invoke(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(ErrCodeHookPanic, fmt.Sprintf("%s panicked: %v", name, r)).
				WithContext("hook", name)
		}
	}()
	return fn()
}

// routeStartupFailure hands err to the startup exception handler, if any.
func routeStartupFailure(instance Ignitable, err error) error {
	h, ok := instance.(StartupExceptionHandler)
	if !ok {
		return err
	}
	var routed error
	if perr := invoke("startupException", func() error {
		routed = h.StartupException(err)
		return nil
	}); perr != nil {
		return perr
	}
	return routed
}

// routeShutdownFailure hands err to the shutdown exception handler, if any.
func routeShutdownFailure(instance Ignitable, err error) error {
	h, ok := instance.(ShutdownExceptionHandler)
	if !ok {
		return err
	}
	var routed error
	if perr := invoke("shutdownException", func() error {
		routed = h.ShutdownException(err)
		return nil
	}); perr != nil {
		return perr
	}
	return routed
}

// routeParameterFailure hands err to the parameter exception handler, if any.
func routeParameterFailure(instance Ignitable, err *ParameterError) error {
	h, ok := instance.(ParameterExceptionHandler)
	if !ok {
		return err
	}
	var routed error
	if perr := invoke("parameterProcessingException", func() error {
		routed = h.ParameterProcessingException(err)
		return nil
	}); perr != nil {
		return perr
	}
	return routed
}

// exit_hook.go: Signal driven shutdown
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ignite

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// exitSignals trigger the shutdown sequence when the exit hook is installed.
var exitSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// exitHook waits for a termination signal on behalf of a Standalone.
type exitHook struct {
	signals chan os.Signal
	stop    chan struct{}
	once    sync.Once
}

// installExitHook subscribes to exitSignals. On delivery the Standalone is shut
// down, and once shutdown is complete the process exits with 128+signal.
func (s *Standalone) installExitHook() {
	if !s.exitHook {
		return
	}

	h := &exitHook{
		signals: make(chan os.Signal, 1),
		stop:    make(chan struct{}),
	}
	signal.Notify(h.signals, exitSignals...)
	s.hook = h

	go func() {
		select {
		case sig := <-h.signals:
			s.console.Verbose(fmt.Sprintf("received %s, shutting down", sig))
			s.auditLog(AuditSecurity, "signal_received", map[string]interface{}{"signal": sig.String()})
			if err := s.Shutdown(); err != nil {
				s.console.Error(fmt.Sprintf("shutdown failed: %v", err))
			}
			<-s.Done()
			s.exit(signalExitCode(sig))
		case <-h.stop:
		}
	}()
}

// close unsubscribes from the signals and releases the waiting goroutine.
func (h *exitHook) close() {
	h.once.Do(func() {
		signal.Stop(h.signals)
		close(h.stop)
	})
}

// signalExitCode follows the shell convention of 128 plus the signal number.
func signalExitCode(sig os.Signal) int {
	if n, ok := sig.(syscall.Signal); ok {
		return 128 + int(n)
	}
	return 1
}

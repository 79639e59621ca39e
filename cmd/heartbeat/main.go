// heartbeat: a sample service driven by an ignite Standalone
//
// Usage:
//
//	heartbeat -interval:500ms -format:json -beats:10 --name=pulse
//
// Ctrl+C (or SIGTERM) runs the shutdown sequence before the process exits.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/agilira/go-timecache"
	"github.com/agilira/ignite"
)

// Format selects how beats are printed.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var (
	interval = ignite.NewParameter[time.Duration]("interval").
			Description("time between two beats").
			Default("1s").
			Validator(func(d time.Duration) string {
			if d < 10*time.Millisecond {
				return "must be at least 10ms"
			}
			return ""
		}).
		MustBuild()

	format = ignite.NewParameter[Format]("format").
		Description("beat output format").
		Prefixes("-format", "-f").
		Enum(FormatText, FormatJSON).
		CaseInsensitive().
		Default("text").
		MustBuild()

	beats = ignite.NewParameter[int]("beats").
		Description("number of beats before stopping, 0 runs until interrupted").
		Default("0").
		Validator(func(n int) string {
			if n < 0 {
				return "cannot be negative"
			}
			return ""
		}).
		MustBuild()

	name = ignite.NewParameter[string]("name").
		Description("name reported with every beat").
		Prefixes("-name", "--name").
		Default("heartbeat").
		MustBuild()
)

// heartbeat prints a beat at every interval until it is closed.
type heartbeat struct {
	ignite.Adapter

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	count    int
}

// BeforeStartup implements ignite.BeforeStartupHook.
func (h *heartbeat) BeforeStartup() error {
	h.stop = make(chan struct{})
	h.Console().Verbose("beating every %s", ignite.Get[time.Duration](interval))
	return nil
}

// Run implements ignite.Runner.
func (h *heartbeat) Run() error {
	ticker := time.NewTicker(ignite.Get[time.Duration](interval))
	limit := ignite.Get[int](beats)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-h.stop:
				return
			case <-ticker.C:
				h.count++
				h.beat()
				if limit > 0 && h.count >= limit {
					if s := h.Standalone(); s != nil {
						go s.Extinguish(0)
					}
					return
				}
			}
		}
	}()
	return nil
}

// Close implements io.Closer.
func (h *heartbeat) Close() error {
	h.stopOnce.Do(func() {
		if h.stop != nil {
			close(h.stop)
		}
	})
	h.wg.Wait()
	return nil
}

// AfterShutdown implements ignite.AfterShutdownHook.
func (h *heartbeat) AfterShutdown() error {
	h.Console().Info("%s stopped after %d beats", ignite.Get[string](name), h.count)
	return nil
}

func (h *heartbeat) beat() {
	now := timecache.CachedTime()
	if ignite.Get[Format](format) == FormatJSON {
		line, err := json.Marshal(map[string]any{
			"name": ignite.Get[string](name),
			"beat": h.count,
			"at":   now.Format(time.RFC3339Nano),
		})
		if err != nil {
			h.Console().Error("failed to encode beat: %v", err)
			return
		}
		h.Console().Info("%s", line)
		return
	}
	h.Console().Info("%s beat %d at %s", ignite.Get[string](name), h.count, now.Format(time.TimeOnly))
}

func main() {
	service := &heartbeat{}
	standalone, err := ignite.NewBuilder(func() ignite.Ignitable { return service }).
		Name("heartbeat").
		Description("Prints a beat at a fixed interval").
		Arguments(os.Args[1:]...).
		ParameterSets(ignite.NewParameterSet("heartbeat", interval, format, beats, name)).
		FromEnv().
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := standalone.Ignite(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		standalone.Extinguish(1)
		return
	}

	if standalone.Started() {
		<-standalone.Done()
	}
}

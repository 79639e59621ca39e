// banner.go: Startup banner and host diagnostics
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ignite

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"runtime/debug"
	"strings"
	"unicode/utf8"
)

// BannerRenderer turns the application name into the lines of its banner.
type BannerRenderer func(name string) []string

// BoxBanner frames the name in a single-line box.
func BoxBanner(name string) []string {
	border := "+" + strings.Repeat("-", utf8.RuneCountInString(name)+2) + "+"
	return []string{border, "| " + name + " |", border}
}

// Diagnostics describes the host and build a Standalone runs on.
type Diagnostics struct {
	GoVersion   string
	Cores       int
	HeapBytes   uint64
	SystemBytes uint64
	BasePath    string
	Module      string
	Version     string
}

// CollectDiagnostics gathers runtime information. When instance is not nil the
// module and version are those of the package declaring its type.
func CollectDiagnostics(instance any) Diagnostics {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	d := Diagnostics{
		GoVersion:   runtime.Version(),
		Cores:       runtime.NumCPU(),
		HeapBytes:   mem.HeapSys,
		SystemBytes: mem.Sys,
		BasePath:    basePath(),
		Module:      "unknown",
		Version:     "unknown",
	}
	d.Module, d.Version = moduleOf(instance)
	return d
}

// Lines renders the diagnostics the way the banner prints them.
func (d Diagnostics) Lines() []string {
	return []string{
		fmt.Sprintf("\tGo: %s", d.GoVersion),
		fmt.Sprintf("\tCores: %d", d.Cores),
		fmt.Sprintf("\tMemory (bytes): %d/%d", d.HeapBytes, d.SystemBytes),
		fmt.Sprintf("\tBase path: %s", d.BasePath),
		fmt.Sprintf("\tVersion: %s/%s", d.Module, d.Version),
	}
}

// bannerLines renders the complete banner block for name.
func bannerLines(name string, render BannerRenderer, instance any) []string {
	if render == nil {
		render = BoxBanner
	}
	art := render(name)

	width := 0
	for _, line := range art {
		if w := utf8.RuneCountInString(line); w > width {
			width = w
		}
	}
	if width == 0 {
		width = utf8.RuneCountInString(name)
	}

	lines := make([]string, 0, len(art)+8)
	lines = append(lines, strings.Repeat("=", width))
	lines = append(lines, art...)
	lines = append(lines, strings.Repeat("-", width))
	lines = append(lines, CollectDiagnostics(instance).Lines()...)
	lines = append(lines, strings.Repeat("=", width))
	return lines
}

func basePath() string {
	wd, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	if abs, err := filepath.Abs(wd); err == nil {
		return abs
	}
	return wd
}

// moduleOf finds the module providing the type of instance in the build info.
func moduleOf(instance any) (string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown", "unknown"
	}

	pkgPath := ""
	if instance != nil {
		typ := reflect.TypeOf(instance)
		for typ.Kind() == reflect.Pointer {
			typ = typ.Elem()
		}
		pkgPath = typ.PkgPath()
	}

	for _, dep := range info.Deps {
		if pkgPath != "" && (pkgPath == dep.Path || strings.HasPrefix(pkgPath, dep.Path+"/")) {
			return dep.Path, dep.Version
		}
	}

	version := info.Main.Version
	if version == "" {
		version = "unknown"
	}
	path := info.Main.Path
	if path == "" {
		path = "unknown"
	}
	return path, version
}

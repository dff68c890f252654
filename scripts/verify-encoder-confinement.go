//go:build ignore

// SPDX-License-Identifier: MIT

// verify-encoder-confinement fails when code outside internal/media/ffmpeg
// spawns processes directly. All encoder process handling belongs behind the
// ffmpeg adapter so shutdown can account for every child.
//
// Usage:
//
//	go run ./scripts/verify-encoder-confinement.go [package pattern]
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"
)

const confinedTo = "github.com/danibene/respiring/internal/media/ffmpeg"

// allowed may spawn processes: the adapter owns encoder children, health
// probes run short-lived version checks.
var allowed = []string{
	confinedTo,
	"github.com/danibene/respiring/internal/health",
}

var forbidden = []string{"os/exec"}

func main() {
	pattern := "./..."
	if len(os.Args) > 1 {
		pattern = os.Args[1]
	}

	violations, err := analyze(pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		os.Exit(1)
	}

	if len(violations) > 0 {
		fmt.Fprintln(os.Stderr, "process spawning outside the ffmpeg adapter:")
		for _, v := range violations {
			fmt.Fprintln(os.Stderr, "  "+v)
		}
		os.Exit(1)
	}
}

func analyze(pattern string) ([]string, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
		Dir:  ".",
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}

	var violations []string
	for _, pkg := range pkgs {
		if isAllowed(pkg.PkgPath) {
			continue
		}
		for i, file := range pkg.Syntax {
			filename := ""
			if i < len(pkg.CompiledGoFiles) {
				filename = pkg.CompiledGoFiles[i]
			} else if i < len(pkg.GoFiles) {
				filename = pkg.GoFiles[i]
			}
			if filename == "" || strings.HasSuffix(filename, "_test.go") {
				continue
			}
			for _, imp := range file.Imports {
				path, err := strconv.Unquote(imp.Path.Value)
				if err != nil {
					continue
				}
				for _, bad := range forbidden {
					if path == bad {
						violations = append(violations,
							fmt.Sprintf("%s: imports %s (keep process handling in %s)", filename, path, confinedTo))
					}
				}
			}
		}
	}
	return violations, nil
}

func isAllowed(pkgPath string) bool {
	for _, a := range allowed {
		if pkgPath == a || strings.HasPrefix(pkgPath, a+"/") {
			return true
		}
	}
	return false
}

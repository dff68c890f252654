// SPDX-License-Identifier: MIT

// Command respiring generates breathing instruction videos and serves them
// over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/danibene/respiring/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch args[0] {
	case "build":
		return runBuild(args[1:])
	case "serve":
		return runServe(args[1:])
	case "list":
		return runList(args[1:])
	case "presets":
		return runPresets(args[1:])
	case "config":
		return runConfigCLI(args[1:])
	case "version", "--version", "-version":
		return runVersion()
	case "help", "-h", "--help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  respiring <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  build     generate a breathing video")
	fmt.Fprintln(os.Stderr, "  serve     run the HTTP service")
	fmt.Fprintln(os.Stderr, "  list      list cataloged videos")
	fmt.Fprintln(os.Stderr, "  presets   show built-in and configured breathing presets")
	fmt.Fprintln(os.Stderr, "  config    validate or dump configuration")
	fmt.Fprintln(os.Stderr, "  version   print version information")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Run 'respiring <command> -h' for command flags.")
}

func runVersion() int {
	fmt.Printf("respiring %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
	return 0
}

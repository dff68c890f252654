// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/danibene/respiring/internal/config"
	"github.com/danibene/respiring/internal/pattern"
	"github.com/danibene/respiring/internal/version"
)

func runPresets(args []string) int {
	fs := flag.NewFlagSet("respiring presets", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.NewLoader(resolveDefaultConfigPath(), version.Version).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	presets, err := cfg.BreathingPresets()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := writePresets(os.Stdout, presets); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func writePresets(w io.Writer, presets []pattern.Preset) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPATTERN\tCYCLE")
	for _, p := range presets {
		fmt.Fprintf(tw, "%s\t%s\t%gs\n", p.Name, p.Pattern.String(), p.Pattern.Cycle())
	}
	return tw.Flush()
}

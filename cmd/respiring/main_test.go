// SPDX-License-Identifier: MIT
package main

import "testing"

func TestRunDispatch(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no args", nil, 2},
		{"unknown command", []string{"frobnicate"}, 2},
		{"help command", []string{"help"}, 0},
		{"help flag", []string{"--help"}, 0},
		{"short help flag", []string{"-h"}, 0},
		{"version command", []string{"version"}, 0},
		{"version flag", []string{"--version"}, 0},
		{"config without subcommand", []string{"config"}, 0},
		{"config unknown subcommand", []string{"config", "explode"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(tt.args); got != tt.want {
				t.Errorf("run(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

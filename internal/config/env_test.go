// SPDX-License-Identifier: MIT
package config

import (
	"testing"
	"time"
)

func TestParseString(t *testing.T) {
	t.Setenv("TEST_STRING_SET", "value")
	t.Setenv("TEST_STRING_EMPTY", "")

	if got := ParseString("TEST_STRING_SET", "default"); got != "value" {
		t.Errorf("expected %q, got %q", "value", got)
	}
	if got := ParseString("TEST_STRING_EMPTY", "default"); got != "default" {
		t.Errorf("empty variable should use default, got %q", got)
	}
	if got := ParseString("TEST_STRING_UNSET", "default"); got != "default" {
		t.Errorf("unset variable should use default, got %q", got)
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   int
		want  int
	}{
		{"valid", "42", 7, 42},
		{"negative", "-3", 7, -3},
		{"invalid", "abc", 7, 7},
		{"empty", "", 7, 7},
		{"float rejected", "4.2", 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.value)
			if got := ParseInt("TEST_INT", tt.def); got != tt.want {
				t.Errorf("ParseInt(%q) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   float64
		want  float64
	}{
		{"valid", "220.5", 1, 220.5},
		{"integer form", "110", 1, 110},
		{"invalid", "low", 1, 1},
		{"empty", "", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_FLOAT", tt.value)
			if got := ParseFloat("TEST_FLOAT", tt.def); got != tt.want {
				t.Errorf("ParseFloat(%q) = %g, want %g", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   time.Duration
		want  time.Duration
	}{
		{"seconds", "30s", time.Minute, 30 * time.Second},
		{"hours", "24h", time.Minute, 24 * time.Hour},
		{"invalid", "soon", time.Minute, time.Minute},
		{"bare number rejected", "30", time.Minute, time.Minute},
		{"empty", "", time.Minute, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			if got := ParseDuration("TEST_DURATION", tt.def); got != tt.want {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   bool
		want  bool
	}{
		{"true", "true", false, true},
		{"one", "1", false, true},
		{"yes uppercase", "YES", false, true},
		{"false", "false", true, false},
		{"zero", "0", true, false},
		{"no", "no", true, false},
		{"invalid", "maybe", true, true},
		{"empty", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			if got := ParseBool("TEST_BOOL", tt.def); got != tt.want {
				t.Errorf("ParseBool(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

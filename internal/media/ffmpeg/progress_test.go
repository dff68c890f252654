// SPDX-License-Identifier: MIT

package ffmpeg

import (
	"strings"
	"testing"
)

func TestParseOutTime(t *testing.T) {
	tests := []struct {
		line   string
		wantUs int64
		wantOK bool
	}{
		{"out_time_us=1500000", 1500000, true},
		{"out_time_us=0", 0, true},
		{"out_time_us=N/A", 0, false},
		{"out_time=00:00:01.500000", 0, false},
		{"frame=36", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		us, ok := parseOutTime(tt.line)
		if ok != tt.wantOK || us != tt.wantUs {
			t.Errorf("parseOutTime(%q) = (%d, %v), want (%d, %v)", tt.line, us, ok, tt.wantUs, tt.wantOK)
		}
	}
}

func TestScanProgressReportsFractions(t *testing.T) {
	stderr := strings.Join([]string{
		"frame=1",
		"out_time_us=N/A",
		"out_time_us=15000000",
		"speed=3.2x",
		"out_time_us=30000000",
		"out_time_us=60000000",
		"progress=end",
	}, "\n")

	var got []float64
	var seen []int64
	diagnostics := scanProgress(strings.NewReader(stderr), 60, func(f float64) {
		got = append(got, f)
	}, func(us int64) {
		seen = append(seen, us)
	})

	want := []float64{0.25, 0.5, 1}
	if len(got) != len(want) {
		t.Fatalf("got %d callbacks %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("callback %d = %v, want %v", i, got[i], want[i])
		}
	}
	if len(diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", diagnostics)
	}
	wantSeen := []int64{15000000, 30000000, 60000000}
	if len(seen) != len(wantSeen) {
		t.Fatalf("observed %v, want %v", seen, wantSeen)
	}
	for i := range wantSeen {
		if seen[i] != wantSeen[i] {
			t.Errorf("observed[%d] = %d, want %d", i, seen[i], wantSeen[i])
		}
	}
}

func TestScanProgressClampsOvershoot(t *testing.T) {
	var got []float64
	scanProgress(strings.NewReader("out_time_us=90000000\n"), 60, func(f float64) {
		got = append(got, f)
	}, nil)
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("got %v, want [1]", got)
	}
}

func TestScanProgressCollectsDiagnostics(t *testing.T) {
	lines := []string{
		"pipe:0: Invalid data found when processing input",
		"out_time_us=1000",
		"Error while decoding stream",
	}
	diagnostics := scanProgress(strings.NewReader(strings.Join(lines, "\n")), 60, nil, nil)

	if len(diagnostics) != 2 {
		t.Fatalf("diagnostics = %v, want 2 entries", diagnostics)
	}
	if diagnostics[0] != lines[0] || diagnostics[1] != lines[2] {
		t.Errorf("diagnostics = %v", diagnostics)
	}
}

func TestScanProgressCapsDiagnosticTail(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString("noise line ")
		sb.WriteByte(byte('a' + i))
		sb.WriteByte('\n')
	}
	diagnostics := scanProgress(strings.NewReader(sb.String()), 0, nil, nil)
	if len(diagnostics) != diagnosticTail {
		t.Errorf("len = %d, want %d", len(diagnostics), diagnosticTail)
	}
	if diagnostics[len(diagnostics)-1] != "noise line t" {
		t.Errorf("last diagnostic = %q, want the newest line", diagnostics[len(diagnostics)-1])
	}
}

func TestParseProbeDuration(t *testing.T) {
	tests := []struct {
		out     string
		want    float64
		wantErr bool
	}{
		{"60.021333\n", 60.021333, false},
		{" 5.0 ", 5, false},
		{"N/A", 0, true},
		{"", 0, true},
		{"-1", 0, true},
	}

	for _, tt := range tests {
		got, err := parseProbeDuration(tt.out)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseProbeDuration(%q) expected error, got %v", tt.out, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseProbeDuration(%q) unexpected error: %v", tt.out, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseProbeDuration(%q) = %v, want %v", tt.out, got, tt.want)
		}
	}
}

// SPDX-License-Identifier: MIT

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func captureEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestConfigureAttachesServiceFields(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "respiring", Version: "test"})

	WithComponent("renderer").Info().Msg("frame done")

	entry := captureEntry(t, &buf)
	if entry["service"] != "respiring" {
		t.Errorf("service = %v, want respiring", entry["service"])
	}
	if entry["version"] != "test" {
		t.Errorf("version = %v, want test", entry["version"])
	}
	if entry["component"] != "renderer" {
		t.Errorf("component = %v, want renderer", entry["component"])
	}
	if entry["message"] != "frame done" {
		t.Errorf("message = %v, want frame done", entry["message"])
	}

	// Restore defaults for other tests.
	Configure(Config{Level: "info", Output: &bytes.Buffer{}})
}

func TestConfigureReappliesLevel(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "warn", Output: &buf})

	Base().Info().Msg("suppressed")
	if buf.Len() != 0 {
		t.Fatalf("info entry should be suppressed at warn level, got %q", buf.String())
	}

	Configure(Config{Level: "debug", Output: &buf})
	Base().Debug().Msg("visible")
	if buf.Len() == 0 {
		t.Fatal("debug entry should be emitted after reconfiguration")
	}

	Configure(Config{Level: "info", Output: &bytes.Buffer{}})
}

func TestConfigureZeroConfigIsNoOp(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "info", Output: &buf})

	// A zero config must not reset the writer back to stdout.
	Configure(Config{})

	Base().Info().Msg("still here")
	if buf.Len() == 0 {
		t.Fatal("zero-config Configure must keep the previous writer")
	}

	Configure(Config{Level: "info", Output: &bytes.Buffer{}})
}

func TestDerive(t *testing.T) {
	logger1 := Derive(nil)
	if logger1.GetLevel() > zerolog.PanicLevel {
		t.Error("expected valid logger from Derive with nil builder")
	}

	var buf bytes.Buffer
	Configure(Config{Level: "info", Output: &buf})
	logger2 := Derive(func(ctx *zerolog.Context) {
		*ctx = ctx.Str(FieldJobID, "job-1")
	})
	logger2.Info().Msg("derived")

	entry := captureEntry(t, &buf)
	if entry[FieldJobID] != "job-1" {
		t.Errorf("job_id = %v, want job-1", entry[FieldJobID])
	}

	Configure(Config{Level: "info", Output: &bytes.Buffer{}})
}

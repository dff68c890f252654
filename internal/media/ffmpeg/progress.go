// SPDX-License-Identifier: MIT

package ffmpeg

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

const progressTimePrefix = "out_time_us="

// diagnosticTail bounds how many non-progress stderr lines are kept for
// error reporting.
const diagnosticTail = 8

// scanProgress consumes the encoder's stderr until EOF. Lines of the
// -progress key=value stream are turned into progress callbacks; everything
// else is collected as diagnostics for error messages. observe, when set,
// receives every parsed out_time reading regardless of totalSeconds.
func scanProgress(r io.Reader, totalSeconds float64, onProgress ProgressFunc, observe func(us int64)) []string {
	var diagnostics []string
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if us, ok := parseOutTime(line); ok {
			if observe != nil {
				observe(us)
			}
			if onProgress != nil && totalSeconds > 0 {
				fraction := float64(us) / 1e6 / totalSeconds
				if fraction > 1 {
					fraction = 1
				}
				onProgress(fraction)
			}
			continue
		}
		if strings.Contains(line, "=") {
			// Other -progress fields (frame=, speed=, ...).
			continue
		}
		if len(diagnostics) == diagnosticTail {
			diagnostics = diagnostics[1:]
		}
		diagnostics = append(diagnostics, line)
	}
	return diagnostics
}

// parseOutTime extracts the microsecond timestamp from an out_time_us line.
func parseOutTime(line string) (int64, bool) {
	if !strings.HasPrefix(line, progressTimePrefix) {
		return 0, false
	}
	value := strings.TrimPrefix(line, progressTimePrefix)
	us, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// ffmpeg emits "N/A" before the first frame lands.
		return 0, false
	}
	return us, true
}

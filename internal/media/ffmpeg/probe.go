// SPDX-License-Identifier: MIT

package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ProbeDuration returns the container duration of the file at path in
// seconds, as reported by ffprobe.
func (a *Adapter) ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, a.ProbePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		path,
	) // #nosec G204
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseProbeDuration(string(out))
}

func parseProbeDuration(out string) (float64, error) {
	value := strings.TrimSpace(out)
	d, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration %q: %w", value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("ffprobe reported negative duration %f", d)
	}
	return d, nil
}

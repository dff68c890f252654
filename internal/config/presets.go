// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"sort"

	"github.com/danibene/respiring/internal/pattern"
)

// BreathingPresets returns the built-in presets with any configured
// overrides appended. Overrides shadow builtins of the same name because
// lookup takes the last match.
func (c AppConfig) BreathingPresets() ([]pattern.Preset, error) {
	out := pattern.Builtin()

	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p, err := pattern.Parse(c.Presets[name])
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		out = append(out, pattern.Preset{Name: name, Pattern: p})
	}
	return out, nil
}

// SPDX-License-Identifier: MIT

package pattern

import "strings"

// Preset pairs a named breathing technique with its pattern.
type Preset struct {
	Name    string
	Pattern Pattern
}

// Builtin returns the breathing techniques shipped with the tool, in display
// order. Callers may append or override entries from configuration.
func Builtin() []Preset {
	return []Preset{
		{Name: "relaxed", Pattern: Pattern{Inhale: 6, Exhale: 6}},
		{Name: "box", Pattern: Pattern{Inhale: 4, HoldIn: 4, Exhale: 4, HoldOut: 4}},
		{Name: "478", Pattern: Pattern{Inhale: 4, HoldIn: 7, Exhale: 8}},
		{Name: "coherent", Pattern: Pattern{Inhale: 5.5, Exhale: 5.5}},
	}
}

// Find looks up a preset by name, case-insensitively. The last entry wins so
// configured overrides shadow builtins when appended after them.
func Find(presets []Preset, name string) (Pattern, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return Pattern{}, false
	}
	var (
		found Pattern
		ok    bool
	)
	for _, preset := range presets {
		if strings.ToLower(preset.Name) == want {
			found = preset.Pattern
			ok = true
		}
	}
	return found, ok
}

// Resolve interprets s as a preset name first and as a pattern literal
// second, so "box" and "4,4,4,4" both work.
func Resolve(presets []Preset, s string) (Pattern, error) {
	if p, ok := Find(presets, s); ok {
		return p, nil
	}
	return Parse(s)
}

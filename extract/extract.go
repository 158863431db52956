// Package extract holds the domain extractors: specialized readers that
// consume raw script text through the luascan/luaexpr IR and
// reconstruct prefabs, craft recipes, cooking recipes and ingredients,
// loot tables, components and world-gen artifacts.
//
// Extractors share one contract: given text they return a structured
// record set or an empty result, never an error — an individual record
// that fails its best-effort parse is skipped and the extractor yields
// partial data.
package extract

import (
	"regexp"
	"strings"
)

var idRe = regexp.MustCompile(`^[a-z0-9_]+$`)

// CleanID lowercases and validates an identifier against [a-z0-9_]+.
func CleanID(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || !idRe.MatchString(s) {
		return "", false
	}
	return s, true
}

// FileStem returns the lowercased basename of a path without its .lua
// suffix.
func FileStem(path string) string {
	base := path
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(base, ".lua")
	return strings.ToLower(strings.TrimSpace(base))
}

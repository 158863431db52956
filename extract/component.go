package extract

import (
	"regexp"
	"strings"

	"github.com/luadex/luadex"
	"github.com/luadex/luadex/luaexpr"
	"github.com/luadex/luadex/luascan"
)

var (
	classAssignRe = regexp.MustCompile(`(?m)^\s*(?:local\s+)?([A-Za-z0-9_]+)\s*=\s*Class\b`)
	returnRe      = regexp.MustCompile(`\breturn\s+([A-Za-z0-9_]+)\b`)
	methodRe      = regexp.MustCompile(`\bfunction\s+([A-Za-z0-9_]+)[:.]([A-Za-z0-9_]+)\s*\(`)
	selfFieldRe   = regexp.MustCompile(`\bself\.([A-Za-z0-9_]+)\s*=`)
	requireRe     = regexp.MustCompile(`require\s*\(?\s*["'](.*?)["']\s*\)?`)
)

// guessClassName derives a class name from a component id, e.g.
// "finite_uses" -> "FiniteUses".
func guessClassName(componentID string) string {
	if componentID == "" {
		return ""
	}
	parts := strings.Split(componentID, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	if b.Len() == 0 {
		return strings.ToUpper(componentID[:1]) + componentID[1:]
	}
	return b.String()
}

// ParseComponent extracts the API surface of one component script:
// class aliases, methods on those aliases, self-assigned fields,
// listened-for events and required resource paths. The component id
// comes from the filename.
func ParseComponent(content, path string) *luadex.ComponentDef {
	compID := FileStem(path)
	clean := luascan.StripComments(content)

	def := &luadex.ComponentDef{
		ID:   compID,
		Path: path,
	}
	for _, m := range requireRe.FindAllStringSubmatch(clean, -1) {
		def.Requires = append(def.Requires, m[1])
	}

	aliases := map[string]bool{}
	for _, m := range classAssignRe.FindAllStringSubmatch(clean, -1) {
		aliases[m[1]] = true
	}

	// prefer an explicit return alias as the class name
	className := ""
	if m := returnRe.FindStringSubmatch(clean); m != nil && aliases[m[1]] {
		className = m[1]
	}
	if className == "" && len(aliases) > 0 {
		className = sortedKeys(aliases)[0]
	}
	if len(aliases) == 0 && compID != "" {
		guess := guessClassName(compID)
		aliases[guess] = true
		className = guess
	}

	methods := map[string]bool{}
	for _, m := range methodRe.FindAllStringSubmatch(clean, -1) {
		if len(aliases) > 0 && !aliases[m[1]] {
			continue
		}
		methods[m[2]] = true
	}

	fields := map[string]bool{}
	for _, m := range selfFieldRe.FindAllStringSubmatch(clean, -1) {
		fields[m[1]] = true
	}

	events := map[string]bool{}
	for _, call := range luaexpr.NewExtractor(content).Extract("ListenForEvent") {
		if len(call.ArgList) == 0 {
			continue
		}
		if ev, ok := luaexpr.ParseString(call.ArgList[0]); ok && ev != "" {
			events[ev] = true
		}
	}

	def.ClassName = className
	def.Aliases = sortedKeys(aliases)
	def.Methods = sortedKeys(methods)
	def.Fields = sortedKeys(fields)
	def.Events = sortedKeys(events)
	return def
}

var componentAliasRes = []*regexp.Regexp{
	regexp.MustCompile(`\blocal\s+([A-Za-z0-9_]+)\s*=\s*(?:inst|self)[.:]AddComponent\(\s*['"]([A-Za-z0-9_]+)['"]`),
	regexp.MustCompile(`\b([A-Za-z0-9_]+)\s*=\s*(?:inst|self)[.:]AddComponent\(\s*['"]([A-Za-z0-9_]+)['"]`),
	regexp.MustCompile(`\blocal\s+([A-Za-z0-9_]+)\s*=\s*(?:inst|self)\.components\.([A-Za-z0-9_]+)`),
	regexp.MustCompile(`\b([A-Za-z0-9_]+)\s*=\s*(?:inst|self)\.components\.([A-Za-z0-9_]+)`),
}

// ComponentAliases discovers local-assignment aliases for components
// (`local armor = inst:AddComponent("armor")`) so that stat-setter
// calls through the alias can be attributed to the right component.
// The first binding of a name wins.
func ComponentAliases(clean string) map[string]string {
	out := map[string]string{}
	for _, re := range componentAliasRes {
		for _, m := range re.FindAllStringSubmatch(clean, -1) {
			if _, seen := out[m[1]]; !seen {
				out[m[1]] = strings.ToLower(m[2])
			}
		}
	}
	return out
}

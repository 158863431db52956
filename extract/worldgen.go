package extract

import (
	"regexp"
	"strings"

	"github.com/luadex/luadex"
	"github.com/luadex/luadex/luaexpr"
)

// resolveTableArg parses a table argument that may be either a literal
// constructor or an identifier referring to a sibling table declared in
// the same file.
func resolveTableArg(expr string, localTables map[string]string) (*luaexpr.Table, bool) {
	expr = strings.TrimSpace(expr)
	if raw, ok := localTables[expr]; ok {
		if tbl, ok := luaexpr.Parse(raw).AsTable(); ok {
			return tbl, true
		}
	}
	return luaexpr.Parse(expr).AsTable()
}

func tableStrings(tbl *luaexpr.Table, key string) []string {
	sub, ok := tbl.GetTable(key)
	if !ok {
		return nil
	}
	return sub.StringArray()
}

func tableAnyMap(tbl *luaexpr.Table, key string) map[string]any {
	sub, ok := tbl.GetTable(key)
	if !ok {
		return nil
	}
	out, _ := sub.ToAny().(map[string]any)
	return out
}

// ParseRooms extracts AddRoom definitions from one map script.
func ParseRooms(content string) map[string]*luadex.Room {
	out := map[string]*luadex.Room{}
	if !strings.Contains(content, "AddRoom") {
		return out
	}
	locals := luaexpr.LocalTables(content)

	for _, call := range luaexpr.NewExtractor(content).Extract("AddRoom") {
		if len(call.ArgList) < 2 {
			continue
		}
		rid, ok := luaexpr.ParseString(call.ArgList[0])
		if !ok || strings.TrimSpace(rid) == "" {
			continue
		}
		rid = strings.TrimSpace(rid)
		tbl, ok := resolveTableArg(call.ArgList[1], locals)
		if !ok {
			out[rid] = &luadex.Room{ID: rid}
			continue
		}
		room := &luadex.Room{ID: rid}
		if v, ok := tbl.Get("value"); ok {
			room.Value = v.ToAny()
		}
		room.Tags = tableStrings(tbl, "tags")
		room.Contents = tableAnyMap(tbl, "contents")
		out[rid] = room
	}
	return out
}

// ParseTaskIDs extracts AddTask/AddTaskSet/AddStartLocation ids from
// one map script, one slice per call name.
func ParseTaskIDs(content string) (tasks, taskSets, startLocations []string) {
	x := luaexpr.NewExtractor(content)
	collect := func(name string) []string {
		var out []string
		for _, call := range x.Extract(name) {
			if len(call.ArgList) == 0 {
				continue
			}
			if id, ok := luaexpr.ParseString(call.ArgList[0]); ok && strings.TrimSpace(id) != "" {
				out = append(out, strings.TrimSpace(id))
			}
		}
		return out
	}
	return collect("AddTask"), collect("AddTaskSet"), collect("AddStartLocation")
}

// PresetResult splits preset extraction by flavor.
type PresetResult struct {
	Worldgen map[string]*luadex.Preset
	Settings map[string]*luadex.Preset
}

// ParsePresets extracts AddLevel/AddWorldGenLevel/AddSettingsPreset
// definitions from one levels script.
func ParsePresets(content string) *PresetResult {
	out := &PresetResult{
		Worldgen: map[string]*luadex.Preset{},
		Settings: map[string]*luadex.Preset{},
	}
	if !strings.Contains(content, "AddLevel") &&
		!strings.Contains(content, "AddWorldGenLevel") &&
		!strings.Contains(content, "AddSettingsPreset") {
		return out
	}

	locals := luaexpr.LocalTables(content)
	for _, call := range luaexpr.NewExtractor(content).Extract("AddLevel", "AddWorldGenLevel", "AddSettingsPreset") {
		if len(call.ArgList) < 2 {
			continue
		}
		levelType, _ := luaexpr.ParseString(call.ArgList[0])
		if levelType == "" {
			levelType = strings.TrimSpace(call.ArgList[0])
		}

		tbl, ok := resolveTableArg(call.ArgList[1], locals)
		if !ok {
			continue
		}
		pid, _ := tbl.GetString("id")
		pid = strings.TrimSpace(pid)
		if pid == "" {
			continue
		}

		p := &luadex.Preset{ID: pid, LevelType: levelType}
		if s, ok := tbl.GetString("name"); ok {
			p.Name = s
		}
		if s, ok := tbl.GetString("desc"); ok {
			p.Desc = s
		}
		if s, ok := tbl.GetString("location"); ok {
			p.Location = s
		}
		if s, ok := tbl.GetString("playstyle"); ok {
			p.Playstyle = s
		}
		p.Overrides = tableAnyMap(tbl, "overrides")
		if p.Overrides != nil {
			if ts, ok := p.Overrides["task_set"].(string); ok {
				p.TaskSet = ts
			}
			if sl, ok := p.Overrides["start_location"].(string); ok {
				p.StartLocation = sl
			}
		}

		if call.Name == "AddSettingsPreset" {
			out.Settings[pid] = p
		} else {
			out.Worldgen[pid] = p
		}
	}
	return out
}

var staticLayoutRe = regexp.MustCompile(`\["([^"]+)"\]\s*=\s*StaticLayout\.Get\(\s*["']([^"']+)["']`)

// normalizeLayoutSource puts layout paths under the scripts namespace.
func normalizeLayoutSource(path string) string {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "scripts/") {
		return path
	}
	if strings.HasPrefix(path, "map/") {
		return "scripts/" + path
	}
	return path
}

// ParseLayouts extracts the StaticLayout.Get mapping from the layouts
// script.
func ParseLayouts(content string) map[string]*luadex.Layout {
	out := map[string]*luadex.Layout{}
	for _, m := range staticLayoutRe.FindAllStringSubmatch(content, -1) {
		lid := strings.TrimSpace(m[1])
		if lid == "" {
			continue
		}
		out[lid] = &luadex.Layout{ID: lid, Source: normalizeLayoutSource(m[2])}
	}
	return out
}

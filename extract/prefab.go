package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/luadex/luadex"
	"github.com/luadex/luadex/luaexpr"
	"github.com/luadex/luadex/luascan"
)

// PrefabFile is the flat parse of one prefab script.
type PrefabFile struct {
	Prefabs    []string
	Skipped    int
	Assets     []luadex.Asset
	Components []string
	Tags       []string
	Helpers    []string
	Events     []string
	Brain      string
	Stategraph string
}

var (
	requireBrainRe = regexp.MustCompile(`require\s*\(?\s*['"](.*?)['"]\s*\)?`)
	helperRe       = regexp.MustCompile(`(?m)^\s*(Make[A-Za-z0-9_]+)\s*\(`)
)

// ParsePrefabFile extracts prefab declarations from one script:
// Prefab ids, Asset references, AddComponent/AddTag calls, the
// stategraph and brain, EventHandler names and top-level Make* helper
// calls.
func ParsePrefabFile(content string) *PrefabFile {
	out := &PrefabFile{}
	x := luaexpr.NewExtractor(content)

	for _, call := range x.ExtractOpts(luaexpr.CallOptions{BareOnly: true}, "Prefab") {
		if len(call.ArgList) == 0 {
			continue
		}
		nm, ok := luaexpr.ParseString(call.ArgList[0])
		if !ok {
			continue
		}
		if id, ok := CleanID(nm); ok {
			out.Prefabs = append(out.Prefabs, id)
		} else {
			out.Skipped++
		}
	}

	for _, call := range x.ExtractOpts(luaexpr.CallOptions{BareOnly: true}, "Asset") {
		if len(call.ArgList) < 2 {
			continue
		}
		t, okT := luaexpr.ParseString(call.ArgList[0])
		p, okP := luaexpr.ParseString(call.ArgList[1])
		if okT && okP {
			out.Assets = append(out.Assets, luadex.Asset{Type: t, Path: p})
		}
	}

	comps := map[string]bool{}
	for _, call := range x.Extract("AddComponent") {
		if len(call.ArgList) == 0 {
			continue
		}
		if cn, ok := luaexpr.ParseString(call.ArgList[0]); ok && cn != "" {
			comps[strings.ToLower(strings.TrimSpace(cn))] = true
		}
	}
	out.Components = sortedKeys(comps)

	tags := map[string]bool{}
	for _, call := range x.Extract("AddTag") {
		if len(call.ArgList) == 0 {
			continue
		}
		if tg, ok := luaexpr.ParseString(call.ArgList[0]); ok && tg != "" {
			tags[strings.ToLower(strings.TrimSpace(tg))] = true
		}
	}
	out.Tags = sortedKeys(tags)

	for _, call := range x.Extract("SetStateGraph") {
		if len(call.ArgList) == 0 {
			continue
		}
		if sg, ok := luaexpr.ParseString(call.ArgList[0]); ok && sg != "" {
			out.Stategraph = sg
			break
		}
	}

	for _, call := range x.Extract("SetBrain") {
		if len(call.ArgList) == 0 {
			continue
		}
		if m := requireBrainRe.FindStringSubmatch(call.ArgList[0]); m != nil {
			out.Brain = m[1]
			break
		}
	}

	events := map[string]bool{}
	for _, call := range x.Extract("EventHandler") {
		if len(call.ArgList) == 0 {
			continue
		}
		if ev, ok := luaexpr.ParseString(call.ArgList[0]); ok && ev != "" {
			events[ev] = true
		}
	}
	out.Events = sortedKeys(events)

	helpers := map[string]bool{}
	for _, m := range helperRe.FindAllStringSubmatch(luascan.StripComments(content), -1) {
		helpers[m[1]] = true
	}
	out.Helpers = sortedKeys(helpers)

	return out
}

// PrefabRecord aggregates one prefab id across the files it was
// observed in.
type PrefabRecord struct {
	ID          string
	Files       []string
	Components  map[string]bool
	Tags        map[string]bool
	Helpers     map[string]bool
	Brains      map[string]bool
	Stategraphs map[string]bool
	Assets      []luadex.Asset
	assetKeys   map[string]bool
}

// PrefabIndex aggregates prefab records by id.
type PrefabIndex struct {
	Items   map[string]*PrefabRecord
	Skipped int
}

// NewPrefabIndex returns an empty index.
func NewPrefabIndex() *PrefabIndex {
	return &PrefabIndex{Items: make(map[string]*PrefabRecord)}
}

// AddFile folds one parsed prefab file into the index. When the file
// declares no Prefab ids the filename stem is used, if it validates as
// an identifier.
func (idx *PrefabIndex) AddFile(path string, pf *PrefabFile) {
	ids := pf.Prefabs
	if len(ids) == 0 {
		if id, ok := CleanID(FileStem(path)); ok {
			ids = []string{id}
		}
	}
	idx.Skipped += pf.Skipped

	for _, id := range ids {
		rec := idx.Items[id]
		if rec == nil {
			rec = &PrefabRecord{
				ID:          id,
				Components:  map[string]bool{},
				Tags:        map[string]bool{},
				Helpers:     map[string]bool{},
				Brains:      map[string]bool{},
				Stategraphs: map[string]bool{},
				assetKeys:   map[string]bool{},
			}
			idx.Items[id] = rec
		}
		if !contains(rec.Files, path) {
			rec.Files = append(rec.Files, path)
		}
		for _, c := range pf.Components {
			rec.Components[c] = true
		}
		for _, t := range pf.Tags {
			rec.Tags[t] = true
		}
		for _, h := range pf.Helpers {
			rec.Helpers[h] = true
		}
		if pf.Brain != "" {
			rec.Brains[pf.Brain] = true
		}
		if pf.Stategraph != "" {
			rec.Stategraphs[pf.Stategraph] = true
		}
		for _, a := range pf.Assets {
			if !rec.assetKeys[a.Key()] {
				rec.assetKeys[a.Key()] = true
				rec.Assets = append(rec.Assets, a)
			}
		}
	}
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

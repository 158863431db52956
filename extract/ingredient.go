package extract

import (
	"regexp"
	"strings"

	"github.com/luadex/luadex"
	"github.com/luadex/luadex/luaexpr"
	"github.com/luadex/luadex/luascan"
)

// parseTagTable reads an ingredient tag table into numeric weights plus
// a text map for values that are not numbers. Array entries count as
// weight 1.
func parseTagTable(tbl *luaexpr.Table) (map[string]float64, map[string]string) {
	if tbl == nil {
		return nil, nil
	}
	tags := map[string]float64{}
	exprs := map[string]string{}

	for _, key := range tbl.Keys {
		if key.Kind != luaexpr.KeyStr {
			continue
		}
		k := strings.ToLower(strings.TrimSpace(key.Str))
		if k == "" {
			continue
		}
		v := tbl.Map[key]
		switch v.Kind {
		case luaexpr.KindBool:
			if v.Bool {
				tags[k] = 1.0
			} else {
				tags[k] = 0.0
			}
		case luaexpr.KindInt, luaexpr.KindFloat:
			f, _ := v.AsNumber()
			tags[k] = f
		case luaexpr.KindStr:
			if num, ok := luaexpr.ParseNumber(v.Str); ok {
				f, _ := num.AsNumber()
				tags[k] = f
			} else {
				exprs[k] = v.Str
			}
		default:
			exprs[k] = v.Raw
		}
	}

	for _, v := range tbl.Array {
		s, ok := v.AsString()
		if !ok {
			continue
		}
		k := strings.ToLower(strings.TrimSpace(s))
		if k == "" {
			continue
		}
		if _, dup := tags[k]; dup {
			continue
		}
		if _, dup := exprs[k]; dup {
			continue
		}
		tags[k] = 1.0
	}

	if len(tags) == 0 {
		tags = nil
	}
	if len(exprs) == 0 {
		exprs = nil
	}
	return tags, exprs
}

func findTableByPattern(content, pattern string) (*luaexpr.Table, bool) {
	re := regexp.MustCompile(pattern)
	m := re.FindStringIndex(content)
	if m == nil {
		return nil, false
	}
	open := strings.IndexByte(content[m[0]:], '{')
	if open == -1 {
		return nil, false
	}
	open += m[0]
	close, ok := luascan.FindMatching(content, open, '{', '}')
	if !ok {
		return nil, false
	}
	return luaexpr.ParseTable(content[open+1 : close]), true
}

// ingredient table declarations probed in order
var ingredientTablePatterns = []string{
	`(?m)(?:^|\b)local\s+ingredients\s*=\s*\{`,
	`(?m)(?:^|\b)ingredients\s*=\s*\{`,
	`(?m)(?:^|\b)INGREDIENTS\s*=\s*\{`,
	`\bcooking\.ingredients\s*=\s*\{`,
}

func findIngredientsTable(content string) (*luaexpr.Table, bool) {
	for _, pat := range ingredientTablePatterns {
		if tbl, ok := findTableByPattern(content, pat); ok {
			return tbl, true
		}
	}

	cooking, ok := findTableByPattern(content, `(?m)(?:^|\b)local\s+cooking\s*=\s*\{`)
	if !ok {
		cooking, ok = findTableByPattern(content, `(?m)(?:^|\b)cooking\s*=\s*\{`)
	}
	if ok {
		if ing, ok := cooking.GetTable("ingredients"); ok {
			return ing, true
		}
	}
	return nil, false
}

func findNamedTable(content, name string) (*luaexpr.Table, bool) {
	if name == "" {
		return nil, false
	}
	q := regexp.QuoteMeta(name)
	for _, pat := range []string{
		`(?m)(?:^|\b)local\s+` + q + `\s*=\s*\{`,
		`(?m)(?:^|\b)` + q + `\s*=\s*\{`,
	} {
		if tbl, ok := findTableByPattern(content, pat); ok {
			return tbl, true
		}
	}
	return nil, false
}

func coerceBool(expr string) bool {
	v := luaexpr.Parse(expr)
	if b, ok := v.AsBool(); ok {
		return b
	}
	if f, ok := v.AsNumber(); ok {
		return f != 0
	}
	if v.Kind == luaexpr.KindRaw {
		switch strings.ToLower(strings.TrimSpace(v.Raw)) {
		case "true":
			return true
		case "false":
			return false
		}
	}
	return false
}

// ParseCookingIngredients extracts cook-pot ingredient definitions from
// one script. A declared ingredients table is preferred; otherwise
// AddIngredientValues calls are followed (including name-list
// indirection through sibling tables). cancook/candry derive
// `_cooked`/`_dried` variants stamping precook/dried to 1. Aliases copy
// the target's tag map.
func ParseCookingIngredients(content, source string) map[string]*luadex.CookingIngredient {
	out := map[string]*luadex.CookingIngredient{}
	if content == "" {
		return out
	}

	tbl, ok := findIngredientsTable(content)
	if ok && (len(tbl.Keys) > 0 || len(tbl.Array) > 0) {
		for _, key := range tbl.Keys {
			if key.Kind != luaexpr.KeyStr {
				continue
			}
			id, okID := CleanID(key.Str)
			if !okID {
				continue
			}
			ing := &luadex.CookingIngredient{ID: id}
			if entry, ok := tbl.Map[key].AsTable(); ok {
				if tagsTbl, ok := entry.GetTable("tags"); ok {
					ing.Tags, ing.TagsExpr = parseTagTable(tagsTbl)
				}
				if s, ok := entry.GetString("name"); ok {
					ing.Name = s
				}
				if s, ok := entry.GetString("atlas"); ok {
					ing.Atlas = s
				}
				if s, ok := entry.GetString("image"); ok {
					ing.Image = s
				}
				if s, ok := entry.GetString("prefab"); ok {
					ing.Prefab = s
				}
				if s, ok := entry.GetString("foodtype"); ok {
					ing.Foodtype = s
				}
			}
			if source != "" {
				ing.Sources = []string{source}
			}
			if hasPayload(ing) {
				out[id] = ing
			}
		}
		applyAliases(content, out)
		return out
	}

	parseAddIngredientValues(content, source, out)
	applyAliases(content, out)
	return out
}

func hasPayload(ing *luadex.CookingIngredient) bool {
	return len(ing.Tags) > 0 || len(ing.TagsExpr) > 0 ||
		ing.Name != "" || ing.Atlas != "" || ing.Image != "" ||
		ing.Prefab != "" || ing.Foodtype != ""
}

func parseAddIngredientValues(content, source string, out map[string]*luadex.CookingIngredient) {
	calls := luaexpr.NewExtractor(content).
		ExtractOpts(luaexpr.CallOptions{BareOnly: true}, "AddIngredientValues")
	if len(calls) == 0 {
		return
	}

	tableCache := map[string]*luaexpr.Table{}
	resolveNames := func(expr string) []string {
		v := luaexpr.Parse(expr)
		if tbl, ok := v.AsTable(); ok {
			return tbl.StringArray()
		}
		if s, ok := v.AsString(); ok {
			return []string{s}
		}
		if v.Kind == luaexpr.KindRaw {
			key := strings.TrimSpace(v.Raw)
			if key == "" {
				return nil
			}
			tbl, cached := tableCache[key]
			if !cached {
				tbl, _ = findNamedTable(content, key)
				tableCache[key] = tbl
			}
			if tbl != nil {
				return tbl.StringArray()
			}
		}
		return nil
	}

	set := func(id string, tags map[string]float64, exprs map[string]string) {
		ing := &luadex.CookingIngredient{ID: id, Tags: tags, TagsExpr: exprs}
		if source != "" {
			ing.Sources = []string{source}
		}
		if hasPayload(ing) {
			out[id] = ing
		}
	}

	for _, call := range calls {
		if len(call.ArgList) < 2 {
			continue
		}
		names := resolveNames(call.ArgList[0])
		if len(names) == 0 {
			continue
		}
		var tags map[string]float64
		var exprs map[string]string
		if tbl, ok := luaexpr.Parse(call.ArgList[1]).AsTable(); ok {
			tags, exprs = parseTagTable(tbl)
		}
		cancook := len(call.ArgList) >= 3 && coerceBool(call.ArgList[2])
		candry := len(call.ArgList) >= 4 && coerceBool(call.ArgList[3])

		for _, name := range names {
			id, ok := CleanID(name)
			if !ok {
				continue
			}
			set(id, copyTags(tags), copyExprs(exprs))

			if cancook {
				cooked := copyTags(tags)
				if cooked == nil {
					cooked = map[string]float64{}
				}
				cooked["precook"] = 1.0
				set(id+"_cooked", cooked, copyExprs(exprs))
			}
			if candry {
				dried := copyTags(tags)
				if dried == nil {
					dried = map[string]float64{}
				}
				dried["dried"] = 1.0
				set(id+"_dried", dried, copyExprs(exprs))
			}
		}
	}
}

func applyAliases(content string, out map[string]*luadex.CookingIngredient) {
	aliasTbl, ok := findNamedTable(content, "aliases")
	if !ok {
		return
	}
	for _, key := range aliasTbl.Keys {
		if key.Kind != luaexpr.KeyStr {
			continue
		}
		alias, okA := CleanID(key.Str)
		if !okA {
			continue
		}
		targetStr, okT := aliasTbl.Map[key].AsString()
		if !okT {
			if aliasTbl.Map[key].Kind == luaexpr.KindRaw {
				targetStr = aliasTbl.Map[key].Raw
			}
		}
		target, okT := CleanID(targetStr)
		if !okT {
			continue
		}
		if _, exists := out[alias]; exists {
			continue
		}
		src, okS := out[target]
		if !okS {
			continue
		}
		ing := &luadex.CookingIngredient{
			ID:       alias,
			Tags:     copyTags(src.Tags),
			TagsExpr: copyExprs(src.TagsExpr),
			Foodtype: src.Foodtype,
		}
		if len(src.Sources) > 0 {
			ing.Sources = append([]string(nil), src.Sources...)
		}
		if hasPayload(ing) {
			out[alias] = ing
		}
	}
}

func copyTags(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyExprs(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ParseOceanfishIngredients reads FISH_DEFS entries whose
// cooker_ingredient_value supplies cook-pot tags, emitting them under
// the inventory form of the prefab id (`<prefab>_inv`).
func ParseOceanfishIngredients(content, source string) map[string]*luadex.CookingIngredient {
	out := map[string]*luadex.CookingIngredient{}
	fishTbl, ok := findNamedTable(content, "FISH_DEFS")
	if !ok {
		return out
	}

	resolveTags := func(v luaexpr.Value) (map[string]float64, map[string]string) {
		if tbl, ok := v.AsTable(); ok {
			return parseTagTable(tbl)
		}
		if v.Kind == luaexpr.KindRaw {
			key := strings.TrimSpace(v.Raw)
			if key != "" {
				if tbl, ok := findNamedTable(content, key); ok {
					return parseTagTable(tbl)
				}
			}
		}
		return nil, nil
	}

	for _, key := range fishTbl.Keys {
		entry, ok := fishTbl.Map[key].AsTable()
		if !ok {
			continue
		}
		prefab, ok := entry.GetString("prefab")
		if !ok || strings.TrimSpace(prefab) == "" {
			continue
		}
		cookerVal, ok := entry.Get("cooker_ingredient_value")
		if !ok {
			continue
		}
		tags, exprs := resolveTags(cookerVal)
		if len(tags) == 0 && len(exprs) == 0 {
			continue
		}
		id, ok := CleanID(strings.TrimSpace(prefab) + "_inv")
		if !ok {
			continue
		}
		ing := &luadex.CookingIngredient{ID: id, Tags: tags, TagsExpr: exprs}
		if source != "" {
			ing.Sources = []string{source}
		}
		out[id] = ing
	}
	return out
}

// MergeCookingIngredients merges extra into base without clobbering:
// new ids are added whole; for existing ids sources are unioned, tag
// weights fill zero/missing slots only, and scalar fields fill blanks.
func MergeCookingIngredients(base, extra map[string]*luadex.CookingIngredient) map[string]*luadex.CookingIngredient {
	out := make(map[string]*luadex.CookingIngredient, len(base)+len(extra))
	for id, row := range base {
		out[id] = row
	}
	for id, row := range extra {
		cur, exists := out[id]
		if !exists {
			out[id] = row
			continue
		}

		for _, src := range row.Sources {
			if !contains(cur.Sources, src) {
				cur.Sources = append(cur.Sources, src)
			}
		}

		if len(row.Tags) > 0 {
			if cur.Tags == nil {
				cur.Tags = map[string]float64{}
			}
			for tag, val := range row.Tags {
				if existing, ok := cur.Tags[tag]; !ok || existing == 0 {
					cur.Tags[tag] = val
				}
			}
		}
		if len(row.TagsExpr) > 0 {
			if cur.TagsExpr == nil {
				cur.TagsExpr = map[string]string{}
			}
			for tag, val := range row.TagsExpr {
				if _, ok := cur.TagsExpr[tag]; !ok {
					cur.TagsExpr[tag] = val
				}
			}
		}

		if cur.Name == "" {
			cur.Name = row.Name
		}
		if cur.Atlas == "" {
			cur.Atlas = row.Atlas
		}
		if cur.Image == "" {
			cur.Image = row.Image
		}
		if cur.Prefab == "" {
			cur.Prefab = row.Prefab
		}
		if cur.Foodtype == "" {
			cur.Foodtype = row.Foodtype
		}
	}
	return out
}

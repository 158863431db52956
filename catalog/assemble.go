package catalog

import (
	"runtime"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/luadex/luadex"
	"github.com/luadex/luadex/extract"
	"github.com/luadex/luadex/mount"
	"github.com/luadex/luadex/tuning"
)

// Options tunes a catalog build.
type Options struct {
	// OverridesPath locates the tag-override rules file; empty or
	// missing means no overrides.
	OverridesPath string
	// IncludeTrace collects the tuning trace index side-output.
	IncludeTrace bool
	// Parallelism caps concurrent per-file extraction; 0 means one
	// worker per CPU.
	Parallelism int
	// Logger receives build progress; nil means no logging.
	Logger *zap.Logger
	// SourceSignature is stamped into catalog metadata when known.
	SourceSignature string
}

// Builder runs the offline extraction pipeline over a mounted source.
// The tuning resolver is a sequential pre-pass; per-file extraction
// fans out, and the final aggregation is keyed and sorted by identifier
// so worker scheduling cannot affect the output.
type Builder struct {
	m    mount.Mount
	opts Options
	log  *zap.Logger
}

// NewBuilder returns a builder over m.
func NewBuilder(m mount.Mount, opts Options) *Builder {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{m: m, opts: opts, log: log}
}

func (b *Builder) read(path string) string {
	text, _ := b.m.Read(path)
	return text
}

func (b *Builder) workers() int {
	if b.opts.Parallelism > 0 {
		return b.opts.Parallelism
	}
	return runtime.NumCPU()
}

// filesUnder returns the mount's Lua files with the given path prefix.
func (b *Builder) filesUnder(prefix string) []string {
	var out []string
	for _, p := range b.m.FileList() {
		if strings.HasPrefix(p, prefix) && strings.HasSuffix(p, ".lua") {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// scanFiles reads and parses paths concurrently, then folds the results
// in path order.
func scanFiles[T any](b *Builder, paths []string, parse func(path, content string) T, fold func(path string, result T)) {
	results := make([]T, len(paths))
	found := make([]bool, len(paths))

	var g errgroup.Group
	g.SetLimit(b.workers())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			content, ok := b.m.Read(path)
			if !ok || content == "" {
				return nil
			}
			results[i] = parse(path, content)
			found[i] = true
			return nil
		})
	}
	// workers never return errors; partial data is the contract
	_ = g.Wait()

	for i, path := range paths {
		if found[i] {
			fold(path, results[i])
		}
	}
}

// Build runs the pipeline and returns the catalog plus the tuning trace
// index (nil unless Options.IncludeTrace).
func (b *Builder) Build() (*luadex.Catalog, *tuning.TraceIndex, error) {
	// sequential pre-pass: first-declaration-wins must not race
	res := tuning.NewResolver(b.read("scripts/tuning.lua"))
	b.log.Info("tuning loaded", zap.Int("symbols", res.Len()))

	var sink *tuning.TraceIndex
	if b.opts.IncludeTrace {
		sink = tuning.NewTraceIndex()
	}

	craft := extract.BuildCraftDoc(
		b.read("scripts/recipes.lua"),
		b.read("scripts/recipes2.lua"),
		b.read("scripts/recipes_filter.lua"),
	)
	b.log.Info("craft recipes loaded", zap.Int("recipes", len(craft.Recipes)))

	cooking := extract.MergeCookingRecipes(
		extract.ParseCookingRecipes(b.read("scripts/preparedfoods.lua"), "scripts/preparedfoods.lua"),
		extract.ParseCookingRecipes(b.read("scripts/prefabs/preparedfoods.lua"), "scripts/prefabs/preparedfoods.lua"),
	)
	b.log.Info("cooking recipes loaded", zap.Int("recipes", len(cooking)))

	cookingIngredients := extract.ParseCookingIngredients(b.read("scripts/ingredients.lua"), "scripts/ingredients.lua")
	cookingIngredients = extract.MergeCookingIngredients(cookingIngredients,
		extract.ParseCookingIngredients(b.read("scripts/cooking.lua"), "scripts/cooking.lua"))
	cookingIngredients = extract.MergeCookingIngredients(cookingIngredients,
		extract.ParseOceanfishIngredients(b.read("scripts/prefabs/oceanfishdef.lua"), "scripts/prefabs/oceanfishdef.lua"))
	b.log.Info("cooking ingredients loaded", zap.Int("ingredients", len(cookingIngredients)))

	// parallel per-file scans
	prefabs := extract.NewPrefabIndex()
	scanFiles(b, b.filesUnder("scripts/prefabs/"),
		func(path, content string) *extract.PrefabFile { return extract.ParsePrefabFile(content) },
		func(path string, pf *extract.PrefabFile) { prefabs.AddFile(path, pf) },
	)
	b.log.Info("prefabs scanned",
		zap.Int("prefabs", len(prefabs.Items)),
		zap.Int("skipped", prefabs.Skipped))

	lootItems := map[string]bool{}
	scanFiles(b, b.lootCandidates(),
		func(path, content string) *extract.LootResult { return extract.ParseLoot(content) },
		func(path string, lr *extract.LootResult) {
			for _, e := range lr.Entries {
				if id, ok := extract.CleanID(e.Item); ok {
					lootItems[id] = true
				}
			}
		},
	)
	b.log.Info("loot scanned", zap.Int("items", len(lootItems)))

	components := map[string]*luadex.ComponentDef{}
	scanFiles(b, b.filesUnder("scripts/components/"),
		func(path, content string) *luadex.ComponentDef { return extract.ParseComponent(content, path) },
		func(path string, def *luadex.ComponentDef) {
			if def.ID != "" {
				components[def.ID] = def
			}
		},
	)

	names := extract.ParseStringsNames(b.read("scripts/strings.lua"))
	worldgen := b.buildWorldgen()

	// id union
	allIDs := map[string]bool{}
	for id := range prefabs.Items {
		allIDs[id] = true
	}
	craftProducts := map[string]bool{}
	for name, rec := range craft.Recipes {
		allIDs[name] = true
		if rec.Product != "" {
			allIDs[rec.Product] = true
			craftProducts[rec.Product] = true
		}
		for _, ing := range rec.Ingredients {
			allIDs[ing.Item] = true
		}
	}
	cookingRecipeIDs := map[string]bool{}
	for name, rec := range cooking {
		if id, ok := extract.CleanID(name); ok {
			allIDs[id] = true
			cookingRecipeIDs[id] = true
		}
		for _, ci := range rec.CardIngredients {
			if id, ok := extract.CleanID(ci.Item); ok {
				allIDs[id] = true
			}
		}
	}
	for id := range cookingIngredients {
		allIDs[id] = true
	}

	overrides, err := LoadOverrides(b.opts.OverridesPath)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]string, 0, len(allIDs))
	for id := range allIDs {
		if _, ok := extract.CleanID(id); ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	items := make(map[string]*luadex.Item, len(ids))
	assets := map[string]map[string]string{}
	statCache := map[string]map[string]string{}

	for _, id := range ids {
		item := b.buildItem(id, prefabs.Items[id], craftProducts, cookingRecipeIDs,
			lootItems, names, overrides, res, sink, statCache)
		items[id] = item
		if len(item.Assets) > 0 {
			assets[id] = item.Assets
		}
	}

	b.enrichCraft(craft, res, sink)
	b.enrichCooking(cooking, res, sink)

	sources := map[string]string{}
	if d, ok := b.m.(*mount.Dir); ok {
		sources["scripts_dir"] = d.Root()
	}
	meta := luadex.NewMeta(luadex.ToolName, sources)
	if b.opts.SourceSignature != "" {
		meta.Extra = map[string]any{"source_signature": b.opts.SourceSignature}
	}

	cat := &luadex.Catalog{
		SchemaVersion:      luadex.SchemaVersion,
		Meta:               meta,
		Items:              items,
		Assets:             assets,
		Craft:              *craft,
		Cooking:            cooking,
		CookingIngredients: cookingIngredients,
		Worldgen:           worldgen,
		Components:         components,
		Stats: map[string]int{
			"items_total":         len(items),
			"assets_total":        len(assets),
			"craft_recipes":       len(craft.Recipes),
			"cooking_recipes":     len(cooking),
			"cooking_ingredients": len(cookingIngredients),
			"loot_items":          len(lootItems),
			"components":          len(components),
		},
	}

	b.log.Info("catalog assembled", zap.Int("items", len(items)))
	return cat, sink, nil
}

// lootCandidates picks the files worth a loot scan.
func (b *Builder) lootCandidates() []string {
	var out []string
	for _, p := range b.m.FileList() {
		if !strings.HasSuffix(p, ".lua") {
			continue
		}
		if strings.Contains(p, "loot") || strings.Contains(p, "prefabs") {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func (b *Builder) buildWorldgen() *luadex.WorldgenDoc {
	doc := &luadex.WorldgenDoc{
		Rooms:           map[string]*luadex.Room{},
		WorldgenPresets: map[string]*luadex.Preset{},
		SettingsPresets: map[string]*luadex.Preset{},
		Layouts:         map[string]*luadex.Layout{},
	}

	for _, path := range b.filesUnder("scripts/map/") {
		content, ok := b.m.Read(path)
		if !ok {
			continue
		}
		base := path[strings.LastIndexByte(path, '/')+1:]
		switch {
		case strings.HasPrefix(base, "rooms") || strings.HasPrefix(path, "scripts/map/rooms"):
			for id, room := range extract.ParseRooms(content) {
				doc.Rooms[id] = room
			}
		case strings.HasPrefix(base, "levels"):
			res := extract.ParsePresets(content)
			for id, p := range res.Worldgen {
				doc.WorldgenPresets[id] = p
			}
			for id, p := range res.Settings {
				doc.SettingsPresets[id] = p
			}
		}

		tasks, taskSets, starts := extract.ParseTaskIDs(content)
		doc.Tasks = append(doc.Tasks, tasks...)
		doc.TaskSets = append(doc.TaskSets, taskSets...)
		doc.StartLocations = append(doc.StartLocations, starts...)
	}

	for id, layout := range extract.ParseLayouts(b.read("scripts/map/layouts.lua")) {
		doc.Layouts[id] = layout
	}
	for _, path := range b.filesUnder("scripts/map/static_layouts/") {
		id := extract.FileStem(path)
		if _, exists := doc.Layouts[id]; !exists && id != "" {
			doc.Layouts[id] = &luadex.Layout{ID: id, Source: path}
		}
	}

	if len(doc.Rooms) == 0 && len(doc.WorldgenPresets) == 0 && len(doc.SettingsPresets) == 0 &&
		len(doc.Layouts) == 0 && len(doc.Tasks) == 0 && len(doc.TaskSets) == 0 &&
		len(doc.StartLocations) == 0 {
		return nil
	}
	return doc
}

// selectAssets picks the first ATLAS and IMAGE paths of a prefab.
func selectAssets(prefabAssets []luadex.Asset) map[string]string {
	out := map[string]string{}
	for _, a := range prefabAssets {
		t := strings.ToUpper(a.Type)
		if a.Path == "" {
			continue
		}
		if t == "ATLAS" && out["atlas"] == "" {
			out["atlas"] = a.Path
		}
		if t == "IMAGE" && out["image"] == "" {
			out["image"] = a.Path
		}
	}
	return out
}

func (b *Builder) buildItem(
	id string,
	pf *extract.PrefabRecord,
	craftProducts, cookingRecipeIDs, lootItems map[string]bool,
	names map[string]string,
	overrides []OverrideRule,
	res *tuning.Resolver,
	sink *tuning.TraceIndex,
	statCache map[string]map[string]string,
) *luadex.Item {
	item := &luadex.Item{ID: id, Assets: map[string]string{}}
	if n, ok := names[id]; ok {
		item.Name = n
	}

	var compSet, tagSet map[string]bool
	if pf != nil {
		compSet = pf.Components
		tagSet = pf.Tags
		item.PrefabFiles = append([]string(nil), pf.Files...)
		sort.Strings(item.PrefabFiles)
		item.PrefabAssets = append([]luadex.Asset(nil), pf.Assets...)
		item.Brains = keys(pf.Brains)
		item.Stategraphs = keys(pf.Stategraphs)
		item.Helpers = keys(pf.Helpers)
		item.Assets = selectAssets(pf.Assets)
	} else {
		compSet = map[string]bool{}
		tagSet = map[string]bool{}
	}

	item.Components = keys(compSet)
	item.Tags = keys(tagSet)

	item.Sources = InferSources(id, craftProducts, cookingRecipeIDs, lootItems, compSet, tagSet)
	profile := InferProfile(item.Components, item.Tags, item.Sources)
	ApplyOverrides(id, profile, overrides)

	item.Kind = profile.Kind
	item.Categories = sortedSet(profile.Categories)
	item.Behaviors = sortedSet(profile.Behaviors)
	item.Sources = sortedSet(profile.Sources)
	item.Slots = sortedSet(profile.Slots)

	// stat inference over the contributing prefab files; higher-scored
	// expressions win across files
	statExprs := map[string]string{}
	statScores := map[string]int{}
	for _, pfile := range item.PrefabFiles {
		exprs, ok := statCache[pfile]
		if !ok {
			if content, okRead := b.m.Read(pfile); okRead {
				exprs = ExtractStatExprs(content)
			}
			statCache[pfile] = exprs
		}
		for key, expr := range exprs {
			score := scoreStatExpr(expr)
			if cur, seen := statScores[key]; !seen || score >= cur {
				statExprs[key] = expr
				statScores[key] = score
			}
		}
	}
	if len(statExprs) > 0 {
		item.Stats = map[string]*luadex.Stat{}
		for key, expr := range statExprs {
			traceKey := ""
			if sink != nil {
				traceKey = "item:" + id + ":stat:" + key
			}
			item.Stats[key] = ResolveStat(key, expr, res, sink, traceKey)
		}
	}

	return item
}

// enrichCraft resolves TUNING-bearing ingredient amounts.
func (b *Builder) enrichCraft(craft *luadex.CraftDoc, res *tuning.Resolver, sink *tuning.TraceIndex) {
	for name, rec := range craft.Recipes {
		for i := range rec.Ingredients {
			ing := &rec.Ingredients[i]
			switch {
			case strings.Contains(ing.AmountRaw, "TUNING."):
				tr := res.TraceExpr(ing.AmountRaw)
				if sink != nil {
					sink.Put("craft:"+name+":ingredient:"+ing.Item, tr)
				}
				if tr.Value != nil {
					v := *tr.Value
					ing.AmountValue = &v
				}
			case ing.AmountNum != nil:
				v := *ing.AmountNum
				ing.AmountValue = &v
			}
		}
	}
}

// cookingStatFields are the recipe fields resolved against tuning.
var cookingStatFields = []string{"hunger", "health", "sanity", "perishtime", "cooktime"}

// enrichCooking resolves TUNING-bearing recipe stats into expr/value
// maps (the raw expression is always retained).
func (b *Builder) enrichCooking(cooking map[string]*luadex.CookingRecipe, res *tuning.Resolver, sink *tuning.TraceIndex) {
	for name, rec := range cooking {
		fields := map[string]*any{
			"hunger":     &rec.Hunger,
			"health":     &rec.Health,
			"sanity":     &rec.Sanity,
			"perishtime": &rec.Perishtime,
			"cooktime":   &rec.Cooktime,
		}
		for _, field := range cookingStatFields {
			slot := fields[field]
			expr, ok := (*slot).(string)
			if !ok || !strings.Contains(expr, "TUNING.") {
				continue
			}
			tr := res.TraceExpr(expr)
			if sink != nil {
				sink.Put("cooking:"+name+":"+field, tr)
			}
			if tr.Value != nil {
				*slot = map[string]any{"expr": expr, "value": *tr.Value}
			}
		}
	}
}

func keys(m map[string]bool) []string {
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

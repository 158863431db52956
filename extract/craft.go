package extract

import (
	"strings"

	"github.com/luadex/luadex"
	"github.com/luadex/luadex/luaexpr"
	"github.com/luadex/luadex/luascan"
)

// craftConfigKeys are the named fields read from a recipe's trailing
// config table.
const (
	cfgProduct      = "product"
	cfgBuilderTag   = "builder_tag"
	cfgBuilderSkill = "builder_skill"
	cfgStationTag   = "station_tag"
	cfgTab          = "tab"
)

// ParseCraftRecipes extracts Recipe/Recipe2/AddRecipe2 declarations
// from one recipes script. Positional parameters vary between the
// legacy and current forms; named fields are taken from a trailing
// config table when present. Ingredient rows that cannot be resolved to
// an identifier and a number are preserved in IngredientsUnresolved.
func ParseCraftRecipes(content, source string) map[string]*luadex.CraftRecipe {
	out := map[string]*luadex.CraftRecipe{}
	if content == "" {
		return out
	}

	x := luaexpr.NewExtractor(content)
	for _, call := range x.ExtractOpts(luaexpr.CallOptions{BareOnly: true}, "Recipe", "Recipe2", "AddRecipe2") {
		if len(call.ArgList) < 2 {
			continue
		}
		rawName, ok := luaexpr.ParseString(call.ArgList[0])
		if !ok {
			continue
		}
		name, ok := CleanID(rawName)
		if !ok {
			continue
		}

		rec := &luadex.CraftRecipe{Name: name, Product: name, Source: source}
		parseCraftIngredients(call.ArgList[1], rec)

		switch call.Name {
		case "Recipe":
			// Recipe(name, ingredients, RECIPETABS.X, TECH.Y, ...)
			if len(call.ArgList) >= 3 {
				rec.Tab = stripPrefix(call.ArgList[2], "RECIPETABS.")
			}
			if len(call.ArgList) >= 4 {
				rec.Tech = stripPrefix(call.ArgList[3], "TECH.")
			}
			if len(call.ArgList) > 4 {
				if cfg := trailingConfig(call.ArgList[4:]); cfg != nil {
					applyCraftConfig(cfg, rec)
				}
			}
		default:
			// Recipe2/AddRecipe2(name, ingredients, TECH.Y, config, filters?)
			if len(call.ArgList) >= 3 {
				rec.Tech = stripPrefix(call.ArgList[2], "TECH.")
			}
			if len(call.ArgList) >= 4 {
				if cfg, ok := luaexpr.Parse(call.ArgList[3]).AsTable(); ok {
					applyCraftConfig(cfg, rec)
				}
			}
			if call.Name == "AddRecipe2" && len(call.ArgList) >= 5 {
				if filters, ok := luaexpr.Parse(call.ArgList[4]).AsTable(); ok {
					rec.Filters = filters.StringArray()
				}
			}
		}

		out[name] = rec
	}

	return out
}

// trailingConfig scans trailing positional arguments for a table with
// named entries.
func trailingConfig(args []string) *luaexpr.Table {
	for i := len(args) - 1; i >= 0; i-- {
		if tbl, ok := luaexpr.Parse(args[i]).AsTable(); ok && len(tbl.Keys) > 0 {
			return tbl
		}
	}
	return nil
}

func applyCraftConfig(cfg *luaexpr.Table, rec *luadex.CraftRecipe) {
	if s, ok := cfg.GetString(cfgProduct); ok {
		if p, okID := CleanID(s); okID {
			rec.Product = p
		}
	}
	if s, ok := cfg.GetString(cfgBuilderTag); ok && s != "" {
		rec.BuilderTags = append(rec.BuilderTags, strings.ToLower(s))
	}
	if s, ok := cfg.GetString(cfgBuilderSkill); ok && s != "" {
		rec.BuilderSkill = strings.ToLower(s)
	}
	if s, ok := cfg.GetString(cfgStationTag); ok && s != "" {
		rec.StationTag = strings.ToLower(s)
	}
	if s, ok := cfg.GetString(cfgTab); ok && s != "" {
		rec.Tab = s
	} else if v, ok := cfg.Get(cfgTab); ok && v.Kind == luaexpr.KindRaw {
		rec.Tab = stripPrefix(v.Raw, "RECIPETABS.")
	}
}

// parseCraftIngredients reads the ingredient-array argument: a Lua
// array whose rows are Ingredient(...) calls or {"item", amount}
// tables.
func parseCraftIngredients(arg string, rec *luadex.CraftRecipe) {
	arg = strings.TrimSpace(arg)
	if !strings.HasPrefix(arg, "{") {
		if arg != "" && arg != "nil" {
			rec.IngredientsUnresolved = append(rec.IngredientsUnresolved, arg)
		}
		return
	}
	close, ok := luascan.FindMatching(arg, 0, '{', '}')
	if !ok {
		rec.IngredientsUnresolved = append(rec.IngredientsUnresolved, arg)
		return
	}

	for _, row := range luascan.SplitTopLevel(arg[1:close], ',') {
		row = strings.TrimSpace(row)
		if row == "" {
			continue
		}

		var item, amountRaw string
		switch {
		case strings.HasPrefix(row, "Ingredient"):
			calls := luaexpr.NewExtractor(row).ExtractOpts(luaexpr.CallOptions{BareOnly: true}, "Ingredient")
			if len(calls) == 0 || len(calls[0].ArgList) < 2 {
				rec.IngredientsUnresolved = append(rec.IngredientsUnresolved, row)
				continue
			}
			if s, ok := luaexpr.ParseString(calls[0].ArgList[0]); ok {
				item = s
			}
			amountRaw = strings.TrimSpace(calls[0].ArgList[1])
		case strings.HasPrefix(row, "{"):
			tbl, ok := luaexpr.Parse(row).AsTable()
			if !ok || len(tbl.Array) < 2 {
				rec.IngredientsUnresolved = append(rec.IngredientsUnresolved, row)
				continue
			}
			if s, ok := tbl.Array[0].AsString(); ok {
				item = s
			}
			if f, ok := tbl.Array[1].AsNumber(); ok {
				amountRaw = luaexpr.FormatNumber(f)
			} else if tbl.Array[1].Kind == luaexpr.KindRaw {
				amountRaw = tbl.Array[1].Raw
			}
		default:
			rec.IngredientsUnresolved = append(rec.IngredientsUnresolved, row)
			continue
		}

		id, okID := CleanID(item)
		if !okID {
			rec.IngredientsUnresolved = append(rec.IngredientsUnresolved, row)
			continue
		}

		ing := luadex.CraftIngredient{Item: id, AmountRaw: amountRaw}
		if v, ok := luaexpr.ParseNumber(amountRaw); ok {
			f, _ := v.AsNumber()
			ing.AmountNum = &f
		}
		rec.Ingredients = append(rec.Ingredients, ing)
	}
}

func stripPrefix(raw, prefix string) string {
	raw = strings.TrimSpace(raw)
	return strings.TrimPrefix(raw, prefix)
}

// filter table declarations probed in order
var filterTableNames = []string{
	"CRAFTING_FILTERS", "CRAFTING_FILTER_DEFS", "FILTER_DEFS", "filters",
}

// ParseFilterDefs reads the crafting filter definitions script into
// filter rows and their declared order.
func ParseFilterDefs(content string) (map[string]*luadex.FilterDef, []string) {
	defs := map[string]*luadex.FilterDef{}
	var order []string
	if content == "" {
		return defs, order
	}

	var tbl *luaexpr.Table
	for _, name := range filterTableNames {
		if t, ok := findNamedTable(content, name); ok && len(t.Array) > 0 {
			tbl = t
			break
		}
	}
	if tbl == nil {
		return defs, order
	}

	for _, rowVal := range tbl.Array {
		row, ok := rowVal.AsTable()
		if !ok {
			continue
		}
		name, ok := row.GetString("name")
		if !ok || name == "" {
			continue
		}
		def := &luadex.FilterDef{Name: name}
		if s, ok := row.GetString("image"); ok {
			def.Image = s
		}
		if s, ok := row.GetString("atlas"); ok {
			def.Atlas = s
		}
		if _, dup := defs[name]; !dup {
			defs[name] = def
			order = append(order, name)
		}
	}
	return defs, order
}

// BuildCraftDoc assembles the craft document from the recipes scripts:
// recipes.lua, recipes2.lua (later sources win on name collision) and
// recipes_filter.lua.
func BuildCraftDoc(recipesLua, recipes2Lua, filterLua string) *luadex.CraftDoc {
	doc := &luadex.CraftDoc{Recipes: map[string]*luadex.CraftRecipe{}}

	for _, src := range []struct{ content, label string }{
		{recipesLua, "scripts/recipes.lua"},
		{recipes2Lua, "scripts/recipes2.lua"},
	} {
		for name, rec := range ParseCraftRecipes(src.content, src.label) {
			doc.Recipes[name] = rec
		}
	}

	aliases := map[string]string{}
	for name, rec := range doc.Recipes {
		if rec.Product != "" && rec.Product != name {
			aliases[name] = rec.Product
		}
	}
	if len(aliases) > 0 {
		doc.Aliases = aliases
	}

	doc.FilterDefs, doc.FilterOrder = ParseFilterDefs(filterLua)
	return doc
}

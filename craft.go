package luadex

import (
	"sort"
	"strings"
)

// Craft query helpers over the CraftDoc, used by the CLI and embedding
// front-ends.

// Get returns the recipe with the given name.
func (d *CraftDoc) Get(name string) (*CraftRecipe, bool) {
	rec, ok := d.Recipes[strings.ToLower(strings.TrimSpace(name))]
	return rec, ok
}

// Names returns all recipe names, sorted.
func (d *CraftDoc) Names() []string {
	out := make([]string, 0, len(d.Recipes))
	for name := range d.Recipes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (d *CraftDoc) selectRecipes(pred func(*CraftRecipe) bool) []*CraftRecipe {
	var out []*CraftRecipe
	for _, name := range d.Names() {
		if rec := d.Recipes[name]; pred(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// ListByTab returns the recipes of one crafting tab.
func (d *CraftDoc) ListByTab(tab string) []*CraftRecipe {
	tab = strings.ToUpper(strings.TrimSpace(tab))
	return d.selectRecipes(func(r *CraftRecipe) bool {
		return strings.ToUpper(r.Tab) == tab
	})
}

// ListByFilter returns the recipes carrying one filter label.
func (d *CraftDoc) ListByFilter(filter string) []*CraftRecipe {
	filter = strings.ToUpper(strings.TrimSpace(filter))
	return d.selectRecipes(func(r *CraftRecipe) bool {
		for _, f := range r.Filters {
			if strings.ToUpper(f) == filter {
				return true
			}
		}
		return false
	})
}

// ListByBuilderTag returns the character-restricted recipes for one
// builder tag.
func (d *CraftDoc) ListByBuilderTag(tag string) []*CraftRecipe {
	tag = strings.ToLower(strings.TrimSpace(tag))
	return d.selectRecipes(func(r *CraftRecipe) bool {
		for _, t := range r.BuilderTags {
			if t == tag {
				return true
			}
		}
		return false
	})
}

// ListByTech returns the recipes at one tech tier.
func (d *CraftDoc) ListByTech(tech string) []*CraftRecipe {
	tech = strings.ToUpper(strings.TrimSpace(tech))
	return d.selectRecipes(func(r *CraftRecipe) bool {
		return strings.ToUpper(r.Tech) == tech
	})
}

// ListByIngredient returns the recipes consuming one item.
func (d *CraftDoc) ListByIngredient(item string) []*CraftRecipe {
	item = strings.ToLower(strings.TrimSpace(item))
	return d.selectRecipes(func(r *CraftRecipe) bool {
		for _, ing := range r.Ingredients {
			if ing.Item == item {
				return true
			}
		}
		return false
	})
}

// ingredientNeed returns the effective numeric amount of one
// ingredient row, preferring the tuning-resolved value.
func ingredientNeed(ing CraftIngredient) (float64, bool) {
	if ing.AmountValue != nil {
		return *ing.AmountValue, true
	}
	if ing.AmountNum != nil {
		return *ing.AmountNum, true
	}
	return 0, false
}

// MissingFor returns what an inventory lacks to craft a recipe:
// item -> missing count. Rows without a resolvable amount and symbolic
// ingredients are skipped (callers can consult IngredientsUnresolved).
func (d *CraftDoc) MissingFor(rec *CraftRecipe, inventory map[string]float64) map[string]float64 {
	missing := map[string]float64{}
	for _, ing := range rec.Ingredients {
		need, ok := ingredientNeed(ing)
		if !ok {
			continue
		}
		have := inventory[ing.Item]
		if have < need {
			missing[ing.Item] = need - have
		}
	}
	return missing
}

// Craftable returns the recipes the inventory can build right now,
// sorted by name. Recipes whose every resolvable ingredient is covered
// qualify; recipes with no resolvable ingredients at all do not.
func (d *CraftDoc) Craftable(inventory map[string]float64) []*CraftRecipe {
	return d.selectRecipes(func(r *CraftRecipe) bool {
		resolvable := 0
		for _, ing := range r.Ingredients {
			need, ok := ingredientNeed(ing)
			if !ok {
				continue
			}
			resolvable++
			if inventory[ing.Item] < need {
				return false
			}
		}
		return resolvable > 0
	})
}

// Package catalog joins the extractor outputs into the item-centric
// catalog: it unions identifiers from every domain, infers each item's
// kind/category/behavior profile, extracts component stats with tuning
// resolution, and applies user overrides.
package catalog

import (
	"sort"
	"strings"
)

// Exclusive kinds, in selection order.
const (
	KindCharacter = "character"
	KindCreature  = "creature"
	KindStructure = "structure"
	KindPlant     = "plant"
	KindItem      = "item"
	KindFX        = "fx"
	KindUnknown   = "unknown"
)

var creatureTags = map[string]bool{
	"monster": true, "animal": true, "smallcreature": true,
	"largecreature": true, "epic": true, "hostile": true,
	"bird": true, "scarytoprey": true,
}

var plantTags = map[string]bool{
	"plant": true, "tree": true, "crop": true, "flower": true,
	"berrybush": true, "mushroom": true,
}

var structureTags = map[string]bool{
	"structure": true, "wall": true, "house": true, "ruins": true,
}

var fxTags = map[string]bool{
	"fx": true, "noclick": true, "notarget": true,
}

var compBehaviors = map[string]string{
	"equippable": "equippable",
	"edible":     "edible",
	"stackable":  "stackable",
	"burnable":   "burnable",
	"perishable": "perishable",
	"repairable": "repairable",
	"fuel":       "fuel",
	"tradable":   "tradable",
	"hauntable":  "hauntable",
	"deployable": "deployable",
}

var compCategories = map[string]string{
	"weapon":            "weapon",
	"armor":             "armor",
	"edible":            "food",
	"container":         "container",
	"inventory":         "container",
	"light":             "light",
	"fueled":            "light",
	"deployable":        "deployable",
	"trap":              "trap",
	"boat":              "boat",
	"farmplanttendable": "farm",
	"tool":              "tool",
}

var tagCategories = map[string]string{
	"weapon":        "weapon",
	"armor":         "armor",
	"food":          "food",
	"cookable":      "food",
	"magic":         "magic",
	"container":     "container",
	"boat":          "boat",
	"decor":         "decor",
	"toy":           "toy",
	"cattoy":        "toy",
	"light":         "light",
	"deploykititem": "deployable",
}

// Profile is the derived tag profile of one item.
type Profile struct {
	Kind       string
	Categories map[string]bool
	Behaviors  map[string]bool
	Sources    map[string]bool
	Slots      map[string]bool
}

func newProfile() *Profile {
	return &Profile{
		Kind:       KindUnknown,
		Categories: map[string]bool{},
		Behaviors:  map[string]bool{},
		Sources:    map[string]bool{},
		Slots:      map[string]bool{},
	}
}

func anyTag(tags map[string]bool, set map[string]bool) bool {
	for t := range tags {
		if set[t] {
			return true
		}
	}
	return false
}

// pickKind selects the exclusive kind; first match wins.
func pickKind(tags, components map[string]bool) string {
	switch {
	case tags["character"]:
		return KindCharacter
	case anyTag(tags, creatureTags) ||
		(components["brain"] && components["health"] && components["combat"]):
		return KindCreature
	case anyTag(tags, structureTags):
		return KindStructure
	case anyTag(tags, plantTags) || components["pickable"] || components["crop"]:
		return KindPlant
	case anyTag(tags, fxTags):
		return KindFX
	case components["inventoryitem"]:
		return KindItem
	}
	return KindUnknown
}

// InferProfile derives the tag profile from an item's components, tags
// and source memberships.
func InferProfile(components, tags, sources []string) *Profile {
	comps := toSet(components)
	tgs := toSet(tags)

	p := newProfile()
	p.Kind = pickKind(tgs, comps)

	for c := range comps {
		if beh, ok := compBehaviors[c]; ok {
			p.Behaviors[beh] = true
		}
		if cat, ok := compCategories[c]; ok {
			p.Categories[cat] = true
		}
	}
	for t := range tgs {
		if cat, ok := tagCategories[t]; ok {
			p.Categories[cat] = true
		}
	}

	if p.Kind == KindItem && p.Categories["food"] && !p.Behaviors["edible"] {
		p.Categories["resource"] = true
	}

	for _, s := range sources {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			p.Sources[s] = true
		}
	}
	return p
}

// InferSources computes the sources memberships of an id.
func InferSources(
	id string,
	craftProducts, cookingRecipes, lootItems map[string]bool,
	components, tags map[string]bool,
) []string {
	set := map[string]bool{}
	if craftProducts[id] {
		set["craft"] = true
	}
	if cookingRecipes[id] {
		set["cook"] = true
	}
	if lootItems[id] {
		set["loot"] = true
	}
	if tags["event"] || tags["festival"] {
		set["event"] = true
	}
	if tags["plant"] || tags["tree"] || components["pickable"] {
		set["natural"] = true
	}
	if tags["character"] || tags["monster"] || tags["animal"] ||
		tags["smallcreature"] || tags["largecreature"] || tags["epic"] {
		set["spawn"] = true
	}
	return sortedSet(set)
}

func toSet(xs []string) map[string]bool {
	out := map[string]bool{}
	for _, x := range xs {
		x = strings.ToLower(strings.TrimSpace(x))
		if x != "" {
			out[x] = true
		}
	}
	return out
}

func sortedSet(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
